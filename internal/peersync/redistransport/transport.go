// Package redistransport carries peer sync frames over Redis pub/sub. Each
// peer publishes on its own channel and subscribes to the remote peer's
// channel; the subscription doubles as the rendezvous, so frames published
// before both sides are listening are lost, which matches the channel's
// at-most-once contract.
package redistransport

import (
	"context"
	"sync"

	goredis "github.com/redis/go-redis/v9"

	"github.com/lojinha-labs/storefront-backend/internal/peersync"
	"github.com/lojinha-labs/storefront-backend/pkg/config"
	pkgerrors "github.com/lojinha-labs/storefront-backend/pkg/errors"
	"github.com/lojinha-labs/storefront-backend/pkg/redis"
)

// Transport is one peer's half of the Redis rendezvous.
type Transport struct {
	client   *redis.Client
	inbound  string
	outbound string

	mu     sync.Mutex
	sub    *goredis.PubSub
	events chan peersync.Event
	closed bool
}

// New builds a transport from the peer configuration. Channel names come
// from the configured peer IDs.
func New(client *redis.Client, cfg config.PeerConfig) *Transport {
	return &Transport{
		client:   client,
		inbound:  cfg.InboundChannel(),
		outbound: cfg.OutboundChannel(),
	}
}

// Dial subscribes to the inbound channel and reports Opened once the server
// confirms the subscription.
func (t *Transport) Dial(ctx context.Context) (<-chan peersync.Event, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, pkgerrors.New(pkgerrors.CodeTransport, "transport closed")
	}

	sub, err := t.client.Subscribe(ctx, t.inbound)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeTransport, err, "subscribe to peer channel")
	}
	t.sub = sub
	t.events = make(chan peersync.Event, 64)
	t.events <- peersync.Event{Type: peersync.EventOpened}

	go t.pump(sub.Channel(), t.events)
	return t.events, nil
}

// pump forwards subscription messages as frames until the subscription
// closes.
func (t *Transport) pump(messages <-chan *goredis.Message, events chan<- peersync.Event) {
	for msg := range messages {
		events <- peersync.Event{Type: peersync.EventFrame, Frame: []byte(msg.Payload)}
	}
	events <- peersync.Event{Type: peersync.EventClosed}
	close(events)
}

// Send publishes one frame on the outbound channel.
func (t *Transport) Send(ctx context.Context, frame []byte) error {
	if err := t.client.Publish(ctx, t.outbound, frame); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeTransport, err, "publish frame")
	}
	return nil
}

// Close unsubscribes; the pump then ends the event stream with EventClosed.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	if t.sub == nil {
		return nil
	}
	return t.sub.Close()
}
