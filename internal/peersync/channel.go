package peersync

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/lojinha-labs/storefront-backend/pkg/logger"
	"github.com/lojinha-labs/storefront-backend/pkg/metrics"
)

// State is the channel lifecycle position. Closed is terminal; there is no
// failed state and no reconnect.
type State int32

const (
	StateUninitialized State = iota
	StateConnecting
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Handler consumes one inbound payload for a registered kind. Handler errors
// are logged and never propagate to the peer.
type Handler func(ctx context.Context, payload json.RawMessage) error

// Channel relays typed JSON messages between two storefront instances over a
// Transport. Delivery is at-most-once: no queueing, no acks, no retries.
type Channel struct {
	mu        sync.Mutex
	transport Transport
	handlers  map[string]Handler
	state     atomic.Int32
	logg      *logger.Logger
	metrics   *metrics.SyncMetrics

	sent          atomic.Int64
	dropped       atomic.Int64
	received      atomic.Int64
	dispatched    atomic.Int64
	ignored       atomic.Int64
	parseFailures atomic.Int64
}

// Stats is a point-in-time snapshot for the status endpoint.
type Stats struct {
	State         string `json:"state"`
	Sent          int64  `json:"sent"`
	Dropped       int64  `json:"dropped"`
	Received      int64  `json:"received"`
	Dispatched    int64  `json:"dispatched"`
	Ignored       int64  `json:"ignored"`
	ParseFailures int64  `json:"parse_failures"`
}

// NewChannel wraps a transport. The channel starts Uninitialized; call
// Initialize to dial.
func NewChannel(transport Transport, logg *logger.Logger, m *metrics.SyncMetrics) *Channel {
	return &Channel{
		transport: transport,
		handlers:  map[string]Handler{},
		logg:      logg,
		metrics:   m,
	}
}

// RegisterHandler routes inbound messages of the given kind. Kinds without a
// handler are silently ignored.
func (c *Channel) RegisterHandler(kind string, h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[kind] = h
}

// Initialize dials the transport and starts the inbound dispatch loop. Setup
// failures are logged, not returned; the channel then stays unusable in
// Connecting. Calling Initialize again dials a second transport session while
// the first reader keeps running.
func (c *Channel) Initialize(ctx context.Context) {
	c.state.Store(int32(StateConnecting))

	events, err := c.transport.Dial(ctx)
	if err != nil {
		c.logg.Error(ctx, "peer channel setup failed", err)
		return
	}

	go c.dispatchLoop(ctx, events)
}

// Send relays a message to the peer. Anything but an Open channel drops the
// message without error.
func (c *Channel) Send(ctx context.Context, kind string, payload any) {
	if c.State() != StateOpen {
		c.dropped.Add(1)
		c.metrics.IncDropped(kind)
		return
	}

	msg, err := NewMessage(kind, payload)
	if err != nil {
		c.dropped.Add(1)
		c.metrics.IncDropped(kind)
		c.logg.Error(c.logg.WithField(ctx, "kind", kind), "encode outbound message", err)
		return
	}
	frame, err := json.Marshal(msg)
	if err != nil {
		c.dropped.Add(1)
		c.metrics.IncDropped(kind)
		c.logg.Error(c.logg.WithField(ctx, "kind", kind), "encode outbound frame", err)
		return
	}

	if err := c.transport.Send(ctx, frame); err != nil {
		c.dropped.Add(1)
		c.metrics.IncDropped(kind)
		c.logg.Error(c.logg.WithField(ctx, "kind", kind), "send frame", err)
		return
	}
	c.sent.Add(1)
	c.metrics.IncSent(kind)
}

// State reports the current lifecycle position.
func (c *Channel) State() State {
	return State(c.state.Load())
}

// Stats snapshots the channel counters.
func (c *Channel) Stats() Stats {
	return Stats{
		State:         c.State().String(),
		Sent:          c.sent.Load(),
		Dropped:       c.dropped.Load(),
		Received:      c.received.Load(),
		Dispatched:    c.dispatched.Load(),
		Ignored:       c.ignored.Load(),
		ParseFailures: c.parseFailures.Load(),
	}
}

// Close tears down the transport. The channel ends in Closed once the event
// stream drains.
func (c *Channel) Close() error {
	return c.transport.Close()
}

// dispatchLoop is the single consumer of transport events. Inbound frames are
// handled sequentially, one at a time.
func (c *Channel) dispatchLoop(ctx context.Context, events <-chan Event) {
	for ev := range events {
		switch ev.Type {
		case EventOpened:
			c.state.Store(int32(StateOpen))
			c.logg.Info(ctx, "peer channel open")
		case EventFrame:
			c.handleFrame(ctx, ev.Frame)
		case EventClosed:
			c.state.Store(int32(StateClosed))
			c.logg.Info(ctx, "peer channel closed")
			return
		}
	}
	c.state.Store(int32(StateClosed))
}

func (c *Channel) handleFrame(ctx context.Context, frame []byte) {
	msg, err := decodeMessage(frame)
	if err != nil {
		c.parseFailures.Add(1)
		c.metrics.IncParseFailure()
		c.logg.Error(ctx, "dropping undecodable frame", err)
		return
	}

	c.received.Add(1)
	c.metrics.IncReceived(msg.Type)

	c.mu.Lock()
	handler, ok := c.handlers[msg.Type]
	c.mu.Unlock()
	if !ok {
		// Unknown kinds are a silent no-op.
		c.ignored.Add(1)
		c.metrics.IncIgnored()
		return
	}

	if err := handler(ctx, msg.Payload); err != nil {
		c.logg.Error(c.logg.WithField(ctx, "kind", msg.Type), "message handler failed", err)
		return
	}
	c.dispatched.Add(1)
	c.metrics.IncDispatched(msg.Type)
}
