package peersync

import "context"

// EventType tags transport lifecycle events.
type EventType int

const (
	// EventOpened signals that the transport is ready to carry frames.
	EventOpened EventType = iota
	// EventFrame carries one inbound frame.
	EventFrame
	// EventClosed signals that the transport shut down. It is terminal.
	EventClosed
)

// Event is a single occurrence on the transport's event stream.
type Event struct {
	Type  EventType
	Frame []byte
}

// Transport is the rendezvous under the channel: it moves opaque frames
// between exactly two peers. Implementations deliver events on a single
// stream, in order, and close it after EventClosed.
type Transport interface {
	// Dial connects to the peer and returns the event stream.
	Dial(ctx context.Context) (<-chan Event, error)
	// Send writes one frame. Callers only send while the stream is open.
	Send(ctx context.Context, frame []byte) error
	// Close tears the transport down; the event stream ends with EventClosed.
	Close() error
}
