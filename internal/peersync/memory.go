package peersync

import (
	"context"
	"fmt"
	"sync"
)

// MemoryTransport is an in-process transport half. Two halves produced by
// NewMemoryPair deliver frames to each other; useful for tests and for
// running both storefront roles inside one process.
type MemoryTransport struct {
	mu     sync.Mutex
	peer   *MemoryTransport
	events chan Event
	dialed bool
	closed bool
}

// NewMemoryPair returns two connected transport halves.
func NewMemoryPair() (*MemoryTransport, *MemoryTransport) {
	a := &MemoryTransport{events: make(chan Event, 64)}
	b := &MemoryTransport{events: make(chan Event, 64)}
	a.peer = b
	b.peer = a
	return a, b
}

// Dial marks the half as connected and emits EventOpened on its own stream.
func (t *MemoryTransport) Dial(_ context.Context) (<-chan Event, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, fmt.Errorf("transport closed")
	}
	t.dialed = true
	t.events <- Event{Type: EventOpened}
	return t.events, nil
}

// Send delivers the frame to the peer half.
func (t *MemoryTransport) Send(_ context.Context, frame []byte) error {
	t.mu.Lock()
	if t.closed || !t.dialed {
		t.mu.Unlock()
		return fmt.Errorf("transport not open")
	}
	peer := t.peer
	t.mu.Unlock()

	peer.mu.Lock()
	defer peer.mu.Unlock()
	if peer.closed {
		return fmt.Errorf("peer closed")
	}
	buf := make([]byte, len(frame))
	copy(buf, frame)
	peer.events <- Event{Type: EventFrame, Frame: buf}
	return nil
}

// Close ends both streams with EventClosed.
func (t *MemoryTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	t.events <- Event{Type: EventClosed}
	close(t.events)
	return nil
}
