package event

import (
	"context"
	"errors"
	"sync"
)

// DefaultCapacity is the number of events the bus holds before producers block.
const DefaultCapacity = 3

// ErrBusClosed is returned by Receive once the bus is closed and drained,
// and by Publish after Close.
var ErrBusClosed = errors.New("event bus closed")

// Bus is a bounded FIFO queue with many producers and a single consumer.
// Publish blocks while the queue is full, so a slow consumer throttles the
// producers instead of dropping events.
type Bus struct {
	events chan Event

	mu       sync.RWMutex
	closed   bool
	done     chan struct{}
	doneOnce sync.Once
}

// NewBus creates a bus holding up to capacity events. A capacity below one
// falls back to DefaultCapacity.
func NewBus(capacity int) *Bus {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Bus{
		events: make(chan Event, capacity),
		done:   make(chan struct{}),
	}
}

// Publish enqueues ev, waiting for capacity. It only gives up when ctx ends
// or the bus is closed.
func (b *Bus) Publish(ctx context.Context, ev Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBusClosed
	}
	select {
	case b.events <- ev:
		return nil
	case <-b.done:
		return ErrBusClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive returns the next event in arrival order.
func (b *Bus) Receive(ctx context.Context) (Event, error) {
	select {
	case ev, ok := <-b.events:
		if !ok {
			return nil, ErrBusClosed
		}
		return ev, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Drain removes and returns every queued event without waiting.
func (b *Bus) Drain() []Event {
	var drained []Event
	for {
		select {
		case ev, ok := <-b.events:
			if !ok {
				return drained
			}
			drained = append(drained, ev)
		default:
			return drained
		}
	}
}

// Len reports the number of queued events.
func (b *Bus) Len() int {
	return len(b.events)
}

// Close stops the bus. Events already queued can still be received.
// Close is safe to call more than once.
func (b *Bus) Close() {
	// Unblock producers waiting on capacity before taking the write lock.
	b.doneOnce.Do(func() { close(b.done) })
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.events)
}

