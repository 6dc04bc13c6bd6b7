// Package eventbus implements a non-blocking publish/subscribe bus. A slow
// subscriber never stalls the publisher: events that do not fit in its
// buffer are dropped and counted.
package eventbus

import (
	"sync"
	"sync/atomic"
)

// Event represents an arbitrary event passed on the bus.
type Event interface{}

// EventBus is the untyped bus consumed by the dispatch Engine.
type EventBus interface {
	Publish(Event)
	Subscribe() <-chan Event
	Unsubscribe(<-chan Event)
	Close()
}

const defaultBuffer = 16

type options struct {
	buffer int
}

// Option configures a bus.
type Option func(*options)

// WithBuffer sets the per-subscriber channel capacity.
func WithBuffer(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.buffer = n
		}
	}
}

// TypedBus is a type-safe fan-out bus for events of type T.
type TypedBus[T any] struct {
	mu      sync.RWMutex
	subs    []chan T
	closed  bool
	buffer  int
	dropped atomic.Uint64
}

// Bus is the untyped bus implementation.
type Bus = TypedBus[Event]

// New creates an untyped Bus.
func New(opts ...Option) *Bus { return NewTyped[Event](opts...) }

// NewTyped creates a new TypedBus.
func NewTyped[T any](opts ...Option) *TypedBus[T] {
	o := options{buffer: defaultBuffer}
	for _, opt := range opts {
		opt(&o)
	}
	return &TypedBus[T]{buffer: o.buffer}
}

// Publish sends the event to all subscribers without blocking.
func (b *TypedBus[T]) Publish(e T) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			b.dropped.Add(1)
		}
	}
}

// Dropped returns the number of deliveries skipped because a subscriber
// buffer was full.
func (b *TypedBus[T]) Dropped() uint64 { return b.dropped.Load() }

// Subscribe registers a subscriber and returns its channel. Subscribing to a
// closed bus returns a closed channel.
func (b *TypedBus[T]) Subscribe() <-chan T {
	ch := make(chan T, b.buffer)
	b.mu.Lock()
	if b.closed {
		close(ch)
	} else {
		b.subs = append(b.subs, ch)
	}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the subscriber and closes its channel.
func (b *TypedBus[T]) Unsubscribe(sub <-chan T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, ch := range b.subs {
		if ch == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			close(ch)
			return
		}
	}
}

// Close closes the bus and all subscriber channels.
func (b *TypedBus[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
