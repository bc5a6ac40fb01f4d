package connector

import "sync/atomic"

// Channel implements a [Connector] using a buffered channel.
type Channel[T any] struct {
	buffer chan T

	size uint64

	closed atomic.Bool
}

// NewChannel creates a new [Channel] with the given capacity.
func NewChannel[T any](size uint64) *Channel[T] {
	return &Channel[T]{
		buffer: make(chan T, size),

		size: size,
	}
}

func (c *Channel[T]) Write(item T) error {
	if c.closed.Load() {
		return ErrClosed
	}

	// Try to send the item without blocking
	select {
	case c.buffer <- item:
		return nil
	default:
		// The channel is full, check again before blocking
		if c.closed.Load() {
			return ErrClosed
		}

		c.buffer <- item
		return nil
	}
}

func (c *Channel[T]) Read() (T, error) {
	if c.closed.Load() && len(c.buffer) == 0 {
		var zero T
		return zero, ErrClosed
	}

	// Try to receive without blocking
	select {
	case item := <-c.buffer:
		return item, nil
	default:
		if c.closed.Load() && len(c.buffer) == 0 {
			var zero T
			return zero, ErrClosed
		}

		item, ok := <-c.buffer
		if !ok {
			var zero T
			return zero, ErrClosed
		}
		return item, nil
	}
}

// Close closes the [Channel] connector.
func (c *Channel[T]) Close() {
	c.closed.Store(true)
}
