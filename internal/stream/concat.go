package stream

import "context"

// concat emits every item of history, then switches to live. No reordering
// happens across the seam; a caller relying on this trusts that history
// precedes live in time.
type concat[T any] struct {
	history, live Source[T]
	historyDone   bool
}

// Concat returns a Source that drains history to completion before
// switching to live.
func Concat[T any](history, live Source[T]) Source[T] {
	return &concat[T]{history: history, live: live}
}

func (c *concat[T]) Next(ctx context.Context) (T, bool, error) {
	if !c.historyDone {
		v, ok, err := c.history.Next(ctx)
		if err != nil {
			var zero T
			return zero, false, err
		}
		if ok {
			return v, true, nil
		}
		c.historyDone = true
	}
	return c.live.Next(ctx)
}
