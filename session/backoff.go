package session

import (
	"context"
	"time"
)

// Backoff yields strictly increasing reconnect delays, doubling from base up
// to max. Reset returns it to base after a successful registration.
type Backoff struct {
	base time.Duration
	max  time.Duration
	next time.Duration
}

// Next returns the current delay and advances to the following one.
func (b *Backoff) Next() time.Duration {
	ret := b.next
	doubled := b.next * 2
	if doubled > b.max {
		doubled = b.max
	}
	b.next = doubled
	return ret
}

// Reset restores the base delay.
func (b *Backoff) Reset() {
	b.next = b.base
}

// NewBackoff creates a backoff starting at base and capped at max.
func NewBackoff(base, max time.Duration) *Backoff {
	if base <= 0 {
		base = 5 * time.Second
	}
	if max < base {
		max = base
	}
	return &Backoff{base: base, max: max, next: base}
}

// sleep waits for the given delay without starving the caller's context; a
// cancelled context cuts the wait short.
func sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
