// Package clock provides a time abstraction so components that read the
// system clock (fallback timestamps, analytics windows, audit fields) can be
// tested against a fixed time.
package clock

import "time"

// Clock defines the time operations the service needs.
type Clock interface {
	// Now returns the current time according to the clock's time source.
	Now() time.Time

	// Since calculates the duration elapsed since time t.
	Since(t time.Time) time.Duration

	// Until calculates the duration remaining until time t.
	Until(t time.Time) time.Duration
}

// realClock implements Clock using system time functions.
type realClock struct{}

// New creates a Clock instance using the host system's time.
func New() Clock {
	return &realClock{}
}

// Now implements Clock for realClock.
func (c *realClock) Now() time.Time {
	return time.Now()
}

// Since implements Clock for realClock.
func (c *realClock) Since(t time.Time) time.Duration {
	return time.Since(t)
}

// Until implements Clock for realClock.
func (c *realClock) Until(t time.Time) time.Duration {
	return time.Until(t)
}

// Fixed returns a Clock pinned to t, for tests.
func Fixed(t time.Time) Clock {
	return fixedClock{t: t}
}

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time {
	return c.t
}

func (c fixedClock) Since(t time.Time) time.Duration {
	return c.t.Sub(t)
}

func (c fixedClock) Until(t time.Time) time.Duration {
	return t.Sub(c.t)
}
