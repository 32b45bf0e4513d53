package clock

import "time"

// Clock is the source of the current time for session windows, streak days
// and token expiry
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

// New creates a new SystemClock
func New() *SystemClock {
	return &SystemClock{}
}

// Now returns the current time with the monotonic reading stripped, so
// timestamps compare equal after a round trip through storage
func (c *SystemClock) Now() time.Time {
	return time.Now().Round(0)
}

// Since returns the time elapsed since t according to c
func Since(c Clock, t time.Time) time.Duration {
	return c.Now().Sub(t)
}
