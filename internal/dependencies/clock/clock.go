// Package clock is the ledger clock that record timestamps are read from.
package clock

import "time"

// Clock reports the current ledger time and can be mocked for testing
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock from the host clock, in UTC
type SystemClock struct{}

// New creates a new SystemClock
func New() *SystemClock {
	return &SystemClock{}
}

// Now returns the current time in UTC
func (c *SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// UnixTimestamp returns the clock's time in whole seconds, the resolution
// records are stamped with
func UnixTimestamp(c Clock) int64 {
	return c.Now().Unix()
}
