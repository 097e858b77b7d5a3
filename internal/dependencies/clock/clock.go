package clock

import "time"

// Clock is the source of "now" for game timing. Games are judged against a
// wall-clock time limit, so every component that stamps or checks a game
// takes a Clock rather than calling time.Now directly.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock in UTC
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current UTC time
func (c *RealClock) Now() time.Time {
	return time.Now().UTC()
}
