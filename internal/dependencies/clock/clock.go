package clock

import "time"

// Timer is a cancellable handle to scheduled deferred work. Stop reports
// whether the cancellation prevented the callback from firing.
type Timer interface {
	Stop() bool
}

// Clock provides time operations that can be mocked for testing. Grace
// windows, disconnect timers, driver ticks and bot delays are all scheduled
// through AfterFunc so tests can fire them deterministically.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

// RealClock implements Clock using the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current time
func (c *RealClock) Now() time.Time {
	return time.Now()
}

// AfterFunc schedules fn on its own goroutine after d
func (c *RealClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
