package watch

import "time"

// Clock abstracts timer scheduling so tests can drive ticks with virtual
// time instead of waiting on the wall clock.
type Clock interface {
	// After returns a channel that delivers once the duration has elapsed.
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

func (systemClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// SystemClock returns the wall-clock implementation of Clock.
func SystemClock() Clock {
	return systemClock{}
}
