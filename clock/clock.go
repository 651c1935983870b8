// Package clock abstracts wall-clock reads and one-shot timers so
// time-driven behaviour can be tested against a virtual clock.
package clock

import "time"

// Timer is a one-shot timer handle. Stop reports whether the call
// prevented the timer from firing.
type Timer interface {
	Stop() bool
}

// Clock provides the current time and one-shot timer scheduling.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

// System returns a Clock backed by the time package.
func System() Clock { return systemClock{} }

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
