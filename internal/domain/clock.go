package domain

import "github.com/jonboulle/clockwork"

// clock stamps reports and resolves the "current year" of distribution year
// sets. Tests and fixture generators freeze it with SetClock.
var clock = clockwork.NewRealClock()

// SetClock swaps the package time source. Pass nil to restore the real clock.
func SetClock(c clockwork.Clock) {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	clock = c
}

// CurrentYear returns the calendar year of the package clock in UTC.
func CurrentYear() int {
	return clock.Now().UTC().Year()
}
