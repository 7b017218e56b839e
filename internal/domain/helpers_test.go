package domain

import (
	"math"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

var nan = math.NaN()

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

// buildSeries returns one observation per day from Jan 1 of startYear through
// Dec 31 of endYear with values produced by fn.
func buildSeries(startYear, endYear int, fn func(d time.Time) Temps) Series {
	var s Series
	for d := day(startYear, time.January, 1); d.Year() <= endYear; d = d.AddDate(0, 0, 1) {
		s = append(s, Observation{Date: d, Values: fn(d)})
	}
	return s
}

func constant(mean, lo, hi float64) func(time.Time) Temps {
	return func(time.Time) Temps { return Temps{Mean: mean, Min: lo, Max: hi} }
}

func freezeClock(t *testing.T, at time.Time) {
	t.Helper()
	SetClock(clockwork.NewFakeClockAt(at))
	t.Cleanup(func() { SetClock(nil) })
}
