package domain

import (
	"math"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Restrict returns the observations dated within p.
func Restrict(s Series, p Period) Series {
	out := make(Series, 0, len(s))
	for _, o := range s {
		if p.Contains(o.Date) {
			out = append(out, o)
		}
	}
	return out
}

// SelectYears returns the observations whose calendar year is in years.
func SelectYears(s Series, years YearSet) Series {
	out := make(Series, 0, len(s))
	for _, o := range s {
		if years.Contains(o.Year()) {
			out = append(out, o)
		}
	}
	return out
}

// Climatology is the mean value of each calendar month over a baseline period.
type Climatology struct {
	Baseline Period    `json:"baseline"`
	Months   [12]Temps `json:"months"`
}

// Month returns the climatological values of m.
func (c Climatology) Month(m time.Month) Temps {
	if m < time.January || m > time.December {
		return NaNTemps()
	}
	return c.Months[m-1]
}

// MonthlyClimatology averages every daily value of each calendar month within
// the baseline period. Months without data are NaN.
func MonthlyClimatology(s Series, baseline Period) Climatology {
	var acc [12]accumulator
	for _, o := range Restrict(s, baseline) {
		acc[o.Date.Month()-1].add(o.Values)
	}

	c := Climatology{Baseline: baseline}
	for i := range acc {
		c.Months[i] = acc[i].mean()
	}
	return c
}

// MonthlyMean is the mean of a single (year, month) group.
type MonthlyMean struct {
	Year   int        `json:"year"`
	Month  time.Month `json:"month"`
	Days   int        `json:"days"`
	Values Temps      `json:"values"`
}

// Key returns the group key of m.
func (m MonthlyMean) Key() MonthKey { return MonthKey{Year: m.Year, Month: m.Month} }

// MonthlyMeans groups the observations within p by (year, month) and averages
// each group. Only months with at least one observation are returned, ordered
// by year then month.
func MonthlyMeans(s Series, p Period) []MonthlyMean {
	groups := make(map[MonthKey]*accumulator)
	for _, o := range Restrict(s, p) {
		k := MonthKey{Year: o.Year(), Month: o.Date.Month()}
		a, ok := groups[k]
		if !ok {
			a = &accumulator{}
			groups[k] = a
		}
		a.add(o.Values)
	}

	keys := make([]MonthKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, MonthKey.compare)

	out := make([]MonthlyMean, len(keys))
	for i, k := range keys {
		a := groups[k]
		out[i] = MonthlyMean{Year: k.Year, Month: k.Month, Days: a.rows, Values: a.mean()}
	}
	return out
}

// YearlyMean is the mean of every daily value of one calendar year.
type YearlyMean struct {
	Year   int   `json:"year"`
	Values Temps `json:"values"`
}

// YearlyMeans averages each calendar year within p. Years where any variable
// has no valid data are dropped.
func YearlyMeans(s Series, p Period) []YearlyMean {
	groups := make(map[int]*accumulator)
	for _, o := range Restrict(s, p) {
		a, ok := groups[o.Year()]
		if !ok {
			a = &accumulator{}
			groups[o.Year()] = a
		}
		a.add(o.Values)
	}

	years := make([]int, 0, len(groups))
	for y := range groups {
		years = append(years, y)
	}
	slices.Sort(years)

	out := make([]YearlyMean, 0, len(years))
	for _, y := range years {
		m := groups[y].mean()
		if math.IsNaN(m.Mean) || math.IsNaN(m.Min) || math.IsNaN(m.Max) {
			continue
		}
		out = append(out, YearlyMean{Year: y, Values: m})
	}
	return out
}

// YearCoverage reports how complete a calendar year's daily mean record is.
type YearCoverage struct {
	Year     int     `json:"year"`
	Expected int     `json:"expected"`
	Valid    int     `json:"valid"`
	Fraction float64 `json:"fraction"`
}

// Coverage counts the days with a valid mean temperature for every year of p,
// including years with no observations at all.
func Coverage(s Series, p Period) []YearCoverage {
	valid := make(map[int]int)
	for _, o := range Restrict(s, p) {
		if !math.IsNaN(o.Values.Mean) {
			valid[o.Year()]++
		}
	}

	out := make([]YearCoverage, 0, p.Years())
	for y := p.StartYear; y <= p.EndYear; y++ {
		expected := daysIn(y)
		out = append(out, YearCoverage{
			Year:     y,
			Expected: expected,
			Valid:    valid[y],
			Fraction: float64(valid[y]) / float64(expected),
		})
	}
	return out
}

func daysIn(year int) int {
	return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC).YearDay()
}

// accumulator collects the valid values of each variable for one group.
type accumulator struct {
	rows              int
	means, mins, maxs []float64
}

func (a *accumulator) add(t Temps) {
	a.rows++
	a.means = appendValid(a.means, t.Mean)
	a.mins = appendValid(a.mins, t.Min)
	a.maxs = appendValid(a.maxs, t.Max)
}

func (a *accumulator) values(v Variable) []float64 {
	switch v {
	case MeanTemp:
		return a.means
	case MinTemp:
		return a.mins
	default:
		return a.maxs
	}
}

func (a *accumulator) mean() Temps {
	return Temps{Mean: nanMean(a.means), Min: nanMean(a.mins), Max: nanMean(a.maxs)}
}

func appendValid(xs []float64, v float64) []float64 {
	if math.IsNaN(v) {
		return xs
	}
	return append(xs, v)
}

// nanMean is the arithmetic mean of xs, or NaN when xs is empty.
func nanMean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	return stat.Mean(xs, nil)
}

// validValues returns the non-NaN values of xs.
func validValues(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		out = appendValid(out, x)
	}
	return out
}
