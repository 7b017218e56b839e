package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"
)

var (
	// ErrEmptySeries is returned when an analysis step has no observations to work with.
	ErrEmptySeries = errors.New("empty series")
	// ErrInvalidPeriod is returned for reversed or implausible year ranges.
	ErrInvalidPeriod = errors.New("invalid period")
)

// Variable identifies one of the three daily temperature columns.
type Variable int

const (
	MeanTemp Variable = iota
	MinTemp
	MaxTemp
)

// Variables returns all temperature variables in report order.
func Variables() []Variable {
	return []Variable{MeanTemp, MinTemp, MaxTemp}
}

// Column returns the CSV column name of the variable.
func (v Variable) Column() string {
	switch v {
	case MeanTemp:
		return "tl_mittel"
	case MinTemp:
		return "tlmin"
	case MaxTemp:
		return "tlmax"
	default:
		return ""
	}
}

// Label returns a human-readable name, used in chart titles.
func (v Variable) Label() string {
	switch v {
	case MeanTemp:
		return "Mean Temperature"
	case MinTemp:
		return "Minimum Temperature"
	case MaxTemp:
		return "Maximum Temperature"
	default:
		return "Unknown"
	}
}

func (v Variable) String() string { return v.Column() }

// ParseVariable maps a column name back to its Variable.
func ParseVariable(s string) (Variable, error) {
	for _, v := range Variables() {
		if v.Column() == s {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown temperature variable %q", s)
}

// Temps holds one value per temperature variable. Missing values are NaN.
type Temps struct {
	Mean float64
	Min  float64
	Max  float64
}

// NaNTemps returns a Temps with every value missing.
func NaNTemps() Temps {
	return Temps{Mean: math.NaN(), Min: math.NaN(), Max: math.NaN()}
}

// Get returns the value of v.
func (t Temps) Get(v Variable) float64 {
	switch v {
	case MeanTemp:
		return t.Mean
	case MinTemp:
		return t.Min
	case MaxTemp:
		return t.Max
	default:
		return math.NaN()
	}
}

// Set assigns the value of v.
func (t *Temps) Set(v Variable, value float64) {
	switch v {
	case MeanTemp:
		t.Mean = value
	case MinTemp:
		t.Min = value
	case MaxTemp:
		t.Max = value
	}
}

type tempsJSON struct {
	Mean *float64 `json:"tl_mittel"`
	Min  *float64 `json:"tlmin"`
	Max  *float64 `json:"tlmax"`
}

// MarshalJSON keys values by column name and writes NaN as null.
func (t Temps) MarshalJSON() ([]byte, error) {
	return json.Marshal(tempsJSON{Mean: nullable(t.Mean), Min: nullable(t.Min), Max: nullable(t.Max)})
}

// UnmarshalJSON reads null or absent values back as NaN.
func (t *Temps) UnmarshalJSON(data []byte) error {
	var raw tempsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t.Mean, t.Min, t.Max = fromNullable(raw.Mean), fromNullable(raw.Min), fromNullable(raw.Max)
	return nil
}

// Observation is one day of station data.
type Observation struct {
	Date   time.Time `json:"date"`
	Values Temps     `json:"values"`
}

// Year returns the calendar year of the observation.
func (o Observation) Year() int { return o.Date.Year() }

// Series is a daily station record.
type Series []Observation

// Sorted returns a copy of s ordered by date.
func (s Series) Sorted() Series {
	out := slices.Clone(s)
	slices.SortStableFunc(out, func(a, b Observation) int { return a.Date.Compare(b.Date) })
	return out
}

// Span returns the earliest and latest date in s. Both are zero for an empty series.
func (s Series) Span() (first, last time.Time) {
	for i, o := range s {
		if i == 0 || o.Date.Before(first) {
			first = o.Date
		}
		if i == 0 || o.Date.After(last) {
			last = o.Date
		}
	}
	return first, last
}

// Period is an inclusive range of calendar years.
type Period struct {
	StartYear int `json:"start_year"`
	EndYear   int `json:"end_year"`
}

// Validate reports whether the period is usable.
func (p Period) Validate() error {
	if p.StartYear < 1800 || p.EndYear > 2200 {
		return fmt.Errorf("%w: %s outside 1800-2200", ErrInvalidPeriod, p)
	}
	if p.StartYear > p.EndYear {
		return fmt.Errorf("%w: %s starts after it ends", ErrInvalidPeriod, p)
	}
	return nil
}

// Contains reports whether t falls within the period.
func (p Period) Contains(t time.Time) bool {
	y := t.Year()
	return y >= p.StartYear && y <= p.EndYear
}

// Years returns the number of calendar years covered.
func (p Period) Years() int { return p.EndYear - p.StartYear + 1 }

func (p Period) String() string { return fmt.Sprintf("%d-%d", p.StartYear, p.EndYear) }

// YearSet is a set of calendar years that need not be contiguous.
type YearSet map[int]struct{}

// NewYearSet builds a YearSet from the given years; duplicates collapse.
func NewYearSet(years ...int) YearSet {
	s := make(YearSet, len(years))
	for _, y := range years {
		s[y] = struct{}{}
	}
	return s
}

// Contains reports whether year is in the set.
func (s YearSet) Contains(year int) bool {
	_, ok := s[year]
	return ok
}

// Add inserts year into the set.
func (s YearSet) Add(year int) { s[year] = struct{}{} }

// Years returns the members in ascending order.
func (s YearSet) Years() []int {
	out := make([]int, 0, len(s))
	for y := range s {
		out = append(out, y)
	}
	slices.Sort(out)
	return out
}

// MonthKey identifies a calendar month of a specific year.
type MonthKey struct {
	Year  int
	Month time.Month
}

// Mid returns the 15th of the month, the timestamp monthly values are plotted at.
func (k MonthKey) Mid() time.Time {
	return time.Date(k.Year, k.Month, 15, 0, 0, 0, 0, time.UTC)
}

func (k MonthKey) compare(o MonthKey) int {
	if k.Year != o.Year {
		return k.Year - o.Year
	}
	return int(k.Month) - int(o.Month)
}

func nullable(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func fromNullable(f *float64) float64 {
	if f == nil {
		return math.NaN()
	}
	return *f
}
