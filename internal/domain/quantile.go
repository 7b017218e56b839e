package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"time"
)

// Quantile returns the q-th quantile of values using linear interpolation
// between closest ranks: with the n valid values sorted, position q·(n−1)
// is interpolated between its floor and ceiling neighbours.
// NaN values are ignored and an empty input yields NaN.
func Quantile(values []float64, q float64) (float64, error) {
	if q < 0 || q > 1 || math.IsNaN(q) {
		return math.NaN(), fmt.Errorf("quantile %v outside [0, 1]", q)
	}
	sorted := validValues(values)
	slices.Sort(sorted)
	return quantileSorted(sorted, q), nil
}

// quantileSorted expects sorted input without NaN and q in [0, 1].
func quantileSorted(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// Quantiles summarizes one sample with its median and spread bounds.
type Quantiles struct {
	Median float64
	P10    float64
	P25    float64
	P75    float64
	P90    float64
}

// Summarize computes the order statistics of values, ignoring NaN.
func Summarize(values []float64) Quantiles {
	sorted := validValues(values)
	slices.Sort(sorted)
	return Quantiles{
		Median: quantileSorted(sorted, 0.5),
		P10:    quantileSorted(sorted, 0.10),
		P25:    quantileSorted(sorted, 0.25),
		P75:    quantileSorted(sorted, 0.75),
		P90:    quantileSorted(sorted, 0.90),
	}
}

// IQR returns the interquartile range p75 − p25.
func (q Quantiles) IQR() float64 { return q.P75 - q.P25 }

// IDR returns the interdecile range p90 − p10.
func (q Quantiles) IDR() float64 { return q.P90 - q.P10 }

type quantilesJSON struct {
	Median *float64 `json:"median"`
	P10    *float64 `json:"p10"`
	P25    *float64 `json:"p25"`
	P75    *float64 `json:"p75"`
	P90    *float64 `json:"p90"`
}

// MarshalJSON writes NaN values as null.
func (q Quantiles) MarshalJSON() ([]byte, error) {
	return json.Marshal(quantilesJSON{
		Median: nullable(q.Median),
		P10:    nullable(q.P10),
		P25:    nullable(q.P25),
		P75:    nullable(q.P75),
		P90:    nullable(q.P90),
	})
}

// UnmarshalJSON reads null values back as NaN.
func (q *Quantiles) UnmarshalJSON(data []byte) error {
	var raw quantilesJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	q.Median = fromNullable(raw.Median)
	q.P10 = fromNullable(raw.P10)
	q.P25 = fromNullable(raw.P25)
	q.P75 = fromNullable(raw.P75)
	q.P90 = fromNullable(raw.P90)
	return nil
}

// MonthStats holds the order statistics of every variable for one calendar month.
type MonthStats struct {
	Month time.Month `json:"month"`
	Days  int        `json:"days"`
	Mean  Quantiles  `json:"tl_mittel"`
	Min   Quantiles  `json:"tlmin"`
	Max   Quantiles  `json:"tlmax"`
}

// Get returns the statistics of v.
func (m MonthStats) Get(v Variable) Quantiles {
	switch v {
	case MeanTemp:
		return m.Mean
	case MinTemp:
		return m.Min
	default:
		return m.Max
	}
}

// Distribution is the per-month spread of daily values over a set of years.
type Distribution struct {
	Years  []int          `json:"years"`
	Months [12]MonthStats `json:"months"`
}

// MonthlyDistribution pools the daily values of each calendar month over the
// given years and summarizes them. Months without data hold NaN statistics.
func MonthlyDistribution(s Series, years YearSet) Distribution {
	var acc [12]accumulator
	for _, o := range SelectYears(s, years) {
		acc[o.Date.Month()-1].add(o.Values)
	}

	d := Distribution{Years: years.Years()}
	for i := range acc {
		d.Months[i] = MonthStats{
			Month: time.Month(i + 1),
			Days:  acc[i].rows,
			Mean:  Summarize(acc[i].values(MeanTemp)),
			Min:   Summarize(acc[i].values(MinTemp)),
			Max:   Summarize(acc[i].values(MaxTemp)),
		}
	}
	return d
}
