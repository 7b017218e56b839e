package domain

import (
	"encoding/json"
	"math"
	"slices"
	"time"
)

// MonthlyAnomaly is a monthly mean minus the climatology of its calendar month.
type MonthlyAnomaly struct {
	Year   int        `json:"year"`
	Month  time.Month `json:"month"`
	Values Temps      `json:"values"`
}

// Key returns the group key of a.
func (a MonthlyAnomaly) Key() MonthKey { return MonthKey{Year: a.Year, Month: a.Month} }

// Anomalies subtracts the climatology of the matching calendar month from
// every monthly mean. A NaN operand yields a NaN anomaly.
func Anomalies(means []MonthlyMean, clim Climatology) []MonthlyAnomaly {
	out := make([]MonthlyAnomaly, len(means))
	for i, m := range means {
		ref := clim.Month(m.Month)
		out[i] = MonthlyAnomaly{
			Year:  m.Year,
			Month: m.Month,
			Values: Temps{
				Mean: m.Values.Mean - ref.Mean,
				Min:  m.Values.Min - ref.Min,
				Max:  m.Values.Max - ref.Max,
			},
		}
	}
	return out
}

// YearValue is a single per-year statistic.
type YearValue struct {
	Year  int
	Value float64
}

// MarshalJSON writes NaN values as null.
func (y YearValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Year  int      `json:"year"`
		Value *float64 `json:"value"`
	}{Year: y.Year, Value: nullable(y.Value)})
}

// UnmarshalJSON reads a null value back as NaN.
func (y *YearValue) UnmarshalJSON(data []byte) error {
	var raw struct {
		Year  int      `json:"year"`
		Value *float64 `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	y.Year, y.Value = raw.Year, fromNullable(raw.Value)
	return nil
}

// YearlyMeanAnomaly averages the monthly anomalies of v within each year,
// skipping NaN months. Years are returned in ascending order.
func YearlyMeanAnomaly(anoms []MonthlyAnomaly, v Variable) []YearValue {
	byYear := make(map[int][]float64)
	for _, a := range anoms {
		byYear[a.Year] = append(byYear[a.Year], a.Values.Get(v))
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	slices.Sort(years)

	out := make([]YearValue, len(years))
	for i, y := range years {
		out[i] = YearValue{Year: y, Value: nanMean(validValues(byYear[y]))}
	}
	return out
}

// HottestYears returns the n years with the largest value in descending order.
// NaN values never qualify; equal values keep the earlier year first.
func HottestYears(yearly []YearValue, n int) []YearValue {
	if n <= 0 {
		return []YearValue{}
	}

	ranked := make([]YearValue, 0, len(yearly))
	for _, y := range yearly {
		if !math.IsNaN(y.Value) {
			ranked = append(ranked, y)
		}
	}
	slices.SortStableFunc(ranked, func(a, b YearValue) int {
		switch {
		case a.Value > b.Value:
			return -1
		case a.Value < b.Value:
			return 1
		default:
			return a.Year - b.Year
		}
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// AnomalySummary collects the yearly anomaly ranking of one variable.
type AnomalySummary struct {
	Variable string      `json:"variable"`
	Yearly   []YearValue `json:"yearly"`
	Hottest  []YearValue `json:"hottest"`
}

func summarizeAnomalies(anoms []MonthlyAnomaly, v Variable, n int) AnomalySummary {
	yearly := YearlyMeanAnomaly(anoms, v)
	return AnomalySummary{
		Variable: v.Column(),
		Yearly:   yearly,
		Hottest:  HottestYears(yearly, n),
	}
}
