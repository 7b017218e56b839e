package domain

import "slices"

// Thresholds define the inclusive lower bounds for extreme-heat days in °C.
type Thresholds struct {
	HotDay        float64 `json:"hot_day"`
	TropicalNight float64 `json:"tropical_night"`
}

// DefaultThresholds returns the conventional 30 °C hot-day and 20 °C
// tropical-night bounds.
func DefaultThresholds() Thresholds {
	return Thresholds{HotDay: 30, TropicalNight: 20}
}

// YearExtremes counts the extreme-heat days of one calendar year.
type YearExtremes struct {
	Year           int `json:"year"`
	Days           int `json:"days"`
	HotDays        int `json:"hot_days"`
	TropicalNights int `json:"tropical_nights"`
}

// CountExtremes counts hot days (max ≥ HotDay) and tropical nights
// (min ≥ TropicalNight) for every calendar year present in s.
// NaN readings never count.
func CountExtremes(s Series, th Thresholds) []YearExtremes {
	byYear := make(map[int]*YearExtremes)
	for _, o := range s {
		e, ok := byYear[o.Year()]
		if !ok {
			e = &YearExtremes{Year: o.Year()}
			byYear[o.Year()] = e
		}
		e.Days++
		// NaN compares false.
		if o.Values.Max >= th.HotDay {
			e.HotDays++
		}
		if o.Values.Min >= th.TropicalNight {
			e.TropicalNights++
		}
	}

	out := make([]YearExtremes, 0, len(byYear))
	for _, e := range byYear {
		out = append(out, *e)
	}
	slices.SortFunc(out, func(a, b YearExtremes) int { return a.Year - b.Year })
	return out
}
