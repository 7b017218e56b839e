// Package domain models a single weather station's daily temperature record
// and the climatological statistics derived from it.
//
// # Data Source
//
// The input is a daily station series as published by GeoSphere Austria
// (formerly ZAMG) for the Graz measuring stations: one row per day with a
// "time" column and the air temperature columns
//
//	tl_mittel  daily mean air temperature (°C)
//	tlmin      daily minimum air temperature (°C)
//	tlmax      daily maximum air temperature (°C)
//
// Gaps in the record appear as empty cells and are carried as NaN.
//
// # Missing Values
//
// Aggregations follow the tabular-library convention: NaN inputs are skipped,
// and an aggregate over no valid input is NaN. A NaN reading never satisfies
// a threshold comparison, so it is never counted as a hot day or a tropical
// night. NaN serializes to JSON null.
//
// # Climatology and Anomalies
//
// A climatology is the mean of every daily value of a calendar month over a
// reference period, by default the WMO climate normal 1991–2020:
//
//	clim[v][m] = mean{ obs.v | obs.Date in baseline, obs.Date.Month() == m }
//
// Monthly anomalies subtract the climatology of the same calendar month from
// each (year, month) mean. The yearly mean anomaly is the mean of a year's
// monthly anomalies; the hottest years are the largest of those.
//
// # Distributions
//
// Monthly distributions pool every daily value of a calendar month over a
// custom, possibly non-contiguous set of years and report the median with
// the interquartile (p25–p75) and interdecile (p10–p90) ranges. Quantiles use
// linear interpolation between closest ranks, see [Quantile].
//
// # Extremes
//
//	Hot day:         tlmax ≥ 30 °C
//	Tropical night:  tlmin ≥ 20 °C
//
// Both thresholds are inclusive and configurable via [Thresholds].
package domain
