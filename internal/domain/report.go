package domain

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// DefaultBirthYear is the personal reference year added to distribution year sets.
const DefaultBirthYear = 2002

// Params controls an analysis run.
type Params struct {
	Station            string
	Baseline           Period
	AnomalyPeriod      Period
	HottestN           int
	DistributionYears  YearSet
	// IncludeCurrentYear adds the clock's year to DistributionYears, capped at
	// the last year present in the series.
	IncludeCurrentYear bool
	Thresholds         Thresholds
}

// DefaultParams returns the reference configuration: the 1991–2020 normal as
// both baseline and anomaly period, five hottest years, distributions over
// 2002, 2023, 2024 and the current year, and 30/20 °C extreme thresholds.
func DefaultParams() Params {
	baseline := Period{StartYear: 1991, EndYear: 2020}
	return Params{
		Station:            "Graz",
		Baseline:           baseline,
		AnomalyPeriod:      baseline,
		HottestN:           5,
		DistributionYears:  NewYearSet(DefaultBirthYear, 2023, 2024),
		IncludeCurrentYear: true,
		Thresholds:         DefaultThresholds(),
	}
}

// Validate reports the first invalid parameter.
func (p Params) Validate() error {
	if err := p.Baseline.Validate(); err != nil {
		return fmt.Errorf("baseline: %w", err)
	}
	if err := p.AnomalyPeriod.Validate(); err != nil {
		return fmt.Errorf("anomaly period: %w", err)
	}
	if p.HottestN < 1 {
		return errors.New("hottest year count must be positive")
	}
	if len(p.DistributionYears) == 0 && !p.IncludeCurrentYear {
		return errors.New("distribution year set is empty")
	}
	return nil
}

// ResolveDistributionYears returns the distribution year set for a series
// ending at last. A clock year past the end of the record resolves to the
// record's last year.
func (p Params) ResolveDistributionYears(last time.Time) YearSet {
	years := NewYearSet(p.DistributionYears.Years()...)
	if p.IncludeCurrentYear {
		years.Add(min(CurrentYear(), last.Year()))
	}
	return years
}

// Report is the full result of an analysis run.
type Report struct {
	Station       string    `json:"station"`
	GeneratedAt   time.Time `json:"generated_at"`
	Rows          int       `json:"rows"`
	FirstDate     time.Time `json:"first_date"`
	LastDate      time.Time `json:"last_date"`
	AnomalyPeriod Period    `json:"anomaly_period"`

	Climatology  Climatology      `json:"climatology"`
	YearlyMeans  []YearlyMean     `json:"yearly_means"`
	MonthlyMeans []MonthlyMean    `json:"monthly_means"`
	Anomalies    []MonthlyAnomaly `json:"anomalies"`
	Rankings     []AnomalySummary `json:"rankings"`

	Distribution Distribution   `json:"distribution"`
	Thresholds   Thresholds     `json:"thresholds"`
	Extremes     []YearExtremes `json:"extremes"`
}

// Ranking returns the anomaly summary of v.
func (r Report) Ranking(v Variable) (AnomalySummary, bool) {
	for _, s := range r.Rankings {
		if s.Variable == v.Column() {
			return s, true
		}
	}
	return AnomalySummary{}, false
}

// HottestYears returns the hottest years of the mean temperature anomaly.
func (r Report) HottestYears() []YearValue {
	s, _ := r.Ranking(MeanTemp)
	return s.Hottest
}

// Analyze runs the climatology, distribution and extreme-heat phases over s.
func Analyze(s Series, p Params) (Report, error) {
	if err := p.Validate(); err != nil {
		return Report{}, err
	}
	if len(s) == 0 {
		return Report{}, ErrEmptySeries
	}
	if len(Restrict(s, p.Baseline)) == 0 {
		return Report{}, fmt.Errorf("%w: no observations in baseline %s", ErrEmptySeries, p.Baseline)
	}

	first, last := s.Span()
	r := Report{
		Station:       p.Station,
		GeneratedAt:   clock.Now().UTC(),
		Rows:          len(s),
		FirstDate:     first,
		LastDate:      last,
		AnomalyPeriod: p.AnomalyPeriod,
		Thresholds:    p.Thresholds,
	}

	r.Climatology = MonthlyClimatology(s, p.Baseline)
	r.YearlyMeans = YearlyMeans(s, p.Baseline)
	r.MonthlyMeans = MonthlyMeans(s, p.AnomalyPeriod)
	r.Anomalies = Anomalies(r.MonthlyMeans, r.Climatology)
	for _, v := range Variables() {
		r.Rankings = append(r.Rankings, summarizeAnomalies(r.Anomalies, v, p.HottestN))
	}

	r.Distribution = MonthlyDistribution(s, p.ResolveDistributionYears(last))
	r.Extremes = CountExtremes(s, p.Thresholds)
	return r, nil
}

// YearSummary condenses a report to one record per calendar year.
type YearSummary struct {
	Station        string    `json:"station"`
	Year           int       `json:"year"`
	MeanAnomaly    Temps     `json:"mean_anomaly"`
	HottestRank    int       `json:"hottest_rank,omitempty"`
	Days           int       `json:"days"`
	HotDays        int       `json:"hot_days"`
	TropicalNights int       `json:"tropical_nights"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// Key identifies the summary downstream, e.g. "Graz|2003".
func (y YearSummary) Key() string { return fmt.Sprintf("%s|%d", y.Station, y.Year) }

// YearSummaries merges extreme counts and yearly anomalies into one record per
// year. Years outside the anomaly period carry NaN anomalies; HottestRank is
// 1-based for the mean temperature ranking and 0 otherwise.
func (r Report) YearSummaries() []YearSummary {
	byYear := make(map[int]*YearSummary)
	get := func(year int) *YearSummary {
		s, ok := byYear[year]
		if !ok {
			s = &YearSummary{Station: r.Station, Year: year, MeanAnomaly: NaNTemps(), GeneratedAt: r.GeneratedAt}
			byYear[year] = s
		}
		return s
	}

	for _, e := range r.Extremes {
		s := get(e.Year)
		s.Days, s.HotDays, s.TropicalNights = e.Days, e.HotDays, e.TropicalNights
	}
	for _, ranking := range r.Rankings {
		v, err := ParseVariable(ranking.Variable)
		if err != nil {
			continue
		}
		for _, y := range ranking.Yearly {
			get(y.Year).MeanAnomaly.Set(v, y.Value)
		}
	}
	for i, y := range r.HottestYears() {
		get(y.Year).HottestRank = i + 1
	}

	out := make([]YearSummary, 0, len(byYear))
	for _, s := range byYear {
		out = append(out, *s)
	}
	slices.SortFunc(out, func(a, b YearSummary) int { return a.Year - b.Year })
	return out
}
