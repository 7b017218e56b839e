package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/station-climatology/internal/domain"
)

// ClimateAnalyzer implements Analyzer using the domain analysis functions.
type ClimateAnalyzer struct {
	params domain.Params
	logger *slog.Logger
}

// NewAnalyzer creates a ClimateAnalyzer for the given parameters.
func NewAnalyzer(params domain.Params, logger *slog.Logger) *ClimateAnalyzer {
	return &ClimateAnalyzer{
		params: params,
		logger: logger,
	}
}

func (a *ClimateAnalyzer) Analyze(ctx context.Context, s domain.Series) (domain.Report, error) {
	if err := ctx.Err(); err != nil {
		return domain.Report{}, err
	}

	r, err := domain.Analyze(s, a.params)
	if err != nil {
		return domain.Report{}, err
	}

	for _, ranking := range r.Rankings {
		a.logger.Info("hottest years",
			"variable", ranking.Variable,
			"period", r.AnomalyPeriod.String(),
			"years", years(ranking.Hottest),
		)
	}
	a.logger.Info("analysis complete",
		"station", r.Station,
		"baseline", r.Climatology.Baseline.String(),
		"distribution_years", r.Distribution.Years,
		"extreme_years", len(r.Extremes),
	)
	return r, nil
}

func years(values []domain.YearValue) []int {
	out := make([]int, len(values))
	for i, v := range values {
		out[i] = v.Year
	}
	return out
}
