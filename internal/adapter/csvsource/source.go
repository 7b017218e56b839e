// Package csvsource loads a station's daily temperature CSV into a domain series.
package csvsource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/couchcryptid/station-climatology/internal/domain"
	"github.com/couchcryptid/station-climatology/internal/observability"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// TimeColumn is the name of the date column.
const TimeColumn = "time"

// ErrMissingColumn is returned when the CSV header lacks a required column.
var ErrMissingColumn = errors.New("missing column")

// Timestamps seen in station exports, e.g. "1922-01-01T00:00+00:00".
var timeLayouts = []string{
	time.DateOnly,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	time.RFC3339,
	"2006-01-02T15:04:05",
	time.DateTime,
}

// Source reads a CSV file. It implements pipeline.Extractor.
type Source struct {
	path    string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewSource creates a Source for the CSV at path.
func NewSource(path string, logger *slog.Logger, metrics *observability.Metrics) *Source {
	return &Source{path: path, logger: logger, metrics: metrics}
}

// Extract reads every row of the file and returns the series sorted by date.
// Rows with an unparseable date are skipped and counted; missing temperatures
// become NaN.
func (s *Source) Extract(ctx context.Context) (domain.Series, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	obs, skipped, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	if skipped > 0 {
		s.logger.Warn("skipped rows with unparseable dates", "path", s.path, "skipped", skipped)
		s.metrics.RowsSkipped.Add(float64(skipped))
	}
	s.metrics.RowsLoaded.Add(float64(len(obs)))
	s.logger.Info("station data loaded", "path", s.path, "rows", len(obs))
	return obs.Sorted(), nil
}

// Parse decodes CSV data with a header row containing at least the time and
// temperature columns. It returns the series in file order and the number of
// rows skipped for an unparseable date.
func Parse(r io.Reader) (domain.Series, int, error) {
	types := map[string]series.Type{TimeColumn: series.String}
	for _, v := range domain.Variables() {
		types[v.Column()] = series.Float
	}

	df := dataframe.ReadCSV(r,
		dataframe.WithTypes(types),
		dataframe.NaNValues([]string{"", "NA", "NaN", "nan", "null"}),
	)
	if df.Err != nil {
		return nil, 0, fmt.Errorf("parse csv: %w", df.Err)
	}

	names := df.Names()
	for _, col := range append([]string{TimeColumn}, columns()...) {
		if !slices.Contains(names, col) {
			return nil, 0, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	times := df.Col(TimeColumn).Records()
	means := df.Col(domain.MeanTemp.Column()).Float()
	mins := df.Col(domain.MinTemp.Column()).Float()
	maxs := df.Col(domain.MaxTemp.Column()).Float()

	out := make(domain.Series, 0, len(times))
	skipped := 0
	for i, raw := range times {
		date, err := ParseDate(raw)
		if err != nil {
			skipped++
			continue
		}
		out = append(out, domain.Observation{
			Date:   date,
			Values: domain.Temps{Mean: means[i], Min: mins[i], Max: maxs[i]},
		})
	}
	return out, skipped, nil
}

// ParseDate accepts a date or timestamp and returns its calendar date at UTC
// midnight. The wall-clock date of the timestamp is kept; no zone conversion
// is applied.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func columns() []string {
	out := make([]string, 0, 3)
	for _, v := range domain.Variables() {
		out = append(out, v.Column())
	}
	return out
}
