// Package chart renders the analysis report as PNG figures using gonum/plot.
package chart

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/station-climatology/internal/domain"
	"github.com/couchcryptid/station-climatology/internal/observability"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
)

// File names of the rendered figures.
const (
	DistributionFile = "Monthly Temperature Distributions.png"
	ExtremesFile     = "Hot days and Tropical nights.png"
)

// AnomalyFile returns the file name of the anomaly timeline for p.
func AnomalyFile(p domain.Period) string {
	return fmt.Sprintf("Anomalies from %d to %d.png", p.StartYear, p.EndYear)
}

var (
	lightGray = color.NRGBA{R: 190, G: 190, B: 190, A: 255}
	red       = color.NRGBA{R: 214, G: 39, B: 40, A: 255}
	green     = color.NRGBA{R: 44, G: 160, B: 44, A: 255}
	blue      = color.NRGBA{R: 31, G: 119, B: 180, A: 255}

	// Shades of red, darkest for the hottest year.
	reds = []color.NRGBA{
		{R: 103, G: 0, B: 13, A: 255},
		{R: 165, G: 15, B: 21, A: 255},
		{R: 203, G: 24, B: 29, A: 255},
		{R: 239, G: 59, B: 44, A: 255},
		{R: 251, G: 106, B: 74, A: 255},
	}
)

// Renderer writes the report figures to a directory. It implements
// pipeline.Sink.
type Renderer struct {
	dir     string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewRenderer creates a Renderer writing into dir.
func NewRenderer(dir string, logger *slog.Logger, metrics *observability.Metrics) *Renderer {
	return &Renderer{dir: dir, logger: logger, metrics: metrics}
}

// Name identifies the sink in logs and metrics.
func (r *Renderer) Name() string { return "charts" }

// Load renders every figure of the report.
func (r *Renderer) Load(ctx context.Context, report domain.Report) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create chart dir: %w", err)
	}

	figures := []struct {
		file   string
		render func(domain.Report, string) error
	}{
		{AnomalyFile(report.AnomalyPeriod), saveAnomalies},
		{DistributionFile, saveDistribution},
		{ExtremesFile, saveExtremes},
	}

	for _, f := range figures {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(r.dir, f.file)
		if err := f.render(report, path); err != nil {
			return fmt.Errorf("render %q: %w", f.file, err)
		}
		r.metrics.ChartsRendered.Inc()
		r.logger.Info("chart written", "path", path)
	}
	return nil
}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Legend.Top = true
	p.Legend.TextStyle.Font.Size = vg.Points(9)
	return p
}

func paletteRed(i int) color.Color {
	return reds[i%len(reds)]
}

// withAlpha returns c with the given opacity in [0, 255].
func withAlpha(c color.NRGBA, a uint8) color.NRGBA {
	c.A = a
	return c
}
