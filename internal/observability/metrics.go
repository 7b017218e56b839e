package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "climatology"

// Metrics holds the Prometheus counters, histograms, and gauges for an analysis run.
type Metrics struct {
	RowsLoaded      prometheus.Counter
	RowsSkipped     prometheus.Counter
	PipelineRunning prometheus.Gauge

	// Phase timing. labels: phase={extract,validate,analyze,<sink name>}
	PhaseDuration *prometheus.HistogramVec

	ValidationIssues    *prometheus.CounterVec // labels: kind
	ChartsRendered      prometheus.Counter
	SummariesPublished  prometheus.Counter
	LastSuccessfulRunTS prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RowsLoaded,
		m.RowsSkipped,
		m.PipelineRunning,
		m.PhaseDuration,
		m.ValidationIssues,
		m.ChartsRendered,
		m.SummariesPublished,
		m.LastSuccessfulRunTS,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_loaded_total",
			Help:      "Daily observations read from the input CSV.",
		}),
		RowsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_skipped_total",
			Help:      "CSV rows dropped because their date could not be parsed.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 while an analysis run is in progress, 0 otherwise.",
		}),
		PhaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "phase_duration_seconds",
			Help:      "Duration of each pipeline phase.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}, []string{"phase"}),
		ValidationIssues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_issues_total",
			Help:      "Data integrity issues found in the input series by kind.",
		}, []string{"kind"}),
		ChartsRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "charts_rendered_total",
			Help:      "PNG charts written to the output directory.",
		}),
		SummariesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summaries_published_total",
			Help:      "Yearly summaries written to the sink topic.",
		}),
		LastSuccessfulRunTS: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_successful_run_timestamp_seconds",
			Help:      "Unix time of the last completed analysis run.",
		}),
	}
}
