package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/station-climatology/internal/domain"
	"github.com/couchcryptid/station-climatology/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
)

// Extractor reads the full daily series from the source.
type Extractor interface {
	Extract(ctx context.Context) (domain.Series, error)
}

// Analyzer turns a daily series into a report.
type Analyzer interface {
	Analyze(ctx context.Context, s domain.Series) (domain.Report, error)
}

// Sink writes a report to a destination.
type Sink interface {
	Name() string
	Load(ctx context.Context, r domain.Report) error
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSinkRetry sets how often a failing sink is attempted and the backoff
// between attempts. The backoff doubles after each attempt up to maxBackoff.
func WithSinkRetry(attempts int, initial, maxBackoff time.Duration) Option {
	return func(p *Pipeline) {
		p.sinkAttempts = max(attempts, 1)
		p.initialBackoff = initial
		p.maxBackoff = maxBackoff
	}
}

// Pipeline orchestrates the extract-validate-analyze-load run.
type Pipeline struct {
	extractor Extractor
	analyzer  Analyzer
	sinks     []Sink
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
	report    atomic.Pointer[domain.Report]

	sinkAttempts   int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// New creates a Pipeline with the given stages and observability. Sinks are
// loaded in order.
func New(e Extractor, a Analyzer, sinks []Sink, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor:      e,
		analyzer:       a,
		sinks:          sinks,
		logger:         logger,
		metrics:        metrics,
		sinkAttempts:   3,
		initialBackoff: 200 * time.Millisecond,
		maxBackoff:     5 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CheckReadiness returns nil once a run has completed, or an error describing
// why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("analysis has not completed yet")
	}
	return nil
}

// Report returns the report of the last completed run.
func (p *Pipeline) Report() (domain.Report, bool) {
	r := p.report.Load()
	if r == nil {
		return domain.Report{}, false
	}
	return *r, true
}

// Run executes one analysis: extract, validate, analyze, then every sink in
// order. The first failing phase stops the run.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "sinks", len(p.sinks))
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	var series domain.Series
	err := p.phase("extract", func() error {
		var err error
		series, err = p.extractor.Extract(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}

	_ = p.phase("validate", func() error {
		p.validate(series)
		return nil
	})

	var report domain.Report
	err = p.phase("analyze", func() error {
		var err error
		report, err = p.analyzer.Analyze(ctx, series)
		return err
	})
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	for _, s := range p.sinks {
		if err := p.phase(s.Name(), func() error { return p.load(ctx, s, report) }); err != nil {
			return fmt.Errorf("sink %s: %w", s.Name(), err)
		}
	}

	p.report.Store(&report)
	p.ready.Store(true)
	p.metrics.LastSuccessfulRunTS.Set(float64(time.Now().Unix()))
	p.logger.Info("pipeline finished", "rows", report.Rows, "years", len(report.Extremes))
	return nil
}

// phase runs fn and records its duration.
func (p *Pipeline) phase(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	p.metrics.PhaseDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	if err != nil {
		p.logger.Error("phase failed", "phase", name, "error", err)
		return err
	}
	p.logger.Debug("phase done", "phase", name, "duration", elapsed)
	return nil
}

// validate logs and counts integrity issues. Issues never stop the run.
func (p *Pipeline) validate(s domain.Series) {
	issues := domain.Validate(s)
	if len(issues) == 0 {
		return
	}
	for kind, n := range domain.CountIssues(issues) {
		p.metrics.ValidationIssues.WithLabelValues(kind).Add(float64(n))
	}
	p.logger.Warn("data integrity issues found", "issues", len(issues), "first", issues[0].String())
	for _, issue := range issues {
		p.logger.Debug("data integrity issue", "kind", issue.Kind, "date", issue.Date.Format(time.DateOnly), "detail", issue.Detail)
	}
}

// load attempts the sink until it succeeds, the attempts are exhausted or the
// context is cancelled.
func (p *Pipeline) load(ctx context.Context, s Sink, r domain.Report) error {
	backoff := p.initialBackoff
	var err error
	for attempt := 1; attempt <= p.sinkAttempts; attempt++ {
		if err = s.Load(ctx, r); err == nil {
			return nil
		}
		if ctx.Err() != nil || attempt == p.sinkAttempts {
			break
		}
		p.logger.Warn("sink load failed, retrying", "sink", s.Name(), "attempt", attempt, "error", err)
		if !retry.SleepWithContext(ctx, backoff) {
			return ctx.Err()
		}
		backoff = retry.NextBackoff(backoff, p.maxBackoff)
	}
	return err
}
