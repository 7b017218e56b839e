package pipeline_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/station-climatology/internal/domain"
	"github.com/couchcryptid/station-climatology/internal/observability"
	"github.com/couchcryptid/station-climatology/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockExtractor struct {
	series domain.Series
	err    error
}

func (m *mockExtractor) Extract(_ context.Context) (domain.Series, error) {
	return m.series, m.err
}

type mockAnalyzer struct {
	err   error
	calls int
}

func (m *mockAnalyzer) Analyze(_ context.Context, s domain.Series) (domain.Report, error) {
	m.calls++
	if m.err != nil {
		return domain.Report{}, m.err
	}
	return domain.Report{Station: "Graz", Rows: len(s)}, nil
}

type mockSink struct {
	name     string
	failures int // number of leading calls that fail
	err      error
	calls    int
	loaded   []domain.Report
	order    *[]string
}

func (m *mockSink) Name() string { return m.name }

func (m *mockSink) Load(_ context.Context, r domain.Report) error {
	m.calls++
	if m.order != nil {
		*m.order = append(*m.order, m.name)
	}
	if m.err != nil && m.calls <= m.failures {
		return m.err
	}
	m.loaded = append(m.loaded, r)
	return nil
}

func newTestMetrics() *observability.Metrics {
	// Use a fresh registry to avoid "already registered" panics in tests.
	return observability.NewMetricsForTesting()
}

func threeDays() domain.Series {
	s := make(domain.Series, 3)
	for i := range s {
		s[i] = domain.Observation{
			Date:   time.Date(2024, 7, i+1, 0, 0, 0, 0, time.UTC),
			Values: domain.Temps{Mean: 22, Min: 15, Max: 30},
		}
	}
	return s
}

func fastRetry() pipeline.Option {
	return pipeline.WithSinkRetry(3, time.Millisecond, 2*time.Millisecond)
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	var order []string
	charts := &mockSink{name: "charts", order: &order}
	report := &mockSink{name: "report", order: &order}
	metrics := newTestMetrics()

	p := pipeline.New(&mockExtractor{series: threeDays()}, &mockAnalyzer{}, []pipeline.Sink{charts, report}, slog.Default(), metrics)

	require.Error(t, p.CheckReadiness(context.Background()))
	_, ok := p.Report()
	assert.False(t, ok)

	require.NoError(t, p.Run(context.Background()))

	assert.Equal(t, []string{"charts", "report"}, order)
	require.Len(t, report.loaded, 1)
	assert.Equal(t, 3, report.loaded[0].Rows)
	require.NoError(t, p.CheckReadiness(context.Background()))

	got, ok := p.Report()
	require.True(t, ok)
	assert.Equal(t, "Graz", got.Station)
	assert.Zero(t, testutil.ToFloat64(metrics.PipelineRunning))
	assert.Positive(t, testutil.ToFloat64(metrics.LastSuccessfulRunTS))
	assert.Equal(t, 5, testutil.CollectAndCount(metrics.PhaseDuration), "extract, validate, analyze and two sinks")
}

func TestPipeline_Run_ExtractError(t *testing.T) {
	analyzer := &mockAnalyzer{}
	sink := &mockSink{name: "report"}

	p := pipeline.New(&mockExtractor{err: errors.New("file not found")}, analyzer, []pipeline.Sink{sink}, slog.Default(), newTestMetrics())

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extract")
	assert.Zero(t, analyzer.calls)
	assert.Zero(t, sink.calls)
	require.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_AnalyzeError(t *testing.T) {
	sink := &mockSink{name: "report"}

	p := pipeline.New(&mockExtractor{series: threeDays()}, &mockAnalyzer{err: domain.ErrEmptySeries}, []pipeline.Sink{sink}, slog.Default(), newTestMetrics())

	err := p.Run(context.Background())
	require.ErrorIs(t, err, domain.ErrEmptySeries)
	assert.Zero(t, sink.calls)
	require.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_SinkErrorStopsRun(t *testing.T) {
	failing := &mockSink{name: "kafka", err: errors.New("broker down"), failures: 10}
	after := &mockSink{name: "report"}

	p := pipeline.New(&mockExtractor{series: threeDays()}, &mockAnalyzer{}, []pipeline.Sink{failing, after}, slog.Default(), newTestMetrics(), fastRetry())

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sink kafka")
	assert.Contains(t, err.Error(), "broker down")
	assert.Equal(t, 3, failing.calls)
	assert.Zero(t, after.calls)
	require.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_SinkRetrySucceeds(t *testing.T) {
	flaky := &mockSink{name: "kafka", err: errors.New("leader not available"), failures: 2}

	p := pipeline.New(&mockExtractor{series: threeDays()}, &mockAnalyzer{}, []pipeline.Sink{flaky}, slog.Default(), newTestMetrics(), fastRetry())

	require.NoError(t, p.Run(context.Background()))
	assert.Equal(t, 3, flaky.calls)
	assert.Len(t, flaky.loaded, 1)
	require.NoError(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	failing := &mockSink{name: "kafka", err: errors.New("broker down"), failures: 10}

	p := pipeline.New(&mockExtractor{series: threeDays()}, &mockAnalyzer{}, []pipeline.Sink{failing}, slog.Default(), newTestMetrics(),
		pipeline.WithSinkRetry(5, time.Hour, time.Hour))

	err := p.Run(ctx)
	require.Error(t, err)
	assert.Equal(t, 1, failing.calls)
}

func TestPipeline_Run_CountsValidationIssues(t *testing.T) {
	s := threeDays()
	s = append(s, s[2])                                    // duplicate
	s[0].Values = domain.Temps{Mean: 20, Min: 25, Max: 30} // min above mean
	metrics := newTestMetrics()

	p := pipeline.New(&mockExtractor{series: s}, &mockAnalyzer{}, nil, slog.Default(), metrics)

	require.NoError(t, p.Run(context.Background()))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ValidationIssues.WithLabelValues(domain.IssueDuplicateDate)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ValidationIssues.WithLabelValues(domain.IssueInconsistent)))
}

func TestPipeline_ServesReadinessThroughSharedHandler(t *testing.T) {
	p := pipeline.New(&mockExtractor{series: threeDays()}, &mockAnalyzer{}, nil, slog.Default(), newTestMetrics())
	readyz := sharedobs.ReadinessHandler(p)

	rec := httptest.NewRecorder()
	readyz.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "analysis has not completed yet")

	require.NoError(t, p.Run(context.Background()))

	rec = httptest.NewRecorder()
	readyz.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready"}`, rec.Body.String())
}

func TestClimateAnalyzer_Analyze(t *testing.T) {
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)))
	t.Cleanup(func() { domain.SetClock(nil) })

	var s domain.Series
	for d := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC); d.Year() <= 2004; d = d.AddDate(0, 0, 1) {
		warm := float64(d.Year() - 2000)
		s = append(s, domain.Observation{Date: d, Values: domain.Temps{Mean: 10 + warm, Min: 5 + warm, Max: 15 + warm}})
	}

	params := domain.DefaultParams()
	params.Baseline = domain.Period{StartYear: 2000, EndYear: 2004}
	params.AnomalyPeriod = params.Baseline
	params.HottestN = 2

	r, err := pipeline.NewAnalyzer(params, slog.Default()).Analyze(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC), r.GeneratedAt)
	hottest := r.HottestYears()
	require.Len(t, hottest, 2)
	assert.Equal(t, 2004, hottest[0].Year)
	assert.Equal(t, 2003, hottest[1].Year)
	assert.Equal(t, []int{2002, 2004, 2023, 2024}, r.Distribution.Years, "current year capped at the last year of data")
}

func TestClimateAnalyzer_Analyze_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pipeline.NewAnalyzer(domain.DefaultParams(), slog.Default()).Analyze(ctx, threeDays())
	require.ErrorIs(t, err, context.Canceled)
}
