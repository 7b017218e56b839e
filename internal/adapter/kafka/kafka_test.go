package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/couchcryptid/station-climatology/internal/domain"
	"github.com/couchcryptid/station-climatology/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func newTestWriter(fw *fakeWriter) (*Writer, *observability.Metrics) {
	m := observability.NewMetricsForTesting()
	return &Writer{writer: fw, logger: slog.New(slog.NewTextHandler(io.Discard, nil)), metrics: m}, m
}

var generated = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestSerializeToMessage(t *testing.T) {
	s := domain.YearSummary{
		Station:        "Graz",
		Year:           2003,
		MeanAnomaly:    domain.Temps{Mean: 2.4, Min: 1.9, Max: math.NaN()},
		HottestRank:    1,
		Days:           365,
		HotDays:        54,
		TropicalNights: 12,
		GeneratedAt:    generated,
	}

	msg, err := serializeToMessage(s)
	require.NoError(t, err)

	assert.Equal(t, []byte("Graz|2003"), msg.Key)
	assert.Contains(t, string(msg.Value), `"hot_days":54`)
	assert.Contains(t, string(msg.Value), `"tlmax":null`)
	assert.Len(t, msg.Headers, 2)
	assert.Equal(t, "station", msg.Headers[0].Key)
	assert.Equal(t, []byte("Graz"), msg.Headers[0].Value)
	assert.Equal(t, "generated_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(generated.Format(time.RFC3339)), msg.Headers[1].Value)

	var back domain.YearSummary
	require.NoError(t, json.Unmarshal(msg.Value, &back))
	assert.Equal(t, 2003, back.Year)
	assert.True(t, math.IsNaN(back.MeanAnomaly.Max))
}

func TestWriter_Load(t *testing.T) {
	fw := &fakeWriter{}
	w, metrics := newTestWriter(fw)
	r := domain.Report{
		Station:     "Graz",
		GeneratedAt: generated,
		Extremes: []domain.YearExtremes{
			{Year: 2002, Days: 365, HotDays: 20},
			{Year: 2003, Days: 365, HotDays: 54, TropicalNights: 12},
		},
	}

	require.NoError(t, w.Load(context.Background(), r))

	require.Len(t, fw.msgs, 2)
	assert.Equal(t, []byte("Graz|2002"), fw.msgs[0].Key)
	assert.Equal(t, []byte("Graz|2003"), fw.msgs[1].Key)
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.SummariesPublished))
	assert.Equal(t, "kafka", w.Name())
}

func TestWriter_LoadBatch_Empty(t *testing.T) {
	fw := &fakeWriter{err: errors.New("must not be called")}
	w, _ := newTestWriter(fw)

	require.NoError(t, w.LoadBatch(context.Background(), nil))
}

func TestWriter_LoadBatch_Error(t *testing.T) {
	fw := &fakeWriter{err: errors.New("broker down")}
	w, metrics := newTestWriter(fw)

	err := w.LoadBatch(context.Background(), []domain.YearSummary{{Station: "Graz", Year: 2003}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
	assert.Zero(t, testutil.ToFloat64(metrics.SummariesPublished))
}

func TestWriter_Close(t *testing.T) {
	fw := &fakeWriter{}
	w, _ := newTestWriter(fw)

	require.NoError(t, w.Close())
	assert.True(t, fw.closed)
}
