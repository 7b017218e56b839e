//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/station-climatology/internal/adapter/csvsource"
	"github.com/couchcryptid/station-climatology/internal/adapter/kafka"
	"github.com/couchcryptid/station-climatology/internal/config"
	"github.com/couchcryptid/station-climatology/internal/domain"
	"github.com/couchcryptid/station-climatology/internal/mockdata"
	"github.com/couchcryptid/station-climatology/internal/observability"
	"github.com/couchcryptid/station-climatology/internal/pipeline"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testSinkTopic = "test-yearly-summaries"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node broker and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("climatology-test"))
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "start kafka container")

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	cconn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer cconn.Close()

	require.NoError(t, cconn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// readSummaries reads n messages from the topic, keyed by message key.
func readSummaries(ctx context.Context, t *testing.T, broker string, n int) (map[string]domain.YearSummary, map[string]string) {
	t.Helper()
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		StartOffset: kafkago.FirstOffset,
		MaxWait:     500 * time.Millisecond,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	summaries := make(map[string]domain.YearSummary, n)
	headers := map[string]string{}
	for len(summaries) < n {
		msg, err := consumer.ReadMessage(readCtx)
		require.NoError(t, err, "read from sink topic")

		var s domain.YearSummary
		require.NoError(t, json.Unmarshal(msg.Value, &s), "unmarshal sink message")
		summaries[string(msg.Key)] = s
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
	}
	return summaries, headers
}

// TestPipelinePublishesYearlySummaries runs the analysis over a generated
// station file and checks every year arrives on the sink topic.
func TestPipelinePublishesYearlySummaries(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2025, time.June, 1, 6, 0, 0, 0, time.UTC)))
	t.Cleanup(func() { domain.SetClock(nil) })

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	opts := mockdata.DefaultOptions()
	opts.Start = time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)
	opts.End = time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	input := filepath.Join(t.TempDir(), "station_daily.csv")
	f, err := os.Create(input)
	require.NoError(t, err)
	require.NoError(t, mockdata.WriteCSV(f, mockdata.Generate(opts)))
	require.NoError(t, f.Close())

	cfg := &config.Config{
		KafkaBrokers:   []string{broker},
		KafkaSinkTopic: testSinkTopic,
	}
	logger := discardLogger()
	metrics := observability.NewMetricsForTesting()
	writer := kafka.NewWriter(cfg, logger, metrics)
	t.Cleanup(func() { _ = writer.Close() })

	p := pipeline.New(
		csvsource.NewSource(input, logger, metrics),
		pipeline.NewAnalyzer(domain.DefaultParams(), logger),
		[]pipeline.Sink{writer},
		logger, metrics,
	)
	require.NoError(t, p.Run(ctx))

	report, ok := p.Report()
	require.True(t, ok)
	want := report.YearSummaries()
	require.Len(t, want, 35)

	got, headers := readSummaries(ctx, t, broker, len(want))

	assert.Equal(t, "Graz", headers["station"])
	assert.Equal(t, "2025-06-01T06:00:00Z", headers["generated_at"])

	for _, w := range want {
		s, ok := got[w.Key()]
		require.True(t, ok, "missing summary for %s", w.Key())
		assert.Equal(t, w.HotDays, s.HotDays, w.Key())
		assert.Equal(t, w.TropicalNights, s.TropicalNights, w.Key())
		assert.Equal(t, w.HottestRank, s.HottestRank, w.Key())
	}

	hottest := report.HottestYears()
	require.NotEmpty(t, hottest)
	top := got["Graz|"+strconv.Itoa(hottest[0].Year)]
	assert.Equal(t, 1, top.HottestRank)
	assert.InDelta(t, hottest[0].Value, top.MeanAnomaly.Mean, 1e-9)
}
