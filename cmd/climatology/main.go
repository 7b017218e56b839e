// Command climatology analyzes a station's daily temperature record: the
// monthly climatology and anomalies with the hottest years, monthly
// distributions over a chosen year set, and yearly hot-day and tropical-night
// counts. Results are written as charts, report.json and report.xlsx,
// optionally published to Kafka and served over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/station-climatology/internal/adapter/chart"
	"github.com/couchcryptid/station-climatology/internal/adapter/csvsource"
	httpadapter "github.com/couchcryptid/station-climatology/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/station-climatology/internal/adapter/kafka"
	"github.com/couchcryptid/station-climatology/internal/adapter/report"
	"github.com/couchcryptid/station-climatology/internal/adapter/spreadsheet"
	"github.com/couchcryptid/station-climatology/internal/config"
	"github.com/couchcryptid/station-climatology/internal/observability"
	"github.com/couchcryptid/station-climatology/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	flag.StringVar(&cfg.InputPath, "input", cfg.InputPath, "daily station CSV (overrides INPUT_PATH)")
	flag.StringVar(&cfg.OutputDir, "out", cfg.OutputDir, "output directory (overrides OUTPUT_DIR)")
	flag.Parse()

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	var sinks []pipeline.Sink
	if cfg.ChartsEnabled {
		sinks = append(sinks, chart.NewRenderer(cfg.OutputDir, logger, metrics))
	} else {
		logger.Info("chart rendering disabled")
	}
	sinks = append(sinks, report.NewFileWriter(cfg.OutputDir, logger))
	if cfg.SpreadsheetEnabled {
		sinks = append(sinks, spreadsheet.NewWriter(cfg.OutputDir, logger))
	}

	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled() {
		writer = kafkaadapter.NewWriter(cfg, logger, metrics)
		sinks = append(sinks, writer)
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSinkTopic)
	}

	source := csvsource.NewSource(cfg.InputPath, logger, metrics)
	analyzer := pipeline.NewAnalyzer(cfg.AnalysisParams(), logger)
	p := pipeline.New(source, analyzer, sinks, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var srv *httpadapter.Server
	if cfg.HTTPAddr != "" {
		srv = httpadapter.NewServer(cfg.HTTPAddr, p, p, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
				stop()
			}
		}()
	}

	runErr := p.Run(ctx)
	if runErr != nil {
		logger.Error("pipeline error", "error", runErr)
	}

	if srv != nil && ctx.Err() == nil {
		logger.Info("analysis finished, serving until signalled", "addr", cfg.HTTPAddr)
		<-ctx.Done()
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	if runErr != nil {
		os.Exit(1) //nolint:gocritic // remaining defers only release contexts
	}
}
