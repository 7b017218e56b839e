package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/station-climatology/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all run settings, populated from environment variables.
type Config struct {
	InputPath   string
	OutputDir   string
	StationName string

	BaselineStart int
	BaselineEnd   int
	AnomalyStart  int
	AnomalyEnd    int
	HottestYears  int

	DistributionYears          []int
	DistributionIncludeCurrent bool

	HotDayThreshold        float64
	TropicalNightThreshold float64

	ChartsEnabled      bool
	SpreadsheetEnabled bool

	// Kafka publishing is enabled when KafkaBrokers is non-empty.
	KafkaBrokers   []string
	KafkaSinkTopic string

	// The HTTP server is enabled when HTTPAddr is non-empty.
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	baselineStart, err := parseInt("BASELINE_START", 1991)
	if err != nil {
		return nil, err
	}
	baselineEnd, err := parseInt("BASELINE_END", 2020)
	if err != nil {
		return nil, err
	}
	anomalyStart, err := parseInt("ANOMALY_START", baselineStart)
	if err != nil {
		return nil, err
	}
	anomalyEnd, err := parseInt("ANOMALY_END", baselineEnd)
	if err != nil {
		return nil, err
	}
	hottest, err := parseInt("HOTTEST_YEARS", 5)
	if err != nil {
		return nil, err
	}
	years, err := parseYears("DISTRIBUTION_YEARS", "2002,2023,2024")
	if err != nil {
		return nil, err
	}
	includeCurrent, err := parseBool("DISTRIBUTION_INCLUDE_CURRENT", true)
	if err != nil {
		return nil, err
	}
	hotDay, err := parseFloat("HOT_DAY_THRESHOLD", 30)
	if err != nil {
		return nil, err
	}
	tropicalNight, err := parseFloat("TROPICAL_NIGHT_THRESHOLD", 20)
	if err != nil {
		return nil, err
	}
	chartsEnabled, err := parseBool("CHARTS_ENABLED", true)
	if err != nil {
		return nil, err
	}
	spreadsheetEnabled, err := parseBool("SPREADSHEET_ENABLED", true)
	if err != nil {
		return nil, err
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		InputPath:   sharedcfg.EnvOrDefault("INPUT_PATH", "data/station_daily.csv"),
		OutputDir:   sharedcfg.EnvOrDefault("OUTPUT_DIR", "out"),
		StationName: sharedcfg.EnvOrDefault("STATION_NAME", "Graz"),

		BaselineStart: baselineStart,
		BaselineEnd:   baselineEnd,
		AnomalyStart:  anomalyStart,
		AnomalyEnd:    anomalyEnd,
		HottestYears:  hottest,

		DistributionYears:          years,
		DistributionIncludeCurrent: includeCurrent,

		HotDayThreshold:        hotDay,
		TropicalNightThreshold: tropicalNight,

		ChartsEnabled:      chartsEnabled,
		SpreadsheetEnabled: spreadsheetEnabled,

		KafkaBrokers:   brokers,
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "climatology-yearly-summaries"),

		HTTPAddr:        os.Getenv("HTTP_ADDR"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
	}

	if cfg.InputPath == "" {
		return nil, errors.New("INPUT_PATH is required")
	}
	if cfg.BaselineStart > cfg.BaselineEnd {
		return nil, errors.New("BASELINE_START must not be after BASELINE_END")
	}
	if cfg.AnomalyStart > cfg.AnomalyEnd {
		return nil, errors.New("ANOMALY_START must not be after ANOMALY_END")
	}
	if cfg.HottestYears < 1 {
		return nil, errors.New("HOTTEST_YEARS must be positive")
	}
	if len(cfg.DistributionYears) == 0 && !cfg.DistributionIncludeCurrent {
		return nil, errors.New("DISTRIBUTION_YEARS is empty and DISTRIBUTION_INCLUDE_CURRENT is false")
	}
	if cfg.KafkaEnabled() && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// KafkaEnabled reports whether yearly summaries are published.
func (c *Config) KafkaEnabled() bool { return len(c.KafkaBrokers) > 0 }

// AnalysisParams converts the settings into domain analysis parameters.
func (c *Config) AnalysisParams() domain.Params {
	return domain.Params{
		Station:            c.StationName,
		Baseline:           domain.Period{StartYear: c.BaselineStart, EndYear: c.BaselineEnd},
		AnomalyPeriod:      domain.Period{StartYear: c.AnomalyStart, EndYear: c.AnomalyEnd},
		HottestN:           c.HottestYears,
		DistributionYears:  domain.NewYearSet(c.DistributionYears...),
		IncludeCurrentYear: c.DistributionIncludeCurrent,
		Thresholds: domain.Thresholds{
			HotDay:        c.HotDayThreshold,
			TropicalNight: c.TropicalNightThreshold,
		},
	}
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

func parseFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return f, nil
}

func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, fmt.Errorf("invalid %s: %q", key, s)
	}
	return b, nil
}

// parseYears reads a comma-separated year list. An explicitly empty value is
// not distinguishable from unset, so "none" clears the list.
func parseYears(key, def string) ([]int, error) {
	s := sharedcfg.EnvOrDefault(key, def)
	if strings.EqualFold(strings.TrimSpace(s), "none") {
		return nil, nil
	}
	var years []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		y, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %q is not a year", key, part)
		}
		years = append(years, y)
	}
	return years, nil
}
