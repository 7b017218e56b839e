// Command genmock writes a synthetic, reproducible daily station CSV in the
// station export layout. The file feeds local runs and demos when no real
// station record is at hand.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out data/station_daily.csv \
//	  -start 1961-01-01 -end 2025-12-31 -seed 1
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/station-climatology/internal/domain"
	"github.com/couchcryptid/station-climatology/internal/mockdata"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	defaults := mockdata.DefaultOptions()

	out := flag.String("out", "data/station_daily.csv", "output CSV path")
	start := flag.String("start", defaults.Start.Format(time.DateOnly), "first day (YYYY-MM-DD)")
	end := flag.String("end", defaults.End.Format(time.DateOnly), "last day (YYYY-MM-DD)")
	seed := flag.Uint64("seed", defaults.Seed, "random seed")
	trend := flag.Float64("trend", defaults.TrendPerDec, "warming trend in °C per decade")
	gapRate := flag.Float64("gap-rate", defaults.GapRate, "probability that a day has no row")
	missingRate := flag.Float64("missing-rate", defaults.MissingRate, "probability that a reading is missing")
	flag.Parse()

	opts := defaults
	var err error
	if opts.Start, err = time.Parse(time.DateOnly, *start); err != nil {
		return fmt.Errorf("invalid -start: %w", err)
	}
	if opts.End, err = time.Parse(time.DateOnly, *end); err != nil {
		return fmt.Errorf("invalid -end: %w", err)
	}
	if opts.End.Before(opts.Start) {
		return fmt.Errorf("-end %s is before -start %s", *end, *start)
	}
	opts.Seed = *seed
	opts.TrendPerDec = *trend
	opts.GapRate = *gapRate
	opts.MissingRate = *missingRate

	series := mockdata.Generate(opts)

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return err
	}
	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	if err := mockdata.WriteCSV(f, series); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", *out, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Printf("wrote %d rows: %s", len(series), *out)

	printStats(series)
	return nil
}

// printStats prints the figures tests and demos tend to assert on.
func printStats(s domain.Series) {
	issues := domain.CountIssues(domain.Validate(s))
	missing := 0
	for _, o := range s {
		for _, v := range domain.Variables() {
			if math.IsNaN(o.Values.Get(v)) {
				missing++
			}
		}
	}

	first, last := s.Span()
	fmt.Println("\n=== Stats ===")
	fmt.Printf("Span: %s to %s\n", first.Format(time.DateOnly), last.Format(time.DateOnly))
	fmt.Printf("Rows: %d, gaps: %d, missing readings: %d\n", len(s), issues[domain.IssueGap], missing)

	extremes := domain.CountExtremes(s, domain.DefaultThresholds())
	for _, e := range extremes[max(0, len(extremes)-5):] {
		fmt.Printf("  %d: %d hot days, %d tropical nights\n", e.Year, e.HotDays, e.TropicalNights)
	}
}
