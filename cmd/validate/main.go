// Command validate performs data integrity checks on a daily station CSV
// before it is analyzed. It verifies parsing, row order, physical
// consistency, baseline coverage, and that a full analysis succeeds.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -input data/station_daily.csv \
//	  -baseline-start 1991 -baseline-end 2020 -min-coverage 0.9
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/couchcryptid/station-climatology/internal/adapter/csvsource"
	"github.com/couchcryptid/station-climatology/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
	notes  []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) notef(format string, args ...any) {
	p.notes = append(p.notes, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// maxListed caps the detail lines printed per phase.
const maxListed = 20

func main() {
	input := flag.String("input", "", "daily station CSV to validate")
	baselineStart := flag.Int("baseline-start", 1991, "first year of the climatology baseline")
	baselineEnd := flag.Int("baseline-end", 2020, "last year of the climatology baseline")
	minCoverage := flag.Float64("min-coverage", 0.9, "minimum fraction of days with a mean temperature per baseline year")
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(1)
	}

	baseline := domain.Period{StartYear: *baselineStart, EndYear: *baselineEnd}
	if code := run(*input, baseline, *minCoverage); code != 0 {
		os.Exit(code)
	}
}

func run(path string, baseline domain.Period, minCoverage float64) int {
	fmt.Println("=== Station Data Integrity Validation ===")
	fmt.Println()

	if err := baseline.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: baseline: %v\n", err)
		return 1
	}

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}
	series, skipped, err := csvsource.Parse(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read %s: %v\n", path, err)
		return 1
	}

	issues := domain.Validate(series)

	// ── Run validation phases ──
	phases := []*phase{
		validateParsing(series, skipped),
		validateOrdering(issues),
		validateReadings(issues),
		validateCoverage(series, issues, baseline, minCoverage),
		validateAnalysis(series, baseline),
	}

	// ── Report results ──
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	first, last := series.Span()
	fmt.Println()
	fmt.Printf("Rows: %d parsed, %d skipped, span %s to %s\n",
		len(series), skipped, first.Format("2006-01-02"), last.Format("2006-01-02"))

	for _, p := range phases {
		if len(p.notes) > 0 {
			fmt.Printf("\n--- %s (notes) ---\n", p.name)
			printLines(p.notes)
		}
		if !p.passed() {
			fmt.Printf("\n--- %s ---\n", p.name)
			printLines(p.errors)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func printLines(lines []string) {
	for i, l := range lines {
		if i == maxListed {
			fmt.Printf("  ... %d more\n", len(lines)-maxListed)
			return
		}
		fmt.Printf("  [%d] %s\n", i+1, l)
	}
}

func validateParsing(s domain.Series, skipped int) *phase {
	p := &phase{name: "Phase 1: CSV parsing"}
	if len(s) == 0 {
		p.errorf("no rows with a valid date")
	}
	if skipped > 0 {
		p.errorf("%d rows skipped for an unparseable date", skipped)
	}
	return p
}

func validateOrdering(issues []domain.Issue) *phase {
	p := &phase{name: "Phase 2: Row order and duplicates"}
	for _, i := range issues {
		switch i.Kind {
		case domain.IssueOutOfOrder, domain.IssueDuplicateDate:
			p.errorf("%s", i)
		}
	}
	return p
}

func validateReadings(issues []domain.Issue) *phase {
	p := &phase{name: "Phase 3: Physical consistency"}
	for _, i := range issues {
		switch i.Kind {
		case domain.IssueInconsistent, domain.IssueOutOfRange:
			p.errorf("%s", i)
		}
	}
	return p
}

// validateCoverage fails baseline years whose valid-day fraction is below
// minCoverage. Gaps are listed as notes since they only lower coverage.
func validateCoverage(s domain.Series, issues []domain.Issue, baseline domain.Period, minCoverage float64) *phase {
	p := &phase{name: fmt.Sprintf("Phase 4: Baseline coverage %s", baseline)}
	for _, c := range domain.Coverage(s, baseline) {
		if c.Fraction < minCoverage {
			p.errorf("%d: %d of %d days (%.1f%%) below %.0f%%",
				c.Year, c.Valid, c.Expected, 100*c.Fraction, 100*minCoverage)
		}
	}
	for _, i := range issues {
		if i.Kind == domain.IssueGap {
			p.notef("%s", i)
		}
	}
	return p
}

func validateAnalysis(s domain.Series, baseline domain.Period) *phase {
	p := &phase{name: "Phase 5: Analysis smoke test"}
	params := domain.DefaultParams()
	params.Baseline = baseline
	params.AnomalyPeriod = baseline

	r, err := domain.Analyze(s, params)
	if err != nil {
		p.errorf("analyze: %v", err)
		return p
	}
	if n := len(r.HottestYears()); n != params.HottestN {
		p.errorf("expected %d hottest years, got %d", params.HottestN, n)
	}
	for _, y := range r.HottestYears() {
		if y.Year < baseline.StartYear || y.Year > baseline.EndYear {
			p.errorf("hottest year %d outside %s", y.Year, baseline)
		}
	}
	for i, m := range r.Climatology.Months {
		if math.IsNaN(m.Mean) {
			p.errorf("no baseline mean temperature for month %d", i+1)
		}
	}
	return p
}
