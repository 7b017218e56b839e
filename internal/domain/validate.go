package domain

import (
	"fmt"
	"math"
	"time"
)

// Issue kinds reported by Validate.
const (
	IssueDuplicateDate = "duplicate_date"
	IssueOutOfOrder    = "out_of_order"
	IssueGap           = "gap"
	IssueInconsistent  = "inconsistent_range"
	IssueOutOfRange    = "out_of_range"
)

// Plausible bounds for a daily air temperature reading in °C.
const (
	minPlausibleTemp = -60.0
	maxPlausibleTemp = 60.0
)

// Issue is a data integrity problem found in a series.
type Issue struct {
	Kind   string    `json:"kind"`
	Date   time.Time `json:"date"`
	Detail string    `json:"detail"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s %s: %s", i.Date.Format(time.DateOnly), i.Kind, i.Detail)
}

// Validate checks s, in its original row order, for ordering, continuity and
// physical consistency problems. Missing values are not issues.
func Validate(s Series) []Issue {
	var issues []Issue

	for i := 1; i < len(s); i++ {
		if s[i].Date.Before(s[i-1].Date) {
			issues = append(issues, Issue{
				Kind:   IssueOutOfOrder,
				Date:   s[i].Date,
				Detail: fmt.Sprintf("row %d follows %s", i+1, s[i-1].Date.Format(time.DateOnly)),
			})
		}
	}

	sorted := s.Sorted()
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1].Date, sorted[i].Date
		switch days := int(cur.Sub(prev).Hours() / 24); {
		case days == 0:
			issues = append(issues, Issue{Kind: IssueDuplicateDate, Date: cur, Detail: "date appears more than once"})
		case days > 1:
			issues = append(issues, Issue{
				Kind:   IssueGap,
				Date:   prev.AddDate(0, 0, 1),
				Detail: fmt.Sprintf("%d missing days before %s", days-1, cur.Format(time.DateOnly)),
			})
		}
	}

	for _, o := range s {
		issues = append(issues, checkReadings(o)...)
	}
	return issues
}

func checkReadings(o Observation) []Issue {
	var issues []Issue
	for _, v := range Variables() {
		x := o.Values.Get(v)
		if math.IsNaN(x) {
			continue
		}
		if x < minPlausibleTemp || x > maxPlausibleTemp {
			issues = append(issues, Issue{
				Kind:   IssueOutOfRange,
				Date:   o.Date,
				Detail: fmt.Sprintf("%s=%g outside [%g, %g]", v.Column(), x, minPlausibleTemp, maxPlausibleTemp),
			})
		}
	}

	t := o.Values
	if !math.IsNaN(t.Min) && !math.IsNaN(t.Mean) && t.Min > t.Mean {
		issues = append(issues, Issue{
			Kind:   IssueInconsistent,
			Date:   o.Date,
			Detail: fmt.Sprintf("tlmin=%g above tl_mittel=%g", t.Min, t.Mean),
		})
	}
	if !math.IsNaN(t.Mean) && !math.IsNaN(t.Max) && t.Mean > t.Max {
		issues = append(issues, Issue{
			Kind:   IssueInconsistent,
			Date:   o.Date,
			Detail: fmt.Sprintf("tl_mittel=%g above tlmax=%g", t.Mean, t.Max),
		})
	}
	return issues
}

// CountIssues tallies issues by kind.
func CountIssues(issues []Issue) map[string]int {
	counts := make(map[string]int)
	for _, i := range issues {
		counts[i.Kind]++
	}
	return counts
}
