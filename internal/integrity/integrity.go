// Package integrity runs named database checks before and after a rename
// migration and aggregates the results into a pass/fail report.
package integrity

import (
	"context"
	"fmt"
	"time"

	"github.com/pgident/pgident/internal/db"
)

// Check is one stateless, reusable database assertion.
type Check struct {
	Name        string
	Description string
	Query       string
	Args        []any
	// Validate inspects the query result. A nil Validate passes whenever
	// the query itself succeeds.
	Validate func(rows []map[string]any) (bool, string)
	// Critical failures fail the whole report; others are warnings.
	Critical bool
}

// CheckResult is the outcome of one check execution.
type CheckResult struct {
	Name     string        `json:"name"`
	Passed   bool          `json:"passed"`
	Critical bool          `json:"critical"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Report aggregates a full check run.
type Report struct {
	Total            int           `json:"total"`
	PassedCount      int           `json:"passed_count"`
	FailedCount      int           `json:"failed_count"`
	CriticalFailures []string      `json:"critical_failures,omitempty"`
	Results          []CheckResult `json:"results"`
	StartedAt        time.Time     `json:"started_at"`
	CompletedAt      time.Time     `json:"completed_at"`
}

// Passed is true iff no critical check failed. Non-critical failures never
// fail the run.
func (r *Report) Passed() bool {
	return len(r.CriticalFailures) == 0
}

// Runner executes checks sequentially against a database. Later checks may
// depend on state left by earlier statements, so there is no concurrency.
type Runner struct {
	DB       db.Executor
	Callback func(name string, passed bool)
}

// Run executes every check in order. A query error is a check failure, not
// a crash; the run always completes.
func (r *Runner) Run(ctx context.Context, checks []Check) *Report {
	report := &Report{StartedAt: time.Now()}

	for _, c := range checks {
		start := time.Now()
		passed, msg := r.execute(ctx, c)
		res := CheckResult{
			Name:     c.Name,
			Passed:   passed,
			Critical: c.Critical,
			Message:  msg,
			Duration: time.Since(start),
		}
		report.Results = append(report.Results, res)
		report.Total++
		if passed {
			report.PassedCount++
		} else {
			report.FailedCount++
			if c.Critical {
				report.CriticalFailures = append(report.CriticalFailures,
					fmt.Sprintf("%s: %s", c.Name, msg))
			}
		}
		if r.Callback != nil {
			r.Callback(c.Name, passed)
		}
	}

	report.CompletedAt = time.Now()
	return report
}

func (r *Runner) execute(ctx context.Context, c Check) (bool, string) {
	rows, err := r.DB.Query(ctx, c.Query, c.Args...)
	if err != nil {
		return false, fmt.Sprintf("query failed: %v", err)
	}
	if c.Validate == nil {
		return true, ""
	}
	return c.Validate(rows)
}

// asInt64 coerces the numeric types pgx hands back for counts.
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}

// singleCount extracts the named column from a one-row count query.
func singleCount(rows []map[string]any, column string) (int64, bool) {
	if len(rows) != 1 {
		return 0, false
	}
	return asInt64(rows[0][column])
}
