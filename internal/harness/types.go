package harness

import (
	"time"

	"github.com/eabdelfa/03-philosophers/internal/analyzer"
	"github.com/eabdelfa/03-philosophers/internal/runner"
)

// Entry is the recorded outcome of one test case.
type Entry struct {
	Name        string           `json:"name"`
	Args        []string         `json:"args"`
	Description string           `json:"description,omitempty"`
	Passed      bool             `json:"passed"`
	Reason      string           `json:"reason"`
	Outcome     analyzer.Outcome `json:"outcome"`

	// Kind is empty for cases that were never executed.
	Kind     runner.Kind   `json:"kind,omitempty"`
	ExitCode int           `json:"exit_code"`
	Duration time.Duration `json:"duration_ns"`
}

// Report is the ordered result of running one suite.
type Report struct {
	ID         string    `json:"id"`
	Suite      string    `json:"suite"`
	Binary     string    `json:"binary"`
	Digest     string    `json:"suite_digest"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Entries    []Entry   `json:"entries"`

	// Interrupted is set when the run was cancelled before every case
	// had been executed.
	Interrupted bool `json:"interrupted,omitempty"`
}

// Total returns the number of recorded entries.
func (r *Report) Total() int {
	return len(r.Entries)
}

// PassedCount returns the number of passing entries.
func (r *Report) PassedCount() int {
	n := 0
	for _, e := range r.Entries {
		if e.Passed {
			n++
		}
	}
	return n
}

// FailedCount returns the number of failing entries.
func (r *Report) FailedCount() int {
	return r.Total() - r.PassedCount()
}

// AllPassed reports whether every entry passed and the run was not
// interrupted.
func (r *Report) AllPassed() bool {
	return !r.Interrupted && r.FailedCount() == 0
}

// Failures returns the failing entries in execution order.
func (r *Report) Failures() []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if !e.Passed {
			out = append(out, e)
		}
	}
	return out
}

// Summary aggregates several reports, as when the mandatory and bonus
// suites are run back to back.
type Summary struct {
	Reports []*Report `json:"reports"`
	Passed  int       `json:"passed"`
	Failed  int       `json:"failed"`
	Total   int       `json:"total"`
}

// Summarize totals the given reports.
func Summarize(reports ...*Report) Summary {
	s := Summary{Reports: reports}
	for _, r := range reports {
		s.Passed += r.PassedCount()
		s.Failed += r.FailedCount()
		s.Total += r.Total()
	}
	return s
}

// AllPassed reports whether every aggregated report passed.
func (s Summary) AllPassed() bool {
	for _, r := range s.Reports {
		if !r.AllPassed() {
			return false
		}
	}
	return true
}
