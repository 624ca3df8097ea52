package harness

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/eabdelfa/03-philosophers/internal/analyzer"
	"github.com/eabdelfa/03-philosophers/internal/runner"
	"github.com/eabdelfa/03-philosophers/internal/suite"
)

// Executor runs a subject binary. *runner.Runner implements it.
type Executor interface {
	Execute(ctx context.Context, binary string, args []string, timeout time.Duration) runner.Result
}

// Observer is notified around every case. index is 1-based.
type Observer interface {
	StartCase(index, total int, tc suite.TestCase)
	FinishCase(index, total int, tc suite.TestCase, entry Entry)
}

// Runner drives a list of test cases through an Executor and the analyzer.
type Runner struct {
	exec     Executor
	logger   *slog.Logger
	observer Observer
	now      func() time.Time
	newID    func() string
}

// Option configures a Runner.
type Option func(*Runner)

// WithObserver sets the progress observer.
func WithObserver(o Observer) Option {
	return func(r *Runner) { r.observer = o }
}

// WithClock replaces time.Now for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// WithIDGenerator replaces the UUIDv7 report ID generator.
func WithIDGenerator(newID func() string) Option {
	return func(r *Runner) { r.newID = newID }
}

// New creates a Runner. A nil logger discards all records.
func New(exec Executor, logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	r := &Runner{
		exec:   exec,
		logger: logger,
		now:    time.Now,
		newID:  func() string { return uuid.Must(uuid.NewV7()).String() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes cases sequentially against binary and returns the report.
//
// Failing cases never stop the run. If ctx is cancelled, Run stops
// scheduling cases and returns the partial report together with ctx.Err().
func (r *Runner) Run(ctx context.Context, suiteName, binary string, cases []suite.TestCase) (*Report, error) {
	report := &Report{
		ID:        r.newID(),
		Suite:     suiteName,
		Binary:    binary,
		Digest:    suite.Digest(cases),
		StartedAt: r.now(),
		Entries:   make([]Entry, 0, len(cases)),
	}
	r.logger.Info("suite started", "suite", suiteName, "binary", binary, "cases", len(cases), "run_id", report.ID)

	total := len(cases)
	for i, tc := range cases {
		if err := ctx.Err(); err != nil {
			return r.interrupt(report, err)
		}

		index := i + 1
		if r.observer != nil {
			r.observer.StartCase(index, total, tc)
		}

		entry, ok := r.runCase(ctx, binary, tc)
		if !ok {
			return r.interrupt(report, ctx.Err())
		}
		report.Entries = append(report.Entries, entry)

		if r.observer != nil {
			r.observer.FinishCase(index, total, tc, entry)
		}
	}

	report.FinishedAt = r.now()
	r.logger.Info("suite finished",
		"suite", suiteName,
		"passed", report.PassedCount(),
		"failed", report.FailedCount(),
		"total", report.Total(),
	)
	return report, nil
}

// runCase executes a single case. It returns false when the execution was
// cut short by cancellation of ctx and no verdict should be recorded.
func (r *Runner) runCase(ctx context.Context, binary string, tc suite.TestCase) (Entry, bool) {
	entry := Entry{
		Name:        tc.Name,
		Args:        tc.Args,
		Description: tc.Description,
	}

	if err := tc.Validate(); err != nil {
		entry.Outcome = analyzer.OutcomeInvalidCase
		entry.Reason = "invalid test case: " + err.Error()
		entry.ExitCode = -1
		r.logger.Warn("skipping invalid case", "case", tc.Name, "error", err)
		return entry, true
	}

	r.logger.Debug("running case", "case", tc.Name, "args", tc.Args, "timeout", tc.Timeout())
	result := r.exec.Execute(ctx, binary, tc.Args, tc.Timeout())
	if ctx.Err() != nil {
		return Entry{}, false
	}

	verdict := analyzer.Analyze(result, tc)
	entry.Passed = verdict.Passed
	entry.Reason = verdict.Reason
	entry.Outcome = verdict.Outcome
	entry.Kind = result.Kind
	entry.ExitCode = result.ExitCode
	entry.Duration = result.Duration

	r.logger.Info("case finished",
		"case", tc.Name,
		"passed", verdict.Passed,
		"outcome", verdict.Outcome,
		"duration", result.Duration,
	)
	return entry, true
}

func (r *Runner) interrupt(report *Report, err error) (*Report, error) {
	report.Interrupted = true
	report.FinishedAt = r.now()
	r.logger.Warn("suite interrupted", "suite", report.Suite, "completed", report.Total(), "error", err)
	return report, err
}
