package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/eabdelfa/03-philosophers/internal/harness"
	"github.com/eabdelfa/03-philosophers/internal/runner"
	"github.com/eabdelfa/03-philosophers/internal/store"
	"github.com/eabdelfa/03-philosophers/internal/suite"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Binary      string
	BonusBinary string
	Suite       string // mandatory | bonus | all
	Filter      string // case name glob
	Record      bool

	// Executor replaces the process runner and HarnessOptions are passed
	// to every harness.Runner. Both exist for tests.
	Executor       harness.Executor
	HarnessOptions []harness.Option
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	return newTestCommand(&TestOptions{RootOptions: rootOpts})
}

func newTestCommand(opts *TestOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test [suite-file...]",
		Short: "Run a test suite against a philosophers binary",
		Long: `Run the built-in mandatory or bonus suite, or the suites declared in
YAML, TOML or CUE files, against a philosophers binary.

Cases run one at a time. A failing case never stops the run.

Exit codes:
  0 - All cases passed
  1 - One or more cases failed
  2 - Command error (missing binary, invalid suite file, interrupt)

Examples:
  philotest test --binary ./philo/philo
  philotest test --suite bonus --binary ./philo_bonus/philo_bonus
  philotest test --suite all --binary ./philo/philo --bonus-binary ./philo_bonus/philo_bonus
  philotest test --binary ./philo/philo --filter "Five*"
  philotest test --binary ./philo/philo stress.yaml --record`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Binary, "binary", "b", "", "subject binary (default from PHILOTEST_BINARY)")
	cmd.Flags().StringVar(&opts.BonusBinary, "bonus-binary", "", "bonus subject binary (default from PHILOTEST_BONUS_BINARY)")
	cmd.Flags().StringVarP(&opts.Suite, "suite", "s", SuiteMandatory, "built-in suite (mandatory|bonus|all); ignored when suite files are given")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "run only cases whose name matches this glob")
	cmd.Flags().BoolVar(&opts.Record, "record", false, "save the results in the history database")

	return cmd
}

func runTests(opts *TestOptions, files []string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := opts.logger()
	w := cmd.OutOrStdout()

	binary := firstNonEmpty(opts.Binary, opts.Config.Binary)
	bonusBinary := firstNonEmpty(opts.BonusBinary, opts.Config.BonusBinary)

	var plans []suitePlan
	var err error
	if len(files) > 0 {
		plans, err = planFiles(files, binary)
	} else {
		plans, err = planBuiltin(opts.Suite, binary, bonusBinary)
	}
	if err == nil {
		plans, err = filterPlans(plans, opts.Filter)
	}
	if err != nil {
		return failLoad(f, err)
	}

	if countCases(plans) == 0 {
		if f.JSON() {
			return f.Result(harness.Summarize(), nil)
		}
		fmt.Fprintln(w, "No test cases match.")
		return nil
	}

	exec := opts.Executor
	if exec == nil {
		exec = runner.New(logger)
	}

	ctx, stop := interruptContext(cmd, logger)
	defer stop()

	reports := make([]*harness.Report, 0, len(plans))
	for _, p := range plans {
		report, err := runPlan(ctx, opts, f, exec, logger, p)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeInterrupted, "test run interrupted", err)
		}
		reports = append(reports, report)
	}

	if opts.Record {
		if err := recordReports(ctx, opts.dbPath(), reports); err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, "failed to record results", err)
		}
		for _, r := range reports {
			f.VerboseLog("Recorded run %s (%s) in %s", r.ID, r.Suite, opts.dbPath())
		}
	}

	return outputTestSummary(f, w, harness.Summarize(reports...))
}

func runPlan(ctx context.Context, opts *TestOptions, f *OutputFormatter, exec harness.Executor, logger *slog.Logger, p suitePlan) (*harness.Report, error) {
	w := f.Writer
	hopts := append([]harness.Option{}, opts.HarnessOptions...)
	if !f.JSON() {
		writeSuiteHeader(w, p.Name, p.Binary)
		hopts = append(hopts, harness.WithObserver(&progressObserver{w: w, verbose: opts.Verbose}))
	}

	report, err := harness.New(exec, logger, hopts...).Run(ctx, p.Name, p.Binary, p.Cases)
	if !f.JSON() {
		writeSuiteSummary(w, report)
	}
	return report, err
}

func recordReports(ctx context.Context, dbPath string, reports []*harness.Report) error {
	st, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	for _, r := range reports {
		if err := st.SaveReport(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func outputTestSummary(f *OutputFormatter, w io.Writer, s harness.Summary) error {
	var failure *CLIError
	if s.Failed > 0 {
		failure = &CLIError{
			Code:    ErrCodeTestFailed,
			Message: fmt.Sprintf("%d test case(s) failed", s.Failed),
		}
	}

	if f.JSON() {
		if err := f.Result(s, failure); err != nil {
			return err
		}
	} else {
		writeOverall(w, s)
	}

	if failure != nil {
		return reportedExit(ExitFailure, failure.Message, nil)
	}
	return nil
}

func failLoad(f *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return f.Fail(ExitCommandError, loadErr.Code, loadErr.Message, loadErr.Err)
	}
	return f.Fail(ExitCommandError, ErrCodeGeneric, "failed to resolve test cases", err)
}

// progressObserver prints each verdict as soon as it is known.
type progressObserver struct {
	w       io.Writer
	verbose bool
}

func (p *progressObserver) StartCase(index, total int, tc suite.TestCase) {
	if p.verbose {
		fmt.Fprintf(p.w, "[%d/%d] running %s (timeout %s)\n", index, total, tc.Name, tc.Timeout())
	}
}

func (p *progressObserver) FinishCase(index, total int, _ suite.TestCase, e harness.Entry) {
	writeEntry(p.w, index, total, e, p.verbose)
}
