package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eabdelfa/03-philosophers/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit int
	Suite string
	Case  string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded test runs",
		Long: `Show runs recorded with "philotest test --record".

Without arguments the most recent runs are listed. With a run ID the full
report of that run is printed. With --case the outcomes of one case across
runs are listed.`,
		Example: `  philotest history
  philotest history --suite bonus --limit 5
  philotest history 0190a6f2-5c1e-7b3a-9d2f-3e4c5b6a7d8e
  philotest history --case "One philosopher (should die)"`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, args, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "maximum number of rows (0 for all)")
	cmd.Flags().StringVarP(&opts.Suite, "suite", "s", "", "only list runs of this suite")
	cmd.Flags().StringVar(&opts.Case, "case", "", "show the history of one case by name")

	return cmd
}

func runHistory(opts *HistoryOptions, args []string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	w := cmd.OutOrStdout()
	ctx := cmd.Context()

	st, err := store.Open(opts.dbPath())
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to open history database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			opts.logger().Error("error closing database", "error", closeErr)
		}
	}()

	switch {
	case len(args) == 1:
		report, err := st.GetRun(ctx, args[0])
		if errors.Is(err, store.ErrNotFound) {
			return f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("no recorded run with id %s", args[0]), nil)
		}
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, "failed to read run", err)
		}
		if f.JSON() {
			return f.Success(report)
		}
		writeReport(w, report, opts.Verbose)
		return nil

	case opts.Case != "":
		records, err := st.CaseHistory(ctx, opts.Case, opts.Limit)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, "failed to read case history", err)
		}
		if f.JSON() {
			return f.Success(records)
		}
		if len(records) == 0 {
			fmt.Fprintf(w, "No recorded results for %q.\n", opts.Case)
			return nil
		}
		writeCaseHistory(w, opts.Case, records)
		return nil

	default:
		runs, err := st.ListRuns(ctx, opts.Suite, opts.Limit)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, "failed to list runs", err)
		}
		if f.JSON() {
			return f.Success(runs)
		}
		if len(runs) == 0 {
			fmt.Fprintln(w, "No recorded runs.")
			return nil
		}
		writeRunTable(w, runs)
		return nil
	}
}
