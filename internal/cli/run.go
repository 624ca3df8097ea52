package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/eabdelfa/03-philosophers/internal/protocol"
	"github.com/eabdelfa/03-philosophers/internal/runner"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Binary  string
	Timeout int // seconds
}

// CustomRunResult is the JSON payload of the run command.
type CustomRunResult struct {
	Binary     string   `json:"binary"`
	Args       []string `json:"args"`
	Timeout    int      `json:"timeout"`
	Kind       string   `json:"kind"`
	ExitCode   int      `json:"exit_code"`
	DurationMs int64    `json:"duration_ms"`
	Stats      RunStats `json:"stats"`
}

// RunStats summarises the subject's event stream.
type RunStats struct {
	Lines        int            `json:"lines"`
	Events       int            `json:"events"`
	Malformed    int            `json:"malformed"`
	Actions      map[string]int `json:"actions"`
	Meals        map[int]int    `json:"meals"`
	MinMeals     *int           `json:"min_meals,omitempty"`
	FirstDeath   *DeathEvent    `json:"first_death,omitempty"`
	NonMonotonic int            `json:"non_monotonic"`
}

// DeathEvent locates the first death in the stream.
type DeathEvent struct {
	TimestampMs int64 `json:"timestamp_ms"`
	Philosopher int   `json:"philosopher"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run [flags] -- ARGS...",
		Short: "Run the binary once with custom arguments",
		Long: `Run the subject once with the given arguments and stream its output.

No verdict is computed. After the run, the exit code (or the timeout) is
printed together with statistics about the event stream: actions seen,
meals per philosopher and the first death.

Examples:
  philotest run --binary ./philo/philo -- 4 800 200 200 5
  philotest run --binary ./philo/philo --timeout 3 -- 5 800 200 200`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCustom(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Binary, "binary", "b", "", "subject binary (default from PHILOTEST_BINARY)")
	cmd.Flags().IntVarP(&opts.Timeout, "timeout", "t", 10, "timeout in seconds")

	return cmd
}

func runCustom(opts *RunOptions, args []string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := opts.logger()
	w := cmd.OutOrStdout()

	binary := firstNonEmpty(opts.Binary, opts.Config.Binary)
	if binary == "" {
		return f.Fail(ExitCommandError, ErrCodeNoBinary, "no binary given: pass --binary or set PHILOTEST_BINARY", nil)
	}
	if opts.Timeout <= 0 {
		return f.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("timeout must be positive, got %d", opts.Timeout), nil)
	}
	timeout := time.Duration(opts.Timeout) * time.Second

	// The runner drops partial output on timeout; keep our own copy so a
	// killed run can still be summarised.
	var captured bytes.Buffer
	req := runner.Request{
		Binary:  binary,
		Args:    args,
		Timeout: timeout,
		Stdout:  &captured,
	}
	if !f.JSON() {
		fmt.Fprintln(w)
		writeBanner(w, fmt.Sprintf("Running: %s %s", binary, strings.Join(args, " ")), fmt.Sprintf("Timeout: %ds", opts.Timeout))
		fmt.Fprintln(w)
		req.Stdout = io.MultiWriter(w, &captured)
		req.Stderr = cmd.ErrOrStderr()
	}

	ctx, stop := interruptContext(cmd, logger)
	defer stop()

	res := runner.New(logger).Run(ctx, req)
	if res.Kind == runner.KindSpawnError {
		if ctx.Err() != nil {
			return f.Fail(ExitCommandError, ErrCodeInterrupted, "run interrupted", ctx.Err())
		}
		return f.Fail(ExitCommandError, ErrCodeSpawn, "failed to run subject", errors.New(res.Message))
	}

	stats := summarizeStream(protocol.Scan(captured.String()), args)

	if f.JSON() {
		return f.Success(CustomRunResult{
			Binary:     binary,
			Args:       args,
			Timeout:    opts.Timeout,
			Kind:       string(res.Kind),
			ExitCode:   res.ExitCode,
			DurationMs: res.Duration.Milliseconds(),
			Stats:      stats,
		})
	}

	fmt.Fprintln(w)
	if res.Kind == runner.KindTimedOut {
		writeBanner(w, fmt.Sprintf("TIMEOUT: Program ran longer than %ds", opts.Timeout))
	} else {
		writeBanner(w, fmt.Sprintf("Exit code: %d", res.ExitCode))
	}
	writeStats(w, stats)
	return nil
}

// summarizeStream converts protocol statistics. When the first argument
// is a philosopher count, the lowest meal count over all of them is
// included, so philosophers that never ate show up as zero.
func summarizeStream(s protocol.Stats, args []string) RunStats {
	out := RunStats{
		Lines:        s.Lines,
		Events:       s.Events,
		Malformed:    s.Malformed,
		Actions:      map[string]int{},
		Meals:        map[int]int{},
		NonMonotonic: s.NonMonotonic,
	}
	for a, n := range s.Actions {
		out.Actions[string(a)] = n
	}
	for _, id := range s.Eaters() {
		out.Meals[id] = s.Meals[id]
	}
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil && n > 0 {
			lowest := s.MinMeals(n)
			out.MinMeals = &lowest
		}
	}
	if s.FirstDeath != nil {
		out.FirstDeath = &DeathEvent{
			TimestampMs: s.FirstDeath.TimestampMs,
			Philosopher: s.FirstDeath.Philosopher,
		}
	}
	return out
}

func writeStats(w io.Writer, s RunStats) {
	fmt.Fprintf(w, "Events: %d of %d lines", s.Events, s.Lines)
	if s.Malformed > 0 {
		fmt.Fprintf(w, " (%d malformed)", s.Malformed)
	}
	fmt.Fprintln(w)

	actions := make([]string, 0, len(s.Actions))
	for a := range s.Actions {
		actions = append(actions, a)
	}
	sort.Strings(actions)
	for _, a := range actions {
		fmt.Fprintf(w, "  %-18s %d\n", a+":", s.Actions[a])
	}

	if len(s.Meals) > 0 {
		ids := make([]int, 0, len(s.Meals))
		for id := range s.Meals {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		parts := make([]string, len(ids))
		for i, id := range ids {
			parts[i] = fmt.Sprintf("%d=%d", id, s.Meals[id])
		}
		fmt.Fprintf(w, "Meals: %s\n", strings.Join(parts, " "))
	}
	if s.MinMeals != nil {
		fmt.Fprintf(w, "Fewest meals: %d\n", *s.MinMeals)
	}

	if s.FirstDeath != nil {
		fmt.Fprintf(w, "First death: philosopher %d at %dms\n", s.FirstDeath.Philosopher, s.FirstDeath.TimestampMs)
	} else {
		fmt.Fprintln(w, "No death")
	}
	if s.NonMonotonic > 0 {
		fmt.Fprintf(w, "%s %d event(s) printed with a timestamp lower than the previous one\n", failColor.Sprint("⚠"), s.NonMonotonic)
	}
}
