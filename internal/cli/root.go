package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/eabdelfa/03-philosophers/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	LogLevel string
	NoColor  bool
	DB       string

	// Config and Logger are populated before any subcommand runs.
	Config config.Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the philotest CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "philotest",
		Short: "Conformance harness for dining philosophers simulations",
		Long: `philotest runs a dining philosophers binary against declared scenarios
and checks whether a philosopher dies, and when.

The subject is invoked as:
  <binary> number_of_philosophers time_to_die time_to_eat time_to_sleep [must_eat]

Defaults are read from the environment (or a .env file):
  PHILOTEST_BINARY        binary for the mandatory suite and custom runs
  PHILOTEST_BONUS_BINARY  binary for the bonus suite
  PHILOTEST_DB            history database path
  PHILOTEST_LOG_LEVEL     debug, info, warn or error
  PHILOTEST_NO_COLOR      disable colored output`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (implies --log-level debug)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level written to stderr (default from PHILOTEST_LOG_LEVEL or warn)")
	cmd.PersistentFlags().BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "history database path (default from PHILOTEST_DB)")

	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// Execute runs the CLI with args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		// Flag and argument errors from cobra itself.
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fmt.Fprintf(stderr, "Run '%s --help' for usage.\n", cmd.CommandPath())
		return ExitCommandError
	}
	if !exitErr.reported {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return exitErr.Code
}

func (o *RootOptions) setup(cmd *cobra.Command) error {
	if !isValidFormat(o.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	cfg, err := config.Load()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	o.Config = cfg

	levelName := o.LogLevel
	if levelName == "" {
		levelName = cfg.LogLevel
	}
	level, err := config.ParseLevel(levelName)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --log-level", err)
	}
	if o.Verbose {
		level = slog.LevelDebug
	}

	o.NoColor = o.NoColor || cfg.NoColor || o.Format == "json"
	if o.NoColor {
		color.NoColor = true
	}

	o.Logger = newLogger(cmd.ErrOrStderr(), level, o.NoColor)
	slog.SetDefault(o.Logger)
	return nil
}

// logger returns the configured logger, or one that discards everything
// when the command runs without the root command's setup (as in tests).
func (o *RootOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger
}

func (o *RootOptions) dbPath() string {
	if o.DB != "" {
		return o.DB
	}
	if o.Config.DBPath != "" {
		return o.Config.DBPath
	}
	return config.DefaultDBPath(os.LookupEnv)
}

func newLogger(w io.Writer, level slog.Level, noColor bool) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    noColor || !isTerminal(w),
	}))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// interruptContext derives a context that is cancelled on SIGINT or
// SIGTERM. The returned stop function releases the signal handler.
func interruptContext(cmd *cobra.Command, logger *slog.Logger) (context.Context, func()) {
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Warn("received signal, stopping", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
