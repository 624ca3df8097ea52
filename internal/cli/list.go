package cli

import (
	"github.com/spf13/cobra"

	"github.com/eabdelfa/03-philosophers/internal/suite"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Suite string
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list [suite-file]",
		Short: "List the cases of a built-in suite or suite file",
		Example: `  philotest list
  philotest list --suite bonus
  philotest list stress.toml --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Suite, "suite", "s", SuiteMandatory, "built-in suite (mandatory|bonus)")

	return cmd
}

func runList(opts *ListOptions, args []string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	var s suite.Suite
	var err error
	if len(args) == 1 {
		s, err = suite.Load(args[0])
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeSuiteLoad, "failed to load suite", err)
		}
	} else {
		s, err = suite.Builtin(opts.Suite)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeNotFound, "failed to list suite", err)
		}
	}

	if f.JSON() {
		return f.Success(s)
	}
	writeSuite(cmd.OutOrStdout(), s)
	return nil
}
