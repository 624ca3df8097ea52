package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eabdelfa/03-philosophers/internal/suite"
)

// FileValidation is the validation result of one suite file.
type FileValidation struct {
	File   string   `json:"file"`
	Valid  bool     `json:"valid"`
	Suite  string   `json:"suite,omitempty"`
	Cases  int      `json:"cases"`
	Errors []string `json:"errors,omitempty"`
}

// ValidationResult holds validation results for all files.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <suite-file...>",
		Short: "Check suite files without running them",
		Long: `Load YAML, TOML or CUE suite files and report every problem found.

Each case is checked for a name, 4 or 5 arguments, a positive timeout that
exceeds time_to_die, and a death window consistent with the expectation.
CUE files are also unified with the suite schema.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, files []string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	w := cmd.OutOrStdout()

	result := ValidationResult{Valid: true, Files: make([]FileValidation, 0, len(files))}
	for _, file := range files {
		fv := validateFile(file)
		if !fv.Valid {
			result.Valid = false
		}
		result.Files = append(result.Files, fv)
		f.VerboseLog("Validated %s: valid=%t", file, fv.Valid)

		if f.JSON() {
			continue
		}
		if fv.Valid {
			fmt.Fprintf(w, "%s %s: suite %q, %d cases\n", mark(true), file, fv.Suite, fv.Cases)
			continue
		}
		fmt.Fprintf(w, "%s %s\n", mark(false), file)
		for _, e := range fv.Errors {
			fmt.Fprintf(w, "  - %s\n", e)
		}
	}

	invalid := 0
	for _, fv := range result.Files {
		if !fv.Valid {
			invalid++
		}
	}

	var failure *CLIError
	if invalid > 0 {
		failure = &CLIError{
			Code:    ErrCodeInvalidSuite,
			Message: fmt.Sprintf("%d of %d suite file(s) invalid", invalid, len(files)),
		}
	}

	if f.JSON() {
		if err := f.Result(result, failure); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%d of %d suite file(s) valid\n", len(files)-invalid, len(files))
	}

	if failure != nil {
		return reportedExit(ExitFailure, failure.Message, nil)
	}
	return nil
}

func validateFile(path string) FileValidation {
	s, err := suite.Load(path)
	if err != nil {
		return FileValidation{File: path, Errors: splitErrors(err)}
	}
	return FileValidation{File: path, Valid: true, Suite: s.Name, Cases: len(s.Cases)}
}

// splitErrors flattens a joined error into one message per line.
func splitErrors(err error) []string {
	var out []string
	for _, line := range strings.Split(err.Error(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
