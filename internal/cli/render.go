package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/eabdelfa/03-philosophers/internal/harness"
	"github.com/eabdelfa/03-philosophers/internal/store"
	"github.com/eabdelfa/03-philosophers/internal/suite"
)

var rule = strings.Repeat("=", 70)

const indent = "      "

var (
	passColor = color.New(color.FgGreen, color.Bold)
	failColor = color.New(color.FgRed, color.Bold)
	dimColor  = color.New(color.Faint)
)

func statusLabel(passed bool) string {
	if passed {
		return passColor.Sprint("✓ PASS")
	}
	return failColor.Sprint("✗ FAIL")
}

func mark(passed bool) string {
	if passed {
		return passColor.Sprint("✓")
	}
	return failColor.Sprint("✗")
}

func writeBanner(w io.Writer, lines ...string) {
	fmt.Fprintln(w, rule)
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
	fmt.Fprintln(w, rule)
}

func writeSuiteHeader(w io.Writer, name, binary string) {
	fmt.Fprintln(w)
	writeBanner(w, "Testing: "+name, "Binary: "+binary)
	fmt.Fprintln(w)
}

func writeEntry(w io.Writer, index, total int, e harness.Entry, verbose bool) {
	fmt.Fprintf(w, "[%d/%d] %s: %s\n", index, total, statusLabel(e.Passed), e.Name)
	fmt.Fprintf(w, "%sArgs: %s\n", indent, strings.Join(e.Args, " "))
	fmt.Fprintf(w, "%s%s\n", indent, e.Reason)
	if e.Description != "" {
		fmt.Fprintf(w, "%sDescription: %s\n", indent, e.Description)
	}
	if verbose {
		detail := fmt.Sprintf("Outcome: %s", e.Outcome)
		if e.Kind != "" {
			detail += fmt.Sprintf(", %s after %s, exit code %d", e.Kind, e.Duration.Round(time.Millisecond), e.ExitCode)
		}
		fmt.Fprintf(w, "%s%s\n", indent, dimColor.Sprint(detail))
	}
	fmt.Fprintln(w)
}

func writeSuiteSummary(w io.Writer, r *harness.Report) {
	line := fmt.Sprintf("Summary for %s: %d/%d tests passed", r.Suite, r.PassedCount(), r.Total())
	if r.Interrupted {
		line += " (interrupted)"
	}
	fmt.Fprintln(w)
	writeBanner(w, line)
	fmt.Fprintln(w)
	if !r.AllPassed() && !r.Interrupted {
		fmt.Fprintln(w, "⚠ Some tests failed!")
	}
}

// writeReport renders a complete report the way the test command prints
// it while running.
func writeReport(w io.Writer, r *harness.Report, verbose bool) {
	writeSuiteHeader(w, r.Suite, r.Binary)
	for i, e := range r.Entries {
		writeEntry(w, i+1, len(r.Entries), e, verbose)
	}
	writeSuiteSummary(w, r)
}

// writeOverall prints the summary across all suites of one invocation.
func writeOverall(w io.Writer, s harness.Summary) {
	if len(s.Reports) > 1 {
		fmt.Fprintln(w)
		writeBanner(w, "OVERALL SUMMARY")
		for _, r := range s.Reports {
			verdict := passColor.Sprint("PASSED ✓")
			if !r.AllPassed() {
				verdict = failColor.Sprint("FAILED ✗")
			}
			fmt.Fprintf(w, "%s (%s): %s\n", r.Suite, r.Binary, verdict)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", s.Passed, s.Failed, s.Total)
	if s.Failed == 0 {
		fmt.Fprintln(w, passColor.Sprint("✓ All tests passed"))
		return
	}
	for _, r := range s.Reports {
		for _, e := range r.Failures() {
			fmt.Fprintf(w, "  %s %s / %s: %s\n", mark(false), r.Suite, e.Name, e.Reason)
		}
	}
}

func expectation(tc suite.TestCase) string {
	switch {
	case tc.DeathWindow != nil:
		return "death within " + tc.DeathWindow.String()
	case tc.ExpectedDeath:
		return "death"
	default:
		return "no death"
	}
}

func writeSuite(w io.Writer, s suite.Suite) {
	fmt.Fprintf(w, "Suite: %s (%d cases)\n", s.Name, len(s.Cases))
	if s.Description != "" {
		fmt.Fprintln(w, s.Description)
	}
	fmt.Fprintln(w)
	for i, tc := range s.Cases {
		fmt.Fprintf(w, "%3d. %s\n", i+1, tc.Name)
		fmt.Fprintf(w, "     Args: %s   Timeout: %s   Expect: %s\n", tc.CommandLine(), tc.Timeout(), expectation(tc))
		if tc.Description != "" {
			fmt.Fprintf(w, "     %s\n", tc.Description)
		}
	}
}

const historyTime = "2006-01-02 15:04:05"

func writeRunTable(w io.Writer, runs []store.RunSummary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN ID\tSUITE\tDIGEST\tPASSED\tSTARTED\tDURATION\tBINARY")
	for _, r := range runs {
		passed := fmt.Sprintf("%d/%d", r.Passed, r.Total)
		if r.Interrupted {
			passed += "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID,
			r.Suite,
			shortDigest(r.Digest),
			passed,
			r.StartedAt.Local().Format(historyTime),
			r.FinishedAt.Sub(r.StartedAt).Round(time.Second),
			r.Binary,
		)
	}
	tw.Flush()
}

func shortDigest(d string) string {
	switch {
	case d == "":
		return "-"
	case len(d) > 12:
		return d[:12]
	default:
		return d
	}
}

func writeCaseHistory(w io.Writer, name string, records []store.CaseRecord) {
	fmt.Fprintf(w, "History for %q (%d runs)\n\n", name, len(records))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, rec := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			mark(rec.Passed),
			rec.RunID,
			rec.Suite,
			rec.StartedAt.Local().Format(historyTime),
			rec.Reason,
		)
	}
	tw.Flush()
}
