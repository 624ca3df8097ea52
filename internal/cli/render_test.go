package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eabdelfa/03-philosophers/internal/harness"
	"github.com/eabdelfa/03-philosophers/internal/suite"
)

func TestShortDigest(t *testing.T) {
	assert.Equal(t, "-", shortDigest(""))
	assert.Equal(t, "abc", shortDigest("abc"))
	assert.Equal(t, "0123456789ab", shortDigest("0123456789abcdef"))
}

func TestExpectation(t *testing.T) {
	assert.Equal(t, "no death", expectation(suite.TestCase{}))
	assert.Equal(t, "death", expectation(suite.TestCase{ExpectedDeath: true}))
	assert.Equal(t, "death within 1-2ms", expectation(suite.TestCase{
		ExpectedDeath: true,
		DeathWindow:   &suite.Window{MinMs: 1, MaxMs: 2},
	}))
}

func TestWriteEntryVerbose(t *testing.T) {
	var buf bytes.Buffer
	writeEntry(&buf, 2, 5, harness.Entry{
		Name:     "Invalid",
		Args:     []string{"1"},
		Reason:   "invalid test case: args: want 4 or 5 arguments",
		Outcome:  "invalid_case",
		ExitCode: -1,
	}, true)

	assert.Equal(t, "[2/5] ✗ FAIL: Invalid\n"+
		"      Args: 1\n"+
		"      invalid test case: args: want 4 or 5 arguments\n"+
		"      Outcome: invalid_case\n\n", buf.String())
}

func TestWriteSuiteSummaryInterrupted(t *testing.T) {
	var buf bytes.Buffer
	writeSuiteSummary(&buf, &harness.Report{
		Suite:       "mandatory",
		Entries:     []harness.Entry{{Passed: true}},
		Interrupted: true,
	})

	assert.Contains(t, buf.String(), "Summary for mandatory: 1/1 tests passed (interrupted)")
	assert.NotContains(t, buf.String(), "Some tests failed")
}
