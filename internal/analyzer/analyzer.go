// Package analyzer turns a subject execution into a pass/fail verdict.
//
// Only two things in the captured output matter: whether a line contains
// the death marker, and the leading millisecond token of the first such
// line. Exit codes and stderr are never consulted.
package analyzer

import (
	"fmt"

	"github.com/eabdelfa/03-philosophers/internal/protocol"
	"github.com/eabdelfa/03-philosophers/internal/runner"
	"github.com/eabdelfa/03-philosophers/internal/suite"
)

// Outcome categorises a verdict.
type Outcome string

const (
	OutcomeOK                   Outcome = "ok"
	OutcomeSpawnError           Outcome = "spawn_error"
	OutcomeTimeoutDeathExpected Outcome = "timeout_death_expected"
	OutcomeNoDeath              Outcome = "no_death"
	OutcomeParseFailure         Outcome = "parse_failure"
	OutcomeTimingMismatch       Outcome = "timing_mismatch"
	OutcomeUnexpectedDeath      Outcome = "unexpected_death"

	// OutcomeInvalidCase is assigned by the suite runner to cases that
	// fail validation and are never executed.
	OutcomeInvalidCase Outcome = "invalid_case"
)

// Verdict is the classification of one test case execution.
type Verdict struct {
	Passed  bool    `json:"passed"`
	Reason  string  `json:"reason"`
	Outcome Outcome `json:"outcome"`
}

func pass(reason string) Verdict {
	return Verdict{Passed: true, Reason: reason, Outcome: OutcomeOK}
}

func fail(outcome Outcome, reason string) Verdict {
	return Verdict{Passed: false, Reason: reason, Outcome: outcome}
}

// Analyze classifies result against the expectation declared by tc.
//
// A timeout counts as survival when no death is expected: a correct
// subject under such parameters runs forever, so exhausting the budget is
// the accepted proxy for "alive".
func Analyze(result runner.Result, tc suite.TestCase) Verdict {
	switch result.Kind {
	case runner.KindSpawnError:
		msg := result.Message
		if msg == "" {
			msg = "failed to run subject"
		}
		return fail(OutcomeSpawnError, msg)
	case runner.KindTimedOut:
		if tc.ExpectedDeath {
			return fail(OutcomeTimeoutDeathExpected, "timed out but a death was expected")
		}
		return pass("timed out as expected, no death")
	case runner.KindCompleted:
		return analyzeOutput(result.Stdout, tc)
	default:
		return fail(OutcomeSpawnError, fmt.Sprintf("unknown result kind %q", result.Kind))
	}
}

func analyzeOutput(stdout string, tc suite.TestCase) Verdict {
	line, hasDeath := protocol.FirstDeathLine(protocol.Lines(stdout))

	if !tc.ExpectedDeath {
		if hasDeath {
			return fail(OutcomeUnexpectedDeath, "unexpected death: "+line)
		}
		return pass("no death as expected")
	}

	if !hasDeath {
		return fail(OutcomeNoDeath, "expected death but none occurred")
	}

	ms, err := protocol.LeadingTimestamp(line)
	if err != nil {
		return fail(OutcomeParseFailure, fmt.Sprintf("could not parse death time: %v", err))
	}

	if tc.DeathWindow == nil {
		return pass(fmt.Sprintf("death occurred as expected (at %dms)", ms))
	}
	if !tc.DeathWindow.Contains(ms) {
		return fail(OutcomeTimingMismatch, fmt.Sprintf("death at %dms, expected %s", ms, tc.DeathWindow))
	}
	return pass(fmt.Sprintf("death at %dms, within %s", ms, tc.DeathWindow))
}
