package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eabdelfa/03-philosophers/internal/runner"
	"github.com/eabdelfa/03-philosophers/internal/suite"
)

func deathCase(w *suite.Window) suite.TestCase {
	return suite.TestCase{
		Name:           "One philosopher",
		Args:           []string{"1", "800", "200", "200"},
		TimeoutSeconds: 5,
		ExpectedDeath:  true,
		DeathWindow:    w,
	}
}

func survivalCase() suite.TestCase {
	return suite.TestCase{
		Name:           "Two philosophers",
		Args:           []string{"2", "400", "100", "100"},
		TimeoutSeconds: 5,
	}
}

func TestAnalyze(t *testing.T) {
	window := &suite.Window{MinMs: 790, MaxMs: 810}
	fourCase := suite.TestCase{
		Name:           "Four philosophers",
		Args:           []string{"4", "310", "200", "100"},
		TimeoutSeconds: 5,
		ExpectedDeath:  true,
	}

	tests := []struct {
		name    string
		result  runner.Result
		tc      suite.TestCase
		passed  bool
		outcome Outcome
		reason  string
	}{
		{
			name:    "death inside window",
			result:  runner.Completed("795 123 died"),
			tc:      deathCase(window),
			passed:  true,
			outcome: OutcomeOK,
			reason:  "death at 795ms, within 790-810ms",
		},
		{
			name:    "death outside window",
			result:  runner.Completed("820 123 died"),
			tc:      deathCase(window),
			passed:  false,
			outcome: OutcomeTimingMismatch,
			reason:  "death at 820ms, expected 790-810ms",
		},
		{
			name:    "timeout without expected death",
			result:  runner.TimedOut(),
			tc:      survivalCase(),
			passed:  true,
			outcome: OutcomeOK,
			reason:  "timed out as expected, no death",
		},
		{
			name:    "expected death missing",
			result:  runner.Completed("0 1 has taken a fork\n0 1 is eating\n200 1 is sleeping\n"),
			tc:      fourCase,
			passed:  false,
			outcome: OutcomeNoDeath,
			reason:  "expected death but none occurred",
		},
		{
			name:    "death line without timestamp",
			result:  runner.Completed("died unexpectedly"),
			tc:      deathCase(nil),
			passed:  false,
			outcome: OutcomeParseFailure,
			reason:  "could not parse death time",
		},
		{
			name:    "window bounds are inclusive",
			result:  runner.Completed("810 1 died\n"),
			tc:      deathCase(window),
			passed:  true,
			outcome: OutcomeOK,
			reason:  "death at 810ms",
		},
		{
			name:    "death without window",
			result:  runner.Completed("0 1 has taken a fork\n801 1 died\n"),
			tc:      deathCase(nil),
			passed:  true,
			outcome: OutcomeOK,
			reason:  "death occurred as expected (at 801ms)",
		},
		{
			name:    "only first death line is timed",
			result:  runner.Completed("800 1 died\n9999 2 died\n"),
			tc:      deathCase(window),
			passed:  true,
			outcome: OutcomeOK,
			reason:  "death at 800ms",
		},
		{
			name:    "first death line decides even if out of window",
			result:  runner.Completed("500 2 died\n800 1 died\n"),
			tc:      deathCase(window),
			passed:  false,
			outcome: OutcomeTimingMismatch,
			reason:  "death at 500ms",
		},
		{
			name:    "first death line unparseable",
			result:  runner.Completed("x 2 died\n800 1 died\n"),
			tc:      deathCase(window),
			passed:  false,
			outcome: OutcomeParseFailure,
			reason:  `invalid timestamp "x"`,
		},
		{
			name:    "unexpected death quotes the line",
			result:  runner.Completed("0 1 is eating\n410 2 died\n"),
			tc:      survivalCase(),
			passed:  false,
			outcome: OutcomeUnexpectedDeath,
			reason:  "unexpected death: 410 2 died",
		},
		{
			name:    "marker matches anywhere in the line",
			result:  runner.Completed("philosopher died quietly\n"),
			tc:      survivalCase(),
			passed:  false,
			outcome: OutcomeUnexpectedDeath,
			reason:  "philosopher died quietly",
		},
		{
			name:    "marker is case sensitive",
			result:  runner.Completed("410 2 DIED\n"),
			tc:      survivalCase(),
			passed:  true,
			outcome: OutcomeOK,
			reason:  "no death as expected",
		},
		{
			name:    "empty output means no death",
			result:  runner.Completed(""),
			tc:      survivalCase(),
			passed:  true,
			outcome: OutcomeOK,
			reason:  "no death as expected",
		},
		{
			name:    "empty output with expected death",
			result:  runner.Completed(""),
			tc:      deathCase(window),
			passed:  false,
			outcome: OutcomeNoDeath,
			reason:  "expected death but none occurred",
		},
		{
			name:    "timeout with expected death",
			result:  runner.TimedOut(),
			tc:      deathCase(window),
			passed:  false,
			outcome: OutcomeTimeoutDeathExpected,
			reason:  "timed out but a death was expected",
		},
		{
			name:    "spawn error fails regardless of expectation",
			result:  runner.SpawnError("binary not found: ./philo"),
			tc:      survivalCase(),
			passed:  false,
			outcome: OutcomeSpawnError,
			reason:  "binary not found: ./philo",
		},
		{
			name:    "carriage returns are ignored",
			result:  runner.Completed("795 1 died\r\n"),
			tc:      deathCase(window),
			passed:  true,
			outcome: OutcomeOK,
			reason:  "795ms",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Analyze(tt.result, tt.tc)
			assert.Equal(t, tt.passed, v.Passed)
			assert.Equal(t, tt.outcome, v.Outcome)
			assert.Contains(t, v.Reason, tt.reason)
			assert.NotEmpty(t, v.Reason)
		})
	}
}

func TestAnalyzeIgnoresExitCode(t *testing.T) {
	res := runner.Completed("795 1 died\n")
	res.ExitCode = 139
	res.Stderr = "segmentation fault\n"

	v := Analyze(res, deathCase(&suite.Window{MinMs: 790, MaxMs: 810}))
	assert.True(t, v.Passed)
}

func TestAnalyzeSpawnErrorWithoutMessage(t *testing.T) {
	v := Analyze(runner.Result{Kind: runner.KindSpawnError}, survivalCase())
	assert.False(t, v.Passed)
	assert.NotEmpty(t, v.Reason)
}

func TestAnalyzeUnknownKind(t *testing.T) {
	v := Analyze(runner.Result{Kind: "bogus"}, survivalCase())
	assert.False(t, v.Passed)
	assert.Equal(t, OutcomeSpawnError, v.Outcome)
}
