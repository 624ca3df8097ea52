package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eabdelfa/03-philosophers/internal/runner"
	"github.com/eabdelfa/03-philosophers/internal/store"
	"github.com/eabdelfa/03-philosophers/internal/suite"
	"github.com/eabdelfa/03-philosophers/internal/testutil"
)

func newTestOptions(format string, exec *scriptedExecutor) *TestOptions {
	return &TestOptions{
		RootOptions:    &RootOptions{Format: format},
		Executor:       exec,
		HarnessOptions: deterministic(),
	}
}

func TestTestCommandTextOutput(t *testing.T) {
	opts := newTestOptions("text", smokeExecutor())

	out, _, err := execute(newTestCommand(opts), "--binary", "./philo", smokeSuite())
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "test_smoke", []byte(out))
}

func TestTestCommandAllPass(t *testing.T) {
	exec := smokeExecutor()
	exec.results["4 310 200 100"] = runner.Completed("310 2 died\n")
	opts := newTestOptions("text", exec)

	out, _, err := execute(newTestCommand(opts), "--binary", "./philo", smokeSuite())
	require.NoError(t, err)
	assert.Contains(t, out, "Summary for smoke: 3/3 tests passed")
	assert.Contains(t, out, "✓ All tests passed")
	assert.NotContains(t, out, "Some tests failed")
}

func TestTestCommandJSONOutput(t *testing.T) {
	opts := newTestOptions("json", smokeExecutor())

	out, _, err := execute(newTestCommand(opts), "--binary", "./philo", smokeSuite())
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Passed  int `json:"passed"`
			Failed  int `json:"failed"`
			Total   int `json:"total"`
			Reports []struct {
				ID      string `json:"id"`
				Suite   string `json:"suite"`
				Entries []struct {
					Name    string `json:"name"`
					Passed  bool   `json:"passed"`
					Outcome string `json:"outcome"`
				} `json:"entries"`
			} `json:"reports"`
		} `json:"data"`
		Error *CLIError `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)

	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeTestFailed, resp.Error.Code)
	assert.Equal(t, 2, resp.Data.Passed)
	assert.Equal(t, 1, resp.Data.Failed)
	assert.Equal(t, 3, resp.Data.Total)
	require.Len(t, resp.Data.Reports, 1)
	assert.Equal(t, "run-0001", resp.Data.Reports[0].ID)
	require.Len(t, resp.Data.Reports[0].Entries, 3)
	assert.Equal(t, "timing_mismatch", resp.Data.Reports[0].Entries[2].Outcome)
}

func TestTestCommandMissingBinary(t *testing.T) {
	opts := newTestOptions("text", smokeExecutor())

	_, errOut, err := execute(newTestCommand(opts))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, errOut, ErrCodeNoBinary)
	assert.Contains(t, errOut, "PHILOTEST_BINARY")
}

func TestTestCommandBinaryFromConfig(t *testing.T) {
	exec := smokeExecutor()
	opts := newTestOptions("text", exec)
	opts.Config.Binary = "./from-env"

	_, _, err := execute(newTestCommand(opts), smokeSuite())
	require.Error(t, err)
	require.NotEmpty(t, exec.calls)
	assert.Equal(t, "./from-env 1 800 200 200", exec.calls[0])
}

func TestTestCommandUnknownSuite(t *testing.T) {
	opts := newTestOptions("text", smokeExecutor())

	_, errOut, err := execute(newTestCommand(opts), "--binary", "./philo", "--suite", "extra")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, errOut, `unknown suite "extra"`)
}

func TestTestCommandInvalidSuiteFile(t *testing.T) {
	opts := newTestOptions("text", smokeExecutor())

	_, errOut, err := execute(newTestCommand(opts), "--binary", "./philo", filepath.Join("testdata", "suites", "broken.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, errOut, ErrCodeSuiteLoad)
}

func TestTestCommandFilter(t *testing.T) {
	exec := smokeExecutor()
	opts := newTestOptions("text", exec)

	out, _, err := execute(newTestCommand(opts), "--binary", "./philo", "--filter", "Five*", smokeSuite())
	require.NoError(t, err)
	assert.Equal(t, []string{"./philo 5 800 200 200"}, exec.calls)
	assert.Contains(t, out, "[1/1] ✓ PASS: Five philosophers")
}

func TestTestCommandFilterMatchesNothing(t *testing.T) {
	exec := smokeExecutor()
	opts := newTestOptions("text", exec)

	out, _, err := execute(newTestCommand(opts), "--binary", "./philo", "--filter", "Nobody*", smokeSuite())
	require.NoError(t, err)
	assert.Empty(t, exec.calls)
	assert.Contains(t, out, "No test cases match.")
}

func TestTestCommandBuiltinMandatory(t *testing.T) {
	exec := &scriptedExecutor{}
	opts := newTestOptions("text", exec)

	out, _, err := execute(newTestCommand(opts), "--binary", "./philo")
	require.Error(t, err, "death cases time out under the scripted executor")

	assert.Len(t, exec.calls, len(suite.Mandatory().Cases))
	assert.Contains(t, out, "Testing: mandatory")
	assert.Contains(t, out, "timed out but a death was expected")
}

func TestTestCommandSuiteAll(t *testing.T) {
	exec := &scriptedExecutor{}
	opts := newTestOptions("text", exec)

	out, _, err := execute(newTestCommand(opts), "--suite", "all", "--binary", "./philo", "--bonus-binary", "./philo_bonus")
	require.Error(t, err)

	assert.Len(t, exec.calls, len(suite.Mandatory().Cases)+len(suite.Bonus().Cases))
	assert.True(t, strings.HasPrefix(exec.calls[len(exec.calls)-1], "./philo_bonus "))
	assert.Contains(t, out, "OVERALL SUMMARY")
	assert.Contains(t, out, "mandatory (./philo): FAILED ✗")
	assert.Contains(t, out, "bonus (./philo_bonus): FAILED ✗")
}

func TestTestCommandSuiteAllNeedsBonusBinary(t *testing.T) {
	opts := newTestOptions("text", &scriptedExecutor{})

	_, errOut, err := execute(newTestCommand(opts), "--suite", "all", "--binary", "./philo")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, errOut, "--bonus-binary")
}

func TestTestCommandRecord(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	opts := newTestOptions("text", smokeExecutor())
	opts.DB = dbPath

	_, _, err := execute(newTestCommand(opts), "--binary", "./philo", "--record", smokeSuite())
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	report, err := st.GetRun(context.Background(), "run-0001")
	require.NoError(t, err)
	assert.Equal(t, "smoke", report.Suite)
	assert.Len(t, report.Entries, 3)
	assert.Equal(t, 2, report.PassedCount())
}

func TestTestCommandRealSubject(t *testing.T) {
	bin := testutil.Subject(t, `
case "$1" in
1) echo "0 1 has taken a fork"; echo "801 1 died" ;;
*) sleep 30 ;;
esac`)
	opts := &TestOptions{RootOptions: &RootOptions{Format: "text"}}

	out, _, err := execute(newTestCommand(opts), "--binary", bin, "--filter", "One*", smokeSuite())
	require.NoError(t, err, out)
	assert.Contains(t, out, "Summary for smoke: 1/1 tests passed")
}
