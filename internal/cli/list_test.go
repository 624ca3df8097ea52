package cli

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eabdelfa/03-philosophers/internal/suite"
)

func TestListSuiteFile(t *testing.T) {
	out, _, err := execute(NewListCommand(&RootOptions{Format: "text"}), smokeSuite())
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "list_smoke", []byte(out))
}

func TestListBuiltin(t *testing.T) {
	out, _, err := execute(NewListCommand(&RootOptions{Format: "text"}), "--suite", "bonus")
	require.NoError(t, err)

	bonus := suite.Bonus()
	assert.Contains(t, out, "Suite: bonus (")
	for _, tc := range bonus.Cases {
		assert.Contains(t, out, tc.Name)
	}
}

func TestListDefaultsToMandatory(t *testing.T) {
	out, _, err := execute(NewListCommand(&RootOptions{Format: "text"}))
	require.NoError(t, err)
	assert.Contains(t, out, "Suite: mandatory (")
	assert.Contains(t, out, "Expect: death within 790-810ms")
}

func TestListJSON(t *testing.T) {
	out, _, err := execute(NewListCommand(&RootOptions{Format: "json"}), smokeSuite())
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   suite.Suite `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "smoke", resp.Data.Name)
	require.Len(t, resp.Data.Cases, 3)
	assert.Equal(t, &suite.Window{MinMs: 790, MaxMs: 810}, resp.Data.Cases[0].DeathWindow)
}

func TestListErrors(t *testing.T) {
	_, errOut, err := execute(NewListCommand(&RootOptions{Format: "text"}), "--suite", "extra")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, errOut, ErrCodeNotFound)

	_, errOut, err = execute(NewListCommand(&RootOptions{Format: "text"}), "testdata/suites/missing.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, errOut, ErrCodeSuiteLoad)
}
