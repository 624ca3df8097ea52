package runner

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/eabdelfa/03-philosophers/internal/testutil"
)

func TestExecuteCompleted(t *testing.T) {
	bin := testutil.Subject(t, `
echo "0 1 has taken a fork"
echo "795 1 died"
echo "oops" >&2
exit 3`)

	res := New(nil).Execute(context.Background(), bin, nil, 5*time.Second)

	require.Equal(t, KindCompleted, res.Kind, res.Message)
	assert.Equal(t, "0 1 has taken a fork\n795 1 died\n", res.Stdout)
	assert.Equal(t, "oops\n", res.Stderr)
	assert.Equal(t, 3, res.ExitCode)
	assert.Empty(t, res.Message)
	assert.Greater(t, res.Duration, time.Duration(0))
}

func TestExecutePassesArgsVerbatim(t *testing.T) {
	bin := testutil.Subject(t, `printf '%s\n' "$@"`)

	res := New(nil).Execute(context.Background(), bin, []string{"5", "800", "200", "200", "7"}, 5*time.Second)

	require.Equal(t, KindCompleted, res.Kind, res.Message)
	assert.Equal(t, "5\n800\n200\n200\n7\n", res.Stdout)
	assert.Equal(t, 0, res.ExitCode)
}

func TestExecuteEmptyOutput(t *testing.T) {
	bin := testutil.Subject(t, `exit 0`)

	res := New(nil).Execute(context.Background(), bin, nil, 5*time.Second)

	require.Equal(t, KindCompleted, res.Kind)
	assert.Empty(t, res.Stdout)
}

func TestExecutePreservesLineOrder(t *testing.T) {
	bin := testutil.Subject(t, `
i=0
while [ $i -lt 2000 ]; do
	echo "$i 1 is thinking"
	echo "noise $i" >&2
	i=$((i+1))
done`)

	res := New(nil).Execute(context.Background(), bin, nil, 10*time.Second)

	require.Equal(t, KindCompleted, res.Kind, res.Message)
	lines := strings.Split(strings.TrimSuffix(res.Stdout, "\n"), "\n")
	require.Len(t, lines, 2000)
	for i, l := range lines {
		require.Equal(t, fmt.Sprintf("%d 1 is thinking", i), l)
	}
}

func TestExecuteTimeout(t *testing.T) {
	bin := testutil.Subject(t, `
echo "0 1 is thinking"
sleep 10`)

	start := time.Now()
	res := New(nil).Execute(context.Background(), bin, nil, 300*time.Millisecond)

	require.Equal(t, KindTimedOut, res.Kind)
	assert.Empty(t, res.Stdout, "partial output must not be exposed")
	assert.Equal(t, -1, res.ExitCode)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestExecuteTimeoutReapsForkedChildren(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "child.pid")
	bin := testutil.Subject(t, `
sleep 30 &
echo $! > '`+pidFile+`'
sleep 30 &
wait`)

	res := New(nil).Execute(context.Background(), bin, nil, 500*time.Millisecond)
	require.Equal(t, KindTimedOut, res.Kind)

	raw, err := os.ReadFile(pidFile)
	require.NoError(t, err)
	pid, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return processGone(pid) }, 5*time.Second, 50*time.Millisecond,
		"child %d survived the process group kill", pid)
}

// processGone reports whether pid no longer exists or is a zombie waiting
// for its new parent to reap it.
func processGone(pid int) bool {
	if err := unix.Kill(pid, 0); err != nil {
		return true
	}
	stat, err := os.ReadFile(fmt.Sprintf("/proc/%d/stat", pid))
	if err != nil {
		return true
	}
	// Format: pid (comm) state ...
	fields := strings.Fields(string(stat[bytes.LastIndexByte(stat, ')')+1:]))
	return len(fields) > 0 && fields[0] == "Z"
}

func TestExecuteParentCancel(t *testing.T) {
	bin := testutil.Subject(t, `sleep 10`)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	res := New(nil).Execute(ctx, bin, nil, 5*time.Second)

	require.Equal(t, KindSpawnError, res.Kind)
	assert.Contains(t, res.Message, "interrupted")
}

func TestExecuteSpawnErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		binary  string
		timeout time.Duration
		want    string
	}{
		{"missing file", filepath.Join(dir, "philo"), time.Second, "binary not found"},
		{"empty path", "", time.Second, "binary not found"},
		{"not in PATH", "philo-does-not-exist-anywhere", time.Second, "binary not found"},
		{"not executable", testutil.NonExecutable(t), time.Second, "not executable"},
		{"directory", dir, time.Second, "is a directory"},
		{"zero timeout", testutil.Subject(t, "exit 0"), 0, "timeout must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := New(nil).Execute(context.Background(), tt.binary, nil, tt.timeout)
			require.Equal(t, KindSpawnError, res.Kind)
			assert.Contains(t, res.Message, tt.want)
		})
	}
}

func TestExecuteBadInterpreter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken")
	require.NoError(t, os.WriteFile(path, []byte("#!/nonexistent/interpreter\n"), 0o755))
	require.NoError(t, os.Chmod(path, 0o755))

	res := New(nil).Execute(context.Background(), path, nil, time.Second)

	require.Equal(t, KindSpawnError, res.Kind)
	assert.Contains(t, res.Message, "failed to start")
}

func TestRunTeesLiveOutput(t *testing.T) {
	bin := testutil.Subject(t, `
echo "0 1 is eating"
echo "warn" >&2`)

	var live, liveErr bytes.Buffer
	res := New(nil).Run(context.Background(), Request{
		Binary:  bin,
		Timeout: 5 * time.Second,
		Stdout:  &live,
		Stderr:  &liveErr,
	})

	require.Equal(t, KindCompleted, res.Kind)
	assert.Equal(t, res.Stdout, live.String())
	assert.Equal(t, "warn\n", liveErr.String())
}

func TestResultConstructors(t *testing.T) {
	assert.Equal(t, Result{Kind: KindCompleted, Stdout: "x"}, Completed("x"))
	assert.Equal(t, KindTimedOut, TimedOut().Kind)

	se := SpawnError("boom")
	assert.Equal(t, KindSpawnError, se.Kind)
	assert.Equal(t, "boom", se.Message)
}
