package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"
)

var (
	// ErrNotFound is reported when the binary path does not exist.
	ErrNotFound = errors.New("binary not found")
	// ErrNotExecutable is reported when the path exists but cannot be run.
	ErrNotExecutable = errors.New("binary is not executable")
)

// Request describes a single subject execution.
type Request struct {
	Binary  string
	Args    []string
	Timeout time.Duration

	// Stdout and Stderr, when set, receive a live copy of the subject's
	// streams in addition to the captured buffers.
	Stdout io.Writer
	Stderr io.Writer
}

// Runner spawns subject binaries under a wall-clock deadline.
//
// Each subject is started as the leader of a new process group. On deadline
// the whole group is killed, so subjects that fork (one process per
// philosopher) are reclaimed together with their children.
type Runner struct {
	logger *slog.Logger
}

// New creates a Runner. A nil logger discards all records.
func New(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{logger: logger}
}

// Execute runs binary with args and captures its output, killing it once
// timeout has elapsed.
func (r *Runner) Execute(ctx context.Context, binary string, args []string, timeout time.Duration) Result {
	return r.Run(ctx, Request{Binary: binary, Args: args, Timeout: timeout})
}

// Run executes req. It blocks for at most req.Timeout plus the time needed
// to reap the killed process group.
//
// Cancelling ctx kills the subject as well; the result is then a spawn
// error whose message starts with "interrupted".
func (r *Runner) Run(ctx context.Context, req Request) Result {
	if req.Timeout <= 0 {
		return SpawnError(fmt.Sprintf("timeout must be positive, got %s", req.Timeout))
	}

	binary, err := resolve(req.Binary)
	if err != nil {
		return SpawnError(err.Error())
	}

	runCtx, cancel := context.WithTimeout(ctx, req.Timeout)
	defer cancel()

	cmd := exec.Command(binary, req.Args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return SpawnError(fmt.Sprintf("failed to open stdout pipe: %v", err))
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return SpawnError(fmt.Sprintf("failed to open stderr pipe: %v", err))
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return SpawnError(fmt.Sprintf("failed to start %s: %v", binary, err))
	}
	pgid := cmd.Process.Pid
	r.logger.Debug("subject started", "binary", binary, "args", req.Args, "pid", pgid, "timeout", req.Timeout)

	done := make(chan struct{})
	killed := make(chan bool, 1)
	go func() {
		select {
		case <-runCtx.Done():
			if err := unix.Kill(-pgid, unix.SIGKILL); err != nil && !errors.Is(err, unix.ESRCH) {
				r.logger.Warn("failed to kill process group", "pgid", pgid, "error", err)
			}
			killed <- true
		case <-done:
			killed <- false
		}
	}()

	// Both pipes must be drained before Wait; reading them concurrently
	// keeps a chatty stderr from stalling stdout.
	var stdout, stderr bytes.Buffer
	var g errgroup.Group
	g.Go(func() error {
		_, err := io.Copy(tee(&stdout, req.Stdout), stdoutPipe)
		return err
	})
	g.Go(func() error {
		_, err := io.Copy(tee(&stderr, req.Stderr), stderrPipe)
		return err
	})
	copyErr := g.Wait()
	waitErr := cmd.Wait()
	close(done)
	wasKilled := <-killed
	duration := time.Since(start)

	if wasKilled {
		if ctx.Err() != nil {
			r.logger.Info("subject interrupted", "binary", binary, "pid", pgid)
			res := SpawnError(fmt.Sprintf("interrupted: %v", ctx.Err()))
			res.Duration = duration
			return res
		}
		r.logger.Debug("subject timed out", "binary", binary, "pid", pgid, "after", duration)
		res := TimedOut()
		res.Stderr = stderr.String()
		res.Duration = duration
		return res
	}

	if copyErr != nil {
		r.logger.Warn("reading subject output failed", "binary", binary, "error", copyErr)
	}

	exitCode := 0
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			res := SpawnError(fmt.Sprintf("failed waiting for %s: %v", binary, waitErr))
			res.Duration = duration
			return res
		}
		exitCode = exitErr.ExitCode()
	}

	r.logger.Debug("subject exited", "binary", binary, "pid", pgid, "exit_code", exitCode, "after", duration)
	res := Completed(stdout.String())
	res.Stderr = stderr.String()
	res.ExitCode = exitCode
	res.Duration = duration
	return res
}

func tee(buf *bytes.Buffer, live io.Writer) io.Writer {
	if live == nil {
		return buf
	}
	return io.MultiWriter(buf, live)
}

// resolve checks that binary names a runnable regular file. Bare names
// without a path separator are looked up in PATH.
func resolve(binary string) (string, error) {
	if binary == "" {
		return "", fmt.Errorf("%w: empty path", ErrNotFound)
	}
	if !strings.Contains(binary, "/") {
		path, err := exec.LookPath(binary)
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrNotFound, binary)
		}
		binary = path
	}

	info, err := os.Stat(binary)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, binary)
	}
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", binary, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrNotExecutable, binary)
	}
	if info.Mode().Perm()&0o111 == 0 {
		return "", fmt.Errorf("%w: %s", ErrNotExecutable, binary)
	}
	return binary, nil
}
