package runner

import "time"

// Kind identifies which variant of Result is populated.
type Kind string

const (
	// KindCompleted means the subject exited on its own before the deadline.
	KindCompleted Kind = "completed"
	// KindTimedOut means the deadline passed and the subject was killed.
	KindTimedOut Kind = "timed_out"
	// KindSpawnError means the subject could not be launched, or the run
	// was interrupted before it could be classified.
	KindSpawnError Kind = "spawn_error"
)

// Result is the outcome of one subject execution.
//
// Exactly one variant applies: Completed carries Stdout, TimedOut carries
// nothing the verdict may use, SpawnError carries Message. Stderr, ExitCode
// and Duration are diagnostics and must not influence a verdict.
type Result struct {
	Kind    Kind
	Stdout  string
	Message string

	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Completed builds a completed result with the given standard output.
func Completed(stdout string) Result {
	return Result{Kind: KindCompleted, Stdout: stdout}
}

// TimedOut builds a timed-out result.
func TimedOut() Result {
	return Result{Kind: KindTimedOut, ExitCode: -1}
}

// SpawnError builds a spawn-error result with a diagnostic message.
func SpawnError(message string) Result {
	return Result{Kind: KindSpawnError, Message: message, ExitCode: -1}
}
