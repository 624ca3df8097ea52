package suite

import (
	"fmt"
	"strings"
	"time"
)

// Window is an inclusive millisecond range a death timestamp must fall in.
type Window struct {
	MinMs int64 `yaml:"min_ms" toml:"min_ms" json:"min_ms"`
	MaxMs int64 `yaml:"max_ms" toml:"max_ms" json:"max_ms"`
}

// Contains reports whether ms lies within the window, bounds included.
func (w Window) Contains(ms int64) bool {
	return w.MinMs <= ms && ms <= w.MaxMs
}

func (w Window) String() string {
	return fmt.Sprintf("%d-%dms", w.MinMs, w.MaxMs)
}

// TestCase declares one scenario run against the subject binary.
// A TestCase is treated as immutable once loaded.
type TestCase struct {
	// Name is a short human label.
	Name string `yaml:"name" toml:"name" json:"name"`

	// Args are passed verbatim to the subject:
	// N time_to_die time_to_eat time_to_sleep [max_meals].
	Args []string `yaml:"args" toml:"args" json:"args"`

	// TimeoutSeconds is the hard ceiling on the subject's wall time.
	TimeoutSeconds int `yaml:"timeout" toml:"timeout" json:"timeout"`

	// ExpectedDeath tells whether a correct subject prints a death line.
	ExpectedDeath bool `yaml:"expected_death" toml:"expected_death" json:"expected_death"`

	// DeathWindow optionally bounds the first death's timestamp.
	// Only meaningful when ExpectedDeath is set.
	DeathWindow *Window `yaml:"death_window,omitempty" toml:"death_window,omitempty" json:"death_window,omitempty"`

	// Description is informational only.
	Description string `yaml:"description,omitempty" toml:"description,omitempty" json:"description,omitempty"`
}

// Timeout returns TimeoutSeconds as a duration.
func (tc TestCase) Timeout() time.Duration {
	return time.Duration(tc.TimeoutSeconds) * time.Second
}

// CommandLine renders the arguments the way they are typed in a shell.
func (tc TestCase) CommandLine() string {
	return strings.Join(tc.Args, " ")
}

// Suite is a named, ordered list of test cases.
type Suite struct {
	Name        string     `yaml:"name" toml:"name" json:"name"`
	Description string     `yaml:"description,omitempty" toml:"description,omitempty" json:"description,omitempty"`
	Cases       []TestCase `yaml:"cases" toml:"cases" json:"cases"`
}
