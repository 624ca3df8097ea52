package suite

import (
	"fmt"
	"path/filepath"
	"sort"
)

// Built-in suite names.
const (
	MandatoryName = "mandatory"
	BonusName     = "bonus"
)

// Mandatory returns the suite for the thread-based philo binary.
func Mandatory() Suite {
	return Suite{
		Name:        MandatoryName,
		Description: "philo: threads and mutexes",
		Cases: []TestCase{
			{
				Name:           "Single Philosopher (should die)",
				Args:           []string{"1", "800", "200", "200"},
				TimeoutSeconds: 5,
				ExpectedDeath:  true,
				DeathWindow:    &Window{MinMs: 790, MaxMs: 810},
				Description:    "Single philosopher takes one fork and dies at t_die",
			},
			{
				Name:           "Two Philosophers (no death)",
				Args:           []string{"2", "400", "100", "100"},
				TimeoutSeconds: 5,
				Description:    "Two philosophers alternate eating, no starvation",
			},
			{
				Name:           "Two Philosophers (tight timing death)",
				Args:           []string{"2", "200", "100", "100"},
				TimeoutSeconds: 5,
				Description:    "Two philosophers alternate eating without starvation at these timings",
			},
			{
				Name:           "Four Philosophers (one dies at 310ms)",
				Args:           []string{"4", "310", "200", "100"},
				TimeoutSeconds: 5,
				ExpectedDeath:  true,
				DeathWindow:    &Window{MinMs: 300, MaxMs: 320},
				Description:    "One philosopher dies at ~310ms",
			},
			{
				Name:           "Four Philosophers (no death at 410ms)",
				Args:           []string{"4", "410", "200", "200"},
				TimeoutSeconds: 5,
				Description:    "Adequate time prevents starvation",
			},
			{
				Name:           "Five Philosophers (no death)",
				Args:           []string{"5", "800", "200", "200"},
				TimeoutSeconds: 5,
				Description:    "Odd number philosophers with sufficient time",
			},
			{
				Name:           "Five Philosophers with must_eat=7",
				Args:           []string{"5", "800", "200", "200", "7"},
				TimeoutSeconds: 10,
				Description:    "Simulation stops after each philosopher eats 7 times",
			},
			{
				Name:           "Large Scale (200 philosophers)",
				Args:           []string{"200", "800", "200", "200"},
				TimeoutSeconds: 30,
				Description:    "Stress test with 200 philosophers",
			},
		},
	}
}

// Bonus returns the suite for the process-based philo_bonus binary.
func Bonus() Suite {
	return Suite{
		Name:        BonusName,
		Description: "philo_bonus: processes and semaphores",
		Cases: []TestCase{
			{
				Name:           "Single Philosopher (should die)",
				Args:           []string{"1", "800", "200", "200"},
				TimeoutSeconds: 5,
				ExpectedDeath:  true,
				DeathWindow:    &Window{MinMs: 790, MaxMs: 810},
				Description:    "Single philosopher in separate process takes one fork and dies",
			},
			{
				Name:           "Two Philosophers (no death)",
				Args:           []string{"2", "400", "100", "100"},
				TimeoutSeconds: 5,
				Description:    "Two philosopher processes alternate eating",
			},
			{
				Name:           "Two Philosophers (tight timing death)",
				Args:           []string{"2", "200", "100", "100"},
				TimeoutSeconds: 5,
				Description:    "Two philosopher processes alternate eating without starvation at these timings",
			},
			{
				Name:           "Four Philosophers (one dies at 310ms)",
				Args:           []string{"4", "310", "200", "100"},
				TimeoutSeconds: 5,
				ExpectedDeath:  true,
				DeathWindow:    &Window{MinMs: 300, MaxMs: 320},
				Description:    "One philosopher dies at ~310ms",
			},
			{
				Name:           "Four Philosophers (no death at 410ms)",
				Args:           []string{"4", "410", "200", "200"},
				TimeoutSeconds: 5,
				Description:    "Adequate time prevents starvation with semaphores",
			},
			{
				Name:           "Five Philosophers (no death)",
				Args:           []string{"5", "800", "200", "200"},
				TimeoutSeconds: 5,
				Description:    "Odd number philosophers in processes",
			},
			{
				Name:           "Five Philosophers with must_eat=7",
				Args:           []string{"5", "800", "200", "200", "7"},
				TimeoutSeconds: 10,
				Description:    "All child processes terminate after each eats 7 times",
			},
			{
				Name:           "Large Scale (200 philosophers)",
				Args:           []string{"200", "800", "200", "200"},
				TimeoutSeconds: 30,
				Description:    "Stress test with 200 processes",
			},
		},
	}
}

var builtins = map[string]func() Suite{
	MandatoryName: Mandatory,
	BonusName:     Bonus,
}

// Builtin returns the built-in suite with the given name.
func Builtin(name string) (Suite, error) {
	fn, ok := builtins[name]
	if !ok {
		return Suite{}, fmt.Errorf("unknown suite %q: must be one of %v", name, BuiltinNames())
	}
	return fn(), nil
}

// BuiltinNames lists the built-in suite names in sorted order.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for n := range builtins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Filter returns the cases whose name matches the glob pattern. An empty
// pattern keeps every case.
func Filter(cases []TestCase, pattern string) ([]TestCase, error) {
	if pattern == "" {
		return cases, nil
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid filter pattern: %w", err)
	}

	kept := make([]TestCase, 0, len(cases))
	for _, tc := range cases {
		if ok, _ := filepath.Match(pattern, tc.Name); ok {
			kept = append(kept, tc)
		}
	}
	return kept, nil
}
