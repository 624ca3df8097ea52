package suite

import (
	"errors"
	"fmt"
	"strconv"
)

// ValidationError describes one broken invariant of a test case.
type ValidationError struct {
	// Index is the case position within its suite, or -1 for a lone case.
	Index   int
	Case    string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("cases[%d] (%s): %s: %s", e.Index, e.Case, e.Field, e.Message)
	}
	if e.Case != "" {
		return fmt.Sprintf("%s: %s: %s", e.Case, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the invariants of a single test case.
func (tc TestCase) Validate() error {
	return tc.validate(-1)
}

func (tc TestCase) validate(index int) error {
	fail := func(field, format string, args ...any) error {
		return &ValidationError{
			Index:   index,
			Case:    tc.Name,
			Field:   field,
			Message: fmt.Sprintf(format, args...),
		}
	}

	if tc.Name == "" {
		return fail("name", "is required")
	}
	if n := len(tc.Args); n != 4 && n != 5 {
		return fail("args", "want 4 or 5 arguments (N time_to_die time_to_eat time_to_sleep [max_meals]), got %d", n)
	}
	if tc.TimeoutSeconds <= 0 {
		return fail("timeout", "must be positive, got %d", tc.TimeoutSeconds)
	}

	budgetMs := int64(tc.TimeoutSeconds) * 1000

	// A timeout below time_to_die cannot tell survival from an early kill.
	if tDie, err := strconv.ParseInt(tc.Args[1], 10, 64); err == nil && tDie >= budgetMs {
		return fail("timeout", "%ds does not exceed time_to_die %dms", tc.TimeoutSeconds, tDie)
	}

	if w := tc.DeathWindow; w != nil {
		if !tc.ExpectedDeath {
			return fail("death_window", "set but expected_death is false")
		}
		if w.MinMs < 0 || w.MaxMs < 0 {
			return fail("death_window", "bounds must be non-negative, got %s", w)
		}
		if w.MinMs > w.MaxMs {
			return fail("death_window", "min_ms %d exceeds max_ms %d", w.MinMs, w.MaxMs)
		}
		if w.MaxMs >= budgetMs {
			return fail("death_window", "max_ms %d is not below the %ds timeout", w.MaxMs, tc.TimeoutSeconds)
		}
	}

	return nil
}

// Validate checks the suite name and every case. All case errors are
// reported, joined in case order.
func (s Suite) Validate() error {
	if s.Name == "" {
		return &ValidationError{Index: -1, Field: "name", Message: "suite name is required"}
	}
	if len(s.Cases) == 0 {
		return &ValidationError{Index: -1, Case: s.Name, Field: "cases", Message: "list is required and must be non-empty"}
	}

	var errs []error
	seen := make(map[string]int, len(s.Cases))
	for i, tc := range s.Cases {
		if err := tc.validate(i); err != nil {
			errs = append(errs, err)
			continue
		}
		if prev, dup := seen[tc.Name]; dup {
			errs = append(errs, &ValidationError{
				Index:   i,
				Case:    tc.Name,
				Field:   "name",
				Message: fmt.Sprintf("duplicates cases[%d]", prev),
			})
			continue
		}
		seen[tc.Name] = i
	}
	return errors.Join(errs...)
}
