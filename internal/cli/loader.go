package cli

import (
	"fmt"

	"github.com/eabdelfa/03-philosophers/internal/suite"
)

// Suite selections accepted by --suite.
const (
	SuiteMandatory = suite.MandatoryName
	SuiteBonus     = suite.BonusName
	SuiteAll       = "all"
)

// suitePlan is one suite to run against one binary.
type suitePlan struct {
	Name   string
	Binary string
	Cases  []suite.TestCase
}

// LoadError is a failure to resolve what to run. Code is one of the
// ErrCode constants.
type LoadError struct {
	Code    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func missingBinary(suiteName, flag, env string) *LoadError {
	return &LoadError{
		Code:    ErrCodeNoBinary,
		Message: fmt.Sprintf("no binary for suite %q: pass %s or set %s", suiteName, flag, env),
	}
}

// planBuiltin resolves --suite. The bonus suite runs against bonusBinary,
// falling back to binary when "bonus" alone is selected.
func planBuiltin(selection, binary, bonusBinary string) ([]suitePlan, error) {
	switch selection {
	case SuiteMandatory:
		if binary == "" {
			return nil, missingBinary(SuiteMandatory, "--binary", "PHILOTEST_BINARY")
		}
		return []suitePlan{{Name: SuiteMandatory, Binary: binary, Cases: suite.Mandatory().Cases}}, nil

	case SuiteBonus:
		bin := firstNonEmpty(bonusBinary, binary)
		if bin == "" {
			return nil, missingBinary(SuiteBonus, "--bonus-binary", "PHILOTEST_BONUS_BINARY")
		}
		return []suitePlan{{Name: SuiteBonus, Binary: bin, Cases: suite.Bonus().Cases}}, nil

	case SuiteAll:
		if binary == "" {
			return nil, missingBinary(SuiteMandatory, "--binary", "PHILOTEST_BINARY")
		}
		if bonusBinary == "" {
			return nil, missingBinary(SuiteBonus, "--bonus-binary", "PHILOTEST_BONUS_BINARY")
		}
		return []suitePlan{
			{Name: SuiteMandatory, Binary: binary, Cases: suite.Mandatory().Cases},
			{Name: SuiteBonus, Binary: bonusBinary, Cases: suite.Bonus().Cases},
		}, nil

	default:
		return nil, &LoadError{
			Code:    ErrCodeGeneric,
			Message: fmt.Sprintf("unknown suite %q: must be one of mandatory, bonus, all", selection),
		}
	}
}

// planFiles loads every suite file, all of them run against binary.
func planFiles(paths []string, binary string) ([]suitePlan, error) {
	if binary == "" {
		return nil, missingBinary("custom", "--binary", "PHILOTEST_BINARY")
	}

	plans := make([]suitePlan, 0, len(paths))
	for _, path := range paths {
		s, err := suite.Load(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeSuiteLoad, Message: "failed to load suite", Err: err}
		}
		plans = append(plans, suitePlan{Name: s.Name, Binary: binary, Cases: s.Cases})
	}
	return plans, nil
}

// filterPlans keeps only the cases whose name matches pattern. Plans left
// without cases are dropped.
func filterPlans(plans []suitePlan, pattern string) ([]suitePlan, error) {
	if pattern == "" {
		return plans, nil
	}

	out := make([]suitePlan, 0, len(plans))
	for _, p := range plans {
		cases, err := suite.Filter(p.Cases, pattern)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeGeneric, Message: "invalid --filter pattern", Err: err}
		}
		if len(cases) == 0 {
			continue
		}
		p.Cases = cases
		out = append(out, p)
	}
	return out, nil
}

func countCases(plans []suitePlan) int {
	n := 0
	for _, p := range plans {
		n += len(p.Cases)
	}
	return n
}
