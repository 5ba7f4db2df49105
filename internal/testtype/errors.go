package testtype

// #region imports
import (
	"fmt"

	"github.com/google/uuid"
)

// #endregion

// #region evaluation-error

// EvaluationError tags a calculator failure with the offending criterion
// so evaluation of the remaining criteria can continue.
type EvaluationError struct {
	CriteriaID      uuid.UUID
	RequirementName string
	SParameter      string
	Err             error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluating %q on %s (criterion %s): %v", e.RequirementName, e.SParameter, e.CriteriaID, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

// #endregion

// #region unknown-test-type

// UnknownTestTypeError means a test-type identifier has no registered
// strategy. This is a configuration fault, not a data condition, and is
// not recoverable.
type UnknownTestTypeError struct {
	Name string
}

func (e *UnknownTestTypeError) Error() string {
	return fmt.Sprintf("no test type registered for %q", e.Name)
}

// #endregion
