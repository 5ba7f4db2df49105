// Package testtype holds the pluggable per-test-type evaluation
// strategies and their registry. A strategy derives which scattering
// parameters a device's requirements apply to and produces one
// TestResult per (criterion, parameter) actually evaluated.
package testtype

// #region imports
import (
	"fmt"

	"github.com/google/uuid"

	"github.com/macallanrf/rfcompliance/internal/model"
	"github.com/macallanrf/rfcompliance/internal/rfnet"
)

// #endregion

// #region interface

// TestType is the strategy contract. Implementations must be stateless:
// EvaluateCompliance may run concurrently for different measurements.
type TestType interface {
	// Name is the test-type identifier criteria and measurements carry.
	Name() string

	// RelevantParameters derives the applicable parameters from the
	// device's port topology: transmission pairs for gain-type
	// requirements, same-port parameters for reflection requirements.
	RelevantParameters(dev *model.Device, nports int) (gain, reflection []rfnet.SParam)

	// EvaluateCompliance evaluates every criterion in criteria whose
	// test type matches this strategy. Criteria order is preserved in
	// the result order. Per-criterion numeric failures and skipped
	// criteria are reported as warnings, never as a hard error, so one
	// bad criterion cannot abort the rest of the measurement.
	EvaluateCompliance(meas *model.Measurement, dev *model.Device, criteria []model.TestCriteria) ([]model.TestResult, []Warning, error)
}

// #endregion

// #region warning

// Warning reports a criterion that produced no result: either its port
// derivation yielded nothing to evaluate (configuration problem) or the
// calculator failed on it.
type Warning struct {
	CriteriaID      uuid.UUID
	RequirementName string
	Reason          string
	// Err is non-nil when a numeric failure caused the skip.
	Err error
}

func (w Warning) String() string {
	if w.Err != nil {
		return fmt.Sprintf("criterion %q (%s) skipped: %v", w.RequirementName, w.CriteriaID, w.Err)
	}
	return fmt.Sprintf("criterion %q (%s) skipped: %s", w.RequirementName, w.CriteriaID, w.Reason)
}

// #endregion
