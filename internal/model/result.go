package model

// #region imports
import (
	"time"

	"github.com/google/uuid"
)

// #endregion

// #region test-result

// TestResult records the outcome of evaluating one measurement against
// one criterion for one scattering parameter. Results form an
// append-only log: a criteria edit marks prior rows stale, and
// re-evaluation creates new rows rather than mutating old ones, so the
// previous value stays queryable until superseded.
type TestResult struct {
	ID            uuid.UUID
	MeasurementID uuid.UUID
	CriteriaID    uuid.UUID
	// SParameter is the label the value pertains to, e.g. "S21".
	SParameter string
	// MeasuredValue is the scalar compared against the requirement. For
	// range mode it is the worst bound (the observed maximum); the full
	// observed pair is in MeasuredMin/MeasuredMax.
	MeasuredValue float64
	// MeasuredMin and MeasuredMax are set only for range-mode results.
	MeasuredMin *float64
	MeasuredMax *float64
	// OOBWindow is set only for oob-ranges results, identifying which
	// window of the criterion this row reports.
	OOBWindow *OOBWindow
	Passed    bool
	Stale     bool
	CreatedAt time.Time
}

// NewTestResult stamps identity and creation time for a fresh result.
func NewTestResult(measurementID, criteriaID uuid.UUID, sparam string, value float64, passed bool) TestResult {
	return TestResult{
		ID:            uuid.New(),
		MeasurementID: measurementID,
		CriteriaID:    criteriaID,
		SParameter:    sparam,
		MeasuredValue: value,
		Passed:        passed,
		CreatedAt:     time.Now().UTC(),
	}
}

// #endregion
