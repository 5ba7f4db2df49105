package orchestrator

// #region imports
import (
	"fmt"

	"github.com/google/uuid"

	"github.com/macallanrf/rfcompliance/internal/model"
)

// #endregion

// #region collaborators

// DeviceSource resolves device configurations.
type DeviceSource interface {
	DeviceByID(id uuid.UUID) (*model.Device, error)
}

// CriteriaSource returns the ordered criteria for one
// (device, test type, test stage). Order is significant: results are
// emitted and re-emitted in this order so stale/fresh diffs are stable.
type CriteriaSource interface {
	CriteriaFor(deviceID uuid.UUID, testType, testStage string) ([]model.TestCriteria, error)
}

// MeasurementSource lists the loaded measurements for a device.
// Measurements are stage-agnostic; only criteria are stage-scoped.
type MeasurementSource interface {
	MeasurementsForDevice(deviceID uuid.UUID) ([]model.Measurement, error)
}

// ResultStore persists evaluation outcomes. SaveResults must be
// transactional per call: a crash mid-evaluation may lose a whole
// measurement's results but never commit half of them.
type ResultStore interface {
	SaveResults(measurementID uuid.UUID, results []model.TestResult) error
	MarkStaleByCriteria(criteriaID uuid.UUID) (int, error)
	ResultsForMeasurement(measurementID uuid.UUID) ([]model.TestResult, error)
}

// #endregion

// #region pass-status

// PassStatus is the rolled-up compliance state of a measurement.
// Absence of evaluation is deliberately distinct from failure: no data
// must never present as compliant, and callers surface it separately.
type PassStatus string

const (
	StatusPass   PassStatus = "pass"
	StatusFail   PassStatus = "fail"
	StatusNoData PassStatus = "no_data"
)

// #endregion

// #region no-criteria-error

// NoCriteriaDefinedError signals an empty criteria set for a
// device/test-type/stage combination. It is a non-fatal empty-state
// signal for batch evaluation, not a fault.
type NoCriteriaDefinedError struct {
	DeviceID  uuid.UUID
	TestType  string
	TestStage string
}

func (e *NoCriteriaDefinedError) Error() string {
	return fmt.Sprintf("no criteria defined for device %s, test type %q, stage %q", e.DeviceID, e.TestType, e.TestStage)
}

// #endregion
