// Package replay re-runs recorded compliance evaluations from JSON
// fixtures and diffs the outcomes, guarding the numeric core against
// regressions.
package replay

// #region imports
import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/macallanrf/rfcompliance/internal/model"
	"github.com/macallanrf/rfcompliance/internal/rfnet"
)

// #endregion

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture: one
// device, its criteria, one sampled network, and the expected outcomes.
type Fixture struct {
	Description      string             `json:"description"`
	Device           FixtureDevice      `json:"device"`
	Criteria         []FixtureCriteria  `json:"criteria"`
	Measurement      FixtureMeasurement `json:"measurement"`
	ExpectedOutcomes []ExpectedOutcome  `json:"expected_outcomes"`
}

// FixtureDevice mirrors model.Device with JSON tags.
type FixtureDevice struct {
	Name           string   `json:"name"`
	PartNumber     string   `json:"part_number"`
	OpFreqMin      float64  `json:"op_freq_min"`
	OpFreqMax      float64  `json:"op_freq_max"`
	WbFreqMin      float64  `json:"wb_freq_min"`
	WbFreqMax      float64  `json:"wb_freq_max"`
	TestsPerformed []string `json:"tests_performed"`
	InputPorts     []int    `json:"input_ports"`
	OutputPorts    []int    `json:"output_ports"`
}

// FixtureCriteria mirrors model.TestCriteria with JSON tags. The list
// order is the evaluation order.
type FixtureCriteria struct {
	TestType        string            `json:"test_type"`
	TestStage       string            `json:"test_stage"`
	RequirementName string            `json:"requirement_name"`
	Mode            string            `json:"mode"`
	MinValue        float64           `json:"min_value"`
	MaxValue        float64           `json:"max_value"`
	Unit            string            `json:"unit"`
	OOBWindows      []model.OOBWindow `json:"oob_windows,omitempty"`
}

// FixtureMeasurement carries the sampled network: per-point S-matrices
// as [re, im] pairs, indexed [point][out][in].
type FixtureMeasurement struct {
	SerialNumber string           `json:"serial_number"`
	TestType     string           `json:"test_type"`
	Temperature  string           `json:"temperature"`
	Path         string           `json:"path"`
	Freqs        []float64        `json:"freqs_ghz"`
	SMatrices    [][][][2]float64 `json:"s_matrices"`
}

// ExpectedOutcome is the recorded pass/fail for one
// (requirement, S-parameter) pair.
type ExpectedOutcome struct {
	RequirementName string `json:"requirement_name"`
	SParameter      string `json:"s_parameter"`
	Passed          bool   `json:"passed"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ToModels converts the fixture into domain objects with fresh IDs.
func (f *Fixture) ToModels() (*model.Device, []model.TestCriteria, *model.Measurement, error) {
	dev := &model.Device{
		ID:                 uuid.New(),
		Name:               f.Device.Name,
		PartNumber:         f.Device.PartNumber,
		OperationalFreqMin: f.Device.OpFreqMin,
		OperationalFreqMax: f.Device.OpFreqMax,
		WidebandFreqMin:    f.Device.WbFreqMin,
		WidebandFreqMax:    f.Device.WbFreqMax,
		TestsPerformed:     f.Device.TestsPerformed,
		InputPorts:         f.Device.InputPorts,
		OutputPorts:        f.Device.OutputPorts,
	}
	if err := dev.Validate(); err != nil {
		return nil, nil, nil, fmt.Errorf("fixture device: %w", err)
	}

	criteria := make([]model.TestCriteria, 0, len(f.Criteria))
	for i, fc := range f.Criteria {
		c := model.TestCriteria{
			ID:              uuid.New(),
			DeviceID:        dev.ID,
			TestType:        fc.TestType,
			TestStage:       fc.TestStage,
			RequirementName: fc.RequirementName,
			Mode:            model.CriteriaMode(fc.Mode),
			MinValue:        fc.MinValue,
			MaxValue:        fc.MaxValue,
			Unit:            fc.Unit,
			OOBWindows:      fc.OOBWindows,
		}
		if err := c.Validate(); err != nil {
			return nil, nil, nil, fmt.Errorf("fixture criterion %d: %w", i, err)
		}
		criteria = append(criteria, c)
	}

	s := make([][][]complex128, len(f.Measurement.SMatrices))
	for i, m := range f.Measurement.SMatrices {
		s[i] = make([][]complex128, len(m))
		for out, row := range m {
			s[i][out] = make([]complex128, len(row))
			for in, pair := range row {
				s[i][out][in] = complex(pair[0], pair[1])
			}
		}
	}
	net, err := rfnet.NewNetwork(f.Measurement.Freqs, s)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("fixture network: %w", err)
	}

	meas := &model.Measurement{
		ID:           uuid.New(),
		DeviceID:     dev.ID,
		SerialNumber: f.Measurement.SerialNumber,
		TestType:     f.Measurement.TestType,
		Temperature:  model.Temperature(f.Measurement.Temperature),
		Path:         model.PathType(f.Measurement.Path),
		Network:      net,
	}
	if err := meas.Validate(); err != nil {
		return nil, nil, nil, fmt.Errorf("fixture measurement: %w", err)
	}
	return dev, criteria, meas, nil
}

// #endregion fixture-loader
