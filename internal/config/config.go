// Package config loads declarative device and criteria definitions
// from YAML, used to seed the compliance database.
package config

// #region imports
import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/macallanrf/rfcompliance/internal/model"
)

// #endregion

// #region yaml-types

// Definitions is the top-level YAML document.
type Definitions struct {
	Devices []DeviceDef `yaml:"devices"`
}

// DeviceDef declares one device and its criteria.
type DeviceDef struct {
	Name           string        `yaml:"name"`
	Description    string        `yaml:"description"`
	PartNumber     string        `yaml:"part_number"`
	OpFreqMin      float64       `yaml:"operational_freq_min"`
	OpFreqMax      float64       `yaml:"operational_freq_max"`
	WbFreqMin      float64       `yaml:"wideband_freq_min"`
	WbFreqMax      float64       `yaml:"wideband_freq_max"`
	MultiGainMode  bool          `yaml:"multi_gain_mode"`
	TestsPerformed []string      `yaml:"tests_performed"`
	InputPorts     []int         `yaml:"input_ports"`
	OutputPorts    []int         `yaml:"output_ports"`
	Criteria       []CriteriaDef `yaml:"criteria"`
}

// CriteriaDef declares one requirement. Order in the file is the
// evaluation order.
type CriteriaDef struct {
	TestType        string            `yaml:"test_type"`
	TestStage       string            `yaml:"test_stage"`
	RequirementName string            `yaml:"requirement_name"`
	Mode            string            `yaml:"mode"`
	MinValue        float64           `yaml:"min_value"`
	MaxValue        float64           `yaml:"max_value"`
	Unit            string            `yaml:"unit"`
	OOBWindows      []model.OOBWindow `yaml:"oob_windows"`
}

// #endregion

// #region load

// Load parses a definitions file.
func Load(path string) (*Definitions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var defs Definitions
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(defs.Devices) == 0 {
		return nil, fmt.Errorf("%s defines no devices", path)
	}
	return &defs, nil
}

// #endregion

// #region to-models

// ToModels converts a device definition into a validated Device and its
// criteria list, stamping fresh IDs.
func (d *DeviceDef) ToModels() (*model.Device, []model.TestCriteria, error) {
	dev := &model.Device{
		ID:                 uuid.New(),
		Name:               d.Name,
		Description:        d.Description,
		PartNumber:         d.PartNumber,
		OperationalFreqMin: d.OpFreqMin,
		OperationalFreqMax: d.OpFreqMax,
		WidebandFreqMin:    d.WbFreqMin,
		WidebandFreqMax:    d.WbFreqMax,
		MultiGainMode:      d.MultiGainMode,
		TestsPerformed:     d.TestsPerformed,
		InputPorts:         d.InputPorts,
		OutputPorts:        d.OutputPorts,
	}
	if err := dev.Validate(); err != nil {
		return nil, nil, fmt.Errorf("device %s: %w", d.PartNumber, err)
	}

	criteria := make([]model.TestCriteria, 0, len(d.Criteria))
	for i, cd := range d.Criteria {
		c := model.TestCriteria{
			ID:              uuid.New(),
			DeviceID:        dev.ID,
			TestType:        cd.TestType,
			TestStage:       cd.TestStage,
			RequirementName: cd.RequirementName,
			Mode:            model.CriteriaMode(cd.Mode),
			MinValue:        cd.MinValue,
			MaxValue:        cd.MaxValue,
			Unit:            cd.Unit,
			OOBWindows:      cd.OOBWindows,
		}
		if err := c.Validate(); err != nil {
			return nil, nil, fmt.Errorf("device %s criterion %d: %w", d.PartNumber, i, err)
		}
		criteria = append(criteria, c)
	}
	return dev, criteria, nil
}

// #endregion
