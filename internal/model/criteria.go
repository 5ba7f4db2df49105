package model

// #region imports
import (
	"fmt"

	"github.com/google/uuid"
)

// #endregion

// #region criteria-mode

// CriteriaMode selects how a requirement's bounds are applied.
type CriteriaMode string

const (
	// ModeRange bounds where the whole response must sit: both the
	// observed minimum and maximum must fall inside [MinValue, MaxValue].
	ModeRange CriteriaMode = "range"
	// ModeMaxOnly bounds a single worst-case scalar. Caps apply value ≤
	// MaxValue (flatness, VSWR); return-loss requirements are floors
	// instead (value ≥ MinValue), dispatched by the strategy.
	ModeMaxOnly CriteriaMode = "max-only"
	// ModeOOBRanges evaluates worst-case rejection per window; every
	// window must meet its MinRejection for the criterion to pass.
	ModeOOBRanges CriteriaMode = "oob-ranges"
)

// #endregion

// #region oob-window

// OOBWindow is one out-of-band rejection requirement: within
// [FreqMin, FreqMax] GHz the rejection must stay at or above
// MinRejection dBc.
type OOBWindow struct {
	FreqMin      float64 `json:"freq_min" yaml:"freq_min"`
	FreqMax      float64 `json:"freq_max" yaml:"freq_max"`
	MinRejection float64 `json:"min_rejection" yaml:"min_rejection"`
}

// #endregion

// #region test-criteria

// TestCriteria is one acceptance requirement for a device, scoped to a
// test type and a test stage. Editing a criterion stales every result
// computed against it.
type TestCriteria struct {
	ID       uuid.UUID
	DeviceID uuid.UUID
	TestType string
	// TestStage is an opaque stage label, e.g. "Board-Bring-Up", "SIT",
	// "Test-Campaign". Criteria are stage-scoped; measurements are not.
	TestStage string
	// RequirementName is the display name, e.g. "Gain Range", "VSWR Max".
	RequirementName string
	Mode            CriteriaMode
	MinValue        float64
	MaxValue        float64
	// Unit is for display only ("dB", "dBc", "").
	Unit string
	// OOBWindows is set only for ModeOOBRanges; order is significant.
	OOBWindows []OOBWindow
}

// Validate checks that bounds match the mode.
func (c *TestCriteria) Validate() error {
	switch c.Mode {
	case ModeRange:
		if c.MinValue >= c.MaxValue {
			return fmt.Errorf("range criterion %q: min %.4f must be below max %.4f", c.RequirementName, c.MinValue, c.MaxValue)
		}
	case ModeMaxOnly:
		// Which bound applies is requirement-dependent; no ordering to check.
	case ModeOOBRanges:
		if len(c.OOBWindows) == 0 {
			return fmt.Errorf("oob-ranges criterion %q has no windows", c.RequirementName)
		}
		for i, w := range c.OOBWindows {
			if w.FreqMin >= w.FreqMax {
				return fmt.Errorf("oob-ranges criterion %q window %d: [%.6f, %.6f] GHz invalid", c.RequirementName, i, w.FreqMin, w.FreqMax)
			}
		}
	default:
		return fmt.Errorf("unknown criteria mode %q", c.Mode)
	}
	return nil
}

// EvaluateScalar applies the mode's comparison to a single measured
// value. All comparisons are non-strict. Range mode compares the one
// value against both bounds; callers holding a (min, max) observation
// pair should call it for each bound.
func (c *TestCriteria) EvaluateScalar(value float64) bool {
	switch c.Mode {
	case ModeRange:
		return value >= c.MinValue && value <= c.MaxValue
	case ModeMaxOnly:
		return value <= c.MaxValue
	default:
		return false
	}
}

// #endregion
