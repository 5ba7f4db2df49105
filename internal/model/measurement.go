package model

// #region imports
import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/macallanrf/rfcompliance/internal/rfnet"
)

// #endregion

// #region temperature

// Temperature is the environmental condition a measurement was taken at.
type Temperature string

const (
	TempAmbient Temperature = "AMB"
	TempHot     Temperature = "HOT"
	TempCold    Temperature = "COLD"
)

// Temperatures lists the conditions in presentation order.
var Temperatures = []Temperature{TempAmbient, TempHot, TempCold}

// #endregion

// #region path

// PathType identifies which signal path a measurement exercised.
type PathType string

const (
	PathPrimary   PathType = "PRI"
	PathRedundant PathType = "RED"
)

// GainMode tags the gain setting for multi-gain devices; empty otherwise.
type GainMode string

const (
	GainModeNone GainMode = ""
	GainModeHigh GainMode = "HG"
	GainModeLow  GainMode = "LG"
)

// #endregion

// #region measurement

// Measurement is one loaded measurement file: its identifying metadata
// plus the sampled network. Measurements are immutable once created; a
// corrected measurement is a new Measurement.
type Measurement struct {
	ID           uuid.UUID
	DeviceID     uuid.UUID
	SerialNumber string
	TestType     string
	Temperature  Temperature
	Path         PathType
	GainMode     GainMode
	FilePath     string
	MeasuredAt   time.Time
	Network      *rfnet.Network
}

// Validate checks the closed metadata sets and that network data is
// attached.
func (m *Measurement) Validate() error {
	switch m.Temperature {
	case TempAmbient, TempHot, TempCold:
	default:
		return fmt.Errorf("temperature must be AMB, HOT or COLD, got %q", m.Temperature)
	}
	switch m.Path {
	case PathPrimary, PathRedundant:
	default:
		return fmt.Errorf("path must be PRI or RED, got %q", m.Path)
	}
	switch m.GainMode {
	case GainModeNone, GainModeHigh, GainModeLow:
	default:
		return fmt.Errorf("gain mode must be empty, HG or LG, got %q", m.GainMode)
	}
	if m.Network == nil {
		return fmt.Errorf("measurement %s has no network data", m.SerialNumber)
	}
	return nil
}

// PathLabel renders the path with its gain-mode suffix, e.g. "PRI_HG".
func (m *Measurement) PathLabel() string {
	if m.GainMode == GainModeNone {
		return string(m.Path)
	}
	return fmt.Sprintf("%s_%s", m.Path, m.GainMode)
}

// #endregion
