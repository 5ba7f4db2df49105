package rfcalc

import "fmt"

// #region insufficient-data

// InsufficientDataError reports a requested band with no samples: either
// the caller's band or the sweep's coverage is wrong.
type InsufficientDataError struct {
	FreqMin float64
	FreqMax float64
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("no samples in band [%.6f, %.6f] GHz", e.FreqMin, e.FreqMax)
}

// #endregion

// #region domain-error

// DomainError reports a physically invalid reading, e.g. |Γ| ≥ 1 when
// computing VSWR. It signals upstream data corruption and is never
// silently coerced.
type DomainError struct {
	Port int
	Freq float64
	Mag  float64
	Op   string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: non-physical |S%d%d|=%.6f at %.6f GHz", e.Op, e.Port, e.Port, e.Mag, e.Freq)
}

// #endregion
