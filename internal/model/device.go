// Package model defines the compliance domain entities: devices, test
// criteria, measurements and test results, with their validation rules.
package model

// #region imports
import (
	"fmt"
	"regexp"
	"sort"

	"github.com/google/uuid"

	"github.com/macallanrf/rfcompliance/internal/rfnet"
)

// #endregion

// #region device

// Device describes one testable device type: its frequency bands, its
// port topology, and which test types it undergoes. A Device is edited
// by the maintenance layer and treated as immutable for the duration of
// an evaluation.
type Device struct {
	ID          uuid.UUID
	Name        string
	Description string
	// PartNumber follows the Lnnnnnn house format.
	PartNumber string

	// Operational band in GHz: where gain and flatness requirements apply.
	OperationalFreqMin float64
	OperationalFreqMax float64

	// Wideband sweep limits in GHz; must enclose the operational band.
	WidebandFreqMin float64
	WidebandFreqMax float64

	// MultiGainMode devices carry separate high/low gain measurement sets.
	MultiGainMode bool

	// TestsPerformed lists enabled test-type identifiers.
	TestsPerformed []string

	// 1-indexed signal ports. Input and output sets are disjoint.
	InputPorts  []int
	OutputPorts []int
}

var partNumberRe = regexp.MustCompile(`^L\d{6}$`)

// Validate checks identity, frequency ordering, band containment, and
// port configuration.
func (d *Device) Validate() error {
	if !partNumberRe.MatchString(d.PartNumber) {
		return fmt.Errorf("part number must be Lnnnnnn, got %q", d.PartNumber)
	}
	if d.OperationalFreqMin <= 0 || d.OperationalFreqMin >= d.OperationalFreqMax {
		return fmt.Errorf("operational band [%.6f, %.6f] GHz invalid", d.OperationalFreqMin, d.OperationalFreqMax)
	}
	if d.WidebandFreqMin <= 0 || d.WidebandFreqMin >= d.WidebandFreqMax {
		return fmt.Errorf("wideband range [%.6f, %.6f] GHz invalid", d.WidebandFreqMin, d.WidebandFreqMax)
	}
	if d.OperationalFreqMin < d.WidebandFreqMin || d.OperationalFreqMax > d.WidebandFreqMax {
		return fmt.Errorf("operational band [%.6f, %.6f] not contained in wideband [%.6f, %.6f]",
			d.OperationalFreqMin, d.OperationalFreqMax, d.WidebandFreqMin, d.WidebandFreqMax)
	}
	if len(d.InputPorts) == 0 {
		return fmt.Errorf("at least one input port required")
	}
	if len(d.OutputPorts) == 0 {
		return fmt.Errorf("at least one output port required")
	}
	seen := map[int]bool{}
	for _, p := range d.InputPorts {
		if p < 1 {
			return fmt.Errorf("port numbers are 1-indexed, got %d", p)
		}
		if seen[p] {
			return fmt.Errorf("duplicate input port %d", p)
		}
		seen[p] = true
	}
	outSeen := map[int]bool{}
	for _, p := range d.OutputPorts {
		if p < 1 {
			return fmt.Errorf("port numbers are 1-indexed, got %d", p)
		}
		if seen[p] {
			return fmt.Errorf("port %d is both input and output", p)
		}
		if outSeen[p] {
			return fmt.Errorf("duplicate output port %d", p)
		}
		outSeen[p] = true
	}
	return nil
}

// #endregion

// #region port-derivation

// GainSParams derives the transmission parameters to evaluate: every
// (output, input) pair whose ports exist in an nports network. Sorted
// for stable result ordering.
func (d *Device) GainSParams(nports int) []rfnet.SParam {
	var params []rfnet.SParam
	for _, in := range d.InputPorts {
		for _, out := range d.OutputPorts {
			if in <= nports && out <= nports {
				params = append(params, rfnet.SParam{Out: out, In: in})
			}
		}
	}
	sort.Slice(params, func(i, j int) bool {
		if params[i].Out != params[j].Out {
			return params[i].Out < params[j].Out
		}
		return params[i].In < params[j].In
	})
	return params
}

// ReflectionSParams derives the same-port parameters for VSWR and
// return-loss requirements: every input and output port once,
// deduplicated and sorted.
func (d *Device) ReflectionSParams(nports int) []rfnet.SParam {
	set := map[int]bool{}
	for _, p := range d.InputPorts {
		set[p] = true
	}
	for _, p := range d.OutputPorts {
		set[p] = true
	}
	var ports []int
	for p := range set {
		if p <= nports {
			ports = append(ports, p)
		}
	}
	sort.Ints(ports)
	params := make([]rfnet.SParam, 0, len(ports))
	for _, p := range ports {
		params = append(params, rfnet.SParam{Out: p, In: p})
	}
	return params
}

// #endregion
