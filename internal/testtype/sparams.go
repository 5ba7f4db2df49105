package testtype

// #region imports
import (
	"fmt"
	"strings"

	"github.com/macallanrf/rfcompliance/internal/model"
	"github.com/macallanrf/rfcompliance/internal/rfcalc"
	"github.com/macallanrf/rfcompliance/internal/rfnet"
)

// #endregion

// #region sparameters

// SParameters evaluates scattering-parameter requirements: gain range,
// gain flatness, VSWR, return loss, and out-of-band rejection.
type SParameters struct{}

// NewSParameters returns the S-Parameters strategy.
func NewSParameters() *SParameters { return &SParameters{} }

// Name implements TestType.
func (s *SParameters) Name() string { return TestTypeSParameters }

// RelevantParameters implements TestType via the device's port-pair
// derivation.
func (s *SParameters) RelevantParameters(dev *model.Device, nports int) (gain, reflection []rfnet.SParam) {
	return dev.GainSParams(nports), dev.ReflectionSParams(nports)
}

// #endregion

// #region evaluate

// EvaluateCompliance implements TestType. Results are emitted in
// criteria order, then parameter order, then (for oob-ranges) window
// order, so re-evaluations reproduce the same sequence.
func (s *SParameters) EvaluateCompliance(meas *model.Measurement, dev *model.Device, criteria []model.TestCriteria) ([]model.TestResult, []Warning, error) {
	net := meas.Network
	gainParams, reflParams := s.RelevantParameters(dev, net.NPorts())

	var results []model.TestResult
	var warnings []Warning

	for i := range criteria {
		crit := &criteria[i]
		if crit.TestType != s.Name() {
			continue
		}

		params := gainParams
		if reflectionRequirement(crit.RequirementName) {
			params = reflParams
		}
		if len(params) == 0 {
			warnings = append(warnings, Warning{
				CriteriaID:      crit.ID,
				RequirementName: crit.RequirementName,
				Reason:          "device port configuration yields no applicable S-parameters",
			})
			continue
		}

		for _, p := range params {
			res, err := s.evaluateOne(meas, dev, crit, p)
			if err != nil {
				warnings = append(warnings, Warning{
					CriteriaID:      crit.ID,
					RequirementName: crit.RequirementName,
					Err: &EvaluationError{
						CriteriaID:      crit.ID,
						RequirementName: crit.RequirementName,
						SParameter:      p.Label(),
						Err:             err,
					},
				})
				continue
			}
			results = append(results, res...)
		}
	}

	return results, warnings, nil
}

// evaluateOne produces the results for a single (criterion, parameter)
// pair: one result for range/max-only, one per window for oob-ranges.
func (s *SParameters) evaluateOne(meas *model.Measurement, dev *model.Device, crit *model.TestCriteria, p rfnet.SParam) ([]model.TestResult, error) {
	net := meas.Network
	opMin, opMax := dev.OperationalFreqMin, dev.OperationalFreqMax

	switch crit.Mode {
	case model.ModeRange:
		minDB, maxDB, err := rfcalc.GainRange(net, p.Out, p.In, opMin, opMax)
		if err != nil {
			return nil, err
		}
		passed := minDB >= crit.MinValue && maxDB <= crit.MaxValue
		res := model.NewTestResult(meas.ID, crit.ID, p.Label(), maxDB, passed)
		lo, hi := minDB, maxDB
		res.MeasuredMin = &lo
		res.MeasuredMax = &hi
		return []model.TestResult{res}, nil

	case model.ModeMaxOnly:
		value, err := s.maxOnlyValue(meas, dev, crit, p)
		if err != nil {
			return nil, err
		}
		// Return loss is floor-bounded: the worst case is the smallest
		// figure, so compliance means staying at or above MinValue.
		passed := crit.EvaluateScalar(value)
		if returnLossRequirement(crit.RequirementName) {
			passed = value >= crit.MinValue
		}
		res := model.NewTestResult(meas.ID, crit.ID, p.Label(), value, passed)
		return []model.TestResult{res}, nil

	case model.ModeOOBRanges:
		results := make([]model.TestResult, 0, len(crit.OOBWindows))
		for _, w := range crit.OOBWindows {
			rej, err := rfcalc.OOBRejection(net, p.Out, p.In, w.FreqMin, w.FreqMax, opMin, opMax)
			if err != nil {
				return nil, err
			}
			res := model.NewTestResult(meas.ID, crit.ID, p.Label(), rej, rej >= w.MinRejection)
			win := w
			res.OOBWindow = &win
			results = append(results, res)
		}
		return results, nil
	}
	return nil, fmt.Errorf("unknown criteria mode %q", crit.Mode)
}

// maxOnlyValue picks the scalar a max-only requirement bounds: VSWR or
// return loss for reflection parameters, flatness for transmission.
func (s *SParameters) maxOnlyValue(meas *model.Measurement, dev *model.Device, crit *model.TestCriteria, p rfnet.SParam) (float64, error) {
	name := strings.ToLower(crit.RequirementName)
	switch {
	case strings.Contains(name, "vswr"):
		return rfcalc.VSWR(meas.Network, p.Out)
	case strings.Contains(name, "return loss"):
		return rfcalc.ReturnLoss(meas.Network, p.Out)
	default:
		return rfcalc.GainFlatness(meas.Network, p.Out, p.In, dev.OperationalFreqMin, dev.OperationalFreqMax)
	}
}

// reflectionRequirement reports whether a requirement name evaluates
// same-port parameters rather than transmission pairs.
func reflectionRequirement(name string) bool {
	return strings.Contains(strings.ToLower(name), "vswr") || returnLossRequirement(name)
}

// returnLossRequirement reports whether a requirement bounds return
// loss, which is compared against a floor rather than a cap.
func returnLossRequirement(name string) bool {
	return strings.Contains(strings.ToLower(name), "return loss")
}

// #endregion

// #region criteria-names

// StandardCriteriaNames lists the requirement names the maintenance
// layer offers for this test type.
func (s *SParameters) StandardCriteriaNames() []string {
	return []string{"Gain Range", "Gain Flatness", "VSWR Max", "Return Loss Min", "OOB Rejection"}
}

// #endregion
