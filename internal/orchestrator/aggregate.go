package orchestrator

// #region imports
import (
	"sort"

	"github.com/google/uuid"

	"github.com/macallanrf/rfcompliance/internal/model"
)

// #endregion

// #region rollup-types

// SParamRollup is the leaf of the presentation hierarchy: one
// scattering parameter's results under one criterion, ANDed.
type SParamRollup struct {
	Label   string
	Passed  bool
	Results []model.TestResult
}

// CriterionRollup groups one criterion's per-parameter outcomes.
type CriterionRollup struct {
	CriteriaID      uuid.UUID
	RequirementName string
	Passed          bool
	SParams         []SParamRollup
}

// TemperatureRollup groups outcomes for every measurement taken at one
// temperature condition.
type TemperatureRollup struct {
	Temperature model.Temperature
	Passed      bool
	Criteria    []CriterionRollup
}

// DeviceRollup is the top of the Temperature → Criterion → S-parameter
// hierarchy. Passed is the AND of all children at every level.
type DeviceRollup struct {
	Passed       bool
	Temperatures []TemperatureRollup
}

// #endregion

// #region aggregate

// Aggregate builds the presentation roll-up from a batch evaluation.
// Stale results are excluded. Temperatures appear in the fixed
// AMB/HOT/COLD order; criteria in the order given (the criteria
// source's order); parameters in sorted label order within a
// criterion. A roll-up with no fresh results at all reports Passed
// false: absence of evaluation never presents as compliant.
func Aggregate(measurements []model.Measurement, resultsByMeasurement map[uuid.UUID][]model.TestResult, criteria []model.TestCriteria) DeviceRollup {
	measTemp := make(map[uuid.UUID]model.Temperature, len(measurements))
	for _, m := range measurements {
		measTemp[m.ID] = m.Temperature
	}

	// temperature -> criteria id -> label -> results
	type bucket map[uuid.UUID]map[string][]model.TestResult
	byTemp := map[model.Temperature]bucket{}
	for measID, results := range resultsByMeasurement {
		temp, ok := measTemp[measID]
		if !ok {
			continue
		}
		for _, r := range results {
			if r.Stale {
				continue
			}
			b, ok := byTemp[temp]
			if !ok {
				b = bucket{}
				byTemp[temp] = b
			}
			if b[r.CriteriaID] == nil {
				b[r.CriteriaID] = map[string][]model.TestResult{}
			}
			b[r.CriteriaID][r.SParameter] = append(b[r.CriteriaID][r.SParameter], r)
		}
	}

	rollup := DeviceRollup{Passed: true}
	any := false
	for _, temp := range model.Temperatures {
		b, ok := byTemp[temp]
		if !ok {
			continue
		}
		tr := TemperatureRollup{Temperature: temp, Passed: true}
		for _, crit := range criteria {
			perParam, ok := b[crit.ID]
			if !ok {
				continue
			}
			cr := CriterionRollup{CriteriaID: crit.ID, RequirementName: crit.RequirementName, Passed: true}
			for _, label := range paramOrder(perParam) {
				sr := SParamRollup{Label: label, Passed: true, Results: perParam[label]}
				for _, r := range perParam[label] {
					if !r.Passed {
						sr.Passed = false
					}
				}
				if !sr.Passed {
					cr.Passed = false
				}
				cr.SParams = append(cr.SParams, sr)
			}
			if !cr.Passed {
				tr.Passed = false
			}
			tr.Criteria = append(tr.Criteria, cr)
			any = true
		}
		if !tr.Passed {
			rollup.Passed = false
		}
		rollup.Temperatures = append(rollup.Temperatures, tr)
	}
	if !any {
		rollup.Passed = false
	}
	return rollup
}

// paramOrder returns labels in sorted order so repeated aggregations
// render the same sequence.
func paramOrder(perParam map[string][]model.TestResult) []string {
	labels := make([]string, 0, len(perParam))
	for l := range perParam {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// #endregion
