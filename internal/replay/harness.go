package replay

// #region imports
import (
	"fmt"

	"github.com/macallanrf/rfcompliance/internal/model"
	"github.com/macallanrf/rfcompliance/internal/testtype"
)

// #endregion

// #region types

// Diff is one divergence between a fixture's expected outcome and the
// re-run evaluation.
type Diff struct {
	RequirementName string
	SParameter      string
	Expected        bool
	Got             bool
	// Missing is true when the pair produced no result at all this run.
	Missing bool
}

func (d Diff) String() string {
	if d.Missing {
		return fmt.Sprintf("%s/%s: expected result missing", d.RequirementName, d.SParameter)
	}
	return fmt.Sprintf("%s/%s: expected passed=%v, got passed=%v", d.RequirementName, d.SParameter, d.Expected, d.Got)
}

// Summary reports a replay run.
type Summary struct {
	Description string
	Results     []model.TestResult
	Warnings    []testtype.Warning
	Diffs       []Diff
}

// Clean reports whether the re-run matched every expected outcome.
func (s *Summary) Clean() bool { return len(s.Diffs) == 0 }

// #endregion types

// #region replay

// Replay re-runs a fixture through the registry's strategies entirely
// in memory and diffs pass/fail against the recorded outcomes.
func Replay(f *Fixture, registry *testtype.Registry) (*Summary, error) {
	dev, criteria, meas, err := f.ToModels()
	if err != nil {
		return nil, err
	}

	critByID := make(map[string]string, len(criteria))
	var results []model.TestResult
	var warnings []testtype.Warning

	for _, typeName := range dev.TestsPerformed {
		strat, err := registry.Get(typeName)
		if err != nil {
			return nil, err
		}
		var typed []model.TestCriteria
		for _, c := range criteria {
			if c.TestType == typeName {
				typed = append(typed, c)
				critByID[c.ID.String()] = c.RequirementName
			}
		}
		if len(typed) == 0 {
			continue
		}
		res, warns, err := strat.EvaluateCompliance(meas, dev, typed)
		if err != nil {
			return nil, fmt.Errorf("replay %s: %w", typeName, err)
		}
		results = append(results, res...)
		warnings = append(warnings, warns...)
	}

	summary := &Summary{Description: f.Description, Results: results, Warnings: warnings}

	// Index the re-run by (requirement, parameter); multiple results for
	// the pair (oob windows) AND together, matching the criterion roll-up.
	type key struct{ req, param string }
	got := map[key]bool{}
	seen := map[key]bool{}
	for _, r := range results {
		k := key{critByID[r.CriteriaID.String()], r.SParameter}
		if !seen[k] {
			seen[k] = true
			got[k] = r.Passed
		} else {
			got[k] = got[k] && r.Passed
		}
	}

	for _, exp := range f.ExpectedOutcomes {
		k := key{exp.RequirementName, exp.SParameter}
		if !seen[k] {
			summary.Diffs = append(summary.Diffs, Diff{
				RequirementName: exp.RequirementName,
				SParameter:      exp.SParameter,
				Expected:        exp.Passed,
				Missing:         true,
			})
			continue
		}
		if got[k] != exp.Passed {
			summary.Diffs = append(summary.Diffs, Diff{
				RequirementName: exp.RequirementName,
				SParameter:      exp.SParameter,
				Expected:        exp.Passed,
				Got:             got[k],
			})
		}
	}
	return summary, nil
}

// #endregion replay
