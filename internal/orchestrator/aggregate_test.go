package orchestrator

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/macallanrf/rfcompliance/internal/model"
)

func aggResult(measID, critID uuid.UUID, sparam string, passed, stale bool) model.TestResult {
	r := model.NewTestResult(measID, critID, sparam, 29.0, passed)
	r.Stale = stale
	return r
}

func TestAggregateRollup(t *testing.T) {
	dev := buildDevice()
	gain := buildCriterion(dev, "SIT")
	oob := buildCriterion(dev, "SIT")
	oob.RequirementName = "OOB Rejection"

	amb := buildMeasurement(t, dev, "SN-001", model.TempAmbient, []float64{28, 29, 28.5})
	hot := buildMeasurement(t, dev, "SN-001", model.TempHot, []float64{28, 29, 28.5})

	results := map[uuid.UUID][]model.TestResult{
		amb.ID: {
			aggResult(amb.ID, gain.ID, "S21", true, false),
			aggResult(amb.ID, gain.ID, "S31", true, false),
			// Two windows for one parameter AND together.
			aggResult(amb.ID, oob.ID, "S21", true, false),
			aggResult(amb.ID, oob.ID, "S21", false, false),
		},
		hot.ID: {
			aggResult(hot.ID, gain.ID, "S21", true, false),
		},
	}

	rollup := Aggregate([]model.Measurement{amb, hot}, results, []model.TestCriteria{gain, oob})

	require.False(t, rollup.Passed, "OOB window failure must propagate to the top")
	require.Len(t, rollup.Temperatures, 2)

	// AMB precedes HOT regardless of map iteration order.
	require.Equal(t, model.TempAmbient, rollup.Temperatures[0].Temperature)
	require.Equal(t, model.TempHot, rollup.Temperatures[1].Temperature)

	ambRoll := rollup.Temperatures[0]
	require.False(t, ambRoll.Passed)
	require.Len(t, ambRoll.Criteria, 2)
	require.Equal(t, "Gain Range", ambRoll.Criteria[0].RequirementName)
	require.True(t, ambRoll.Criteria[0].Passed)
	require.Equal(t, "OOB Rejection", ambRoll.Criteria[1].RequirementName)
	require.False(t, ambRoll.Criteria[1].Passed)

	// S21's two window results collapse into one failed leaf.
	oobRoll := ambRoll.Criteria[1]
	require.Len(t, oobRoll.SParams, 1)
	require.Equal(t, "S21", oobRoll.SParams[0].Label)
	require.False(t, oobRoll.SParams[0].Passed)
	require.Len(t, oobRoll.SParams[0].Results, 2)

	// Parameters within a criterion render in sorted label order.
	gainRoll := ambRoll.Criteria[0]
	require.Len(t, gainRoll.SParams, 2)
	require.Equal(t, "S21", gainRoll.SParams[0].Label)
	require.Equal(t, "S31", gainRoll.SParams[1].Label)

	require.True(t, rollup.Temperatures[1].Passed, "HOT has only passing results")
}

func TestAggregateExcludesStale(t *testing.T) {
	dev := buildDevice()
	gain := buildCriterion(dev, "SIT")
	amb := buildMeasurement(t, dev, "SN-001", model.TempAmbient, []float64{28, 29, 28.5})

	results := map[uuid.UUID][]model.TestResult{
		amb.ID: {
			aggResult(amb.ID, gain.ID, "S21", false, true),
			aggResult(amb.ID, gain.ID, "S31", true, false),
		},
	}

	rollup := Aggregate([]model.Measurement{amb}, results, []model.TestCriteria{gain})

	require.True(t, rollup.Passed, "the stale failure is excluded")
	require.Len(t, rollup.Temperatures, 1)
	require.Len(t, rollup.Temperatures[0].Criteria[0].SParams, 1)
	require.Equal(t, "S31", rollup.Temperatures[0].Criteria[0].SParams[0].Label)
}

func TestAggregateEmptyNeverPasses(t *testing.T) {
	dev := buildDevice()
	gain := buildCriterion(dev, "SIT")
	amb := buildMeasurement(t, dev, "SN-001", model.TempAmbient, []float64{28, 29, 28.5})

	rollup := Aggregate([]model.Measurement{amb}, map[uuid.UUID][]model.TestResult{}, []model.TestCriteria{gain})
	require.False(t, rollup.Passed)
	require.Empty(t, rollup.Temperatures)

	// All-stale behaves the same as no results.
	results := map[uuid.UUID][]model.TestResult{
		amb.ID: {aggResult(amb.ID, gain.ID, "S21", true, true)},
	}
	rollup = Aggregate([]model.Measurement{amb}, results, []model.TestCriteria{gain})
	require.False(t, rollup.Passed)
}
