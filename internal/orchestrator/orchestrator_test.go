package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/macallanrf/rfcompliance/internal/model"
	"github.com/macallanrf/rfcompliance/internal/rfnet"
	"github.com/macallanrf/rfcompliance/internal/testtype"
)

// #region fakes

type fakeDevices struct {
	devices map[uuid.UUID]*model.Device
}

func (f *fakeDevices) DeviceByID(id uuid.UUID) (*model.Device, error) {
	d, ok := f.devices[id]
	if !ok {
		return nil, fmt.Errorf("device %s not found", id)
	}
	return d, nil
}

type fakeCriteria struct {
	list []model.TestCriteria
}

func (f *fakeCriteria) CriteriaFor(deviceID uuid.UUID, testType, testStage string) ([]model.TestCriteria, error) {
	var out []model.TestCriteria
	for _, c := range f.list {
		if c.DeviceID == deviceID && c.TestType == testType && c.TestStage == testStage {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeMeasurements struct {
	list []model.Measurement
}

func (f *fakeMeasurements) MeasurementsForDevice(deviceID uuid.UUID) ([]model.Measurement, error) {
	var out []model.Measurement
	for _, m := range f.list {
		if m.DeviceID == deviceID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeResults struct {
	mu    sync.Mutex
	saved map[uuid.UUID][]model.TestResult
}

func newFakeResults() *fakeResults {
	return &fakeResults{saved: map[uuid.UUID][]model.TestResult{}}
}

func (f *fakeResults) SaveResults(measurementID uuid.UUID, results []model.TestResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved[measurementID] = append(f.saved[measurementID], results...)
	return nil
}

func (f *fakeResults) MarkStaleByCriteria(criteriaID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for id, results := range f.saved {
		for i := range results {
			if results[i].CriteriaID == criteriaID && !results[i].Stale {
				results[i].Stale = true
				n++
			}
		}
		f.saved[id] = results
	}
	return n, nil
}

func (f *fakeResults) ResultsForMeasurement(measurementID uuid.UUID) ([]model.TestResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saved[measurementID], nil
}

// #endregion

// #region fixtures

func buildDevice() *model.Device {
	return &model.Device{
		ID:                 uuid.New(),
		Name:               "Downconverter",
		PartNumber:         "L123456",
		OperationalFreqMin: 1.0,
		OperationalFreqMax: 2.0,
		WidebandFreqMin:    0.5,
		WidebandFreqMax:    4.0,
		TestsPerformed:     []string{testtype.TestTypeSParameters},
		InputPorts:         []int{1},
		OutputPorts:        []int{2},
	}
}

func buildNetwork(t *testing.T, s21dB []float64) *rfnet.Network {
	t.Helper()
	freqs := []float64{1.0, 1.5, 2.0}
	s := make([][][]complex128, len(freqs))
	for i := range freqs {
		mag := math.Pow(10, s21dB[i]/20)
		s[i] = [][]complex128{
			{complex(0.1, 0), 0},
			{complex(mag, 0), complex(0.1, 0)},
		}
	}
	net, err := rfnet.NewNetwork(freqs, s)
	require.NoError(t, err)
	return net
}

func buildMeasurement(t *testing.T, dev *model.Device, serial string, temp model.Temperature, s21dB []float64) model.Measurement {
	t.Helper()
	return model.Measurement{
		ID:           uuid.New(),
		DeviceID:     dev.ID,
		SerialNumber: serial,
		TestType:     testtype.TestTypeSParameters,
		Temperature:  temp,
		Path:         model.PathPrimary,
		Network:      buildNetwork(t, s21dB),
	}
}

func buildCriterion(dev *model.Device, stage string) model.TestCriteria {
	return model.TestCriteria{
		ID:              uuid.New(),
		DeviceID:        dev.ID,
		TestType:        testtype.TestTypeSParameters,
		TestStage:       stage,
		RequirementName: "Gain Range",
		Mode:            model.ModeRange,
		MinValue:        27.5,
		MaxValue:        31.3,
		Unit:            "dB",
	}
}

func buildOrchestrator(dev *model.Device, criteria []model.TestCriteria, measurements []model.Measurement, results *fakeResults, workers int) *Orchestrator {
	return NewOrchestrator(
		testtype.DefaultRegistry(),
		&fakeDevices{devices: map[uuid.UUID]*model.Device{dev.ID: dev}},
		&fakeCriteria{list: criteria},
		&fakeMeasurements{list: measurements},
		results,
		workers,
	)
}

// #endregion

// #region evaluate-one

func TestEvaluateComplianceNoCriteria(t *testing.T) {
	dev := buildDevice()
	meas := buildMeasurement(t, dev, "SN-001", model.TempAmbient, []float64{28, 29, 28.5})
	o := buildOrchestrator(dev, nil, nil, newFakeResults(), 1)

	_, _, err := o.EvaluateCompliance(&meas, dev, "SIT")
	var noCriteria *NoCriteriaDefinedError
	require.ErrorAs(t, err, &noCriteria)
	require.Equal(t, dev.ID, noCriteria.DeviceID)
	require.Equal(t, "SIT", noCriteria.TestStage)
}

func TestEvaluateComplianceUnknownTestType(t *testing.T) {
	dev := buildDevice()
	dev.TestsPerformed = []string{"Noise-Figure"}
	meas := buildMeasurement(t, dev, "SN-001", model.TempAmbient, []float64{28, 29, 28.5})
	o := buildOrchestrator(dev, nil, nil, newFakeResults(), 1)

	_, _, err := o.EvaluateCompliance(&meas, dev, "SIT")
	var unknown *testtype.UnknownTestTypeError
	require.ErrorAs(t, err, &unknown)
}

func TestEvaluateComplianceStageScoping(t *testing.T) {
	dev := buildDevice()
	sit := buildCriterion(dev, "SIT")
	bbu := buildCriterion(dev, "Board-Bring-Up")
	bbu.MaxValue = 35.0
	meas := buildMeasurement(t, dev, "SN-001", model.TempAmbient, []float64{28, 32, 28.5})
	o := buildOrchestrator(dev, []model.TestCriteria{sit, bbu}, nil, newFakeResults(), 1)

	// The 32 dB sample fails the SIT bound but passes the looser
	// Board-Bring-Up one. Each stage sees only its own criteria.
	results, _, err := o.EvaluateCompliance(&meas, dev, "SIT")
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.False(t, results[0].Passed)

	results, _, err = o.EvaluateCompliance(&meas, dev, "Board-Bring-Up")
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.True(t, results[0].Passed)
}

// #endregion

// #region evaluate-all

func TestEvaluateAllMeasurements(t *testing.T) {
	dev := buildDevice()
	crit := buildCriterion(dev, "SIT")
	measurements := []model.Measurement{
		buildMeasurement(t, dev, "SN-001", model.TempAmbient, []float64{28, 29.5, 28.8}),
		buildMeasurement(t, dev, "SN-001", model.TempHot, []float64{28, 32, 28.8}),
		buildMeasurement(t, dev, "SN-001", model.TempCold, []float64{28, 29, 28.8}),
	}
	results := newFakeResults()
	o := buildOrchestrator(dev, []model.TestCriteria{crit}, measurements, results, 4)

	out, err := o.EvaluateAllMeasurements(context.Background(), dev.ID, testtype.TestTypeSParameters, "SIT")
	require.NoError(t, err)
	require.Len(t, out, 3)

	for _, m := range measurements {
		require.Len(t, out[m.ID], 1, "one gain result per measurement")
		saved, err := results.ResultsForMeasurement(m.ID)
		require.NoError(t, err)
		require.Len(t, saved, 1, "results must be persisted per measurement")
	}
	require.True(t, out[measurements[0].ID][0].Passed)
	require.False(t, out[measurements[1].ID][0].Passed, "HOT measurement has a 32 dB sample")
	require.True(t, out[measurements[2].ID][0].Passed)
}

func TestEvaluateAllMeasurementsFiltersTestType(t *testing.T) {
	dev := buildDevice()
	crit := buildCriterion(dev, "SIT")
	meas := buildMeasurement(t, dev, "SN-001", model.TempAmbient, []float64{28, 29, 28.5})
	other := buildMeasurement(t, dev, "SN-001", model.TempAmbient, []float64{28, 29, 28.5})
	other.TestType = "Noise-Figure"
	results := newFakeResults()
	o := buildOrchestrator(dev, []model.TestCriteria{crit}, []model.Measurement{meas, other}, results, 2)

	out, err := o.EvaluateAllMeasurements(context.Background(), dev.ID, testtype.TestTypeSParameters, "SIT")
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Contains(t, out, meas.ID)
}

func TestEvaluateAllMeasurementsNoCriteria(t *testing.T) {
	dev := buildDevice()
	meas := buildMeasurement(t, dev, "SN-001", model.TempAmbient, []float64{28, 29, 28.5})
	o := buildOrchestrator(dev, nil, []model.Measurement{meas}, newFakeResults(), 1)

	out, err := o.EvaluateAllMeasurements(context.Background(), dev.ID, testtype.TestTypeSParameters, "SIT")
	var noCriteria *NoCriteriaDefinedError
	require.ErrorAs(t, err, &noCriteria)
	require.Empty(t, out, "empty state, not a fault")
}

// #endregion

// #region staleness-and-status

func TestStalenessAndOverallStatus(t *testing.T) {
	dev := buildDevice()
	crit := buildCriterion(dev, "SIT")
	meas := buildMeasurement(t, dev, "SN-001", model.TempAmbient, []float64{28, 29.5, 28.8})
	results := newFakeResults()
	o := buildOrchestrator(dev, []model.TestCriteria{crit}, []model.Measurement{meas}, results, 1)

	// No results yet: no data, never a pass.
	status, err := o.OverallPassStatus(meas.ID)
	require.NoError(t, err)
	require.Equal(t, StatusNoData, status)

	_, err = o.EvaluateAllMeasurements(context.Background(), dev.ID, testtype.TestTypeSParameters, "SIT")
	require.NoError(t, err)

	status, err = o.OverallPassStatus(meas.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPass, status)

	// Editing the criterion stales its results; all-stale means no data.
	n, err := o.MarkResultsStaleForCriteria(crit.ID)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	status, err = o.OverallPassStatus(meas.ID)
	require.NoError(t, err)
	require.Equal(t, StatusNoData, status)
}

func TestOverallStatusFail(t *testing.T) {
	dev := buildDevice()
	crit := buildCriterion(dev, "SIT")
	meas := buildMeasurement(t, dev, "SN-001", model.TempAmbient, []float64{28, 32, 28.8})
	results := newFakeResults()
	o := buildOrchestrator(dev, []model.TestCriteria{crit}, []model.Measurement{meas}, results, 1)

	_, err := o.EvaluateAllMeasurements(context.Background(), dev.ID, testtype.TestTypeSParameters, "SIT")
	require.NoError(t, err)

	status, err := o.OverallPassStatus(meas.ID)
	require.NoError(t, err)
	require.Equal(t, StatusFail, status)
}

func TestEvaluateAllMeasurementsHonorsCancellation(t *testing.T) {
	dev := buildDevice()
	crit := buildCriterion(dev, "SIT")
	meas := buildMeasurement(t, dev, "SN-001", model.TempAmbient, []float64{28, 29, 28.5})
	results := newFakeResults()
	o := buildOrchestrator(dev, []model.TestCriteria{crit}, []model.Measurement{meas}, results, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.EvaluateAllMeasurements(ctx, dev.ID, testtype.TestTypeSParameters, "SIT")
	require.ErrorIs(t, err, context.Canceled)

	saved, err := results.ResultsForMeasurement(meas.ID)
	require.NoError(t, err)
	require.Empty(t, saved, "nothing evaluated after cancellation")
}

// #endregion

// #region errors

func TestEvaluateAllMeasurementsUnknownDevice(t *testing.T) {
	dev := buildDevice()
	o := buildOrchestrator(dev, nil, nil, newFakeResults(), 1)

	_, err := o.EvaluateAllMeasurements(context.Background(), uuid.New(), testtype.TestTypeSParameters, "SIT")
	require.Error(t, err)
	var noCriteria *NoCriteriaDefinedError
	require.False(t, errors.As(err, &noCriteria), "missing device is a fault, not empty state")
}

// #endregion
