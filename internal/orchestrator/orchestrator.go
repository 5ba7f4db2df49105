// Package orchestrator drives compliance evaluation across the full
// cross-product of loaded measurements, applicable criteria and test
// stages, persists the outcomes, and rolls pass/fail up to measurement
// and device level.
package orchestrator

// #region imports
import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/macallanrf/rfcompliance/internal/model"
	"github.com/macallanrf/rfcompliance/internal/testtype"
)

// #endregion

// #region orchestrator-struct

// Orchestrator is the top-level coordinator for criteria lookup,
// strategy dispatch, result persistence and staleness tracking.
type Orchestrator struct {
	registry     *testtype.Registry
	devices      DeviceSource
	criteria     CriteriaSource
	measurements MeasurementSource
	results      ResultStore
	// workers bounds the measurement batch; per-measurement evaluation
	// shares no mutable state, so the batch is embarrassingly parallel.
	workers int
}

// NewOrchestrator wires an orchestrator. workers ≤ 0 falls back to
// serial evaluation.
func NewOrchestrator(registry *testtype.Registry, devices DeviceSource, criteria CriteriaSource, measurements MeasurementSource, results ResultStore, workers int) *Orchestrator {
	if workers <= 0 {
		workers = 1
	}
	return &Orchestrator{
		registry:     registry,
		devices:      devices,
		criteria:     criteria,
		measurements: measurements,
		results:      results,
		workers:      workers,
	}
}

// #endregion

// #region evaluate-one

// EvaluateCompliance evaluates one measurement against the criteria of
// every test type the device has enabled, for the given stage. Results
// follow the criteria source's order. An empty criteria set across all
// enabled types returns a NoCriteriaDefinedError signal, which batch
// callers treat as empty state rather than a fault. Registry lookup
// failures are configuration errors and propagate unmodified.
func (o *Orchestrator) EvaluateCompliance(meas *model.Measurement, dev *model.Device, testStage string) ([]model.TestResult, []testtype.Warning, error) {
	var results []model.TestResult
	var warnings []testtype.Warning
	total := 0

	for _, typeName := range dev.TestsPerformed {
		strat, err := o.registry.Get(typeName)
		if err != nil {
			return nil, nil, err
		}
		criteria, err := o.criteria.CriteriaFor(dev.ID, typeName, testStage)
		if err != nil {
			return nil, nil, fmt.Errorf("criteria lookup for %s/%s: %w", typeName, testStage, err)
		}
		total += len(criteria)
		if len(criteria) == 0 {
			continue
		}
		res, warns, err := strat.EvaluateCompliance(meas, dev, criteria)
		if err != nil {
			return nil, nil, fmt.Errorf("evaluate %s: %w", typeName, err)
		}
		results = append(results, res...)
		warnings = append(warnings, warns...)
	}

	if total == 0 {
		return nil, nil, &NoCriteriaDefinedError{DeviceID: dev.ID, TestType: meas.TestType, TestStage: testStage}
	}

	for _, w := range warnings {
		log.Printf("[ORCH] %s", w)
	}
	return results, warnings, nil
}

// #endregion

// #region evaluate-all

// EvaluateAllMeasurements evaluates every loaded measurement of the
// given test type for a device against one stage's criteria, saving
// each measurement's results in its own transaction. Measurements are
// retrieved regardless of the stage they were loaded under, so
// switching stage re-evaluates previously loaded data without
// re-loading files. No ordering holds across measurements; within one
// measurement the criteria order is reproduced exactly.
func (o *Orchestrator) EvaluateAllMeasurements(ctx context.Context, deviceID uuid.UUID, testType, testStage string) (map[uuid.UUID][]model.TestResult, error) {
	dev, err := o.devices.DeviceByID(deviceID)
	if err != nil {
		return nil, fmt.Errorf("device lookup: %w", err)
	}
	strat, err := o.registry.Get(testType)
	if err != nil {
		return nil, err
	}

	criteria, err := o.criteria.CriteriaFor(deviceID, testType, testStage)
	if err != nil {
		return nil, fmt.Errorf("criteria lookup: %w", err)
	}
	if len(criteria) == 0 {
		return map[uuid.UUID][]model.TestResult{}, &NoCriteriaDefinedError{DeviceID: deviceID, TestType: testType, TestStage: testStage}
	}

	all, err := o.measurements.MeasurementsForDevice(deviceID)
	if err != nil {
		return nil, fmt.Errorf("measurement lookup: %w", err)
	}
	var batch []model.Measurement
	for _, m := range all {
		if m.TestType == testType {
			batch = append(batch, m)
		}
	}

	out := make(map[uuid.UUID][]model.TestResult, len(batch))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i := range batch {
		meas := &batch[i]
		g.Go(func() error {
			// Per-measurement evaluation is not interruptible; check
			// before starting so a timeout stops the batch between
			// measurements.
			if err := ctx.Err(); err != nil {
				return err
			}
			results, warns, err := strat.EvaluateCompliance(meas, dev, criteria)
			if err != nil {
				return fmt.Errorf("measurement %s: %w", meas.SerialNumber, err)
			}
			for _, w := range warns {
				log.Printf("[ORCH] %s %s/%s: %s", meas.SerialNumber, meas.Temperature, meas.PathLabel(), w)
			}
			if err := o.results.SaveResults(meas.ID, results); err != nil {
				return fmt.Errorf("save results for %s: %w", meas.SerialNumber, err)
			}
			mu.Lock()
			out[meas.ID] = results
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Printf("[ORCH] evaluated %d measurements for device %s (%s, stage %s)", len(batch), dev.PartNumber, testType, testStage)
	return out, nil
}

// #endregion

// #region staleness

// MarkResultsStaleForCriteria flags every stored result referencing the
// criterion as stale. Nothing is deleted or recomputed: the prior value
// stays queryable until a re-evaluation supersedes it.
func (o *Orchestrator) MarkResultsStaleForCriteria(criteriaID uuid.UUID) (int, error) {
	n, err := o.results.MarkStaleByCriteria(criteriaID)
	if err != nil {
		return 0, fmt.Errorf("mark stale for criteria %s: %w", criteriaID, err)
	}
	log.Printf("[ORCH] marked %d results stale for criteria %s", n, criteriaID)
	return n, nil
}

// #endregion

// #region pass-status

// OverallPassStatus ANDs every non-stale result for a measurement.
// An empty result set is StatusNoData, never StatusPass.
func (o *Orchestrator) OverallPassStatus(measurementID uuid.UUID) (PassStatus, error) {
	results, err := o.results.ResultsForMeasurement(measurementID)
	if err != nil {
		return StatusNoData, fmt.Errorf("results for %s: %w", measurementID, err)
	}
	fresh := 0
	for _, r := range results {
		if r.Stale {
			continue
		}
		fresh++
		if !r.Passed {
			return StatusFail, nil
		}
	}
	if fresh == 0 {
		return StatusNoData, nil
	}
	return StatusPass, nil
}

// #endregion
