// compliance evaluates every loaded measurement for a device against
// one test stage's criteria and prints the Temperature → Criterion →
// S-parameter roll-up.
package main

// #region imports
import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/macallanrf/rfcompliance/internal/model"
	"github.com/macallanrf/rfcompliance/internal/orchestrator"
	"github.com/macallanrf/rfcompliance/internal/store"
	"github.com/macallanrf/rfcompliance/internal/testtype"
)

// #endregion

// #region main

func main() {
	dbPath := flag.String("db", envOr("COMPLIANCE_DB", "compliance.db"), "path to compliance.db")
	part := flag.String("part", "", "device part number (Lnnnnnn)")
	stage := flag.String("stage", "", "test stage, e.g. SIT")
	testType := flag.String("type", testtype.TestTypeSParameters, "test type identifier")
	workers := flag.Int("workers", envIntOr("COMPLIANCE_WORKERS", 4), "measurement evaluation workers")
	timeout := flag.Duration("timeout", 2*time.Minute, "batch evaluation timeout")
	flag.Parse()

	if *part == "" || *stage == "" {
		fmt.Fprintln(os.Stderr, "usage: compliance --part L123456 --stage SIT [--db compliance.db] [--type S-Parameters]")
		os.Exit(2)
	}

	st, err := store.NewStore(*dbPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	dev, err := st.DeviceByPartNumber(*part)
	if err != nil {
		log.Fatalf("device %s not found: %v", *part, err)
	}

	orch := orchestrator.NewOrchestrator(testtype.DefaultRegistry(), st, st, st, st, *workers)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	results, err := orch.EvaluateAllMeasurements(ctx, dev.ID, *testType, *stage)
	var noCriteria *orchestrator.NoCriteriaDefinedError
	if errors.As(err, &noCriteria) {
		fmt.Printf("No criteria defined for %s / %s / stage %s: nothing to evaluate.\n", *part, *testType, *stage)
		return
	}
	if err != nil {
		log.Fatalf("evaluation failed: %v", err)
	}

	measurements, err := st.MeasurementsForDevice(dev.ID)
	if err != nil {
		log.Fatalf("failed to list measurements: %v", err)
	}
	criteria, err := st.CriteriaFor(dev.ID, *testType, *stage)
	if err != nil {
		log.Fatalf("failed to list criteria: %v", err)
	}

	printRollup(orchestrator.Aggregate(measurements, results, criteria))
	printMeasurementStatuses(orch, measurements, results)
}

// #endregion

// #region output

func printRollup(r orchestrator.DeviceRollup) {
	fmt.Printf("Device compliance: %s\n", passLabel(r.Passed))
	for _, tr := range r.Temperatures {
		fmt.Printf("  %-5s %s\n", tr.Temperature, passLabel(tr.Passed))
		for _, cr := range tr.Criteria {
			fmt.Printf("    %-20s %s\n", cr.RequirementName, passLabel(cr.Passed))
			for _, sr := range cr.SParams {
				for _, res := range sr.Results {
					fmt.Printf("      %-6s %s  measured=%s\n", sr.Label, passLabel(res.Passed), formatMeasured(res))
				}
			}
		}
	}
}

func printMeasurementStatuses(orch *orchestrator.Orchestrator, measurements []model.Measurement, results map[uuid.UUID][]model.TestResult) {
	fmt.Println("Per measurement:")
	for _, m := range measurements {
		if _, ok := results[m.ID]; !ok {
			continue
		}
		status, err := orch.OverallPassStatus(m.ID)
		if err != nil {
			log.Printf("[CLI] status for %s: %v", m.SerialNumber, err)
			continue
		}
		fmt.Printf("  %-10s %-4s %-8s %s\n", m.SerialNumber, m.Temperature, m.PathLabel(), statusLabel(status))
	}
}

func statusLabel(s orchestrator.PassStatus) string {
	switch s {
	case orchestrator.StatusPass:
		return "PASS"
	case orchestrator.StatusFail:
		return "FAIL"
	default:
		return "NO DATA"
	}
}

func passLabel(passed bool) string {
	if passed {
		return "PASS"
	}
	return "FAIL"
}

func formatMeasured(r model.TestResult) string {
	if r.MeasuredMin != nil && r.MeasuredMax != nil {
		return fmt.Sprintf("%.2f to %.2f", *r.MeasuredMin, *r.MeasuredMax)
	}
	if r.OOBWindow != nil {
		return fmt.Sprintf("%.2f dBc in [%.3f, %.3f] GHz", r.MeasuredValue, r.OOBWindow.FreqMin, r.OOBWindow.FreqMax)
	}
	return fmt.Sprintf("%.2f", r.MeasuredValue)
}

// #endregion

// #region env-helpers

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// #endregion
