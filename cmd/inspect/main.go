// inspect prints stored measurements and their result logs for a
// device, stale rows included, as a table or JSON.
package main

// #region imports
import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/macallanrf/rfcompliance/internal/model"
	"github.com/macallanrf/rfcompliance/internal/store"
)

// #endregion

// #region main

func main() {
	dbPath := flag.String("db", "", "path to compliance.db")
	part := flag.String("part", "", "device part number (Lnnnnnn)")
	showResults := flag.Bool("results", false, "print the result log per measurement")
	staleOnly := flag.Bool("stale", false, "only show stale results (implies --results)")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" || *part == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/compliance.db --part L123456 [--results] [--stale] [--json]")
		os.Exit(2)
	}
	if *staleOnly {
		*showResults = true
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

	measurements, err := st.MeasurementsForDevice(dev.ID)
	if err != nil {
		log.Fatalf("failed to list measurements: %v", err)
	}

	if *jsonOut {
		printJSON(st, measurements, *showResults, *staleOnly)
		return
	}

	fmt.Printf("Device %s (%s): %d measurement(s)\n", dev.PartNumber, dev.Name, len(measurements))
	for _, m := range measurements {
		fmt.Printf("  %-10s %-4s %-8s %s  points=%d ports=%d\n",
			m.SerialNumber, m.Temperature, m.PathLabel(), m.TestType, m.Network.Points(), m.Network.NPorts())
		if !*showResults {
			continue
		}
		results, err := st.ResultsForMeasurement(m.ID)
		if err != nil {
			log.Fatalf("failed to list results for %s: %v", m.SerialNumber, err)
		}
		for _, r := range results {
			if *staleOnly && !r.Stale {
				continue
			}
			fmt.Printf("    %-6s value=%-10.3f passed=%-5v stale=%-5v %s\n",
				r.SParameter, r.MeasuredValue, r.Passed, r.Stale, r.CreatedAt.Format("2006-01-02 15:04:05"))
		}
	}
}

// #endregion

// #region json-output

type measurementJSON struct {
	SerialNumber string             `json:"serial_number"`
	Temperature  string             `json:"temperature"`
	Path         string             `json:"path"`
	TestType     string             `json:"test_type"`
	Results      []model.TestResult `json:"results,omitempty"`
}

func printJSON(st *store.Store, measurements []model.Measurement, showResults, staleOnly bool) {
	var out []measurementJSON
	for _, m := range measurements {
		mj := measurementJSON{
			SerialNumber: m.SerialNumber,
			Temperature:  string(m.Temperature),
			Path:         m.PathLabel(),
			TestType:     m.TestType,
		}
		if showResults {
			results, err := st.ResultsForMeasurement(m.ID)
			if err != nil {
				log.Fatalf("failed to list results for %s: %v", m.SerialNumber, err)
			}
			for _, r := range results {
				if staleOnly && !r.Stale {
					continue
				}
				mj.Results = append(mj.Results, r)
			}
		}
		out = append(out, mj)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatalf("encode: %v", err)
	}
}

// #endregion
