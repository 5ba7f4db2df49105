// seed-criteria loads device and criteria definitions from a YAML file
// into the compliance database.
package main

// #region imports
import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/macallanrf/rfcompliance/internal/config"
	"github.com/macallanrf/rfcompliance/internal/store"
)

// #endregion

// #region main

func main() {
	dbPath := flag.String("db", "", "path to compliance.db")
	cfgPath := flag.String("config", "", "path to device/criteria definitions YAML")
	flag.Parse()

	if *dbPath == "" || *cfgPath == "" {
		fmt.Fprintln(os.Stderr, "usage: seed-criteria --db path/to/compliance.db --config devices.yaml")
		os.Exit(2)
	}

	defs, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("failed to load definitions: %v", err)
	}

	st, err := store.NewStore(*dbPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	for _, dd := range defs.Devices {
		dev, criteria, err := dd.ToModels()
		if err != nil {
			log.Fatalf("invalid definition: %v", err)
		}
		if err := st.SaveDevice(dev); err != nil {
			log.Fatalf("failed to save device %s: %v", dev.PartNumber, err)
		}
		for i := range criteria {
			if err := st.SaveCriteria(&criteria[i]); err != nil {
				log.Fatalf("failed to save criteria %q: %v", criteria[i].RequirementName, err)
			}
		}
		log.Printf("[SEED] device %s (%s): %d criteria", dev.PartNumber, dev.Name, len(criteria))
	}

	fmt.Printf("Seeded %d device(s) into %s\n", len(defs.Devices), *dbPath)
}

// #endregion
