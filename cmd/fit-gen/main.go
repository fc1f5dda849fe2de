package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/fitglue/musclemap/pkg/domain/activity"
	"github.com/fitglue/musclemap/pkg/domain/fit_parser"
)

func main() {
	inputFile := flag.String("input", "", "Path to input JSON file (a Garmin Connect activity list)")
	outputDir := flag.String("output", ".", "Directory for the generated FIT files")
	flag.Parse()

	if *inputFile == "" {
		flag.Usage()
		os.Exit(1)
	}

	// 1. Read JSON
	data, err := os.ReadFile(*inputFile)
	if err != nil {
		log.Fatalf("Failed to read input file: %v", err)
	}

	// 2. Normalize to records
	records, stats, err := activity.DecodeGarminJSON(data)
	if err != nil {
		var direct []activity.Record
		if jerr := json.Unmarshal(data, &direct); jerr != nil {
			log.Fatalf("Failed to parse JSON: %v", err)
		}
		records = direct
	} else {
		fmt.Printf("Decoded %d of %d activities\n", stats.Kept, stats.Total)
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	// 3. Generate one FIT file per record
	for i, rec := range records {
		fitData, err := fit_parser.EncodeRecord(rec)
		if err != nil {
			log.Fatalf("Failed to generate FIT file for record %d: %v", i, err)
		}
		name := fmt.Sprintf("strength_%s_%02d.fit", rec.Date.Format("20060102"), i)
		path := filepath.Join(*outputDir, name)
		if err := os.WriteFile(path, fitData, 0644); err != nil {
			log.Fatalf("Failed to write output file: %v", err)
		}
		fmt.Printf("Wrote %s (%d sets, %d bytes)\n", path, len(rec.Sets), len(fitData))
	}
}
