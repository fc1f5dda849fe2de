package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fitglue/musclemap/pkg/domain/fit_parser"
)

func main() {
	tz := flag.String("tz", "UTC", "Time zone the activity is dated in")
	flag.Parse()
	if flag.NArg() < 1 {
		fmt.Println("Usage: fit-parse-test [-tz Europe/London] <fit-file>")
		os.Exit(1)
	}

	loc, err := time.LoadLocation(*tz)
	if err != nil {
		fmt.Printf("Invalid time zone: %v\n", err)
		os.Exit(1)
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Printf("Failed to read file: %v\n", err)
		os.Exit(1)
	}

	rec, err := fit_parser.ParseStrengthSets(data, loc)
	if err != nil {
		fmt.Printf("Failed to parse FIT file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Date: %s\n", rec.Date.Format("2006-01-02"))
	fmt.Printf("Sets: %d\n\n", len(rec.Sets))

	volume := make(map[string]float64)
	var order []string
	for i, s := range rec.Sets {
		fmt.Printf("Set %d: %s x%d\n", i+1, s.ExerciseID, s.Repetitions)
		if _, ok := volume[s.ExerciseID]; !ok {
			order = append(order, s.ExerciseID)
		}
		volume[s.ExerciseID] += s.Volume()
	}

	fmt.Println()
	for _, id := range order {
		fmt.Printf("%-24s %6.0f\n", id, volume[id])
	}
}
