package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/paulmach/orb"

	"github.com/fitglue/musclemap/pkg/domain/geometry"
	"github.com/fitglue/musclemap/pkg/domain/muscle"
)

func main() {
	inputFile := flag.String("input", "", "Path to a muscle coordinates JSON file (default: bundled geometry)")
	verbose := flag.Bool("v", false, "Print the bounds of every polygon")
	flag.Parse()

	var (
		geo *geometry.Geometry
		err error
	)
	if *inputFile == "" {
		geo, err = geometry.Default()
	} else {
		geo, err = geometry.LoadFile(*inputFile)
	}
	if err != nil {
		log.Fatalf("Failed to load geometry: %v", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GROUP\tPOLYGONS\tPOINTS\tMIN X\tMIN Y\tMAX X\tMAX Y")
	missing := 0
	for _, g := range muscle.Active() {
		polys := geo.Polygons(g)
		if len(polys) == 0 {
			missing++
			fmt.Fprintf(w, "%s\t0\t0\t-\t-\t-\t-\n", g)
			continue
		}
		points := 0
		var bound orb.Bound
		for i, p := range polys {
			points += len(p.Ring)
			if i == 0 {
				bound = p.Ring.Bound()
			} else {
				bound = bound.Union(p.Ring.Bound())
			}
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%.1f\t%.1f\t%.1f\t%.1f\n",
			g, len(polys), points, bound.Min.X(), bound.Min.Y(), bound.Max.X(), bound.Max.Y())
		if *verbose {
			for i, p := range polys {
				b := p.Ring.Bound()
				fmt.Fprintf(w, "  #%d\t\t%d\t%.1f\t%.1f\t%.1f\t%.1f\n", i, len(p.Ring), b.Min.X(), b.Min.Y(), b.Max.X(), b.Max.Y())
			}
		}
	}
	w.Flush()

	b := geo.Bound()
	fmt.Printf("\nCanvas bounds: (%.1f, %.1f) - (%.1f, %.1f)\n", b.Min.X(), b.Min.Y(), b.Max.X(), b.Max.Y())
	fmt.Printf("Groups with geometry: %d/%d\n", len(muscle.Active())-missing, len(muscle.Active()))
	fmt.Printf("Degenerate paths dropped: %d\n", geo.Dropped())
	if skipped := geo.Skipped(); len(skipped) > 0 {
		fmt.Printf("Unknown keys skipped: %v\n", skipped)
	}
}
