package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/fitglue/musclemap/pkg/bootstrap"
	"github.com/fitglue/musclemap/pkg/domain/activity"
	"github.com/fitglue/musclemap/pkg/domain/aggregate"
	"github.com/fitglue/musclemap/pkg/domain/fit_parser"
	"github.com/fitglue/musclemap/pkg/domain/knowledge"
	"github.com/fitglue/musclemap/pkg/domain/muscle"
	"github.com/fitglue/musclemap/pkg/musclemap"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	garminFile := flag.String("garmin", "", "Path to a Garmin Connect activity list (JSON)")
	fitGlob := flag.String("fit", "", "Glob of strength FIT files, e.g. 'exports/*.fit'")
	startDate := flag.String("start", "", "First day to include (YYYY-MM-DD)")
	endDate := flag.String("end", "", "Last day to include (YYYY-MM-DD)")
	colorBlind := flag.Bool("colorblind", false, "Use the color-blind palette")
	tz := flag.String("tz", "Local", "Time zone FIT timestamps are dated in")
	outDir := flag.String("out", ".", "Directory for heatmap.png and radial.json")
	width := flag.Int("width", 0, "Heat map width in pixels (0 for the default)")
	nonInteractive := flag.Bool("non-interactive", false, "Record unknown exercises as undefined instead of prompting")
	kbStore := flag.String("kb-store", "", "Knowledge store override: file, gcs, firestore or sqlite")
	kbPath := flag.String("kb", "", "Knowledge file or SQLite path override")
	geometryPath := flag.String("geometry", "", "Geometry file or gs:// URI override")
	fontPath := flag.String("font", "", "TrueType font for captions")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := bootstrap.LoadConfig()
	override(&cfg.KnowledgeStore, strings.ToLower(*kbStore))
	override(&cfg.KnowledgePath, *kbPath)
	override(&cfg.GeometryPath, *geometryPath)
	override(&cfg.FontPath, *fontPath)

	logger := bootstrap.NewLogger("musclemap-cli")
	svc, err := bootstrap.NewServiceWithConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer svc.Close()

	var elicitor knowledge.Elicitor = knowledge.NewConsoleElicitor(os.Stdin, os.Stdout)
	if *nonInteractive {
		elicitor = knowledge.FallbackElicitor{}
	}
	kb := knowledge.New(svc.Knowledge, elicitor, knowledge.WithLogger(logger.With("component", "knowledge")))
	if err := kb.Load(ctx); err != nil {
		return fmt.Errorf("refusing to continue without the knowledge base: %w", err)
	}

	geo, err := svc.LoadGeometry(ctx)
	if err != nil {
		return fmt.Errorf("failed to load geometry: %w", err)
	}
	face, err := svc.LoadFace()
	if err != nil {
		return fmt.Errorf("failed to load font: %w", err)
	}

	req := musclemap.Request{ColorBlind: *colorBlind}
	if *startDate != "" || *endDate != "" {
		r, err := activity.ParseDateRange(*startDate, *endDate)
		if err != nil {
			return fmt.Errorf("invalid date range: %w", err)
		}
		req.Range = &r
	}

	req.Records, err = readRecords(*garminFile, *fitGlob, *tz)
	if err != nil {
		return fmt.Errorf("failed to read activities: %w", err)
	}

	engine := &musclemap.Engine{Knowledge: kb, Geometry: geo, Face: face, Width: *width, Logger: logger}
	res, err := engine.Render(ctx, req)
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %v\n", w)
	}

	heatMapPath, radialPath, err := writeOutputs(*outDir, res)
	if err != nil {
		return err
	}

	printSummary(res)
	fmt.Printf("\nWrote %s and %s\n", heatMapPath, radialPath)
	return nil
}

func writeOutputs(dir string, res *musclemap.Result) (heatMapPath, radialPath string, err error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", fmt.Errorf("failed to create output directory: %w", err)
	}
	heatMapPath = filepath.Join(dir, "heatmap.png")
	if err := os.WriteFile(heatMapPath, res.HeatMap, 0644); err != nil {
		return "", "", fmt.Errorf("failed to write heat map: %w", err)
	}
	radial, err := json.MarshalIndent(res.Radial, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("failed to encode radial chart: %w", err)
	}
	radialPath = filepath.Join(dir, "radial.json")
	if err := os.WriteFile(radialPath, radial, 0644); err != nil {
		return "", "", fmt.Errorf("failed to write radial chart: %w", err)
	}
	return heatMapPath, radialPath, nil
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// readRecords returns nil when no source flag was given so the output is
// captioned as missing data rather than an empty period.
func readRecords(garminFile, fitGlob, tz string) ([]activity.Record, error) {
	if garminFile == "" && fitGlob == "" {
		return nil, nil
	}
	records := []activity.Record{}

	if garminFile != "" {
		data, err := os.ReadFile(garminFile)
		if err != nil {
			return nil, err
		}
		recs, stats, err := activity.DecodeGarminJSON(data)
		if err != nil {
			return nil, err
		}
		fmt.Printf("Garmin: %d activities, %d kept (%d bad timestamps, %d without sets, %d set counts defaulted)\n",
			stats.Total, stats.Kept, stats.BadTimestamp, stats.NoSets, stats.DefaultedSets)
		records = append(records, recs...)
	}

	if fitGlob != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("time zone %q: %w", tz, err)
		}
		paths, err := filepath.Glob(fitGlob)
		if err != nil {
			return nil, err
		}
		for _, p := range paths {
			data, err := os.ReadFile(p)
			if err != nil {
				return nil, err
			}
			rec, err := fit_parser.ParseStrengthSets(data, loc)
			if err != nil {
				fmt.Fprintf(os.Stderr, "skipping %s: %v\n", p, err)
				continue
			}
			records = append(records, *rec)
		}
		fmt.Printf("FIT: %d files matched\n", len(paths))
	}
	return records, nil
}

func printSummary(res *musclemap.Result) {
	p := message.NewPrinter(language.English)
	if res.NoData {
		fmt.Println(strings.ReplaceAll(res.Radial.Caption, "\n", " "))
		return
	}

	type row struct {
		group  muscle.Group
		volume aggregate.Volume
	}
	var rows []row
	for g, v := range res.Volumes {
		if v.Active() {
			rows = append(rows, row{g, v})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].volume.Total() != rows[j].volume.Total() {
			return rows[i].volume.Total() > rows[j].volume.Total()
		}
		return rows[i].group < rows[j].group
	})

	p.Printf("%d records, palette %s\n\n", res.Records, res.Palette)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MUSCLE\tPRIMARY\tSECONDARY\tINTENSITY")
	for _, r := range rows {
		in := res.Intensities[r.group]
		fmt.Fprintln(w, p.Sprintf("%s\t%.1f\t%.1f\t%s %.0f%%",
			r.group, r.volume.Primary, r.volume.Secondary, in.Class, 100*max(in.Primary, in.Secondary)))
	}
	w.Flush()
}
