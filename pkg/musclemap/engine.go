package musclemap

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/image/font"

	"github.com/fitglue/musclemap/pkg/domain/activity"
	"github.com/fitglue/musclemap/pkg/domain/aggregate"
	"github.com/fitglue/musclemap/pkg/domain/geometry"
	"github.com/fitglue/musclemap/pkg/domain/intensity"
	"github.com/fitglue/musclemap/pkg/domain/render"
)

// KnowledgeBase resolves exercises and writes back anything left unsaved.
type KnowledgeBase interface {
	aggregate.Resolver
	Flush(ctx context.Context) error
}

// Request is one render: activity records, an optional inclusive day range
// and the color mode. A nil Records means no activity source was supplied at
// all, which captions the output differently from an empty range.
type Request struct {
	Records    []activity.Record
	Range      *activity.DateRange
	ColorBlind bool
}

// Result holds both artifacts plus the intermediate numbers behind them.
type Result struct {
	HeatMap     []byte
	Radial      render.RadialChart
	Volumes     aggregate.Volumes
	Intensities intensity.Intensities
	Palette     string
	// Records is how many records contributed after filtering.
	Records int
	// NoData is set when nothing was aggregated.
	NoData bool
	// Warnings are knowledge base write failures. The artifacts are complete
	// but newly learned mappings may not be durable.
	Warnings []error
}

// Engine runs the filter, aggregate, normalize and render pipeline.
type Engine struct {
	Knowledge KnowledgeBase
	Geometry  *geometry.Geometry
	Logger    *slog.Logger
	// Face and Width are passed to the heat map; zero values use its defaults.
	Face  font.Face
	Width int
}

// Render produces the heat map and radial chart for req. Empty input renders
// the "no data" artifacts rather than failing. The knowledge base is always
// flushed before returning.
func (e *Engine) Render(ctx context.Context, req Request) (res *Result, err error) {
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var warnings []error
	defer func() {
		if ferr := e.Knowledge.Flush(ctx); ferr != nil {
			logger.Warn("Knowledge base flush failed", "error", ferr)
			if res != nil {
				res.Warnings = append(res.Warnings, ferr)
			}
		}
	}()

	if e.Geometry == nil {
		return nil, fmt.Errorf("cannot render heat map: %w", geometry.ErrGeometryNotFound)
	}

	records := make([]activity.Record, 0, len(req.Records))
	for _, rec := range req.Records {
		if len(rec.Sets) == 0 {
			continue
		}
		if req.Range != nil && !req.Range.Contains(rec.Date) {
			continue
		}
		records = append(records, rec)
	}

	volumes, aggWarnings, err := aggregate.Aggregate(ctx, records, e.Knowledge)
	warnings = append(warnings, aggWarnings...)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate: %w", err)
	}
	for _, w := range aggWarnings {
		logger.Warn("Knowledge base persistence failed", "error", w)
	}

	noData := !volumes.Any()
	caption := ""
	if noData {
		caption = render.CaptionNoData
		if req.Records == nil {
			caption = render.CaptionNoSource
		}
	}

	palette := intensity.PaletteFor(req.ColorBlind)
	intensities := intensity.Normalize(volumes)

	heatMap, err := render.HeatMap(e.Geometry, intensities, palette, render.HeatMapOptions{
		Width:   e.Width,
		Caption: caption,
		Face:    e.Face,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render heat map: %w", err)
	}

	logger.Info("Rendered muscle map",
		"records", len(records),
		"input_records", len(req.Records),
		"palette", palette.Name,
		"no_data", noData,
		"warnings", len(warnings),
	)

	return &Result{
		HeatMap:     heatMap,
		Radial:      render.Radial(volumes, palette, caption),
		Volumes:     volumes,
		Intensities: intensities,
		Palette:     palette.Name,
		Records:     len(records),
		NoData:      noData,
		Warnings:    warnings,
	}, nil
}
