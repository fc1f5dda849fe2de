package render

import (
	"fmt"
	"image/color"

	"github.com/fitglue/musclemap/pkg/domain/aggregate"
	"github.com/fitglue/musclemap/pkg/domain/intensity"
	"github.com/fitglue/musclemap/pkg/domain/muscle"
)

// TickCount is the number of 20% steps on the radial axis.
const TickCount = 5

// Axis is one spoke of the radial chart.
type Axis struct {
	Label  string           `json:"label"`
	Muscle muscle.Bilateral `json:"muscle"`
	// Value is Raw normalized against the largest axis, floored at 1.
	Value float64 `json:"value"`
	// Raw is the combined left and right volume of both channels.
	Raw float64 `json:"raw"`
}

type Tick struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

// Style carries palette-consistent drawing hints for the chart front end.
type Style struct {
	FillColor string  `json:"fillColor"`
	LineColor string  `json:"lineColor"`
	GridColor string  `json:"gridColor"`
	LineWidth float64 `json:"lineWidth"`
}

// RadialChart is the symmetry-collapsed summary, one axis per bilateral
// muscle in muscle.RadialOrder.
type RadialChart struct {
	Axes    []Axis     `json:"axes"`
	Ticks   []Tick     `json:"ticks"`
	Range   [2]float64 `json:"range"`
	Style   Style      `json:"style"`
	Empty   bool       `json:"empty"`
	Caption string     `json:"caption,omitempty"`
}

var (
	emptyFill = color.NRGBA{R: 200, G: 200, B: 200, A: 51}
	emptyLine = color.NRGBA{R: 150, G: 150, B: 150, A: 128}
)

// Collapse sums primary and secondary volume of each left/right pair into
// one value per bilateral muscle. Undefined is dropped.
func Collapse(volumes aggregate.Volumes) map[muscle.Bilateral]float64 {
	out := make(map[muscle.Bilateral]float64, len(muscle.Bilaterals()))
	for _, b := range muscle.Bilaterals() {
		out[b] = 0
	}
	for g, v := range volumes {
		b, ok := g.Bilateral()
		if !ok {
			continue
		}
		out[b] += v.Total()
	}
	return out
}

// Ticks returns the fixed 0%..100% ticks.
func Ticks() []Tick {
	ticks := make([]Tick, 0, TickCount+1)
	for i := 0; i <= TickCount; i++ {
		ticks = append(ticks, Tick{
			Value: float64(i) / TickCount,
			Label: fmt.Sprintf("%d%%", i*100/TickCount),
		})
	}
	return ticks
}

// Radial builds the radial chart. When no group has volume the chart is
// flagged Empty, styled grey and carries caption.
func Radial(volumes aggregate.Volumes, p intensity.Palette, caption string) RadialChart {
	collapsed := Collapse(volumes)

	raws := make([]float64, 0, len(collapsed))
	for _, v := range collapsed {
		raws = append(raws, v)
	}
	peak := intensity.Max(raws...)

	chart := RadialChart{
		Axes:  make([]Axis, 0, len(muscle.RadialOrder)),
		Ticks: Ticks(),
		Range: [2]float64{0, 1},
		Empty: !volumes.Any(),
	}
	for _, b := range muscle.RadialOrder {
		raw := collapsed[b]
		chart.Axes = append(chart.Axes, Axis{
			Label:  b.Label(),
			Muscle: b,
			Value:  intensity.Clamp(raw / peak),
			Raw:    raw,
		})
	}

	if chart.Empty {
		chart.Caption = caption
		chart.Style = Style{
			FillColor: intensity.RGBA(emptyFill),
			LineColor: intensity.RGBA(emptyLine),
			GridColor: intensity.RGBA(emptyLine),
			LineWidth: 1,
		}
		return chart
	}
	chart.Style = Style{
		FillColor: intensity.RGBA(p.Primary.At(0.25)),
		LineColor: intensity.RGBA(p.Primary.At(1)),
		GridColor: intensity.RGBA(emptyLine),
		LineWidth: 2,
	}
	return chart
}
