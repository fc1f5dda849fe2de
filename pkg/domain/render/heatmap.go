package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"strings"

	"github.com/paulmach/orb"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/fitglue/musclemap/pkg/domain/geometry"
	"github.com/fitglue/musclemap/pkg/domain/intensity"
)

// Captions for the two "no data" cases.
const (
	CaptionNoSource = "Waiting for you to add\nyour personal fitness data"
	CaptionNoData   = "No data available\nin this period of time"
)

const (
	DefaultWidth        = 600
	DefaultMargin       = 0.05
	DefaultOutlineWidth = 1.0
)

// HeatMapOptions tune the raster output. Zero values pick the defaults.
type HeatMapOptions struct {
	// Width of the image in pixels; the height follows the geometry's aspect.
	Width int
	// Margin is the zoom-out added on every side, as a fraction of the extent.
	Margin float64
	// OutlineWidth is the polygon outline stroke in pixels.
	OutlineWidth float64
	// Caption is drawn centered over the map when non-empty.
	Caption string
	// Face renders the caption; basicfont.Face7x13 when nil.
	Face font.Face
}

func (o HeatMapOptions) withDefaults() HeatMapOptions {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Margin <= 0 {
		o.Margin = DefaultMargin
	}
	if o.OutlineWidth <= 0 {
		o.OutlineWidth = DefaultOutlineWidth
	}
	if o.Face == nil {
		o.Face = basicfont.Face7x13
	}
	return o
}

// viewport maps plot coordinates (y up) to pixels (y down).
type viewport struct {
	bound  orb.Bound
	scale  float64
	width  int
	height int
}

func newViewport(b orb.Bound, width int, margin float64) viewport {
	w, h := b.Right()-b.Left(), b.Top()-b.Bottom()
	if w <= 0 || h <= 0 {
		// No usable geometry; keep a square canvas
		return viewport{bound: orb.Bound{Max: orb.Point{1, 1}}, scale: float64(width), width: width, height: width}
	}
	pad := math.Max(w, h) * margin
	b = b.Pad(pad)
	scale := float64(width) / (b.Right() - b.Left())
	return viewport{
		bound:  b,
		scale:  scale,
		width:  width,
		height: int(math.Ceil((b.Top() - b.Bottom()) * scale)),
	}
}

func (v viewport) project(p orb.Point) (float32, float32) {
	x := (p[0] - v.bound.Left()) * v.scale
	y := (v.bound.Top() - p[1]) * v.scale
	return float32(x), float32(y)
}

// HeatMap draws every polygon of geo filled with its group's palette color
// and outlined, on a white canvas, and encodes the result as PNG. Groups
// without geometry are simply not drawn.
func HeatMap(geo *geometry.Geometry, in intensity.Intensities, p intensity.Palette, opts HeatMapOptions) ([]byte, error) {
	opts = opts.withDefaults()
	vp := newViewport(geo.Bound(), opts.Width, opts.Margin)

	img := image.NewNRGBA(image.Rect(0, 0, vp.width, vp.height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	r := vector.NewRasterizer(vp.width, vp.height)
	for _, group := range geo.Groups() {
		fill := p.Color(in[group])
		for _, poly := range geo.Polygons(group) {
			r.Reset(vp.width, vp.height)
			fillPath(r, vp, poly.Ring)
			r.Draw(img, img.Bounds(), image.NewUniform(fill), image.Point{})

			r.Reset(vp.width, vp.height)
			strokePath(r, vp, poly.Ring, opts.OutlineWidth)
			r.Draw(img, img.Bounds(), image.NewUniform(p.Outline), image.Point{})
		}
	}

	if opts.Caption != "" {
		drawCaption(img, opts.Face, opts.Caption)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode heat map: %w", err)
	}
	return buf.Bytes(), nil
}

func fillPath(r *vector.Rasterizer, vp viewport, ring orb.Ring) {
	for i, pt := range ring {
		x, y := vp.project(pt)
		if i == 0 {
			r.MoveTo(x, y)
			continue
		}
		r.LineTo(x, y)
	}
	r.ClosePath()
}

// strokePath outlines a closed ring with one quad per edge.
func strokePath(r *vector.Rasterizer, vp viewport, ring orb.Ring, width float64) {
	half := float32(width / 2)
	n := len(ring)
	for i := 0; i < n; i++ {
		x0, y0 := vp.project(ring[i])
		x1, y1 := vp.project(ring[(i+1)%n])
		dx, dy := x1-x0, y1-y0
		length := float32(math.Hypot(float64(dx), float64(dy)))
		if length == 0 {
			continue
		}
		nx, ny := -dy/length*half, dx/length*half
		// Extend each edge by half the stroke so corners close
		ex, ey := dx/length*half, dy/length*half

		r.MoveTo(x0+nx-ex, y0+ny-ey)
		r.LineTo(x1+nx+ex, y1+ny+ey)
		r.LineTo(x1-nx+ex, y1-ny+ey)
		r.LineTo(x0-nx-ex, y0-ny-ey)
		r.ClosePath()
	}
}

// captionBackground matches the translucent panel the dashboard used.
var captionBackground = color.NRGBA{R: 255, G: 255, B: 255, A: 230}

// drawCaption centers multi-line text over img on a translucent panel.
func drawCaption(img draw.Image, face font.Face, caption string) {
	lines := strings.Split(caption, "\n")
	metrics := face.Metrics()
	lineHeight := metrics.Height.Ceil()
	if lineHeight == 0 {
		lineHeight = (metrics.Ascent + metrics.Descent).Ceil()
	}

	widest := 0
	for _, line := range lines {
		if w := font.MeasureString(face, line).Ceil(); w > widest {
			widest = w
		}
	}

	bounds := img.Bounds()
	blockH := lineHeight * len(lines)
	top := bounds.Min.Y + (bounds.Dy()-blockH)/2
	pad := lineHeight / 2
	panel := image.Rect(
		bounds.Min.X+(bounds.Dx()-widest)/2-pad, top-pad,
		bounds.Min.X+(bounds.Dx()+widest)/2+pad, top+blockH+pad,
	).Intersect(bounds)
	draw.Draw(img, panel, image.NewUniform(captionBackground), image.Point{}, draw.Over)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: face,
	}
	for i, line := range lines {
		w := font.MeasureString(face, line).Ceil()
		x := bounds.Min.X + (bounds.Dx()-w)/2
		y := top + i*lineHeight + metrics.Ascent.Ceil()
		d.Dot = fixed.P(x, y)
		d.DrawString(line)
	}
}

// DataURI embeds a PNG for direct use in an <img> tag.
func DataURI(pngData []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngData)
}
