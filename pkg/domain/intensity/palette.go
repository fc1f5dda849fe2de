package intensity

import (
	"fmt"
	"image/color"
	"math"
)

// Channel is a base hue whose alpha runs from MinAlpha at intensity 0 to
// MaxAlpha at intensity 1.
type Channel struct {
	Base     color.NRGBA
	MinAlpha float64
	MaxAlpha float64
}

// At returns the channel color for intensity v.
func (c Channel) At(v float64) color.NRGBA {
	a := c.MinAlpha + Clamp(v)*(c.MaxAlpha-c.MinAlpha)
	out := c.Base
	out.A = uint8(math.Round(Clamp(a) * 255))
	return out
}

// Palette colors the heat map and styles the radial chart.
type Palette struct {
	Name      string
	Primary   Channel
	Secondary Channel
	Inactive  color.NRGBA
	Outline   color.NRGBA
}

// Standard draws primary muscles red and secondary muscles yellow.
var Standard = Palette{
	Name:      "standard",
	Primary:   Channel{Base: color.NRGBA{R: 255, A: 255}, MinAlpha: 0.2, MaxAlpha: 1},
	Secondary: Channel{Base: color.NRGBA{R: 255, G: 255, A: 255}, MinAlpha: 0.2, MaxAlpha: 1},
	Inactive:  color.NRGBA{R: 211, G: 211, B: 211, A: 255},
	Outline:   color.NRGBA{A: 255},
}

// ColorBlind swaps red/yellow for the Okabe-Ito blue and sky blue, which stay
// distinct under the common color vision deficiencies.
var ColorBlind = Palette{
	Name:      "colorblind",
	Primary:   Channel{Base: color.NRGBA{R: 0, G: 114, B: 178, A: 255}, MinAlpha: 0.2, MaxAlpha: 1},
	Secondary: Channel{Base: color.NRGBA{R: 86, G: 180, B: 233, A: 255}, MinAlpha: 0.2, MaxAlpha: 1},
	Inactive:  color.NRGBA{R: 211, G: 211, B: 211, A: 255},
	Outline:   color.NRGBA{A: 255},
}

// PaletteFor selects the palette for the color-mode flag.
func PaletteFor(colorBlind bool) Palette {
	if colorBlind {
		return ColorBlind
	}
	return Standard
}

// Color picks the fill for one group. Only the class decides the channel, so
// every palette classifies groups the same way.
func (p Palette) Color(in Intensity) color.NRGBA {
	switch in.Class {
	case Primary:
		return p.Primary.At(in.Primary)
	case Secondary:
		return p.Secondary.At(in.Secondary)
	default:
		return p.Inactive
	}
}

// RGBA formats c as a CSS rgba() string.
func RGBA(c color.NRGBA) string {
	return fmt.Sprintf("rgba(%d, %d, %d, %.2f)", c.R, c.G, c.B, float64(c.A)/255)
}
