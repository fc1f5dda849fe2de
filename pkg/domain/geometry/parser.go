package geometry

import (
	"regexp"
	"strconv"

	"github.com/paulmach/orb"
)

// MinPoints is the smallest point count that still forms a polygon.
const MinPoints = 3

var numberPattern = regexp.MustCompile(`[-+]?[0-9]*\.?[0-9]+`)

// Transform is the translation applied to a raw path after parsing.
type Transform struct {
	TranslateX float64 `json:"translateX"`
	TranslateY float64 `json:"translateY"`
}

// ParsePath turns a raw vector path into a ring of plot coordinates.
//
// Numeric tokens are read two at a time as x/y pairs; command letters and any
// other text are skipped and an odd trailing token is ignored. The y axis is
// negated so screen-down paths become plot-up, then the translation is applied.
// The second return value is false when fewer than MinPoints points remain, in
// which case the path is empty and must be skipped by the caller.
func ParsePath(d string, t Transform) (orb.Ring, bool) {
	tokens := numberPattern.FindAllString(d, -1)
	ring := make(orb.Ring, 0, len(tokens)/2)
	for i := 0; i+1 < len(tokens); i += 2 {
		x, errX := strconv.ParseFloat(tokens[i], 64)
		y, errY := strconv.ParseFloat(tokens[i+1], 64)
		if errX != nil || errY != nil {
			continue
		}
		ring = append(ring, orb.Point{x + t.TranslateX, -y + t.TranslateY})
	}
	if len(ring) < MinPoints {
		return nil, false
	}
	return ring, true
}
