package intensity

import (
	"math"

	"github.com/fitglue/musclemap/pkg/domain/aggregate"
	"github.com/fitglue/musclemap/pkg/domain/muscle"
)

// Class is the channel a muscle group is drawn on.
type Class int

const (
	Inactive Class = iota
	Primary
	Secondary
)

func (c Class) String() string {
	switch c {
	case Primary:
		return "primary"
	case Secondary:
		return "secondary"
	default:
		return "inactive"
	}
}

func (c Class) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Intensity is a muscle group's volume normalized per channel to [0, 1].
type Intensity struct {
	Primary   float64 `json:"primary"`
	Secondary float64 `json:"secondary"`
	Class     Class   `json:"class"`
}

// Intensities maps every group of the input to its Intensity.
type Intensities map[muscle.Group]Intensity

// Max returns the largest value, floored at 1.
func Max(values ...float64) float64 {
	m := 1.0
	for _, v := range values {
		if v > m {
			m = v
		}
	}
	return m
}

// Clamp limits v to [0, 1].
func Clamp(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Normalize scales each channel against its maximum across all groups,
// floored at 1 so an all-zero input stays at zero. A group with primary volume
// is classed primary even when it also has secondary volume.
func Normalize(volumes aggregate.Volumes) Intensities {
	primaries := make([]float64, 0, len(volumes))
	secondaries := make([]float64, 0, len(volumes))
	for _, v := range volumes {
		primaries = append(primaries, v.Primary)
		secondaries = append(secondaries, v.Secondary)
	}
	maxPrimary := Max(primaries...)
	maxSecondary := Max(secondaries...)

	out := make(Intensities, len(volumes))
	for g, v := range volumes {
		in := Intensity{
			Primary:   Clamp(v.Primary / maxPrimary),
			Secondary: Clamp(v.Secondary / maxSecondary),
		}
		switch {
		case v.Primary > 0:
			in.Class = Primary
		case v.Secondary > 0:
			in.Class = Secondary
		default:
			in.Class = Inactive
		}
		out[g] = in
	}
	return out
}
