package aggregate

import (
	"context"
	"errors"
	"fmt"

	"github.com/fitglue/musclemap/pkg/domain/activity"
	"github.com/fitglue/musclemap/pkg/domain/knowledge"
	"github.com/fitglue/musclemap/pkg/domain/muscle"
)

// SecondaryWeight is the share of a set's volume credited to each secondary
// muscle group.
const SecondaryWeight = 0.5

// Resolver resolves exercise identifiers to muscle mappings.
type Resolver interface {
	Resolve(ctx context.Context, exerciseID string) (knowledge.Mapping, error)
}

// Volume holds the two accumulators of one muscle group.
type Volume struct {
	Primary   float64 `json:"primary"`
	Secondary float64 `json:"secondary"`
}

// Total is the combined volume used by the radial summary.
func (v Volume) Total() float64 {
	return v.Primary + v.Secondary
}

// Active reports whether either channel received volume.
func (v Volume) Active() bool {
	return v.Primary > 0 || v.Secondary > 0
}

// Volumes maps every catalog group to its accumulated volume.
type Volumes map[muscle.Group]Volume

// Empty returns Volumes with every catalog group at zero.
func Empty() Volumes {
	v := make(Volumes, len(muscle.Catalog()))
	for _, g := range muscle.Catalog() {
		v[g] = Volume{}
	}
	return v
}

// Any reports whether some group received volume.
func (v Volumes) Any() bool {
	for _, vol := range v {
		if vol.Active() {
			return true
		}
	}
	return false
}

// Aggregate sums weighted training volume per muscle group. Every catalog
// group is present in the result; undefined never receives volume.
//
// A *knowledge.PersistError from the resolver does not stop aggregation; it
// is collected into the returned warnings. Any other resolver error aborts.
func Aggregate(ctx context.Context, records []activity.Record, r Resolver) (Volumes, []error, error) {
	volumes := Empty()
	var warnings []error

	for _, rec := range records {
		for _, set := range rec.Sets {
			m, err := r.Resolve(ctx, set.ExerciseID)
			if err != nil {
				var perr *knowledge.PersistError
				if !errors.As(err, &perr) {
					return nil, warnings, fmt.Errorf("failed to resolve %s: %w", set.ExerciseID, err)
				}
				warnings = append(warnings, err)
			}

			volume := set.Volume()
			if volume <= 0 {
				continue
			}
			for _, g := range m.Primary {
				if g == muscle.Undefined {
					continue
				}
				v := volumes[g]
				v.Primary += volume
				volumes[g] = v
			}
			for _, g := range m.Secondary {
				if g == muscle.Undefined {
					continue
				}
				v := volumes[g]
				v.Secondary += volume * SecondaryWeight
				volumes[g] = v
			}
		}
	}
	return volumes, warnings, nil
}
