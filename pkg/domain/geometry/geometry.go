package geometry

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/paulmach/orb"

	shared "github.com/fitglue/musclemap/pkg"
	"github.com/fitglue/musclemap/pkg/domain/muscle"
)

// ErrGeometryNotFound means the geometry source could not be read. A heat map
// cannot be drawn without it.
var ErrGeometryNotFound = errors.New("geometry source not found")

// FrontView is the only view of the source file that is consumed.
const FrontView = "Front"

//go:embed data/muscle_coordinates.json
var defaultSource []byte

// Polygon is one closed region of a muscle group.
type Polygon struct {
	Ring  orb.Ring
	Style string
}

// entry is the on-disk shape of a single path.
type entry struct {
	Path      string    `json:"path"`
	Transform Transform `json:"transform"`
	Style     string    `json:"style"`
}

// Geometry is load-once, read-only region data keyed by muscle group. It is
// safe for concurrent use.
type Geometry struct {
	regions map[muscle.Group][]Polygon
	bound   orb.Bound
	dropped int
	skipped []string
}

// Parse builds Geometry from a coordinates document. Paths with fewer than
// MinPoints points are dropped silently. Keys that are not known muscle groups
// are skipped and reported by Skipped.
func Parse(data []byte) (*Geometry, error) {
	var views map[string]map[string][]entry
	if err := json.Unmarshal(data, &views); err != nil {
		return nil, fmt.Errorf("failed to decode geometry: %w", err)
	}

	var front map[string][]entry
	for name, v := range views {
		if strings.EqualFold(name, FrontView) {
			front = v
			break
		}
	}
	if front == nil {
		return nil, fmt.Errorf("geometry has no %q view", FrontView)
	}

	g := &Geometry{regions: make(map[muscle.Group][]Polygon, len(front))}
	first := true
	for key, entries := range front {
		group, err := muscle.Parse(key)
		if err != nil {
			g.skipped = append(g.skipped, key)
			continue
		}
		for _, e := range entries {
			ring, ok := ParsePath(e.Path, e.Transform)
			if !ok {
				g.dropped++
				continue
			}
			g.regions[group] = append(g.regions[group], Polygon{Ring: ring, Style: e.Style})
			if first {
				g.bound = ring.Bound()
				first = false
			} else {
				g.bound = g.bound.Union(ring.Bound())
			}
		}
	}
	return g, nil
}

// LoadFile reads and parses a coordinates file from disk.
func LoadFile(path string) (*Geometry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrGeometryNotFound, path)
		}
		return nil, fmt.Errorf("failed to read geometry %s: %w", path, err)
	}
	return Parse(data)
}

// LoadBlob reads and parses a coordinates object from a blob store.
func LoadBlob(ctx context.Context, store shared.BlobStore, bucket, object string) (*Geometry, error) {
	data, err := store.Read(ctx, bucket, object)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("%w: gs://%s/%s", ErrGeometryNotFound, bucket, object)
		}
		return nil, fmt.Errorf("failed to read geometry gs://%s/%s: %w", bucket, object, err)
	}
	return Parse(data)
}

// Default returns the geometry bundled with the binary.
func Default() (*Geometry, error) {
	return Parse(defaultSource)
}

// Polygons returns the polygons of a group, or nil when it has no geometry.
func (g *Geometry) Polygons(group muscle.Group) []Polygon {
	return g.regions[group]
}

// Groups returns the groups that have geometry, in catalog order.
func (g *Geometry) Groups() []muscle.Group {
	var out []muscle.Group
	for _, group := range muscle.Catalog() {
		if len(g.regions[group]) > 0 {
			out = append(out, group)
		}
	}
	return out
}

// Bound is the extent of every polygon. It is empty when there are none.
func (g *Geometry) Bound() orb.Bound {
	return g.bound
}

// Dropped is the number of degenerate paths excluded while parsing.
func (g *Geometry) Dropped() int {
	return g.dropped
}

// Skipped lists source keys that did not name a known muscle group.
func (g *Geometry) Skipped() []string {
	return g.skipped
}
