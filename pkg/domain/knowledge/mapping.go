package knowledge

import (
	"errors"
	"fmt"

	"github.com/fitglue/musclemap/pkg/domain/muscle"
)

// ErrInvalidMapping is returned when no valid mapping could be obtained for
// an exercise.
var ErrInvalidMapping = errors.New("invalid exercise mapping")

// Mapping lists the muscle groups an exercise stimulates.
type Mapping struct {
	Primary   []muscle.Group `json:"primary" yaml:"primary"`
	Secondary []muscle.Group `json:"secondary" yaml:"secondary"`
}

// Table maps exercise identifiers to their Mapping.
type Table map[string]Mapping

// Clone returns a deep copy of m.
func (m Mapping) Clone() Mapping {
	return Mapping{
		Primary:   append([]muscle.Group(nil), m.Primary...),
		Secondary: append([]muscle.Group(nil), m.Secondary...),
	}
}

// Equal reports whether both lists match element for element.
func (m Mapping) Equal(o Mapping) bool {
	return groupsEqual(m.Primary, o.Primary) && groupsEqual(m.Secondary, o.Secondary)
}

func groupsEqual(a, b []muscle.Group) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of t.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	for id, m := range t {
		out[id] = m.Clone()
	}
	return out
}

// Normalize canonicalizes a mapping. Identifiers are parsed through
// muscle.Parse so legacy spellings are accepted, and duplicates are removed
// keeping first occurrence. An empty or unknown primary entry is an error;
// unknown secondary entries are dropped.
func Normalize(m Mapping) (Mapping, error) {
	if len(m.Primary) == 0 {
		return Mapping{}, fmt.Errorf("%w: no primary muscle groups", ErrInvalidMapping)
	}

	out := Mapping{
		Primary:   make([]muscle.Group, 0, len(m.Primary)),
		Secondary: make([]muscle.Group, 0, len(m.Secondary)),
	}
	seen := make(map[muscle.Group]bool)
	for _, raw := range m.Primary {
		g, err := muscle.Parse(string(raw))
		if err != nil {
			return Mapping{}, fmt.Errorf("%w: %v", ErrInvalidMapping, err)
		}
		if !seen[g] {
			seen[g] = true
			out.Primary = append(out.Primary, g)
		}
	}

	seen = make(map[muscle.Group]bool)
	for _, raw := range m.Secondary {
		g, err := muscle.Parse(string(raw))
		if err != nil || seen[g] {
			continue
		}
		seen[g] = true
		out.Secondary = append(out.Secondary, g)
	}
	return out, nil
}

// Fallback is the mapping of an exercise with no known targets.
func Fallback() Mapping {
	return Mapping{
		Primary:   []muscle.Group{muscle.Undefined},
		Secondary: []muscle.Group{muscle.Undefined},
	}
}
