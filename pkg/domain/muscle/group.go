package muscle

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Group is a side-qualified anatomical region, e.g. "front-chest-right".
type Group string

// Bilateral is the side-stripped base name of a Group pair, e.g. "front-chest".
type Bilateral string

// Side of the body a Group belongs to.
type Side string

const (
	SideRight Side = "right"
	SideLeft  Side = "left"
)

// Undefined is the catch-all group for exercises with no known targets.
// It has no bilateral counterpart and never receives volume.
const Undefined Group = "undefined"

// Bilateral muscles, front view first, in anatomical order.
const (
	FrontQuads     Bilateral = "front-quads"
	FrontAdductors Bilateral = "front-adductors"
	FrontHips      Bilateral = "front-hips"
	FrontAbs       Bilateral = "front-abs"
	FrontObliques  Bilateral = "front-obliques"
	FrontChest     Bilateral = "front-chest"
	FrontDelts     Bilateral = "front-delts"
	FrontBiceps    Bilateral = "front-biceps"
	FrontForearms  Bilateral = "front-forearms"
	BackCalves     Bilateral = "back-calves"
	BackHamstrings Bilateral = "back-hamstrings"
	BackAdductors  Bilateral = "back-adductors"
	BackGlutes     Bilateral = "back-glutes"
	BackAbductors  Bilateral = "back-abductors"
	BackLowerback  Bilateral = "back-lowerback"
	BackLats       Bilateral = "back-lats"
	BackTraps      Bilateral = "back-traps"
	BackDelts      Bilateral = "back-delts"
	BackTriceps    Bilateral = "back-triceps"
	BackForearms   Bilateral = "back-forearms"
)

var bilaterals = []Bilateral{
	FrontQuads, FrontAdductors, FrontHips, FrontAbs, FrontObliques,
	FrontChest, FrontDelts, FrontBiceps, FrontForearms,
	BackCalves, BackHamstrings, BackAdductors, BackGlutes, BackAbductors,
	BackLowerback, BackLats, BackTraps, BackDelts, BackTriceps, BackForearms,
}

// RadialOrder is the fixed axis order of the radial summary chart. The first ten
// axes keep the dashboard's historical order so old and new charts line up.
var RadialOrder = []Bilateral{
	FrontChest, BackLats, FrontDelts, BackDelts, FrontAbs,
	BackTriceps, FrontBiceps, FrontQuads, BackGlutes, BackHamstrings,
	FrontObliques, BackTraps, BackLowerback, FrontForearms, BackForearms,
	BackCalves, FrontHips, FrontAdductors, BackAdductors, BackAbductors,
}

// display names that don't follow from the identifier
var labelOverrides = map[Bilateral]string{
	FrontDelts:    "Front Deltoids",
	BackDelts:     "Back Deltoids",
	BackLowerback: "Back Lower Back",
}

var (
	catalog []Group
	lookup  map[string]Group
)

func init() {
	catalog = make([]Group, 0, len(bilaterals)*2+1)
	for _, b := range bilaterals {
		catalog = append(catalog, b.Group(SideRight), b.Group(SideLeft))
	}
	catalog = append(catalog, Undefined)

	lookup = make(map[string]Group, len(catalog)*2)
	for _, g := range catalog {
		lookup[string(g)] = g
		lookup[legacyKey(g)] = g
	}
	// Legacy coordinate and mapping files carry these spellings.
	lookup["ab-adductorsright"] = FrontAdductors.Group(SideRight)
	lookup["ab-aductorsleft"] = FrontAdductors.Group(SideLeft)
	lookup["ab-adductorsleft"] = FrontAdductors.Group(SideLeft)
}

// legacyKey lower-cases the CamelCase spelling ("FrontChestRight") of g.
func legacyKey(g Group) string {
	return strings.ReplaceAll(string(g), "-", "")
}

// Catalog returns the fixed enumerated set of groups, Undefined last.
// The returned slice is a copy.
func Catalog() []Group {
	out := make([]Group, len(catalog))
	copy(out, catalog)
	return out
}

// Active returns the catalog without Undefined.
func Active() []Group {
	return Catalog()[:len(catalog)-1]
}

// Bilaterals returns every bilateral muscle in catalog order.
func Bilaterals() []Bilateral {
	out := make([]Bilateral, len(bilaterals))
	copy(out, bilaterals)
	return out
}

// Parse resolves an identifier to a Group. Both the kebab form and the legacy
// CamelCase form are accepted, case-insensitively.
func Parse(s string) (Group, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if g, ok := lookup[key]; ok {
		return g, nil
	}
	if g, ok := lookup[strings.ReplaceAll(key, "_", "-")]; ok {
		return g, nil
	}
	return "", fmt.Errorf("unknown muscle group %q", s)
}

// Valid reports whether g is a member of the catalog.
func (g Group) Valid() bool {
	got, ok := lookup[string(g)]
	return ok && got == g
}

// Side returns the side of g; Undefined has none.
func (g Group) Side() (Side, bool) {
	switch {
	case strings.HasSuffix(string(g), "-"+string(SideRight)):
		return SideRight, true
	case strings.HasSuffix(string(g), "-"+string(SideLeft)):
		return SideLeft, true
	}
	return "", false
}

// Bilateral strips the side from g. Undefined has no bilateral counterpart.
func (g Group) Bilateral() (Bilateral, bool) {
	if g == Undefined || !g.Valid() {
		return "", false
	}
	side, ok := g.Side()
	if !ok {
		return "", false
	}
	return Bilateral(strings.TrimSuffix(string(g), "-"+string(side))), true
}

// Group returns the side-qualified group of b.
func (b Bilateral) Group(side Side) Group {
	return Group(string(b) + "-" + string(side))
}

// Label is the human-readable axis name, e.g. "Front Chest".
func (b Bilateral) Label() string {
	if l, ok := labelOverrides[b]; ok {
		return l
	}
	words := strings.FieldsFunc(string(b), func(r rune) bool {
		return r == '-' || unicode.IsSpace(r)
	})
	// Casers hold state; one per call keeps Label safe for concurrent renders.
	return cases.Title(language.English).String(strings.Join(words, " "))
}
