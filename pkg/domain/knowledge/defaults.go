package knowledge

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

var defaultTable Table

func init() {
	var raw Table
	if err := yaml.Unmarshal(defaultsYAML, &raw); err != nil {
		panic(fmt.Sprintf("knowledge: invalid defaults.yaml: %v", err))
	}
	defaultTable = make(Table, len(raw))
	for id, m := range raw {
		norm, err := Normalize(m)
		if err != nil {
			panic(fmt.Sprintf("knowledge: invalid default %s: %v", id, err))
		}
		defaultTable[id] = norm
	}
}

// Defaults returns a copy of the built-in exercise table.
func Defaults() Table {
	return defaultTable.Clone()
}
