// Package lookup provides total lookup helpers over decoded documents and
// observation lists. None of the functions here fail: absent data resolves
// to a caller-supplied default or a not-found indicator.
package lookup

import (
	"strings"

	"github.com/vanderheijden86/plotmap/pkg/model"
)

// Keys walks m one dot-separated segment at a time, e.g.
// "definition.trait.so:name". It returns def as soon as a segment is missing
// or an intermediate value is not a map.
func Keys(m map[string]any, path string, def any) any {
	var cur any = m
	for _, key := range strings.Split(path, ".") {
		node, ok := cur.(map[string]any)
		if !ok {
			return def
		}
		cur, ok = node[key]
		if !ok {
			return def
		}
	}
	return cur
}

// String is Keys narrowed to a string result. Non-string values yield def.
func String(m map[string]any, path, def string) string {
	if s, ok := Keys(m, path, nil).(string); ok {
		return s
	}
	return def
}

// Map is Keys narrowed to a nested map result, or nil.
func Map(m map[string]any, path string) map[string]any {
	node, _ := Keys(m, path, nil).(map[string]any)
	return node
}

// Has reports whether every segment of path resolves, regardless of the
// value found at the end.
func Has(m map[string]any, path string) bool {
	var cur any = m
	for _, key := range strings.Split(path, ".") {
		node, ok := cur.(map[string]any)
		if !ok {
			return false
		}
		if cur, ok = node[key]; !ok {
			return false
		}
	}
	return true
}

// PhenotypePresent reports whether any observation records the selected
// phenotype variable.
func PhenotypePresent(observations []model.Observation, selected string) bool {
	return PhenotypeIndex(observations, selected) >= 0
}

// PhenotypeIndex returns the position of the first observation recording
// the selected phenotype variable, or -1 if there is none.
func PhenotypeIndex(observations []model.Observation, selected string) int {
	for i, obs := range observations {
		if obs.Variable == selected {
			return i
		}
	}
	return -1
}
