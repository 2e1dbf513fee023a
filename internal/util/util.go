// Package util holds a couple of small text/ordering helpers shared across
// the syngen packages: deterministic map iteration and a display-list
// formatter used when rendering diagnostics.
package util

import (
	"sort"
	"strings"
)

// MakeTextList gives a nice list of things based on their display name.
func MakeTextList(items []string) string {
	if len(items) < 1 {
		return ""
	}

	if len(items) == 1 {
		return items[0]
	}
	if len(items) == 2 {
		return items[0] + " and " + items[1]
	}

	itemsCopy := make([]string, len(items))
	copy(itemsCopy, items)
	itemsCopy[len(itemsCopy)-1] = "and " + itemsCopy[len(itemsCopy)-1]
	return strings.Join(itemsCopy, ", ")
}

// OrderedKeys returns the keys of m sorted lexically, so that iteration over
// a map produces a deterministic sequence. Used throughout the LR generator
// and emitter to satisfy the ordering guarantees of spec §5.
func OrderedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
