// Package maputil provides helpers for maps keyed by strings.
package maputil

import "sort"

// SortedKeys returns the keys of m in ascending order. It never returns nil.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
