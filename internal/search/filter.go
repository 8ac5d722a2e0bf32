// Package search narrows already-loaded records by a free-text query.
package search

import "strings"

// Filter keeps the items where any of fields(item) contains query, ignoring
// case and surrounding whitespace. An empty query returns items unchanged.
// Order is preserved.
func Filter[T any](items []T, query string, fields func(T) []string) []T {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return items
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		for _, f := range fields(it) {
			if strings.Contains(strings.ToLower(f), q) {
				out = append(out, it)
				break
			}
		}
	}
	return out
}
