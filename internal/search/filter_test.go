package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fruit struct{ name, origin string }

func byName(f fruit) []string { return []string{f.name} }

func TestFilter(t *testing.T) {
	items := []fruit{{"Apple", "chile"}, {"Banana", "ecuador"}, {"Cherry", "spain"}}

	t.Run("empty query is identity", func(t *testing.T) {
		assert.Equal(t, items, Filter(items, "", byName))
		assert.Equal(t, items, Filter(items, "   ", byName))
	})

	t.Run("case insensitive substring", func(t *testing.T) {
		assert.Equal(t, []fruit{{"Apple", "chile"}}, Filter(items, "AP", byName))
	})

	t.Run("keeps order", func(t *testing.T) {
		got := Filter(items, "a", byName)
		assert.Equal(t, []fruit{{"Apple", "chile"}, {"Banana", "ecuador"}}, got)
	})

	t.Run("any field", func(t *testing.T) {
		fields := func(f fruit) []string { return []string{f.name, f.origin} }
		assert.Equal(t, []fruit{{"Cherry", "spain"}}, Filter(items, "SPA", fields))
		assert.Empty(t, Filter(items, "spa", byName))
	})
}
