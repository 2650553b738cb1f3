// Package filter computes the visible subset of wishes for a tab, a search
// query and a category selector.
package filter

import (
	"strings"
	"wishTracker/internal/models/wish"
)

// AllCategories is the selector value that disables category filtering.
const AllCategories = "All Categories"

type Criteria struct {
	Status   wish.Status
	Search   string
	Category string
}

// Matches reports whether w satisfies all three predicates.
// The search query is compared as-is, without trimming.
func (c Criteria) Matches(w *wish.Wish) bool {
	if w == nil || w.Status != c.Status {
		return false
	}
	if !strings.Contains(strings.ToLower(w.Title), strings.ToLower(c.Search)) {
		return false
	}
	if c.Category == "" || c.Category == AllCategories {
		return true
	}
	return w.Category == c.Category
}

// Apply returns the matching wishes in their original order. The result is
// never nil and the input slice is left untouched.
func Apply(items []*wish.Wish, c Criteria) []*wish.Wish {
	res := make([]*wish.Wish, 0, len(items))
	for _, w := range items {
		if c.Matches(w) {
			res = append(res, w)
		}
	}
	return res
}
