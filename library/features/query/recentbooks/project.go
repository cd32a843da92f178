package recentbooks

import (
	"github.com/AntonStoeckl/library-desk-go/library/core"
)

// ProjectRecentBooks returns the books in reverse insertion order, truncated to query.Limit.
// This is a pure function with no side effects.
func ProjectRecentBooks(books core.Books, query Query) core.Books {
	count := len(books)
	if query.Limit > 0 && query.Limit < count {
		count = query.Limit
	}

	recent := make(core.Books, 0, count)
	for i := len(books) - 1; i >= len(books)-count; i-- {
		recent = append(recent, books[i])
	}

	return recent
}
