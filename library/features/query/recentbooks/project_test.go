package recentbooks_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/library-desk-go/library/core"
	"github.com/AntonStoeckl/library-desk-go/library/features/query/recentbooks"
)

func Test_ProjectRecentBooks(t *testing.T) {
	now := time.Now()
	books := core.Books{
		core.BuildBook("978-1", "A", "", now),
		core.BuildBook("978-2", "B", "", now),
		core.BuildBook("978-3", "C", "", now),
	}

	testCases := []struct {
		name     string
		limit    int
		expected []string
	}{
		{name: "no limit", limit: 0, expected: []string{"978-3", "978-2", "978-1"}},
		{name: "negative limit", limit: -1, expected: []string{"978-3", "978-2", "978-1"}},
		{name: "limit below count", limit: 2, expected: []string{"978-3", "978-2"}},
		{name: "limit above count", limit: 10, expected: []string{"978-3", "978-2", "978-1"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			recent := recentbooks.ProjectRecentBooks(books, recentbooks.BuildQuery(tc.limit))

			isbns := make([]string, 0, len(recent))
			for _, book := range recent {
				isbns = append(isbns, book.ISBN)
			}

			assert.Equal(t, tc.expected, isbns)
		})
	}
}

func Test_ProjectRecentBooks_Empty(t *testing.T) {
	assert.Empty(t, recentbooks.ProjectRecentBooks(nil, recentbooks.BuildQuery(10)))
}
