package bookshelf

import (
	"github.com/AntonStoeckl/library-desk-go/library/core"
	"github.com/AntonStoeckl/library-desk-go/library/features/query/recentbooks"
)

// ProjectBookshelf implements the query logic for the bookshelf.
// This is a pure function with no side effects.
//
// Query Logic:
//
//	GIVEN: the registered books and the loan history
//	WHEN: Bookshelf query is executed
//	THEN: the books in reverse insertion order, truncated to Limit
//	DETAILS: Available is true iff the book has no active loan
func ProjectBookshelf(books core.Books, loans core.Loans, query Query) Bookshelf {
	recent := recentbooks.ProjectRecentBooks(books, recentbooks.BuildQuery(query.Limit))

	shelf := Bookshelf{Books: make([]BookInfo, 0, len(recent))}
	for _, book := range recent {
		shelf.Books = append(shelf.Books, BookInfo{
			Book:      book,
			Available: !loans.HasActiveLoan(book.ISBN),
		})
	}

	shelf.Count = len(shelf.Books)

	return shelf
}
