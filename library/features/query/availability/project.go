package availability

import (
	"github.com/AntonStoeckl/library-desk-go/library/core"
)

// ProjectBookAvailability derives the availability of one book from the records.
// This is a pure function with no side effects.
//
// Query Logic:
//
//	GIVEN: the registered books and the loan history
//	WHEN: BookAvailability query is executed
//	THEN: Available is true iff the book is registered and has no active loan
func ProjectBookAvailability(books core.Books, loans core.Loans, query Query) BookAvailability {
	registered := query.ISBN != "" && books.Contains(query.ISBN)

	return BookAvailability{
		ISBN:       query.ISBN,
		Registered: registered,
		Available:  registered && !loans.HasActiveLoan(query.ISBN),
	}
}
