package overdueloans

import (
	"github.com/AntonStoeckl/library-desk-go/library/core"
)

// ProjectOverdueLoans implements the query logic to determine all overdue loans.
// This is a pure function with no side effects.
//
// Query Logic:
//
//	GIVEN: the registered books and the loan history
//	WHEN: OverdueLoans query is executed
//	THEN: one entry per active loan with dueAt < asOf, in loan insertion order
//	INCLUDES: the book title, empty when the book is not registered
//	EXCLUDES: returned loans
func ProjectOverdueLoans(books core.Books, loans core.Loans, query Query) core.OverdueEntries {
	entries := make(core.OverdueEntries, 0)

	for _, loan := range loans {
		if !loan.IsOverdueAt(query.AsOf) {
			continue
		}

		entries = append(entries, core.OverdueEntry{
			ISBN:    loan.ISBN,
			Student: loan.Student,
			Title:   books.TitleOf(loan.ISBN),
			DueAt:   loan.DueAt,
		})
	}

	return entries
}
