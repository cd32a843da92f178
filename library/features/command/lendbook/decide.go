package lendbook

import (
	"github.com/AntonStoeckl/library-desk-go/library/core"
)

const (
	failureReasonMissingInput = "isbn and student id are required"
	failureReasonUnknownBook  = "book is not registered"
	failureReasonAlreadyLent  = "book is already lent"
)

// state represents the facts about the book that the decision needs.
type state struct {
	bookIsRegistered bool
	bookIsLent       bool
}

// Decide implements the business logic to determine whether a book can be lent to a student.
// This is a pure function with no side effects.
//
// Business Rules:
//
//	GIVEN: A book with ISBN and a student ID
//	WHEN: LendBook command is received
//	THEN: an active Loan due one loan period after lentAt is created
//	ERROR: InvalidInput if ISBN or student ID is empty
//	ERROR: UnknownBook if no book with this ISBN is registered
//	ERROR: AlreadyLent if the book has an active loan
func Decide(books core.Books, loans core.Loans, command Command) core.DecisionResult[core.Loan] {
	if command.ISBN == "" || command.Student == "" {
		return core.ErrorDecision[core.Loan](core.NewDomainError(core.KindInvalidInput, command.ISBN, failureReasonMissingInput))
	}

	s := project(books, loans, command.ISBN)

	if !s.bookIsRegistered {
		return core.ErrorDecision[core.Loan](core.NewDomainError(core.KindUnknownBook, command.ISBN, failureReasonUnknownBook))
	}

	if s.bookIsLent {
		return core.ErrorDecision[core.Loan](core.NewDomainError(core.KindAlreadyLent, command.ISBN, failureReasonAlreadyLent))
	}

	return core.SuccessDecision(core.BuildLoan(command.LoanID, command.ISBN, command.Student, command.LentAt))
}

// project builds the current state of the book from the records.
func project(books core.Books, loans core.Loans, isbn core.ISBNString) state {
	return state{
		bookIsRegistered: books.Contains(isbn),
		bookIsLent:       loans.HasActiveLoan(isbn),
	}
}
