package returnbook

import (
	"github.com/AntonStoeckl/library-desk-go/library/core"
)

const (
	failureReasonMissingISBN  = "isbn is required"
	failureReasonNoActiveLoan = "book has no active loan"
)

// Return identifies the loan to close and its new state.
type Return struct {
	Position int
	Loan     core.Loan
}

// Decide implements the business logic to determine which loan a return closes.
// This is a pure function with no side effects.
//
// Business Rules:
//
//	GIVEN: A book with ISBN
//	WHEN: ReturnBook command is received
//	THEN: the most recent active loan of the book is marked as returned
//	ERROR: InvalidInput if the ISBN is empty
//	ERROR: NoActiveLoan if the book has no active loan
func Decide(loans core.Loans, command Command) core.DecisionResult[Return] {
	if command.ISBN == "" {
		return core.ErrorDecision[Return](core.NewDomainError(core.KindInvalidInput, "", failureReasonMissingISBN))
	}

	position, found := loans.LastActiveIndex(command.ISBN)
	if !found {
		return core.ErrorDecision[Return](core.NewDomainError(core.KindNoActiveLoan, command.ISBN, failureReasonNoActiveLoan))
	}

	return core.SuccessDecision(Return{
		Position: position,
		Loan:     loans[position].MarkReturned(command.ReturnedAt),
	})
}
