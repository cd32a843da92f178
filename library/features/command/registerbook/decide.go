package registerbook

import (
	"github.com/AntonStoeckl/library-desk-go/library/core"
)

const (
	failureReasonMissingISBN       = "isbn is required"
	failureReasonAlreadyRegistered = "book is already registered"
)

// Decide implements the business logic to determine whether a book can be registered.
// This is a pure function with no side effects.
//
// Business Rules:
//
//	GIVEN: A book with ISBN, optional title and author
//	WHEN: RegisterBook command is received
//	THEN: the Book is appended to the registered books
//	ERROR: InvalidInput if the ISBN is empty
//	ERROR: DuplicateIsbn if a book with this ISBN is already registered
func Decide(books core.Books, command Command) core.DecisionResult[core.Book] {
	if command.ISBN == "" {
		return core.ErrorDecision[core.Book](core.NewDomainError(core.KindInvalidInput, "", failureReasonMissingISBN))
	}

	if books.Contains(command.ISBN) {
		return core.ErrorDecision[core.Book](core.NewDomainError(core.KindDuplicateIsbn, command.ISBN, failureReasonAlreadyRegistered))
	}

	return core.SuccessDecision(core.BuildBook(command.ISBN, command.Title, command.Author, command.RegisteredAt))
}
