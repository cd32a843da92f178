package core

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a DomainError. The view layer turns the kind into a user-facing message.
type ErrorKind string

// The kinds of business rule violations.
const (
	KindInvalidInput      ErrorKind = "InvalidInput"
	KindDuplicateIsbn     ErrorKind = "DuplicateIsbn"
	KindUnknownBook       ErrorKind = "UnknownBook"
	KindAlreadyLent       ErrorKind = "AlreadyLent"
	KindNoActiveLoan      ErrorKind = "NoActiveLoan"
	KindLookupUnavailable ErrorKind = "LookupUnavailable"
)

// DomainError is a typed business rule violation.
// Two DomainErrors match with errors.Is when their kinds are equal, so the sentinels below
// can be used to test for a kind without looking at the ISBN or the message.
type DomainError struct {
	Kind    ErrorKind
	ISBN    ISBNString
	Message string
}

// Sentinels for errors.Is checks.
var (
	ErrInvalidInput      = &DomainError{Kind: KindInvalidInput, Message: "invalid input"}
	ErrDuplicateIsbn     = &DomainError{Kind: KindDuplicateIsbn, Message: "book is already registered"}
	ErrUnknownBook       = &DomainError{Kind: KindUnknownBook, Message: "book is not registered"}
	ErrAlreadyLent       = &DomainError{Kind: KindAlreadyLent, Message: "book is already lent"}
	ErrNoActiveLoan      = &DomainError{Kind: KindNoActiveLoan, Message: "book has no active loan"}
	ErrLookupUnavailable = &DomainError{Kind: KindLookupUnavailable, Message: "no catalog metadata available"}
)

// NewDomainError creates a DomainError for isbn with the given kind and message.
func NewDomainError(kind ErrorKind, isbn ISBNString, message string) *DomainError {
	return &DomainError{Kind: kind, ISBN: isbn, Message: message}
}

func (e *DomainError) Error() string {
	if e.ISBN == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}

	return fmt.Sprintf("%s: %s (isbn %s)", e.Kind, e.Message, e.ISBN)
}

// Is matches any DomainError of the same kind.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}

	return other.Kind == e.Kind
}

// KindOf returns the kind of the DomainError wrapped in err, or "" if err is not a domain error.
func KindOf(err error) ErrorKind {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}

	return ""
}

// IsDomainError reports whether err wraps a DomainError.
func IsDomainError(err error) bool {
	return KindOf(err) != ""
}
