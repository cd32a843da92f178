package core

import (
	"time"
)

// Loan records that a book was handed to a student.
// A loan is active until it is returned. Returned loans are kept as history.
type Loan struct {
	ID         LoanIDString
	ISBN       ISBNString
	Student    StudentIDString
	LentAt     Timestamp
	DueAt      Timestamp
	Returned   bool
	ReturnedAt Timestamp // zero while the loan is active, and for loans returned before it was recorded
}

// Loans is the loan history in insertion order.
type Loans []Loan

// BuildLoan creates an active Loan that is due one LoanPeriod after lentAt.
func BuildLoan(id LoanIDString, isbn ISBNString, student StudentIDString, lentAt time.Time) Loan {
	lent := ToTimestamp(lentAt)

	return Loan{
		ID:      id,
		ISBN:    isbn,
		Student: student,
		LentAt:  lent,
		DueAt:   lent.Add(LoanPeriod),
	}
}

// IsActive reports whether the loan has not been returned yet.
func (l Loan) IsActive() bool {
	return !l.Returned
}

// IsOverdueAt reports whether the loan is active and its due date lies strictly before asOf.
func (l Loan) IsOverdueAt(asOf time.Time) bool {
	return l.IsActive() && l.DueAt.Before(asOf)
}

// MarkReturned returns a copy of the loan flagged as returned at returnedAt.
func (l Loan) MarkReturned(returnedAt time.Time) Loan {
	l.Returned = true
	l.ReturnedAt = ToTimestamp(returnedAt)

	return l
}

// HasActiveLoan reports whether any active loan references isbn.
func (l Loans) HasActiveLoan(isbn ISBNString) bool {
	_, found := l.LastActiveIndex(isbn)

	return found
}

// LastActiveIndex returns the position of the most recent active loan for isbn.
func (l Loans) LastActiveIndex(isbn ISBNString) (int, bool) {
	for i := len(l) - 1; i >= 0; i-- {
		if l[i].ISBN == isbn && l[i].IsActive() {
			return i, true
		}
	}

	return -1, false
}

// ActiveCount returns how many active loans reference isbn.
func (l Loans) ActiveCount(isbn ISBNString) int {
	count := 0

	for _, loan := range l {
		if loan.ISBN == isbn && loan.IsActive() {
			count++
		}
	}

	return count
}
