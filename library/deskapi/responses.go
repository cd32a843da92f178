package deskapi

import (
	"time"

	"github.com/AntonStoeckl/library-desk-go/library/core"
)

// unknownTitle is shown for overdue loans of books without a title.
const unknownTitle = "(Unknown title)"

type bookResponse struct {
	ISBN         string    `json:"isbn"`
	Title        string    `json:"title"`
	Author       string    `json:"author,omitempty"`
	RegisteredAt time.Time `json:"registeredAt"`
	Available    *bool     `json:"available,omitempty"`
}

type loanResponse struct {
	ID          string     `json:"id,omitempty"`
	ISBN        string     `json:"isbn"`
	Student     string     `json:"student"`
	StudentName string     `json:"studentName"`
	LentAt      time.Time  `json:"lentAt"`
	DueAt       time.Time  `json:"dueAt"`
	Returned    bool       `json:"returned"`
	ReturnedAt  *time.Time `json:"returnedAt,omitempty"`
}

type overdueResponse struct {
	ISBN        string    `json:"isbn"`
	Title       string    `json:"title"`
	Student     string    `json:"student"`
	StudentName string    `json:"studentName"`
	DueAt       time.Time `json:"dueAt"`
}

func toBookResponse(book core.Book) bookResponse {
	return bookResponse{
		ISBN:         book.ISBN,
		Title:        book.Title,
		Author:       book.Author,
		RegisteredAt: book.RegisteredAt,
	}
}

func (h *Handler) toLoanResponse(loan core.Loan) loanResponse {
	response := loanResponse{
		ID:          loan.ID,
		ISBN:        loan.ISBN,
		Student:     loan.Student,
		StudentName: h.desk.StudentName(loan.Student),
		LentAt:      loan.LentAt,
		DueAt:       loan.DueAt,
		Returned:    loan.Returned,
	}

	if !loan.ReturnedAt.IsZero() {
		returnedAt := loan.ReturnedAt
		response.ReturnedAt = &returnedAt
	}

	return response
}

func (h *Handler) toOverdueResponse(entry core.OverdueEntry) overdueResponse {
	title := entry.Title
	if title == "" {
		title = unknownTitle
	}

	return overdueResponse{
		ISBN:        entry.ISBN,
		Title:       title,
		Student:     entry.Student,
		StudentName: h.desk.StudentName(entry.Student),
		DueAt:       entry.DueAt,
	}
}
