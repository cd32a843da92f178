package shell

import (
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/library-desk-go/library/core"
)

// timestampLayout is the persisted timestamp form: UTC with milliseconds, as produced by JavaScript's toISOString.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// bookRecord is the persisted form of a core.Book.
type bookRecord struct {
	ISBN         string `json:"isbn"`
	Title        string `json:"title"`
	Author       string `json:"author,omitempty"`
	RegisteredAt string `json:"registeredAt"`
}

// loanRecord is the persisted form of a core.Loan.
// DueDate is the field name older exports used for the due date; it is read but never written.
type loanRecord struct {
	ID         string `json:"id,omitempty"`
	ISBN       string `json:"isbn"`
	Student    string `json:"student"`
	LentAt     string `json:"lentAt"`
	DueAt      string `json:"dueAt,omitempty"`
	DueDate    string `json:"dueDate,omitempty"`
	Returned   bool   `json:"returned"`
	ReturnedAt string `json:"returnedAt,omitempty"`
}

// decodeResult is the outcome of a tolerant decode.
// Skipped counts entries that were dropped, documentMalformed is set when the document itself is not a JSON array.
type decodeResult[T any] struct {
	records           []T
	skipped           int
	documentMalformed bool
}

func encodeBooks(books core.Books) ([]byte, error) {
	records := make([]bookRecord, 0, len(books))

	for _, book := range books {
		records = append(records, bookRecord{
			ISBN:         book.ISBN,
			Title:        book.Title,
			Author:       book.Author,
			RegisteredAt: formatTimestamp(book.RegisteredAt),
		})
	}

	return jsonAPI.Marshal(records)
}

func encodeLoans(loans core.Loans) ([]byte, error) {
	records := make([]loanRecord, 0, len(loans))

	for _, loan := range loans {
		record := loanRecord{
			ID:       loan.ID,
			ISBN:     loan.ISBN,
			Student:  loan.Student,
			LentAt:   formatTimestamp(loan.LentAt),
			DueAt:    formatTimestamp(loan.DueAt),
			Returned: loan.Returned,
		}

		if !loan.ReturnedAt.IsZero() {
			record.ReturnedAt = formatTimestamp(loan.ReturnedAt)
		}

		records = append(records, record)
	}

	return jsonAPI.Marshal(records)
}

// decodeBooks decodes a books document. Entries without an ISBN or with an unreadable
// registration timestamp are skipped.
func decodeBooks(payload []byte) decodeResult[core.Book] {
	elements, ok := splitDocument(payload)
	if !ok {
		return decodeResult[core.Book]{records: core.Books{}, documentMalformed: true}
	}

	result := decodeResult[core.Book]{records: make([]core.Book, 0, len(elements))}

	for _, element := range elements {
		var record bookRecord
		if err := jsonAPI.Unmarshal(element, &record); err != nil || record.ISBN == "" {
			result.skipped++
			continue
		}

		registeredAt, err := parseTimestamp(record.RegisteredAt)
		if err != nil {
			result.skipped++
			continue
		}

		result.records = append(result.records, core.Book{
			ISBN:         record.ISBN,
			Title:        record.Title,
			Author:       record.Author,
			RegisteredAt: registeredAt,
		})
	}

	return result
}

// decodeLoans decodes a loans document. Entries without an ISBN, a student, or a readable lending
// timestamp are skipped. A missing due date is derived from the lending timestamp.
func decodeLoans(payload []byte) decodeResult[core.Loan] {
	elements, ok := splitDocument(payload)
	if !ok {
		return decodeResult[core.Loan]{records: core.Loans{}, documentMalformed: true}
	}

	result := decodeResult[core.Loan]{records: make([]core.Loan, 0, len(elements))}

	for _, element := range elements {
		loan, ok := decodeLoan(element)
		if !ok {
			result.skipped++
			continue
		}

		result.records = append(result.records, loan)
	}

	return result
}

func decodeLoan(element []byte) (core.Loan, bool) {
	var record loanRecord
	if err := jsonAPI.Unmarshal(element, &record); err != nil {
		return core.Loan{}, false
	}

	if record.ISBN == "" || record.Student == "" {
		return core.Loan{}, false
	}

	lentAt, err := parseTimestamp(record.LentAt)
	if err != nil {
		return core.Loan{}, false
	}

	dueAt := lentAt.Add(core.LoanPeriod)

	dueField := record.DueAt
	if dueField == "" {
		dueField = record.DueDate
	}

	if dueField != "" {
		if dueAt, err = parseTimestamp(dueField); err != nil {
			return core.Loan{}, false
		}
	}

	loan := core.Loan{
		ID:       record.ID,
		ISBN:     record.ISBN,
		Student:  record.Student,
		LentAt:   lentAt,
		DueAt:    dueAt,
		Returned: record.Returned,
	}

	if record.ReturnedAt != "" {
		if returnedAt, err := parseTimestamp(record.ReturnedAt); err == nil {
			loan.ReturnedAt = returnedAt
		}
	}

	return loan, true
}

// splitDocument splits a JSON array into its raw elements. An empty payload is an empty array.
func splitDocument(payload []byte) ([]jsoniter.RawMessage, bool) {
	if len(payload) == 0 {
		return nil, true
	}

	var elements []jsoniter.RawMessage
	if err := jsonAPI.Unmarshal(payload, &elements); err != nil {
		return nil, false
	}

	return elements, true
}

func formatTimestamp(t time.Time) string {
	return core.ToTimestamp(t).Format(timestampLayout)
}

func parseTimestamp(s string) (core.Timestamp, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return core.Timestamp{}, err
	}

	return core.ToTimestamp(t), nil
}
