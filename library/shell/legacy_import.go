package shell

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/library-desk-go/library/core"
	"github.com/AntonStoeckl/library-desk-go/recordstore"
)

// Keys under which the browser version of the desk kept its data.
const (
	LegacyBooksKey = "school_library_books"
	LegacyLoansKey = "school_library_loans"
)

const logMsgLegacyImported = "legacy records imported"

// ErrImportTargetNotEmpty is returned when books or loans already exist in the target store.
var ErrImportTargetNotEmpty = errors.New("legacy import needs an empty target store")

// ImportReport summarizes a legacy import.
type ImportReport struct {
	Books            int
	Loans            int
	DuplicateBooks   int
	UnknownBookLoans int
	MalformedSkipped int
	LegacyBooksFound bool
	LegacyLoansFound bool
}

// ImportLegacy copies the legacy collections from source into the books and loans documents of r.
//
// The legacy data was written without any checks, so repeated registrations of the same ISBN are
// collapsed to the first one. Loans of ISBNs that were never registered are skipped and counted,
// the others are taken as they are. Legacy loans were never returned, and their "dueDate" field
// is read as the due date. The import refuses to run when r already holds
// books or loans, which makes running it twice harmless.
func (r *Records) ImportLegacy(ctx context.Context, source RecordStore) (ImportReport, error) {
	report := ImportReport{}

	_, booksRevision, err := r.LoadBooks(ctx)
	if err != nil {
		return report, err
	}

	_, loansRevision, err := r.LoadLoans(ctx)
	if err != nil {
		return report, err
	}

	if booksRevision != recordstore.NoRevision || loansRevision != recordstore.NoRevision {
		return report, ErrImportTargetNotEmpty
	}

	legacyBooks, err := source.Load(ctx, LegacyBooksKey)
	if err != nil {
		return report, err
	}

	legacyLoans, err := source.Load(ctx, LegacyLoansKey)
	if err != nil {
		return report, err
	}

	report.LegacyBooksFound = !legacyBooks.IsAbsent()
	report.LegacyLoansFound = !legacyLoans.IsAbsent()

	decodedBooks := decodeBooks(legacyBooks.PayloadJSON)
	r.reportMalformed(ctx, LegacyBooksKey, decodedBooks.documentMalformed, decodedBooks.skipped)

	decodedLoans := decodeLoans(legacyLoans.PayloadJSON)
	r.reportMalformed(ctx, LegacyLoansKey, decodedLoans.documentMalformed, decodedLoans.skipped)

	books := make(core.Books, 0, len(decodedBooks.records))
	for _, book := range decodedBooks.records {
		if books.Contains(book.ISBN) {
			report.DuplicateBooks++
			continue
		}

		books = append(books, book)
	}

	loans := make(core.Loans, 0, len(decodedLoans.records))
	for _, loan := range decodedLoans.records {
		if !books.Contains(loan.ISBN) {
			report.UnknownBookLoans++
			continue
		}

		loans = append(loans, loan)
	}

	report.Books = len(books)
	report.Loans = len(loans)
	report.MalformedSkipped = decodedBooks.skipped + decodedLoans.skipped

	// Books first, so no loan is ever persisted before the book it references.
	if err = r.SaveBooks(ctx, books, recordstore.NoRevision); err != nil {
		return report, err
	}

	if err = r.SaveLoans(ctx, loans, recordstore.NoRevision); err != nil {
		return report, err
	}

	logInfo(ctx, r.logger, r.contextualLogger, logMsgLegacyImported,
		"books", report.Books,
		"loans", report.Loans,
		"duplicate_books", report.DuplicateBooks,
		"unknown_book_loans", report.UnknownBookLoans,
	)

	return report, nil
}
