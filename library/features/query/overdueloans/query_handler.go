package overdueloans

import (
	"context"

	"github.com/AntonStoeckl/library-desk-go/library/core"
	"github.com/AntonStoeckl/library-desk-go/recordstore"
)

// Records defines the interface needed by the QueryHandler.
type Records interface {
	LoadBooks(ctx context.Context) (core.Books, recordstore.RevisionUint, error)
	LoadLoans(ctx context.Context) (core.Loans, recordstore.RevisionUint, error)
}

// QueryHandler loads the records and projects the overdue loans.
type QueryHandler struct {
	records Records
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(records Records) QueryHandler {
	return QueryHandler{records: records}
}

// Handle executes the query.
func (h QueryHandler) Handle(ctx context.Context, query Query) (core.OverdueEntries, error) {
	books, _, err := h.records.LoadBooks(ctx)
	if err != nil {
		return nil, err
	}

	loans, _, err := h.records.LoadLoans(ctx)
	if err != nil {
		return nil, err
	}

	return ProjectOverdueLoans(books, loans, query), nil
}
