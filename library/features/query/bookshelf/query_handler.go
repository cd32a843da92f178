package bookshelf

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

// QueryHandler loads books and loans once and projects the bookshelf.
type QueryHandler struct {
	records Records
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(records Records) QueryHandler {
	return QueryHandler{records: records}
}

// Handle executes the query.
func (h QueryHandler) Handle(ctx context.Context, query Query) (Bookshelf, error) {
	books, _, err := h.records.LoadBooks(ctx)
	if err != nil {
		return Bookshelf{}, err
	}

	loans, _, err := h.records.LoadLoans(ctx)
	if err != nil {
		return Bookshelf{}, err
	}

	return ProjectBookshelf(books, loans, query), nil
}
