package recentbooks

import (
	"context"

	"github.com/AntonStoeckl/library-desk-go/library/core"
	"github.com/AntonStoeckl/library-desk-go/recordstore"
)

// Records defines the interface needed by the QueryHandler.
type Records interface {
	LoadBooks(ctx context.Context) (core.Books, recordstore.RevisionUint, error)
}

// QueryHandler loads the books and projects the most recent ones.
type QueryHandler struct {
	records Records
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(records Records) QueryHandler {
	return QueryHandler{records: records}
}

// Handle executes the query.
func (h QueryHandler) Handle(ctx context.Context, query Query) (core.Books, error) {
	books, _, err := h.records.LoadBooks(ctx)
	if err != nil {
		return nil, err
	}

	return ProjectRecentBooks(books, query), nil
}
