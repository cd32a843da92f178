package shell

import (
	"context"

	"github.com/AntonStoeckl/library-desk-go/recordstore"
)

// RecordStore is what Records needs from a recordstore engine.
// fileengine, memengine and postgresengine all satisfy it.
type RecordStore interface {
	Load(ctx context.Context, key string) (recordstore.StorableCollection, error)
	Save(ctx context.Context, collection recordstore.StorableCollection, expectedRevision recordstore.RevisionUint) error
}

// Command represents the contract for all command types of the desk.
// The CommandType method enables polymorphic handling and observability instrumentation.
type Command interface {
	CommandType() string
}

// Query represents the contract for all query types of the desk.
type Query interface {
	QueryType() string
}

// CoreCommandHandler defines the contract for components that process commands with pure business logic.
// Handlers orchestrate the complete command workflow: loading records, deciding, and saving.
// R is the record the command produced, e.g. the registered Book.
// Handlers return HandlerResult containing execution metadata (retry info) for the observability wrapper.
type CoreCommandHandler[C Command, R any] interface {
	Handle(ctx context.Context, command C) (R, HandlerResult, error)
}

// CoreQueryHandler defines the contract for components that load records and project a query result.
// Implementations should focus purely on business logic without observability concerns.
type CoreQueryHandler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}
