package registerbook

import (
	"context"

	"github.com/AntonStoeckl/library-desk-go/library/core"
	"github.com/AntonStoeckl/library-desk-go/library/shell"
	"github.com/AntonStoeckl/library-desk-go/recordstore"
)

// Records defines the interface needed by the CommandHandler for record store operations.
type Records interface {
	LoadBooks(ctx context.Context) (core.Books, recordstore.RevisionUint, error)
	SaveBooks(ctx context.Context, books core.Books, expectedRevision recordstore.RevisionUint) error
}

// CommandHandler runs Load -> Decide -> Save for RegisterBook, retrying on revision conflicts.
type CommandHandler struct {
	records      Records
	retryOptions []shell.RetryOption
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithRetryOptions sets a custom retry configuration for the handler.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(h *CommandHandler) {
		h.retryOptions = opts
	}
}

// NewCommandHandler creates a new CommandHandler with optional configuration.
func NewCommandHandler(records Records, opts ...Option) CommandHandler {
	handler := CommandHandler{
		records: records,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle executes the command and returns the registered Book.
func (h CommandHandler) Handle(ctx context.Context, command Command) (core.Book, shell.HandlerResult, error) {
	var book core.Book

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		registered, execErr := h.executeCommand(retryCtx, command)
		book = registered

		return execErr
	}, h.retryOptions...)

	if err != nil {
		return core.Book{}, shell.NewHandlerResult(retryMetrics), err
	}

	return book, shell.NewHandlerResult(retryMetrics), nil
}

// Check runs the decision against the current records without saving anything.
// It lets callers fail early before doing expensive work like a catalog lookup.
func (h CommandHandler) Check(ctx context.Context, command Command) error {
	books, _, err := h.records.LoadBooks(ctx)
	if err != nil {
		return err
	}

	return Decide(books, command).HasError()
}

func (h CommandHandler) executeCommand(ctx context.Context, command Command) (core.Book, error) {
	books, revision, err := h.records.LoadBooks(ctx)
	if err != nil {
		return core.Book{}, err
	}

	result := Decide(books, command)
	if err = result.HasError(); err != nil {
		return core.Book{}, err
	}

	if err = h.records.SaveBooks(ctx, append(books, result.Value), revision); err != nil {
		return core.Book{}, err
	}

	return result.Value, nil
}
