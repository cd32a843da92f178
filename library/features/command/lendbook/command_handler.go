package lendbook

import (
	"context"

	"github.com/AntonStoeckl/library-desk-go/library/core"
	"github.com/AntonStoeckl/library-desk-go/library/shell"
	"github.com/AntonStoeckl/library-desk-go/recordstore"
)

// Records defines the interface needed by the CommandHandler for record store operations.
type Records interface {
	LoadBooks(ctx context.Context) (core.Books, recordstore.RevisionUint, error)
	LoadLoans(ctx context.Context) (core.Loans, recordstore.RevisionUint, error)
	SaveLoans(ctx context.Context, loans core.Loans, expectedRevision recordstore.RevisionUint) error
}

// CommandHandler orchestrates the command processing workflow with pure business logic and retry.
// It handles the workflow: Load -> Decide -> Save.
// External wrappers handle all observability concerns.
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

// Handle executes the command and returns the created Loan.
// A revision conflict on the loans document reloads the records and decides again.
func (h CommandHandler) Handle(ctx context.Context, command Command) (core.Loan, shell.HandlerResult, error) {
	var loan core.Loan

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		created, execErr := h.executeCommand(retryCtx, command)
		loan = created

		return execErr
	}, h.retryOptions...)

	if err != nil {
		return core.Loan{}, shell.NewHandlerResult(retryMetrics), err
	}

	return loan, shell.NewHandlerResult(retryMetrics), nil
}

// executeCommand contains the core command processing logic that can be retried.
func (h CommandHandler) executeCommand(ctx context.Context, command Command) (core.Loan, error) {
	books, _, err := h.records.LoadBooks(ctx)
	if err != nil {
		return core.Loan{}, err
	}

	loans, loansRevision, err := h.records.LoadLoans(ctx)
	if err != nil {
		return core.Loan{}, err
	}

	result := Decide(books, loans, command)
	if err = result.HasError(); err != nil {
		return core.Loan{}, err
	}

	if err = h.records.SaveLoans(ctx, append(loans, result.Value), loansRevision); err != nil {
		return core.Loan{}, err
	}

	return result.Value, nil
}
