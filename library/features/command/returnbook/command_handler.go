package returnbook

import (
	"context"
	"slices"

	"github.com/AntonStoeckl/library-desk-go/library/core"
	"github.com/AntonStoeckl/library-desk-go/library/shell"
	"github.com/AntonStoeckl/library-desk-go/recordstore"
)

// Records defines the interface needed by the CommandHandler for record store operations.
type Records interface {
	LoadLoans(ctx context.Context) (core.Loans, recordstore.RevisionUint, error)
	SaveLoans(ctx context.Context, loans core.Loans, expectedRevision recordstore.RevisionUint) error
}

// CommandHandler runs Load -> Decide -> Save for ReturnBook, retrying on revision conflicts.
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

// Handle executes the command and returns the closed Loan.
func (h CommandHandler) Handle(ctx context.Context, command Command) (core.Loan, shell.HandlerResult, error) {
	var loan core.Loan

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		returned, execErr := h.executeCommand(retryCtx, command)
		loan = returned

		return execErr
	}, h.retryOptions...)

	if err != nil {
		return core.Loan{}, shell.NewHandlerResult(retryMetrics), err
	}

	return loan, shell.NewHandlerResult(retryMetrics), nil
}

func (h CommandHandler) executeCommand(ctx context.Context, command Command) (core.Loan, error) {
	loans, revision, err := h.records.LoadLoans(ctx)
	if err != nil {
		return core.Loan{}, err
	}

	result := Decide(loans, command)
	if err = result.HasError(); err != nil {
		return core.Loan{}, err
	}

	updated := slices.Clone(loans)
	updated[result.Value.Position] = result.Value.Loan

	if err = h.records.SaveLoans(ctx, updated, revision); err != nil {
		return core.Loan{}, err
	}

	return result.Value.Loan, nil
}
