package deskapi

import (
	"context"
	"errors"
	"time"

	"github.com/AntonStoeckl/library-desk-go/library/core"
	"github.com/AntonStoeckl/library-desk-go/library/features/query/bookshelf"
	"github.com/AntonStoeckl/library-desk-go/library/shell"
)

const defaultRecentLimit = 10

// ErrNilDesk is returned when New gets no Desk.
var ErrNilDesk = errors.New("desk must not be nil")

// Desk is what the API needs from the domain service. *desk.Service implements it.
type Desk interface {
	RegisterBook(ctx context.Context, isbn, title, author string) (core.Book, error)
	RegisterBookWithLookup(ctx context.Context, isbn, title string) (core.Book, error)
	ResolveAutoRegistration(ctx context.Context, isbn string) (core.Book, error)
	LendBook(ctx context.Context, isbn, student string) (core.Loan, error)
	ReturnBook(ctx context.Context, isbn string) (core.Loan, error)
	IsAvailable(ctx context.Context, isbn string) (bool, error)
	ListOverdue(ctx context.Context, asOf time.Time) (core.OverdueEntries, error)
	ListBookshelf(ctx context.Context, limit int) (bookshelf.Bookshelf, error)
	StudentName(id core.StudentIDString) string
	Now() time.Time
}

// Handler holds the dependencies of the HTTP handlers.
type Handler struct {
	desk        Desk
	pinGate     *PINGate
	env         string
	version     string
	recentLimit int
	logger      shell.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithPINGate protects the registration endpoints. Without a gate they are open.
func WithPINGate(gate *PINGate) Option {
	return func(h *Handler) {
		h.pinGate = gate
	}
}

// WithRecentLimit sets how many books GET /v1/books returns when no limit is given.
func WithRecentLimit(limit int) Option {
	return func(h *Handler) {
		if limit > 0 {
			h.recentLimit = limit
		}
	}
}

// WithSystemInfo sets the environment and version reported by the healthcheck.
func WithSystemInfo(env, version string) Option {
	return func(h *Handler) {
		h.env = env
		h.version = version
	}
}

// WithLogger sets the logger for server errors.
func WithLogger(logger shell.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// New creates a Handler for desk.
func New(desk Desk, opts ...Option) (*Handler, error) {
	if desk == nil {
		return nil, ErrNilDesk
	}

	h := &Handler{
		desk:        desk,
		env:         "development",
		version:     "dev",
		recentLimit: defaultRecentLimit,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h, nil
}
