package desk

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AntonStoeckl/library-desk-go/library/catalog"
	"github.com/AntonStoeckl/library-desk-go/library/core"
	"github.com/AntonStoeckl/library-desk-go/library/features/command/lendbook"
	"github.com/AntonStoeckl/library-desk-go/library/features/command/registerbook"
	"github.com/AntonStoeckl/library-desk-go/library/features/command/returnbook"
	"github.com/AntonStoeckl/library-desk-go/library/features/query/availability"
	"github.com/AntonStoeckl/library-desk-go/library/features/query/bookshelf"
	"github.com/AntonStoeckl/library-desk-go/library/features/query/overdueloans"
	"github.com/AntonStoeckl/library-desk-go/library/features/query/recentbooks"
	"github.com/AntonStoeckl/library-desk-go/library/shell"
	"github.com/AntonStoeckl/library-desk-go/library/shell/observable"
	"github.com/AntonStoeckl/library-desk-go/recordstore"
)

const failureReasonNoMetadata = "the catalog has no metadata for this isbn"

var (
	// ErrNilRecords is returned when NewService gets no Records.
	ErrNilRecords = errors.New("records must not be nil")

	// ErrNilClock is returned for a nil clock function.
	ErrNilClock = errors.New("clock must not be nil")

	// ErrNilLoanIDGenerator is returned for a nil loan ID generator.
	ErrNilLoanIDGenerator = errors.New("loan id generator must not be nil")
)

// Records is the persistence boundary of the Service.
// *shell.Records implements it.
type Records interface {
	LoadBooks(ctx context.Context) (core.Books, recordstore.RevisionUint, error)
	LoadLoans(ctx context.Context) (core.Loans, recordstore.RevisionUint, error)
	SaveBooks(ctx context.Context, books core.Books, expectedRevision recordstore.RevisionUint) error
	SaveLoans(ctx context.Context, loans core.Loans, expectedRevision recordstore.RevisionUint) error
}

// CatalogLookup finds metadata for an ISBN. *catalog.Client implements it.
type CatalogLookup interface {
	Lookup(ctx context.Context, isbn string) (catalog.Metadata, bool)
}

// Service is the library desk domain service.
type Service struct {
	registerBookCheck registerbook.CommandHandler

	// Command handlers.
	registerBookHandler *observable.CommandWrapper[registerbook.Command, core.Book]
	lendBookHandler     *observable.CommandWrapper[lendbook.Command, core.Loan]
	returnBookHandler   *observable.CommandWrapper[returnbook.Command, core.Loan]

	// Query handlers.
	availabilityHandler *observable.QueryWrapper[availability.Query, availability.BookAvailability]
	overdueLoansHandler *observable.QueryWrapper[overdueloans.Query, core.OverdueEntries]
	recentBooksHandler  *observable.QueryWrapper[recentbooks.Query, core.Books]
	bookshelfHandler    *observable.QueryWrapper[bookshelf.Query, bookshelf.Bookshelf]

	catalog      CatalogLookup
	students     core.StudentDirectory
	now          func() time.Time
	newLoanID    func() string
	retryOptions []shell.RetryOption

	logger           shell.Logger
	contextualLogger shell.ContextualLogger
	metricsCollector shell.MetricsCollector
	tracingCollector shell.TracingCollector
}

// NewService creates a Service on top of records.
func NewService(records Records, opts ...Option) (*Service, error) {
	if records == nil {
		return nil, ErrNilRecords
	}

	s := &Service{
		now:       time.Now,
		newLoanID: newULID,
		students:  core.StudentDirectory{},
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	registerBook := registerbook.NewCommandHandler(records,
		registerbook.WithRetryOptions(s.retryOptionsFor(registerbook.Command{}.CommandType())...))
	s.registerBookCheck = registerBook

	var err error

	s.registerBookHandler, err = observable.NewCommandWrapper(
		shell.CoreCommandHandler[registerbook.Command, core.Book](registerBook),
		commandOptions[registerbook.Command, core.Book](s)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create RegisterBook handler: %w", err)
	}

	s.lendBookHandler, err = observable.NewCommandWrapper(
		shell.CoreCommandHandler[lendbook.Command, core.Loan](
			lendbook.NewCommandHandler(records,
				lendbook.WithRetryOptions(s.retryOptionsFor(lendbook.Command{}.CommandType())...))),
		commandOptions[lendbook.Command, core.Loan](s)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create LendBook handler: %w", err)
	}

	s.returnBookHandler, err = observable.NewCommandWrapper(
		shell.CoreCommandHandler[returnbook.Command, core.Loan](
			returnbook.NewCommandHandler(records,
				returnbook.WithRetryOptions(s.retryOptionsFor(returnbook.Command{}.CommandType())...))),
		commandOptions[returnbook.Command, core.Loan](s)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create ReturnBook handler: %w", err)
	}

	s.availabilityHandler, err = observable.NewQueryWrapper(
		shell.CoreQueryHandler[availability.Query, availability.BookAvailability](availability.NewQueryHandler(records)),
		queryOptions[availability.Query, availability.BookAvailability](s)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create BookAvailability handler: %w", err)
	}

	s.overdueLoansHandler, err = observable.NewQueryWrapper(
		shell.CoreQueryHandler[overdueloans.Query, core.OverdueEntries](overdueloans.NewQueryHandler(records)),
		queryOptions[overdueloans.Query, core.OverdueEntries](s)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OverdueLoans handler: %w", err)
	}

	s.recentBooksHandler, err = observable.NewQueryWrapper(
		shell.CoreQueryHandler[recentbooks.Query, core.Books](recentbooks.NewQueryHandler(records)),
		queryOptions[recentbooks.Query, core.Books](s)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create RecentBooks handler: %w", err)
	}

	s.bookshelfHandler, err = observable.NewQueryWrapper(
		shell.CoreQueryHandler[bookshelf.Query, bookshelf.Bookshelf](bookshelf.NewQueryHandler(records)),
		queryOptions[bookshelf.Query, bookshelf.Bookshelf](s)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bookshelf handler: %w", err)
	}

	return s, nil
}

// RegisterBook registers a book with the given metadata and persists it.
// It fails with InvalidInput for a blank ISBN and DuplicateIsbn if the ISBN is already registered.
func (s *Service) RegisterBook(ctx context.Context, isbn, title, author string) (core.Book, error) {
	return s.registerBookHandler.Handle(ctx, registerbook.BuildCommand(isbn, title, author, s.now()))
}

// RegisterBookWithLookup registers a book and fills in missing metadata from the catalog.
// The catalog is only asked when no title is given. If it has nothing, the book is registered with an empty title.
// The lookup happens before the load-decide-save cycle, which validates again when saving.
func (s *Service) RegisterBookWithLookup(ctx context.Context, isbn, title string) (core.Book, error) {
	command := registerbook.BuildCommand(isbn, title, "", s.now())
	if command.Title != "" {
		return s.registerBookHandler.Handle(ctx, command)
	}

	if err := s.registerBookCheck.Check(ctx, command); err != nil {
		return core.Book{}, err
	}

	author := ""
	if metadata, ok := s.lookup(ctx, command.ISBN); ok {
		title, author = metadata.Title, metadata.Author
	}

	return s.registerBookHandler.Handle(ctx, registerbook.BuildCommand(command.ISBN, title, author, s.now()))
}

// ResolveAutoRegistration proposes the Book that RegisterBookWithLookup would create for isbn.
// It never writes anything. It fails with InvalidInput, DuplicateIsbn, or LookupUnavailable
// when the catalog has no metadata.
func (s *Service) ResolveAutoRegistration(ctx context.Context, isbn string) (core.Book, error) {
	command := registerbook.BuildCommand(isbn, "", "", s.now())

	if err := s.registerBookCheck.Check(ctx, command); err != nil {
		return core.Book{}, err
	}

	metadata, ok := s.lookup(ctx, command.ISBN)
	if !ok {
		return core.Book{}, core.NewDomainError(core.KindLookupUnavailable, command.ISBN, failureReasonNoMetadata)
	}

	return core.BuildBook(command.ISBN, metadata.Title, metadata.Author, command.RegisteredAt), nil
}

// LendBook lends the book to student for one loan period starting now.
// It fails with InvalidInput, UnknownBook or AlreadyLent.
func (s *Service) LendBook(ctx context.Context, isbn, student string) (core.Loan, error) {
	return s.lendBookHandler.Handle(ctx, lendbook.BuildCommand(isbn, student, s.newLoanID(), s.now()))
}

// ReturnBook marks the most recent active loan of the book as returned.
// It fails with NoActiveLoan if the book is not lent.
func (s *Service) ReturnBook(ctx context.Context, isbn string) (core.Loan, error) {
	return s.returnBookHandler.Handle(ctx, returnbook.BuildCommand(isbn, s.now()))
}

// IsAvailable reports whether the book is registered and not lent.
// An unregistered ISBN is simply not available.
func (s *Service) IsAvailable(ctx context.Context, isbn string) (bool, error) {
	result, err := s.availabilityHandler.Handle(ctx, availability.BuildQuery(isbn))
	if err != nil {
		return false, err
	}

	return result.Available, nil
}

// ListOverdue returns the active loans due strictly before asOf, in the order they were made.
func (s *Service) ListOverdue(ctx context.Context, asOf time.Time) (core.OverdueEntries, error) {
	return s.overdueLoansHandler.Handle(ctx, overdueloans.BuildQuery(asOf))
}

// ListRecentBooks returns up to limit books, newest registration first.
// A limit of zero or less returns all books.
func (s *Service) ListRecentBooks(ctx context.Context, limit int) (core.Books, error) {
	return s.recentBooksHandler.Handle(ctx, recentbooks.BuildQuery(limit))
}

// ListBookshelf returns the same books as ListRecentBooks, each with its availability.
// Books and loans are read once, so all entries reflect the same state.
func (s *Service) ListBookshelf(ctx context.Context, limit int) (bookshelf.Bookshelf, error) {
	return s.bookshelfHandler.Handle(ctx, bookshelf.BuildQuery(limit))
}

// StudentName returns the display name for a student ID, or the ID itself if it is unknown.
func (s *Service) StudentName(id core.StudentIDString) string {
	return s.students.DisplayName(id)
}

// Now returns the current time of the service clock.
func (s *Service) Now() time.Time {
	return s.now()
}

func (s *Service) lookup(ctx context.Context, isbn core.ISBNString) (catalog.Metadata, bool) {
	if s.catalog == nil {
		return catalog.Metadata{}, false
	}

	return s.catalog.Lookup(ctx, isbn)
}

// retryOptionsFor returns the configured retry options plus retry metrics labeled with commandType.
func (s *Service) retryOptionsFor(commandType string) []shell.RetryOption {
	options := append([]shell.RetryOption{}, s.retryOptions...)

	if s.metricsCollector != nil {
		options = append(options, shell.WithMetrics(s.metricsCollector, commandType))
	}

	return options
}

func commandOptions[C shell.Command, R any](s *Service) []observable.CommandOption[C, R] {
	return []observable.CommandOption[C, R]{
		observable.WithCommandLogging[C, R](s.logger),
		observable.WithCommandContextualLogging[C, R](s.contextualLogger),
		observable.WithCommandMetrics[C, R](s.metricsCollector),
		observable.WithCommandTracing[C, R](s.tracingCollector),
	}
}

func queryOptions[Q shell.Query, R any](s *Service) []observable.QueryOption[Q, R] {
	return []observable.QueryOption[Q, R]{
		observable.WithQueryLogging[Q, R](s.logger),
		observable.WithQueryContextualLogging[Q, R](s.contextualLogger),
		observable.WithQueryMetrics[Q, R](s.metricsCollector),
		observable.WithQueryTracing[Q, R](s.tracingCollector),
	}
}
