package desk_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-desk-go/library/catalog"
	"github.com/AntonStoeckl/library-desk-go/library/core"
	"github.com/AntonStoeckl/library-desk-go/library/desk"
	"github.com/AntonStoeckl/library-desk-go/library/shell"
	"github.com/AntonStoeckl/library-desk-go/recordstore"
	"github.com/AntonStoeckl/library-desk-go/recordstore/memengine"
	"github.com/AntonStoeckl/library-desk-go/testutil/observability/testdoubles"
)

var deskStart = time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

func Test_Scenario_Dune(t *testing.T) {
	// arrange
	service, _, clock := givenService(t)
	ctx := context.Background()

	// act & assert
	book, err := service.RegisterBook(ctx, "978-1", "Dune", "")
	require.NoError(t, err)
	assert.Equal(t, "Dune", book.Title)

	firstLoan, err := service.LendBook(ctx, "978-1", "001")
	require.NoError(t, err)
	assert.Equal(t, firstLoan.LentAt.Add(14*24*time.Hour), firstLoan.DueAt)
	assert.False(t, firstLoan.Returned)
	assert.NotEmpty(t, firstLoan.ID)

	clock.Advance(time.Hour)
	_, err = service.LendBook(ctx, "978-1", "002")
	assert.ErrorIs(t, err, core.ErrAlreadyLent)

	returned, err := service.ReturnBook(ctx, "978-1")
	require.NoError(t, err)
	assert.True(t, returned.Returned)
	assert.Equal(t, firstLoan.ID, returned.ID)

	secondLoan, err := service.LendBook(ctx, "978-1", "002")
	require.NoError(t, err)
	assert.Equal(t, "002", secondLoan.Student)
}

func Test_Scenario_LendUnregisteredBook(t *testing.T) {
	// arrange
	service, records, _ := givenService(t)
	ctx := context.Background()

	// act
	_, err := service.LendBook(ctx, "000-0", "001")

	// assert
	assert.ErrorIs(t, err, core.ErrUnknownBook)
	loans, _, loadErr := records.LoadLoans(ctx)
	require.NoError(t, loadErr)
	assert.Empty(t, loans)
}

func Test_Scenario_OverdueBoundary(t *testing.T) {
	// arrange
	service, _, _ := givenService(t)
	ctx := context.Background()
	_, err := service.RegisterBook(ctx, "978-1", "Dune", "")
	require.NoError(t, err)
	loan, err := service.LendBook(ctx, "978-1", "001")
	require.NoError(t, err)

	// act
	overdueLater, err := service.ListOverdue(ctx, loan.LentAt.Add(15*24*time.Hour))
	require.NoError(t, err)
	overdueEarlier, err := service.ListOverdue(ctx, loan.LentAt.Add(13*24*time.Hour))
	require.NoError(t, err)
	overdueAtDue, err := service.ListOverdue(ctx, loan.DueAt)
	require.NoError(t, err)

	// assert
	require.Len(t, overdueLater, 1)
	assert.Equal(t, core.OverdueEntry{ISBN: "978-1", Student: "001", Title: "Dune", DueAt: loan.DueAt}, overdueLater[0])
	assert.Empty(t, overdueEarlier)
	assert.Empty(t, overdueAtDue)
}

func Test_RegisterBook_Errors(t *testing.T) {
	// arrange
	service, records, _ := givenService(t)
	ctx := context.Background()
	_, err := service.RegisterBook(ctx, "978-1", "Dune", "")
	require.NoError(t, err)

	// act
	_, blankErr := service.RegisterBook(ctx, "   ", "Nothing", "")
	_, duplicateErr := service.RegisterBook(ctx, " 978-1 ", "Dune Messiah", "")

	// assert
	assert.ErrorIs(t, blankErr, core.ErrInvalidInput)
	assert.ErrorIs(t, duplicateErr, core.ErrDuplicateIsbn)
	books, _, loadErr := records.LoadBooks(ctx)
	require.NoError(t, loadErr)
	require.Len(t, books, 1)
	assert.Equal(t, "Dune", books[0].Title)
}

func Test_LendBook_InvalidInput(t *testing.T) {
	// arrange
	service, _, _ := givenService(t)
	ctx := context.Background()
	_, err := service.RegisterBook(ctx, "978-1", "Dune", "")
	require.NoError(t, err)

	// act
	_, missingISBN := service.LendBook(ctx, "", "001")
	_, missingStudent := service.LendBook(ctx, "978-1", " ")

	// assert
	assert.ErrorIs(t, missingISBN, core.ErrInvalidInput)
	assert.ErrorIs(t, missingStudent, core.ErrInvalidInput)
}

func Test_ReturnBook_NoActiveLoan(t *testing.T) {
	// arrange
	service, _, _ := givenService(t)
	ctx := context.Background()
	_, err := service.RegisterBook(ctx, "978-1", "Dune", "")
	require.NoError(t, err)

	// act
	_, err = service.ReturnBook(ctx, "978-1")

	// assert
	assert.ErrorIs(t, err, core.ErrNoActiveLoan)
}

func Test_IsAvailable(t *testing.T) {
	// arrange
	service, _, _ := givenService(t)
	ctx := context.Background()
	_, err := service.RegisterBook(ctx, "978-1", "Dune", "")
	require.NoError(t, err)
	_, err = service.RegisterBook(ctx, "978-2", "Emma", "")
	require.NoError(t, err)
	_, err = service.LendBook(ctx, "978-2", "001")
	require.NoError(t, err)

	// act
	registeredFree, err1 := service.IsAvailable(ctx, "978-1")
	registeredLent, err2 := service.IsAvailable(ctx, "978-2")
	unregistered, err3 := service.IsAvailable(ctx, "000-0")

	// assert
	require.NoError(t, err1)
	require.NoError(t, err2)
	require.NoError(t, err3)
	assert.True(t, registeredFree)
	assert.False(t, registeredLent)
	assert.False(t, unregistered)
}

func Test_ListRecentBooks(t *testing.T) {
	// arrange
	service, _, clock := givenService(t)
	ctx := context.Background()
	for _, isbn := range []string{"1", "2", "3"} {
		_, err := service.RegisterBook(ctx, isbn, "Title "+isbn, "")
		require.NoError(t, err)
		clock.Advance(time.Minute)
	}

	// act
	limited, err := service.ListRecentBooks(ctx, 2)
	require.NoError(t, err)
	all, err := service.ListRecentBooks(ctx, 0)
	require.NoError(t, err)

	// assert
	assert.Equal(t, []string{"3", "2"}, isbnsOf(limited))
	assert.Equal(t, []string{"3", "2", "1"}, isbnsOf(all))
}

func Test_ListBookshelf_ReadsRecordsOnce(t *testing.T) {
	// arrange
	records := &countingRecords{Records: givenRecords(t)}
	clock := &fakeClock{now: deskStart}
	service, err := desk.NewService(records, desk.WithClock(clock.Now))
	require.NoError(t, err)
	ctx := context.Background()
	for _, isbn := range []string{"1", "2", "3"} {
		_, err = service.RegisterBook(ctx, isbn, "Title "+isbn, "")
		require.NoError(t, err)
	}
	_, err = service.LendBook(ctx, "2", "001")
	require.NoError(t, err)
	records.Reset()

	// act
	shelf, err := service.ListBookshelf(ctx, 0)

	// assert
	require.NoError(t, err)
	require.Equal(t, 3, shelf.Count)
	assert.Equal(t, "3", shelf.Books[0].Book.ISBN)
	assert.True(t, shelf.Books[0].Available)
	assert.Equal(t, "2", shelf.Books[1].Book.ISBN)
	assert.False(t, shelf.Books[1].Available)
	assert.True(t, shelf.Books[2].Available)

	bookLoads, loanLoads := records.Loads()
	assert.Equal(t, 1, bookLoads)
	assert.Equal(t, 1, loanLoads)
}

func Test_RegisterBookWithLookup_UsesCatalogWhenTitleMissing(t *testing.T) {
	// arrange
	lookup := &catalogStub{metadata: map[string]catalog.Metadata{"978-1": {Title: "Dune", Author: "Frank Herbert"}}}
	service, _, _ := givenService(t, desk.WithCatalog(lookup))

	// act
	book, err := service.RegisterBookWithLookup(context.Background(), "978-1", "")

	// assert
	require.NoError(t, err)
	assert.Equal(t, "Dune", book.Title)
	assert.Equal(t, "Frank Herbert", book.Author)
	assert.Equal(t, 1, lookup.Calls())
}

func Test_RegisterBookWithLookup_SkipsCatalogWhenTitleGiven(t *testing.T) {
	// arrange
	lookup := &catalogStub{metadata: map[string]catalog.Metadata{"978-1": {Title: "Dune", Author: "Frank Herbert"}}}
	service, _, _ := givenService(t, desk.WithCatalog(lookup))

	// act
	book, err := service.RegisterBookWithLookup(context.Background(), "978-1", "My Title")

	// assert
	require.NoError(t, err)
	assert.Equal(t, "My Title", book.Title)
	assert.Empty(t, book.Author)
	assert.Zero(t, lookup.Calls())
}

func Test_RegisterBookWithLookup_FallsBackToEmptyTitle(t *testing.T) {
	// arrange
	lookup := &catalogStub{}
	service, _, _ := givenService(t, desk.WithCatalog(lookup))

	// act
	book, err := service.RegisterBookWithLookup(context.Background(), "978-9", "")

	// assert
	require.NoError(t, err)
	assert.Equal(t, "978-9", book.ISBN)
	assert.Empty(t, book.Title)
	assert.Equal(t, 1, lookup.Calls())
}

func Test_RegisterBookWithLookup_DuplicateFailsBeforeLookup(t *testing.T) {
	// arrange
	lookup := &catalogStub{}
	service, _, _ := givenService(t, desk.WithCatalog(lookup))
	_, err := service.RegisterBook(context.Background(), "978-1", "Dune", "")
	require.NoError(t, err)

	// act
	_, err = service.RegisterBookWithLookup(context.Background(), "978-1", "")

	// assert
	assert.ErrorIs(t, err, core.ErrDuplicateIsbn)
	assert.Zero(t, lookup.Calls())
}

func Test_ResolveAutoRegistration(t *testing.T) {
	lookup := &catalogStub{metadata: map[string]catalog.Metadata{
		"978-1": {Title: "Dune", Author: "Frank Herbert"},
		"978-2": {Title: "Emma", Author: "Jane Austen"},
	}}

	testCases := []struct {
		name        string
		isbn        string
		expectedErr error
	}{
		{name: "proposal", isbn: "978-2"},
		{name: "blank isbn", isbn: " ", expectedErr: core.ErrInvalidInput},
		{name: "already registered", isbn: "978-1", expectedErr: core.ErrDuplicateIsbn},
		{name: "catalog has nothing", isbn: "978-3", expectedErr: core.ErrLookupUnavailable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			service, records, _ := givenService(t, desk.WithCatalog(lookup))
			ctx := context.Background()
			_, err := service.RegisterBook(ctx, "978-1", "Dune", "")
			require.NoError(t, err)

			// act
			book, err := service.ResolveAutoRegistration(ctx, tc.isbn)

			// assert
			books, _, loadErr := records.LoadBooks(ctx)
			require.NoError(t, loadErr)
			assert.Len(t, books, 1)

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, core.Book{ISBN: "978-2", Title: "Emma", Author: "Jane Austen", RegisteredAt: deskStart}, book)
		})
	}
}

func Test_ResolveAutoRegistration_WithoutCatalog(t *testing.T) {
	// arrange
	service, _, _ := givenService(t)

	// act
	_, err := service.ResolveAutoRegistration(context.Background(), "978-1")

	// assert
	assert.ErrorIs(t, err, core.ErrLookupUnavailable)
	assert.Equal(t, core.KindLookupUnavailable, core.KindOf(err))
}

func Test_StudentName(t *testing.T) {
	// arrange
	service, _, _ := givenService(t, desk.WithStudents(core.StudentDirectory{"001": "Ada Lovelace"}))

	// act & assert
	assert.Equal(t, "Ada Lovelace", service.StudentName("001"))
	assert.Equal(t, "002", service.StudentName("002"))
}

func Test_Service_IsObservable(t *testing.T) {
	// arrange
	logger := testdoubles.NewContextualLoggerSpy()
	metrics := testdoubles.NewMetricsCollectorSpy()
	tracing := testdoubles.NewTracingCollectorSpy()
	service, _, _ := givenService(t,
		desk.WithContextualLogger(logger),
		desk.WithMetrics(metrics),
		desk.WithTracing(tracing),
	)
	ctx := context.Background()

	// act
	_, err := service.RegisterBook(ctx, "978-1", "Dune", "")
	require.NoError(t, err)
	_, err = service.RegisterBook(ctx, "978-1", "Dune", "")
	require.Error(t, err)
	_, err = service.IsAvailable(ctx, "978-1")
	require.NoError(t, err)

	// assert
	assert.Len(t, metrics.DurationRecords(shell.CommandDurationMetric), 2)
	assert.Len(t, metrics.DurationRecords(shell.QueryDurationMetric), 1)
	assert.Len(t, tracing.SpansNamed(shell.SpanNameCommandHandle), 2)
	assert.Len(t, tracing.SpansNamed(shell.SpanNameQueryHandle), 1)
	assert.True(t, logger.HasInfoLog(shell.LogMsgCommandRejected))
}

func Test_RegisterBook_RecordsRetryAfterConflict(t *testing.T) {
	// arrange
	metrics := testdoubles.NewMetricsCollectorSpy()
	records := &conflictingRecords{Records: givenRecords(t), conflicts: 1}
	clock := &fakeClock{now: deskStart}
	service, err := desk.NewService(records,
		desk.WithClock(clock.Now),
		desk.WithMetrics(metrics),
		desk.WithRetryOptions(shell.WithBaseDelay(0)),
	)
	require.NoError(t, err)

	// act
	book, err := service.RegisterBook(context.Background(), "978-1", "Dune", "")

	// assert
	require.NoError(t, err)
	assert.Equal(t, "978-1", book.ISBN)

	retries := metrics.CounterRecords(shell.CommandRetriesMetric)
	require.Len(t, retries, 1)
	assert.Equal(t, "RegisterBook", retries[0].Labels[shell.LogAttrCommandType])
	assert.Equal(t, "1", retries[0].Labels[shell.LogAttrAttemptCount])
	assert.Empty(t, metrics.CounterRecords(shell.CommandMaxRetriesReachedMetric))
}

func Test_RegisterBook_RecordsExhaustedRetries(t *testing.T) {
	// arrange
	metrics := testdoubles.NewMetricsCollectorSpy()
	records := &conflictingRecords{Records: givenRecords(t), conflicts: 10}
	clock := &fakeClock{now: deskStart}
	service, err := desk.NewService(records,
		desk.WithClock(clock.Now),
		desk.WithMetrics(metrics),
		desk.WithRetryOptions(shell.WithBaseDelay(0), shell.WithMaxAttempts(3)),
	)
	require.NoError(t, err)

	// act
	_, err = service.RegisterBook(context.Background(), "978-1", "Dune", "")

	// assert
	assert.ErrorIs(t, err, recordstore.ErrConcurrencyConflict)
	assert.Len(t, metrics.CounterRecords(shell.CommandRetriesMetric), 2)

	exhausted := metrics.CounterRecords(shell.CommandMaxRetriesReachedMetric)
	require.Len(t, exhausted, 1)
	assert.Equal(t, "RegisterBook", exhausted[0].Labels[shell.LogAttrCommandType])
}

func Test_NewService_RejectsInvalidOptions(t *testing.T) {
	// arrange
	records := givenRecords(t)

	// act
	_, nilRecordsErr := desk.NewService(nil)
	_, nilClockErr := desk.NewService(records, desk.WithClock(nil))
	_, nilIDErr := desk.NewService(records, desk.WithLoanIDGenerator(nil))

	// assert
	assert.ErrorIs(t, nilRecordsErr, desk.ErrNilRecords)
	assert.ErrorIs(t, nilClockErr, desk.ErrNilClock)
	assert.ErrorIs(t, nilIDErr, desk.ErrNilLoanIDGenerator)
}

// fakeClock returns a fixed time that tests move forward explicitly.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

type catalogStub struct {
	mu       sync.Mutex
	metadata map[string]catalog.Metadata
	calls    int
}

func (c *catalogStub) Lookup(_ context.Context, isbn string) (catalog.Metadata, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls++
	metadata, ok := c.metadata[isbn]

	return metadata, ok
}

func (c *catalogStub) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.calls
}

// conflictingRecords fails the next conflicts book saves as if another session had saved first.
type conflictingRecords struct {
	desk.Records

	mu        sync.Mutex
	conflicts int
}

func (r *conflictingRecords) SaveBooks(
	ctx context.Context,
	books core.Books,
	expectedRevision recordstore.RevisionUint,
) error {

	r.mu.Lock()
	if r.conflicts > 0 {
		r.conflicts--
		r.mu.Unlock()

		return recordstore.ErrConcurrencyConflict
	}
	r.mu.Unlock()

	return r.Records.SaveBooks(ctx, books, expectedRevision)
}

// countingRecords counts how often the documents are loaded.
type countingRecords struct {
	desk.Records

	mu        sync.Mutex
	bookLoads int
	loanLoads int
}

func (r *countingRecords) LoadBooks(ctx context.Context) (core.Books, recordstore.RevisionUint, error) {
	r.mu.Lock()
	r.bookLoads++
	r.mu.Unlock()

	return r.Records.LoadBooks(ctx)
}

func (r *countingRecords) LoadLoans(ctx context.Context) (core.Loans, recordstore.RevisionUint, error) {
	r.mu.Lock()
	r.loanLoads++
	r.mu.Unlock()

	return r.Records.LoadLoans(ctx)
}

func (r *countingRecords) Loads() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.bookLoads, r.loanLoads
}

func (r *countingRecords) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.bookLoads, r.loanLoads = 0, 0
}

// testingT is satisfied by *testing.T and *rapid.T.
type testingT interface {
	require.TestingT
	Helper()
}

func givenRecords(t testingT) *shell.Records {
	t.Helper()

	store, err := memengine.NewStore()
	require.NoError(t, err)

	records, err := shell.NewRecords(store)
	require.NoError(t, err)

	return records
}

func givenService(t testingT, opts ...desk.Option) (*desk.Service, *shell.Records, *fakeClock) {
	t.Helper()

	records := givenRecords(t)
	clock := &fakeClock{now: deskStart}

	opts = append([]desk.Option{desk.WithClock(clock.Now)}, opts...)
	service, err := desk.NewService(records, opts...)
	require.NoError(t, err)

	return service, records, clock
}

func isbnsOf(books core.Books) []string {
	isbns := make([]string, 0, len(books))
	for _, book := range books {
		isbns = append(isbns, book.ISBN)
	}

	return isbns
}
