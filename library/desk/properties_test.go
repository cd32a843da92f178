package desk_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/AntonStoeckl/library-desk-go/library/core"
	"github.com/AntonStoeckl/library-desk-go/recordstore"
)

var (
	isbnPool    = []string{"978-1", "978-2", "978-3", "978-4"}
	studentPool = []string{"001", "002", "003"}
)

type operation int

const (
	opRegister operation = iota
	opLend
	opReturn
)

func Test_Property_NoDuplicateISBN(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		// arrange
		service, records, _ := givenService(t)
		ctx := context.Background()
		registrations := rapid.SliceOfN(rapid.SampledFrom(isbnPool), 1, 12).Draw(t, "registrations")

		// act
		for _, isbn := range registrations {
			_, _ = service.RegisterBook(ctx, isbn, "Title", "")
		}

		before, _, err := records.LoadBooks(ctx)
		require.NoError(t, err)

		_, repeatErr := service.RegisterBook(ctx, registrations[0], "Other", "")

		after, _, err := records.LoadBooks(ctx)
		require.NoError(t, err)

		// assert
		assert.ErrorIs(t, repeatErr, core.ErrDuplicateIsbn)
		assert.Equal(t, before, after)

		seen := map[string]bool{}
		for _, book := range after {
			assert.False(t, seen[book.ISBN], "duplicate isbn %s", book.ISBN)
			seen[book.ISBN] = true
		}
	})
}

func Test_Property_LoanInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		// arrange
		service, records, clock := givenService(t)
		ctx := context.Background()
		steps := rapid.IntRange(1, 30).Draw(t, "steps")

		for i := 0; i < steps; i++ {
			// act
			isbn := rapid.SampledFrom(isbnPool).Draw(t, "isbn")

			switch operation(rapid.IntRange(int(opRegister), int(opReturn)).Draw(t, "operation")) {
			case opRegister:
				_, _ = service.RegisterBook(ctx, isbn, "Title "+isbn, "")
			case opLend:
				_, _ = service.LendBook(ctx, isbn, rapid.SampledFrom(studentPool).Draw(t, "student"))
			case opReturn:
				_, _ = service.ReturnBook(ctx, isbn)
			}

			clock.Advance(time.Duration(rapid.IntRange(0, 120).Draw(t, "minutes")) * time.Minute)

			// assert
			books, _, err := records.LoadBooks(ctx)
			require.NoError(t, err)
			loans, _, err := records.LoadLoans(ctx)
			require.NoError(t, err)

			for _, candidate := range isbnPool {
				assert.LessOrEqual(t, loans.ActiveCount(candidate), 1, "active loans of %s", candidate)

				available, err := service.IsAvailable(ctx, candidate)
				require.NoError(t, err)
				assert.Equal(t, books.Contains(candidate) && !loans.HasActiveLoan(candidate), available, "availability of %s", candidate)
			}
		}
	})
}

func Test_Property_OverdueSelection(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		// arrange
		service, records, clock := givenService(t)
		ctx := context.Background()

		for _, isbn := range isbnPool {
			_, err := service.RegisterBook(ctx, isbn, "Title "+isbn, "")
			require.NoError(t, err)
		}

		steps := rapid.IntRange(1, 20).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			isbn := rapid.SampledFrom(isbnPool).Draw(t, "isbn")
			if rapid.Bool().Draw(t, "lend") {
				_, _ = service.LendBook(ctx, isbn, rapid.SampledFrom(studentPool).Draw(t, "student"))
			} else {
				_, _ = service.ReturnBook(ctx, isbn)
			}

			clock.Advance(time.Duration(rapid.IntRange(0, 72).Draw(t, "hours")) * time.Hour)
		}

		asOf := deskStart.Add(time.Duration(rapid.IntRange(0, 60*24).Draw(t, "asOfHours")) * time.Hour)

		// act
		overdue, err := service.ListOverdue(ctx, asOf)
		require.NoError(t, err)

		// assert
		loans, _, err := records.LoadLoans(ctx)
		require.NoError(t, err)

		expected := make([]core.OverdueEntry, 0)
		for _, loan := range loans {
			if !loan.Returned && loan.DueAt.Before(asOf) {
				expected = append(expected, core.OverdueEntry{
					ISBN:    loan.ISBN,
					Student: loan.Student,
					Title:   "Title " + loan.ISBN,
					DueAt:   loan.DueAt,
				})
			}
		}

		assert.Equal(t, expected, []core.OverdueEntry(overdue))
	})
}

func Test_Property_BooksRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		// arrange
		records := givenRecords(t)
		ctx := context.Background()
		books := rapid.SliceOfN(rapid.Custom(func(t *rapid.T) core.Book {
			offset := time.Duration(rapid.Int64Range(0, int64(365*24*time.Hour)).Draw(t, "offset"))

			return core.BuildBook(
				rapid.StringMatching(`[0-9]{1,6}-[0-9X]`).Draw(t, "isbn"),
				rapid.StringMatching(`[A-Za-z0-9]{0,12}`).Draw(t, "title"),
				rapid.StringMatching(`[A-Za-z]{0,8}`).Draw(t, "author"),
				deskStart.Add(offset),
			)
		}), 0, 10).Draw(t, "books")

		require.NoError(t, records.SaveBooks(ctx, books, recordstore.NoRevision))
		loaded, revision, err := records.LoadBooks(ctx)
		require.NoError(t, err)

		// act
		require.NoError(t, records.SaveBooks(ctx, loaded, revision))
		reloaded, _, err := records.LoadBooks(ctx)
		require.NoError(t, err)

		// assert
		assert.Equal(t, loaded, reloaded)
		assert.Len(t, reloaded, len(books))
	})
}
