// internal/lending/implementation_test.go
package lending_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lendkeeper/internal/lending"
	"lendkeeper/internal/store/memory"
)

const (
	alice int64 = 1
	bob   int64 = 2
)

func newService() lending.Service {
	return lending.NewService(memory.New())
}

func mustCreate(t *testing.T, svc lending.Service, owner int64, patch lending.Patch) *lending.Book {
	t.Helper()
	book, err := svc.Create(context.Background(), owner, patch)
	require.NoError(t, err)
	return book
}

func due(days int) time.Time {
	return time.Now().UTC().AddDate(0, 0, days)
}

func TestCreate(t *testing.T) {
	svc := newService()

	book := mustCreate(t, svc, alice, lending.Patch{
		Title:    "The Go Programming Language",
		Author:   "Donovan & Kernighan",
		Borrower: "John Doe",
		Category: "Reference",
		DueDate:  due(14),
	})

	assert.Equal(t, int64(1), book.ID)
	assert.Equal(t, alice, book.OwnerID)
	assert.False(t, book.Returned)
	assert.False(t, book.LendDate.IsZero())

	second := mustCreate(t, svc, alice, lending.Patch{Title: "Dune", DueDate: due(7)})
	assert.Equal(t, int64(2), second.ID)
}

func TestOwnerScoping(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	book := mustCreate(t, svc, alice, lending.Patch{Title: "X", DueDate: due(3)})

	t.Run("owner list contains the record", func(t *testing.T) {
		books, err := svc.ListByOwner(ctx, alice)
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, book.ID, books[0].ID)
	})

	t.Run("other owner's list is empty", func(t *testing.T) {
		books, err := svc.ListByOwner(ctx, bob)
		require.NoError(t, err)
		assert.Empty(t, books)
	})

	t.Run("foreign id reads as not found", func(t *testing.T) {
		_, err := svc.Get(ctx, bob, book.ID)
		assert.ErrorIs(t, err, lending.ErrNotFound)
	})

	t.Run("foreign id cannot be updated", func(t *testing.T) {
		_, err := svc.Update(ctx, bob, book.ID, lending.Patch{Title: "stolen", DueDate: due(1)})
		assert.ErrorIs(t, err, lending.ErrNotFound)
	})

	t.Run("foreign id cannot be returned", func(t *testing.T) {
		_, err := svc.MarkReturned(ctx, bob, book.ID)
		assert.ErrorIs(t, err, lending.ErrNotFound)
	})
}

func TestUpdatePreservesImmutableFields(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	book := mustCreate(t, svc, alice, lending.Patch{
		Title:    "Original",
		Author:   "A",
		Borrower: "B",
		Category: "Fiction",
		DueDate:  due(3),
	})
	returned, err := svc.MarkReturned(ctx, alice, book.ID)
	require.NoError(t, err)
	require.True(t, returned.Returned)

	newDue := due(10)
	updated, err := svc.Update(ctx, alice, book.ID, lending.Patch{
		Title:    "Replaced",
		Author:   "A2",
		Borrower: "B2",
		Category: "History",
		DueDate:  newDue,
	})
	require.NoError(t, err)

	assert.Equal(t, book.ID, updated.ID)
	assert.Equal(t, alice, updated.OwnerID)
	assert.Equal(t, book.LendDate, updated.LendDate)
	assert.True(t, updated.Returned, "update must not reset the return status")
	assert.Equal(t, "Replaced", updated.Title)
	assert.Equal(t, "History", updated.Category)
	assert.True(t, updated.DueDate.Equal(newDue))
}

func TestMarkReturnedIsIdempotent(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	book := mustCreate(t, svc, alice, lending.Patch{Title: "X", DueDate: due(3)})

	first, err := svc.MarkReturned(ctx, alice, book.ID)
	require.NoError(t, err)
	assert.True(t, first.Returned)

	second, err := svc.MarkReturned(ctx, alice, book.ID)
	require.NoError(t, err)
	assert.True(t, second.Returned)
	assert.Equal(t, first, second)
}

func TestFilter(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	fiction := mustCreate(t, svc, alice, lending.Patch{
		Title: "Dune", Category: "Fiction", Borrower: "John Doe", DueDate: due(3),
	})
	history := mustCreate(t, svc, alice, lending.Patch{
		Title: "SPQR", Category: "History", Borrower: "Jane Roe", DueDate: due(5),
	})
	mustCreate(t, svc, bob, lending.Patch{
		Title: "Dune", Category: "Fiction", Borrower: "John Doe", DueDate: due(3),
	})

	t.Run("no criteria equals owner list", func(t *testing.T) {
		all, err := svc.ListByOwner(ctx, alice)
		require.NoError(t, err)
		filtered, err := svc.Filter(ctx, alice, lending.Criteria{})
		require.NoError(t, err)
		assert.Equal(t, all, filtered)
	})

	t.Run("category is exact and case-sensitive", func(t *testing.T) {
		books, err := svc.Filter(ctx, alice, lending.Criteria{Category: "Fiction"})
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, fiction.ID, books[0].ID)

		none, err := svc.Filter(ctx, alice, lending.Criteria{Category: "fiction"})
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("borrower is case-insensitive substring", func(t *testing.T) {
		books, err := svc.Filter(ctx, alice, lending.Criteria{Borrower: "doe"})
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, fiction.ID, books[0].ID)
	})

	t.Run("dueDate matches the calendar day", func(t *testing.T) {
		day := history.DueDate.Add(6 * time.Hour)
		books, err := svc.Filter(ctx, alice, lending.Criteria{DueDate: &day})
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, history.ID, books[0].ID)
	})

	t.Run("criteria combine with AND", func(t *testing.T) {
		books, err := svc.Filter(ctx, alice, lending.Criteria{Category: "Fiction", Borrower: "roe"})
		require.NoError(t, err)
		assert.Empty(t, books)
	})

	t.Run("never leaks other owners", func(t *testing.T) {
		books, err := svc.Filter(ctx, alice, lending.Criteria{Category: "Fiction"})
		require.NoError(t, err)
		for _, b := range books {
			assert.Equal(t, alice, b.OwnerID)
		}
	})
}

func TestDueSoon(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	atNow := mustCreate(t, svc, alice, lending.Patch{Title: "boundary low", DueDate: now})
	atHorizon := mustCreate(t, svc, alice, lending.Patch{Title: "boundary high", DueDate: now.AddDate(0, 0, 7)})
	mustCreate(t, svc, alice, lending.Patch{Title: "past", DueDate: now.AddDate(0, 0, -1)})
	mustCreate(t, svc, alice, lending.Patch{Title: "beyond", DueDate: now.AddDate(0, 0, 8)})

	returnedBook := mustCreate(t, svc, alice, lending.Patch{Title: "already back", DueDate: now.AddDate(0, 0, 2)})
	_, err := svc.MarkReturned(ctx, alice, returnedBook.ID)
	require.NoError(t, err)

	books, err := svc.DueSoon(ctx, alice, now)
	require.NoError(t, err)

	ids := make([]int64, 0, len(books))
	for _, b := range books {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []int64{atNow.ID, atHorizon.ID}, ids)
}

func TestDueSoonScopedToOwner(t *testing.T) {
	svc := newService()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	mustCreate(t, svc, alice, lending.Patch{Title: "mine", DueDate: now.AddDate(0, 0, 2)})
	mustCreate(t, svc, bob, lending.Patch{Title: "theirs", DueDate: now.AddDate(0, 0, 2)})

	books, err := svc.DueSoon(context.Background(), alice, now)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "mine", books[0].Title)
}
