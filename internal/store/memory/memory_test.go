// internal/store/memory/memory_test.go
package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lendkeeper/internal/identity"
	"lendkeeper/internal/lending"
	"lendkeeper/internal/store/memory"
)

func TestUserIDsAreSequential(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	for i, name := range []string{"alice", "bob", "carol"} {
		u, err := s.CreateUser(ctx, name, "pw")
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), u.ID)
	}

	// A rejected duplicate must not consume an id.
	_, err := s.CreateUser(ctx, "bob", "pw")
	require.ErrorIs(t, err, identity.ErrUsernameTaken)

	u, err := s.CreateUser(ctx, "dave", "pw")
	require.NoError(t, err)
	assert.Equal(t, int64(4), u.ID)
}

func TestUsernameIsCaseSensitive(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	_, err := s.CreateUser(ctx, "alice", "pw")
	require.NoError(t, err)

	u, err := s.CreateUser(ctx, "Alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Username)
}

func TestBookIDsAreMonotonic(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		b, err := s.CreateBook(ctx, lending.Book{OwnerID: 1, Title: "t"})
		require.NoError(t, err)
		assert.Equal(t, int64(i), b.ID)
	}
}

func TestBooksByOwnerKeepsInsertionOrder(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	titles := []string{"first", "second", "third"}
	for _, title := range titles {
		_, err := s.CreateBook(ctx, lending.Book{OwnerID: 7, Title: title})
		require.NoError(t, err)
	}

	books, err := s.BooksByOwner(ctx, 7)
	require.NoError(t, err)
	require.Len(t, books, len(titles))
	for i, b := range books {
		assert.Equal(t, titles[i], b.Title)
	}
}

func TestReturnedValuesAreSnapshots(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	created, err := s.CreateBook(ctx, lending.Book{OwnerID: 1, Title: "original", DueDate: time.Now()})
	require.NoError(t, err)

	// Mutating what the store handed out must not reach internal state.
	created.Title = "mangled"
	created.Returned = true

	stored, err := s.BookByID(ctx, 1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", stored.Title)
	assert.False(t, stored.Returned)

	list, err := s.BooksByOwner(ctx, 1)
	require.NoError(t, err)
	list[0].Title = "mangled again"

	stored, err = s.BookByID(ctx, 1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", stored.Title)
}

func TestConcurrentCreatesAssignDistinctIDs(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	const n = 50
	ids := make(chan int64, n)
	for i := 0; i < n; i++ {
		go func() {
			b, err := s.CreateBook(ctx, lending.Book{OwnerID: 1})
			if err != nil {
				ids <- 0
				return
			}
			ids <- b.ID
		}()
	}

	seen := make(map[int64]bool, n)
	for i := 0; i < n; i++ {
		id := <-ids
		require.NotZero(t, id)
		require.False(t, seen[id], "id %d assigned twice", id)
		seen[id] = true
	}
}
