// internal/store/memory/memory.go
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"lendkeeper/internal/identity"
	"lendkeeper/internal/lending"
)

// Store keeps the user registry and the lending records in process memory.
// One RWMutex serializes all mutations; reads may run concurrently with each
// other. Ids come from dedicated counters, never from collection length, so
// they stay monotonic regardless of what the collections later look like.
type Store struct {
	mu         sync.RWMutex
	users      []identity.User
	books      []lending.Book
	nextUserID int64
	nextBookID int64
}

// New creates an empty store.
func New() *Store {
	return &Store{nextUserID: 1, nextBookID: 1}
}

// CreateUser registers a username, failing when it is already taken.
// Username comparison is case-sensitive.
func (s *Store) CreateUser(_ context.Context, username, credential string) (*identity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if s.users[i].Username == username {
			return nil, identity.ErrUsernameTaken
		}
	}

	user := identity.User{
		ID:         s.nextUserID,
		Username:   username,
		Credential: credential,
	}
	s.nextUserID++
	s.users = append(s.users, user)

	return &user, nil
}

// UserByID looks up a user by id.
func (s *Store) UserByID(_ context.Context, id int64) (*identity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.users {
		if s.users[i].ID == id {
			user := s.users[i]
			return &user, nil
		}
	}
	return nil, identity.ErrUnauthenticated
}

// UserByUsername looks up a user by exact username.
func (s *Store) UserByUsername(_ context.Context, username string) (*identity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.users {
		if s.users[i].Username == username {
			user := s.users[i]
			return &user, nil
		}
	}
	return nil, identity.ErrInvalidCredentials
}

// CreateBook appends a record under the next monotonic id.
func (s *Store) CreateBook(_ context.Context, book lending.Book) (*lending.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	book.ID = s.nextBookID
	s.nextBookID++
	s.books = append(s.books, book)

	out := book
	return &out, nil
}

// BooksByOwner returns the owner's records in insertion order.
func (s *Store) BooksByOwner(_ context.Context, ownerID int64) ([]lending.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(ownerID, func(lending.Book) bool { return true }), nil
}

// BookByID returns one record, treating foreign owners' ids as absent.
func (s *Store) BookByID(_ context.Context, ownerID, bookID int64) (*lending.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(ownerID, bookID)
	if i < 0 {
		return nil, lending.ErrNotFound
	}
	book := s.books[i]
	return &book, nil
}

// UpdateBook replaces the caller-editable fields in place.
func (s *Store) UpdateBook(_ context.Context, ownerID, bookID int64, patch lending.Patch) (*lending.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(ownerID, bookID)
	if i < 0 {
		return nil, lending.ErrNotFound
	}

	b := &s.books[i]
	b.Title = patch.Title
	b.Author = patch.Author
	b.Borrower = patch.Borrower
	b.Category = patch.Category
	b.DueDate = patch.DueDate

	book := *b
	return &book, nil
}

// MarkReturned sets returned=true. Re-applying it is a no-op that reports
// the current state.
func (s *Store) MarkReturned(_ context.Context, ownerID, bookID int64) (*lending.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(ownerID, bookID)
	if i < 0 {
		return nil, lending.ErrNotFound
	}

	s.books[i].Returned = true
	book := s.books[i]
	return &book, nil
}

// FilterBooks applies the criteria over the owner's records. The base set is
// always owner-scoped, so empty criteria can never widen visibility.
func (s *Store) FilterBooks(_ context.Context, ownerID int64, c lending.Criteria) ([]lending.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(ownerID, func(b lending.Book) bool {
		if c.Category != "" && b.Category != c.Category {
			return false
		}
		if c.Borrower != "" &&
			!strings.Contains(strings.ToLower(b.Borrower), strings.ToLower(c.Borrower)) {
			return false
		}
		if c.DueDate != nil && !lending.SameDay(b.DueDate, *c.DueDate) {
			return false
		}
		return true
	}), nil
}

// DueSoon returns outstanding records due within [now, now+7d], both ends
// inclusive.
func (s *Store) DueSoon(_ context.Context, ownerID int64, now time.Time) ([]lending.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	horizon := now.AddDate(0, 0, 7)
	return s.collect(ownerID, func(b lending.Book) bool {
		return !b.Returned && !b.DueDate.Before(now) && !b.DueDate.After(horizon)
	}), nil
}

// indexOf expects at least a read lock to be held.
func (s *Store) indexOf(ownerID, bookID int64) int {
	for i := range s.books {
		if s.books[i].ID == bookID && s.books[i].OwnerID == ownerID {
			return i
		}
	}
	return -1
}

// collect copies matching records so callers cannot reach into the store.
// Expects at least a read lock to be held.
func (s *Store) collect(ownerID int64, keep func(lending.Book) bool) []lending.Book {
	var out []lending.Book
	for i := range s.books {
		if s.books[i].OwnerID == ownerID && keep(s.books[i]) {
			out = append(out, s.books[i])
		}
	}
	return out
}
