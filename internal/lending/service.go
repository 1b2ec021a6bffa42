// internal/lending/service.go
package lending

import (
	"context"
	"time"
)

// Service defines the interface for the lending service. Every method is
// scoped to the owner id resolved for the current request.
type Service interface {
	Create(ctx context.Context, ownerID int64, patch Patch) (*Book, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]Book, error)
	Get(ctx context.Context, ownerID, bookID int64) (*Book, error)
	Update(ctx context.Context, ownerID, bookID int64, patch Patch) (*Book, error)
	MarkReturned(ctx context.Context, ownerID, bookID int64) (*Book, error)
	Filter(ctx context.Context, ownerID int64, criteria Criteria) ([]Book, error)
	DueSoon(ctx context.Context, ownerID int64, now time.Time) ([]Book, error)
}

// Store owns the record collection. Implementations must serialize mutations
// per collection and return snapshots the caller is free to mutate.
type Store interface {
	// CreateBook assigns the next monotonic record id and appends the book.
	CreateBook(ctx context.Context, book Book) (*Book, error)
	// BooksByOwner returns the owner's records in insertion order.
	BooksByOwner(ctx context.Context, ownerID int64) ([]Book, error)
	// BookByID returns ErrNotFound unless a record with that id belongs
	// to the owner.
	BookByID(ctx context.Context, ownerID, bookID int64) (*Book, error)
	// UpdateBook replaces the caller-editable fields, preserving id,
	// owner, lend date, and return status. ErrNotFound per BookByID.
	UpdateBook(ctx context.Context, ownerID, bookID int64, patch Patch) (*Book, error)
	// MarkReturned sets returned=true; repeating it is a no-op.
	MarkReturned(ctx context.Context, ownerID, bookID int64) (*Book, error)
	// FilterBooks applies the criteria to the owner's records.
	FilterBooks(ctx context.Context, ownerID int64, criteria Criteria) ([]Book, error)
	// DueSoon returns outstanding records due within [now, now+7d].
	DueSoon(ctx context.Context, ownerID int64, now time.Time) ([]Book, error)
}
