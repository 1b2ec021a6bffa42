// internal/lending/implementation.go
package lending

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "lendkeeper/internal/lending"

// service implements the Service interface on top of a Store.
type service struct {
	store   Store
	tracer  trace.Tracer
	created metric.Int64Counter
	now     func() time.Time
}

// NewService creates a new lending service instance.
func NewService(store Store) Service {
	created, _ := otel.Meter(instrumentationName).Int64Counter(
		"lendkeeper.books.created",
		metric.WithDescription("Number of lending records created"),
	)
	return &service{
		store:   store,
		tracer:  otel.Tracer(instrumentationName),
		created: created,
		now:     time.Now,
	}
}

// Create records a newly lent book. The lend date is stamped with the server
// clock and the record starts outstanding.
func (s *service) Create(ctx context.Context, ownerID int64, patch Patch) (*Book, error) {
	ctx, span := s.tracer.Start(ctx, "lending.Create",
		trace.WithAttributes(attribute.Int64("owner.id", ownerID)))
	defer span.End()

	book, err := s.store.CreateBook(ctx, Book{
		OwnerID:  ownerID,
		Title:    patch.Title,
		Author:   patch.Author,
		Borrower: patch.Borrower,
		Category: patch.Category,
		DueDate:  patch.DueDate,
		LendDate: s.now().UTC(),
		Returned: false,
	})
	if err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	s.created.Add(ctx, 1)
	span.SetAttributes(attribute.Int64("book.id", book.ID))
	return book, nil
}

// ListByOwner returns all of the owner's records in insertion order.
func (s *service) ListByOwner(ctx context.Context, ownerID int64) ([]Book, error) {
	ctx, span := s.tracer.Start(ctx, "lending.ListByOwner",
		trace.WithAttributes(attribute.Int64("owner.id", ownerID)))
	defer span.End()

	books, err := s.store.BooksByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// Get returns one record. Ids owned by other users are not found.
func (s *service) Get(ctx context.Context, ownerID, bookID int64) (*Book, error) {
	ctx, span := s.tracer.Start(ctx, "lending.Get", trace.WithAttributes(
		attribute.Int64("owner.id", ownerID),
		attribute.Int64("book.id", bookID)))
	defer span.End()

	return s.store.BookByID(ctx, ownerID, bookID)
}

// Update replaces the caller-editable fields of a record.
func (s *service) Update(ctx context.Context, ownerID, bookID int64, patch Patch) (*Book, error) {
	ctx, span := s.tracer.Start(ctx, "lending.Update", trace.WithAttributes(
		attribute.Int64("owner.id", ownerID),
		attribute.Int64("book.id", bookID)))
	defer span.End()

	return s.store.UpdateBook(ctx, ownerID, bookID, patch)
}

// MarkReturned flips a record to returned. Already-returned records are left
// as they are and reported back unchanged.
func (s *service) MarkReturned(ctx context.Context, ownerID, bookID int64) (*Book, error) {
	ctx, span := s.tracer.Start(ctx, "lending.MarkReturned", trace.WithAttributes(
		attribute.Int64("owner.id", ownerID),
		attribute.Int64("book.id", bookID)))
	defer span.End()

	return s.store.MarkReturned(ctx, ownerID, bookID)
}

// Filter applies optional category/borrower/due-date criteria to the owner's
// records. With no criteria it is equivalent to ListByOwner.
func (s *service) Filter(ctx context.Context, ownerID int64, criteria Criteria) ([]Book, error) {
	ctx, span := s.tracer.Start(ctx, "lending.Filter",
		trace.WithAttributes(attribute.Int64("owner.id", ownerID)))
	defer span.End()

	books, err := s.store.FilterBooks(ctx, ownerID, criteria)
	if err != nil {
		return nil, fmt.Errorf("filter books: %w", err)
	}
	return books, nil
}

// DueSoon returns the owner's outstanding records due within the inclusive
// window [now, now+7d].
func (s *service) DueSoon(ctx context.Context, ownerID int64, now time.Time) ([]Book, error) {
	ctx, span := s.tracer.Start(ctx, "lending.DueSoon",
		trace.WithAttributes(attribute.Int64("owner.id", ownerID)))
	defer span.End()

	books, err := s.store.DueSoon(ctx, ownerID, now)
	if err != nil {
		return nil, fmt.Errorf("due soon: %w", err)
	}
	return books, nil
}
