// internal/lending/domain.go
package lending

import (
	"errors"
	"time"
)

// Book is one lending record: a book the owner has lent out to a borrower.
// Field names on the wire follow the public API (userId is the owning
// account, not the borrower).
type Book struct {
	ID       int64     `json:"id"`
	OwnerID  int64     `json:"userId"`
	Title    string    `json:"title"`
	Author   string    `json:"author"`
	Borrower string    `json:"borrower"`
	Category string    `json:"category"`
	DueDate  time.Time `json:"dueDate"`
	LendDate time.Time `json:"lendDate"`
	Returned bool      `json:"returned"`
}

// Patch carries the caller-editable fields for create and full update.
// ID, owner, lend date, and return status are never caller-editable.
type Patch struct {
	Title    string
	Author   string
	Borrower string
	Category string
	DueDate  time.Time
}

// Criteria is a set of independently optional filters combined with AND.
// Zero values mean the criterion is absent.
type Criteria struct {
	Category string     // exact, case-sensitive
	Borrower string     // case-insensitive substring
	DueDate  *time.Time // same calendar day
}

var (
	// ErrNotFound is returned when a record id does not exist for the
	// requesting owner. A record owned by someone else reports the same
	// error so callers cannot probe for foreign ids.
	ErrNotFound = errors.New("book not found")

	// ErrInvalidDueDate is returned when a due date cannot be parsed.
	ErrInvalidDueDate = errors.New("invalid dueDate")
)

// SameDay reports whether both times fall on the same UTC calendar day.
func SameDay(a, b time.Time) bool {
	a, b = a.UTC(), b.UTC()
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ParseDueDate accepts RFC 3339 timestamps and bare 2006-01-02 dates.
func ParseDueDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, ErrInvalidDueDate
}
