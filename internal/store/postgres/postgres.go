// internal/store/postgres/postgres.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"lendkeeper/internal/identity"
	"lendkeeper/internal/lending"
)

// Store keeps users and lending records in Postgres. Mutation serialization
// is the database's job; ids come from identity columns.
type Store struct {
	db *sql.DB
}

// New wraps an open database handle. Callers own the handle's lifecycle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the tables when they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			credential TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS books (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			owner_id BIGINT NOT NULL REFERENCES users(id),
			title TEXT NOT NULL,
			author TEXT NOT NULL,
			borrower TEXT NOT NULL,
			category TEXT NOT NULL,
			due_date TIMESTAMPTZ NOT NULL,
			lend_date TIMESTAMPTZ NOT NULL,
			returned BOOLEAN NOT NULL DEFAULT FALSE
		);
		CREATE INDEX IF NOT EXISTS idx_books_owner ON books (owner_id);
	`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// CreateUser inserts a user, mapping the unique-username violation to
// ErrUsernameTaken.
func (s *Store) CreateUser(ctx context.Context, username, credential string) (*identity.User, error) {
	query := `
		INSERT INTO users (username, credential)
		VALUES ($1, $2)
		RETURNING id
	`
	user := &identity.User{Username: username, Credential: credential}
	err := s.db.QueryRowContext(ctx, query, username, credential).Scan(&user.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, identity.ErrUsernameTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// UserByID returns ErrUnauthenticated when no user has that id.
func (s *Store) UserByID(ctx context.Context, id int64) (*identity.User, error) {
	query := `
		SELECT id, username, credential
		FROM users
		WHERE id = $1
	`
	user := &identity.User{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(&user.ID, &user.Username, &user.Credential)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, identity.ErrUnauthenticated
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return user, nil
}

// UserByUsername returns ErrInvalidCredentials when no user has that name.
func (s *Store) UserByUsername(ctx context.Context, username string) (*identity.User, error) {
	query := `
		SELECT id, username, credential
		FROM users
		WHERE username = $1
	`
	user := &identity.User{}
	err := s.db.QueryRowContext(ctx, query, username).Scan(&user.ID, &user.Username, &user.Credential)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, identity.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user %q: %w", username, err)
	}
	return user, nil
}

// CreateBook inserts a record and reports it back with its generated id.
func (s *Store) CreateBook(ctx context.Context, book lending.Book) (*lending.Book, error) {
	query := `
		INSERT INTO books (owner_id, title, author, borrower, category, due_date, lend_date, returned)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query,
		book.OwnerID, book.Title, book.Author, book.Borrower, book.Category,
		book.DueDate, book.LendDate, book.Returned).Scan(&book.ID)
	if err != nil {
		return nil, fmt.Errorf("insert book: %w", err)
	}
	return &book, nil
}

const bookColumns = `id, owner_id, title, author, borrower, category, due_date, lend_date, returned`

// BooksByOwner returns all of the owner's records in insertion order.
func (s *Store) BooksByOwner(ctx context.Context, ownerID int64) ([]lending.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE owner_id = $1 ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()
	return scanBooks(rows)
}

// BookByID returns ErrNotFound when the id is absent or owned by someone else.
func (s *Store) BookByID(ctx context.Context, ownerID, bookID int64) (*lending.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1 AND owner_id = $2`
	book := &lending.Book{}
	err := s.db.QueryRowContext(ctx, query, bookID, ownerID).Scan(
		&book.ID, &book.OwnerID, &book.Title, &book.Author, &book.Borrower,
		&book.Category, &book.DueDate, &book.LendDate, &book.Returned)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, lending.ErrNotFound
		}
		return nil, fmt.Errorf("get book %d: %w", bookID, err)
	}
	return book, nil
}

// UpdateBook replaces the caller-editable fields, leaving id, owner, lend
// date, and return status untouched.
func (s *Store) UpdateBook(ctx context.Context, ownerID, bookID int64, patch lending.Patch) (*lending.Book, error) {
	query := `
		UPDATE books
		SET title = $1, author = $2, borrower = $3, category = $4, due_date = $5
		WHERE id = $6 AND owner_id = $7
		RETURNING ` + bookColumns + `
	`
	book := &lending.Book{}
	err := s.db.QueryRowContext(ctx, query,
		patch.Title, patch.Author, patch.Borrower, patch.Category, patch.DueDate,
		bookID, ownerID).Scan(
		&book.ID, &book.OwnerID, &book.Title, &book.Author, &book.Borrower,
		&book.Category, &book.DueDate, &book.LendDate, &book.Returned)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, lending.ErrNotFound
		}
		return nil, fmt.Errorf("update book %d: %w", bookID, err)
	}
	return book, nil
}

// MarkReturned sets returned=true; repeating it affects nothing.
func (s *Store) MarkReturned(ctx context.Context, ownerID, bookID int64) (*lending.Book, error) {
	query := `
		UPDATE books
		SET returned = TRUE
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + bookColumns + `
	`
	book := &lending.Book{}
	err := s.db.QueryRowContext(ctx, query, bookID, ownerID).Scan(
		&book.ID, &book.OwnerID, &book.Title, &book.Author, &book.Borrower,
		&book.Category, &book.DueDate, &book.LendDate, &book.Returned)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, lending.ErrNotFound
		}
		return nil, fmt.Errorf("return book %d: %w", bookID, err)
	}
	return book, nil
}

// FilterBooks compiles the criteria into a WHERE clause over the owner's
// records.
func (s *Store) FilterBooks(ctx context.Context, ownerID int64, c lending.Criteria) ([]lending.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE owner_id = $1`
	args := []any{ownerID}

	if c.Category != "" {
		args = append(args, c.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if c.Borrower != "" {
		args = append(args, c.Borrower)
		query += fmt.Sprintf(" AND position(lower($%d) IN lower(borrower)) > 0", len(args))
	}
	if c.DueDate != nil {
		args = append(args, c.DueDate.UTC())
		query += fmt.Sprintf(" AND (due_date AT TIME ZONE 'UTC')::date = ($%d AT TIME ZONE 'UTC')::date", len(args))
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("filter books: %w", err)
	}
	defer rows.Close()
	return scanBooks(rows)
}

// DueSoon returns outstanding records due within [now, now+7d] inclusive.
func (s *Store) DueSoon(ctx context.Context, ownerID int64, now time.Time) ([]lending.Book, error) {
	query := `
		SELECT ` + bookColumns + ` FROM books
		WHERE owner_id = $1 AND NOT returned AND due_date >= $2 AND due_date <= $3
		ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, query, ownerID, now, now.AddDate(0, 0, 7))
	if err != nil {
		return nil, fmt.Errorf("due soon: %w", err)
	}
	defer rows.Close()
	return scanBooks(rows)
}

func scanBooks(rows *sql.Rows) ([]lending.Book, error) {
	var out []lending.Book
	for rows.Next() {
		var b lending.Book
		if err := rows.Scan(&b.ID, &b.OwnerID, &b.Title, &b.Author, &b.Borrower,
			&b.Category, &b.DueDate, &b.LendDate, &b.Returned); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
