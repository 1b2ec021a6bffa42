// internal/store/sqlite/sqlite.go
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"lendkeeper/internal/identity"
	"lendkeeper/internal/lending"
)

const opTimeout = 3 * time.Second

// Store keeps users and lending records in a SQLite database. Serialization
// of mutations is delegated to SQLite; ids come from AUTOINCREMENT so they
// stay monotonic even if rows were ever deleted.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and ensures the schema.
// Use "file:name?mode=memory&cache=shared" for an in-memory database.
func Open(path string) (*Store, error) {
	if path == "" {
		path = "lendkeeper.db"
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	// journal_mode is unsupported for in-memory databases. Ignore errors.
	_, _ = db.Exec(`PRAGMA journal_mode=WAL`)
	if _, err := db.Exec(`PRAGMA busy_timeout=5000`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys=ON`); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			credential TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS books (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			owner_id INTEGER NOT NULL REFERENCES users(id),
			title TEXT NOT NULL,
			author TEXT NOT NULL,
			borrower TEXT NOT NULL,
			category TEXT NOT NULL,
			due_date TIMESTAMP NOT NULL,
			lend_date TIMESTAMP NOT NULL,
			returned BOOLEAN NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_books_owner ON books(owner_id);
	`)
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateUser inserts a user, mapping the unique-username violation to
// ErrUsernameTaken.
func (s *Store) CreateUser(ctx context.Context, username, credential string) (*identity.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, credential) VALUES (?, ?)`, username, credential)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, identity.ErrUsernameTaken
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &identity.User{ID: id, Username: username, Credential: credential}, nil
}

// UserByID returns ErrUnauthenticated when no user has that id.
func (s *Store) UserByID(ctx context.Context, id int64) (*identity.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var u identity.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, credential FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Username, &u.Credential)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, identity.ErrUnauthenticated
		}
		return nil, err
	}
	return &u, nil
}

// UserByUsername returns ErrInvalidCredentials when no user has that name.
func (s *Store) UserByUsername(ctx context.Context, username string) (*identity.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var u identity.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, credential FROM users WHERE username = ?`, username).
		Scan(&u.ID, &u.Username, &u.Credential)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, identity.ErrInvalidCredentials
		}
		return nil, err
	}
	return &u, nil
}

// CreateBook inserts a record and reports it back with its generated id.
func (s *Store) CreateBook(ctx context.Context, book lending.Book) (*lending.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO books (owner_id, title, author, borrower, category, due_date, lend_date, returned)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		book.OwnerID, book.Title, book.Author, book.Borrower, book.Category,
		book.DueDate.UTC(), book.LendDate.UTC(), book.Returned)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	book.ID = id
	return &book, nil
}

const bookColumns = `id, owner_id, title, author, borrower, category, due_date, lend_date, returned`

// BooksByOwner returns all of the owner's records in insertion order.
func (s *Store) BooksByOwner(ctx context.Context, ownerID int64) ([]lending.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE owner_id = ? ORDER BY id`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBooks(rows)
}

// BookByID returns ErrNotFound when the id is absent or owned by someone else.
func (s *Store) BookByID(ctx context.Context, ownerID, bookID int64) (*lending.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return s.bookByID(ctx, ownerID, bookID)
}

func (s *Store) bookByID(ctx context.Context, ownerID, bookID int64) (*lending.Book, error) {
	var b lending.Book
	err := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = ? AND owner_id = ?`, bookID, ownerID).
		Scan(&b.ID, &b.OwnerID, &b.Title, &b.Author, &b.Borrower, &b.Category,
			&b.DueDate, &b.LendDate, &b.Returned)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, lending.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// UpdateBook replaces the caller-editable fields, leaving id, owner, lend
// date, and return status untouched.
func (s *Store) UpdateBook(ctx context.Context, ownerID, bookID int64, patch lending.Patch) (*lending.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `
		UPDATE books SET title = ?, author = ?, borrower = ?, category = ?, due_date = ?
		WHERE id = ? AND owner_id = ?`,
		patch.Title, patch.Author, patch.Borrower, patch.Category, patch.DueDate.UTC(),
		bookID, ownerID)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, lending.ErrNotFound
	}
	return s.bookByID(ctx, ownerID, bookID)
}

// MarkReturned sets returned=1; repeating it affects nothing.
func (s *Store) MarkReturned(ctx context.Context, ownerID, bookID int64) (*lending.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`UPDATE books SET returned = 1 WHERE id = ? AND owner_id = ?`, bookID, ownerID)
	if err != nil {
		return nil, err
	}
	return s.bookByID(ctx, ownerID, bookID)
}

// FilterBooks compiles the criteria into a WHERE clause over the owner's
// records.
func (s *Store) FilterBooks(ctx context.Context, ownerID int64, c lending.Criteria) ([]lending.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	where := []string{"owner_id = ?"}
	args := []any{ownerID}

	if c.Category != "" {
		where = append(where, "category = ?")
		args = append(args, c.Category)
	}
	if c.Borrower != "" {
		where = append(where, "instr(lower(borrower), lower(?)) > 0")
		args = append(args, c.Borrower)
	}
	if c.DueDate != nil {
		where = append(where, "date(due_date) = date(?)")
		args = append(args, c.DueDate.UTC())
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE `+strings.Join(where, " AND ")+` ORDER BY id`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBooks(rows)
}

// DueSoon returns outstanding records due within [now, now+7d] inclusive.
func (s *Store) DueSoon(ctx context.Context, ownerID int64, now time.Time) ([]lending.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+bookColumns+` FROM books
		WHERE owner_id = ? AND returned = 0 AND due_date >= ? AND due_date <= ?
		ORDER BY id`,
		ownerID, now.UTC(), now.AddDate(0, 0, 7).UTC())
	if err != nil {
		return nil, err
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
