// internal/identity/service.go
package identity

import "context"

// Service defines the interface for the identity service.
type Service interface {
	Register(ctx context.Context, username, credential string) (*User, error)
	Login(ctx context.Context, username, credential string) (*User, error)
	Resolve(ctx context.Context, raw string) (int64, error)
}

// UserStore is the user registry the identity service resolves against.
type UserStore interface {
	// CreateUser assigns the next sequential user id and appends the user.
	// Fails with ErrUsernameTaken when the username is already registered.
	CreateUser(ctx context.Context, username, credential string) (*User, error)
	// UserByID returns ErrUnauthenticated when no user has that id.
	UserByID(ctx context.Context, id int64) (*User, error)
	// UserByUsername returns ErrInvalidCredentials when no user has that name.
	UserByUsername(ctx context.Context, username string) (*User, error)
}
