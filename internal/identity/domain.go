// internal/identity/domain.go
package identity

import "errors"

// User is a registered account. Each user owns their own lending records;
// there is no sharing between accounts.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	// Credential is compared verbatim at login and never serialized.
	Credential string `json:"-"`
}

var (
	// ErrUnauthenticated is returned when a caller identifier is missing,
	// malformed, or names no registered user.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrInvalidCredentials is returned when no user matches both the
	// username and credential presented at login.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUsernameTaken is returned when registering a username that
	// already exists.
	ErrUsernameTaken = errors.New("username already exists")

	// ErrRateLimited is returned when the login/register limiter rejects
	// a request.
	ErrRateLimited = errors.New("rate limit exceeded")
)
