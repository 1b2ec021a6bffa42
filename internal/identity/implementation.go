// internal/identity/implementation.go
package identity

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/time/rate"
)

// service implements the Service interface.
type service struct {
	users       UserStore
	rateLimiter *rate.Limiter
}

// NewService creates a new identity service instance. The limiter is shared
// between Register and Login; pass rate.NewLimiter(rate.Inf, 0) to disable
// limiting.
func NewService(users UserStore, limiter *rate.Limiter) Service {
	return &service{
		users:       users,
		rateLimiter: limiter,
	}
}

// Register creates a new user with the next sequential id.
func (s *service) Register(ctx context.Context, username, credential string) (*User, error) {
	if !s.rateLimiter.Allow() {
		return nil, ErrRateLimited
	}

	user, err := s.users.CreateUser(ctx, username, credential)
	if err != nil {
		return nil, fmt.Errorf("register %q: %w", username, err)
	}
	return user, nil
}

// Login verifies a username/credential pair. Both fields must match exactly;
// nothing is mutated.
func (s *service) Login(ctx context.Context, username, credential string) (*User, error) {
	if !s.rateLimiter.Allow() {
		return nil, ErrRateLimited
	}

	user, err := s.users.UserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("login %q: %w", username, err)
	}
	if user.Credential != credential {
		return nil, fmt.Errorf("login %q: %w", username, ErrInvalidCredentials)
	}
	return user, nil
}

// Resolve turns a raw caller-supplied identifier into a validated user id.
// Any missing, non-numeric, or unknown identifier is ErrUnauthenticated.
func (s *service) Resolve(ctx context.Context, raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrUnauthenticated
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("resolve %q: %w", raw, ErrUnauthenticated)
	}

	user, err := s.users.UserByID(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("resolve %d: %w", id, err)
	}
	return user.ID, nil
}
