// internal/identity/middleware.go
package identity

import (
	"context"
	"encoding/json"
	"net/http"
)

// UserIDHeader carries the raw caller identifier on every lending-record
// request.
const UserIDHeader = "user-id"

type contextKey struct{}

// RequireUser resolves the user-id header before the wrapped handler runs.
// On success the resolved id is placed in the request context; on failure the
// request is rejected with 401 and the handler never executes. Login and
// registration are routed outside this middleware.
func RequireUser(svc Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := svc.Resolve(r.Context(), r.Header.Get(UserIDHeader))
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"error": "Authentication required"})
				return
			}
			ctx := context.WithValue(r.Context(), contextKey{}, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext returns the id stored by RequireUser. The second return
// is false on requests that never passed through the middleware.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(contextKey{}).(int64)
	return id, ok
}
