// internal/api/router.go
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"lendkeeper/internal/identity"
	"lendkeeper/internal/lending"
)

// NewRouter assembles the public HTTP surface. Login and registration are
// open; every /api/books route first resolves the user-id header.
func NewRouter(identityHandler *identity.Handler, identitySvc identity.Service, lendingHandler *lending.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Post("/api/login", identityHandler.HandleLogin)
	r.Post("/api/register", identityHandler.HandleRegister)

	r.Route("/api/books", func(r chi.Router) {
		r.Use(identity.RequireUser(identitySvc))

		r.Get("/", lendingHandler.HandleList)
		r.Post("/", lendingHandler.HandleCreate)
		// Static segments are registered alongside {id}; chi always
		// prefers the exact match.
		r.Get("/filter", lendingHandler.HandleFilter)
		r.Get("/due-soon", lendingHandler.HandleDueSoon)
		r.Get("/{id}", lendingHandler.HandleGet)
		r.Put("/{id}", lendingHandler.HandleUpdate)
		r.Patch("/{id}/return", lendingHandler.HandleReturn)
	})

	return r
}
