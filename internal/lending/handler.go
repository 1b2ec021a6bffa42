// internal/lending/handler.go
package lending

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"lendkeeper/internal/identity"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// bookRequest is the body of POST /api/books and PUT /api/books/{id}.
type bookRequest struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	Borrower string `json:"borrower"`
	Category string `json:"category"`
	DueDate  string `json:"dueDate"`
}

func (req bookRequest) patch() (Patch, error) {
	due, err := ParseDueDate(req.DueDate)
	if err != nil {
		return Patch{}, err
	}
	return Patch{
		Title:    req.Title,
		Author:   req.Author,
		Borrower: req.Borrower,
		Category: req.Category,
		DueDate:  due,
	}, nil
}

// HandleList serves GET /api/books.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := identity.UserIDFromContext(r.Context())

	books, err := h.service.ListByOwner(r.Context(), ownerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeBooks(w, http.StatusOK, books)
}

// HandleCreate serves POST /api/books.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := identity.UserIDFromContext(r.Context())

	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	patch, err := req.patch()
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrInvalidDueDate.Error())
		return
	}

	book, err := h.service.Create(r.Context(), ownerID, patch)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, book)
}

// HandleGet serves GET /api/books/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := identity.UserIDFromContext(r.Context())
	bookID, err := parseBookID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "Book not found")
		return
	}

	book, err := h.service.Get(r.Context(), ownerID, bookID)
	if err != nil {
		writeNotFound(w, err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

// HandleUpdate serves PUT /api/books/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := identity.UserIDFromContext(r.Context())
	bookID, err := parseBookID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "Book not found")
		return
	}

	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	patch, err := req.patch()
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrInvalidDueDate.Error())
		return
	}

	book, err := h.service.Update(r.Context(), ownerID, bookID, patch)
	if err != nil {
		writeNotFound(w, err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

// HandleReturn serves PATCH /api/books/{id}/return.
func (h *Handler) HandleReturn(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := identity.UserIDFromContext(r.Context())
	bookID, err := parseBookID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "Book not found")
		return
	}

	book, err := h.service.MarkReturned(r.Context(), ownerID, bookID)
	if err != nil {
		writeNotFound(w, err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

// HandleFilter serves GET /api/books/filter.
func (h *Handler) HandleFilter(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := identity.UserIDFromContext(r.Context())

	q := r.URL.Query()
	criteria := Criteria{
		Category: q.Get("category"),
		Borrower: q.Get("borrower"),
	}
	if raw := q.Get("dueDate"); raw != "" {
		due, err := ParseDueDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, ErrInvalidDueDate.Error())
			return
		}
		criteria.DueDate = &due
	}

	books, err := h.service.Filter(r.Context(), ownerID, criteria)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeBooks(w, http.StatusOK, books)
}

// HandleDueSoon serves GET /api/books/due-soon.
func (h *Handler) HandleDueSoon(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := identity.UserIDFromContext(r.Context())

	books, err := h.service.DueSoon(r.Context(), ownerID, time.Now().UTC())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeBooks(w, http.StatusOK, books)
}

func parseBookID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func writeNotFound(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "Book not found")
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

// writeBooks always serializes an array, never null.
func writeBooks(w http.ResponseWriter, code int, books []Book) {
	if books == nil {
		books = []Book{}
	}
	writeJSON(w, code, books)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
