// internal/catalog/handler.go
package catalog

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"deptlib/internal/fault"
	"deptlib/internal/httpx"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// HandleSearch serves GET /api/search.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	filter := ParseFilter(r.URL.Query())

	books, err := h.service.Search(r.Context(), filter)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, books)
}

// HandleAdd serves POST /api/admin/books.
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var in BookInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Error(w, err)
		return
	}

	book, err := h.service.Add(r.Context(), in)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, book)
}

// HandleEdit serves PUT /api/admin/books/{id}.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, err := bookID(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	var in BookInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Error(w, err)
		return
	}

	book, err := h.service.Edit(r.Context(), id, in)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, book)
}

// HandleDelete serves DELETE /api/admin/books/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := bookID(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func bookID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, fault.Validation([]string{"invalid book id"})
	}
	return id, nil
}
