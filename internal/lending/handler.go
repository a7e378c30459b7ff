// internal/lending/handler.go
package lending

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"deptlib/internal/auth"
	"deptlib/internal/fault"
	"deptlib/internal/httpx"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// HandleBorrow serves POST /api/borrow/{bookID}.
func (h *Handler) HandleBorrow(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		httpx.Error(w, auth.ErrUnauthenticated)
		return
	}

	bookID, err := pathID(r, "bookID", "invalid book id")
	if err != nil {
		httpx.Error(w, err)
		return
	}

	result, err := h.service.Borrow(r.Context(), identity.StudentID, bookID)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, result)
}

// HandleReturn serves POST /api/return/{loanID}.
func (h *Handler) HandleReturn(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		httpx.Error(w, auth.ErrUnauthenticated)
		return
	}

	loanID, err := pathID(r, "loanID", "invalid loan id")
	if err != nil {
		httpx.Error(w, err)
		return
	}

	result, err := h.service.Return(r.Context(), loanID, identity.StudentID)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, result)
}

// HandleStudentLoans serves GET /api/loans.
func (h *Handler) HandleStudentLoans(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		httpx.Error(w, auth.ErrUnauthenticated)
		return
	}

	loans, err := h.service.LoansForStudent(r.Context(), identity.StudentID)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, loans)
}

// HandleAllLoans serves GET /api/admin/loans.
func (h *Handler) HandleAllLoans(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.AllLoans(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, records)
}

func pathID(r *http.Request, name, problem string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, fault.Validation([]string{problem})
	}
	return id, nil
}
