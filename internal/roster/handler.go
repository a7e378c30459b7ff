// internal/roster/handler.go
package roster

import (
	"net/http"

	"deptlib/internal/auth"
	"deptlib/internal/httpx"
)

type Handler struct {
	service  Service
	registry *auth.Registry
}

func NewHandler(service Service, registry *auth.Registry) *Handler {
	return &Handler{service: service, registry: registry}
}

// HandleRegister serves POST /api/register.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}

	student, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, student)
}

// HandleLogin serves POST /api/login, issuing a bearer token on success.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}

	student, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	token := h.registry.Issue(auth.Identity{StudentID: student.ID})
	httpx.JSON(w, http.StatusOK, map[string]any{
		"token":   token,
		"student": student,
	})
}
