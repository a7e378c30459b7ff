// internal/auth/handler.go
package auth

import (
	"crypto/subtle"
	"net/http"

	"deptlib/internal/fault"
	"deptlib/internal/httpx"
)

var errBadAdminPassword = fault.New(fault.KindUnauthenticated, "invalid password")

// Handler serves the administrative login and the shared logout.
type Handler struct {
	registry      *Registry
	adminPassword string
}

// NewHandler wires the session registry with the configured admin
// password. An empty password disables administrative login entirely.
func NewHandler(registry *Registry, adminPassword string) *Handler {
	return &Handler{registry: registry, adminPassword: adminPassword}
}

// HandleAdminLogin serves POST /api/admin/login.
func (h *Handler) HandleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}

	if h.adminPassword == "" ||
		subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.adminPassword)) != 1 {
		httpx.Error(w, errBadAdminPassword)
		return
	}

	token := h.registry.Issue(Identity{Admin: true})
	httpx.JSON(w, http.StatusOK, map[string]string{"token": token})
}

// HandleLogout serves POST /api/logout for students and admins alike.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if token := BearerToken(r); token != "" {
		h.registry.Revoke(token)
	}
	w.WriteHeader(http.StatusNoContent)
}
