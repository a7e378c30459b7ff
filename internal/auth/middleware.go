// internal/auth/middleware.go
package auth

import (
	"context"
	"net/http"
	"strings"

	"deptlib/internal/fault"
	"deptlib/internal/httpx"
)

type contextKey string

const identityKey contextKey = "identity"

var errAdminOnly = fault.New(fault.KindNotAuthorized, "administrator access required")

// Authenticate resolves a Bearer token into an Identity on the request
// context. Requests without a valid token pass through anonymous; the
// Require middlewares decide what that means per route.
func (r *Registry) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		token := BearerToken(req)
		if token != "" {
			if identity, ok := r.Lookup(token); ok {
				req = req.WithContext(context.WithValue(req.Context(), identityKey, identity))
			}
		}
		next.ServeHTTP(w, req)
	})
}

// RequireStudent rejects callers without an authenticated student
// identity. Admin-only tokens do not carry a student id and are rejected
// too.
func RequireStudent(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		identity, ok := IdentityFrom(req.Context())
		if !ok || identity.StudentID == 0 {
			httpx.Error(w, ErrUnauthenticated)
			return
		}
		next.ServeHTTP(w, req)
	})
}

// RequireAdmin rejects callers without the administrative flag.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		identity, ok := IdentityFrom(req.Context())
		if !ok {
			httpx.Error(w, ErrUnauthenticated)
			return
		}
		if !identity.Admin {
			httpx.Error(w, errAdminOnly)
			return
		}
		next.ServeHTTP(w, req)
	})
}

// IdentityFrom extracts the caller identity stored by Authenticate.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}

// BearerToken extracts the token from the Authorization header, or ""
// when the header is absent or malformed.
func BearerToken(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}
