// internal/auth/session.go

// Package auth supplies caller identity to the gated operations: opaque
// bearer tokens mapped to a student id or an administrative flag. The
// core trusts whatever identity this package resolves.
package auth

import (
	"sync"

	"github.com/google/uuid"

	"deptlib/internal/fault"
)

var ErrUnauthenticated = fault.New(fault.KindUnauthenticated, "authentication required")

// Identity is what the rest of the system trusts about a caller.
type Identity struct {
	StudentID int64
	Admin     bool
}

// Registry holds the live sessions. Tokens are opaque uuids kept in
// memory for the lifetime of the process.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]Identity
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]Identity)}
}

// Issue creates a session for the identity and returns its bearer token.
func (r *Registry) Issue(identity Identity) string {
	token := uuid.NewString()

	r.mu.Lock()
	r.sessions[token] = identity
	r.mu.Unlock()

	return token
}

// Lookup resolves a bearer token.
func (r *Registry) Lookup(token string) (Identity, bool) {
	r.mu.RLock()
	identity, ok := r.sessions[token]
	r.mu.RUnlock()

	return identity, ok
}

// Revoke ends a session. Revoking an unknown token is a no-op.
func (r *Registry) Revoke(token string) {
	r.mu.Lock()
	delete(r.sessions, token)
	r.mu.Unlock()
}
