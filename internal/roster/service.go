// internal/roster/service.go
package roster

import (
	"context"
)

// Service defines the interface for the student roster.
type Service interface {
	Register(ctx context.Context, name, email, password string) (*Student, error)
	Authenticate(ctx context.Context, email, password string) (*Student, error)
	Get(ctx context.Context, id int64) (*Student, error)
}
