// internal/catalog/service.go
package catalog

import (
	"context"
)

// Service is the read and maintenance surface of the catalog.
type Service interface {
	Search(ctx context.Context, filter Filter) ([]Book, error)
	Get(ctx context.Context, id int64) (*Book, error)
	Add(ctx context.Context, in BookInput) (*Book, error)
	Edit(ctx context.Context, id int64, in BookInput) (*Book, error)
	Delete(ctx context.Context, id int64) error
}
