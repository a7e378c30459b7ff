// internal/catalog/implementation.go
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect import
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect import
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// maxSearchResults caps how many books one search can return.
const maxSearchResults = 200

// service implements the Service interface.
type service struct {
	db     *sqlx.DB
	store  *Store
	gq     goqu.DialectWrapper
	tracer trace.Tracer
}

// NewService creates a new catalog service instance. The dialect selects
// the goqu SQL flavor and must match the driver behind db.
func NewService(db *sqlx.DB, dialect string, store *Store) Service {
	return &service{
		db:     db,
		store:  store,
		gq:     goqu.Dialect(dialect),
		tracer: otel.Tracer("deptlib/catalog"),
	}
}

// Search runs the composed filter query: every supplied predicate ANDs
// onto the statement, results come back in title order, capped at
// maxSearchResults. No filters means the first page of the catalog
// alphabetically.
func (s *service) Search(ctx context.Context, filter Filter) ([]Book, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.search",
		trace.WithAttributes(
			attribute.String("search.text", filter.Text),
			attribute.String("search.department", filter.Department),
			attribute.Bool("search.available_only", filter.AvailableOnly),
		),
	)
	defer span.End()

	ds := s.gq.From("books").
		Select("id", "title", "author", "year", "isbn", "copies", "department")

	if filter.Text != "" {
		pattern := "%" + strings.ToLower(filter.Text) + "%"
		ds = ds.Where(goqu.Or(
			goqu.L("lower(title)").Like(pattern),
			goqu.L("lower(author)").Like(pattern),
			goqu.L("lower(isbn)").Like(pattern),
		))
	}
	if filter.Department != "" {
		ds = ds.Where(goqu.C("department").Eq(filter.Department))
	}
	if filter.MinYear != nil {
		ds = ds.Where(goqu.C("year").Gte(*filter.MinYear))
	}
	if filter.MaxYear != nil {
		ds = ds.Where(goqu.C("year").Lte(*filter.MaxYear))
	}
	if filter.AvailableOnly {
		ds = ds.Where(goqu.C("copies").Gt(0))
	}

	query, args, err := ds.
		Order(goqu.C("title").Asc()).
		Limit(maxSearchResults).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build search query: %w", err)
	}

	books := make([]Book, 0)
	if err := sqlx.SelectContext(ctx, s.db, &books, query, args...); err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}

	span.SetAttributes(attribute.Int("search.results", len(books)))
	return books, nil
}

// Get retrieves one book by id.
func (s *service) Get(ctx context.Context, id int64) (*Book, error) {
	return s.store.Get(ctx, s.db, id)
}

// Add validates administrative input and creates the book.
func (s *service) Add(ctx context.Context, in BookInput) (*Book, error) {
	book, err := in.validate()
	if err != nil {
		return nil, err
	}

	if err := s.store.Insert(ctx, s.db, &book); err != nil {
		return nil, err
	}

	return &book, nil
}

// Edit validates administrative input and replaces the book's fields.
func (s *service) Edit(ctx context.Context, id int64, in BookInput) (*Book, error) {
	book, err := in.validate()
	if err != nil {
		return nil, err
	}
	book.ID = id

	if err := s.store.Update(ctx, s.db, &book); err != nil {
		return nil, err
	}

	return &book, nil
}

// Delete removes a book from the catalog.
func (s *service) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, s.db, id)
}
