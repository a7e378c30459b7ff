// internal/catalog/store.go
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"deptlib/internal/fault"
)

var (
	ErrBookNotFound = fault.New(fault.KindNotFound, "book not found")
	ErrUnavailable  = fault.New(fault.KindUnavailable, "book not available")
)

const bookColumns = `id, title, author, year, isbn, copies, department`

// Store performs book row operations against whichever execution scope
// the caller supplies: the connection pool for plain reads, a transaction
// when the lending engine needs the copy mutation and the ledger write to
// land together.
type Store struct{}

func NewStore() *Store {
	return &Store{}
}

// Get fetches a book by id.
func (st *Store) Get(ctx context.Context, ext sqlx.ExtContext, id int64) (*Book, error) {
	const query = `SELECT ` + bookColumns + ` FROM books WHERE id = $1`

	var book Book
	if err := sqlx.GetContext(ctx, ext, &book, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("get book %d: %w", id, err)
	}

	return &book, nil
}

// DecrementCopies takes one available copy. The WHERE guard keeps copies
// from ever going negative; under concurrent borrows the row lock makes
// the losing transaction see zero affected rows.
func (st *Store) DecrementCopies(ctx context.Context, ext sqlx.ExtContext, id int64) error {
	res, err := ext.ExecContext(ctx,
		`UPDATE books SET copies = copies - 1 WHERE id = $1 AND copies > 0`, id)
	if err != nil {
		return fmt.Errorf("decrement copies for book %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("decrement copies for book %d: %w", id, err)
	}
	if affected == 0 {
		// Distinguish a missing book from an exhausted one.
		if _, getErr := st.Get(ctx, ext, id); getErr != nil {
			return getErr
		}
		return ErrUnavailable
	}

	return nil
}

// IncrementCopies puts one copy back. There is deliberately no upper
// bound: the schema does not track the original total separately, so the
// ledger is the only authority on how many copies are out.
func (st *Store) IncrementCopies(ctx context.Context, ext sqlx.ExtContext, id int64) error {
	res, err := ext.ExecContext(ctx,
		`UPDATE books SET copies = copies + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment copies for book %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment copies for book %d: %w", id, err)
	}
	if affected == 0 {
		return ErrBookNotFound
	}

	return nil
}

// Insert creates a book row and fills in its assigned id.
func (st *Store) Insert(ctx context.Context, ext sqlx.ExtContext, book *Book) error {
	const query = `INSERT INTO books (title, author, year, isbn, copies, department)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`

	row := ext.QueryRowxContext(ctx, query,
		book.Title, book.Author, book.Year, book.ISBN, book.Copies, book.Department)
	if err := row.Scan(&book.ID); err != nil {
		return fmt.Errorf("insert book %q: %w", book.Title, err)
	}

	return nil
}

// Update replaces every mutable field of the book row.
func (st *Store) Update(ctx context.Context, ext sqlx.ExtContext, book *Book) error {
	const query = `UPDATE books
		SET title = $1, author = $2, year = $3, isbn = $4, copies = $5, department = $6
		WHERE id = $7`

	res, err := ext.ExecContext(ctx, query,
		book.Title, book.Author, book.Year, book.ISBN, book.Copies, book.Department, book.ID)
	if err != nil {
		return fmt.Errorf("update book %d: %w", book.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update book %d: %w", book.ID, err)
	}
	if affected == 0 {
		return ErrBookNotFound
	}

	return nil
}

// Delete removes a book row.
func (st *Store) Delete(ctx context.Context, ext sqlx.ExtContext, id int64) error {
	res, err := ext.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete book %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete book %d: %w", id, err)
	}
	if affected == 0 {
		return ErrBookNotFound
	}

	return nil
}
