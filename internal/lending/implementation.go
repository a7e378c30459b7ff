// internal/lending/implementation.go
package lending

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"deptlib/internal/catalog"
	"deptlib/internal/storage"
)

// service implements the Service interface. The copies counter on a book
// is a derived value that must stay consistent with the ledger's active
// loan count, so every path that touches one touches the other inside the
// same transaction.
type service struct {
	db      *sqlx.DB
	dialect string
	catalog *catalog.Store
	ledger  *Ledger
	tracer  trace.Tracer
}

// NewService creates a new lending engine over the shared store. The
// dialect must match the driver behind db.
func NewService(db *sqlx.DB, dialect string, catalogStore *catalog.Store) Service {
	return &service{
		db:      db,
		dialect: dialect,
		catalog: catalogStore,
		ledger:  NewLedger(),
		tracer:  otel.Tracer("deptlib/lending"),
	}
}

// Borrow validates the request and commits the copies decrement together
// with the new loan record. Rejections roll the transaction back, so a
// copy is never taken without a matching ledger row.
//
// Validation order: unknown book, then the per-student cap, then
// availability. The cap check runs while holding the student's row lock:
// on Postgres two concurrent borrows for different books share no book
// row, so without the lock both would read the same active count under
// read committed and overshoot the cap. SQLite transactions already
// exclude other writers, so the lock is skipped there.
func (s *service) Borrow(ctx context.Context, studentID, bookID int64) (*BorrowResult, error) {
	ctx, span := s.tracer.Start(ctx, "lending.borrow",
		trace.WithAttributes(
			attribute.Int64("student.id", studentID),
			attribute.Int64("book.id", bookID),
		),
	)
	defer span.End()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin borrow transaction: %w", err)
	}
	defer tx.Rollback()

	book, err := s.catalog.Get(ctx, tx, bookID)
	if err != nil {
		return nil, err
	}

	if s.dialect == storage.DialectPostgres {
		if _, err := tx.ExecContext(ctx,
			`SELECT id FROM students WHERE id = $1 FOR UPDATE`, studentID); err != nil {
			return nil, fmt.Errorf("lock student %d: %w", studentID, err)
		}
	}

	active, err := s.ledger.CountActive(ctx, tx, studentID)
	if err != nil {
		return nil, err
	}
	if active >= MaxActiveLoans {
		return nil, ErrLimitReached
	}

	if err := s.catalog.DecrementCopies(ctx, tx, bookID); err != nil {
		return nil, err
	}

	if _, err := s.ledger.Open(ctx, tx, studentID, bookID, time.Now()); err != nil {
		return nil, err
	}

	// Recount inside the transaction rather than trusting active+1; the
	// count is the value the caller will cache for its UI.
	active, err = s.ledger.CountActive(ctx, tx, studentID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit borrow transaction: %w", err)
	}

	span.SetAttributes(attribute.Int("loans.active", active))
	return &BorrowResult{BookID: book.ID, Title: book.Title, ActiveCount: active}, nil
}

// Return validates ownership and commits the loan close together with the
// copies increment, all or nothing.
func (s *service) Return(ctx context.Context, loanID, studentID int64) (*ReturnResult, error) {
	ctx, span := s.tracer.Start(ctx, "lending.return",
		trace.WithAttributes(
			attribute.Int64("student.id", studentID),
			attribute.Int64("loan.id", loanID),
		),
	)
	defer span.End()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin return transaction: %w", err)
	}
	defer tx.Rollback()

	loan, err := s.ledger.Get(ctx, tx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.StudentID != studentID {
		return nil, ErrNotAuthorized
	}
	if !loan.Active() {
		return nil, ErrAlreadyReturned
	}

	if err := s.ledger.Close(ctx, tx, loanID, time.Now()); err != nil {
		return nil, err
	}

	if err := s.catalog.IncrementCopies(ctx, tx, loan.BookID); err != nil {
		return nil, err
	}

	active, err := s.ledger.CountActive(ctx, tx, studentID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit return transaction: %w", err)
	}

	span.SetAttributes(attribute.Int("loans.active", active))
	return &ReturnResult{ActiveCount: active}, nil
}

// LoansForStudent lists the student's own borrow history.
func (s *service) LoansForStudent(ctx context.Context, studentID int64) ([]StudentLoan, error) {
	return s.ledger.ForStudent(ctx, s.db, studentID)
}

// AllLoans lists every borrow record for administrative review.
func (s *service) AllLoans(ctx context.Context) ([]LoanRecord, error) {
	return s.ledger.All(ctx, s.db, time.Now())
}
