// internal/lending/ledger.go
package lending

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Ledger reads and writes borrow records. Like catalog.Store, every
// method takes its execution scope as an argument so the engine can hold
// both halves of a borrow or return inside one transaction.
type Ledger struct{}

func NewLedger() *Ledger {
	return &Ledger{}
}

// CountActive returns the number of open loans held by a student.
func (l *Ledger) CountActive(ctx context.Context, ext sqlx.ExtContext, studentID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM borrows WHERE student_id = $1 AND returned_at IS NULL`

	var count int
	if err := sqlx.GetContext(ctx, ext, &count, query, studentID); err != nil {
		return 0, fmt.Errorf("count active loans for student %d: %w", studentID, err)
	}

	return count, nil
}

// Open inserts a new active loan and returns its id.
func (l *Ledger) Open(ctx context.Context, ext sqlx.ExtContext, studentID, bookID int64, at time.Time) (int64, error) {
	const query = `INSERT INTO borrows (student_id, book_id, borrowed_at)
		VALUES ($1, $2, $3) RETURNING id`

	var id int64
	row := ext.QueryRowxContext(ctx, query, studentID, bookID, timestamp(at))
	if err := row.Scan(&id); err != nil {
		return 0, fmt.Errorf("open loan for student %d book %d: %w", studentID, bookID, err)
	}

	return id, nil
}

// Get fetches a loan by id.
func (l *Ledger) Get(ctx context.Context, ext sqlx.ExtContext, loanID int64) (*Loan, error) {
	const query = `SELECT id, student_id, book_id, borrowed_at, returned_at
		FROM borrows WHERE id = $1`

	var loan Loan
	if err := sqlx.GetContext(ctx, ext, &loan, query, loanID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLoanNotFound
		}
		return nil, fmt.Errorf("get loan %d: %w", loanID, err)
	}

	return &loan, nil
}

// Close stamps the loan returned. The WHERE guard makes a second close of
// the same loan a no-op reported as ErrAlreadyReturned, so a racing
// double-return can never double-increment copies.
func (l *Ledger) Close(ctx context.Context, ext sqlx.ExtContext, loanID int64, at time.Time) error {
	res, err := ext.ExecContext(ctx,
		`UPDATE borrows SET returned_at = $1 WHERE id = $2 AND returned_at IS NULL`,
		timestamp(at), loanID)
	if err != nil {
		return fmt.Errorf("close loan %d: %w", loanID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("close loan %d: %w", loanID, err)
	}
	if affected == 0 {
		return ErrAlreadyReturned
	}

	return nil
}

// ForStudent lists a student's loans joined with book title and author,
// newest first.
func (l *Ledger) ForStudent(ctx context.Context, ext sqlx.ExtContext, studentID int64) ([]StudentLoan, error) {
	const query = `SELECT br.id AS loan_id, bk.id AS book_id, bk.title, bk.author,
			br.borrowed_at, br.returned_at
		FROM borrows br JOIN books bk ON br.book_id = bk.id
		WHERE br.student_id = $1
		ORDER BY br.borrowed_at DESC`

	loans := make([]StudentLoan, 0)
	if err := sqlx.SelectContext(ctx, ext, &loans, query, studentID); err != nil {
		return nil, fmt.Errorf("list loans for student %d: %w", studentID, err)
	}

	return loans, nil
}

// All lists every loan joined with student and book, newest first, with
// the readable duration filled in.
func (l *Ledger) All(ctx context.Context, ext sqlx.ExtContext, now time.Time) ([]LoanRecord, error) {
	const query = `SELECT br.id AS loan_id, br.borrowed_at, br.returned_at,
			br.student_id, s.name AS student_name, s.email,
			bk.id AS book_id, bk.title
		FROM borrows br
		JOIN students s ON br.student_id = s.id
		JOIN books bk ON br.book_id = bk.id
		ORDER BY br.borrowed_at DESC`

	records := make([]LoanRecord, 0)
	if err := sqlx.SelectContext(ctx, ext, &records, query); err != nil {
		return nil, fmt.Errorf("list all loans: %w", err)
	}

	for i := range records {
		records[i].Duration = readableDuration(records[i].BorrowedAt, records[i].ReturnedAt, now)
	}

	return records, nil
}
