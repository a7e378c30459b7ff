// internal/lending/domain.go
package lending

import (
	"fmt"
	"time"

	"deptlib/internal/fault"
)

var (
	ErrLoanNotFound    = fault.New(fault.KindNotFound, "borrow record not found")
	ErrLimitReached    = fault.New(fault.KindLimitReached, "borrow limit reached (3 books); return a book before borrowing another")
	ErrNotAuthorized   = fault.New(fault.KindNotAuthorized, "borrow record belongs to a different student")
	ErrAlreadyReturned = fault.New(fault.KindAlreadyReturned, "book already returned")
)

// MaxActiveLoans is the per-student cap on simultaneous open loans.
const MaxActiveLoans = 3

// Loan is one row of the borrow ledger. ReturnedAt is nil while the loan
// is open; once set it never changes again.
type Loan struct {
	ID         int64   `db:"id" json:"id"`
	StudentID  int64   `db:"student_id" json:"student_id"`
	BookID     int64   `db:"book_id" json:"book_id"`
	BorrowedAt string  `db:"borrowed_at" json:"borrowed_at"`
	ReturnedAt *string `db:"returned_at" json:"returned_at"`
}

// Active reports whether the loan is still open.
func (l Loan) Active() bool { return l.ReturnedAt == nil }

// StudentLoan is a loan joined with its book, for a student's own history.
type StudentLoan struct {
	LoanID     int64   `db:"loan_id" json:"loan_id"`
	BookID     int64   `db:"book_id" json:"book_id"`
	Title      string  `db:"title" json:"title"`
	Author     string  `db:"author" json:"author"`
	BorrowedAt string  `db:"borrowed_at" json:"borrowed_at"`
	ReturnedAt *string `db:"returned_at" json:"returned_at"`
}

// LoanRecord is the administrative view: loan joined with student and
// book, annotated with a readable duration.
type LoanRecord struct {
	LoanID      int64   `db:"loan_id" json:"loan_id"`
	StudentID   int64   `db:"student_id" json:"student_id"`
	StudentName string  `db:"student_name" json:"student_name"`
	Email       string  `db:"email" json:"email"`
	BookID      int64   `db:"book_id" json:"book_id"`
	Title       string  `db:"title" json:"title"`
	BorrowedAt  string  `db:"borrowed_at" json:"borrowed_at"`
	ReturnedAt  *string `db:"returned_at" json:"returned_at"`
	Duration    string  `db:"-" json:"duration"`
}

// BorrowResult reports a committed borrow back to the caller.
type BorrowResult struct {
	BookID      int64  `json:"book_id"`
	Title       string `json:"title"`
	ActiveCount int    `json:"active_count"`
}

// ReturnResult reports a committed return back to the caller.
type ReturnResult struct {
	ActiveCount int `json:"active_count"`
}

const durationUnavailable = "n/a"

// storedTimeFormat is RFC3339 with a fixed-width fraction so the text
// timestamps sort chronologically under ORDER BY.
const storedTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// timestamp renders a ledger time for storage.
func timestamp(t time.Time) string {
	return t.UTC().Format(storedTimeFormat)
}

// parseTimestamp accepts the RFC3339 form this service writes plus the
// zone-less ISO form the legacy database used.
func parseTimestamp(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02T15:04:05.999999999", raw, time.UTC)
}

// readableDuration renders the elapsed time of a loan as days and hours,
// marking open loans as ongoing. Unparsable timestamps, and a return
// stamped before the borrow, degrade to "n/a" instead of failing the
// listing.
func readableDuration(borrowedAt string, returnedAt *string, now time.Time) string {
	borrowed, err := parseTimestamp(borrowedAt)
	if err != nil {
		return durationUnavailable
	}

	end := now
	ongoing := true
	if returnedAt != nil {
		returned, parseErr := parseTimestamp(*returnedAt)
		if parseErr != nil {
			return durationUnavailable
		}
		end = returned
		ongoing = false
	}

	elapsed := int(end.Sub(borrowed).Hours())
	if elapsed < 0 {
		return durationUnavailable
	}
	days, hours := elapsed/24, elapsed%24
	if ongoing {
		return fmt.Sprintf("%dd %dh (ongoing)", days, hours)
	}
	return fmt.Sprintf("%dd %dh", days, hours)
}
