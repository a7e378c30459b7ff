// internal/lending/service.go
package lending

import (
	"context"
)

// Service is the lending engine: borrow and return as atomic transitions
// over the catalog and the ledger, plus the loan history views.
type Service interface {
	Borrow(ctx context.Context, studentID, bookID int64) (*BorrowResult, error)
	Return(ctx context.Context, loanID, studentID int64) (*ReturnResult, error)
	LoansForStudent(ctx context.Context, studentID int64) ([]StudentLoan, error)
	AllLoans(ctx context.Context) ([]LoanRecord, error)
}
