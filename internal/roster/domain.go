// internal/roster/domain.go
package roster

import (
	"deptlib/internal/fault"
)

var (
	ErrStudentNotFound    = fault.New(fault.KindNotFound, "student not found")
	ErrDuplicateEmail     = fault.New(fault.KindDuplicateEmail, "email already registered")
	ErrInvalidCredentials = fault.New(fault.KindUnauthenticated, "invalid credentials")
	ErrRateLimited        = fault.New(fault.KindRateLimited, "too many attempts, try again later")
)

// Student is a registered borrower. The password hash never leaves the
// package through JSON.
type Student struct {
	ID           int64  `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"password_hash" json:"-"`
}
