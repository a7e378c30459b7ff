// internal/roster/implementation.go
package roster

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/time/rate"

	"deptlib/internal/fault"
	"deptlib/internal/storage"
)

// service implements the Service interface.
type service struct {
	db          *sqlx.DB
	rateLimiter *rate.Limiter
}

// NewService creates a new roster service instance.
func NewService(db *sqlx.DB) Service {
	return &service{
		db:          db,
		rateLimiter: rate.NewLimiter(rate.Every(1*time.Minute), 5), // 5 requests per minute
	}
}

// Register creates a new student. The email is case-normalized to
// lowercase before storage; a collision with an existing address surfaces
// as ErrDuplicateEmail.
func (s *service) Register(ctx context.Context, name, email, password string) (*Student, error) {
	if !s.rateLimiter.Allow() {
		return nil, ErrRateLimited
	}

	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	var problems []string
	if name == "" {
		problems = append(problems, "name is required")
	}
	if email == "" {
		problems = append(problems, "email is required")
	}
	if password == "" {
		problems = append(problems, "password is required")
	}
	if len(problems) > 0 {
		return nil, fault.Validation(problems)
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	student := &Student{Name: name, Email: email, PasswordHash: passwordHash}

	const query = `INSERT INTO students (name, email, password_hash)
		VALUES ($1, $2, $3) RETURNING id`
	row := s.db.QueryRowxContext(ctx, query, student.Name, student.Email, student.PasswordHash)
	if err := row.Scan(&student.ID); err != nil {
		if storage.IsUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert student: %w", err)
	}

	return student, nil
}

// Authenticate verifies a student's credentials and returns the student
// if successful. Unknown address and wrong password are reported the same
// way.
func (s *service) Authenticate(ctx context.Context, email, password string) (*Student, error) {
	if !s.rateLimiter.Allow() {
		return nil, ErrRateLimited
	}

	email = strings.ToLower(strings.TrimSpace(email))

	student, err := s.getByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	ok, err := VerifyPassword(password, student.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return student, nil
}

func (s *service) getByEmail(ctx context.Context, email string) (*Student, error) {
	const query = `SELECT id, name, email, password_hash FROM students WHERE email = $1`

	var student Student
	if err := sqlx.GetContext(ctx, s.db, &student, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get student by email: %w", err)
	}

	return &student, nil
}

// Get retrieves a student by id.
func (s *service) Get(ctx context.Context, id int64) (*Student, error) {
	const query = `SELECT id, name, email, password_hash FROM students WHERE id = $1`

	var student Student
	if err := sqlx.GetContext(ctx, s.db, &student, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("get student %d: %w", id, err)
	}

	return &student, nil
}
