// internal/lending/implementation_test.go
package lending

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deptlib/internal/catalog"
	"deptlib/internal/storage"
)

func testDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, dialect, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, storage.Migrate(db, dialect))
	require.NoError(t, storage.SeedBooks(db))
	return db
}

func addStudent(t *testing.T, db *sqlx.DB, name string) int64 {
	t.Helper()

	var id int64
	err := db.QueryRowx(
		`INSERT INTO students (name, email, password_hash) VALUES ($1, $2, $3) RETURNING id`,
		name, fmt.Sprintf("%s@example.com", name), "x").Scan(&id)
	require.NoError(t, err)
	return id
}

func bookCopies(t *testing.T, db *sqlx.DB, bookID int64) int {
	t.Helper()

	var copies int
	require.NoError(t, db.Get(&copies, `SELECT copies FROM books WHERE id = $1`, bookID))
	return copies
}

func openLoanCount(t *testing.T, db *sqlx.DB, studentID int64) int {
	t.Helper()

	var count int
	require.NoError(t, db.Get(&count,
		`SELECT COUNT(*) FROM borrows WHERE student_id = $1 AND returned_at IS NULL`, studentID))
	return count
}

// Seeded catalog ids used throughout: 1 = Introduction to Algorithms
// (3 copies), 2 = Clean Code (2 copies), 3 = Strang (1 copy),
// 4 = Database System Concepts (2 copies).
const (
	bookAlgorithms = int64(1)
	bookCleanCode  = int64(2)
	bookStrang     = int64(3)
	bookDatabases  = int64(4)
)

func TestBorrowHappyPath(t *testing.T) {
	db := testDB(t)
	svc := NewService(db, storage.DialectSQLite, catalog.NewStore())
	student := addStudent(t, db, "alice")

	result, err := svc.Borrow(context.Background(), student, bookCleanCode)
	require.NoError(t, err)

	assert.Equal(t, "Clean Code", result.Title)
	assert.Equal(t, 1, result.ActiveCount)
	assert.Equal(t, 1, bookCopies(t, db, bookCleanCode))
	assert.Equal(t, 1, openLoanCount(t, db, student))
}

func TestBorrowRejections(t *testing.T) {
	db := testDB(t)
	svc := NewService(db, storage.DialectSQLite, catalog.NewStore())
	student := addStudent(t, db, "bob")
	ctx := context.Background()

	t.Run("unknown_book", func(t *testing.T) {
		_, err := svc.Borrow(ctx, student, 999)
		assert.ErrorIs(t, err, catalog.ErrBookNotFound)
	})

	t.Run("no_copies_left_and_no_partial_state", func(t *testing.T) {
		_, err := db.Exec(`UPDATE books SET copies = 0 WHERE id = $1`, bookStrang)
		require.NoError(t, err)

		_, err = svc.Borrow(ctx, student, bookStrang)
		assert.ErrorIs(t, err, catalog.ErrUnavailable)

		assert.Equal(t, 0, bookCopies(t, db, bookStrang))
		assert.Equal(t, 0, openLoanCount(t, db, student))
	})
}

// TestLendingScenario walks the canonical cycle: three borrows up to the
// cap, a rejected fourth, then a return that frees a slot and restores
// the copy count.
func TestLendingScenario(t *testing.T) {
	db := testDB(t)
	svc := NewService(db, storage.DialectSQLite, catalog.NewStore())
	student := addStudent(t, db, "carol")
	ctx := context.Background()

	first, err := svc.Borrow(ctx, student, bookCleanCode)
	require.NoError(t, err)
	assert.Equal(t, 1, first.ActiveCount)
	assert.Equal(t, 1, bookCopies(t, db, bookCleanCode))

	second, err := svc.Borrow(ctx, student, bookAlgorithms)
	require.NoError(t, err)
	assert.Equal(t, 2, second.ActiveCount)

	third, err := svc.Borrow(ctx, student, bookDatabases)
	require.NoError(t, err)
	assert.Equal(t, 3, third.ActiveCount)

	_, err = svc.Borrow(ctx, student, bookStrang)
	assert.ErrorIs(t, err, ErrLimitReached)
	assert.Equal(t, 1, bookCopies(t, db, bookStrang), "a rejected borrow must not take a copy")

	loans, err := svc.LoansForStudent(ctx, student)
	require.NoError(t, err)
	require.Len(t, loans, 3)

	var cleanCodeLoan int64
	for _, loan := range loans {
		if loan.BookID == bookCleanCode {
			cleanCodeLoan = loan.LoanID
		}
	}
	require.NotZero(t, cleanCodeLoan)

	returned, err := svc.Return(ctx, cleanCodeLoan, student)
	require.NoError(t, err)
	assert.Equal(t, 2, returned.ActiveCount)
	assert.Equal(t, 2, bookCopies(t, db, bookCleanCode))

	records, err := svc.AllLoans(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for _, record := range records {
		if record.LoanID == cleanCodeLoan {
			require.NotNil(t, record.ReturnedAt)
			assert.Equal(t, "0d 0h", record.Duration)
		}
	}
}

func TestReturnRejections(t *testing.T) {
	db := testDB(t)
	svc := NewService(db, storage.DialectSQLite, catalog.NewStore())
	owner := addStudent(t, db, "dave")
	intruder := addStudent(t, db, "eve")
	ctx := context.Background()

	_, err := svc.Borrow(ctx, owner, bookCleanCode)
	require.NoError(t, err)

	loans, err := svc.LoansForStudent(ctx, owner)
	require.NoError(t, err)
	require.Len(t, loans, 1)
	loanID := loans[0].LoanID

	t.Run("unknown_loan", func(t *testing.T) {
		_, err := svc.Return(ctx, 999, owner)
		assert.ErrorIs(t, err, ErrLoanNotFound)
	})

	t.Run("foreign_loan_leaves_state_unchanged", func(t *testing.T) {
		_, err := svc.Return(ctx, loanID, intruder)
		assert.ErrorIs(t, err, ErrNotAuthorized)

		assert.Equal(t, 1, bookCopies(t, db, bookCleanCode))
		assert.Equal(t, 1, openLoanCount(t, db, owner))
	})

	t.Run("double_return_does_not_double_increment", func(t *testing.T) {
		_, err := svc.Return(ctx, loanID, owner)
		require.NoError(t, err)
		assert.Equal(t, 2, bookCopies(t, db, bookCleanCode))

		_, err = svc.Return(ctx, loanID, owner)
		assert.ErrorIs(t, err, ErrAlreadyReturned)
		assert.Equal(t, 2, bookCopies(t, db, bookCleanCode))
	})
}

func TestLoanHistoryOrdering(t *testing.T) {
	db := testDB(t)
	svc := NewService(db, storage.DialectSQLite, catalog.NewStore())
	student := addStudent(t, db, "frank")
	ctx := context.Background()

	_, err := svc.Borrow(ctx, student, bookCleanCode)
	require.NoError(t, err)
	_, err = svc.Borrow(ctx, student, bookAlgorithms)
	require.NoError(t, err)

	// Pin distinct timestamps so the ordering assertion is deterministic.
	_, err = db.Exec(`UPDATE borrows SET borrowed_at = $1 WHERE book_id = $2`,
		"2026-08-01T10:00:00.000000000Z", bookCleanCode)
	require.NoError(t, err)
	_, err = db.Exec(`UPDATE borrows SET borrowed_at = $1 WHERE book_id = $2`,
		"2026-08-02T10:00:00.000000000Z", bookAlgorithms)
	require.NoError(t, err)

	loans, err := svc.LoansForStudent(ctx, student)
	require.NoError(t, err)
	require.Len(t, loans, 2)
	assert.Equal(t, bookAlgorithms, loans[0].BookID, "newest loan first")
	assert.Equal(t, bookCleanCode, loans[1].BookID)

	records, err := svc.AllLoans(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, bookAlgorithms, records[0].BookID)
	assert.Equal(t, "frank", records[0].StudentName)
	assert.Contains(t, records[0].Duration, "(ongoing)")
}

// TestConcurrentBorrowsNeverOversell races many students for the single
// Strang copy: exactly one transaction may win.
func TestConcurrentBorrowsNeverOversell(t *testing.T) {
	db := testDB(t)
	svc := NewService(db, storage.DialectSQLite, catalog.NewStore())
	ctx := context.Background()

	const contenders = 8
	students := make([]int64, contenders)
	for i := range students {
		students[i] = addStudent(t, db, fmt.Sprintf("racer%d", i))
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		wins     int
		failures []error
	)

	for _, student := range students {
		wg.Add(1)
		go func(studentID int64) {
			defer wg.Done()
			_, err := svc.Borrow(ctx, studentID, bookStrang)

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
			} else {
				failures = append(failures, err)
			}
		}(student)
	}
	wg.Wait()

	assert.Equal(t, 1, wins, "exactly one concurrent borrow may succeed")
	require.Len(t, failures, contenders-1)
	for _, err := range failures {
		assert.ErrorIs(t, err, catalog.ErrUnavailable)
	}
	assert.Equal(t, 0, bookCopies(t, db, bookStrang))
}

// TestConcurrentBorrowsRespectCap races one student at two active loans
// toward two more borrows of distinct books. The books share no row, so
// only the per-student serialization keeps the count at the cap.
func TestConcurrentBorrowsRespectCap(t *testing.T) {
	db := testDB(t)
	svc := NewService(db, storage.DialectSQLite, catalog.NewStore())
	student := addStudent(t, db, "grace")
	ctx := context.Background()

	_, err := svc.Borrow(ctx, student, bookCleanCode)
	require.NoError(t, err)
	_, err = svc.Borrow(ctx, student, bookAlgorithms)
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		wins     int
		failures []error
	)

	for _, bookID := range []int64{bookStrang, bookDatabases} {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := svc.Borrow(ctx, student, id)

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
			} else {
				failures = append(failures, err)
			}
		}(bookID)
	}
	wg.Wait()

	assert.Equal(t, 1, wins, "only one slot remains under the cap")
	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0], ErrLimitReached)
	assert.Equal(t, MaxActiveLoans, openLoanCount(t, db, student))
}
