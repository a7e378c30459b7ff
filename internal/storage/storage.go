// Package storage opens and prepares the relational store shared by the
// catalog and the borrow ledger. SQLite is the default engine; a
// postgres:// DATABASE_URL selects Postgres. Both speak the same SQL
// surface (numbered placeholders, RETURNING, text timestamps).
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite3"
)

// Open connects to the store described by dsn and reports the dialect in
// use. Anything that is not a postgres:// URL is treated as a SQLite file
// path.
//
// SQLite opens with _txlock=immediate so every transaction takes the
// write lock up front; combined with the busy timeout this serializes
// concurrent borrow transactions instead of failing them with SQLITE_BUSY.
func Open(dsn string) (*sqlx.DB, string, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		db, err := sqlx.Open("postgres", dsn)
		if err != nil {
			return nil, "", fmt.Errorf("open postgres: %w", err)
		}
		return db, DialectPostgres, nil
	}

	if dir := filepath.Dir(dsn); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, "", fmt.Errorf("create db dir: %w", err)
		}
	}

	sqliteDSN := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1&_txlock=immediate", dsn)
	db, err := sqlx.Open("sqlite3", sqliteDSN)
	if err != nil {
		return nil, "", fmt.Errorf("open sqlite: %w", err)
	}
	return db, DialectSQLite, nil
}

// IsUniqueViolation reports whether err is a unique-constraint violation
// from either supported driver.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}

	return false
}
