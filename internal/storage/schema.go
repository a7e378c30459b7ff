package storage

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Migrate creates the three tables if they do not exist. Timestamps are
// stored as RFC3339 text; the copies check backs up the guarded updates
// in the catalog store.
func Migrate(db *sqlx.DB, dialect string) error {
	idColumn := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if dialect == DialectPostgres {
		idColumn = "BIGSERIAL PRIMARY KEY"
	}

	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS books (
			id %s,
			title TEXT NOT NULL,
			author TEXT NOT NULL DEFAULT '',
			year INTEGER,
			isbn TEXT NOT NULL DEFAULT '',
			copies INTEGER NOT NULL DEFAULT 1 CHECK (copies >= 0),
			department TEXT NOT NULL DEFAULT ''
		)`, idColumn),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS students (
			id %s,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL
		)`, idColumn),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS borrows (
			id %s,
			student_id INTEGER NOT NULL REFERENCES students(id),
			book_id INTEGER NOT NULL REFERENCES books(id),
			borrowed_at TEXT NOT NULL,
			returned_at TEXT
		)`, idColumn),
		`CREATE INDEX IF NOT EXISTS idx_borrows_student_open
			ON borrows (student_id) WHERE returned_at IS NULL`,
	}

	for _, statement := range statements {
		if _, err := db.Exec(statement); err != nil {
			return fmt.Errorf("migrate schema: %w", err)
		}
	}

	return nil
}

type sampleBook struct {
	title      string
	author     string
	year       int
	isbn       string
	copies     int
	department string
}

var sampleCatalog = []sampleBook{
	{"Introduction to Algorithms", "Cormen, Leiserson, Rivest", 2009, "0262033844", 3, "CSE"},
	{"Clean Code", "Robert C. Martin", 2008, "0132350882", 2, "CSE"},
	{"Linear Algebra and Its Applications", "Gilbert Strang", 2016, "0980232776", 1, "Math"},
	{"Database System Concepts", "Silberschatz, Korth, Sudarshan", 2010, "0073523321", 2, "CSE"},
	{"Artificial Intelligence: A Modern Approach", "Stuart Russell, Peter Norvig", 2010, "0136042597", 2, "CSE"},
	{"Operating System Concepts", "Silberschatz, Galvin, Gagne", 2018, "1119456339", 2, "CSE"},
	{"Discrete Mathematics and Its Applications", "Kenneth H. Rosen", 2011, "0073383090", 1, "Math"},
	{"Computer Networks", "Andrew S. Tanenbaum", 2010, "0132126958", 1, "CSE"},
	{"Principles of Compiler Design", "Aho, Ullman", 2007, "0201003003", 1, "CSE"},
	{"Modern Database Management", "Jeffrey A. Hoffer", 2012, "0136086203", 1, "CSE"},
}

// SeedBooks loads the sample catalog into an empty books table. A
// non-empty table is left untouched so reseeding is safe.
func SeedBooks(db *sqlx.DB) error {
	var count int
	if err := db.Get(&count, `SELECT COUNT(*) FROM books`); err != nil {
		return fmt.Errorf("count books: %w", err)
	}
	if count > 0 {
		return nil
	}

	const insert = `INSERT INTO books (title, author, year, isbn, copies, department)
		VALUES ($1, $2, $3, $4, $5, $6)`
	for _, b := range sampleCatalog {
		if _, err := db.Exec(insert, b.title, b.author, b.year, b.isbn, b.copies, b.department); err != nil {
			return fmt.Errorf("seed book %q: %w", b.title, err)
		}
	}

	return nil
}
