// cmd/seed/main.go

// Seed prepares a fresh database: schema, the sample catalog, and one
// sample student (student@example.com / student123).
package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/joho/godotenv"

	"deptlib/internal/roster"
	"deptlib/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using system environment")
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "instance/library.db"
	}

	db, dialect, err := storage.Open(dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := storage.Migrate(db, dialect); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	if err := storage.SeedBooks(db); err != nil {
		log.Fatalf("failed to seed catalog: %v", err)
	}

	rosterSvc := roster.NewService(db)
	_, err = rosterSvc.Register(context.Background(), "Sample Student", "student@example.com", "student123")
	if err != nil && !errors.Is(err, roster.ErrDuplicateEmail) {
		log.Fatalf("failed to seed sample student: %v", err)
	}

	log.Printf("seeded database at %s", dsn)
}
