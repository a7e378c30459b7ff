// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"deptlib/internal/auth"
	"deptlib/internal/catalog"
	"deptlib/internal/lending"
	"deptlib/internal/roster"
	"deptlib/internal/storage"
	"deptlib/internal/telemetry"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using system environment")
	}

	ctx := context.Background()
	shutdown, err := telemetry.Setup(ctx, "deptlib")
	if err != nil {
		log.Fatalf("failed to set up telemetry: %v", err)
	}
	defer shutdown(ctx)

	dsn := getEnv("DATABASE_URL", "instance/library.db")
	db, dialect, err := storage.Open(dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := storage.Migrate(db, dialect); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	router := newRouter(db, dialect, os.Getenv("ADMIN_PASSWORD"))

	port := getEnv("PORT", "8080")
	log.Printf("deptlib listening on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, router))
}

// newRouter wires the services and the HTTP surface. Identity resolution
// runs on every request; the student and admin gates sit on their route
// groups.
func newRouter(db *sqlx.DB, dialect, adminPassword string) http.Handler {
	catalogStore := catalog.NewStore()
	catalogSvc := catalog.NewService(db, dialect, catalogStore)
	lendingSvc := lending.NewService(db, dialect, catalogStore)
	rosterSvc := roster.NewService(db)

	sessions := auth.NewRegistry()
	authHandler := auth.NewHandler(sessions, adminPassword)
	catalogHandler := catalog.NewHandler(catalogSvc)
	lendingHandler := lending.NewHandler(lendingSvc)
	rosterHandler := roster.NewHandler(rosterSvc, sessions)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(sessions.Authenticate)

	r.Route("/api", func(r chi.Router) {
		r.Get("/search", catalogHandler.HandleSearch)
		r.Post("/register", rosterHandler.HandleRegister)
		r.Post("/login", rosterHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireStudent)
			r.Post("/borrow/{bookID}", lendingHandler.HandleBorrow)
			r.Post("/return/{loanID}", lendingHandler.HandleReturn)
			r.Get("/loans", lendingHandler.HandleStudentLoans)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", authHandler.HandleAdminLogin)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAdmin)
				r.Get("/loans", lendingHandler.HandleAllLoans)
				r.Post("/books", catalogHandler.HandleAdd)
				r.Put("/books/{id}", catalogHandler.HandleEdit)
				r.Delete("/books/{id}", catalogHandler.HandleDelete)
			})
		})
	})

	return r
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
