// Runs the goose SQL migrations in migrations/ against the configured
// database.
//
//	go run ./cmd/migrate            # apply all pending migrations
//	go run ./cmd/migrate -down      # roll back the latest migration
//	go run ./cmd/migrate -status    # print migration status
package main

import (
	"context"
	"database/sql"
	"flag"
	"log"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/openjuris/docketsync/internal/storage/postgres"
)

func main() {
	_ = godotenv.Load()

	var (
		dir    = flag.String("dir", "migrations", "directory with migration files")
		down   = flag.Bool("down", false, "roll back the latest migration")
		status = flag.Bool("status", false, "print migration status")
	)
	flag.Parse()

	cfg, err := postgres.LoadConfigFromEnv(context.Background())
	if err != nil {
		log.Fatalf("failed to load db config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("failed to set goose dialect: %v", err)
	}

	switch {
	case *status:
		err = goose.Status(db, *dir)
	case *down:
		err = goose.Down(db, *dir)
	default:
		err = goose.Up(db, *dir)
	}
	if err != nil {
		log.Fatalf("migration failed: %v", err)
	}
}
