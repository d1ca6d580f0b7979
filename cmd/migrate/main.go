package main

// Run database migrations:
//   go run ./cmd/migrate        # apply pending migrations
//   go run ./cmd/migrate down   # roll back the latest one

import (
	"context"
	"log"
	"os"

	"docchat-backend/internal/shared/config"
	"docchat-backend/internal/shared/storage/db"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	direction := "up"
	if len(os.Args) > 1 {
		direction = os.Args[1]
	}
	if direction != "up" && direction != "down" {
		log.Printf("unknown direction %q, expected up or down", direction)
		os.Exit(2)
	}

	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		log.Printf("failed to connect database: %v", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	if direction == "down" {
		err = db.RollbackLast(ctx, sqlDB)
	} else {
		err = db.RunMigrations(ctx, sqlDB)
	}
	if err != nil {
		log.Printf("failed to migrate %s: %v", direction, err)
		os.Exit(1)
	}
}
