package main

// Run database migrations:
//   go run ./cmd/migrate [up|down|status]

import (
	"context"
	"os"

	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/storage/db"
	"resume-builder/internal/shared/telemetry"
)

func main() {
	defer telemetry.Sync()
	cfg := config.Load()
	ctx := context.Background()

	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		telemetry.Error("migrate.connect.failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer sqlDB.Close()

	command := db.MigrateUp
	if len(os.Args) > 1 {
		command = os.Args[1]
	}
	if err := db.Migrate(ctx, sqlDB, command); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"command": command, "error": err.Error()})
		os.Exit(1)
	}
	telemetry.Info("migrate.done", map[string]any{"command": command})
}
