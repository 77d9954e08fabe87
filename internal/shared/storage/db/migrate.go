package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationsDir = "migrations"

// Migration commands accepted by Migrate.
const (
	MigrateUp     = "up"
	MigrateDown   = "down"
	MigrateStatus = "status"
)

// Migrate runs one goose command against the embedded résumé-builder schema.
// Down rolls back a single version. A nil database is a no-op so in-memory dev
// builds can call it unconditionally.
func Migrate(ctx context.Context, database *sql.DB, command string) error {
	run, ok := migrateCommands[command]
	if !ok {
		return fmt.Errorf("unknown migrate command %q (want up, down or status)", command)
	}
	if database == nil {
		return nil
	}
	goose.SetBaseFS(migrationFiles)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := run(ctx, database, migrationsDir); err != nil {
		return fmt.Errorf("migrate %s: %w", command, err)
	}
	return nil
}

var migrateCommands = map[string]func(ctx context.Context, database *sql.DB, dir string) error{
	MigrateUp: func(ctx context.Context, database *sql.DB, dir string) error {
		return goose.UpContext(ctx, database, dir)
	},
	MigrateDown: func(ctx context.Context, database *sql.DB, dir string) error {
		return goose.DownContext(ctx, database, dir)
	},
	MigrateStatus: func(ctx context.Context, database *sql.DB, dir string) error {
		return goose.StatusContext(ctx, database, dir)
	},
}
