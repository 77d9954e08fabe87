package db

import (
	"context"
	"io/fs"
	"strings"
	"testing"
)

func TestMigrationsHaveUpAndDown(t *testing.T) {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	if len(entries) == 0 {
		t.Fatalf("expected embedded migrations")
	}
	for _, e := range entries {
		raw, err := fs.ReadFile(migrationFiles, "migrations/"+e.Name())
		if err != nil {
			t.Fatalf("read %s: %v", e.Name(), err)
		}
		body := string(raw)
		if !strings.Contains(body, "-- +goose Up") || !strings.Contains(body, "-- +goose Down") {
			t.Fatalf("%s is missing goose annotations", e.Name())
		}
	}
}

func TestMigrateRejectsUnknownCommand(t *testing.T) {
	if err := Migrate(context.Background(), nil, "sideways"); err == nil {
		t.Fatalf("expected error for unknown command")
	}
}

func TestMigrateNilDatabaseIsNoop(t *testing.T) {
	for _, cmd := range []string{MigrateUp, MigrateDown, MigrateStatus} {
		if err := Migrate(context.Background(), nil, cmd); err != nil {
			t.Fatalf("%s: %v", cmd, err)
		}
	}
}
