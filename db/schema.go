// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// goose keeps its settings in package globals
var migrateMu sync.Mutex

// Migrate applies all pending schema migrations.
// Safe to call multiple times - goose tracks applied versions.
func Migrate(ctx context.Context, conn *sql.DB, dialect Dialect) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(gooseLogger{})
	if err := goose.SetDialect(dialect.gooseDialect()); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	if err := goose.UpContext(ctx, conn, "migrations"); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	return nil
}

// SchemaVersion reports the latest applied migration version
func SchemaVersion(ctx context.Context, conn *sql.DB, dialect Dialect) (int64, error) {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	if err := goose.SetDialect(dialect.gooseDialect()); err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, conn)
}

type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...interface{}) {
	slog.Debug("migration", "message", fmt.Sprintf(format, v...))
}

func (gooseLogger) Fatalf(format string, v ...interface{}) {
	slog.Error("migration failed", "message", fmt.Sprintf(format, v...))
}
