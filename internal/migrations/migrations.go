// Package migrations applies the embedded SQL schema with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"
)

//go:embed sql/*.sql
var embedMigrations embed.FS

const migrationsDir = "sql"

// gooseLogger routes goose output through slog
type gooseLogger struct {
	logger *slog.Logger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

func setup(dialect string, logger *slog.Logger) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(gooseLogger{logger: logger})
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("unsupported migration dialect %q: %w", dialect, err)
	}
	return nil
}

// Up applies every pending migration
func Up(ctx context.Context, db *sql.DB, dialect string, logger *slog.Logger) error {
	if err := setup(dialect, logger); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, migrationsDir); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Down rolls back the most recent migration
func Down(ctx context.Context, db *sql.DB, dialect string, logger *slog.Logger) error {
	if err := setup(dialect, logger); err != nil {
		return err
	}
	if err := goose.DownContext(ctx, db, migrationsDir); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	return nil
}

// Version returns the current schema version
func Version(ctx context.Context, db *sql.DB, dialect string, logger *slog.Logger) (int64, error) {
	if err := setup(dialect, logger); err != nil {
		return 0, err
	}
	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}
