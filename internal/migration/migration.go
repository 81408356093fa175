package migration

import (
	"context"
	"fmt"

	"randalloc/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations.
// Statements stay within the subset SQLite and PostgreSQL share.
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createGroupDefinitionsTable(ctx, db); err != nil {
		return errors.DatabaseError("failed to create group_definitions table", err)
	}

	if err := r.createRunsTable(ctx, db); err != nil {
		return errors.DatabaseError("failed to create runs table", err)
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.DatabaseError("failed to create indexes", err)
	}

	return nil
}

func (r *MigrationRunner) createGroupDefinitionsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS group_definitions (
			name VARCHAR(255) PRIMARY KEY,
			size INTEGER NOT NULL CHECK (size > 0),
			position INTEGER NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createRunsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id VARCHAR(36) PRIMARY KEY,
			created_at BIGINT NOT NULL,
			seed BIGINT,
			participants INTEGER NOT NULL,
			groups_count INTEGER NOT NULL,
			format VARCHAR(10) NOT NULL,
			report_path TEXT NOT NULL,
			fingerprint VARCHAR(64) NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_group_definitions_position ON group_definitions(position)",
		"CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)",
	}

	for _, idx := range indexes {
		if _, err := db.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("%s: %w", idx, err)
		}
	}

	return nil
}
