package repository

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS extractions (
		id              TEXT PRIMARY KEY,
		source_path     TEXT NOT NULL,
		filename        TEXT NOT NULL,
		vendor          TEXT NOT NULL DEFAULT '',
		status          TEXT NOT NULL,
		error_code      TEXT NOT NULL DEFAULT '',
		error_message   TEXT NOT NULL DEFAULT '',
		order_reference TEXT NOT NULL DEFAULT '',
		record_json     TEXT,
		duration_ms     BIGINT NOT NULL DEFAULT 0,
		created_at      TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_extractions_status_created
		ON extractions(status, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_extractions_order_reference
		ON extractions(order_reference)`,
}

// Migrate creates the tables the repositories need.
func (db *DB) Migrate(ctx context.Context) error {
	tx, err := db.SQL.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migrate: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range migrations {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: exec statement #%d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migrate: commit tx: %w", err)
	}
	return nil
}
