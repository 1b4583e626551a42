package database

import (
	"context"
	"fmt"

	"github.com/yourusername/hitter-splits/internal/config"
)

// CheckpointTable holds one row per hitter per run date
const CheckpointTable = "hitter_checkpoints"

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS ` + CheckpointTable + ` (
		run_date   DATE        NOT NULL,
		hitter_id  TEXT        NOT NULL,
		record     JSONB       NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (run_date, hitter_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_hitter_checkpoints_run_date ON ` + CheckpointTable + ` (run_date DESC)`,
}

// Initialize creates a database connection pool and makes sure the checkpoint schema exists
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// EnsureSchema creates the checkpoint table and index if they do not exist
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply checkpoint schema: %w", err)
		}
	}
	return nil
}
