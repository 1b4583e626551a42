package checkpoint

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/yourusername/hitter-splits/internal/logger"
	"github.com/yourusername/hitter-splits/internal/models"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS hitter_checkpoints (
    run_date TEXT NOT NULL,
    hitter_id TEXT NOT NULL,
    record TEXT NOT NULL,
    updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
    PRIMARY KEY (run_date, hitter_id)
);
CREATE INDEX IF NOT EXISTS idx_hitter_checkpoints_run_date ON hitter_checkpoints(run_date);
`

// SQLiteStore keeps one row per hitter per run date in a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *logger.CheckpointLogger
}

// NewSQLiteStore opens the SQLite database at dbPath and applies the schema
func NewSQLiteStore(dbPath string, log *logrus.Logger) (*SQLiteStore, error) {
	if log == nil {
		log = logger.Discard()
	}
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		path:   dbPath,
		logger: logger.NewCheckpointLogger(log, "sqlite"),
	}, nil
}

// Backend implements Store
func (s *SQLiteStore) Backend() string {
	return "sqlite"
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load implements Store
func (s *SQLiteStore) Load(ctx context.Context, runDate time.Time) (*models.Checkpoint, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT hitter_id, record FROM hitter_checkpoints WHERE run_date = ?`, dateKey(runDate))
	if err != nil {
		return nil, fmt.Errorf("query checkpoint: %w", err)
	}
	defer rows.Close()

	cp := models.NewCheckpoint(runDate)
	for rows.Next() {
		var key, record string
		if err := rows.Scan(&key, &record); err != nil {
			return nil, fmt.Errorf("scan checkpoint row: %w", err)
		}
		if err := decodeRecord(cp, key, []byte(record)); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate checkpoint rows: %w", err)
	}

	s.logger.LogLoaded(cp.DateKey(), cp.Len(), cp.Len() > 0)
	return cp, nil
}

// CompletedIDs implements Store
func (s *SQLiteStore) CompletedIDs(ctx context.Context, runDate time.Time) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT hitter_id FROM hitter_checkpoints WHERE run_date = ?`, dateKey(runDate))
	if err != nil {
		return nil, fmt.Errorf("query completed hitters: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan hitter id: %w", err)
		}
		ids[key] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hitter ids: %w", err)
	}

	s.logger.LogLoaded(dateKey(runDate), len(ids), len(ids) > 0)
	return ids, nil
}

// Save implements Store. All rows are upserted in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, cp *models.Checkpoint) (int, error) {
	encoded, err := encodeRecords(cp)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO hitter_checkpoints (run_date, hitter_id, record, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(run_date, hitter_id) DO UPDATE SET
			record = excluded.record,
			updated_at = excluded.updated_at`)
	if err != nil {
		return 0, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	date := cp.DateKey()
	now := time.Now().UTC().Format(time.RFC3339Nano)
	for key, data := range encoded {
		if _, err := stmt.ExecContext(ctx, date, key, string(data), now); err != nil {
			return 0, fmt.Errorf("upsert hitter %s: %w", key, err)
		}
	}

	var total int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM hitter_checkpoints WHERE run_date = ?`, date).Scan(&total); err != nil {
		return 0, fmt.Errorf("count checkpoint rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit checkpoint: %w", err)
	}

	s.logger.LogSaved(date, s.path, total)
	return total, nil
}

// Latest implements Store
func (s *SQLiteStore) Latest(ctx context.Context) (*models.Checkpoint, error) {
	var latest sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT MAX(run_date) FROM hitter_checkpoints`).Scan(&latest)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("query latest run date: %w", err)
	}
	if !latest.Valid {
		return nil, models.ErrNotFound
	}

	runDate, err := time.Parse(models.RunDateLayout, latest.String)
	if err != nil {
		return nil, fmt.Errorf("parse run date %q: %w", latest.String, err)
	}
	return s.Load(ctx, runDate)
}
