package checkpoint

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/hitter-splits/internal/database"
	"github.com/yourusername/hitter-splits/internal/logger"
	"github.com/yourusername/hitter-splits/internal/models"
)

// PostgresStore keeps one JSONB row per hitter per run date.
type PostgresStore struct {
	db     *database.DB
	logger *logger.CheckpointLogger
}

// NewPostgresStore wraps an open database whose schema has been applied
func NewPostgresStore(db *database.DB, log *logrus.Logger) *PostgresStore {
	if log == nil {
		log = logger.Discard()
	}
	return &PostgresStore{
		db:     db,
		logger: logger.NewCheckpointLogger(log, "postgres"),
	}
}

// Backend implements Store
func (s *PostgresStore) Backend() string {
	return "postgres"
}

// Close implements Store
func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}

// Ping verifies database connectivity
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Load implements Store
func (s *PostgresStore) Load(ctx context.Context, runDate time.Time) (*models.Checkpoint, error) {
	rows, err := s.db.GetPool().Query(ctx,
		`SELECT hitter_id, record FROM `+database.CheckpointTable+` WHERE run_date = $1`,
		models.TruncateToDate(runDate))
	if err != nil {
		return nil, fmt.Errorf("failed to query checkpoint: %w", err)
	}
	defer rows.Close()

	cp := models.NewCheckpoint(runDate)
	for rows.Next() {
		var key string
		var record []byte
		if err := rows.Scan(&key, &record); err != nil {
			return nil, fmt.Errorf("failed to scan checkpoint row: %w", err)
		}
		if err := decodeRecord(cp, key, record); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate checkpoint rows: %w", err)
	}

	s.logger.LogLoaded(cp.DateKey(), cp.Len(), cp.Len() > 0)
	return cp, nil
}

// CompletedIDs implements Store
func (s *PostgresStore) CompletedIDs(ctx context.Context, runDate time.Time) (map[string]struct{}, error) {
	rows, err := s.db.GetPool().Query(ctx,
		`SELECT hitter_id FROM `+database.CheckpointTable+` WHERE run_date = $1`,
		models.TruncateToDate(runDate))
	if err != nil {
		return nil, fmt.Errorf("failed to query completed hitters: %w", err)
	}

	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to collect hitter ids: %w", err)
	}

	ids := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		ids[key] = struct{}{}
	}

	s.logger.LogLoaded(dateKey(runDate), len(ids), len(ids) > 0)
	return ids, nil
}

// Save implements Store. All rows are upserted in one transaction.
func (s *PostgresStore) Save(ctx context.Context, cp *models.Checkpoint) (int, error) {
	encoded, err := encodeRecords(cp)
	if err != nil {
		return 0, err
	}

	runDate := models.TruncateToDate(cp.RunDate)
	var total int
	err = s.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for key, data := range encoded {
			batch.Queue(`
				INSERT INTO `+database.CheckpointTable+` (run_date, hitter_id, record, updated_at)
				VALUES ($1, $2, $3, now())
				ON CONFLICT (run_date, hitter_id) DO UPDATE SET
					record = EXCLUDED.record,
					updated_at = EXCLUDED.updated_at`,
				runDate, key, string(data))
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to upsert checkpoint rows: %w", err)
		}

		return tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM `+database.CheckpointTable+` WHERE run_date = $1`, runDate).Scan(&total)
	})
	if err != nil {
		return 0, err
	}

	s.logger.LogSaved(cp.DateKey(), database.CheckpointTable, total)
	return total, nil
}

// Latest implements Store
func (s *PostgresStore) Latest(ctx context.Context) (*models.Checkpoint, error) {
	var latest *time.Time
	err := s.db.GetPool().QueryRow(ctx,
		`SELECT MAX(run_date) FROM `+database.CheckpointTable).Scan(&latest)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest run date: %w", err)
	}
	if latest == nil {
		return nil, models.ErrNotFound
	}
	return s.Load(ctx, *latest)
}
