package database

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/hitter-splits/internal/config"
)

func TestNewDBRejectsBadConfig(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewDBFromDSN(ctx, "postgres://%zz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse database config")
}

func TestNewDBUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	cfg := &config.DatabaseConfig{
		Host:           "127.0.0.1",
		Port:           1,
		Name:           "none",
		User:           "none",
		SSLMode:        "disable",
		MaxConnections: 2,
	}
	_, err := NewDB(ctx, cfg)
	require.Error(t, err)
}

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	db := SetupTestDB(t)
	defer TeardownTestDB(t, db)

	ctx := context.Background()
	require.NoError(t, db.EnsureSchema(ctx))
	require.NoError(t, db.HealthCheck(ctx))
}

func TestWithTransactionRollsBack(t *testing.T) {
	db := SetupTestDB(t)
	defer TeardownTestDB(t, db)

	ctx := context.Background()
	err := db.WithTransaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, "INSERT INTO "+CheckpointTable+" (run_date, hitter_id, record) VALUES ('2025-07-01', '1', '{}')")
		require.NoError(t, err)
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	var count int
	require.NoError(t, db.GetPool().QueryRow(ctx, "SELECT COUNT(*) FROM "+CheckpointTable).Scan(&count))
	assert.Equal(t, 0, count)
}
