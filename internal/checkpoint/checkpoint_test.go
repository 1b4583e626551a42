package checkpoint

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/hitter-splits/internal/config"
	"github.com/yourusername/hitter-splits/internal/database"
	"github.com/yourusername/hitter-splits/internal/models"
)

var runDate = time.Date(2025, 7, 1, 15, 4, 5, 0, time.UTC)

func record(id int64, name string, games int) *models.HitterAggregateRecord {
	return &models.HitterAggregateRecord{
		Name:   name,
		ID:     id,
		Recent: map[string]models.StatLine{"7": {Games: games, AtBats: 4, Hits: 1, AVG: decimal.RequireFromString("0.25")}},
		Games:  games,
	}
}

func checkpointWith(date time.Time, recs ...*models.HitterAggregateRecord) *models.Checkpoint {
	cp := models.NewCheckpoint(date)
	for _, r := range recs {
		cp.Put(r)
	}
	return cp
}

type storeFactory func(t *testing.T) Store

func storeFactories() map[string]storeFactory {
	return map[string]storeFactory{
		"file": func(t *testing.T) Store {
			s, err := NewFileStore(t.TempDir(), nil)
			require.NoError(t, err)
			return s
		},
		"sqlite": func(t *testing.T) Store {
			s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "checkpoints.db"), nil)
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
		"postgres": func(t *testing.T) Store {
			db := database.SetupTestDB(t)
			t.Cleanup(func() { database.TeardownTestDB(t, db) })
			return NewPostgresStore(db, nil)
		},
	}
}

func TestStoreContract(t *testing.T) {
	for name, newStore := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			t.Run("missing checkpoint loads empty", func(t *testing.T) {
				s := newStore(t)
				cp, err := s.Load(ctx, runDate)
				require.NoError(t, err)
				assert.Equal(t, 0, cp.Len())
				assert.Equal(t, "2025-07-01", cp.DateKey())

				ids, err := s.CompletedIDs(ctx, runDate)
				require.NoError(t, err)
				assert.Empty(t, ids)

				_, err = s.Latest(ctx)
				assert.ErrorIs(t, err, models.ErrNotFound)
			})

			t.Run("save then load round trips", func(t *testing.T) {
				s := newStore(t)
				n, err := s.Save(ctx, checkpointWith(runDate, record(1, "A", 10), record(2, "B", 12)))
				require.NoError(t, err)
				assert.Equal(t, 2, n)

				cp, err := s.Load(ctx, runDate)
				require.NoError(t, err)
				assert.Equal(t, []string{"1", "2"}, cp.IDs())
				got, ok := cp.Get("2")
				require.True(t, ok)
				assert.Equal(t, "B", got.Name)
				assert.True(t, got.Recent["7"].AVG.Equal(decimal.RequireFromString("0.25")))

				ids, err := s.CompletedIDs(ctx, runDate)
				require.NoError(t, err)
				assert.Equal(t, map[string]struct{}{"1": {}, "2": {}}, ids)
			})

			t.Run("save merges over persisted records", func(t *testing.T) {
				s := newStore(t)
				_, err := s.Save(ctx, checkpointWith(runDate, record(1, "A", 10)))
				require.NoError(t, err)

				n, err := s.Save(ctx, checkpointWith(runDate, record(2, "B", 12)))
				require.NoError(t, err)
				assert.Equal(t, 2, n)

				cp, err := s.Load(ctx, runDate)
				require.NoError(t, err)
				a, ok := cp.Get("1")
				require.True(t, ok)
				assert.Equal(t, 10, a.Games)
			})

			t.Run("run dates are independent and latest wins", func(t *testing.T) {
				s := newStore(t)
				earlier := runDate.AddDate(0, 0, -1)
				_, err := s.Save(ctx, checkpointWith(earlier, record(1, "A", 9), record(3, "C", 1)))
				require.NoError(t, err)
				_, err = s.Save(ctx, checkpointWith(runDate, record(1, "A", 10)))
				require.NoError(t, err)

				ids, err := s.CompletedIDs(ctx, runDate)
				require.NoError(t, err)
				assert.Len(t, ids, 1)

				latest, err := s.Latest(ctx)
				require.NoError(t, err)
				assert.Equal(t, "2025-07-01", latest.DateKey())
				a, _ := latest.Get("1")
				assert.Equal(t, 10, a.Games)
			})
		})
	}
}

func TestFileStoreWritesDatedDocument(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir, nil)
	require.NoError(t, err)

	_, err = s.Save(context.Background(), checkpointWith(runDate, record(592450, "Aaron Judge", 80)))
	require.NoError(t, err)

	path := filepath.Join(dir, "hitter_splits_streaks_2025-07-01.json")
	assert.Equal(t, path, s.Path(runDate))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"592450"`)
	assert.Contains(t, string(data), `"name": "Aaron Judge"`)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStoreUnreadableDocumentIsTreatedAsMissing(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir, nil)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(s.Path(runDate), []byte("{not json"), 0o644))

	ctx := context.Background()
	ids, err := s.CompletedIDs(ctx, runDate)
	require.NoError(t, err)
	assert.Empty(t, ids)

	n, err := s.Save(ctx, checkpointWith(runDate, record(1, "A", 3)))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestFileStoreFailedWriteKeepsPreviousDocument(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}

	dir := t.TempDir()
	s, err := NewFileStore(dir, nil)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = s.Save(ctx, checkpointWith(runDate, record(1, "A", 3)))
	require.NoError(t, err)

	require.NoError(t, os.Chmod(dir, 0o555))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	_, err = s.Save(ctx, checkpointWith(runDate, record(2, "B", 4)))
	require.Error(t, err)

	cp, err := s.Load(ctx, runDate)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, cp.IDs())
}

func TestFileStoreCompletedIDsSkipsNullEntries(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir, nil)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(s.Path(runDate), []byte(`{"1": {"id": 1, "name": "A"}, "2": null}`), 0o644))

	ids, err := s.CompletedIDs(context.Background(), runDate)
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"1": {}}, ids)
}

func TestFileStoreIgnoresEntriesThatAreNotRecords(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir, nil)
	require.NoError(t, err)
	doc := `{"1": {"id": 1, "name": "A", "games": 3}, "2": 7, "3": "done", "4": {"games": "many"}}`
	require.NoError(t, os.WriteFile(s.Path(runDate), []byte(doc), 0o644))

	ctx := context.Background()
	ids, err := s.CompletedIDs(ctx, runDate)
	require.NoError(t, err)
	assert.NotContains(t, ids, "2")
	assert.NotContains(t, ids, "3")

	cp, err := s.Load(ctx, runDate)
	require.NoError(t, err, "one bad record must not fail the whole date")
	assert.Equal(t, []string{"1"}, cp.IDs())

	latest, err := s.Latest(ctx)
	require.NoError(t, err)
	rec, ok := latest.Get("1")
	require.True(t, ok)
	assert.Equal(t, 3, rec.Games)
}

func TestFileStoreLatestIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir, nil)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hitter_splits_streaks_latest.json"), []byte(`{}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte(`x`), 0o644))

	_, err = s.Latest(context.Background())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestFileStoreHonoursCancelledContext(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.Save(ctx, checkpointWith(runDate, record(1, "A", 3)))
	assert.ErrorIs(t, err, context.Canceled)
	_, err = s.CompletedIDs(ctx, runDate)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewStoreSelectsBackend(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		backend string
		want    string
	}{
		{config.BackendFile, "file"},
		{config.BackendSQLite, "sqlite"},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			cfg := &config.Config{Checkpoint: config.CheckpointConfig{
				Backend:    tt.backend,
				OutputDir:  filepath.Join(dir, "out"),
				SQLitePath: filepath.Join(dir, "db", "checkpoints.db"),
			}}
			s, err := NewStore(context.Background(), cfg, nil)
			require.NoError(t, err)
			defer s.Close()
			assert.Equal(t, tt.want, s.Backend())
		})
	}

	_, err := NewStore(context.Background(), &config.Config{Checkpoint: config.CheckpointConfig{Backend: "s3"}}, nil)
	assert.Error(t, err)
}
