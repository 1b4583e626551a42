package integration

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/hitter-splits/internal/checkpoint"
	"github.com/yourusername/hitter-splits/internal/models"
	"github.com/yourusername/hitter-splits/internal/service"
	"github.com/yourusername/hitter-splits/test/helpers"
)

var runDate = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

func jobOptions(teams ...int64) service.JobOptions {
	return service.JobOptions{
		TeamIDs:          teams,
		Season:           2025,
		ProgressInterval: 1,
		BoxscoreTimeout:  time.Second,
	}
}

func TestSplitsJobEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	mlb := helpers.NewMockMLBServer(t)
	dir := t.TempDir()
	store, err := checkpoint.NewFileStore(dir, nil)
	require.NoError(t, err)

	job := service.NewSplitsJob(mlb.NewProvider(), store, jobOptions(147, 119), nil)
	report, err := job.Run(context.Background(), runDate)
	require.NoError(t, err)

	assert.Equal(t, 3, report.TotalHitters, "pitchers are excluded")
	assert.Equal(t, 3, report.Processed)
	assert.Equal(t, 1, report.DroppedGames)
	assert.Equal(t, 1, report.UntaggedGames, "the game without a game id stays untagged")
	assert.Equal(t, 1, mlb.Requests("/game/777003/boxscore"), "boxscores are cached across hitters")

	_, err = os.Stat(filepath.Join(dir, "hitter_splits_streaks_2025-07-01.json"))
	require.NoError(t, err)

	cp, err := store.Load(context.Background(), runDate)
	require.NoError(t, err)

	judge, ok := cp.Get("592450")
	require.True(t, ok)
	assert.Equal(t, 3, judge.Games)
	assert.Equal(t, "0.273", judge.Recent["7"].AVG.String())
	assert.Equal(t, "0.878", judge.Recent["7"].OPS.String())
	assert.Equal(t, 1, judge.Streaks.Hit)
	assert.Equal(t, 3, judge.Streaks.OnBase)
	assert.Equal(t, 1, judge.Streaks.MultiHit)
	assert.Equal(t, 1, judge.Streaks.HomeRun)
	assert.Equal(t, 2, judge.VsHand.Left.Games)
	assert.Equal(t, 1, judge.VsHand.Right.Games)

	ohtani, ok := cp.Get("660271")
	require.True(t, ok)
	assert.Equal(t, 2, ohtani.Games)
	assert.Equal(t, 1, ohtani.Splits.Home.Games)
	assert.Equal(t, 1, ohtani.Splits.Away.Games, "a missing home flag counts as away")
	assert.Equal(t, 1, ohtani.Recent["7"].Games)
	assert.Equal(t, 1, ohtani.UntaggedGames)

	betts, ok := cp.Get("605141")
	require.True(t, ok)
	assert.Zero(t, betts.Streaks.Hit)
	assert.Equal(t, 1, betts.Streaks.OnBase, "hit by pitch reaches base")
}

func TestSplitsJobResumeMatchesFreshRun(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ctx := context.Background()

	// fresh run over both teams
	freshDir := t.TempDir()
	freshStore, err := checkpoint.NewFileStore(freshDir, nil)
	require.NoError(t, err)
	_, err = service.NewSplitsJob(helpers.NewMockMLBServer(t).NewProvider(), freshStore, jobOptions(147, 119), nil).Run(ctx, runDate)
	require.NoError(t, err)

	// interrupted run: only the first team made it into the checkpoint
	mlb := helpers.NewMockMLBServer(t)
	resumeDir := t.TempDir()
	resumeStore, err := checkpoint.NewFileStore(resumeDir, nil)
	require.NoError(t, err)
	_, err = service.NewSplitsJob(mlb.NewProvider(), resumeStore, jobOptions(147), nil).Run(ctx, runDate)
	require.NoError(t, err)
	require.Equal(t, 1, mlb.Requests("/people/592450/stats"))

	report, err := service.NewSplitsJob(mlb.NewProvider(), resumeStore, jobOptions(147, 119), nil).Run(ctx, runDate)
	require.NoError(t, err)
	assert.True(t, report.Resumed)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 1, mlb.Requests("/people/592450/stats"), "completed hitters are not fetched again")

	fresh, err := os.ReadFile(freshStore.Path(runDate))
	require.NoError(t, err)
	resumed, err := os.ReadFile(resumeStore.Path(runDate))
	require.NoError(t, err)
	assert.JSONEq(t, string(fresh), string(resumed))
}

func TestSplitsJobInterruptedRunKeepsLastCheckpoint(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	mlb := helpers.NewMockMLBServer(t)
	store, err := checkpoint.NewSQLiteStore(filepath.Join(t.TempDir(), "checkpoints.db"), nil)
	require.NoError(t, err)
	defer store.Close()

	// an earlier partial run persisted the first team
	_, err = service.NewSplitsJob(mlb.NewProvider(), store, jobOptions(147), nil).Run(context.Background(), runDate)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mlb.OnRequest(func(path string) {
		if path == "/people/660271/stats" {
			cancel()
		}
	})

	_, err = service.NewSplitsJob(mlb.NewProvider(), store, jobOptions(147, 119), nil).Run(ctx, runDate)
	require.ErrorIs(t, err, context.Canceled)

	ids, err := store.CompletedIDs(context.Background(), runDate)
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"592450": {}}, ids)
}

func TestSplitsJobToleratesGameLogOutage(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	mlb := helpers.NewMockMLBServer(t)
	mlb.FailWith("/people/660271/stats", http.StatusServiceUnavailable)
	store, err := checkpoint.NewFileStore(t.TempDir(), nil)
	require.NoError(t, err)

	report, err := service.NewSplitsJob(mlb.NewProvider(), store, jobOptions(147, 119), nil).Run(context.Background(), runDate)
	require.NoError(t, err)
	assert.Equal(t, 1, report.GameLogFailures)
	assert.Equal(t, 3, report.CheckpointSize)
	assert.Equal(t, 2, mlb.Requests("/people/660271/stats"), "one retry before giving up")

	cp, err := store.Load(context.Background(), runDate)
	require.NoError(t, err)
	ohtani, ok := cp.Get(models.HitterKey(660271))
	require.True(t, ok)
	assert.Zero(t, ohtani.Games)
}
