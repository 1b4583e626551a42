package service

import (
	"context"
	"sync"
	"time"

	"github.com/yourusername/hitter-splits/internal/checkpoint"
	"github.com/yourusername/hitter-splits/internal/datasource"
	"github.com/yourusername/hitter-splits/internal/models"
)

// fakeProvider serves canned rosters, game logs and boxscores
type fakeProvider struct {
	mu sync.Mutex

	hitters   []datasource.Hitter
	rosterErr error

	logs    map[int64][]datasource.RawGameEntry
	logErrs map[int64]error

	boxscores map[int64]*datasource.Boxscore
	boxErrs   map[int64]error
	boxDelay  time.Duration

	onGameLog    func(hitterID int64)
	gameLogCalls map[int64]int
	boxCalls     int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		logs:         make(map[int64][]datasource.RawGameEntry),
		logErrs:      make(map[int64]error),
		boxscores:    make(map[int64]*datasource.Boxscore),
		boxErrs:      make(map[int64]error),
		gameLogCalls: make(map[int64]int),
	}
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) ListActiveHitters(ctx context.Context, teamIDs []int64) ([]datasource.Hitter, error) {
	if f.rosterErr != nil {
		return nil, f.rosterErr
	}
	return f.hitters, nil
}

func (f *fakeProvider) FetchGameLog(ctx context.Context, hitterID int64, season int) ([]datasource.RawGameEntry, error) {
	f.mu.Lock()
	f.gameLogCalls[hitterID]++
	hook := f.onGameLog
	f.mu.Unlock()

	if hook != nil {
		hook(hitterID)
	}
	if err := f.logErrs[hitterID]; err != nil {
		return nil, err
	}
	return f.logs[hitterID], nil
}

func (f *fakeProvider) FetchBoxscore(ctx context.Context, gameID int64) (*datasource.Boxscore, error) {
	f.mu.Lock()
	f.boxCalls++
	f.mu.Unlock()

	if f.boxDelay > 0 {
		select {
		case <-time.After(f.boxDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := f.boxErrs[gameID]; err != nil {
		return nil, err
	}
	box, ok := f.boxscores[gameID]
	if !ok {
		return nil, datasource.NewDataSourceError("fake", datasource.ErrCodeNotFound, "no boxscore", nil)
	}
	return box, nil
}

func (f *fakeProvider) calls(hitterID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gameLogCalls[hitterID]
}

// countingStore wraps a Store and can fail saves
type countingStore struct {
	checkpoint.Store
	saves   int
	saveErr error
	loadErr error
}

func (s *countingStore) CompletedIDs(ctx context.Context, runDate time.Time) (map[string]struct{}, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.Store.CompletedIDs(ctx, runDate)
}

func (s *countingStore) Save(ctx context.Context, cp *models.Checkpoint) (int, error) {
	s.saves++
	if s.saveErr != nil {
		return 0, s.saveErr
	}
	return s.Store.Save(ctx, cp)
}

func boolPtr(b bool) *bool { return &b }

func entry(date string, home bool, gamePk int64, stat datasource.RawStatBlock) datasource.RawGameEntry {
	return datasource.RawGameEntry{
		Date:     date,
		IsHome:   boolPtr(home),
		Opponent: &datasource.TeamRef{ID: 147},
		Game:     &datasource.GameRef{GamePk: gamePk},
		Stat:     &stat,
	}
}

// boxscoreWithStarters builds a boxscore whose away and home starters throw the given hands
func boxscoreWithStarters(awayHand, homeHand string) *datasource.Boxscore {
	side := func(id int64, hand string) datasource.BoxscoreSide {
		return datasource.BoxscoreSide{
			Pitchers: []int64{id, id + 1},
			Players: map[string]datasource.BoxscorePlayer{
				"ID" + models.HitterKey(id): {Person: datasource.Person{ID: id, PitchHand: &datasource.CodeRef{Code: hand}}},
			},
		}
	}
	return &datasource.Boxscore{Teams: datasource.BoxscoreTeams{
		Away: side(100, awayHand),
		Home: side(200, homeHand),
	}}
}
