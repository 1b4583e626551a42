package splits

import (
	"time"

	"github.com/yourusername/hitter-splits/internal/models"
)

// DefaultWindows are the recent-form window lengths in days
var DefaultWindows = []int{7, 14, 30}

// BuildRecord derives every window and split of a tagged, chronologically ordered
// game log and returns the hitter's aggregate record as of the given date.
func BuildRecord(name string, id int64, games []models.GameRecord, asOf time.Time, windows []int) *models.HitterAggregateRecord {
	if len(windows) == 0 {
		windows = DefaultWindows
	}

	rec := &models.HitterAggregateRecord{
		Name:   name,
		ID:     id,
		Recent: make(map[string]models.StatLine, len(windows)),
		Splits: models.HomeAwaySplits{
			Home: Aggregate(Filter(games, Home())),
			Away: Aggregate(Filter(games, Away())),
		},
		VsHand: models.VsHandSplits{
			HandPair: handPair(games, Criteria{}),
			Recent:   make(map[string]models.HandPair, len(windows)),
		},
		Streaks: Streaks(games),
		Games:   len(games),
	}

	for _, days := range windows {
		window := Window(asOf, days)
		key := models.WindowKey(days)
		rec.Recent[key] = Aggregate(Filter(games, window))
		rec.VsHand.Recent[key] = handPair(games, window)
	}

	for _, g := range games {
		if !g.IsTagged() {
			rec.UntaggedGames++
		}
	}

	return rec
}

func handPair(games []models.GameRecord, base Criteria) models.HandPair {
	return models.HandPair{
		Left:  Aggregate(Filter(games, base.WithHand(models.PitcherHandLeft))),
		Right: Aggregate(Filter(games, base.WithHand(models.PitcherHandRight))),
	}
}
