package splits

import "github.com/yourusername/hitter-splits/internal/models"

type streakPredicate func(models.GameStats) bool

var (
	hasHit      streakPredicate = func(s models.GameStats) bool { return s.Hits >= 1 }
	reachedBase streakPredicate = func(s models.GameStats) bool { return s.OnBaseEvents() >= 1 }
	multiHit    streakPredicate = func(s models.GameStats) bool { return s.Hits >= 2 }
	hitHomeRun  streakPredicate = func(s models.GameStats) bool { return s.HomeRuns >= 1 }
)

// Streaks computes the active streaks of a chronologically ordered game log.
// Each counter scans back from the latest game independently and stops at the
// first game that breaks its own predicate.
func Streaks(games []models.GameRecord) models.StreakSet {
	return models.StreakSet{
		Hit:      activeStreak(games, hasHit),
		OnBase:   activeStreak(games, reachedBase),
		MultiHit: activeStreak(games, multiHit),
		HomeRun:  activeStreak(games, hitHomeRun),
	}
}

func activeStreak(games []models.GameRecord, holds streakPredicate) int {
	streak := 0
	for i := len(games) - 1; i >= 0; i-- {
		if !holds(games[i].Stats) {
			break
		}
		streak++
	}
	return streak
}
