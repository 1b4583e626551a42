// Package splits computes windowed and split aggregates and streaks over a hitter's game log.
package splits

import (
	"time"

	"github.com/yourusername/hitter-splits/internal/models"
)

// Criteria selects game records. Nil fields place no constraint on that dimension;
// all set fields must match. Date bounds are inclusive calendar dates.
type Criteria struct {
	Start  *time.Time
	End    *time.Time
	IsHome *bool
	Hand   *models.PitcherHand
}

// Window returns criteria for the last `days` days ending on asOf (inclusive)
func Window(asOf time.Time, days int) Criteria {
	end := models.TruncateToDate(asOf)
	start := end.AddDate(0, 0, -days)
	return Criteria{Start: &start, End: &end}
}

// Home returns criteria selecting home games
func Home() Criteria {
	return Criteria{}.WithHome(true)
}

// Away returns criteria selecting away games
func Away() Criteria {
	return Criteria{}.WithHome(false)
}

// VsHand returns criteria selecting games against starters of the given hand
func VsHand(hand models.PitcherHand) Criteria {
	return Criteria{}.WithHand(hand)
}

// WithHome returns a copy constrained to home or away games
func (c Criteria) WithHome(isHome bool) Criteria {
	c.IsHome = &isHome
	return c
}

// WithHand returns a copy constrained to one opposing pitcher hand
func (c Criteria) WithHand(hand models.PitcherHand) Criteria {
	c.Hand = &hand
	return c
}

// Matches reports whether a single game satisfies every set constraint
func (c Criteria) Matches(g models.GameRecord) bool {
	date := models.TruncateToDate(g.Date)
	if c.Start != nil && date.Before(models.TruncateToDate(*c.Start)) {
		return false
	}
	if c.End != nil && date.After(models.TruncateToDate(*c.End)) {
		return false
	}
	if c.IsHome != nil && g.IsHome != *c.IsHome {
		return false
	}
	if c.Hand != nil && g.PitcherHand != *c.Hand {
		return false
	}
	return true
}

// Filter returns the games matching the criteria in their original order.
// The result is never nil.
func Filter(games []models.GameRecord, c Criteria) []models.GameRecord {
	filtered := make([]models.GameRecord, 0, len(games))
	for _, g := range games {
		if c.Matches(g) {
			filtered = append(filtered, g)
		}
	}
	return filtered
}
