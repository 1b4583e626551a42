package models

import "strconv"

// Split keys used in the persisted record
const (
	SplitHome = "home"
	SplitAway = "away"
)

// HomeAwaySplits holds the season home and away lines
type HomeAwaySplits struct {
	Home StatLine `json:"home"`
	Away StatLine `json:"away"`
}

// HandPair holds one line versus left-handed and one versus right-handed starters
type HandPair struct {
	Left  StatLine `json:"L"`
	Right StatLine `json:"R"`
}

// VsHandSplits holds platoon splits for the season and per recent window
type VsHandSplits struct {
	HandPair
	Recent map[string]HandPair `json:"recent"`
}

// HitterAggregateRecord is the persisted output for one hitter
type HitterAggregateRecord struct {
	Name          string              `json:"name"`
	ID            int64               `json:"id"`
	Recent        map[string]StatLine `json:"recent"`
	Splits        HomeAwaySplits      `json:"splits"`
	VsHand        VsHandSplits        `json:"vs_hand"`
	Streaks       StreakSet           `json:"streaks"`
	Games         int                 `json:"games"`
	UntaggedGames int                 `json:"untagged_games"`
}

// Key returns the checkpoint key for the record
func (r *HitterAggregateRecord) Key() string {
	return HitterKey(r.ID)
}

// HitterKey formats a hitter identifier as a checkpoint key
func HitterKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// WindowKey formats a window length in days as a map key
func WindowKey(days int) string {
	return strconv.Itoa(days)
}
