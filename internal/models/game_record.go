package models

import "time"

// GameStats holds the raw counting stats of one hitter in one game
type GameStats struct {
	AtBats           int `json:"atBats"`
	Hits             int `json:"hits"`
	HomeRuns         int `json:"homeRuns"`
	RBI              int `json:"rbi"`
	Walks            int `json:"baseOnBalls"`
	Strikeouts       int `json:"strikeOuts"`
	Doubles          int `json:"doubles"`
	Triples          int `json:"triples"`
	PlateAppearances int `json:"plateAppearances"`
	TotalBases       int `json:"totalBases"`
	HitByPitch       int `json:"hitByPitch"`
}

// OnBaseEvents returns hits plus walks plus hit-by-pitch
func (s GameStats) OnBaseEvents() int {
	return s.Hits + s.Walks + s.HitByPitch
}

// GameRecord represents one hitter's single-game performance
type GameRecord struct {
	Date        time.Time   `json:"date"`
	IsHome      bool        `json:"is_home"`
	OpponentID  int64       `json:"opponent_id"`
	GameID      int64       `json:"game_id,omitempty"` // 0 when the provider gave none
	PitcherHand PitcherHand `json:"pitcher_hand"`
	Stats       GameStats   `json:"stats"`
}

// HasGameID reports whether the record can be joined against a boxscore
func (g *GameRecord) HasGameID() bool {
	return g.GameID > 0
}

// IsTagged reports whether the opposing pitcher hand is known
func (g *GameRecord) IsTagged() bool {
	return g.PitcherHand.IsKnown()
}

// Tag applies a handedness result to the record. A record is tagged at most once:
// an unresolved result or an already-tagged record leaves the hand unchanged.
// It returns true when the hand was set by this call.
func (g *GameRecord) Tag(result HandResult) bool {
	if g.IsTagged() || !result.Resolved || !result.Hand.IsKnown() {
		return false
	}
	g.PitcherHand = result.Hand
	return true
}
