package models

import (
	"github.com/shopspring/decimal"
)

// RatePrecision is the number of decimal places rate stats are rounded to
const RatePrecision = 3

func init() {
	// Rates are written as plain JSON numbers in the checkpoint file
	decimal.MarshalJSONWithoutQuotes = true
}

// StatLine is the reduction of a set of game records into counting and rate stats
type StatLine struct {
	Games            int             `json:"G"`
	AtBats           int             `json:"AB"`
	Hits             int             `json:"H"`
	HomeRuns         int             `json:"HR"`
	RBI              int             `json:"RBI"`
	Walks            int             `json:"BB"`
	Strikeouts       int             `json:"K"`
	Doubles          int             `json:"2B"`
	Triples          int             `json:"3B"`
	PlateAppearances int             `json:"PA"`
	TotalBases       int             `json:"TB"`
	AVG              decimal.Decimal `json:"AVG"`
	OBP              decimal.Decimal `json:"OBP"`
	SLG              decimal.Decimal `json:"SLG"`
	OPS              decimal.Decimal `json:"OPS"`
}

// IsEmpty reports whether the line covers no games
func (s StatLine) IsEmpty() bool {
	return s.Games == 0
}

// Equal compares two stat lines field by field, rates by decimal value
func (s StatLine) Equal(other StatLine) bool {
	return s.Games == other.Games &&
		s.AtBats == other.AtBats &&
		s.Hits == other.Hits &&
		s.HomeRuns == other.HomeRuns &&
		s.RBI == other.RBI &&
		s.Walks == other.Walks &&
		s.Strikeouts == other.Strikeouts &&
		s.Doubles == other.Doubles &&
		s.Triples == other.Triples &&
		s.PlateAppearances == other.PlateAppearances &&
		s.TotalBases == other.TotalBases &&
		s.AVG.Equal(other.AVG) &&
		s.OBP.Equal(other.OBP) &&
		s.SLG.Equal(other.SLG) &&
		s.OPS.Equal(other.OPS)
}

// StreakSet holds the active streak lengths of a hitter
type StreakSet struct {
	Hit      int `json:"hit"`
	OnBase   int `json:"on_base"`
	MultiHit int `json:"multi_hit"`
	HomeRun  int `json:"hr"`
}
