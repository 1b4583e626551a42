package splits

import (
	"github.com/shopspring/decimal"

	"github.com/yourusername/hitter-splits/internal/models"
)

// Aggregate sums the counting stats of the games and derives AVG, OBP, SLG and OPS.
// Rates are rounded to three decimal places and are zero when their denominator is zero.
// OPS is the exact sum of the rounded OBP and SLG.
func Aggregate(games []models.GameRecord) models.StatLine {
	line := models.StatLine{Games: len(games)}

	for _, g := range games {
		s := g.Stats
		line.AtBats += s.AtBats
		line.Hits += s.Hits
		line.HomeRuns += s.HomeRuns
		line.RBI += s.RBI
		line.Walks += s.Walks
		line.Strikeouts += s.Strikeouts
		line.Doubles += s.Doubles
		line.Triples += s.Triples
		line.PlateAppearances += s.PlateAppearances
		line.TotalBases += s.TotalBases
	}

	line.AVG = rate(line.Hits, line.AtBats)
	line.OBP = rate(line.Hits+line.Walks, line.PlateAppearances)
	line.SLG = rate(line.TotalBases, line.AtBats)
	line.OPS = line.OBP.Add(line.SLG)

	return line
}

// rate divides and rounds half away from zero to the rate precision
func rate(numerator, denominator int) decimal.Decimal {
	if denominator == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(numerator)).
		DivRound(decimal.NewFromInt(int64(denominator)), models.RatePrecision)
}
