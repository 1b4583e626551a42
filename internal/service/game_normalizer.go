package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/hitter-splits/internal/datasource"
	"github.com/yourusername/hitter-splits/internal/logger"
	"github.com/yourusername/hitter-splits/internal/models"
)

// GameNormalizer turns raw provider game log entries into game records
type GameNormalizer struct {
	logger *logrus.Entry
}

// NewGameNormalizer creates a new game normalizer
func NewGameNormalizer(log *logrus.Logger) *GameNormalizer {
	if log == nil {
		log = logger.Discard()
	}
	return &GameNormalizer{
		logger: log.WithField("component", "game_normalizer"),
	}
}

// Normalize converts one entry. An undecodable entry or one without a date or stat block is dropped
// with a warning and reported as false; it is never filled in.
func (n *GameNormalizer) Normalize(hitterID int64, entry datasource.RawGameEntry) (models.GameRecord, bool) {
	rec, err := normalizeEntry(entry)
	if err != nil {
		n.logger.WithFields(logrus.Fields{
			"hitter_id": hitterID,
			"date":      entry.Date,
		}).WithError(err).Warn("Dropping game log entry")
		return models.GameRecord{}, false
	}
	return rec, true
}

// NormalizeAll converts a whole log and returns the records in chronological order
// together with the number of dropped entries. Games on the same date keep provider order.
func (n *GameNormalizer) NormalizeAll(hitterID int64, entries []datasource.RawGameEntry) ([]models.GameRecord, int) {
	games := make([]models.GameRecord, 0, len(entries))
	dropped := 0

	for _, entry := range entries {
		rec, ok := n.Normalize(hitterID, entry)
		if !ok {
			dropped++
			continue
		}
		games = append(games, rec)
	}

	sort.SliceStable(games, func(i, j int) bool {
		return games[i].Date.Before(games[j].Date)
	})

	return games, dropped
}

func normalizeEntry(entry datasource.RawGameEntry) (models.GameRecord, error) {
	if entry.DecodeErr != nil {
		return models.GameRecord{}, entry.DecodeErr
	}
	if strings.TrimSpace(entry.Date) == "" {
		return models.GameRecord{}, models.ErrMissingDate
	}
	if entry.Stat == nil {
		return models.GameRecord{}, models.ErrMissingStats
	}

	date, err := parseGameDate(entry.Date)
	if err != nil {
		return models.GameRecord{}, err
	}

	rec := models.GameRecord{
		Date:  date,
		Stats: normalizeStats(*entry.Stat),
	}
	// a missing home flag counts as away
	if entry.IsHome != nil {
		rec.IsHome = *entry.IsHome
	}
	if entry.Opponent != nil {
		rec.OpponentID = entry.Opponent.ID
	}
	if entry.Game != nil && entry.Game.GamePk > 0 {
		rec.GameID = entry.Game.GamePk
	}

	return rec, nil
}

func parseGameDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) > len(models.RunDateLayout) {
		raw = raw[:len(models.RunDateLayout)]
	}
	date, err := time.Parse(models.RunDateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid game date %q: %w", raw, err)
	}
	return date, nil
}

func normalizeStats(s datasource.RawStatBlock) models.GameStats {
	return models.GameStats{
		AtBats:           nonNegative(s.AtBats),
		Hits:             nonNegative(s.Hits),
		HomeRuns:         nonNegative(s.HomeRuns),
		RBI:              nonNegative(s.RBI),
		Walks:            nonNegative(s.BaseOnBalls),
		Strikeouts:       nonNegative(s.StrikeOuts),
		Doubles:          nonNegative(s.Doubles),
		Triples:          nonNegative(s.Triples),
		PlateAppearances: nonNegative(s.PlateAppearances),
		TotalBases:       nonNegative(s.TotalBases),
		HitByPitch:       nonNegative(s.HitByPitch),
	}
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
