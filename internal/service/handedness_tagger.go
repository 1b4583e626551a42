package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yourusername/hitter-splits/internal/datasource"
	"github.com/yourusername/hitter-splits/internal/logger"
	"github.com/yourusername/hitter-splits/internal/metrics"
	"github.com/yourusername/hitter-splits/internal/models"
)

// DefaultBoxscoreTimeout bounds a single boxscore lookup
const DefaultBoxscoreTimeout = 8 * time.Second

// BoxscoreFetcher is the part of a StatsProvider the tagger needs
type BoxscoreFetcher interface {
	FetchBoxscore(ctx context.Context, gameID int64) (*datasource.Boxscore, error)
}

// TagSummary counts the outcome of tagging one game log
type TagSummary struct {
	Tagged     int
	Unresolved int
}

// HandednessTagger resolves the throwing hand of the opposing starting pitcher of each game.
// Every failure degrades only the one game, which stays Unknown.
type HandednessTagger struct {
	boxscores BoxscoreFetcher
	timeout   time.Duration
	logger    *logger.JobLogger
}

// NewHandednessTagger creates a new tagger
func NewHandednessTagger(boxscores BoxscoreFetcher, timeout time.Duration, jobLogger *logger.JobLogger) *HandednessTagger {
	if timeout <= 0 {
		timeout = DefaultBoxscoreTimeout
	}
	if jobLogger == nil {
		jobLogger = logger.NewJobLogger(logger.Discard())
	}
	return &HandednessTagger{
		boxscores: boxscores,
		timeout:   timeout,
		logger:    jobLogger,
	}
}

// Tag looks up the opposing starter's hand for one game
func (t *HandednessTagger) Tag(ctx context.Context, rec models.GameRecord) models.HandResult {
	if !rec.HasGameID() {
		return models.UnresolvedHand("no game id")
	}

	lookupCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	box, err := t.boxscores.FetchBoxscore(lookupCtx, rec.GameID)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(lookupCtx.Err(), context.DeadlineExceeded) {
			return models.UnresolvedHand("boxscore lookup timed out")
		}
		return models.UnresolvedHand(fmt.Sprintf("boxscore lookup failed: %v", err))
	}
	if box == nil {
		return models.UnresolvedHand("empty boxscore")
	}

	return OpposingStarterHand(box, rec.IsHome)
}

// TagAll tags every untagged game in place. It never fails; a cancelled context
// stops further lookups and leaves the remaining games untagged.
func (t *HandednessTagger) TagAll(ctx context.Context, hitterID int64, games []models.GameRecord) TagSummary {
	var summary TagSummary

	for i := range games {
		if games[i].IsTagged() {
			summary.Tagged++
			continue
		}
		if ctx.Err() != nil {
			summary.Unresolved += len(games) - i
			break
		}

		result := t.Tag(ctx, games[i])
		if games[i].Tag(result) {
			summary.Tagged++
			metrics.RecordHandTagging("tagged")
			continue
		}

		summary.Unresolved++
		metrics.RecordHandTagging("unresolved")
		t.logger.LogTaggingDegraded(hitterID, games[i].GameID, result.Reason)
	}

	return summary
}

// OpposingStarterHand reads the hand of the first pitcher listed for the side the hitter
// faced: the away side for a home game, the home side otherwise.
func OpposingStarterHand(box *datasource.Boxscore, hitterIsHome bool) models.HandResult {
	side := box.Teams.Home
	if hitterIsHome {
		side = box.Teams.Away
	}

	if len(side.Pitchers) == 0 {
		return models.UnresolvedHand("empty pitcher list")
	}

	starterID := side.Pitchers[0]
	player, ok := side.Players[fmt.Sprintf("ID%d", starterID)]
	if !ok {
		return models.UnresolvedHand(fmt.Sprintf("starter %d missing from players", starterID))
	}
	if player.Person.PitchHand == nil {
		return models.UnresolvedHand(fmt.Sprintf("starter %d has no throwing hand", starterID))
	}

	hand := models.ParsePitcherHand(player.Person.PitchHand.Code)
	if !hand.IsKnown() {
		return models.UnresolvedHand(fmt.Sprintf("unrecognized hand code %q", player.Person.PitchHand.Code))
	}
	return models.ResolvedHand(hand)
}
