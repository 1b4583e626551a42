package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/hitter-splits/internal/logger"
	"github.com/yourusername/hitter-splits/internal/metrics"
)

const (
	mlbStatsAPISourceName = "mlb_stats_api"
	// DefaultMLBBaseURL is the public MLB Stats API root
	DefaultMLBBaseURL = "https://statsapi.mlb.com/api/v1"
	mlbSportID        = 1
	maxErrorBodyBytes = 512
)

// DefaultMLBTeamIDs are the MLB Stats API ids of all thirty clubs
var DefaultMLBTeamIDs = []int64{
	147, 111, 141, 110, 139, // AL East
	114, 145, 116, 118, 142, // AL Central
	117, 108, 133, 136, 140, // AL West
	144, 146, 121, 143, 120, // NL East
	112, 113, 158, 134, 138, // NL Central
	109, 115, 119, 135, 137, // NL West
}

// MLBStatsClient implements StatsProvider and LeagueDirectory for the MLB Stats API
type MLBStatsClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	logger     *logrus.Entry
}

type rosterResponse struct {
	Roster []RosterEntry `json:"roster"`
}

type gameLogResponse struct {
	Stats []struct {
		Splits []json.RawMessage `json:"splits"`
	} `json:"stats"`
}

type teamsResponse struct {
	Teams []Team `json:"teams"`
}

// NewMLBStatsClient creates a new MLB Stats API client
func NewMLBStatsClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, log *logrus.Logger) *MLBStatsClient {
	if baseURL == "" {
		baseURL = DefaultMLBBaseURL
	}
	if log == nil {
		log = logger.Discard()
	}
	return &MLBStatsClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		logger:     log.WithField("source", mlbStatsAPISourceName),
	}
}

// Name returns the data source name
func (c *MLBStatsClient) Name() string {
	return mlbStatsAPISourceName
}

// ListActiveHitters walks each team's active roster. A team whose roster cannot be
// fetched is logged and skipped; the call fails only when every team fails.
func (c *MLBStatsClient) ListActiveHitters(ctx context.Context, teamIDs []int64) ([]Hitter, error) {
	if len(teamIDs) == 0 {
		teamIDs = DefaultMLBTeamIDs
	}

	hitters := make([]Hitter, 0, len(teamIDs)*14)
	seen := make(map[int64]bool)
	var lastErr error
	failed := 0

	for _, teamID := range teamIDs {
		roster, err := c.FetchRoster(ctx, teamID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			failed++
			lastErr = err
			c.logger.WithField("team_id", teamID).WithError(err).Warn("Failed to fetch roster, skipping team")
			continue
		}

		for _, entry := range roster {
			if entry.IsPitcher() || entry.Person.ID == 0 || seen[entry.Person.ID] {
				continue
			}
			seen[entry.Person.ID] = true
			hitters = append(hitters, Hitter{
				ID:       entry.Person.ID,
				Name:     entry.Person.FullName,
				TeamID:   teamID,
				Position: entry.Position.Abbreviation,
			})
		}
	}

	if failed == len(teamIDs) {
		return nil, fmt.Errorf("failed to fetch any of %d rosters: %w", failed, lastErr)
	}

	return hitters, nil
}

// FetchGameLog retrieves a hitter's per-game batting log for a season
func (c *MLBStatsClient) FetchGameLog(ctx context.Context, hitterID int64, season int) ([]RawGameEntry, error) {
	query := url.Values{}
	query.Set("stats", "gameLog")
	query.Set("group", "hitting")
	query.Set("season", fmt.Sprint(season))

	var resp gameLogResponse
	if err := c.getJSON(ctx, "game_log", fmt.Sprintf("/people/%d/stats", hitterID), query, &resp); err != nil {
		return nil, err
	}

	if len(resp.Stats) == 0 {
		return []RawGameEntry{}, nil
	}

	// entries decode one at a time so a malformed game only loses that game
	splits := resp.Stats[0].Splits
	entries := make([]RawGameEntry, 0, len(splits))
	for i, raw := range splits {
		var entry RawGameEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			entry = RawGameEntry{DecodeErr: fmt.Errorf("game log entry %d: %w", i, err)}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// FetchBoxscore retrieves the boxscore of a single game
func (c *MLBStatsClient) FetchBoxscore(ctx context.Context, gameID int64) (*Boxscore, error) {
	var box Boxscore
	if err := c.getJSON(ctx, "boxscore", fmt.Sprintf("/game/%d/boxscore", gameID), nil, &box); err != nil {
		return nil, err
	}
	return &box, nil
}

// ListTeams returns every MLB club
func (c *MLBStatsClient) ListTeams(ctx context.Context) ([]Team, error) {
	query := url.Values{}
	query.Set("sportId", fmt.Sprint(mlbSportID))

	var resp teamsResponse
	if err := c.getJSON(ctx, "teams", "/teams", query, &resp); err != nil {
		return nil, err
	}
	return resp.Teams, nil
}

// FetchRoster returns a team's active roster
func (c *MLBStatsClient) FetchRoster(ctx context.Context, teamID int64) ([]RosterEntry, error) {
	var resp rosterResponse
	if err := c.getJSON(ctx, "roster", fmt.Sprintf("/teams/%d/roster/Active", teamID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Roster, nil
}

// FetchTeamStats returns a team's season hitting and pitching stats as delivered by the API
func (c *MLBStatsClient) FetchTeamStats(ctx context.Context, teamID int64, season int) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("stats", "season")
	query.Set("group", "hitting,pitching")
	query.Set("season", fmt.Sprint(season))

	var raw json.RawMessage
	if err := c.getJSON(ctx, "team_stats", fmt.Sprintf("/teams/%d/stats", teamID), query, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// FetchPlayerStats returns a player's season hitting stats as delivered by the API
func (c *MLBStatsClient) FetchPlayerStats(ctx context.Context, playerID int64, season int) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("stats", "season")
	query.Set("group", "hitting")
	query.Set("season", fmt.Sprint(season))

	var raw json.RawMessage
	if err := c.getJSON(ctx, "player_stats", fmt.Sprintf("/people/%d/stats", playerID), query, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// getJSON performs a GET against the API and decodes the body into out
func (c *MLBStatsClient) getJSON(ctx context.Context, endpoint, path string, query url.Values, out interface{}) error {
	start := time.Now()
	outcome := "error"
	defer func() {
		metrics.RecordProviderRequest(endpoint, outcome, time.Since(start).Seconds())
	}()

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return NewDataSourceError(mlbStatsAPISourceName, ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return NewDataSourceError(mlbStatsAPISourceName, ErrCodeNetworkError, "failed to fetch "+endpoint, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		outcome = "not_found"
		return NewDataSourceError(mlbStatsAPISourceName, ErrCodeNotFound, endpoint+" not found: "+path, nil)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return NewDataSourceError(mlbStatsAPISourceName, ErrCodeAuthenticationFailed, "request rejected", nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return NewDataSourceError(mlbStatsAPISourceName, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return NewDataSourceError(mlbStatsAPISourceName, ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return NewDataSourceError(mlbStatsAPISourceName, ErrCodeInvalidData, "failed to parse "+endpoint+" response", err)
	}

	outcome = "success"
	return nil
}
