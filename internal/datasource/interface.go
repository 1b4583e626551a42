// Package datasource fetches rosters, game logs and boxscores from remote statistics providers.
package datasource

import (
	"context"
	"encoding/json"
	"errors"
)

// StatsProvider defines the interface for fetching hitter data from external providers
type StatsProvider interface {
	// ListActiveHitters returns the non-pitchers on the active rosters of the given teams,
	// de-duplicated by player id
	ListActiveHitters(ctx context.Context, teamIDs []int64) ([]Hitter, error)

	// FetchGameLog retrieves a hitter's per-game batting log for a season
	FetchGameLog(ctx context.Context, hitterID int64, season int) ([]RawGameEntry, error)

	// FetchBoxscore retrieves the boxscore of a single game
	FetchBoxscore(ctx context.Context, gameID int64) (*Boxscore, error)

	// Name returns the name of the data source
	Name() string
}

// LeagueDirectory exposes the read-only league lookups served by the stats server
type LeagueDirectory interface {
	ListTeams(ctx context.Context) ([]Team, error)
	FetchRoster(ctx context.Context, teamID int64) ([]RosterEntry, error)
	FetchTeamStats(ctx context.Context, teamID int64, season int) (json.RawMessage, error)
	FetchPlayerStats(ctx context.Context, playerID int64, season int) (json.RawMessage, error)
}

// Hitter is one rostered position player
type Hitter struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	TeamID   int64  `json:"team_id"`
	Position string `json:"position"`
}

// RawGameEntry is one game log split as returned by the provider.
// Pointer fields are optional on the wire; the normalizer decides what a missing value means.
type RawGameEntry struct {
	Date     string        `json:"date"`
	IsHome   *bool         `json:"isHome"`
	Opponent *TeamRef      `json:"opponent"`
	Game     *GameRef      `json:"game"`
	Stat     *RawStatBlock `json:"stat"`

	// DecodeErr is set when the entry could not be decoded; the other fields are then empty
	DecodeErr error `json:"-"`
}

// TeamRef identifies a team inside another payload
type TeamRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// GameRef identifies a game inside a game log split
type GameRef struct {
	GamePk int64 `json:"gamePk"`
}

// RawStatBlock holds the counting stats of one game
type RawStatBlock struct {
	AtBats           int `json:"atBats"`
	Hits             int `json:"hits"`
	HomeRuns         int `json:"homeRuns"`
	RBI              int `json:"rbi"`
	BaseOnBalls      int `json:"baseOnBalls"`
	StrikeOuts       int `json:"strikeOuts"`
	Doubles          int `json:"doubles"`
	Triples          int `json:"triples"`
	PlateAppearances int `json:"plateAppearances"`
	TotalBases       int `json:"totalBases"`
	HitByPitch       int `json:"hitByPitch"`
}

// Boxscore is the subset of a game boxscore needed to identify starting pitchers
type Boxscore struct {
	Teams BoxscoreTeams `json:"teams"`
}

// BoxscoreTeams holds both sides of a boxscore
type BoxscoreTeams struct {
	Away BoxscoreSide `json:"away"`
	Home BoxscoreSide `json:"home"`
}

// BoxscoreSide lists a side's pitchers in order of appearance and its players keyed by "ID<playerId>"
type BoxscoreSide struct {
	Pitchers []int64                   `json:"pitchers"`
	Players  map[string]BoxscorePlayer `json:"players"`
}

// BoxscorePlayer is one player entry of a boxscore side
type BoxscorePlayer struct {
	Person Person `json:"person"`
}

// Person is a player's identity and throwing hand
type Person struct {
	ID        int64    `json:"id"`
	FullName  string   `json:"fullName"`
	PitchHand *CodeRef `json:"pitchHand,omitempty"`
}

// CodeRef is a coded value such as a throwing hand or position
type CodeRef struct {
	Code         string `json:"code"`
	Description  string `json:"description,omitempty"`
	Abbreviation string `json:"abbreviation,omitempty"`
}

// Team is one club of the league directory
type Team struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Abbreviation string   `json:"abbreviation"`
	TeamName     string   `json:"teamName"`
	League       *TeamRef `json:"league,omitempty"`
	Division     *TeamRef `json:"division,omitempty"`
}

// RosterEntry is one player on a team's active roster
type RosterEntry struct {
	Person       Person  `json:"person"`
	JerseyNumber string  `json:"jerseyNumber,omitempty"`
	Position     CodeRef `json:"position"`
}

// IsPitcher reports whether the roster position is a pitching position
func (r RosterEntry) IsPitcher() bool {
	abbr := r.Position.Abbreviation
	return len(abbr) > 0 && abbr[0] == 'P'
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
	ErrCodeUnknown              = "unknown"
)

// ErrCircuitOpen is returned while the provider circuit breaker rejects requests
var ErrCircuitOpen = errors.New("circuit breaker open")

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ErrorCode returns the DataSourceError code in err's chain, or ErrCodeUnknown
func ErrorCode(err error) string {
	var dsErr DataSourceError
	if errors.As(err, &dsErr) {
		return dsErr.Code
	}
	return ErrCodeUnknown
}

// IsNotFound reports whether err is a provider not-found error
func IsNotFound(err error) bool {
	return ErrorCode(err) == ErrCodeNotFound
}
