package statsserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/yourusername/hitter-splits/internal/datasource"
	"github.com/yourusername/hitter-splits/internal/metrics"
	"github.com/yourusername/hitter-splits/internal/models"
)

// SplitsResponse wraps a hitter record with the run date it was computed for
type SplitsResponse struct {
	RunDate string                        `json:"run_date"`
	Record  *models.HitterAggregateRecord `json:"record"`
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "healthy",
		"timestamp":   s.now().UTC().Format(time.RFC3339),
		"api_version": APIVersion,
		"cache_size":  s.cache.size(),
	})
}

// handleTeams returns every club
func (s *Server) handleTeams(w http.ResponseWriter, r *http.Request) {
	s.serveCached(w, r, "teams", CategoryTeams, "all", func() (interface{}, error) {
		return s.directory.ListTeams(r.Context())
	})
}

// handleTeamStats returns a team's season stats
func (s *Server) handleTeamStats(w http.ResponseWriter, r *http.Request) {
	teamID, ok := pathID(w, r, "teamID")
	if !ok {
		return
	}
	season, ok := s.season(w, r)
	if !ok {
		return
	}

	key := strconv.FormatInt(teamID, 10) + ":" + strconv.Itoa(season)
	s.serveCached(w, r, "team_stats", CategoryTeamStats, key, func() (interface{}, error) {
		return s.directory.FetchTeamStats(r.Context(), teamID, season)
	})
}

// handleRoster returns a team's active roster
func (s *Server) handleRoster(w http.ResponseWriter, r *http.Request) {
	teamID, ok := pathID(w, r, "teamID")
	if !ok {
		return
	}

	s.serveCached(w, r, "roster", CategoryRoster, strconv.FormatInt(teamID, 10), func() (interface{}, error) {
		return s.directory.FetchRoster(r.Context(), teamID)
	})
}

// handlePlayerStats returns a player's season hitting stats
func (s *Server) handlePlayerStats(w http.ResponseWriter, r *http.Request) {
	playerID, ok := pathID(w, r, "playerID")
	if !ok {
		return
	}
	season, ok := s.season(w, r)
	if !ok {
		return
	}

	key := strconv.FormatInt(playerID, 10) + ":" + strconv.Itoa(season)
	s.serveCached(w, r, "player_stats", CategoryPlayerStats, key, func() (interface{}, error) {
		return s.directory.FetchPlayerStats(r.Context(), playerID, season)
	})
}

// handleHitterSplits returns the hitter's record from the latest checkpoint
func (s *Server) handleHitterSplits(w http.ResponseWriter, r *http.Request) {
	playerID, ok := pathID(w, r, "playerID")
	if !ok {
		return
	}
	metrics.RecordStatsServerRequest("hitter_splits", false)

	if s.records == nil {
		respondError(w, http.StatusServiceUnavailable, "No checkpoint store configured", nil)
		return
	}

	cp, err := s.records.Latest(r.Context())
	if errors.Is(err, models.ErrNotFound) {
		respondError(w, http.StatusNotFound, "No splits have been computed yet", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load splits", err)
		return
	}

	rec, found := cp.Get(models.HitterKey(playerID))
	if !found {
		respondError(w, http.StatusNotFound, "Hitter not found in latest splits", nil)
		return
	}

	respondJSON(w, http.StatusOK, SplitsResponse{RunDate: cp.DateKey(), Record: rec})
}

// handleClearCache empties the response cache
func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	size := s.cache.flush()
	s.logger.Info("Response cache cleared")
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "Cache cleared",
		"cache_size": size,
	})
}

// serveCached answers from the cache or calls fetch and caches a successful result
func (s *Server) serveCached(w http.ResponseWriter, r *http.Request, route, category, key string, fetch func() (interface{}, error)) {
	if v, ok := s.cache.get(category, key); ok {
		metrics.RecordStatsServerRequest(route, true)
		w.Header().Set("X-Cache", "HIT")
		respondJSON(w, http.StatusOK, v)
		return
	}
	metrics.RecordStatsServerRequest(route, false)

	v, err := fetch()
	if err != nil {
		respondProviderError(w, err)
		return
	}

	s.cache.set(category, key, v)
	w.Header().Set("X-Cache", "MISS")
	respondJSON(w, http.StatusOK, v)
}

func (s *Server) season(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("season")
	if raw == "" {
		return s.now().Year(), true
	}
	season, err := strconv.Atoi(raw)
	if err != nil || season < 1876 {
		respondError(w, http.StatusBadRequest, "Invalid season", err)
		return 0, false
	}
	return season, true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid "+name, err)
		return 0, false
	}
	return id, true
}

func respondProviderError(w http.ResponseWriter, err error) {
	switch datasource.ErrorCode(err) {
	case datasource.ErrCodeNotFound:
		respondError(w, http.StatusNotFound, "Not found", err)
	case datasource.ErrCodeRateLimitExceeded:
		respondError(w, http.StatusTooManyRequests, "Upstream rate limit exceeded", err)
	default:
		respondError(w, http.StatusBadGateway, "Upstream request failed", err)
	}
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	respondJSON(w, status, response)
}
