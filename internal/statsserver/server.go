// Package statsserver serves cached league lookups and the latest hitter splits over HTTP.
package statsserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/hitter-splits/internal/datasource"
	"github.com/yourusername/hitter-splits/internal/logger"
	"github.com/yourusername/hitter-splits/internal/metrics"
	"github.com/yourusername/hitter-splits/internal/models"
)

// APIVersion is reported by /health
const APIVersion = "1.0.0"

// RecordSource yields the most recent persisted checkpoint
type RecordSource interface {
	Latest(ctx context.Context) (*models.Checkpoint, error)
}

// Config holds the dependencies of the stats server
type Config struct {
	Port         string
	Directory    datasource.LeagueDirectory
	Records      RecordSource
	TTLs         TTLs
	CacheCleanup time.Duration
	Logger       *logrus.Logger
}

// Server represents the stats HTTP server
type Server struct {
	port      string
	server    *http.Server
	router    *mux.Router
	directory datasource.LeagueDirectory
	records   RecordSource
	cache     *responseCache
	logger    *logrus.Entry
	now       func() time.Time
}

// NewServer creates a new stats server
func NewServer(cfg Config) *Server {
	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}
	ttls := cfg.TTLs
	if ttls == (TTLs{}) {
		ttls = DefaultTTLs
	}

	s := &Server{
		port:      cfg.Port,
		directory: cfg.Directory,
		records:   cfg.Records,
		cache:     newResponseCache(ttls, cfg.CacheCleanup),
		logger:    log.WithField("component", "stats_server"),
		now:       time.Now,
	}

	router := mux.NewRouter()
	router.Use(s.recoveryMiddleware)
	router.Use(s.loggingMiddleware)

	router.HandleFunc("/health", s.handleHealth).Methods("GET")
	router.HandleFunc("/teams", s.handleTeams).Methods("GET")
	router.HandleFunc("/teams/{teamID}/stats", s.handleTeamStats).Methods("GET")
	router.HandleFunc("/teams/{teamID}/roster", s.handleRoster).Methods("GET")
	router.HandleFunc("/players/{playerID}/stats", s.handlePlayerStats).Methods("GET")
	router.HandleFunc("/hitters/{playerID}/splits", s.handleHitterSplits).Methods("GET")
	router.HandleFunc("/clear-cache", s.handleClearCache).Methods("POST")
	router.Handle("/metrics", metrics.Handler()).Methods("GET")

	s.router = router
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.WithField("port", s.port).Info("Stats server starting")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.WithFields(logrus.Fields{
					"path":  r.URL.Path,
					"panic": rec,
				}).Error("Handler panicked")
				respondError(w, http.StatusInternalServerError, "Internal server error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start).String(),
		}).Debug("Request served")
	})
}
