// Package helpers provides fixtures and a mock MLB Stats API for integration tests.
package helpers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yourusername/hitter-splits/internal/datasource"
)

var (
	rosterPath   = regexp.MustCompile(`^/teams/(\d+)/roster/Active$`)
	gameLogPath  = regexp.MustCompile(`^/people/(\d+)/stats$`)
	boxscorePath = regexp.MustCompile(`^/game/(\d+)/boxscore$`)
)

// FixturePath returns the absolute path of a file under test/fixtures
func FixturePath(t *testing.T, filename string) string {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	require.True(t, ok, "cannot locate helpers package")
	return filepath.Join(filepath.Dir(thisFile), "..", "fixtures", filename)
}

// LoadFixture reads a fixture file
func LoadFixture(t *testing.T, filename string) []byte {
	t.Helper()

	data, err := os.ReadFile(FixturePath(t, filename))
	require.NoError(t, err, "failed to read fixture file: %s", filename)
	return data
}

// MockMLBServer serves roster, game log and boxscore fixtures the way the MLB Stats API does.
// A request with no matching fixture gets a 404.
type MockMLBServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests map[string]int
	failures map[string]int
	onPath   func(path string)
}

// NewMockMLBServer starts a mock MLB Stats API server that is closed with the test
func NewMockMLBServer(t *testing.T) *MockMLBServer {
	t.Helper()

	m := &MockMLBServer{
		requests: make(map[string]int),
		failures: make(map[string]int),
	}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.serve(t, w, r)
	}))
	t.Cleanup(m.Server.Close)
	return m
}

// FailWith makes every request for path answer with the given status code
func (m *MockMLBServer) FailWith(path string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[path] = status
}

// OnRequest registers a hook called with the path of every request before it is answered
func (m *MockMLBServer) OnRequest(hook func(path string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onPath = hook
}

// Requests returns how many times path was requested
func (m *MockMLBServer) Requests(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[path]
}

func (m *MockMLBServer) serve(t *testing.T, w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.requests[r.URL.Path]++
	status := m.failures[r.URL.Path]
	hook := m.onPath
	m.mu.Unlock()

	if hook != nil {
		hook(r.URL.Path)
	}
	if status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}

	var fixture string
	switch {
	case rosterPath.MatchString(r.URL.Path):
		fixture = "roster_" + rosterPath.FindStringSubmatch(r.URL.Path)[1] + ".json"
	case gameLogPath.MatchString(r.URL.Path):
		fixture = "gamelog_" + gameLogPath.FindStringSubmatch(r.URL.Path)[1] + ".json"
	case boxscorePath.MatchString(r.URL.Path):
		fixture = "boxscore_" + boxscorePath.FindStringSubmatch(r.URL.Path)[1] + ".json"
	default:
		http.NotFound(w, r)
		return
	}

	data, err := os.ReadFile(FixturePath(t, fixture))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

// NewProvider builds a cached MLB client pointed at the mock server with fast retries
func (m *MockMLBServer) NewProvider() *datasource.CachedStatsProvider {
	httpCfg := datasource.HTTPClientConfig{
		Timeout:                2 * time.Second,
		MaxRetries:             1,
		RetryWaitMin:           time.Millisecond,
		RetryWaitMax:           2 * time.Millisecond,
		RateLimit:              1000,
		CircuitBreakerMax:      50,
		CircuitBreakerCooldown: time.Second,
	}
	client := datasource.NewMLBStatsClient(datasource.NewRateLimitedHTTPClient(httpCfg, nil), m.URL, "", nil)
	return datasource.NewCachedStatsProvider(client, time.Hour, nil)
}
