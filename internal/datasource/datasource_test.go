package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/hitter-splits/internal/config"
)

func testHTTPConfig() HTTPClientConfig {
	return HTTPClientConfig{
		Timeout:                2 * time.Second,
		MaxRetries:             2,
		RetryWaitMin:           time.Millisecond,
		RetryWaitMax:           2 * time.Millisecond,
		RateLimit:              1000,
		CircuitBreakerMax:      3,
		CircuitBreakerCooldown: time.Minute,
	}
}

func newTestClient(t *testing.T, handler http.Handler) *MLBStatsClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewMLBStatsClient(NewRateLimitedHTTPClient(testHTTPConfig(), nil), server.URL, "", nil)
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func TestListActiveHittersExcludesPitchersAndDuplicates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/teams/147/roster/Active", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"roster":[
			{"person":{"id":592450,"fullName":"Aaron Judge"},"position":{"abbreviation":"RF"}},
			{"person":{"id":543037,"fullName":"Gerrit Cole"},"position":{"abbreviation":"P"}},
			{"person":{"id":660271,"fullName":"Shohei Ohtani"},"position":{"abbreviation":"TWP"}}
		]}`)
	})
	mux.HandleFunc("/teams/119/roster/Active", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"roster":[
			{"person":{"id":660271,"fullName":"Shohei Ohtani"},"position":{"abbreviation":"DH"}},
			{"person":{"id":605141,"fullName":"Mookie Betts"},"position":{"abbreviation":"SS"}}
		]}`)
	})
	mux.HandleFunc("/teams/111/roster/Active", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})

	client := newTestClient(t, mux)
	hitters, err := client.ListActiveHitters(context.Background(), []int64{147, 111, 119})
	require.NoError(t, err)

	ids := make([]int64, 0, len(hitters))
	for _, h := range hitters {
		ids = append(ids, h.ID)
	}
	assert.Equal(t, []int64{592450, 660271, 605141}, ids)
	assert.Equal(t, int64(147), hitters[1].TeamID, "first roster wins for duplicates")
}

func TestListActiveHittersFailsWhenEveryRosterFails(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))

	_, err := client.ListActiveHitters(context.Background(), []int64{147, 111})
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestFetchGameLog(t *testing.T) {
	var gotQuery string
	mux := http.NewServeMux()
	mux.HandleFunc("/people/592450/stats", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		writeJSON(w, `{"stats":[{"splits":[
			{"date":"2025-06-28","isHome":true,"opponent":{"id":111,"name":"Boston Red Sox"},"game":{"gamePk":777001},
			 "stat":{"atBats":4,"hits":2,"homeRuns":1,"rbi":3,"baseOnBalls":0,"strikeOuts":1,"doubles":0,"triples":0,"plateAppearances":4,"totalBases":5,"hitByPitch":0}},
			{"date":"2025-06-29","opponent":{"id":111},"stat":{"atBats":3}}
		]}]}`)
	})

	client := newTestClient(t, mux)
	entries, err := client.FetchGameLog(context.Background(), 592450, 2025)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Contains(t, gotQuery, "stats=gameLog")
	assert.Contains(t, gotQuery, "group=hitting")
	assert.Contains(t, gotQuery, "season=2025")

	first := entries[0]
	assert.Equal(t, "2025-06-28", first.Date)
	require.NotNil(t, first.IsHome)
	assert.True(t, *first.IsHome)
	assert.Equal(t, int64(777001), first.Game.GamePk)
	assert.Equal(t, 5, first.Stat.TotalBases)

	assert.Nil(t, entries[1].IsHome)
	assert.Nil(t, entries[1].Game)
}

func TestFetchGameLogDropsOnlyMalformedEntry(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"stats":[{"splits":[
			{"date":"2025-06-28","isHome":true,"stat":{"atBats":4,"hits":1}},
			{"date":"2025-06-29","isHome":"yes","stat":{"atBats":3}}
		]}]}`)
	}))

	entries, err := client.FetchGameLog(context.Background(), 592450, 2025)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.NoError(t, entries[0].DecodeErr)
	assert.Equal(t, 1, entries[0].Stat.Hits)
	assert.Error(t, entries[1].DecodeErr)
	assert.Empty(t, entries[1].Date)
}

func TestFetchGameLogEmptyStats(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"stats":[]}`)
	}))

	entries, err := client.FetchGameLog(context.Background(), 1, 2025)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFetchBoxscore(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/game/777001/boxscore", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"teams":{
			"away":{"pitchers":[456,457],"players":{"ID456":{"person":{"id":456,"fullName":"Lefty","pitchHand":{"code":"L"}}}}},
			"home":{"pitchers":[543037],"players":{"ID543037":{"person":{"id":543037,"pitchHand":{"code":"R"}}}}}
		}}`)
	})

	client := newTestClient(t, mux)
	box, err := client.FetchBoxscore(context.Background(), 777001)
	require.NoError(t, err)

	assert.Equal(t, []int64{456, 457}, box.Teams.Away.Pitchers)
	assert.Equal(t, "L", box.Teams.Away.Players["ID456"].Person.PitchHand.Code)
	assert.Equal(t, "R", box.Teams.Home.Players["ID543037"].Person.PitchHand.Code)
}

func TestProviderErrorCodes(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		code   string
	}{
		{"not found", http.StatusNotFound, "", ErrCodeNotFound},
		{"unauthorized", http.StatusUnauthorized, "", ErrCodeAuthenticationFailed},
		{"rate limited after retries", http.StatusTooManyRequests, "", ErrCodeRateLimitExceeded},
		{"server error after retries", http.StatusBadGateway, "", ErrCodeServerError},
		{"malformed body", http.StatusOK, "{not json", ErrCodeInvalidData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))

			_, err := client.FetchBoxscore(context.Background(), 1)
			require.Error(t, err)

			var dsErr DataSourceError
			require.True(t, errors.As(err, &dsErr))
			assert.Equal(t, tt.code, dsErr.Code)
			assert.Equal(t, "mlb_stats_api", dsErr.Source)
		})
	}
}

func TestRetriesTransientServerErrors(t *testing.T) {
	var calls int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, `{"teams":[{"id":147,"name":"New York Yankees","abbreviation":"NYY"}]}`)
	}))

	teams, err := client.ListTeams(context.Background())
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, "NYY", teams[0].Abbreviation)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestCircuitBreakerOpensAndRecovers(t *testing.T) {
	var healthy atomic.Bool
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if !healthy.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := testHTTPConfig()
	cfg.MaxRetries = 0
	cfg.CircuitBreakerMax = 2
	client := NewRateLimitedHTTPClient(cfg, nil)

	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	client.now = func() time.Time { return now }

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		resp, err := client.Get(ctx, server.URL)
		require.NoError(t, err)
		resp.Body.Close()
	}
	assert.True(t, client.IsOpen())

	_, err := client.Get(ctx, server.URL)
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "open breaker must not reach the server")

	now = now.Add(cfg.CircuitBreakerCooldown)
	healthy.Store(true)

	resp, err := client.Get(ctx, server.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.False(t, client.IsOpen())
}

func TestCallerDeadlinesDoNotTripCircuitBreaker(t *testing.T) {
	var slow atomic.Bool
	slow.Store(true)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if slow.Load() {
			select {
			case <-r.Context().Done():
			case <-time.After(500 * time.Millisecond):
			}
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := testHTTPConfig()
	cfg.MaxRetries = 0
	cfg.CircuitBreakerMax = 2
	client := NewRateLimitedHTTPClient(cfg, nil)

	for i := 0; i < 4; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		_, err := client.Get(ctx, server.URL)
		cancel()
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrCircuitOpen)
	}
	assert.False(t, client.IsOpen())

	slow.Store(false)
	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	resp.Body.Close()
}

type countingProvider struct {
	StatsProvider
	boxscoreCalls int
	fail          bool
}

func (p *countingProvider) FetchBoxscore(ctx context.Context, gameID int64) (*Boxscore, error) {
	p.boxscoreCalls++
	if p.fail {
		return nil, NewDataSourceError("test", ErrCodeServerError, "boom", nil)
	}
	return &Boxscore{Teams: BoxscoreTeams{Home: BoxscoreSide{Pitchers: []int64{gameID}}}}, nil
}

func (p *countingProvider) Name() string { return "counting" }

func TestCachedStatsProviderCachesBoxscores(t *testing.T) {
	inner := &countingProvider{}
	cached := NewCachedStatsProvider(inner, time.Hour, nil)
	ctx := context.Background()

	first, err := cached.FetchBoxscore(ctx, 42)
	require.NoError(t, err)
	second, err := cached.FetchBoxscore(ctx, 42)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, inner.boxscoreCalls)
	assert.Equal(t, 1, cached.ItemCount())
	assert.Equal(t, "counting", cached.Name())

	cached.Flush()
	assert.Equal(t, 0, cached.ItemCount())
}

func TestCachedStatsProviderDoesNotCacheFailures(t *testing.T) {
	inner := &countingProvider{fail: true}
	cached := NewCachedStatsProvider(inner, time.Hour, nil)

	_, err := cached.FetchBoxscore(context.Background(), 42)
	require.Error(t, err)
	_, err = cached.FetchBoxscore(context.Background(), 42)
	require.Error(t, err)

	assert.Equal(t, 2, inner.boxscoreCalls)
	assert.Equal(t, 0, cached.ItemCount())
}

func TestRawGameEntryDecodesMissingFields(t *testing.T) {
	var entry RawGameEntry
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2025-04-01"}`), &entry))

	assert.Nil(t, entry.Stat)
	assert.Nil(t, entry.IsHome)
	assert.Nil(t, entry.Opponent)
}

func TestFactoryRejectsUnknownProvider(t *testing.T) {
	factory := NewFactory(config.ProviderConfig{Name: "espn"}, nil)
	_, err := factory.NewStatsProvider()
	require.Error(t, err)

	factory = NewFactory(config.ProviderConfig{
		Name:                    "mlb_stats_api",
		BaseURL:                 DefaultMLBBaseURL,
		TimeoutSeconds:          5,
		RateLimit:               5,
		CircuitBreakerMax:       3,
		BoxscoreCacheTTLMinutes: 10,
	}, nil)
	provider, err := factory.NewStatsProvider()
	require.NoError(t, err)
	assert.Equal(t, "mlb_stats_api", provider.Name())
}
