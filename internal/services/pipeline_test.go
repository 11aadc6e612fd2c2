package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmzlocks/value-props-model/internal/models"
	"github.com/cmzlocks/value-props-model/internal/providers"
	"github.com/cmzlocks/value-props-model/pkg/config"
)

type fakeDashboard struct {
	writes  int
	top     int
	display int
}

func (f *fakeDashboard) Write(topPlays, display []*models.PropAnalysis, report *models.PerformanceReport) error {
	f.writes++
	f.top = len(topPlays)
	f.display = len(display)
	return nil
}

func writeJSONResponse(t *testing.T, w http.ResponseWriter, v interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

// newOddsServer serves one upcoming game with a two-sided points prop for
// Nikola Jokic.
func newOddsServer(t *testing.T, commence time.Time) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/sports/basketball_nba/events":
			writeJSONResponse(t, w, []map[string]interface{}{
				{
					"id":            "evt1",
					"sport_key":     "basketball_nba",
					"commence_time": commence.Format(time.RFC3339),
					"home_team":     "Denver Nuggets",
					"away_team":     "Los Angeles Lakers",
				},
			})
		case r.URL.Path == "/sports/basketball_nba/events/evt1/odds":
			writeJSONResponse(t, w, map[string]interface{}{
				"id":            "evt1",
				"commence_time": commence.Format(time.RFC3339),
				"home_team":     "Denver Nuggets",
				"away_team":     "Los Angeles Lakers",
				"bookmakers": []map[string]interface{}{
					{
						"key":   "draftkings",
						"title": "DraftKings",
						"markets": []map[string]interface{}{
							{
								"key": "player_points",
								"outcomes": []map[string]interface{}{
									{"name": "Over", "description": "Nikola Jokic", "price": -115, "point": 26.5},
									{"name": "Under", "description": "Nikola Jokic", "price": -105, "point": 26.5},
								},
							},
						},
					},
				},
			})
		default:
			t.Errorf("unexpected odds request: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

// newStatsServer serves the roster, season averages, recent games, and team
// defense data behind the pipeline's stats lookups.
func newStatsServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/players/active":
			writeJSONResponse(t, w, map[string]interface{}{
				"data": []map[string]interface{}{
					{
						"id": 15, "first_name": "Nikola", "last_name": "Jokic",
						"team": map[string]interface{}{"id": 8, "full_name": "Denver Nuggets", "abbreviation": "DEN"},
					},
				},
				"meta": map[string]interface{}{"next_cursor": nil, "per_page": 100},
			})
		case "/season_averages":
			writeJSONResponse(t, w, map[string]interface{}{
				"data": []map[string]interface{}{
					{
						"player_id": 15, "games_played": 50, "min": "34",
						"pts": 28.5, "ast": 7.0, "reb": 12.0, "fg3m": 1.1,
						"fg_pct": 0.50, "fg3_pct": 0.38,
					},
				},
			})
		case "/stats":
			if strings.Contains(r.URL.RawQuery, "dates") {
				// Box-score lookup during grading; no finished games here
				writeJSONResponse(t, w, map[string]interface{}{"data": []interface{}{}})
				return
			}
			writeJSONResponse(t, w, map[string]interface{}{
				"data": []map[string]interface{}{
					{
						"game": map[string]interface{}{"id": 1, "date": "2026-01-05", "status": "Final"},
						"min":  "36", "pts": 31.0, "ast": 8.0, "reb": 13.0, "fg3m": 1.0,
					},
					{
						"game": map[string]interface{}{"id": 2, "date": "2026-01-03", "status": "Final"},
						"min":  "35", "pts": 31.0, "ast": 6.0, "reb": 11.0, "fg3m": 2.0,
					},
				},
			})
		case "/teams":
			writeJSONResponse(t, w, map[string]interface{}{
				"data": []map[string]interface{}{
					{"id": 8, "full_name": "Denver Nuggets", "abbreviation": "DEN"},
					{"id": 14, "full_name": "Los Angeles Lakers", "abbreviation": "LAL"},
				},
			})
		case "/games":
			writeJSONResponse(t, w, map[string]interface{}{
				"data": []map[string]interface{}{
					{
						"id": 1, "date": "2026-01-05", "status": "Final",
						"home_team_id": 14, "visitor_team_id": 8,
						"home_team_score": 105, "visitor_team_score": 112,
					},
				},
			})
		default:
			t.Errorf("unexpected stats request: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func newTestPipeline(t *testing.T, oddsURL, statsURL string) (*Pipeline, *fakeDashboard, *DocumentStore) {
	t.Helper()

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	dir := t.TempDir()
	cfg := &config.Config{
		OddsAPIKey:         "test-key",
		OddsAPIBaseURL:     oddsURL,
		SportKey:           "basketball_nba",
		DaysAhead:          3,
		PropMarkets:        []string{"player_points"},
		StatsAPIKey:        "test-key",
		StatsAPIBaseURL:    statsURL,
		StatsRateInterval:  time.Millisecond,
		ExternalAPITimeout: 5 * time.Second,
		TrackingFile:       filepath.Join(dir, "tracking.json"),
		PerformanceFile:    filepath.Join(dir, "performance.json"),
		PropsHistoryFile:   filepath.Join(dir, "props_history.json"),
	}

	cache := NewMemoryCache()
	model := config.DefaultModelConfig()
	breaker := NewCircuitBreakerService(5, 30*time.Second, log)

	odds := providers.NewOddsAPIClient(cfg, cache, log)
	stats := providers.NewBallDontLieClient(cfg, cache, log)

	analyzer := NewPropAnalyzer(model, log)
	selector := NewPropSelector(model)
	tracker := NewPickTracker(stats, cfg.StatsRateInterval, log)
	store := NewDocumentStore(cfg.TrackingFile, cfg.PerformanceFile, cfg.PropsHistoryFile, log)
	dash := &fakeDashboard{}

	return NewPipeline(cfg, model, odds, stats, analyzer, selector, tracker, store, breaker, dash, cache, log), dash, store
}

func TestPipelineRunEndToEnd(t *testing.T) {
	commence := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Hour)
	oddsSrv := newOddsServer(t, commence)
	defer oddsSrv.Close()
	statsSrv := newStatsServer(t)
	defer statsSrv.Close()

	pipeline, dash, store := newTestPipeline(t, oddsSrv.URL, statsSrv.URL)

	summary, err := pipeline.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Games)
	assert.Equal(t, 1, summary.OffersFetched)
	assert.GreaterOrEqual(t, summary.PropsAnalyzed, 1)

	// Season average 28.5 and recent form 31.0 against a 26.5 line saturate
	// the over score, so the prop qualifies as a value play and a top play.
	assert.GreaterOrEqual(t, summary.ValuePlays, 1)
	assert.Equal(t, 1, summary.TopPlays)
	assert.Equal(t, 1, summary.PicksTracked)

	// The game has not been played, so nothing grades.
	assert.Equal(t, 0, summary.PicksGraded)
	assert.Equal(t, "0W-0L", summary.Record)

	assert.Equal(t, 1, dash.writes)
	assert.Equal(t, 1, dash.top)
	assert.GreaterOrEqual(t, dash.display, 1)

	top := pipeline.TopPlays()
	require.Len(t, top, 1)
	assert.Equal(t, "Nikola Jokic", top[0].PlayerName)
	assert.Equal(t, "DEN", top[0].Team)
	assert.Equal(t, "LAL", top[0].Opponent)
	assert.Equal(t, 10.0, top[0].Score)

	pickStore, err := store.LoadPickStore()
	require.NoError(t, err)
	require.Len(t, pickStore.Picks, 1)
	assert.Equal(t, models.PickPending, pickStore.Picks[0].Status)
	assert.True(t, pickStore.Picks[0].IsTopPlay)

	require.NotNil(t, pipeline.LastRun())
	assert.Equal(t, summary.RunID, pipeline.LastRun().RunID)
}

func TestPipelineRunIsIdempotentAcrossRuns(t *testing.T) {
	commence := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Hour)
	oddsSrv := newOddsServer(t, commence)
	defer oddsSrv.Close()
	statsSrv := newStatsServer(t)
	defer statsSrv.Close()

	pipeline, _, store := newTestPipeline(t, oddsSrv.URL, statsSrv.URL)

	first, err := pipeline.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.PicksTracked)

	second, err := pipeline.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.PicksTracked)

	pickStore, err := store.LoadPickStore()
	require.NoError(t, err)
	assert.Len(t, pickStore.Picks, 1)
}

func TestPipelineRunSurvivesOddsOutage(t *testing.T) {
	oddsSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer oddsSrv.Close()
	statsSrv := newStatsServer(t)
	defer statsSrv.Close()

	pipeline, dash, _ := newTestPipeline(t, oddsSrv.URL, statsSrv.URL)

	// A short deadline stops the fetch retry loop quickly; the rest of the
	// run does not need the network.
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	summary, err := pipeline.Run(ctx)
	require.NoError(t, err)

	// Settlement-only run: no games, no props, but the run completes and
	// still reports and renders.
	assert.Equal(t, 0, summary.Games)
	assert.Equal(t, 0, summary.PropsAnalyzed)
	assert.Equal(t, "0W-0L", summary.Record)
	assert.Equal(t, 1, dash.writes)
}
