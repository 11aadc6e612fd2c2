package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmzlocks/value-props-model/internal/models"
	"github.com/cmzlocks/value-props-model/internal/props"
)

func newTestStore(t *testing.T) *DocumentStore {
	t.Helper()
	dir := t.TempDir()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewDocumentStore(
		filepath.Join(dir, "tracking.json"),
		filepath.Join(dir, "performance.json"),
		filepath.Join(dir, "props_history.json"),
		log,
	)
}

func TestLoadPickStoreMissingFile(t *testing.T) {
	store := newTestStore(t)

	picks, err := store.LoadPickStore()
	require.NoError(t, err)
	assert.Equal(t, models.PickStoreSchemaVersion, picks.SchemaVersion)
	assert.Empty(t, picks.Picks)
}

func TestPickStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)

	actual := 31.0
	pl := 91
	graded := time.Date(2025, 3, 12, 9, 30, 0, 0, time.UTC)

	original := models.NewPickStore()
	original.Picks = []*models.Pick{
		{
			ID:          models.PickID("LeBron James", props.CategoryPoints, 25.5, props.SideOver, "2025-03-11"),
			PlayerName:  "LeBron James",
			Category:    props.CategoryPoints,
			IsTopPlay:   true,
			Line:        25.5,
			Side:        props.SideOver,
			Odds:        -110,
			OpeningOdds: -110,
			GameDate:    "2025-03-11",
			StartTime:   "Tue, Mar 11 • 7:30 PM ET",
			TrackedAt:   graded.Add(-24 * time.Hour),
			Status:      models.PickWin,
			Result:      "WIN",
			ActualStat:  &actual,
			ProfitLoss:  &pl,
			UpdatedAt:   &graded,
		},
		{
			ID:         models.PickID("Nikola Jokic", props.CategoryAssists, 8.5, props.SideUnder, "2025-03-12"),
			PlayerName: "Nikola Jokic",
			Category:   props.CategoryAssists,
			Line:       8.5,
			Side:       props.SideUnder,
			Odds:       120,
			GameDate:   "2025-03-12",
			Status:     models.PickPending,
		},
	}

	require.NoError(t, store.SavePickStore(original))

	loaded, err := store.LoadPickStore()
	require.NoError(t, err)
	require.Len(t, loaded.Picks, 2)
	assert.Equal(t, original.Picks[0], loaded.Picks[0])
	assert.Equal(t, original.Picks[1], loaded.Picks[1])
}

func TestLoadPickStoreCorruptFile(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.WriteFile(store.trackingFile, []byte("{not json"), 0o644))

	picks, err := store.LoadPickStore()
	assert.Error(t, err)
	require.NotNil(t, picks)
	assert.Empty(t, picks.Picks)
}

func TestPerformanceRoundTrip(t *testing.T) {
	store := newTestStore(t)

	report := models.NewPerformanceReport()
	report.Wins = 3
	report.Losses = 2
	report.Units = 0.73
	report.ROI = 14.6
	report.TotalBets = 5
	report.Daily["2025-03-11"] = &models.DailyRollup{Wins: 3, Losses: 2, Units: 0.73, ROI: 14.6}
	report.DailyByType["2025-03-11"] = models.TypeRollups{
		"points":              &models.DailyRollup{Wins: 2},
		models.TopPlaysBucket: &models.DailyRollup{Wins: 1},
	}

	require.NoError(t, store.SavePerformance(report))

	loaded, err := store.LoadPerformance()
	require.NoError(t, err)
	assert.Equal(t, report, loaded)
}

func TestLoadPerformanceMissingFile(t *testing.T) {
	store := newTestStore(t)

	report, err := store.LoadPerformance()
	require.NoError(t, err)
	assert.Zero(t, report.TotalBets)
	assert.NotNil(t, report.Daily)
	assert.NotNil(t, report.DailyByType)
}

func TestAppendPropsHistory(t *testing.T) {
	store := newTestStore(t)

	day1 := []*models.PropAnalysis{
		{PlayerName: "A", Category: props.CategoryPoints, BettingLine: 20.5, Side: props.SideOver, Score: 10.0, IsValuePlay: true},
		{PlayerName: "B", Category: props.CategoryAssists, BettingLine: 7.5, Side: props.SideOver, Score: 8.0},
	}
	require.NoError(t, store.AppendPropsHistory("2025-03-11", day1))

	day2 := []*models.PropAnalysis{
		{PlayerName: "C", Category: props.CategoryThrees, BettingLine: 2.5, Side: props.SideUnder, Score: 10.0, IsValuePlay: true},
	}
	require.NoError(t, store.AppendPropsHistory("2025-03-12", day2))

	var history models.PropsHistory
	require.NoError(t, readJSON(store.historyFile, &history))
	require.Len(t, history, 2)

	assert.Equal(t, 2, history["2025-03-11"].TotalProps)
	assert.Equal(t, 1, history["2025-03-11"].ValuePlays)
	assert.Equal(t, 1, history["2025-03-12"].TotalProps)

	// Re-running the same date replaces the entry instead of duplicating
	require.NoError(t, store.AppendPropsHistory("2025-03-12", day2))
	require.NoError(t, readJSON(store.historyFile, &history))
	assert.Len(t, history, 2)
}
