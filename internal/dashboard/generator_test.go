package dashboard

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmzlocks/value-props-model/internal/models"
	"github.com/cmzlocks/value-props-model/internal/props"
	"github.com/cmzlocks/value-props-model/pkg/config"
)

func newTestGenerator(t *testing.T) (*Generator, string) {
	t.Helper()
	out := filepath.Join(t.TempDir(), "index.html")
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	cfg := &config.Config{
		DashboardFile:     out,
		DashboardTitle:    "Test Props",
		DashboardSubtitle: "Testing",
	}
	return NewGenerator(cfg, log), out
}

func TestWriteDashboard(t *testing.T) {
	g, out := newTestGenerator(t)

	top := []*models.PropAnalysis{
		{
			PlayerName: "Nikola Jokic", Team: "DEN", Opponent: "LAL",
			Category: props.CategoryPoints, BettingLine: 26.5, Side: props.SideOver,
			Odds: -115, Score: 10.0, ExpectedValue: 12.3, Bookmaker: "DraftKings",
			Insights: []string{"Edge: +3.5", "Model: 30.0", "Weak DEF Matchup", "Hot Streak", "dropped"},
		},
	}
	display := append(top, &models.PropAnalysis{
		PlayerName: "LeBron James", Category: props.CategoryAssists,
		BettingLine: 8.5, Side: props.SideUnder, Odds: 120, Score: 8.8,
	})
	report := models.NewPerformanceReport()
	report.Wins = 3
	report.Losses = 2
	report.Units = 0.73
	report.ROI = 14.6
	report.TotalBets = 5
	report.Daily["2025-03-11"] = &models.DailyRollup{Wins: 3, Losses: 2, Units: 0.73, ROI: 14.6}

	require.NoError(t, g.Write(top, display, report))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	html := string(data)

	assert.Contains(t, html, "Test Props")
	assert.Contains(t, html, "Nikola Jokic")
	assert.Contains(t, html, "LeBron James")
	assert.Contains(t, html, "3W - 2L")
	assert.Contains(t, html, "2025-03-11")
	// html/template escapes the plus sign in positive odds
	assert.Contains(t, html, "&#43;120")
	assert.Contains(t, html, "-115")

	// Only the first four insights are surfaced
	assert.NotContains(t, html, "dropped")
}

func TestWriteDashboardEmptyRun(t *testing.T) {
	g, out := newTestGenerator(t)

	require.NoError(t, g.Write(nil, nil, models.NewPerformanceReport()))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Test Props")
}

func TestWriteReplacesExistingFile(t *testing.T) {
	g, out := newTestGenerator(t)
	require.NoError(t, os.WriteFile(out, []byte("stale"), 0o644))

	require.NoError(t, g.Write(nil, nil, models.NewPerformanceReport()))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "stale")
}
