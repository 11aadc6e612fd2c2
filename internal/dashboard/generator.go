package dashboard

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cmzlocks/value-props-model/internal/models"
	"github.com/cmzlocks/value-props-model/internal/props"
	"github.com/cmzlocks/value-props-model/pkg/config"
)

// Generator renders the static HTML dashboard after each pipeline run.
type Generator struct {
	outputPath string
	title      string
	subtitle   string
	logger     *logrus.Logger
}

func NewGenerator(cfg *config.Config, logger *logrus.Logger) *Generator {
	return &Generator{
		outputPath: cfg.DashboardFile,
		title:      cfg.DashboardTitle,
		subtitle:   cfg.DashboardSubtitle,
		logger:     logger,
	}
}

type categorySection struct {
	Title string
	Props []*models.PropAnalysis
}

type dailyRow struct {
	Date   string
	Wins   int
	Losses int
	Pushes int
	Units  float64
	ROI    float64
}

type pageData struct {
	Title       string
	Subtitle    string
	GeneratedAt string
	Record      string
	Units       float64
	ROI         float64
	TotalBets   int
	TopPlays    []*models.PropAnalysis
	Sections    []categorySection
	Daily       []dailyRow
}

// Write renders the dashboard to the configured output path. The file is
// written atomically so a reader never sees a partial page.
func (g *Generator) Write(topPlays, display []*models.PropAnalysis, report *models.PerformanceReport) error {
	data := pageData{
		Title:       g.title,
		Subtitle:    g.subtitle,
		GeneratedAt: time.Now().Format("Jan 2, 2006 3:04 PM MST"),
		TopPlays:    topPlays,
	}

	if report != nil {
		data.Record = fmt.Sprintf("%dW - %dL", report.Wins, report.Losses)
		data.Units = report.Units
		data.ROI = report.ROI
		data.TotalBets = report.TotalBets
		data.Daily = dailyRows(report)
	}

	for _, cat := range props.Categories() {
		var section []*models.PropAnalysis
		for _, a := range display {
			if a.Category == cat {
				section = append(section, a)
			}
		}
		if len(section) == 0 {
			continue
		}
		data.Sections = append(data.Sections, categorySection{
			Title: strings.ToUpper(string(cat)[:1]) + string(cat)[1:],
			Props: section,
		})
	}

	html, err := renderPage(data)
	if err != nil {
		return fmt.Errorf("failed to render dashboard: %w", err)
	}

	dir := filepath.Dir(g.outputPath)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	tmp, err := os.CreateTemp(dir, "dashboard-*.html")
	if err != nil {
		return err
	}
	if _, err := tmp.WriteString(html); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), g.outputPath); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	g.logger.Infof("Dashboard written to %s (%d top plays, %d props)",
		g.outputPath, len(topPlays), len(display))
	return nil
}

func dailyRows(report *models.PerformanceReport) []dailyRow {
	dates := make([]string, 0, len(report.Daily))
	for date := range report.Daily {
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	rows := make([]dailyRow, 0, len(dates))
	for _, date := range dates {
		r := report.Daily[date]
		rows = append(rows, dailyRow{
			Date:   date,
			Wins:   r.Wins,
			Losses: r.Losses,
			Pushes: r.Pushes,
			Units:  r.Units,
			ROI:    r.ROI,
		})
	}
	return rows
}

func renderPage(data pageData) (string, error) {
	tmpl, err := template.New("dashboard").Funcs(template.FuncMap{
		"odds": func(odds int) string {
			if odds > 0 {
				return fmt.Sprintf("+%d", odds)
			}
			return fmt.Sprintf("%d", odds)
		},
		"insights": func(list []string) string {
			if len(list) > 4 {
				list = list[:4]
			}
			return strings.Join(list, " · ")
		},
	}).Parse(pageTemplate)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
  body { font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; margin: 0; background: #0f1220; color: #e6e8f0; }
  header { padding: 24px 32px; background: #161a2e; }
  h1 { margin: 0 0 4px; font-size: 24px; }
  .subtitle { color: #8b90a7; font-size: 14px; }
  .meta { color: #8b90a7; font-size: 12px; margin-top: 8px; }
  .record { display: flex; gap: 24px; padding: 16px 32px; background: #11152a; font-size: 14px; }
  .record b { color: #4ade80; }
  section { padding: 16px 32px; }
  h2 { font-size: 18px; border-bottom: 1px solid #262b45; padding-bottom: 8px; }
  .cards { display: grid; grid-template-columns: repeat(auto-fill, minmax(280px, 1fr)); gap: 12px; }
  .card { background: #161a2e; border-radius: 8px; padding: 14px; }
  .card .player { font-weight: 600; }
  .card .line { color: #8b90a7; font-size: 13px; margin: 4px 0; }
  .card .score { color: #4ade80; font-weight: 600; }
  .card .insights { color: #8b90a7; font-size: 12px; margin-top: 6px; }
  table { width: 100%; border-collapse: collapse; font-size: 13px; }
  th, td { text-align: left; padding: 6px 10px; border-bottom: 1px solid #1d2238; }
  th { color: #8b90a7; font-weight: 500; }
  .pos { color: #4ade80; }
  .neg { color: #f87171; }
</style>
</head>
<body>
<header>
  <h1>{{.Title}}</h1>
  <div class="subtitle">{{.Subtitle}}</div>
  <div class="meta">Updated {{.GeneratedAt}}</div>
</header>
{{if .TotalBets}}
<div class="record">
  <span>Record <b>{{.Record}}</b></span>
  <span>Units {{printf "%+.2f" .Units}}</span>
  <span>ROI {{printf "%.1f" .ROI}}%</span>
  <span>Bets {{.TotalBets}}</span>
</div>
{{end}}
{{if .TopPlays}}
<section>
  <h2>Top Plays</h2>
  <div class="cards">
  {{range .TopPlays}}
    <div class="card">
      <div class="player">{{.PlayerName}}{{if .Team}} ({{.Team}}){{end}}</div>
      <div class="line">{{.Side}} {{.BettingLine}} {{.Category}} @ {{odds .Odds}} · {{.Bookmaker}}</div>
      <div class="line">{{.GameTime}}{{if .Opponent}} vs {{.Opponent}}{{end}}</div>
      <div class="score">Score {{printf "%.1f" .Score}} · EV {{printf "%+.1f" .ExpectedValue}}%</div>
      <div class="insights">{{insights .Insights}}</div>
    </div>
  {{end}}
  </div>
</section>
{{end}}
{{range .Sections}}
<section>
  <h2>{{.Title}}</h2>
  <table>
    <tr><th>Player</th><th>Team</th><th>Opp</th><th>Side</th><th>Line</th><th>Odds</th><th>Score</th><th>EV</th><th>Insights</th></tr>
    {{range .Props}}
    <tr>
      <td>{{.PlayerName}}</td>
      <td>{{.Team}}</td>
      <td>{{.Opponent}}</td>
      <td>{{.Side}}</td>
      <td>{{.BettingLine}}</td>
      <td>{{odds .Odds}}</td>
      <td class="pos">{{printf "%.1f" .Score}}</td>
      <td>{{printf "%+.1f" .ExpectedValue}}%</td>
      <td>{{insights .Insights}}</td>
    </tr>
    {{end}}
  </table>
</section>
{{end}}
{{if .Daily}}
<section>
  <h2>Daily Performance</h2>
  <table>
    <tr><th>Date</th><th>W</th><th>L</th><th>P</th><th>Units</th><th>ROI</th></tr>
    {{range .Daily}}
    <tr>
      <td>{{.Date}}</td>
      <td>{{.Wins}}</td>
      <td>{{.Losses}}</td>
      <td>{{.Pushes}}</td>
      <td class="{{if ge .Units 0.0}}pos{{else}}neg{{end}}">{{printf "%+.2f" .Units}}</td>
      <td>{{printf "%.1f" .ROI}}%</td>
    </tr>
    {{end}}
  </table>
</section>
{{end}}
</body>
</html>
`
