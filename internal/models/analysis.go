package models

import (
	"github.com/cmzlocks/value-props-model/internal/props"
)

// PropAnalysis is the scoring engine's output for a single
// (player, category, line, side, bookmaker) tuple. Analyses are rebuilt
// fresh every run; only picks derived from value plays are persisted.
type PropAnalysis struct {
	PlayerName string `json:"player_name"`
	Team       string `json:"team"`
	Opponent   string `json:"opponent"`
	GameTime   string `json:"game_time"`
	HomeTeam   string `json:"home_team"`
	AwayTeam   string `json:"away_team"`
	GameDate   string `json:"game_date"`

	Category    props.Category `json:"prop_type"`
	BettingLine float64        `json:"betting_line"`
	Odds        int            `json:"odds"`
	Side        props.Side     `json:"side"`
	Bookmaker   string         `json:"bookmaker"`

	Prediction     float64 `json:"prediction"`
	Edge           float64 `json:"edge"`
	Score          float64 `json:"ai_score"`
	ExpectedValue  float64 `json:"ev"`
	WinProbability int     `json:"win_probability"`

	SeasonAvg   float64 `json:"season_avg"`
	Last10Avg   float64 `json:"last_10_avg"`
	Last5Avg    float64 `json:"last_5_avg"`
	GamesPlayed int     `json:"games_played"`

	IsValuePlay bool     `json:"is_value_play"`
	Insights    []string `json:"insights"`
}

// HighlightKey identifies a prop within a single day's top-play selection.
type HighlightKey struct {
	Player   string
	Category props.Category
	Line     float64
	Side     props.Side
}

// Highlight returns the analysis' top-play selection key.
func (a *PropAnalysis) Highlight() HighlightKey {
	return HighlightKey{
		Player:   a.PlayerName,
		Category: a.Category,
		Line:     a.BettingLine,
		Side:     a.Side,
	}
}
