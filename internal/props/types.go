package props

import (
	"strings"
	"time"
)

// Category is the closed set of player prop markets the model understands.
type Category string

const (
	CategoryPoints   Category = "points"
	CategoryAssists  Category = "assists"
	CategoryRebounds Category = "rebounds"
	CategoryThrees   Category = "threes"
)

// Categories lists every category in canonical order.
func Categories() []Category {
	return []Category{CategoryPoints, CategoryAssists, CategoryRebounds, CategoryThrees}
}

// ParseCategory normalizes a sportsbook market label to a canonical category.
// Anything containing "3" or "three" is a threes prop; otherwise the first
// category whose name appears as a substring wins; the default is points.
func ParseCategory(raw string) Category {
	t := strings.ToLower(strings.TrimSpace(raw))
	if t == "" {
		return CategoryPoints
	}
	if strings.Contains(t, "3") || strings.Contains(t, "three") {
		return CategoryThrees
	}
	for _, c := range Categories() {
		if strings.Contains(t, string(c)) {
			return c
		}
	}
	return CategoryPoints
}

// StatKey returns the box-score stat key graded against for this category.
func (c Category) StatKey() string {
	switch c {
	case CategoryAssists:
		return "AST"
	case CategoryRebounds:
		return "REB"
	case CategoryThrees:
		return "FG3M"
	default:
		return "PTS"
	}
}

// Side is the direction of a prop bet.
type Side string

const (
	SideOver  Side = "Over"
	SideUnder Side = "Under"
)

// ParseSide normalizes a side label; anything that is not "under" is Over.
func ParseSide(raw string) Side {
	if strings.EqualFold(strings.TrimSpace(raw), "under") {
		return SideUnder
	}
	return SideOver
}

// PlayerStatProfile is the per-player aggregate used as scoring input.
// Immutable snapshot for a run; produced by the stats provider.
type PlayerStatProfile struct {
	SeasonAvg      float64 `json:"season_avg"`
	Last10Avg      float64 `json:"last_10_avg"`
	Last5Avg       float64 `json:"last_5_avg"`
	MinutesPerGame float64 `json:"minutes"`
	GamesPlayed    int     `json:"games_played"`
	FGPct          float64 `json:"fg_pct"`
	FG3Pct         float64 `json:"fg3_pct"`
}

// League-average defaults used when an opponent is unknown.
const (
	NeutralDefensiveRating = 110.0
	NeutralPace            = 100.0
)

// OpponentDefenseProfile is the per-opponent defensive aggregate.
type OpponentDefenseProfile struct {
	DefensiveRating float64 `json:"def_rating"`
	Pace            float64 `json:"pace"`
	PointsAllowed   float64 `json:"pts_allowed"`
}

// NeutralDefense returns the league-average profile used when no opponent
// data is available.
func NeutralDefense() OpponentDefenseProfile {
	return OpponentDefenseProfile{
		DefensiveRating: NeutralDefensiveRating,
		Pace:            NeutralPace,
		PointsAllowed:   NeutralDefensiveRating,
	}
}

// Factor is the opponent strength multiplier relative to league average.
// Above 1.0 means a weak or fast defense, below 1.0 a strong or slow one.
func (d OpponentDefenseProfile) Factor() float64 {
	return (d.DefensiveRating / NeutralDefensiveRating) * (d.Pace / NeutralPace)
}

// Game is one scheduled matchup from the odds provider.
type Game struct {
	ID           string    `json:"id"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
	CommenceTime time.Time `json:"commence_time"`
}

// PropOffer is one sportsbook proposition for a player, carrying both sides
// of the market at a single line.
type PropOffer struct {
	Player       string    `json:"player"`
	Market       string    `json:"market"`
	Category     Category  `json:"category"`
	Line         float64   `json:"line"`
	OverOdds     int       `json:"over_odds"`
	UnderOdds    int       `json:"under_odds"`
	Bookmaker    string    `json:"bookmaker"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
	CommenceTime time.Time `json:"commence_time"`
}

// PlayerInfo is display context for an analyzed prop.
type PlayerInfo struct {
	Name     string `json:"name"`
	Team     string `json:"team"`
	Opponent string `json:"opponent"`
	GameTime string `json:"game_time"`
}

// CacheProvider is the cache contract shared by the external data providers.
type CacheProvider interface {
	SetSimple(key string, value interface{}, expiration time.Duration) error
	GetSimple(key string, dest interface{}) error
}
