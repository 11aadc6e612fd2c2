package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/cmzlocks/value-props-model/internal/props"
	"github.com/cmzlocks/value-props-model/pkg/config"
)

// BallDontLieClient fetches player and team stats from the BALLDONTLIE API.
// It backs both prop scoring inputs and the box-score lookups used to grade
// settled picks.
type BallDontLieClient struct {
	httpClient  *http.Client
	cache       props.CacheProvider
	logger      *logrus.Logger
	rateLimiter *rate.Limiter
	apiKey      string
	baseURL     string
	nowFn       func() time.Time
}

// NewBallDontLieClient creates a new BALLDONTLIE API client.
func NewBallDontLieClient(cfg *config.Config, cache props.CacheProvider, logger *logrus.Logger) *BallDontLieClient {
	interval := cfg.StatsRateInterval
	if interval <= 0 {
		interval = 600 * time.Millisecond
	}
	return &BallDontLieClient{
		httpClient: &http.Client{
			Timeout: cfg.ExternalAPITimeout,
		},
		cache:       cache,
		logger:      logger,
		rateLimiter: rate.NewLimiter(rate.Every(interval), 1),
		apiKey:      cfg.StatsAPIKey,
		baseURL:     strings.TrimRight(cfg.StatsAPIBaseURL, "/"),
		nowFn:       time.Now,
	}
}

// BALLDONTLIE API response structures
type bdlPlayer struct {
	ID        int     `json:"id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Team      bdlTeam `json:"team"`
}

type bdlTeam struct {
	ID           int    `json:"id"`
	FullName     string `json:"full_name"`
	Abbreviation string `json:"abbreviation"`
}

type bdlMeta struct {
	NextCursor json.Number `json:"next_cursor"`
	PerPage    int         `json:"per_page"`
}

type bdlGame struct {
	ID               int    `json:"id"`
	Date             string `json:"date"`
	Status           string `json:"status"`
	HomeTeamID       int    `json:"home_team_id"`
	VisitorTeamID    int    `json:"visitor_team_id"`
	HomeTeamScore    int    `json:"home_team_score"`
	VisitorTeamScore int    `json:"visitor_team_score"`
}

type bdlStatLine struct {
	Player bdlPlayer `json:"player"`
	Game   bdlGame   `json:"game"`
	Min    string    `json:"min"`
	Pts    float64   `json:"pts"`
	Ast    float64   `json:"ast"`
	Reb    float64   `json:"reb"`
	Fg3m   float64   `json:"fg3m"`
	FgPct  float64   `json:"fg_pct"`
	Fg3Pct float64   `json:"fg3_pct"`
}

type bdlSeasonAverage struct {
	PlayerID    int     `json:"player_id"`
	GamesPlayed int     `json:"games_played"`
	Min         string  `json:"min"`
	Pts         float64 `json:"pts"`
	Ast         float64 `json:"ast"`
	Reb         float64 `json:"reb"`
	Fg3m        float64 `json:"fg3m"`
	FgPct       float64 `json:"fg_pct"`
	Fg3Pct      float64 `json:"fg3_pct"`
}

// directoryEntry is the cached per-player record from the roster preload.
type directoryEntry struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Team string `json:"team"`
}

// PlayerProfile builds the scoring input for one player and category.
// found is false when the player cannot be resolved in the roster
// directory; callers fall back to estimated averages.
func (c *BallDontLieClient) PlayerProfile(ctx context.Context, playerName string, category props.Category) (props.PlayerStatProfile, string, bool, error) {
	entry, ok, err := c.resolvePlayer(ctx, playerName)
	if err != nil {
		return props.PlayerStatProfile{}, "", false, err
	}
	if !ok {
		return props.PlayerStatProfile{}, "", false, nil
	}

	season, err := c.seasonAverage(ctx, entry.ID)
	if err != nil {
		return props.PlayerStatProfile{}, entry.Team, false, err
	}
	if season == nil {
		return props.PlayerStatProfile{}, entry.Team, false, nil
	}

	recent, err := c.recentGames(ctx, entry.ID)
	if err != nil {
		c.logger.Warnf("Recent games unavailable for %s: %v", playerName, err)
	}

	seasonAvg := statByKey(season.Pts, season.Ast, season.Reb, season.Fg3m, category.StatKey())
	last10 := recentAverage(recent, category.StatKey(), 10, seasonAvg)
	last5 := recentAverage(recent, category.StatKey(), 5, last10)

	profile := props.PlayerStatProfile{
		SeasonAvg:      round1(seasonAvg),
		Last10Avg:      round1(last10),
		Last5Avg:       round1(last5),
		MinutesPerGame: parseMinutes(season.Min),
		GamesPlayed:    season.GamesPlayed,
		FGPct:          season.FgPct,
		FG3Pct:         season.Fg3Pct,
	}
	return profile, entry.Team, true, nil
}

// EstimatedProfile is the conservative stat line assumed for players the
// roster directory cannot resolve.
func EstimatedProfile(category props.Category) props.PlayerStatProfile {
	estimates := map[string]float64{
		"PTS":  12.0,
		"AST":  3.0,
		"REB":  4.5,
		"FG3M": 1.2,
	}
	avg := estimates[category.StatKey()]
	return props.PlayerStatProfile{
		SeasonAvg:      avg,
		Last10Avg:      avg,
		Last5Avg:       avg,
		MinutesPerGame: 20.0,
		GamesPlayed:    40,
		FGPct:          0.44,
		FG3Pct:         0.35,
	}
}

// PlayerTeam returns the team abbreviation for a player, or "" when the
// player is unknown.
func (c *BallDontLieClient) PlayerTeam(ctx context.Context, playerName string) string {
	entry, ok, err := c.resolvePlayer(ctx, playerName)
	if err != nil || !ok {
		return ""
	}
	return entry.Team
}

// FinalStat looks up a player's box-score stat for a finished game on
// gameDate. found is false when the game has not gone final or the player
// did not record a stat line.
func (c *BallDontLieClient) FinalStat(ctx context.Context, playerName, gameDate, statKey string) (float64, bool, error) {
	entry, ok, err := c.resolvePlayer(ctx, playerName)
	if err != nil {
		return 0, false, err
	}
	if !ok {
		return 0, false, fmt.Errorf("player %q not found in roster directory", playerName)
	}

	cacheKey := fmt.Sprintf("bdl:boxscore:%d:%s", entry.ID, gameDate)
	var cached bdlStatLine
	if err := c.cache.GetSimple(cacheKey, &cached); err != nil {
		params := url.Values{}
		params.Set("player_ids[]", strconv.Itoa(entry.ID))
		params.Set("dates[]", gameDate)
		params.Set("per_page", "10")

		var resp struct {
			Data []bdlStatLine `json:"data"`
		}
		if err := c.makeRequest(ctx, "/stats", params, &resp); err != nil {
			return 0, false, err
		}
		if len(resp.Data) == 0 {
			return 0, false, nil
		}
		cached = resp.Data[0]
		if strings.EqualFold(cached.Game.Status, "Final") {
			c.cache.SetSimple(cacheKey, cached, 7*24*time.Hour)
		}
	}

	if !strings.EqualFold(cached.Game.Status, "Final") {
		return 0, false, nil
	}
	return statByKey(cached.Pts, cached.Ast, cached.Reb, cached.Fg3m, statKey), true, nil
}

// TeamDefense estimates an opponent's defensive profile from its completed
// games over the last three weeks. Defensive rating is approximated by
// points allowed per game at neutral pace. Unknown teams get the league
// average profile.
func (c *BallDontLieClient) TeamDefense(ctx context.Context, abbrev string) props.OpponentDefenseProfile {
	if abbrev == "" {
		return props.NeutralDefense()
	}

	cacheKey := fmt.Sprintf("bdl:defense:%s", abbrev)
	var cached props.OpponentDefenseProfile
	if err := c.cache.GetSimple(cacheKey, &cached); err == nil {
		return cached
	}

	teamID, ok, err := c.teamID(ctx, abbrev)
	if err != nil || !ok {
		if err != nil {
			c.logger.Warnf("Team lookup failed for %s: %v", abbrev, err)
		}
		return props.NeutralDefense()
	}

	now := c.nowFn().UTC()
	params := url.Values{}
	params.Set("team_ids[]", strconv.Itoa(teamID))
	params.Set("start_date", now.AddDate(0, 0, -21).Format("2006-01-02"))
	params.Set("end_date", now.Format("2006-01-02"))
	params.Set("per_page", "100")

	var resp struct {
		Data []bdlGame `json:"data"`
	}
	if err := c.makeRequest(ctx, "/games", params, &resp); err != nil {
		c.logger.Warnf("Defense stats unavailable for %s: %v", abbrev, err)
		return props.NeutralDefense()
	}

	var allowed, count float64
	for _, g := range resp.Data {
		if !strings.EqualFold(g.Status, "Final") {
			continue
		}
		if g.HomeTeamID == teamID {
			allowed += float64(g.VisitorTeamScore)
		} else {
			allowed += float64(g.HomeTeamScore)
		}
		count++
	}
	if count == 0 {
		return props.NeutralDefense()
	}

	perGame := allowed / count
	profile := props.OpponentDefenseProfile{
		DefensiveRating: perGame,
		Pace:            props.NeutralPace,
		PointsAllowed:   perGame,
	}
	c.cache.SetSimple(cacheKey, profile, 12*time.Hour)
	return profile
}

// resolvePlayer maps a sportsbook player name to a roster directory entry
// using fuzzy name matching.
func (c *BallDontLieClient) resolvePlayer(ctx context.Context, playerName string) (directoryEntry, bool, error) {
	directory, err := c.playerDirectory(ctx)
	if err != nil {
		return directoryEntry{}, false, err
	}

	if entry, ok := directory[NormalizeName(playerName)]; ok {
		return entry, true, nil
	}

	keys := make([]string, 0, len(directory))
	for k := range directory {
		keys = append(keys, k)
	}
	if match, ok := MatchName(playerName, keys); ok {
		return directory[match], true, nil
	}
	return directoryEntry{}, false, nil
}

// playerDirectory loads the full active-player roster, keyed by normalized
// name. The roster is paginated and cached for six hours.
func (c *BallDontLieClient) playerDirectory(ctx context.Context) (map[string]directoryEntry, error) {
	cacheKey := "bdl:nba:directory"

	var cached map[string]directoryEntry
	if err := c.cache.GetSimple(cacheKey, &cached); err == nil && len(cached) > 0 {
		return cached, nil
	}

	directory := make(map[string]directoryEntry)
	cursor := ""

	for {
		params := url.Values{}
		params.Set("per_page", "100")
		if cursor != "" {
			params.Set("cursor", cursor)
		}

		var resp struct {
			Data []bdlPlayer `json:"data"`
			Meta bdlMeta     `json:"meta"`
		}
		if err := c.makeRequest(ctx, "/players/active", params, &resp); err != nil {
			return nil, err
		}

		for _, p := range resp.Data {
			name := p.FirstName + " " + p.LastName
			directory[NormalizeName(name)] = directoryEntry{
				ID:   p.ID,
				Name: name,
				Team: p.Team.Abbreviation,
			}
		}

		cursor = resp.Meta.NextCursor.String()
		if cursor == "" || cursor == "0" || len(resp.Data) == 0 {
			break
		}
	}

	if len(directory) > 0 {
		c.cache.SetSimple(cacheKey, directory, 6*time.Hour)
		c.logger.Infof("Loaded %d players into roster directory", len(directory))
	}
	return directory, nil
}

func (c *BallDontLieClient) seasonAverage(ctx context.Context, playerID int) (*bdlSeasonAverage, error) {
	season := currentSeason(c.nowFn())
	cacheKey := fmt.Sprintf("bdl:season:%d:%d", season, playerID)

	var cached bdlSeasonAverage
	if err := c.cache.GetSimple(cacheKey, &cached); err == nil {
		return &cached, nil
	}

	params := url.Values{}
	params.Set("season", strconv.Itoa(season))
	params.Set("player_ids[]", strconv.Itoa(playerID))

	var resp struct {
		Data []bdlSeasonAverage `json:"data"`
	}
	if err := c.makeRequest(ctx, "/season_averages", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, nil
	}

	c.cache.SetSimple(cacheKey, resp.Data[0], 12*time.Hour)
	return &resp.Data[0], nil
}

// recentGames returns a player's current-season stat lines sorted newest
// first.
func (c *BallDontLieClient) recentGames(ctx context.Context, playerID int) ([]bdlStatLine, error) {
	season := currentSeason(c.nowFn())
	cacheKey := fmt.Sprintf("bdl:recent:%d:%d", season, playerID)

	var cached []bdlStatLine
	if err := c.cache.GetSimple(cacheKey, &cached); err == nil {
		return cached, nil
	}

	params := url.Values{}
	params.Set("seasons[]", strconv.Itoa(season))
	params.Set("player_ids[]", strconv.Itoa(playerID))
	params.Set("per_page", "100")

	var resp struct {
		Data []bdlStatLine `json:"data"`
	}
	if err := c.makeRequest(ctx, "/stats", params, &resp); err != nil {
		return nil, err
	}

	lines := resp.Data
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].Game.Date > lines[j].Game.Date
	})

	if len(lines) > 0 {
		c.cache.SetSimple(cacheKey, lines, 12*time.Hour)
	}
	return lines, nil
}

// teamID resolves a team abbreviation to the API's team ID. The team list
// is fetched once and cached for a day.
func (c *BallDontLieClient) teamID(ctx context.Context, abbrev string) (int, bool, error) {
	cacheKey := "bdl:nba:teams"

	var teams map[string]int
	if err := c.cache.GetSimple(cacheKey, &teams); err != nil || len(teams) == 0 {
		params := url.Values{}
		params.Set("per_page", "100")

		var resp struct {
			Data []bdlTeam `json:"data"`
		}
		if err := c.makeRequest(ctx, "/teams", params, &resp); err != nil {
			return 0, false, err
		}

		teams = make(map[string]int, len(resp.Data))
		for _, t := range resp.Data {
			teams[t.Abbreviation] = t.ID
		}
		c.cache.SetSimple(cacheKey, teams, 24*time.Hour)
	}

	id, ok := teams[abbrev]
	return id, ok, nil
}

func (c *BallDontLieClient) makeRequest(ctx context.Context, path string, params url.Values, target interface{}) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return err
	}

	reqURL := c.baseURL + path
	if encoded := params.Encode(); encoded != "" {
		reqURL += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(target)
}

func statByKey(pts, ast, reb, fg3m float64, statKey string) float64 {
	switch statKey {
	case "AST":
		return ast
	case "REB":
		return reb
	case "FG3M":
		return fg3m
	default:
		return pts
	}
}

func recentAverage(lines []bdlStatLine, statKey string, n int, fallback float64) float64 {
	if len(lines) == 0 {
		return fallback
	}
	if n > len(lines) {
		n = len(lines)
	}
	var sum float64
	for _, line := range lines[:n] {
		sum += statByKey(line.Pts, line.Ast, line.Reb, line.Fg3m, statKey)
	}
	return sum / float64(n)
}

// parseMinutes converts the API's "MM" or "MM:SS" minutes string to a float.
func parseMinutes(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	parts := strings.SplitN(raw, ":", 2)
	minutes, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0
	}
	if len(parts) == 2 {
		if seconds, err := strconv.ParseFloat(parts[1], 64); err == nil {
			minutes += seconds / 60
		}
	}
	return minutes
}

// currentSeason returns the start year of the NBA season containing now.
// Seasons start in October.
func currentSeason(now time.Time) int {
	now = now.UTC()
	if now.Month() >= time.October {
		return now.Year()
	}
	return now.Year() - 1
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
