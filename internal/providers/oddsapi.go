package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cmzlocks/value-props-model/internal/props"
	"github.com/cmzlocks/value-props-model/pkg/config"
)

// OddsAPIClient fetches NBA games and player prop markets from The Odds API.
type OddsAPIClient struct {
	httpClient *http.Client
	cache      props.CacheProvider
	logger     *logrus.Logger
	apiKey     string
	baseURL    string
	sportKey   string
	markets    []string
	bookmakers map[string]bool
	daysAhead  int
}

// NewOddsAPIClient creates a new Odds API client.
func NewOddsAPIClient(cfg *config.Config, cache props.CacheProvider, logger *logrus.Logger) *OddsAPIClient {
	allowed := make(map[string]bool, len(cfg.Bookmakers))
	for _, b := range cfg.Bookmakers {
		allowed[strings.ToLower(strings.TrimSpace(b))] = true
	}
	return &OddsAPIClient{
		httpClient: &http.Client{
			Timeout: cfg.ExternalAPITimeout,
		},
		cache:      cache,
		logger:     logger,
		apiKey:     cfg.OddsAPIKey,
		baseURL:    strings.TrimRight(cfg.OddsAPIBaseURL, "/"),
		sportKey:   cfg.SportKey,
		markets:    cfg.PropMarkets,
		bookmakers: allowed,
		daysAhead:  cfg.DaysAhead,
	}
}

// Odds API response structures
type oddsEvent struct {
	ID           string    `json:"id"`
	SportKey     string    `json:"sport_key"`
	CommenceTime time.Time `json:"commence_time"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
}

type oddsEventOdds struct {
	ID           string          `json:"id"`
	CommenceTime time.Time       `json:"commence_time"`
	HomeTeam     string          `json:"home_team"`
	AwayTeam     string          `json:"away_team"`
	Bookmakers   []oddsBookmaker `json:"bookmakers"`
}

type oddsBookmaker struct {
	Key     string       `json:"key"`
	Title   string       `json:"title"`
	Markets []oddsMarket `json:"markets"`
}

type oddsMarket struct {
	Key      string        `json:"key"`
	Outcomes []oddsOutcome `json:"outcomes"`
}

type oddsOutcome struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Point       float64 `json:"point"`
}

// UpcomingGames fetches NBA games with betting lines posted, from yesterday
// (games in progress or just finished) through the configured days-ahead
// window. Dates are compared in UTC, matching the API's commence times.
func (c *OddsAPIClient) UpcomingGames(ctx context.Context) ([]props.Game, error) {
	cacheKey := fmt.Sprintf("oddsapi:%s:events", c.sportKey)

	var cached []props.Game
	if err := c.cache.GetSimple(cacheKey, &cached); err == nil {
		return cached, nil
	}

	reqURL := fmt.Sprintf("%s/sports/%s/events?apiKey=%s&dateFormat=iso",
		c.baseURL, c.sportKey, url.QueryEscape(c.apiKey))

	var events []oddsEvent
	if err := c.makeRequest(ctx, reqURL, &events); err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	earliest := today.AddDate(0, 0, -1)
	cutoff := today.AddDate(0, 0, c.daysAhead)

	var games []props.Game
	for _, ev := range events {
		day := ev.CommenceTime.UTC().Truncate(24 * time.Hour)
		if day.Before(earliest) || day.After(cutoff) {
			continue
		}
		games = append(games, props.Game{
			ID:           ev.ID,
			HomeTeam:     ev.HomeTeam,
			AwayTeam:     ev.AwayTeam,
			CommenceTime: ev.CommenceTime,
		})
	}

	c.logger.Infof("Odds API returned %d events, %d within window", len(events), len(games))

	if len(games) > 0 {
		c.cache.SetSimple(cacheKey, games, 10*time.Minute)
	}
	return games, nil
}

// EventProps fetches player prop markets for one event and flattens them
// into offers carrying both sides of each line. A side a bookmaker did not
// quote is left at zero odds for the caller to default.
func (c *OddsAPIClient) EventProps(ctx context.Context, game props.Game) ([]props.PropOffer, error) {
	cacheKey := fmt.Sprintf("oddsapi:%s:props:%s", c.sportKey, game.ID)

	var cached []props.PropOffer
	if err := c.cache.GetSimple(cacheKey, &cached); err == nil {
		return cached, nil
	}

	reqURL := fmt.Sprintf("%s/sports/%s/events/%s/odds?apiKey=%s&regions=us&markets=%s&oddsFormat=american&dateFormat=iso",
		c.baseURL, c.sportKey, game.ID, url.QueryEscape(c.apiKey), strings.Join(c.markets, ","))

	var event oddsEventOdds
	if err := c.makeRequest(ctx, reqURL, &event); err != nil {
		return nil, fmt.Errorf("failed to fetch props for event %s: %w", game.ID, err)
	}

	offers := c.extractOffers(event)

	if len(offers) > 0 {
		c.cache.SetSimple(cacheKey, offers, 10*time.Minute)
	}
	return offers, nil
}

// AllProps fetches props for every game, skipping games whose fetch fails.
func (c *OddsAPIClient) AllProps(ctx context.Context, games []props.Game) []props.PropOffer {
	var all []props.PropOffer
	for i, game := range games {
		offers, err := c.EventProps(ctx, game)
		if err != nil {
			c.logger.Warnf("Skipping game %s @ %s: %v", game.AwayTeam, game.HomeTeam, err)
			continue
		}
		c.logger.Debugf("Game %d/%d: %s @ %s yielded %d offers",
			i+1, len(games), game.AwayTeam, game.HomeTeam, len(offers))
		all = append(all, offers...)
	}
	return all
}

func (c *OddsAPIClient) extractOffers(event oddsEventOdds) []props.PropOffer {
	var offers []props.PropOffer

	for _, bookmaker := range event.Bookmakers {
		if len(c.bookmakers) > 0 && !c.bookmakers[strings.ToLower(bookmaker.Key)] {
			continue
		}

		for _, market := range bookmaker.Markets {
			category, ok := marketCategory(market.Key)
			if !ok {
				continue
			}

			// Group outcomes per player. Each player has an Over and an
			// Under outcome at the same line.
			type quote struct {
				line     float64
				over     int
				under    int
				hasOver  bool
				hasUnder bool
			}
			byPlayer := make(map[string]*quote)
			var order []string

			for _, outcome := range market.Outcomes {
				player := outcome.Description
				if player == "" {
					continue
				}
				q, seen := byPlayer[player]
				if !seen {
					q = &quote{}
					byPlayer[player] = q
					order = append(order, player)
				}
				odds := int(math.Round(outcome.Price))
				switch props.ParseSide(outcome.Name) {
				case props.SideUnder:
					q.under = odds
					q.hasUnder = true
					if !q.hasOver {
						q.line = outcome.Point
					}
				default:
					q.over = odds
					q.hasOver = true
					q.line = outcome.Point
				}
			}

			for _, player := range order {
				q := byPlayer[player]
				offers = append(offers, props.PropOffer{
					Player:       player,
					Market:       market.Key,
					Category:     category,
					Line:         q.line,
					OverOdds:     q.over,
					UnderOdds:    q.under,
					Bookmaker:    bookmaker.Title,
					HomeTeam:     event.HomeTeam,
					AwayTeam:     event.AwayTeam,
					CommenceTime: event.CommenceTime,
				})
			}
		}
	}

	return offers
}

func marketCategory(marketKey string) (props.Category, bool) {
	switch marketKey {
	case "player_points":
		return props.CategoryPoints, true
	case "player_assists":
		return props.CategoryAssists, true
	case "player_rebounds":
		return props.CategoryRebounds, true
	case "player_threes":
		return props.CategoryThrees, true
	}
	return "", false
}

// makeRequest performs HTTP request with exponential backoff
func (c *OddsAPIClient) makeRequest(ctx context.Context, reqURL string, target interface{}) error {
	var resp *http.Response
	var err error

	for attempt := 0; attempt < 3; attempt++ {
		var req *http.Request
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return err
		}

		resp, err = c.httpClient.Do(req)
		if err == nil && resp.StatusCode == http.StatusOK {
			break
		}

		if resp != nil {
			resp.Body.Close()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		waitTime := time.Duration(math.Pow(2, float64(attempt))) * time.Second
		c.logger.Warnf("Odds API request failed (attempt %d), waiting %v: %v", attempt+1, waitTime, err)
		time.Sleep(waitTime)
	}

	if err != nil {
		return fmt.Errorf("request failed after retries: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(target)
}
