package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/cmzlocks/value-props-model/internal/models"
	"github.com/cmzlocks/value-props-model/internal/props"
	"github.com/cmzlocks/value-props-model/internal/providers"
	"github.com/cmzlocks/value-props-model/pkg/config"
)

// DashboardWriter renders the run's output for human consumption.
type DashboardWriter interface {
	Write(topPlays, display []*models.PropAnalysis, report *models.PerformanceReport) error
}

// RunSummary captures what a single pipeline run did. A run with zero games
// is a normal outcome, not an error; grading and aggregation still happen.
type RunSummary struct {
	RunID         string    `json:"run_id"`
	StartedAt     time.Time `json:"started_at"`
	Duration      string    `json:"duration"`
	Games         int       `json:"games"`
	OffersFetched int       `json:"offers_fetched"`
	PropsAnalyzed int       `json:"props_analyzed"`
	ValuePlays    int       `json:"value_plays"`
	DisplayProps  int       `json:"display_props"`
	TopPlays      int       `json:"top_plays"`
	PicksTracked  int       `json:"picks_tracked"`
	PicksGraded   int       `json:"picks_graded"`
	Record        string    `json:"record"`
}

// Pipeline runs the full analysis cycle: fetch games and props, score both
// sides of every offer, select value plays and top plays, track and grade
// picks, rebuild performance, and render the dashboard.
type Pipeline struct {
	cfg       *config.Config
	model     *config.ModelConfig
	odds      *providers.OddsAPIClient
	stats     *providers.BallDontLieClient
	analyzer  *PropAnalyzer
	selector  *PropSelector
	tracker   *PickTracker
	store     *DocumentStore
	breaker   *CircuitBreakerService
	dashboard DashboardWriter
	cache     props.CacheProvider
	logger    *logrus.Logger
	cron      *cron.Cron

	mu           sync.RWMutex
	running      bool
	lastRun      *RunSummary
	displayProps []*models.PropAnalysis
	topPlays     []*models.PropAnalysis
}

// NewPipeline wires the pipeline together.
func NewPipeline(
	cfg *config.Config,
	model *config.ModelConfig,
	odds *providers.OddsAPIClient,
	stats *providers.BallDontLieClient,
	analyzer *PropAnalyzer,
	selector *PropSelector,
	tracker *PickTracker,
	store *DocumentStore,
	breaker *CircuitBreakerService,
	dashboard DashboardWriter,
	cache props.CacheProvider,
	logger *logrus.Logger,
) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		model:     model,
		odds:      odds,
		stats:     stats,
		analyzer:  analyzer,
		selector:  selector,
		tracker:   tracker,
		store:     store,
		breaker:   breaker,
		dashboard: dashboard,
		cache:     cache,
		logger:    logger,
	}
}

// Run executes one full cycle. Concurrent runs are rejected; the scheduler
// simply skips a tick while a run is in flight.
func (p *Pipeline) Run(ctx context.Context) (*RunSummary, error) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil, fmt.Errorf("run already in progress")
	}
	p.running = true
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
	}()

	summary := &RunSummary{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
	}
	log := p.logger.WithField("run_id", summary.RunID)
	log.Info("Starting props pipeline run")

	// Phase 1: fetch. A failed or empty fetch does not stop the run; the
	// settlement and aggregation phases below still need to happen.
	games := p.fetchGames(ctx, log)
	summary.Games = len(games)

	offers := p.odds.AllProps(ctx, games)
	summary.OffersFetched = len(offers)

	// Phase 2: score both sides of every offer.
	analyzed := p.analyzeOffers(ctx, offers, log)
	summary.PropsAnalyzed = len(analyzed)

	var valuePlays []*models.PropAnalysis
	for _, a := range analyzed {
		if a.IsValuePlay {
			valuePlays = append(valuePlays, a)
		}
	}
	summary.ValuePlays = len(valuePlays)

	// Phase 3: selection. Picks are tracked from the best side of each
	// market only; the display pool is broader.
	display := p.selector.SelectDisplayProps(valuePlays, analyzed)
	summary.DisplayProps = len(display)

	deduped := p.selector.DedupeBestSide(valuePlays)
	SortByScore(deduped)
	topPlays := p.selector.SelectTopPlays(deduped)
	summary.TopPlays = len(topPlays)

	p.mu.Lock()
	p.displayProps = display
	p.topPlays = topPlays
	p.mu.Unlock()

	// Phase 4: tracking and grading.
	pickStore, err := p.store.LoadPickStore()
	if err != nil {
		log.Errorf("Pick store unreadable, skipping tracking and grading: %v", err)
		pickStore = nil
	}

	report := models.NewPerformanceReport()
	if pickStore != nil {
		highlights := make(map[models.HighlightKey]bool, len(topPlays))
		for _, t := range topPlays {
			highlights[t.Highlight()] = true
		}

		summary.PicksTracked = p.tracker.TrackNewPicks(pickStore, deduped, highlights)
		if err := p.store.SavePickStore(pickStore); err != nil {
			log.Errorf("Failed to save pick store after tracking: %v", err)
		}

		summary.PicksGraded = p.tracker.GradePendingPicks(ctx, pickStore)
		p.tracker.BackfillProfitLoss(pickStore)
		if err := p.store.SavePickStore(pickStore); err != nil {
			log.Errorf("Failed to save pick store after grading: %v", err)
		}

		// Phase 5: aggregation. Always a full rebuild from the pick store.
		report = BuildPerformanceReport(pickStore)
		if err := p.store.SavePerformance(report); err != nil {
			log.Errorf("Failed to save performance report: %v", err)
		}
	}
	summary.Record = fmt.Sprintf("%dW-%dL", report.Wins, report.Losses)

	// Phase 6: outputs.
	if len(display) > 0 {
		if err := p.store.AppendPropsHistory(props.Today(time.Now()), display); err != nil {
			log.Errorf("Failed to append props history: %v", err)
		}
	}
	if p.dashboard != nil {
		if err := p.dashboard.Write(topPlays, display, report); err != nil {
			log.Errorf("Failed to render dashboard: %v", err)
		}
	}

	summary.Duration = time.Since(summary.StartedAt).Round(time.Millisecond).String()

	p.mu.Lock()
	p.lastRun = summary
	p.mu.Unlock()

	log.WithFields(logrus.Fields{
		"games":       summary.Games,
		"analyzed":    summary.PropsAnalyzed,
		"value_plays": summary.ValuePlays,
		"top_plays":   summary.TopPlays,
		"tracked":     summary.PicksTracked,
		"graded":      summary.PicksGraded,
		"record":      summary.Record,
		"duration":    summary.Duration,
	}).Info("Pipeline run complete")

	return summary, nil
}

func (p *Pipeline) fetchGames(ctx context.Context, log *logrus.Entry) []props.Game {
	result, err := p.breaker.Execute("oddsapi", func() (interface{}, error) {
		return p.odds.UpcomingGames(ctx)
	})
	if err != nil {
		log.Warnf("Game fetch failed, continuing with settlement only: %v", err)
		return nil
	}
	games, _ := result.([]props.Game)
	if len(games) == 0 {
		log.Info("No games with betting lines in window")
	}
	return games
}

// analyzeOffers scores both sides of every offer. Player profiles and
// opponent defense lookups are memoized for the duration of the run.
func (p *Pipeline) analyzeOffers(ctx context.Context, offers []props.PropOffer, log *logrus.Entry) []*models.PropAnalysis {
	type profileKey struct {
		player   string
		category props.Category
	}
	profiles := make(map[profileKey]props.PlayerStatProfile)
	teams := make(map[string]string)
	defenses := make(map[string]props.OpponentDefenseProfile)

	var analyzed []*models.PropAnalysis

	for _, offer := range offers {
		key := profileKey{providers.NormalizeName(offer.Player), offer.Category}

		stats, ok := profiles[key]
		if !ok {
			var team string
			stats, team = p.playerStats(ctx, offer.Player, offer.Category, log)
			profiles[key] = stats
			if team != "" {
				teams[key.player] = team
			}
		}

		team := teams[key.player]
		opponent := providers.OpponentAbbreviation(team, offer.HomeTeam, offer.AwayTeam)

		defense, ok := defenses[opponent]
		if !ok {
			defense = p.stats.TeamDefense(ctx, opponent)
			defenses[opponent] = defense
		}

		info := props.PlayerInfo{
			Name:     offer.Player,
			Team:     team,
			Opponent: opponent,
			GameTime: props.FormatGameTime(offer.CommenceTime),
		}
		gameDate := props.GameDate(offer.CommenceTime)

		sides := []struct {
			side props.Side
			odds int
		}{
			{props.SideOver, offer.OverOdds},
			{props.SideUnder, offer.UnderOdds},
		}
		for _, s := range sides {
			analysis, err := p.analyzer.Analyze(info, stats, offer.Category, offer.Line, s.odds, s.side, defense)
			if err != nil {
				log.Debugf("Skipping %s %s %s: %v", offer.Player, offer.Category, s.side, err)
				continue
			}
			analysis.Bookmaker = offer.Bookmaker
			analysis.HomeTeam = offer.HomeTeam
			analysis.AwayTeam = offer.AwayTeam
			analysis.GameDate = gameDate
			analyzed = append(analyzed, analysis)
		}
	}

	return analyzed
}

// playerStats resolves a player's scoring profile, falling back to
// estimated averages when the roster directory cannot place the player.
func (p *Pipeline) playerStats(ctx context.Context, player string, category props.Category, log *logrus.Entry) (props.PlayerStatProfile, string) {
	type lookup struct {
		profile props.PlayerStatProfile
		team    string
		found   bool
	}

	result, err := p.breaker.Execute("balldontlie", func() (interface{}, error) {
		profile, team, found, err := p.stats.PlayerProfile(ctx, player, category)
		if err != nil {
			return nil, err
		}
		return lookup{profile: profile, team: team, found: found}, nil
	})
	if err != nil {
		log.Warnf("Stats lookup failed for %s, using estimates: %v", player, err)
		return providers.EstimatedProfile(category), ""
	}

	l, _ := result.(lookup)
	if !l.found {
		log.Debugf("No stats for %s, using estimates", player)
		return providers.EstimatedProfile(category), l.team
	}
	return l.profile, l.team
}

// LastRun returns the most recent run summary, or nil before the first run.
func (p *Pipeline) LastRun() *RunSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastRun
}

// DisplayProps returns the current run's display pool sorted by score.
func (p *Pipeline) DisplayProps() []*models.PropAnalysis {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.displayProps
}

// TopPlays returns the current run's highlighted plays.
func (p *Pipeline) TopPlays() []*models.PropAnalysis {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.topPlays
}

// StartScheduler begins periodic runs at the configured interval.
func (p *Pipeline) StartScheduler() error {
	if !p.cfg.EnableScheduledRun {
		p.logger.Info("Scheduled runs disabled")
		return nil
	}

	p.cron = cron.New()
	_, err := p.cron.AddFunc("@every "+p.cfg.RunInterval, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		if _, err := p.Run(ctx); err != nil {
			p.logger.Warnf("Scheduled run skipped: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid run interval %q: %w", p.cfg.RunInterval, err)
	}

	// Redis expires keys itself; the in-memory cache needs a daily sweep.
	if janitor, ok := p.cache.(interface{ Cleanup() }); ok {
		if _, err := p.cron.AddFunc("@daily", janitor.Cleanup); err != nil {
			return fmt.Errorf("failed to schedule cache cleanup: %w", err)
		}
	}

	p.cron.Start()
	p.logger.Infof("Pipeline scheduled every %s", p.cfg.RunInterval)
	return nil
}

// StopScheduler stops periodic runs and waits for an in-flight run callback.
func (p *Pipeline) StopScheduler() {
	if p.cron != nil {
		ctx := p.cron.Stop()
		<-ctx.Done()
	}
}
