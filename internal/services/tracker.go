package services

import (
	"context"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/cmzlocks/value-props-model/internal/models"
	"github.com/cmzlocks/value-props-model/internal/props"
)

// StatLookup is the authoritative final-stat source used for grading.
// found=false means the stat is not available yet; grading retries on the
// next run. Errors are treated the same way - retryable, never terminal.
type StatLookup interface {
	FinalStat(ctx context.Context, player, gameDate, statKey string) (value float64, found bool, err error)
}

// PickTracker persists qualifying value plays as picks and grades them
// against final box scores once their games are in the past.
type PickTracker struct {
	stats   StatLookup
	limiter *rate.Limiter
	logger  *logrus.Logger
	nowFn   func() time.Time
}

// NewPickTracker creates a tracker. rateInterval spaces out the final-stat
// lookups during grading to stay friendly with the stats API.
func NewPickTracker(stats StatLookup, rateInterval time.Duration, logger *logrus.Logger) *PickTracker {
	if rateInterval <= 0 {
		rateInterval = 600 * time.Millisecond
	}
	return &PickTracker{
		stats:   stats,
		limiter: rate.NewLimiter(rate.Every(rateInterval), 1),
		logger:  logger,
		nowFn:   time.Now,
	}
}

// TrackNewPicks inserts a pending pick for each candidate whose identity is
// not already tracked and whose game date is today or later. Candidates for
// past dates are dropped - results-unknown history is never backfilled.
// Returns the number of picks inserted; re-running with the same candidates
// inserts nothing.
func (t *PickTracker) TrackNewPicks(store *models.PickStore, candidates []*models.PropAnalysis, highlights map[models.HighlightKey]bool) int {
	existing := make(map[string]bool, len(store.Picks))
	for _, p := range store.Picks {
		existing[p.ID] = true
	}

	today := props.Today(t.nowFn())
	added := 0

	for _, c := range candidates {
		gameDate := c.GameDate
		if gameDate == "" {
			gameDate = today
		}
		id := models.PickID(c.PlayerName, c.Category, c.BettingLine, c.Side, gameDate)
		if existing[id] {
			continue
		}
		if gameDate < today {
			continue
		}
		existing[id] = true

		odds := c.Odds
		if odds == 0 {
			odds = -110
		}

		store.Picks = append(store.Picks, &models.Pick{
			ID:          id,
			PlayerName:  c.PlayerName,
			Category:    c.Category,
			IsTopPlay:   highlights[c.Highlight()],
			Line:        c.BettingLine,
			Side:        c.Side,
			Odds:        odds,
			OpeningOdds: odds,
			GameDate:    gameDate,
			StartTime:   c.GameTime,
			TrackedAt:   t.nowFn(),
			Status:      models.PickPending,
		})
		added++
	}

	if added > 0 {
		t.logger.WithFields(logrus.Fields{
			"added": added,
			"date":  today,
		}).Info("Tracked new picks")
	}
	return added
}

// GradePendingPicks resolves every pending pick whose game date is strictly
// before today. Picks whose final stat is not yet available stay pending and
// are retried on the next run. Graded picks never change again.
func (t *PickTracker) GradePendingPicks(ctx context.Context, store *models.PickStore) int {
	today := props.Today(t.nowFn())
	graded := 0

	for _, pick := range store.PendingPicks() {
		if pick.GameDate == "" || pick.GameDate >= today {
			continue
		}

		if err := t.limiter.Wait(ctx); err != nil {
			t.logger.Warnf("Grading interrupted: %v", err)
			break
		}

		actual, found, err := t.stats.FinalStat(ctx, pick.PlayerName, pick.GameDate, pick.Category.StatKey())
		if err != nil {
			t.logger.WithFields(logrus.Fields{
				"player":    pick.PlayerName,
				"game_date": pick.GameDate,
			}).Warnf("Final stat lookup failed, will retry next run: %v", err)
			continue
		}
		if !found {
			continue
		}

		t.gradePick(pick, actual)
		graded++

		t.logger.WithFields(logrus.Fields{
			"player":   pick.PlayerName,
			"category": pick.Category,
			"result":   pick.Result,
			"actual":   actual,
			"line":     pick.Line,
		}).Info("Graded pick")
	}

	if graded > 0 {
		t.logger.Infof("Graded %d pending picks", graded)
	}
	return graded
}

// gradePick applies the terminal state for an actual stat value.
func (t *PickTracker) gradePick(pick *models.Pick, actual float64) {
	var win *bool // nil = push
	if actual != pick.Line {
		over := actual > pick.Line
		result := over
		if pick.Side == props.SideUnder {
			result = !over
		}
		win = &result
	}

	now := t.nowFn()
	pick.ActualStat = &actual
	pick.UpdatedAt = &now

	if win == nil {
		pick.Status = models.PickPush
		pick.Result = "PUSH"
		pl := 0
		pick.ProfitLoss = &pl
		return
	}

	pl := ProfitLossCents(*win, pickOdds(pick))
	pick.ProfitLoss = &pl
	if *win {
		pick.Status = models.PickWin
		pick.Result = "WIN"
	} else {
		pick.Status = models.PickLoss
		pick.Result = "LOSS"
	}
}

// BackfillProfitLoss repairs any settled pick missing its profit/loss value.
// Idempotent; returns the number of picks repaired.
func (t *PickTracker) BackfillProfitLoss(store *models.PickStore) int {
	updated := 0
	for _, pick := range store.Picks {
		if !pick.IsSettled() || pick.ProfitLoss != nil {
			continue
		}
		pl := ProfitLossCents(pick.Status == models.PickWin, pickOdds(pick))
		pick.ProfitLoss = &pl
		updated++
	}
	if updated > 0 {
		t.logger.Infof("Backfilled profit/loss for %d picks", updated)
	}
	return updated
}

// ProfitLossCents returns the profit of a settled one-unit bet in cents.
// A win at +150 pays 150 cents, a win at -110 pays 91 cents, any loss
// costs 100 cents.
func ProfitLossCents(win bool, americanOdds int) int {
	if !win {
		return -100
	}
	if americanOdds > 0 {
		return americanOdds
	}
	return int(math.Round(100.0 / math.Abs(float64(americanOdds)) * 100))
}

// pickOdds returns the odds to grade against, preferring the opening line.
func pickOdds(p *models.Pick) int {
	if p.OpeningOdds != 0 {
		return p.OpeningOdds
	}
	if p.Odds != 0 {
		return p.Odds
	}
	return -110
}
