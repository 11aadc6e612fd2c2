package services

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/cmzlocks/value-props-model/internal/models"
	"github.com/cmzlocks/value-props-model/internal/props"
	"github.com/cmzlocks/value-props-model/pkg/config"
)

// PropAnalyzer scores player props with the multi-factor value model:
// season/recent edge ladders, per-36 efficiency, consistency, opponent
// defense and shooting efficiency.
type PropAnalyzer struct {
	model  *config.ModelConfig
	logger *logrus.Logger
}

// NewPropAnalyzer creates a new analyzer with the given model thresholds.
func NewPropAnalyzer(model *config.ModelConfig, logger *logrus.Logger) *PropAnalyzer {
	return &PropAnalyzer{
		model:  model,
		logger: logger,
	}
}

// Score calculates the 0-10 composite score for a prop. It returns 0 when the
// player fails the minimum-sample gates or neither the season nor the recent
// edge clears 30% of the category's required minimum.
func (a *PropAnalyzer) Score(stats props.PlayerStatProfile, cat props.Category, line float64, side props.Side, defense props.OpponentDefenseProfile) float64 {
	// Minimum qualifications
	if stats.GamesPlayed < a.model.MinGamesPlayed || stats.MinutesPerGame < a.model.MinMinutes {
		return 0.0
	}

	edgeSeason, edgeRecent := sideEdges(stats, line, side)

	// Minimum edge requirement
	minEdge := a.model.MinEdgeFor(cat).ForSide(side)
	if edgeSeason < minEdge*0.3 && edgeRecent < minEdge*0.3 {
		return 0.0
	}

	score := 4.0

	// Factor 1: edge vs season average (up to +3.5)
	score += ladderBonus(a.model.SeasonLadderFor(cat), edgeSeason)

	// Factor 2: recent form (up to +2.5)
	score += ladderBonus(a.model.RecentFormLadder, edgeRecent)

	// Factor 3: per-36 minute efficiency (up to +1.5)
	if stats.MinutesPerGame > 0 {
		per36 := stats.SeasonAvg / stats.MinutesPerGame * 36.0
		score += ladderBonus(a.model.Per36LadderFor(cat), per36)
	}

	// Factor 4: consistency (up to +0.8) - how close L10 tracks the season avg
	if stats.SeasonAvg > 0 {
		consistency := 1.0 - math.Min(math.Abs(stats.Last10Avg-stats.SeasonAvg)/stats.SeasonAvg, 1.0)
		score += consistency * 0.8
	}

	// Factor 5: opponent defense (-0.5 to +1.0)
	score += defenseAdjustment(defense.Factor(), side)

	// Factor 6: shooting efficiency (points and threes only)
	if cat == props.CategoryPoints || cat == props.CategoryThrees {
		if stats.FGPct >= 0.48 {
			score += 0.5
		} else if stats.FGPct >= 0.45 {
			score += 0.3
		}
		if cat == props.CategoryThrees && stats.FG3Pct >= 0.37 {
			score += 0.3
		}
	}

	return round1(math.Max(0.0, math.Min(score, 10.0)))
}

// ExpectedValue converts American odds to an implied probability and payout
// ratio, models a true win probability from score and edge, and returns the
// expected value percentage plus the win probability as a whole percent.
func (a *PropAnalyzer) ExpectedValue(score, edge float64, odds int) (float64, int) {
	var payoutRatio float64
	if odds < 0 {
		payoutRatio = 100.0 / math.Abs(float64(odds))
	} else {
		payoutRatio = float64(odds) / 100.0
	}

	// True probability: base 50%, up to +15% from high scores, up to +15%
	// from edge size, clamped to 40-70%
	scoreBoost := math.Max(0, (score-7.0)/3.0) * 0.15
	edgeBoost := math.Min(math.Abs(edge)/2.0, 1.0) * 0.15
	trueProb := 0.50 + scoreBoost + edgeBoost
	trueProb = math.Max(0.40, math.Min(trueProb, 0.70))

	ev := (trueProb*payoutRatio - (1 - trueProb)) * 100

	return round1(ev), int(math.Round(trueProb * 100))
}

// Predict returns the model's point estimate for the player: a 40/60 blend of
// season and last-10 averages, nudged 5% toward the per-36 rate and adjusted
// for the opponent (capped at +/-10%).
func (a *PropAnalyzer) Predict(stats props.PlayerStatProfile, defense props.OpponentDefenseProfile) float64 {
	prediction := stats.SeasonAvg*0.40 + stats.Last10Avg*0.60

	if stats.MinutesPerGame > 0 {
		per36 := stats.SeasonAvg / stats.MinutesPerGame * 36.0
		prediction = prediction*0.95 + per36*0.05
	}

	multiplier := math.Max(0.90, math.Min(defense.Factor(), 1.10))
	return round1(prediction * multiplier)
}

// Analyze runs the complete analysis of a single prop side.
func (a *PropAnalyzer) Analyze(player props.PlayerInfo, stats props.PlayerStatProfile, cat props.Category, line float64, odds int, side props.Side, defense props.OpponentDefenseProfile) (*models.PropAnalysis, error) {
	if line <= 0 || math.IsNaN(line) {
		return nil, fmt.Errorf("invalid betting line %.1f for %s", line, player.Name)
	}
	if odds == 0 {
		odds = -110
	}

	prediction := a.Predict(stats, defense)
	score := a.Score(stats, cat, line, side, defense)

	var edge float64
	if side == props.SideUnder {
		edge = line - prediction
	} else {
		edge = prediction - line
	}
	edge = round1(edge)

	ev, winProb := a.ExpectedValue(score, edge, odds)

	return &models.PropAnalysis{
		PlayerName: player.Name,
		Team:       player.Team,
		Opponent:   player.Opponent,
		GameTime:   player.GameTime,

		Category:    cat,
		BettingLine: line,
		Odds:        odds,
		Side:        side,

		Prediction:     prediction,
		Edge:           edge,
		Score:          score,
		ExpectedValue:  ev,
		WinProbability: winProb,

		SeasonAvg:   stats.SeasonAvg,
		Last10Avg:   stats.Last10Avg,
		Last5Avg:    stats.Last5Avg,
		GamesPlayed: stats.GamesPlayed,

		IsValuePlay: score >= a.model.MinScoreFor(cat),
		Insights:    a.generateInsights(stats, edge, prediction, side, defense),
	}, nil
}

// generateInsights builds the contextual tags shown on a prop card.
func (a *PropAnalyzer) generateInsights(stats props.PlayerStatProfile, edge, prediction float64, side props.Side, defense props.OpponentDefenseProfile) []string {
	var insights []string

	if side == props.SideOver {
		if stats.Last10Avg > stats.SeasonAvg*1.10 {
			insights = append(insights, "Hot Streak")
		} else if stats.Last10Avg < stats.SeasonAvg*0.90 {
			insights = append(insights, "Cold Streak")
		}
	} else if stats.Last10Avg < stats.SeasonAvg*0.90 {
		insights = append(insights, "Trending Down")
	}

	if math.Abs(edge) >= 1.5 {
		insights = append(insights, fmt.Sprintf("Edge: %+.1f", edge))
	}

	insights = append(insights, fmt.Sprintf("Model: %.1f", prediction))

	if defense.DefensiveRating >= a.model.WeakDefenseRating {
		insights = append(insights, "Weak DEF Matchup")
	} else if defense.DefensiveRating <= a.model.ToughDefenseRating {
		insights = append(insights, "Tough DEF Matchup")
	}

	return insights
}

// sideEdges returns the season and recent edges with the sign convention for
// the given side.
func sideEdges(stats props.PlayerStatProfile, line float64, side props.Side) (float64, float64) {
	if side == props.SideUnder {
		return line - stats.SeasonAvg, line - stats.Last10Avg
	}
	return stats.SeasonAvg - line, stats.Last10Avg - line
}

// ladderBonus returns the bonus of the first (largest) threshold met.
func ladderBonus(ladder []config.LadderStep, value float64) float64 {
	for _, step := range ladder {
		if value >= step.Threshold {
			return step.Bonus
		}
	}
	return 0
}

// defenseAdjustment maps the opponent factor to a score adjustment. Weak
// defenses reward overs, strong defenses reward unders.
func defenseAdjustment(factor float64, side props.Side) float64 {
	if side == props.SideOver {
		switch {
		case factor > 1.05:
			return 1.0
		case factor > 1.02:
			return 0.5
		case factor < 0.95:
			return -0.5
		}
		return 0
	}
	switch {
	case factor < 0.95:
		return 1.0
	case factor < 0.98:
		return 0.5
	case factor > 1.05:
		return -0.5
	}
	return 0
}

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
