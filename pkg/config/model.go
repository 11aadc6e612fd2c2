package config

import (
	"github.com/cmzlocks/value-props-model/internal/props"
)

// LadderStep is one rung of a descending threshold ladder: the first step
// whose threshold is met contributes its bonus.
type LadderStep struct {
	Threshold float64
	Bonus     float64
}

// EdgeRequirement is the minimum actionable edge for each side of a market.
type EdgeRequirement struct {
	Over  float64
	Under float64
}

// ForSide returns the requirement matching the given side.
func (r EdgeRequirement) ForSide(side props.Side) float64 {
	if side == props.SideUnder {
		return r.Under
	}
	return r.Over
}

// ModelConfig carries every tunable of the scoring model. Instances are
// immutable once constructed and injected into the analyzer and selection
// services so tests can swap in alternate thresholds.
type ModelConfig struct {
	// Qualification gates
	MinGamesPlayed int
	MinMinutes     float64

	// Minimum-edge requirements by category, with a fallback for anything
	// unconfigured
	MinEdge         map[props.Category]EdgeRequirement
	FallbackMinEdge EdgeRequirement

	// Season-edge bonus ladders by category (descending)
	SeasonEdgeLadders  map[props.Category][]LadderStep
	FallbackEdgeLadder []LadderStep

	// Recent-form bonus ladder (shared across categories, descending)
	RecentFormLadder []LadderStep

	// Per-36-minute efficiency ladders by category (descending)
	Per36Ladders  map[props.Category][]LadderStep
	FallbackPer36 []LadderStep

	// Value-play score thresholds
	MinScoreByCategory map[props.Category]float64
	MinScoreDefault    float64

	// Defensive matchup insight thresholds
	WeakDefenseRating  float64
	ToughDefenseRating float64

	// Display selection
	TopPlaysCount     int
	TargetMinDisplay  int
	MinDisplayPerType int
}

// MinEdgeFor returns the minimum-edge requirement for a category.
func (m *ModelConfig) MinEdgeFor(cat props.Category) EdgeRequirement {
	if req, ok := m.MinEdge[cat]; ok {
		return req
	}
	return m.FallbackMinEdge
}

// SeasonLadderFor returns the season-edge ladder for a category.
func (m *ModelConfig) SeasonLadderFor(cat props.Category) []LadderStep {
	if ladder, ok := m.SeasonEdgeLadders[cat]; ok {
		return ladder
	}
	return m.FallbackEdgeLadder
}

// Per36LadderFor returns the per-36 efficiency ladder for a category.
func (m *ModelConfig) Per36LadderFor(cat props.Category) []LadderStep {
	if ladder, ok := m.Per36Ladders[cat]; ok {
		return ladder
	}
	return m.FallbackPer36
}

// MinScoreFor returns the value-play threshold for a category, falling back
// to the global default when the category is unconfigured.
func (m *ModelConfig) MinScoreFor(cat props.Category) float64 {
	if score, ok := m.MinScoreByCategory[cat]; ok {
		return score
	}
	return m.MinScoreDefault
}

// DefaultModelConfig returns the production scoring thresholds.
func DefaultModelConfig() *ModelConfig {
	return &ModelConfig{
		MinGamesPlayed: 3,
		MinMinutes:     15.0,

		MinEdge: map[props.Category]EdgeRequirement{
			props.CategoryPoints:   {Over: 2.0, Under: 1.5},
			props.CategoryAssists:  {Over: 1.5, Under: 1.0},
			props.CategoryRebounds: {Over: 1.5, Under: 1.0},
			props.CategoryThrees:   {Over: 1.0, Under: 0.8},
		},
		FallbackMinEdge: EdgeRequirement{Over: 1.0, Under: 0.8},

		SeasonEdgeLadders: map[props.Category][]LadderStep{
			props.CategoryPoints: {
				{Threshold: 2.0, Bonus: 3.5},
				{Threshold: 1.5, Bonus: 2.5},
				{Threshold: 1.0, Bonus: 1.5},
				{Threshold: 0.5, Bonus: 0.5},
			},
			props.CategoryAssists: {
				{Threshold: 1.5, Bonus: 3.5},
				{Threshold: 1.0, Bonus: 2.5},
				{Threshold: 0.5, Bonus: 1.5},
				{Threshold: 0.3, Bonus: 0.5},
			},
			props.CategoryRebounds: {
				{Threshold: 1.5, Bonus: 3.5},
				{Threshold: 1.0, Bonus: 2.5},
				{Threshold: 0.5, Bonus: 1.5},
				{Threshold: 0.3, Bonus: 0.5},
			},
			props.CategoryThrees: {
				{Threshold: 1.0, Bonus: 3.5},
				{Threshold: 0.8, Bonus: 2.5},
				{Threshold: 0.5, Bonus: 1.5},
				{Threshold: 0.3, Bonus: 0.5},
			},
		},
		FallbackEdgeLadder: []LadderStep{
			{Threshold: 1.5, Bonus: 3.0},
			{Threshold: 1.0, Bonus: 2.0},
			{Threshold: 0.5, Bonus: 1.0},
			{Threshold: 0.2, Bonus: 0.5},
		},

		RecentFormLadder: []LadderStep{
			{Threshold: 1.2, Bonus: 2.5},
			{Threshold: 1.0, Bonus: 1.5},
			{Threshold: 0.5, Bonus: 0.8},
		},

		Per36Ladders: map[props.Category][]LadderStep{
			props.CategoryPoints: {
				{Threshold: 25.0, Bonus: 1.5},
				{Threshold: 20.0, Bonus: 1.0},
			},
			props.CategoryAssists: {
				{Threshold: 8.0, Bonus: 1.5},
				{Threshold: 6.0, Bonus: 1.0},
			},
			props.CategoryRebounds: {
				{Threshold: 10.0, Bonus: 1.5},
				{Threshold: 7.0, Bonus: 1.0},
			},
			props.CategoryThrees: {
				{Threshold: 3.5, Bonus: 1.5},
				{Threshold: 2.5, Bonus: 1.0},
			},
		},
		FallbackPer36: []LadderStep{
			{Threshold: 20.0, Bonus: 1.0},
		},

		MinScoreByCategory: map[props.Category]float64{
			props.CategoryPoints:   10.0,
			props.CategoryAssists:  10.0,
			props.CategoryRebounds: 10.0,
			props.CategoryThrees:   10.0,
		},
		MinScoreDefault: 10.0,

		WeakDefenseRating:  114.0,
		ToughDefenseRating: 106.0,

		TopPlaysCount:     6,
		TargetMinDisplay:  25,
		MinDisplayPerType: 6,
	}
}
