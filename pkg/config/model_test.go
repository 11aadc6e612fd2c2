package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmzlocks/value-props-model/internal/props"
)

func TestDefaultModelConfig(t *testing.T) {
	m := DefaultModelConfig()

	assert.Equal(t, 3, m.MinGamesPlayed)
	assert.Equal(t, 15.0, m.MinMinutes)
	assert.Equal(t, 6, m.TopPlaysCount)
	assert.Equal(t, 25, m.TargetMinDisplay)
	assert.Equal(t, 6, m.MinDisplayPerType)

	// Every category has an edge requirement, a season ladder and a
	// per-36 ladder
	for _, cat := range props.Categories() {
		req := m.MinEdgeFor(cat)
		assert.Positive(t, req.Over)
		assert.Positive(t, req.Under)
		assert.NotEmpty(t, m.SeasonLadderFor(cat))
		assert.NotEmpty(t, m.Per36LadderFor(cat))
		assert.Equal(t, 10.0, m.MinScoreFor(cat))
	}
}

func TestMinEdgeForSide(t *testing.T) {
	m := DefaultModelConfig()

	points := m.MinEdgeFor(props.CategoryPoints)
	assert.Equal(t, 2.0, points.ForSide(props.SideOver))
	assert.Equal(t, 1.5, points.ForSide(props.SideUnder))

	// Unders always require less edge than overs
	for _, cat := range props.Categories() {
		req := m.MinEdgeFor(cat)
		assert.Less(t, req.Under, req.Over)
	}
}

func TestLaddersDescend(t *testing.T) {
	m := DefaultModelConfig()

	ladders := [][]LadderStep{m.RecentFormLadder, m.FallbackEdgeLadder, m.FallbackPer36}
	for _, cat := range props.Categories() {
		ladders = append(ladders, m.SeasonLadderFor(cat), m.Per36LadderFor(cat))
	}

	for _, ladder := range ladders {
		require.NotEmpty(t, ladder)
		for i := 1; i < len(ladder); i++ {
			assert.Greater(t, ladder[i-1].Threshold, ladder[i].Threshold)
			assert.Greater(t, ladder[i-1].Bonus, ladder[i].Bonus)
		}
	}
}

func TestFallbacksForUnknownCategory(t *testing.T) {
	m := DefaultModelConfig()
	unknown := props.Category("steals")

	assert.Equal(t, m.FallbackMinEdge, m.MinEdgeFor(unknown))
	assert.Equal(t, m.FallbackEdgeLadder, m.SeasonLadderFor(unknown))
	assert.Equal(t, m.FallbackPer36, m.Per36LadderFor(unknown))
	assert.Equal(t, m.MinScoreDefault, m.MinScoreFor(unknown))
}
