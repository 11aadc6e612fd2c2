package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmzlocks/value-props-model/internal/models"
	"github.com/cmzlocks/value-props-model/internal/props"
	"github.com/cmzlocks/value-props-model/pkg/config"
)

func analysis(player string, cat props.Category, line float64, side props.Side, score float64) *models.PropAnalysis {
	return &models.PropAnalysis{
		PlayerName:  player,
		Category:    cat,
		BettingLine: line,
		Side:        side,
		Score:       score,
	}
}

func TestDedupeBestSide(t *testing.T) {
	s := NewPropSelector(config.DefaultModelConfig())

	over := analysis("LeBron James", props.CategoryPoints, 25.5, props.SideOver, 8.2)
	under := analysis("LeBron James", props.CategoryPoints, 25.5, props.SideUnder, 9.1)
	other := analysis("Nikola Jokic", props.CategoryPoints, 26.5, props.SideOver, 7.0)

	out := s.DedupeBestSide([]*models.PropAnalysis{over, under, other})
	require.Len(t, out, 2)

	// The higher-scoring under wins the shared market; first-seen order is
	// preserved.
	assert.Equal(t, props.SideUnder, out[0].Side)
	assert.Equal(t, "Nikola Jokic", out[1].PlayerName)
}

func TestDedupeKeepsDistinctLines(t *testing.T) {
	s := NewPropSelector(config.DefaultModelConfig())

	a := analysis("LeBron James", props.CategoryPoints, 25.5, props.SideOver, 8.0)
	b := analysis("LeBron James", props.CategoryPoints, 26.5, props.SideOver, 7.5)

	out := s.DedupeBestSide([]*models.PropAnalysis{a, b})
	assert.Len(t, out, 2)
}

func TestSortByScore(t *testing.T) {
	list := []*models.PropAnalysis{
		analysis("A", props.CategoryPoints, 20.5, props.SideOver, 7.0),
		analysis("B", props.CategoryPoints, 21.5, props.SideOver, 9.5),
		analysis("C", props.CategoryPoints, 22.5, props.SideOver, 8.1),
	}
	SortByScore(list)
	assert.Equal(t, "B", list[0].PlayerName)
	assert.Equal(t, "C", list[1].PlayerName)
	assert.Equal(t, "A", list[2].PlayerName)
}

func TestSelectTopPlaysPrefersCategoryDiversity(t *testing.T) {
	s := NewPropSelector(config.DefaultModelConfig())

	// Eight points props outscore everything, but one play per category is
	// seated before the leftover slots are filled by raw score.
	var sorted []*models.PropAnalysis
	for i := 0; i < 8; i++ {
		sorted = append(sorted, analysis(fmt.Sprintf("Points %d", i), props.CategoryPoints, 20.5, props.SideOver, 10.0-float64(i)*0.1))
	}
	sorted = append(sorted,
		analysis("Assist Guy", props.CategoryAssists, 8.5, props.SideOver, 8.0),
		analysis("Rebound Guy", props.CategoryRebounds, 10.5, props.SideOver, 7.5),
		analysis("Threes Guy", props.CategoryThrees, 3.5, props.SideOver, 7.0),
	)

	top := s.SelectTopPlays(sorted)
	require.Len(t, top, 6)

	categories := map[props.Category]int{}
	for _, a := range top {
		categories[a.Category]++
	}
	assert.Equal(t, 1, categories[props.CategoryAssists])
	assert.Equal(t, 1, categories[props.CategoryRebounds])
	assert.Equal(t, 1, categories[props.CategoryThrees])
	assert.Equal(t, 3, categories[props.CategoryPoints])

	// Output is sorted best-first
	for i := 1; i < len(top); i++ {
		assert.GreaterOrEqual(t, top[i-1].Score, top[i].Score)
	}
}

func TestSelectTopPlaysSmallInput(t *testing.T) {
	s := NewPropSelector(config.DefaultModelConfig())

	sorted := []*models.PropAnalysis{
		analysis("A", props.CategoryPoints, 20.5, props.SideOver, 9.0),
		analysis("B", props.CategoryAssists, 8.5, props.SideOver, 8.0),
	}
	top := s.SelectTopPlays(sorted)
	assert.Len(t, top, 2)
}

func TestSelectDisplayPropsTopsUpFromAnalyzed(t *testing.T) {
	model := config.DefaultModelConfig()
	s := NewPropSelector(model)

	// Twelve value plays is below the display target, so the pool is
	// topped up with the best non-value analyses.
	var valueProps, analyzed []*models.PropAnalysis
	for i := 0; i < 12; i++ {
		cat := props.Categories()[i%4]
		a := analysis(fmt.Sprintf("Value %d", i), cat, 20.5+float64(i), props.SideOver, 10.0)
		valueProps = append(valueProps, a)
		analyzed = append(analyzed, a)
	}
	for i := 0; i < 40; i++ {
		cat := props.Categories()[i%4]
		analyzed = append(analyzed, analysis(fmt.Sprintf("Filler %d", i), cat, 15.5+float64(i), props.SideOver, 9.0-float64(i)*0.1))
	}

	display := s.SelectDisplayProps(valueProps, analyzed)
	assert.GreaterOrEqual(t, len(display), model.TargetMinDisplay)

	// No duplicate highlights
	seen := map[models.HighlightKey]bool{}
	for _, a := range display {
		assert.False(t, seen[a.Highlight()])
		seen[a.Highlight()] = true
	}

	// Each category is represented
	byCat := map[props.Category]int{}
	for _, a := range display {
		byCat[a.Category]++
	}
	for _, cat := range props.Categories() {
		assert.GreaterOrEqual(t, byCat[cat], model.MinDisplayPerType, "category %s under-represented", cat)
	}
}

func TestSelectDisplayPropsEmpty(t *testing.T) {
	s := NewPropSelector(config.DefaultModelConfig())
	assert.Empty(t, s.SelectDisplayProps(nil, nil))
}
