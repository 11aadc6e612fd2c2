package services

import (
	"sort"

	"github.com/cmzlocks/value-props-model/internal/models"
	"github.com/cmzlocks/value-props-model/internal/props"
	"github.com/cmzlocks/value-props-model/pkg/config"
)

// PropSelector shapes the analyzed props into the dashboard's display sets:
// one best side per market, a diverse top-plays list, and a minimum-size
// display pool balanced across categories.
type PropSelector struct {
	model *config.ModelConfig
}

// NewPropSelector creates a selector with the given display thresholds.
func NewPropSelector(model *config.ModelConfig) *PropSelector {
	return &PropSelector{model: model}
}

// marketKey identifies a market regardless of side.
type marketKey struct {
	player   string
	category props.Category
	line     float64
}

// SortByScore orders analyses by score, highest first.
func SortByScore(list []*models.PropAnalysis) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Score > list[j].Score
	})
}

// DedupeBestSide keeps only the higher-scoring side for each player/category/
// line market.
func (s *PropSelector) DedupeBestSide(list []*models.PropAnalysis) []*models.PropAnalysis {
	best := map[marketKey]*models.PropAnalysis{}
	var order []marketKey

	for _, a := range list {
		key := marketKey{player: a.PlayerName, category: a.Category, line: a.BettingLine}
		current, ok := best[key]
		if !ok {
			best[key] = a
			order = append(order, key)
			continue
		}
		if a.Score > current.Score {
			best[key] = a
		}
	}

	out := make([]*models.PropAnalysis, 0, len(order))
	for _, key := range order {
		out = append(out, best[key])
	}
	return out
}

// SelectTopPlays picks the day's featured plays from a score-sorted list,
// preferring one play per category before filling the remaining slots with
// the highest scores of any type.
func (s *PropSelector) SelectTopPlays(sorted []*models.PropAnalysis) []*models.PropAnalysis {
	count := s.model.TopPlaysCount
	if len(sorted) <= count {
		return sorted
	}

	var selected []*models.PropAnalysis
	picked := map[models.HighlightKey]bool{}
	usedTypes := map[props.Category]bool{}

	// Phase 1: best play of each category
	for _, a := range sorted {
		if len(selected) >= count {
			break
		}
		if usedTypes[a.Category] {
			continue
		}
		selected = append(selected, a)
		picked[a.Highlight()] = true
		usedTypes[a.Category] = true
	}

	// Phase 2: fill remaining slots by score
	for _, a := range sorted {
		if len(selected) >= count {
			break
		}
		if picked[a.Highlight()] {
			continue
		}
		selected = append(selected, a)
		picked[a.Highlight()] = true
	}

	SortByScore(selected)
	if len(selected) > count {
		selected = selected[:count]
	}
	return selected
}

// SelectDisplayProps builds the dashboard pool: at least TargetMinDisplay
// props with at least MinDisplayPerType of each category, taking the
// sharpest (highest-scoring) entries first. Value plays seed the pool; the
// next best analyzed props top it up when value plays alone fall short.
func (s *PropSelector) SelectDisplayProps(valueProps, analyzed []*models.PropAnalysis) []*models.PropAnalysis {
	target := s.model.TargetMinDisplay
	perType := s.model.MinDisplayPerType

	pool := make([]*models.PropAnalysis, len(valueProps))
	copy(pool, valueProps)

	if len(pool) < target && len(analyzed) > 0 {
		inPool := map[models.HighlightKey]bool{}
		for _, a := range pool {
			inPool[a.Highlight()] = true
		}
		remaining := make([]*models.PropAnalysis, 0, len(analyzed))
		for _, a := range analyzed {
			if !inPool[a.Highlight()] {
				remaining = append(remaining, a)
			}
		}
		SortByScore(remaining)
		for _, a := range remaining {
			pool = append(pool, a)
			if len(pool) >= target {
				break
			}
		}
	}
	if len(pool) == 0 {
		return nil
	}

	byType := map[props.Category][]*models.PropAnalysis{}
	for _, a := range pool {
		byType[a.Category] = append(byType[a.Category], a)
	}

	seen := map[models.HighlightKey]bool{}
	var selected []*models.PropAnalysis
	for _, cat := range props.Categories() {
		group := byType[cat]
		SortByScore(group)
		for i, a := range group {
			if i >= perType {
				break
			}
			if seen[a.Highlight()] {
				continue
			}
			seen[a.Highlight()] = true
			selected = append(selected, a)
		}
	}

	// Top up to the target from the whole pool, any category
	if len(selected) < target {
		sorted := make([]*models.PropAnalysis, len(pool))
		copy(sorted, pool)
		SortByScore(sorted)
		for _, a := range sorted {
			if len(selected) >= target {
				break
			}
			if seen[a.Highlight()] {
				continue
			}
			seen[a.Highlight()] = true
			selected = append(selected, a)
		}
	}

	return selected
}
