package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cmzlocks/value-props-model/internal/props"
)

// PickStatus is the lifecycle state of a tracked pick. A pick starts
// pending and transitions to exactly one terminal state; terminal states
// are never revisited.
type PickStatus string

const (
	PickPending PickStatus = "pending"
	PickWin     PickStatus = "win"
	PickLoss    PickStatus = "loss"
	PickPush    PickStatus = "push"
)

// PickStoreSchemaVersion is bumped whenever the persisted pick shape changes.
const PickStoreSchemaVersion = 1

// Pick is a persisted betting proposition under tracking.
type Pick struct {
	ID         string         `json:"pick_id"`
	PlayerName string         `json:"player_name"`
	Category   props.Category `json:"prop_type_key"`
	IsTopPlay  bool           `json:"is_top6"`
	Line       float64        `json:"line"`
	Side       props.Side     `json:"side"`
	Odds       int            `json:"odds"`

	// OpeningOdds are frozen at tracking time and used for grading.
	OpeningOdds int    `json:"opening_odds"`
	GameDate    string `json:"game_date"`
	StartTime   string `json:"start_time"`

	TrackedAt time.Time  `json:"tracked_at"`
	Status    PickStatus `json:"status"`
	Result    string     `json:"result,omitempty"`

	// Set when the pick reaches a terminal state.
	ActualStat *float64   `json:"actual_stat,omitempty"`
	ProfitLoss *int       `json:"profit_loss,omitempty"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// IsTerminal reports whether the pick has been graded.
func (p *Pick) IsTerminal() bool {
	return p.Status == PickWin || p.Status == PickLoss || p.Status == PickPush
}

// IsSettled reports whether the pick counts toward the ROI denominator
// (pushes are excluded).
func (p *Pick) IsSettled() bool {
	return p.Status == PickWin || p.Status == PickLoss
}

// PickID builds the stable identity key for a pick. The same player, category,
// line, side and game date always produce the same key.
func PickID(player string, cat props.Category, line float64, side props.Side, gameDate string) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s",
		strings.TrimSpace(player),
		cat,
		strconv.FormatFloat(line, 'f', -1, 64),
		side,
		gameDate,
	)
}

// PickStore is the persisted tracking document.
type PickStore struct {
	SchemaVersion int     `json:"schema_version"`
	Picks         []*Pick `json:"picks"`
}

// NewPickStore returns an empty store at the current schema version.
func NewPickStore() *PickStore {
	return &PickStore{SchemaVersion: PickStoreSchemaVersion, Picks: []*Pick{}}
}

// HasPick reports whether a pick with the given identity already exists.
func (s *PickStore) HasPick(id string) bool {
	for _, p := range s.Picks {
		if p.ID == id {
			return true
		}
	}
	return false
}

// PendingPicks returns the picks still awaiting grading.
func (s *PickStore) PendingPicks() []*Pick {
	var pending []*Pick
	for _, p := range s.Picks {
		if p.Status == PickPending {
			pending = append(pending, p)
		}
	}
	return pending
}

// TerminalPicks returns the picks that have been graded.
func (s *PickStore) TerminalPicks() []*Pick {
	var done []*Pick
	for _, p := range s.Picks {
		if p.IsTerminal() {
			done = append(done, p)
		}
	}
	return done
}
