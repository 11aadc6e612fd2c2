package models

// PerformanceSchemaVersion is bumped whenever the rollup shape changes.
const PerformanceSchemaVersion = 1

// TopPlaysBucket is the synthetic rollup bucket for picks that were flagged
// as top plays at tracking time.
const TopPlaysBucket = "top6"

// DailyRollup is the graded record for one game date (or one bucket within
// a date). Units are whole betting units; ROI is units over settled bets,
// as a percentage.
type DailyRollup struct {
	Wins   int     `json:"wins"`
	Losses int     `json:"losses"`
	Pushes int     `json:"pushes"`
	Units  float64 `json:"units"`
	ROI    float64 `json:"roi"`
}

// Settled returns the ROI denominator for this bucket.
func (r *DailyRollup) Settled() int {
	return r.Wins + r.Losses
}

// TypeRollups partitions a date's rollup by category, plus the top-plays
// bucket.
type TypeRollups map[string]*DailyRollup

// PerformanceReport is the persisted rollup document. It is a pure function
// of the pick history and is rebuilt in full every run.
type PerformanceReport struct {
	SchemaVersion int                     `json:"schema_version"`
	Wins          int                     `json:"wins"`
	Losses        int                     `json:"losses"`
	Units         float64                 `json:"units"`
	ROI           float64                 `json:"roi"`
	TotalBets     int                     `json:"total_bets"`
	Daily         map[string]*DailyRollup `json:"daily"`
	DailyByType   map[string]TypeRollups  `json:"daily_by_type"`
}

// NewPerformanceReport returns an empty report at the current schema version.
func NewPerformanceReport() *PerformanceReport {
	return &PerformanceReport{
		SchemaVersion: PerformanceSchemaVersion,
		Daily:         map[string]*DailyRollup{},
		DailyByType:   map[string]TypeRollups{},
	}
}

// PropsHistoryDay is one run's analyzed props, archived by game date.
type PropsHistoryDay struct {
	Date       string          `json:"date"`
	TotalProps int             `json:"total_props"`
	ValuePlays int             `json:"value_plays"`
	Props      []*PropAnalysis `json:"props"`
}

// PropsHistory is the persisted props archive document.
type PropsHistory map[string]*PropsHistoryDay
