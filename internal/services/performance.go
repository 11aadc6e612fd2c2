package services

import (
	"math"

	"github.com/cmzlocks/value-props-model/internal/models"
	"github.com/cmzlocks/value-props-model/internal/props"
)

// Aggregate rolls the graded pick history up into per-day and
// per-day-per-category summaries. It is a pure function of the store and is
// recomputed in full every run so the rollups can never drift from the picks.
func Aggregate(store *models.PickStore) (map[string]*models.DailyRollup, map[string]models.TypeRollups) {
	daily := map[string]*models.DailyRollup{}
	dailyByType := map[string]models.TypeRollups{}

	for _, pick := range store.TerminalPicks() {
		if pick.GameDate == "" {
			continue
		}

		units := 0.0
		if pick.ProfitLoss != nil {
			units = float64(*pick.ProfitLoss) / 100.0
		}

		day, ok := daily[pick.GameDate]
		if !ok {
			day = &models.DailyRollup{}
			daily[pick.GameDate] = day
		}
		applyPick(day, pick.Status, units)

		byType, ok := dailyByType[pick.GameDate]
		if !ok {
			byType = newTypeRollups()
			dailyByType[pick.GameDate] = byType
		}
		bucket, ok := byType[string(pick.Category)]
		if !ok {
			bucket = &models.DailyRollup{}
			byType[string(pick.Category)] = bucket
		}
		applyPick(bucket, pick.Status, units)

		// The top-plays flag is frozen at tracking time; later selection
		// changes never rewrite history
		if pick.IsTopPlay {
			applyPick(byType[models.TopPlaysBucket], pick.Status, units)
		}
	}

	return daily, dailyByType
}

// BuildPerformanceReport assembles the full persisted rollup document from
// the pick history.
func BuildPerformanceReport(store *models.PickStore) *models.PerformanceReport {
	report := models.NewPerformanceReport()
	report.Daily, report.DailyByType = Aggregate(store)

	totalUnits := 0.0
	for _, pick := range store.Picks {
		if !pick.IsSettled() {
			continue
		}
		if pick.Status == models.PickWin {
			report.Wins++
		} else {
			report.Losses++
		}
		if pick.ProfitLoss != nil {
			totalUnits += float64(*pick.ProfitLoss) / 100.0
		}
	}

	report.TotalBets = report.Wins + report.Losses
	report.Units = round2(totalUnits)
	if report.TotalBets > 0 {
		report.ROI = round2(totalUnits / float64(report.TotalBets) * 100)
	}
	return report
}

// applyPick folds one graded pick into a rollup bucket and refreshes the
// bucket's ROI.
func applyPick(r *models.DailyRollup, status models.PickStatus, units float64) {
	switch status {
	case models.PickWin:
		r.Wins++
	case models.PickLoss:
		r.Losses++
	case models.PickPush:
		r.Pushes++
	}
	r.Units += units
	if settled := r.Settled(); settled > 0 {
		r.ROI = r.Units / float64(settled) * 100
	} else {
		r.ROI = 0
	}
}

// newTypeRollups pre-seeds every category bucket plus the top-plays bucket so
// the dashboard always has a complete row per date.
func newTypeRollups() models.TypeRollups {
	rollups := models.TypeRollups{
		models.TopPlaysBucket: &models.DailyRollup{},
	}
	for _, cat := range props.Categories() {
		rollups[string(cat)] = &models.DailyRollup{}
	}
	return rollups
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
