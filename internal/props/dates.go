package props

import "time"

// GameDateLayout is the YYYY-MM-DD format used for pick identity and grading.
const GameDateLayout = "2006-01-02"

var eastern = loadEastern()

func loadEastern() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		// No tzdata available; fall back to a fixed ET offset
		return time.FixedZone("ET", -5*60*60)
	}
	return loc
}

// GameDate converts a game's UTC start time to the US Eastern calendar date
// used for tracking and grading.
func GameDate(t time.Time) string {
	return t.In(eastern).Format(GameDateLayout)
}

// Today returns the current US Eastern calendar date.
func Today(now time.Time) string {
	return GameDate(now)
}

// FormatGameTime renders a game's start time for display, in Eastern time.
func FormatGameTime(t time.Time) string {
	if t.IsZero() {
		return "TBD"
	}
	return t.In(eastern).Format("Mon, Jan 2 • 3:04 PM ET")
}
