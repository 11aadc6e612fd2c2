package providers

import "strings"

// teamAbbrevs maps the nickname portion of an Odds API full team name to
// the abbreviation stat feeds use.
var teamAbbrevs = map[string]string{
	"lakers":        "LAL",
	"celtics":       "BOS",
	"warriors":      "GSW",
	"heat":          "MIA",
	"nets":          "BKN",
	"bucks":         "MIL",
	"clippers":      "LAC",
	"suns":          "PHX",
	"knicks":        "NYK",
	"bulls":         "CHI",
	"nuggets":       "DEN",
	"mavericks":     "DAL",
	"76ers":         "PHI",
	"grizzlies":     "MEM",
	"hawks":         "ATL",
	"jazz":          "UTA",
	"pelicans":      "NOP",
	"timberwolves":  "MIN",
	"pistons":       "DET",
	"trail blazers": "POR",
	"kings":         "SAC",
	"pacers":        "IND",
	"magic":         "ORL",
	"raptors":       "TOR",
	"cavaliers":     "CLE",
	"hornets":       "CHA",
	"spurs":         "SAS",
	"rockets":       "HOU",
	"wizards":       "WAS",
	"thunder":       "OKC",
}

// TeamAbbreviation converts a full team name ("Los Angeles Lakers") to its
// abbreviation. Unknown names fall back to the first three letters uppercased.
func TeamAbbreviation(fullName string) string {
	if fullName == "" {
		return ""
	}
	lower := strings.ToLower(fullName)
	for nickname, abbrev := range teamAbbrevs {
		if strings.Contains(lower, nickname) {
			return abbrev
		}
	}
	if len(fullName) < 3 {
		return strings.ToUpper(fullName)
	}
	return strings.ToUpper(fullName[:3])
}

// OpponentAbbreviation resolves the opponent of playerTeam in a matchup
// given the two full team names. Returns "" when the player's team is not
// part of the matchup.
func OpponentAbbreviation(playerTeam, homeTeam, awayTeam string) string {
	home := TeamAbbreviation(homeTeam)
	away := TeamAbbreviation(awayTeam)
	switch playerTeam {
	case home:
		return away
	case away:
		return home
	}
	return ""
}
