package providers

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// accentFolder strips combining marks so "Dončić" compares equal to "Doncic".
var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// playerAliases maps sportsbook spellings to the name stat feeds use.
// Keys and values are lowercase.
var playerAliases = map[string]string{
	"nicolas claxton":    "nic claxton",
	"cameron johnson":    "cam johnson",
	"carlton carrington": "bub carrington",
	"c.j. mccollum":      "cj mccollum",
}

var nameSuffixes = []string{"jr", "sr", "ii", "iii", "iv"}

// NormalizeName lowercases a player name, folds accents and drops
// punctuation so that names from different feeds compare equal.
func NormalizeName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if folded, _, err := transform.String(accentFolder, n); err == nil {
		n = folded
	}
	n = strings.ReplaceAll(n, ".", "")
	n = strings.ReplaceAll(n, "'", "")
	n = strings.ReplaceAll(n, "-", " ")
	return strings.Join(strings.Fields(n), " ")
}

// MatchName finds the entry in keys that refers to the same player as
// lookup. Matching escalates from exact to case-insensitive to alias to
// normalized, then tolerates a missing or extra generational suffix.
func MatchName(lookup string, keys []string) (string, bool) {
	for _, k := range keys {
		if k == lookup {
			return k, true
		}
	}

	lower := strings.ToLower(lookup)
	for _, k := range keys {
		if strings.ToLower(k) == lower {
			return k, true
		}
	}

	if alias, ok := playerAliases[lower]; ok {
		for _, k := range keys {
			if strings.ToLower(k) == alias {
				return k, true
			}
		}
	}

	normalized := NormalizeName(lookup)
	for _, k := range keys {
		if NormalizeName(k) == normalized {
			return k, true
		}
	}

	stripped := stripNameSuffix(normalized)
	for _, k := range keys {
		if stripNameSuffix(NormalizeName(k)) == stripped {
			return k, true
		}
	}

	return "", false
}

func stripNameSuffix(normalized string) string {
	for _, s := range nameSuffixes {
		if strings.HasSuffix(normalized, " "+s) {
			return strings.TrimSuffix(normalized, " "+s)
		}
	}
	return normalized
}
