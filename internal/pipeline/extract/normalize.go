package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var currencyNoise = regexp.MustCompile(`[$B\s,]`)

// CleanCurrency parses an amount cell from the formats budget tables
// use: "$1,200,000", "1.2", "B$450,000". A value wrapped in parentheses
// is negative. Returns false for anything that is not a number.
func CleanCurrency(value string) (float64, bool) {
	cleaned := currencyNoise.ReplaceAllString(strings.TrimSpace(value), "")
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		cleaned = "-" + cleaned[1:len(cleaned)-1]
	}

	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return amount, true
}

// Aliases are matched in order, first hit wins. Short aliases sit after
// their long forms; substring matching can still false-positive on a
// short alias embedded in a longer unrelated name, a known limit of
// this heuristic.
var ministryAliases = []struct {
	pattern string
	code    string
}{
	{"ministry of education", "MOE"},
	{"education", "MOE"},
	{"ministry of health", "MOH"},
	{"health", "MOH"},
	{"ministry of national security", "MNS"},
	{"national security", "MNS"},
	{"ministry of works and utilities", "MOW"},
	{"ministry of works", "MOW"},
	{"works", "MOW"},
	{"ministry of finance", "MOF"},
	{"finance", "MOF"},
	{"ministry of tourism", "MOT"},
	{"tourism", "MOT"},
	{"ministry of social services", "MSS"},
	{"social services", "MSS"},
	{"ministry of agriculture", "MOA"},
	{"agriculture", "MOA"},
	{"ministry of environment", "MOENV"},
	{"environment", "MOENV"},
	{"office of the prime minister", "PMO"},
	{"prime minister", "PMO"},
}

// NormalizeMinistry maps a free-text ministry name to its short code,
// or "" when nothing matches.
func NormalizeMinistry(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return ""
	}
	for _, alias := range ministryAliases {
		if strings.Contains(n, alias.pattern) {
			return alias.code
		}
	}
	return ""
}
