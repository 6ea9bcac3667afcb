package extract

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// knownCities is a closed list; the extractor is not a geocoder.
var knownCities = []string{
	"hyderabad",
	"chennai",
	"bangalore",
	"pune",
	"mumbai",
	"delhi",
	"gurgaon",
	"noida",
	"kolkata",
	"ahmedabad",
}

var locationPattern = regexp.MustCompile(`(?i)\b(?:` + strings.Join(knownCities, "|") + `)\b`)

// Location returns the first known city mentioned in text, title-cased.
func Location(text string) (string, bool) {
	m := locationPattern.FindString(text)
	if m == "" {
		return "", false
	}
	// Casers carry state and must not be shared between goroutines.
	return cases.Title(language.English).String(strings.ToLower(m)), true
}
