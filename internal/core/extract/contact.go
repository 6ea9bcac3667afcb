package extract

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	emailPattern     = regexp.MustCompile(`[\w.\-]+@[\w.\-]+\.[A-Za-z]{2,}`)
	phonePattern     = regexp.MustCompile(`[+(]?[1-9][0-9 .\-()]{8,}[0-9]`)
	honorificPattern = regexp.MustCompile(`(?i)^(?:mrs|mr|ms|dr|prof)\b\.?\s*`)
)

const maxNameTokens = 4

// Email returns the first address with a local part, a domain and a top-level
// suffix of at least two letters.
func Email(text string) (string, bool) {
	m := emailPattern.FindString(text)
	return m, m != ""
}

// Phone returns the first run of at least ten characters that starts with a
// non-zero digit (optionally behind '+' or '(') and ends with a digit.
func Phone(text string) (string, bool) {
	m := strings.TrimSpace(phonePattern.FindString(text))
	return m, m != ""
}

// Name returns the first line that looks like a person's name: no digits, no
// '@', no link and at most four words. A leading honorific is dropped.
func Name(text string) (string, bool) {
	for _, line := range Lines(text) {
		if !looksLikeName(line) {
			continue
		}
		name := strings.TrimSpace(honorificPattern.ReplaceAllString(line, ""))
		if name == "" {
			continue
		}
		return name, true
	}
	return "", false
}

func looksLikeName(line string) bool {
	if strings.IndexFunc(line, unicode.IsDigit) >= 0 {
		return false
	}
	if strings.Contains(line, "@") || strings.Contains(strings.ToLower(line), "http") {
		return false
	}
	n := len(strings.Fields(line))
	return n >= 1 && n <= maxNameTokens
}
