package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	minWorkYear = 1950
	maxWorkYear = 2100
)

var (
	errMonthOutOfRange = errors.New("month out of range")
	errYearOutOfRange  = errors.New("year out of range")
)

var directMentionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(\d{1,2})\s*[-–]\s*\d{1,2}\s*(?:years?|yrs?)\s*(?:of\s*)?experience`),
	regexp.MustCompile(`(?i)\b(\d{1,2})\s*\+?\s*(?:years?|yrs?)\s*(?:of\s*)?(?:experience|exp)`),
	regexp.MustCompile(`(?i)experience\s*:\s*(\d{1,2})\s*\+?\s*(?:years?|yrs?)\b`),
}

var (
	monthNameDatePattern = regexp.MustCompile(`(?i)\b(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?,?\s+(\d{4})\b`)
	numericDatePattern   = regexp.MustCompile(`\b(\d{1,2})/(\d{4})\b`)
	yearRangePattern     = regexp.MustCompile(`\b(\d{4})\s*[-–]\s*(\d{4})\b`)
	durationPattern      = regexp.MustCompile(`(?i)\b(?:duration|period|time)\s*[:\-–]?\s*(?:(\d{1,2})\s*(?:years?|yrs?)\b)?\s*(?:,|&|and)?\s*(?:(\d{1,2})\s*(?:months?|mos?)\b)?`)
)

var monthsByPrefix = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

var experienceTiers = []Rule{
	{Name: "direct_mention", Match: directMention},
	{Name: "work_history_dates", Match: workHistorySpan},
	{Name: "duration_phrase", Match: durationPhrase},
}

// YearsOfExperience estimates total work experience. An explicit statement
// wins over a span computed from work-history dates, which wins over a
// labelled duration phrase.
func YearsOfExperience(text string) (string, bool) {
	value, _, ok := FirstMatch(experienceTiers, text)
	return value, ok
}

func directMention(text string) (string, bool) {
	for _, pattern := range directMentionPatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		years, err := strconv.Atoi(m[1])
		if err != nil || years == 0 {
			continue
		}
		return formatSpan(years, 0), true
	}
	return "", false
}

type monthYear struct {
	year  int
	month int
}

func (m monthYear) ordinal() int {
	return m.year*12 + m.month - 1
}

func newMonthYear(year, month int) (monthYear, error) {
	if month < 1 || month > 12 {
		return monthYear{}, fmt.Errorf("%w: %d", errMonthOutOfRange, month)
	}
	if year < minWorkYear || year > maxWorkYear {
		return monthYear{}, fmt.Errorf("%w: %d", errYearOutOfRange, year)
	}
	return monthYear{year: year, month: month}, nil
}

func parseMonthName(name, year string) (monthYear, error) {
	month, ok := monthsByPrefix[strings.ToLower(name)[:3]]
	if !ok {
		return monthYear{}, fmt.Errorf("%w: %q", errMonthOutOfRange, name)
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return monthYear{}, fmt.Errorf("parse year %q: %w", year, err)
	}
	return newMonthYear(y, month)
}

func parseNumericDate(month, year string) (monthYear, error) {
	m, err := strconv.Atoi(month)
	if err != nil {
		return monthYear{}, fmt.Errorf("parse month %q: %w", month, err)
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return monthYear{}, fmt.Errorf("parse year %q: %w", year, err)
	}
	return newMonthYear(y, m)
}

func parseYear(year string) (monthYear, error) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return monthYear{}, fmt.Errorf("parse year %q: %w", year, err)
	}
	return newMonthYear(y, 1)
}

// workDates collects every parseable date token. Tokens that fail to parse are
// skipped; they are usually phone fragments or unrelated numbers.
func workDates(text string) []monthYear {
	var dates []monthYear
	add := func(d monthYear, err error) {
		if err == nil {
			dates = append(dates, d)
		}
	}
	for _, m := range monthNameDatePattern.FindAllStringSubmatch(text, -1) {
		add(parseMonthName(m[1], m[2]))
	}
	for _, m := range numericDatePattern.FindAllStringSubmatch(text, -1) {
		add(parseNumericDate(m[1], m[2]))
	}
	for _, m := range yearRangePattern.FindAllStringSubmatch(text, -1) {
		add(parseYear(m[1]))
		add(parseYear(m[2]))
	}
	return dates
}

func workHistorySpan(text string) (string, bool) {
	dates := workDates(text)
	if len(dates) < 2 {
		return "", false
	}
	earliest, latest := dates[0].ordinal(), dates[0].ordinal()
	for _, d := range dates[1:] {
		earliest = min(earliest, d.ordinal())
		latest = max(latest, d.ordinal())
	}
	months := latest - earliest
	if months == 0 {
		return "", false
	}
	return formatSpan(months/12, months%12), true
}

func durationPhrase(text string) (string, bool) {
	for _, m := range durationPattern.FindAllStringSubmatch(text, -1) {
		if m[1] == "" && m[2] == "" {
			continue
		}
		years, _ := strconv.Atoi(m[1])
		months, _ := strconv.Atoi(m[2])
		if years == 0 && months == 0 {
			continue
		}
		return formatSpan(years, months), true
	}
	return "", false
}

func formatSpan(years, months int) string {
	parts := make([]string, 0, 2)
	if years > 0 {
		parts = append(parts, pluralize(years, "year"))
	}
	if months > 0 {
		parts = append(parts, pluralize(months, "month"))
	}
	return strings.Join(parts, " ")
}

func pluralize(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return strconv.Itoa(n) + " " + unit + "s"
}
