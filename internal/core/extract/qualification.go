package extract

import (
	"regexp"
	"strings"
)

// Qualification is a matched degree: the canonical label of the rule that hit
// and the text exactly as it appeared in the resume.
type Qualification struct {
	Label string
	Text  string
}

const (
	// A field starts with any word; continuation words must be capitalised so the
	// match stops at running prose ("... Science and Bachelor of ...").
	fieldWords  = `[A-Za-z][A-Za-z&]*(?:[ \t]+(?:&[ \t]+)?[A-Z][A-Za-z&]*)*`
	inField     = `(?:[ \t]+(?i:in)[ \t]+` + fieldWords + `)?`
	ofOrInField = `(?:[ \t]+(?i:of|in)[ \t]+` + fieldWords + `)?`
	// Degree tokens must not continue an email, a URL or a word.
	degreeStart = `(?:^|[^\w@./])`
	// Line start (optionally after a bullet) or a clause separator.
	bareStart = `(?m:(?:^|[,;:(|])[ \t]*(?:[-*•▪●·][ \t]*)?)`
)

type qualificationRule struct {
	label   string
	pattern *regexp.Regexp
}

func degree(label, body string) qualificationRule {
	return qualificationRule{
		label:   label,
		pattern: regexp.MustCompile(degreeStart + `(` + body + `)`),
	}
}

// twoLetter builds a case-sensitive rule for codes like BE or MA that are also
// ordinary words. The dotted spelling matches anywhere; the bare code needs a
// following "in <Field>" and must open a line, a list item or a clause, so
// prose such as "ABOUT ME in Pune" is not read as a degree.
func twoLetter(label string, first, second byte) qualificationRule {
	a, b := string(first), string(second)
	dotted := a + `\.[ ]?` + b + `\b\.?` + inField
	bare := a + b + `\.?[ \t]+(?i:in)[ \t]+` + fieldWords
	return qualificationRule{
		label: label,
		pattern: regexp.MustCompile(
			degreeStart + `(` + dotted + `)` +
				`|` + bareStart + `(` + bare + `)`,
		),
	}
}

var qualificationRules = []qualificationRule{
	degree("BTech", `(?i:B\.?[ ]?Tech)\b\.?`+inField),
	degree("MTech", `(?i:M\.?[ ]?Tech)\b\.?`+inField),
	twoLetter("BE", 'B', 'E'),
	twoLetter("ME", 'M', 'E'),
	degree("BSc", `(?i:B\.?[ ]?Sc)\b\.?`+inField),
	degree("MSc", `(?i:M\.?[ ]?Sc)\b\.?`+inField),
	degree("BCom", `(?i:B\.?[ ]?Com)\b\.?`+inField),
	degree("MCom", `(?i:M\.?[ ]?Com)\b\.?`+inField),
	degree("BBA", `(?i:B\.?[ ]?B\.?[ ]?A)\b\.?`+inField),
	degree("MBA", `(?i:M\.?[ ]?B\.?[ ]?A)\b\.?`+inField),
	twoLetter("BA", 'B', 'A'),
	twoLetter("MA", 'M', 'A'),
	degree("PhD", `(?i:Ph\.?[ ]?D)\b\.?`+inField),
	degree("Diploma", `(?i:Diploma)\b`+inField),
	degree("Bachelor", `(?i:Bachelor(?:'?s)?(?:[ \t]+degree)?)\b`+ofOrInField),
	degree("Master", `(?i:Master(?:'?s)?(?:[ \t]+degree)?)\b`+ofOrInField),
	degree("Undergraduate", `(?i:Undergraduate)\b`+inField),
	degree("High School", `(?i:High[ \t]+School(?:[ \t]+Diploma)?)\b`),
}

// Words that begin an institution name rather than continue a field of study.
var fieldStopWords = map[string]struct{}{
	"from":       {},
	"at":         {},
	"with":       {},
	"university": {},
	"college":    {},
	"institute":  {},
	"school":     {},
}

// MatchQualification returns the first rule, in priority order, that matches
// anywhere in text.
func MatchQualification(text string) (Qualification, bool) {
	for _, rule := range qualificationRules {
		m := rule.pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		return Qualification{Label: rule.label, Text: trimField(collapseWhitespace(firstGroup(m)))}, true
	}
	return Qualification{}, false
}

func firstGroup(m []string) string {
	for _, g := range m[1:] {
		if g != "" {
			return g
		}
	}
	return ""
}

// QualificationText returns the verbatim degree text of the highest priority match.
func QualificationText(text string) (string, bool) {
	q, ok := MatchQualification(text)
	return q.Text, ok
}

func trimField(s string) string {
	words := strings.Fields(s)
	connector := -1
	for i, w := range words {
		if lw := strings.ToLower(w); i > 0 && (lw == "in" || lw == "of") {
			connector = i
			break
		}
	}
	if connector < 0 {
		return s
	}
	for j := connector + 2; j < len(words); j++ {
		if _, stop := fieldStopWords[strings.ToLower(words[j])]; stop {
			return strings.Join(words[:j], " ")
		}
	}
	return s
}
