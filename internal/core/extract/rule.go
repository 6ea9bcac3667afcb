// Package extract holds the field extractors: pure functions that map raw resume
// text to one field value. Every extractor reports (value, ok); callers decide
// what to emit when nothing matched.
package extract

// Rule is one named heuristic in a first-match-wins chain.
type Rule struct {
	Name  string
	Match func(text string) (string, bool)
}

// FirstMatch evaluates rules in declared order and returns the first hit
// together with the name of the rule that produced it.
func FirstMatch(rules []Rule, text string) (string, string, bool) {
	for _, rule := range rules {
		if value, ok := rule.Match(text); ok {
			return value, rule.Name, true
		}
	}
	return "", "", false
}
