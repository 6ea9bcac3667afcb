package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SkillCategory is one output bucket of the skills extractor.
type SkillCategory string

const (
	CategoryLanguages      SkillCategory = "Languages"
	CategoryDatabase       SkillCategory = "Database"
	CategoryConcepts       SkillCategory = "Concepts"
	CategoryTools          SkillCategory = "Tools & Frameworks"
	CategoryOtherTechnical SkillCategory = "Other Technical"
	CategorySoftSkills     SkillCategory = "Soft Skills"
)

// SkillCategories lists the categories in output order.
var SkillCategories = []SkillCategory{
	CategoryLanguages,
	CategoryDatabase,
	CategoryConcepts,
	CategoryTools,
	CategoryOtherTechnical,
	CategorySoftSkills,
}

const (
	maxSkillsPerCategory = 10
	minSkillRunes        = 3
)

// Heading synonyms, longest first so the alternation prefers the full phrase.
var categoryHeadings = map[SkillCategory][]string{
	CategoryLanguages: {
		"programming languages", "programming language", "coding languages",
		"languages", "language",
	},
	CategoryDatabase: {
		"database technologies", "database skills", "databases", "database", "db",
	},
	CategoryConcepts: {
		"technical concepts", "core concepts", "concepts", "methodologies",
	},
	CategoryTools: {
		"tools & frameworks", "tools and frameworks", "tools & technologies",
		"tools and technologies", "frameworks & libraries", "frameworks",
		"libraries", "technologies", "tools",
	},
	CategoryOtherTechnical: {
		"other technical skills", "other technical", "other skills", "others",
	},
	CategorySoftSkills: {
		"interpersonal skills", "soft skills", "soft skill", "personal skills",
	},
}

var generalHeadings = []string{
	"technical skills", "key skills", "core skills", "core competencies",
	"technical expertise", "areas of expertise", "skill set", "skillset",
	"competencies", "expertise", "skills",
}

// Section titles that end a skills block even without a blank line.
var sectionHeadings = []string{
	"work experience", "professional experience", "experience", "education",
	"projects", "certifications", "achievements", "summary", "objective",
	"personal details", "hobbies", "interests",
}

var (
	categoryPatterns = compileCategoryPatterns()
	generalPattern   = headingPattern(generalHeadings)
	anyHeading       = headingPattern(allHeadings())
	sectionPattern   = headingPattern(sectionHeadings)
	blankLine        = regexp.MustCompile(`\n[ \t]*\n`)
	skillSeparators  = regexp.MustCompile(`[,•·●▪◦‣∙;/|\n]+`)
)

// headingPattern matches a heading at line start (optionally bulleted),
// followed by ':' or '-' and content, or by the end of the line.
func headingPattern(names []string) *regexp.Regexp {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = regexp.QuoteMeta(n)
	}
	return regexp.MustCompile(`(?im)^[ \t]*(?:[-*•][ \t]*)?(?:` + strings.Join(quoted, "|") + `)[ \t]*(?:[:\-–][ \t]*|$)`)
}

func compileCategoryPatterns() map[SkillCategory]*regexp.Regexp {
	out := make(map[SkillCategory]*regexp.Regexp, len(categoryHeadings))
	for category, names := range categoryHeadings {
		out[category] = headingPattern(names)
	}
	return out
}

func allHeadings() []string {
	var names []string
	for _, category := range SkillCategories {
		names = append(names, categoryHeadings[category]...)
	}
	names = append(names, generalHeadings...)
	return append(names, sectionHeadings...)
}

// Keyword tables for classifying tokens from a generic skills section. Other
// Technical is also the fallback for capitalised tokens nothing else claims.
var skillKeywords = []struct {
	category SkillCategory
	keywords []string
}{
	{CategoryLanguages, []string{
		"java", "python", "javascript", "typescript", "c++", "c#", "golang", "ruby",
		"php", "kotlin", "swift", "scala", "rust", "perl", "html", "css", "bash",
		"shell", "matlab", "dart", "objective-c",
	}},
	{CategoryDatabase, []string{
		"mysql", "postgresql", "postgres", "mongodb", "oracle", "sql server", "sqlite",
		"redis", "cassandra", "dynamodb", "sql", "nosql", "mariadb", "elasticsearch",
		"firebase", "db2",
	}},
	{CategoryConcepts, []string{
		"oop", "oops", "object oriented programming", "data structures", "algorithms",
		"machine learning", "deep learning", "microservices", "rest", "restful apis",
		"design patterns", "agile", "scrum", "devops", "cloud computing",
		"distributed systems", "system design", "multithreading", "solid", "tdd",
		"nlp", "computer vision", "data analysis",
	}},
	{CategoryTools, []string{
		"spring", "spring boot", "django", "flask", "react", "react.js", "angular",
		"vue", "node.js", "express", "docker", "kubernetes", "git", "github",
		"jenkins", "jira", "maven", "gradle", "aws", "azure", "gcp", "terraform",
		"ansible", "hibernate", "tensorflow", "pytorch", "pandas", "numpy",
		"selenium", "postman", "linux", "kafka", "rabbitmq", "tableau", "power bi",
		"excel",
	}},
	{CategorySoftSkills, []string{
		"communication", "leadership", "teamwork", "team work", "team player",
		"problem solving", "problem-solving", "time management", "adaptability",
		"collaboration", "critical thinking", "creativity", "presentation",
		"negotiation", "interpersonal",
	}},
	{CategoryOtherTechnical, []string{
		"seo", "networking", "testing", "automation", "data entry", "ms office",
	}},
}

// SkillSet holds extracted skills per category in discovery order.
type SkillSet map[SkillCategory][]string

// Format renders the set as "Category: a, b" lines in fixed category order.
func (s SkillSet) Format() string {
	lines := make([]string, 0, len(SkillCategories))
	for _, category := range SkillCategories {
		if items := s[category]; len(items) > 0 {
			lines = append(lines, string(category)+": "+strings.Join(items, ", "))
		}
	}
	return strings.Join(lines, "\n")
}

// Skills extracts categorised skills and formats them for export.
func Skills(text string) (string, bool) {
	out := CategorizeSkills(text).Format()
	return out, out != ""
}

// CategorizeSkills runs both passes: explicit category sections first, then a
// generic skills section whose tokens are classified by keyword. Results are
// additive and may contain the same skill twice.
func CategorizeSkills(text string) SkillSet {
	set := SkillSet{}
	for _, category := range SkillCategories {
		block, ok := sectionBlock(categoryPatterns[category], anyHeading, text)
		if !ok {
			continue
		}
		for _, token := range splitSkills(block, false) {
			if len(set[category]) >= maxSkillsPerCategory {
				break
			}
			set[category] = append(set[category], token)
		}
	}

	block, ok := sectionBlock(generalPattern, sectionPattern, text)
	if !ok {
		return set
	}
	added := map[SkillCategory]int{}
	for _, token := range splitSkills(block, true) {
		category := classifySkill(token)
		if added[category] >= maxSkillsPerCategory {
			continue
		}
		added[category]++
		set[category] = append(set[category], token)
	}
	return set
}

// sectionBlock returns the text after the first heading matched by pattern, up
// to the first blank line or the next line matched by stop.
func sectionBlock(pattern, stop *regexp.Regexp, text string) (string, bool) {
	loc := pattern.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	block := text[loc[1]:]
	if end := blankLine.FindStringIndex(block); end != nil {
		block = block[:end[0]]
	}
	lines := strings.Split(block, "\n")
	for i := 1; i < len(lines); i++ {
		if stop.MatchString(lines[i]) {
			lines = lines[:i]
			break
		}
	}
	return strings.Join(lines, "\n"), true
}

func splitSkills(block string, dropLabels bool) []string {
	var out []string
	for _, part := range skillSeparators.Split(block, -1) {
		token := strings.Trim(strings.TrimSpace(part), "-*–—>• \t\r")
		if dropLabels {
			if i := strings.Index(token, ":"); i >= 0 {
				token = strings.TrimSpace(token[i+1:])
			}
		}
		if utf8.RuneCountInString(token) < minSkillRunes {
			continue
		}
		out = append(out, token)
	}
	return out
}

func classifySkill(token string) SkillCategory {
	padded := " " + strings.ToLower(collapseWhitespace(token)) + " "
	for _, table := range skillKeywords {
		for _, kw := range table.keywords {
			if strings.Contains(padded, " "+kw+" ") {
				return table.category
			}
		}
	}
	if strings.IndexFunc(token, unicode.IsUpper) >= 0 {
		return CategoryOtherTechnical
	}
	return CategorySoftSkills
}
