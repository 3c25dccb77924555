package resume

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// DegreeStatus describes whether a degree has been awarded yet.
type DegreeStatus string

const (
	DegreeExpected   DegreeStatus = "Expected"
	DegreeInProgress DegreeStatus = "In Progress"
	DegreeCompleted  DegreeStatus = "Completed"
)

// degreeContext is how far around a bare degree mention a year is searched for.
const degreeContext = 50

// Degree is the highest degree found in a resume. Year is zero when none was found.
type Degree struct {
	Name   string
	Year   int
	Status DegreeStatus
}

// String renders the degree the way the portfolio card shows it.
func (d Degree) String() string {
	if d.Year == 0 {
		return d.Name
	}
	year := strconv.Itoa(d.Year)
	switch d.Status {
	case DegreeInProgress:
		return d.Name + " (In Progress - " + year + ")"
	case DegreeExpected:
		return d.Name + " (Expected " + year + ")"
	default:
		return d.Name + " (" + year + ")"
	}
}

var (
	// Degree lines carrying a year, optionally with a field of study.
	fullDegreePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:Bachelor|Master|Doctor|Associate)(?:\s+of\s+(?:Science|Arts|Business|Engineering|Medicine|Law|etc\.?))?(?:\s+in\s+[\w\s,&]+?)?(?:\s*\([^)]*\))?\s*(?:\d{4}|May\s+\d{4}|Expected\s+\d{4})`),
		regexp.MustCompile(`(?i)(?:B\.?S\.?|M\.?S\.?|Ph\.?D\.?|B\.?A\.?|M\.?A\.?|M\.?B\.?A\.?)(?:\s+in\s+[\w\s,&]+?)?(?:\s*\([^)]*\))?\s*(?:\d{4}|May\s+\d{4}|Expected\s+\d{4})`),
	}

	// Bare degree mentions, checked in order of seniority group.
	bareDegreePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Bachelor(?:'s)?(?:\s+of\s+(?:Science|Arts|Business|Engineering|etc\.?))?|B\.?S\.?|B\.?A\.?`),
		regexp.MustCompile(`(?i)Master(?:'s)?(?:\s+of\s+(?:Science|Arts|Business|etc\.?))?|M\.?B\.?A\.?|M\.?S\.?|M\.?A\.?`),
		regexp.MustCompile(`(?i)Ph\.?D\.?|Doctorate|Doctor(?:\s+of\s+Philosophy)?`),
		regexp.MustCompile(`(?i)Associate(?:'s)?(?:\s+Degree)?`),
	}

	abbreviationPattern = regexp.MustCompile(`(?i)^(?:B\.?S\.?|B\.?A\.?|M\.?S\.?|M\.?A\.?|M\.?B\.?A\.?|Ph\.?D\.?)$`)

	monthYearPattern    = regexp.MustCompile(`(?i)\s*\b(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{4}\b\s*`)
	expectedYearPattern = regexp.MustCompile(`(?i)\s*\b(?:Expected|Exp\.?)\s+\d{4}\b\s*`)
	bareYearPattern     = regexp.MustCompile(`\s*\b(?:20\d{2}|19\d{2})\b\s*`)

	degreeExpansions = []struct {
		pattern *regexp.Regexp
		name    string
	}{
		{regexp.MustCompile(`(?i)\bB\.?S\b\.?`), "Bachelor of Science"},
		{regexp.MustCompile(`(?i)\bM\.?S\b\.?`), "Master of Science"},
		{regexp.MustCompile(`(?i)\bPh\.?D\b\.?`), "Ph.D."},
		{regexp.MustCompile(`(?i)\bB\.?A\b\.?`), "Bachelor of Arts"},
		{regexp.MustCompile(`(?i)\bM\.?A\b\.?`), "Master of Arts"},
		{regexp.MustCompile(`(?i)\bM\.?B\.?A\b\.?`), "Master of Business Administration"},
	}
)

// DetectDegree finds the highest degree mentioned in text. Years after
// currentYear are Expected, currentYear is In Progress, earlier years are
// Completed.
func DetectDegree(text string, currentYear int) (Degree, bool) {
	for _, re := range fullDegreePatterns {
		loc := firstDegreeMatch(re, text)
		if loc == nil {
			continue
		}
		full := strings.TrimSpace(text[loc[0]:loc[1]])
		year, ok := firstYear(full)
		if !ok {
			continue
		}

		name := replaceFirst(monthYearPattern, full, "")
		name = replaceFirst(expectedYearPattern, name, "")
		name = strings.TrimSpace(replaceFirst(bareYearPattern, name, ""))
		for _, exp := range degreeExpansions {
			name = replaceFirst(exp.pattern, name, exp.name)
		}
		return Degree{Name: name, Year: year, Status: degreeStatus(year, currentYear)}, true
	}

	for _, re := range bareDegreePatterns {
		loc := firstDegreeMatch(re, text)
		if loc == nil {
			continue
		}
		mention := text[loc[0]:loc[1]]

		start := max(0, loc[0]-degreeContext)
		end := min(len(text), loc[1]+degreeContext)
		latest := 0
		for _, y := range yearPattern.FindAllString(text[start:end], -1) {
			if n, _ := strconv.Atoi(y); n > latest {
				latest = n
			}
		}
		if latest == 0 {
			return Degree{Name: mention, Status: DegreeCompleted}, true
		}
		return Degree{Name: degreeLevel(mention), Year: latest, Status: degreeStatus(latest, currentYear)}, true
	}

	return Degree{}, false
}

// firstDegreeMatch returns the first match that starts a word. Abbreviations
// must also end one, so "Mathematics" is not an M.A.
func firstDegreeMatch(re *regexp.Regexp, text string) []int {
	for _, loc := range re.FindAllStringIndex(text, -1) {
		if loc[0] > 0 && isLetterByte(text[loc[0]-1]) {
			continue
		}
		if abbreviationPattern.MatchString(text[loc[0]:loc[1]]) && loc[1] < len(text) && isLetterByte(text[loc[1]]) {
			continue
		}
		return loc
	}
	return nil
}

func isLetterByte(b byte) bool {
	return b < 0x80 && unicode.IsLetter(rune(b))
}

func firstYear(s string) (int, bool) {
	m := yearPattern.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	return n, err == nil
}

func degreeStatus(year, currentYear int) DegreeStatus {
	switch {
	case year > currentYear:
		return DegreeExpected
	case year == currentYear:
		return DegreeInProgress
	default:
		return DegreeCompleted
	}
}

// degreeLevel maps a bare mention to its generic level name.
func degreeLevel(mention string) string {
	lower := strings.ToLower(mention)
	switch {
	case strings.Contains(lower, "b.s"), strings.Contains(lower, "b.a"), strings.Contains(lower, "bachelor"):
		return "Bachelor's Degree"
	case strings.Contains(lower, "m.s"), strings.Contains(lower, "m.a"), strings.Contains(lower, "master"):
		return "Master's Degree"
	case strings.Contains(lower, "ph.d"), strings.Contains(lower, "doctorate"):
		return "Ph.D."
	case strings.Contains(lower, "associate"):
		return "Associate Degree"
	}
	return mention
}

func replaceFirst(re *regexp.Regexp, s, repl string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + repl + s[loc[1]:]
}
