package resume

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MaxExtractedSkills caps ExtractSkills.
const MaxExtractedSkills = 10

// skillVocabulary is searched case-insensitively, in order.
var skillVocabulary = []string{
	"Python", "JavaScript", "TypeScript", "Java", "C++", "C#", "React", "Vue", "Angular",
	"Node.js", "Express", "Django", "Flask", "SQL", "MongoDB", "PostgreSQL", "AWS", "Azure", "GCP",
	"Machine Learning", "Deep Learning", "Data Science", "Data Analysis", "Statistics",
	"Web Development", "Full Stack", "Frontend", "Backend", "DevOps", "Docker", "Kubernetes",
	"Leadership", "Communication", "Project Management", "Agile", "Scrum",
	"UI/UX", "Design", "Figma", "Adobe", "Git", "Linux", "API", "REST",
}

// keyTechnologies is matched case-sensitively for the characteristics card.
var keyTechnologies = []string{"Python", "JavaScript", "React", "SQL", "Java", "C++", "AWS", "Docker", "Git"}

var yearPattern = regexp.MustCompile(`\b(20\d{2}|19\d{2})\b`)

// ExtractSkills returns the vocabulary skills mentioned in text, in vocabulary order.
// Matching is a case-insensitive substring test, so "Java" also matches "JavaScript".
func ExtractSkills(text string) []string {
	lower := strings.ToLower(text)
	found := make([]string, 0, MaxExtractedSkills)
	for _, skill := range skillVocabulary {
		if strings.Contains(lower, strings.ToLower(skill)) {
			found = append(found, skill)
			if len(found) == MaxExtractedSkills {
				break
			}
		}
	}
	return found
}

// Characteristic is a labelled fact about the resume.
type Characteristic struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Characteristics derives the highest degree, a years-of-experience estimate
// and up to three key technologies from resume text.
func Characteristics(text string) []Characteristic {
	return CharacteristicsAt(text, time.Now())
}

// CharacteristicsAt is Characteristics with the degree status judged as of now.
func CharacteristicsAt(text string, now time.Time) []Characteristic {
	var chars []Characteristic

	if degree, ok := DetectDegree(text, now.Year()); ok {
		chars = append(chars, Characteristic{Label: "Highest Degree", Value: degree.String()})
	}

	// Rough estimate: span between the first and last year mentioned.
	if years := yearPattern.FindAllString(text, -1); len(years) >= 2 {
		first, _ := strconv.Atoi(years[0])
		last, _ := strconv.Atoi(years[len(years)-1])
		span := last - first
		if span < 0 {
			span = -span
		}
		if span > 0 {
			chars = append(chars, Characteristic{Label: "Years of Experience", Value: strconv.Itoa(span) + "+"})
		}
	}

	var techs []string
	for _, tech := range keyTechnologies {
		if strings.Contains(text, tech) {
			techs = append(techs, tech)
		}
	}
	if len(techs) > 0 {
		if len(techs) > 3 {
			techs = techs[:3]
		}
		chars = append(chars, Characteristic{Label: "Key Technologies", Value: strings.Join(techs, ", ")})
	}

	return chars
}
