// Package insights aggregates a user's connections and resume into the
// portfolio summary shown on the portfolio page.
package insights

import (
	"math"
	"sort"
	"strings"

	"github.com/jonathan/career-network/internal/resume"
	"github.com/jonathan/career-network/internal/types"
)

// TopIndustryLimit caps the industries returned by TopIndustries.
const TopIndustryLimit = 8

// OtherIndustry labels connections with neither industry nor role.
const OtherIndustry = "Other"

var (
	defaultStrengths = []string{
		"Complete your profile to see recommendations",
		"Build your professional network",
	}
	defaultImprovements = []string{
		"Upload your resume to get personalized suggestions",
	}
)

// IndustryCount is one row of the connection-type breakdown.
type IndustryCount struct {
	Industry string `json:"industry"`
	Count    int    `json:"count"`
	Percent  int    `json:"percent"`
}

// Portfolio is the aggregated view returned by the portfolio endpoint.
type Portfolio struct {
	IndustryMatches map[string]int              `json:"industry_matches"`
	TopIndustries   []IndustryCount             `json:"top_industries"`
	Strengths       []string                    `json:"strengths"`
	Improvements    []string                    `json:"improvements"`
	Characteristics []resume.Characteristic     `json:"characteristics"`
	Skills          []string                    `json:"skills"`
	Classes         []types.ClassRecommendation `json:"classes,omitempty"`
}

// IndustryMatches counts connections by industry, falling back to the
// current role and then OtherIndustry.
func IndustryMatches(people []types.PersonData) map[string]int {
	counts := make(map[string]int)
	for _, p := range people {
		counts[industryType(p)]++
	}
	return counts
}

func industryType(p types.PersonData) string {
	if p.Industry != "" {
		return p.Industry
	}
	if p.CurrentRole != "" {
		return p.CurrentRole
	}
	return OtherIndustry
}

// TopIndustries orders counts by descending count, breaking ties by name,
// and keeps at most limit entries. A non-positive limit keeps all of them.
func TopIndustries(counts map[string]int, limit int) []IndustryCount {
	total := 0
	out := make([]IndustryCount, 0, len(counts))
	for industry, count := range counts {
		total += count
		out = append(out, IndustryCount{Industry: industry, Count: count})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Industry < out[j].Industry
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	for i := range out {
		out[i].Percent = int(math.Round(float64(out[i].Count) * 100 / float64(total)))
	}
	return out
}

// StrengthsAndImprovements derives short textual insights from the shape of
// the network. Both lists are always non-empty.
func StrengthsAndImprovements(people []types.PersonData) (strengths, improvements []string) {
	if len(people) > 0 {
		var roles, industries []string
		for _, p := range people {
			if p.CurrentRole != "" {
				roles = append(roles, p.CurrentRole)
			}
			if p.Industry != "" {
				industries = append(industries, p.Industry)
			}
		}

		if len(industries) > 0 {
			strengths = append(strengths, "Strong presence in "+industries[0]+" industry")
		}
		if len(roles) > 0 {
			strengths = append(strengths, "Well-positioned for "+roles[0]+" roles")
		}
		if len(people) > 10 {
			strengths = append(strengths, "Extensive professional network")
		}
		// Counts entries, not distinct industries.
		if len(people) > 5 && len(industries) > 3 {
			strengths = append(strengths, "Cross-industry experience")
		}

		if len(people) < 10 {
			improvements = append(improvements, "Expand your professional network")
		}
		if len(industries) < 3 {
			improvements = append(improvements, "Connect with professionals in new industries")
		}
		if len(roles) < 3 {
			improvements = append(improvements, "Explore different career paths")
		}
	}

	if len(strengths) == 0 {
		strengths = append(strengths, defaultStrengths...)
	}
	if len(improvements) == 0 {
		improvements = append(improvements, defaultImprovements...)
	}
	return strengths, improvements
}

// Build assembles a Portfolio from connections and resume text. Classes are
// attached by the caller when available.
func Build(people []types.PersonData, resumeText string) *Portfolio {
	counts := IndustryMatches(people)
	strengths, improvements := StrengthsAndImprovements(people)

	p := &Portfolio{
		IndustryMatches: counts,
		TopIndustries:   TopIndustries(counts, TopIndustryLimit),
		Strengths:       strengths,
		Improvements:    improvements,
		Characteristics: []resume.Characteristic{},
		Skills:          []string{},
	}
	if strings.TrimSpace(resumeText) != "" {
		if chars := resume.Characteristics(resumeText); len(chars) > 0 {
			p.Characteristics = chars
		}
		if skills := resume.ExtractSkills(resumeText); len(skills) > 0 {
			p.Skills = skills
		}
	}
	return p
}
