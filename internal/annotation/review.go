package annotation

import (
	"encoding/json"
	"strconv"
	"strings"
)

// DefaultOverallScore is reported when the service returns no score.
const DefaultOverallScore = 78.0

var (
	defaultStrengths = []string{
		"Clear structure and formatting",
		"Relevant skills highlighted",
		"Good use of action verbs",
		"Quantifiable achievements included",
	}
	defaultImprovements = []string{
		"Add more metrics to technical skills",
		"Include certifications section",
		"Expand project descriptions",
		"Add leadership experience examples",
	}
	defaultRecommendations = []string{
		"Consider adding a professional summary",
		"Tailor resume to specific job descriptions",
		"Include links to portfolio or GitHub",
		"Proofread for any typos or inconsistencies",
	}
)

// Review is the feedback summary shown next to the annotated PDF.
type Review struct {
	Strengths       []string `json:"strengths"`
	Improvements    []string `json:"improvements"`
	OverallScore    float64  `json:"overallScore"`
	Recommendations []string `json:"recommendations"`
}

// NewReview builds a Review from annotation metadata, filling any missing
// field with the stock feedback. A list the service sent, even an empty one,
// is kept.
func NewReview(metadata map[string]any) Review {
	r := Review{
		Strengths:       stringList(metadata, "strengths", defaultStrengths),
		Improvements:    stringList(metadata, "improvements", defaultImprovements),
		Recommendations: stringList(metadata, "recommendations", defaultRecommendations),
		OverallScore:    DefaultOverallScore,
	}

	for _, key := range []string{"overall_score", "overallScore"} {
		if score, ok := number(metadata[key]); ok && score != 0 {
			r.OverallScore = score
			break
		}
	}
	return r
}

func stringList(m map[string]any, key string, fallback []string) []string {
	raw, ok := m[key].([]any)
	if !ok {
		return append([]string(nil), fallback...)
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// number accepts JSON numbers and numeric strings such as "85" or "85.5".
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
