// Package types provides type definitions for structured data exchanged with the browser and the external services.
package types

// ExperienceEntry is one position in a directory profile.
type ExperienceEntry struct {
	Title       string `json:"title,omitempty"`
	Company     string `json:"company,omitempty"`
	Duration    string `json:"duration,omitempty"`
	Description string `json:"description,omitempty"`
}

// EducationEntry is one school in a directory profile.
type EducationEntry struct {
	School string `json:"school,omitempty"`
	Degree string `json:"degree,omitempty"`
	Field  string `json:"field,omitempty"`
	Years  string `json:"years,omitempty"`
}

// Profile is a professional profile as returned by the profile directory
// (searchByName / searchByIndustry).
type Profile struct {
	ProfileID        string            `json:"profileId"`
	Name             string            `json:"name,omitempty"`
	Email            string            `json:"email,omitempty"`
	Location         string            `json:"location,omitempty"`
	Headline         string            `json:"headline,omitempty"`
	About            string            `json:"about,omitempty"`
	RoleCurrent      string            `json:"roleCurrent,omitempty"`
	CurrentCompany   string            `json:"currentCompany,omitempty"`
	Industry         string            `json:"industry,omitempty"`
	YearsExperience  *int              `json:"yearsExperience,omitempty"`
	SeniorityLevel   string            `json:"seniorityLevel,omitempty"`
	Skills           []string          `json:"skills,omitempty"`
	Experience       []ExperienceEntry `json:"experience,omitempty"`
	Education        []EducationEntry  `json:"education,omitempty"`
	Connections      *int              `json:"connections,omitempty"`
	Goals            []string          `json:"goals,omitempty"`
	Needs            []string          `json:"needs,omitempty"`
	CanOffer         []string          `json:"canOffer,omitempty"`
	RemotePreference string            `json:"remotePreference,omitempty"`
	Source           string            `json:"source,omitempty"`
}

// PersonData is a ranked connection recommendation produced by the matching service.
// Rank is optional on the wire; callers fall back to list position.
type PersonData struct {
	Name           string   `json:"name"`
	Email          string   `json:"email,omitempty"`
	Location       string   `json:"location,omitempty"`
	Headline       string   `json:"headline,omitempty"`
	About          string   `json:"about,omitempty"`
	CurrentRole    string   `json:"current_role,omitempty"`
	CurrentCompany string   `json:"current_company,omitempty"`
	CanOffer       []string `json:"can_offer,omitempty"`
	Industry       string   `json:"industry,omitempty"`
	Skills         []string `json:"skills,omitempty"`
	Needs          []string `json:"needs,omitempty"`
	Rank           int      `json:"rank,omitempty"`
}

// EffectiveRank returns the person's rank, or index+1 when none was assigned.
func (p PersonData) EffectiveRank(index int) int {
	if p.Rank > 0 {
		return p.Rank
	}
	return index + 1
}

// ClassRecommendation is a university course suggested for a skill.
type ClassRecommendation struct {
	ClassName   string `json:"className"`
	Description string `json:"description"`
}

// SearchField selects which profile attribute a directory search matches.
type SearchField string

const (
	SearchByName     SearchField = "name"
	SearchByIndustry SearchField = "industry"
)
