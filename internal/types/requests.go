package types

import (
	"github.com/go-playground/validator/v10"
)

// validate is shared; validator caches struct metadata and is safe for concurrent use.
var validate = validator.New()

// SkillClassRequest is the body of /api/lookup-skill-classes.
type SkillClassRequest struct {
	University string   `json:"university" validate:"required"`
	Skills     []string `json:"skills" validate:"required,min=1"`
}

// Validate validates the SkillClassRequest using the validator.
func (r *SkillClassRequest) Validate() error {
	return validate.Struct(r)
}

// CreateSessionRequest starts a browsing session for a user.
type CreateSessionRequest struct {
	Name   string `json:"name" validate:"required,min=1"`
	School string `json:"school" validate:"required,min=1"`
}

// Validate validates the CreateSessionRequest using the validator.
func (r *CreateSessionRequest) Validate() error {
	return validate.Struct(r)
}

// ColdEmailRequest is the JSON form of /api/gemini.
// ProfileJSON holds the serialized PersonData the email is addressed to.
type ColdEmailRequest struct {
	ProfileJSON string `json:"profileJson"`
	ResumeText  string `json:"resumeText,omitempty"`
}

// SaveJSONRequest is the body of /api/temp-management?action=save-json.
type SaveJSONRequest struct {
	Data     any    `json:"data"`
	Filename string `json:"filename,omitempty"`
}

// LayoutRequest is the body of /api/network/layout.
type LayoutRequest struct {
	Connections   []PersonData `json:"connections,omitempty"`
	SessionID     string       `json:"session_id,omitempty"`
	ContainerSize float64      `json:"container_size,omitempty" validate:"omitempty,gte=100,lte=10000"`
}

// Validate validates the LayoutRequest using the validator.
func (r *LayoutRequest) Validate() error {
	return validate.Struct(r)
}

// PortfolioRequest is the body of /api/portfolio.
type PortfolioRequest struct {
	Connections []PersonData `json:"connections,omitempty"`
	University  string       `json:"university,omitempty"`
	SessionID   string       `json:"session_id,omitempty"`
}
