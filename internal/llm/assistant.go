package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/career-network/internal/prompts"
)

// Assistant produces the networking content normally generated by the
// upstream Gemini service.
type Assistant struct {
	client Client
	logger *zap.Logger
}

// NewAssistant wraps client. A nil logger disables logging.
func NewAssistant(client Client, logger *zap.Logger) *Assistant {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assistant{client: client, logger: logger.Named("llm")}
}

// ColdEmail drafts an outreach email from a student, described by resumeText,
// to the professional in profileJSON.
func (a *Assistant) ColdEmail(ctx context.Context, profileJSON, resumeText string) (string, error) {
	prompt, err := prompts.Render(prompts.Networking, prompts.KeyColdEmail, map[string]string{
		"Profile": profileJSON,
		"Resume":  resumeText,
	})
	if err != nil {
		return "", err
	}

	email, err := a.client.GenerateContent(ctx, prompt, TierStandard)
	if err != nil {
		return "", fmt.Errorf("failed to generate cold email: %w", err)
	}
	a.logger.Debug("cold email generated", zap.Int("chars", len(email)))
	return strings.TrimSpace(email), nil
}

// LookupClasses recommends university courses for skills. The reply is the
// raw JSON document produced by the model.
func (a *Assistant) LookupClasses(ctx context.Context, university string, skills []string) ([]byte, error) {
	prompt, err := prompts.Render(prompts.Networking, prompts.KeyLookupSkillClasses, map[string]string{
		"University": university,
		"Skills":     strings.Join(skills, ", "),
	})
	if err != nil {
		return nil, err
	}

	out, err := a.client.GenerateJSON(ctx, prompt, TierLite)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup skill classes: %w", err)
	}
	a.logger.Debug("skill classes generated", zap.String("university", university), zap.Int("skills", len(skills)))
	return []byte(out), nil
}
