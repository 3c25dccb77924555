package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// SessionConfig holds configuration for session token signing.
type SessionConfig struct {
	Secret   string `json:"secret,omitempty" yaml:"secret,omitempty"`
	TTLHours int    `json:"ttl_hours,omitempty" yaml:"ttl_hours,omitempty"`
}

// TTL returns the token lifetime.
func (c SessionConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// EnsureSecret fills an empty secret with random bytes and reports whether it
// did so. Tokens signed with a generated secret do not survive a restart.
func (c *SessionConfig) EnsureSecret() (bool, error) {
	if c.Secret != "" {
		return false, nil
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return false, fmt.Errorf("failed to generate session secret: %w", err)
	}
	c.Secret = hex.EncodeToString(buf)
	return true, nil
}

// normalize validates the configuration.
func (c *SessionConfig) normalize() error {
	if c.TTLHours < 1 {
		return fmt.Errorf("SESSION_TTL_HOURS must be at least 1 hour, got: %d", c.TTLHours)
	}
	if c.Secret != "" && len(c.Secret) < 16 {
		return fmt.Errorf("SESSION_SECRET must be at least 16 characters")
	}
	return nil
}
