// Package config provides configuration loading and validation for the gateway.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied by MergeWithDefaults when neither the file nor the
// environment sets a value.
const (
	DefaultPort            = 8080
	DefaultScratchDir      = "temp"
	DefaultUpstreamTimeout = 2 * time.Minute
	DefaultMaxUploadMB     = 32
	DefaultSessionTTLHours = 24
)

// Config represents the gateway configuration. Every field can come from the
// environment or a JSON/YAML file; see FromEnv for the variable names.
type Config struct {
	Port int `json:"port,omitempty" yaml:"port,omitempty"`

	// Upstreams
	ServiceURL      string `json:"service_url,omitempty" yaml:"service_url,omitempty"`           // Connection, Gemini and annotation services
	DirectoryURL    string `json:"directory_url,omitempty" yaml:"directory_url,omitempty"`       // Profile directory API
	UpstreamTimeout string `json:"upstream_timeout,omitempty" yaml:"upstream_timeout,omitempty"` // Go duration, e.g. "90s"

	// Local generation
	GeminiAPIKey string `json:"gemini_api_key,omitempty" yaml:"gemini_api_key,omitempty"`
	GeminiModel  string `json:"gemini_model,omitempty" yaml:"gemini_model,omitempty"`

	// Storage
	DatabaseURL string   `json:"database_url,omitempty" yaml:"database_url,omitempty"`
	ScratchDir  string   `json:"scratch_dir,omitempty" yaml:"scratch_dir,omitempty"`
	MaxUploadMB int      `json:"max_upload_mb,omitempty" yaml:"max_upload_mb,omitempty"`
	S3          S3Config `json:"s3,omitempty" yaml:"s3,omitempty"`

	// Messaging
	RabbitMQURL      string `json:"rabbitmq_url,omitempty" yaml:"rabbitmq_url,omitempty"`
	RabbitMQExchange string `json:"rabbitmq_exchange,omitempty" yaml:"rabbitmq_exchange,omitempty"`

	// HTTP
	AllowedOrigins []string `json:"allowed_origins,omitempty" yaml:"allowed_origins,omitempty"`

	Session SessionConfig `json:"session,omitempty" yaml:"session,omitempty"`

	Verbose bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

// S3Config locates the optional scratch mirror bucket.
type S3Config struct {
	Bucket    string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Prefix    string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Region    string `json:"region,omitempty" yaml:"region,omitempty"`
	Endpoint  string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	AccessKey string `json:"access_key,omitempty" yaml:"access_key,omitempty"`
	SecretKey string `json:"secret_key,omitempty" yaml:"secret_key,omitempty"`
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Load builds the effective configuration: file values (when path is set)
// take precedence over the environment, and built-in defaults fill the rest.
func Load(path string) (*Config, error) {
	env := FromEnv()
	cfg := env

	if path != "" {
		file, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = file.MergeWithDefaults(env)
	}

	cfg = cfg.MergeWithDefaults(Defaults())
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Defaults returns the built-in defaults.
func Defaults() Config {
	return Config{
		Port:            DefaultPort,
		ScratchDir:      DefaultScratchDir,
		UpstreamTimeout: DefaultUpstreamTimeout.String(),
		MaxUploadMB:     DefaultMaxUploadMB,
		Session:         SessionConfig{TTLHours: DefaultSessionTTLHours},
	}
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535, got %d", c.Port)
	}
	if c.MaxUploadMB < 0 {
		return fmt.Errorf("config error: 'max_upload_mb' must be non-negative")
	}
	if c.UpstreamTimeout != "" {
		d, err := time.ParseDuration(c.UpstreamTimeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("config error: 'upstream_timeout' must be a positive duration, got %q", c.UpstreamTimeout)
		}
	}

	for name, raw := range map[string]string{
		"service_url":   c.ServiceURL,
		"directory_url": c.DirectoryURL,
		"s3.endpoint":   c.S3.Endpoint,
	} {
		if err := validateURL(raw, "http", "https"); err != nil {
			return fmt.Errorf("config error: '%s' %w", name, err)
		}
	}
	if err := validateURL(c.RabbitMQURL, "amqp", "amqps"); err != nil {
		return fmt.Errorf("config error: 'rabbitmq_url' %w", err)
	}

	return c.Session.normalize()
}

func validateURL(raw string, schemes ...string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return fmt.Errorf("is not a valid URL: %q", raw)
	}
	for _, s := range schemes {
		if u.Scheme == s {
			return nil
		}
	}
	return fmt.Errorf("must use scheme %s, got %q", strings.Join(schemes, " or "), u.Scheme)
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	mergeString(&result.ServiceURL, defaults.ServiceURL)
	mergeString(&result.DirectoryURL, defaults.DirectoryURL)
	mergeString(&result.UpstreamTimeout, defaults.UpstreamTimeout)
	mergeString(&result.GeminiAPIKey, defaults.GeminiAPIKey)
	mergeString(&result.GeminiModel, defaults.GeminiModel)
	mergeString(&result.DatabaseURL, defaults.DatabaseURL)
	mergeString(&result.ScratchDir, defaults.ScratchDir)
	mergeString(&result.RabbitMQURL, defaults.RabbitMQURL)
	mergeString(&result.RabbitMQExchange, defaults.RabbitMQExchange)
	mergeString(&result.S3.Bucket, defaults.S3.Bucket)
	mergeString(&result.S3.Prefix, defaults.S3.Prefix)
	mergeString(&result.S3.Region, defaults.S3.Region)
	mergeString(&result.S3.Endpoint, defaults.S3.Endpoint)
	mergeString(&result.S3.AccessKey, defaults.S3.AccessKey)
	mergeString(&result.S3.SecretKey, defaults.S3.SecretKey)
	mergeString(&result.Session.Secret, defaults.Session.Secret)

	// Int fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.MaxUploadMB == 0 {
		result.MaxUploadMB = defaults.MaxUploadMB
	}
	if result.Session.TTLHours == 0 {
		result.Session.TTLHours = defaults.Session.TTLHours
	}

	if len(result.AllowedOrigins) == 0 {
		result.AllowedOrigins = defaults.AllowedOrigins
	}

	// Bools cannot distinguish unset from false, so either side enables.
	result.Verbose = result.Verbose || defaults.Verbose

	return result
}

func mergeString(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

// Timeout returns the upstream timeout, or the default when unset or invalid.
func (c *Config) Timeout() time.Duration {
	if d, err := time.ParseDuration(c.UpstreamTimeout); err == nil && d > 0 {
		return d
	}
	return DefaultUpstreamTimeout
}

// MaxUploadBytes returns the multipart memory limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	mb := c.MaxUploadMB
	if mb <= 0 {
		mb = DefaultMaxUploadMB
	}
	return int64(mb) << 20
}
