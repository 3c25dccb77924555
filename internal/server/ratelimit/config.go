package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // exact path, or a prefix when it ends with "/"
	Method string        // HTTP method
	Limit  int           // requests per window
	Window time.Duration // refill window
	Burst  int           // bucket capacity, Limit when 0
}

// LoadConfig reads RATE_LIMIT_* environment variables.
func LoadConfig() *Config {
	if !getEnvBool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", 1000),
		DefaultWindow:   getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Whitelist:       parseIPList(os.Getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:       parseIPList(os.Getenv("RATE_LIMIT_BLACKLIST")),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the per-route limits.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Upstream model calls
		{Path: "/api/gemini", Method: "POST", Limit: 20, Window: time.Hour, Burst: 5},
		{Path: "/api/lookup-skill-classes", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/api/resumeAnnotations", Method: "POST", Limit: 20, Window: time.Hour, Burst: 3},

		// Uploads
		{Path: "/api/connection_fetching", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/api/connection_fetching/stream", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/api/temp-management", Method: "POST", Limit: 120, Window: time.Minute, Burst: 20},

		// Session writes
		{Path: "/api/sessions", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},
		{Path: "/api/sessions/", Method: "PUT", Limit: 100, Window: time.Minute, Burst: 10},

		// Directory search
		{Path: "/api/searchByName", Method: "GET", Limit: 120, Window: time.Minute, Burst: 20},
		{Path: "/api/searchByIndustry", Method: "GET", Limit: 120, Window: time.Minute, Burst: 20},
	}
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
