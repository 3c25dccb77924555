package config

import (
	"os"
	"strconv"
	"strings"
)

// FromEnv reads configuration from environment variables. Where the
// browser-era deployment used a NEXT_PUBLIC_ name, both are accepted and the
// unprefixed one wins.
func FromEnv() Config {
	return Config{
		Port:             getEnvInt(0, "PORT"),
		ServiceURL:       getEnvString("SSE_BASE_URL", "NEXT_PUBLIC_SSE_BASE_URL"),
		DirectoryURL:     getEnvString("API_BASE", "NEXT_PUBLIC_API_BASE"),
		UpstreamTimeout:  getEnvString("UPSTREAM_TIMEOUT"),
		GeminiAPIKey:     getEnvString("GEMINI_API_KEY"),
		GeminiModel:      getEnvString("GEMINI_MODEL"),
		DatabaseURL:      getEnvString("DATABASE_URL"),
		ScratchDir:       getEnvString("SCRATCH_DIR"),
		MaxUploadMB:      getEnvInt(0, "MAX_UPLOAD_MB"),
		RabbitMQURL:      getEnvString("RABBITMQ_URL"),
		RabbitMQExchange: getEnvString("RABBITMQ_EXCHANGE"),
		AllowedOrigins:   parseList(getEnvString("CORS_ALLOWED_ORIGINS")),
		S3: S3Config{
			Bucket:    getEnvString("S3_BUCKET"),
			Prefix:    getEnvString("S3_PREFIX"),
			Region:    getEnvString("S3_REGION", "AWS_REGION"),
			Endpoint:  getEnvString("S3_ENDPOINT"),
			AccessKey: getEnvString("S3_ACCESS_KEY_ID"),
			SecretKey: getEnvString("S3_SECRET_ACCESS_KEY"),
		},
		Session: SessionConfig{
			Secret:   getEnvString("SESSION_SECRET"),
			TTLHours: getEnvInt(0, "SESSION_TTL_HOURS"),
		},
		Verbose: getEnvBool("VERBOSE"),
	}
}

// getEnvString returns the first non-empty variable among keys.
func getEnvString(keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			return value
		}
	}
	return ""
}

// getEnvInt returns the first variable among keys that parses as an int.
func getEnvInt(defaultValue int, keys ...string) int {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			if intValue, err := strconv.Atoi(value); err == nil {
				return intValue
			}
		}
	}
	return defaultValue
}

func getEnvBool(key string) bool {
	b, _ := strconv.ParseBool(os.Getenv(key))
	return b
}

// parseList splits a comma-separated list, dropping blanks.
func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
