// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"strconv"
	"strings"
)

type Config struct {
	// HTTP server
	Port           string
	AllowedOrigins []string
	MaxUploadBytes int64

	// Gemini (categorizer + advisor). An empty API key disables the
	// model paths; classification then runs on the rule engine alone.
	GeminiAPIKey string
	GeminiModel  string

	// Logging
	LogLevel string
}

func Load(getenv func(string) string) *Config {
	return &Config{
		Port:           getEnv(getenv, "PORT", "8112"),
		AllowedOrigins: splitList(getEnv(getenv, "ALLOWED_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")),
		MaxUploadBytes: getEnvInt64(getenv, "MAX_UPLOAD_BYTES", 16<<20),
		GeminiAPIKey:   getenv("GEMINI_API_KEY"),
		GeminiModel:    getEnv(getenv, "GEMINI_MODEL", "gemini-2.5-flash"),
		LogLevel:       getEnv(getenv, "LOG_LEVEL", "info"),
	}
}

// Validate returns an error describing every invalid setting at once.
func (c *Config) Validate() error {
	var problems []string

	if _, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("PORT must be numeric, got %q", c.Port))
	}
	if c.MaxUploadBytes <= 0 {
		problems = append(problems, "MAX_UPLOAD_BYTES must be positive")
	}
	if c.GeminiModel == "" {
		problems = append(problems, "GEMINI_MODEL must not be empty")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(getenv func(string) string, key, fallback string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(getenv func(string) string, key string, fallback int64) int64 {
	v := getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
