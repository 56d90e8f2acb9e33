package config

import (
	"fmt"
	"os"
)

// Config holds application configuration
type Config struct {
	DatabaseURL     string
	ServerPort      string
	BaseURL         string
	FrontendURL     string
	JWTSecret       string
	GoogleClientID  string
	GoogleJWKSURL   string
	RedisURL        string
	EnableHSTS      bool
	ServerDebugMode bool
	OTELEnabled     bool
	OTELEndpoint    string
}

// DefaultGoogleJWKSURL is where Google publishes the signing keys for ID
// tokens. Overridable for tests.
const DefaultGoogleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"

// Load loads configuration from environment variables. The signing secret and
// database URL are hard requirements: starting without them would silently
// produce a server that cannot authenticate anyone.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		BaseURL:         getEnv("BASE_URL", "http://localhost:8080"),
		FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:3000"),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		GoogleClientID:  getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleJWKSURL:   getEnv("GOOGLE_JWKS_URL", DefaultGoogleJWKSURL),
		RedisURL:        getEnv("REDIS_URL", "redis://localhost:6379/0"),
		EnableHSTS:      getEnvBool("ENABLE_HSTS", false),
		ServerDebugMode: getEnvBool("SERVER_DEBUG_MODE", false),
		OTELEnabled:     getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required (session tokens cannot be signed without it)")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
