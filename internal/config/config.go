package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the scoring service
type Config struct {
	Port     string
	GinMode  string
	DataDir  string
	CacheTTL time.Duration

	CollectorBaseURL   string
	ClimateModelURL    string
	GeographicModelURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	IPLimitPerMin int

	AllowedOrigins []string
}

// Load reads configuration from the environment, consulting a .env file
// if one is present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment variables")
	}

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		GinMode:  getEnv("GIN_MODE", "release"),
		DataDir:  getEnv("DATA_DIR", "./data"),
		CacheTTL: getDurationEnv("CACHE_TTL", 10*time.Minute),

		CollectorBaseURL:   getEnv("COLLECTOR_BASE_URL", "http://localhost:9100"),
		ClimateModelURL:    getEnv("CLIMATE_MODEL_URL", "http://localhost:9201"),
		GeographicModelURL: getEnv("GEOGRAPHIC_MODEL_URL", "http://localhost:9202"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		IPLimitPerMin: getIntEnv("IP_LIMIT_PER_MIN", 60),

		AllowedOrigins: splitEnv("ALLOWED_ORIGINS", "http://localhost:3000"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.CollectorBaseURL == "" {
		return fmt.Errorf("COLLECTOR_BASE_URL must not be empty")
	}
	if c.ClimateModelURL == "" {
		return fmt.Errorf("CLIMATE_MODEL_URL must not be empty")
	}
	if c.GeographicModelURL == "" {
		return fmt.Errorf("GEOGRAPHIC_MODEL_URL must not be empty")
	}
	if c.IPLimitPerMin <= 0 {
		return fmt.Errorf("IP_LIMIT_PER_MIN must be positive, got %d", c.IPLimitPerMin)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("Invalid integer in environment, using default", "key", key, "value", value, "default", fallback)
		return fallback
	}
	return parsed
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("Invalid duration in environment, using default", "key", key, "value", value, "default", fallback)
		return fallback
	}
	return parsed
}

func splitEnv(key, fallback string) []string {
	raw := getEnv(key, fallback)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
