package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	RedisURL   string
	AuthSecret string

	// Rate-limit cooldowns are read by pkg/ratelimiter straight from the
	// environment (RATE_LIMIT_GLOBAL, RATE_LIMIT_THREAD, RATE_LIMIT_REPLY).
	StatsCacheTTL time.Duration
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		RedisURL:   os.Getenv("REDIS_URL"),
		AuthSecret: getEnv("AUTH_SECRET", "12345"),
	}

	var err error
	cfg.StatsCacheTTL, err = time.ParseDuration(getEnv("STATS_CACHE_TTL", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid STATS_CACHE_TTL: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
