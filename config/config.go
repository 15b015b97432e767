package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port             string
	AllowedOrigins   []string
	AutoPlayInterval time.Duration

	// Rate limiter maintenance sweep
	RateLimitSweepInterval time.Duration
	RateLimitMaxAge        time.Duration
}

// Load reads .env (if present) and environment variables, falling back to
// defaults that match production behavior.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] No .env file found, reading environment variables")
	}

	return Config{
		Port:                   getEnv("PORT", "4000"),
		AllowedOrigins:         splitEnv("ALLOWED_ORIGINS", "http://localhost:3000"),
		AutoPlayInterval:       getEnvDurationMS("AUTOPLAY_INTERVAL_MS", 3000),
		RateLimitSweepInterval: getEnvDurationMS("RATE_LIMIT_SWEEP_INTERVAL_MS", 60000),
		RateLimitMaxAge:        getEnvDurationMS("RATE_LIMIT_MAX_AGE_MS", 300000),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
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

func getEnvDurationMS(key string, fallbackMS int) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return time.Duration(fallbackMS) * time.Millisecond
	}
	ms, err := strconv.Atoi(raw)
	if err != nil || ms <= 0 {
		log.Printf("[WARN] invalid %s=%q, using default %dms", key, raw, fallbackMS)
		return time.Duration(fallbackMS) * time.Millisecond
	}
	return time.Duration(ms) * time.Millisecond
}
