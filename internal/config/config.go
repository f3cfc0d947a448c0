package config

import (
	"os"
	"time"
)

// Config holds all application configuration
type Config struct {
	Port          string
	MongoURI      string
	MongoDatabase string
	RedisURL      string

	// CORS
	AllowedOrigins string

	// Analytics response caching (0 disables caching)
	AnalyticsCacheTTL time.Duration

	// Interval for the background fleet-gauge refresh job
	StatsRefreshInterval time.Duration
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "3001"),
		MongoURI:      getEnv("MONGODB_URI", ""),
		MongoDatabase: getEnv("MONGODB_DATABASE", "creashort"),
		RedisURL:      getEnv("REDIS_URL", ""),

		AllowedOrigins: getEnv("ALLOWED_ORIGINS", ""),

		AnalyticsCacheTTL:    getDurationEnv("ANALYTICS_CACHE_TTL", 30*time.Second),
		StatsRefreshInterval: getDurationEnv("STATS_REFRESH_INTERVAL", 5*time.Minute),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil && parsed >= 0 {
			return parsed
		}
	}
	return defaultValue
}
