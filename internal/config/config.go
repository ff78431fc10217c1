package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port     string
	Env      string
	LogLevel string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// JWT
	JWTSecret     string
	JWTExpiration time.Duration

	// CORS
	CORSAllowedOrigins []string

	// Matchmaking
	PairingInterval time.Duration
	ReaperInterval  time.Duration
	TicketTTL       time.Duration

	// Notifications
	NotificationQueue string
}

func Load() (*Config, error) {
	// Load .env when present
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		Env:               getEnv("ENV", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		RedisURL:          getEnv("REDIS_URL", ""),
		JWTSecret:         getEnv("JWT_SECRET", "your-secret-key"),
		JWTExpiration:     parseDuration(getEnv("JWT_EXPIRATION", "24h"), 24*time.Hour),
		PairingInterval:   parseDuration(getEnv("PAIRING_INTERVAL", "30s"), 30*time.Second),
		ReaperInterval:    parseDuration(getEnv("REAPER_INTERVAL", "5m"), 5*time.Minute),
		TicketTTL:         parseDuration(getEnv("TICKET_TTL", "15m"), 15*time.Minute),
		NotificationQueue: getEnv("NOTIFICATION_QUEUE", "events"),
		CORSAllowedOrigins: []string{
			getEnv("CORS_ORIGIN", "http://localhost:3000"),
		},
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultValue
	}
	return d
}
