// Package config reads server configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all server configuration
type Config struct {
	Port          int
	StorageType   string // memory, redis or sqlite
	RedisURL      string
	SQLitePath    string
	QuestionsPath string
	LogLevel      slog.Level

	// AutoCredit pays the fireproof prize when a game is lost
	AutoCredit bool

	SessionTTL      time.Duration
	FinishedGameTTL time.Duration // Redis only; zero keeps finished games forever
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	level, err := parseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg := &Config{
		Port:            getEnvInt("PORT", 8080),
		StorageType:     strings.ToLower(getEnv("STORAGE_TYPE", "memory")),
		RedisURL:        getEnv("REDIS_URL", ""),
		SQLitePath:      getEnv("SQLITE_PATH", "./data/ladder.db"),
		QuestionsPath:   getEnv("QUESTIONS_PATH", "data/questions.yaml"),
		LogLevel:        level,
		AutoCredit:      getEnvBool("AUTO_CREDIT", false),
		SessionTTL:      getEnvDuration("SESSION_TTL", 24*time.Hour),
		FinishedGameTTL: getEnvDuration("FINISHED_GAME_TTL", 0),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}
	switch c.StorageType {
	case "memory":
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL required when STORAGE_TYPE=redis")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH required when STORAGE_TYPE=sqlite")
		}
	default:
		return fmt.Errorf("STORAGE_TYPE must be memory, redis or sqlite, got %q", c.StorageType)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	if c.FinishedGameTTL < 0 {
		return fmt.Errorf("FINISHED_GAME_TTL cannot be negative")
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
