// Package config loads server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backends.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Auth modes.
const (
	AuthJWT = "jwt"
	AuthDev = "dev"
)

// Config is the full server configuration.
type Config struct {
	Port int

	StorageBackend string
	DBPath         string
	DatabaseURL    string

	AuthMode   string
	JWTSecret  string
	JWTTTL     time.Duration
	DevAccount string

	DraftTTL           time.Duration
	DraftSweepInterval time.Duration

	LogLevel  string
	LogFormat string
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration (e.g. 30m): %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, d)
	}
	return d, nil
}

// Load reads the configuration from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", BackendSQLite)),
		DBPath:         getEnv("DB_PATH", "./data/splitopus.db"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		AuthMode:       strings.ToLower(getEnv("AUTH_MODE", AuthJWT)),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		DevAccount:     getEnv("DEV_ACCOUNT", "dev"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil || port <= 0 || port > 65535 {
		return Config{}, fmt.Errorf("PORT must be a valid port number, got %q", os.Getenv("PORT"))
	}
	cfg.Port = port

	if cfg.JWTTTL, err = getDuration("JWT_TTL", 30*24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.DraftTTL, err = getDuration("DRAFT_TTL", 30*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.DraftSweepInterval, err = getDuration("DRAFT_SWEEP_INTERVAL", 5*time.Minute); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.StorageBackend {
	case BackendSQLite:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when STORAGE_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be %q or %q, got %q", BackendSQLite, BackendPostgres, c.StorageBackend)
	}

	switch c.AuthMode {
	case AuthDev:
	case AuthJWT:
		if c.JWTSecret == "" {
			return errors.New("JWT_SECRET is required when AUTH_MODE=jwt")
		}
	default:
		return fmt.Errorf("AUTH_MODE must be %q or %q, got %q", AuthJWT, AuthDev, c.AuthMode)
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}

	if c.DraftTTL < time.Second {
		return fmt.Errorf("DRAFT_TTL must be at least 1s, got %s", c.DraftTTL)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
