package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/02loveslollipop/borsuk-ulam-viewer/services/api/repeat"
)

const defaultEngineTimeout = 60 * time.Second

// Config holds environment-driven settings for the viewer API.
type Config struct {
	Port              int
	EngineURL         string
	EngineDatabaseURL string
	EngineTimeout     time.Duration
	RepeatDelay       time.Duration
	RepeatInterval    time.Duration
	BearerToken       string
}

// Load reads configuration from environment variables (optionally .env).
func Load() (Config, error) {
	_ = godotenv.Load() // ignore missing file
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Port:           8080,
		EngineTimeout:  defaultEngineTimeout,
		RepeatDelay:    repeat.DefaultDelay,
		RepeatInterval: repeat.DefaultInterval,
	}

	cfg.EngineURL = strings.TrimSpace(getenv("ENGINE_URL"))
	cfg.EngineDatabaseURL = strings.TrimSpace(getenv("ENGINE_DATABASE_URL"))
	if cfg.EngineURL == "" && cfg.EngineDatabaseURL == "" {
		return cfg, errors.New("ENGINE_URL or ENGINE_DATABASE_URL is required")
	}

	if portStr := getenv("PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid PORT: %s", portStr)
		}
	} else if portStr := getenv("API_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid API_PORT: %s", portStr)
		}
	}

	var err error
	if cfg.EngineTimeout, err = duration(getenv, "ENGINE_TIMEOUT", cfg.EngineTimeout); err != nil {
		return cfg, err
	}
	if cfg.RepeatDelay, err = duration(getenv, "REPEAT_DELAY", cfg.RepeatDelay); err != nil {
		return cfg, err
	}
	if cfg.RepeatInterval, err = duration(getenv, "REPEAT_INTERVAL", cfg.RepeatInterval); err != nil {
		return cfg, err
	}

	cfg.BearerToken = getenv("API_BEARER_TOKEN")

	return cfg, nil
}

func duration(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return def, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

// ListenAddr returns the host:port string for the HTTP server.
func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}
