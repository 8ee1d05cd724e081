package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config aggregates application configuration values loaded from environment variables.
type Config struct {
	Env              string
	APIBaseURL       string
	HTTPTimeout      time.Duration
	ChatPollInterval time.Duration
	SearchDebounce   time.Duration
	NearBottomPx     int
	PageSize         int
	StateDir         string
	StubHTTPAddr     string
	StubJWTSecret    string
	StubTokenTTL     time.Duration
	ListingFixtures  string
}

// Load parses configuration from the current environment.
func Load() (Config, error) {
	cfg := Config{
		Env:             getEnv("APP_ENV", "dev"),
		APIBaseURL:      getEnv("API_BASE_URL", "http://localhost:8080/api"),
		StateDir:        os.Getenv("STATE_DIR"),
		StubHTTPAddr:    getEnv("STUB_HTTP_ADDR", ":8080"),
		StubJWTSecret:   getEnv("STUB_JWT_SECRET", "unimarket-dev-secret"),
		ListingFixtures: os.Getenv("LISTING_FIXTURES"),
	}

	timeout, err := parseDurationEnv("HTTP_TIMEOUT", 15*time.Second)
	if err != nil {
		return Config{}, err
	}
	cfg.HTTPTimeout = timeout

	poll, err := parseDurationEnv("CHAT_POLL_INTERVAL", 3*time.Second)
	if err != nil {
		return Config{}, err
	}
	cfg.ChatPollInterval = poll

	debounce, err := parseDurationEnv("SEARCH_DEBOUNCE", 400*time.Millisecond)
	if err != nil {
		return Config{}, err
	}
	cfg.SearchDebounce = debounce

	ttl, err := parseDurationEnv("STUB_TOKEN_TTL", 24*time.Hour)
	if err != nil {
		return Config{}, err
	}
	cfg.StubTokenTTL = ttl

	nearBottom, err := parseIntEnv("NEAR_BOTTOM_PX", 100)
	if err != nil {
		return Config{}, err
	}
	cfg.NearBottomPx = nearBottom

	pageSize, err := parseIntEnv("PAGE_SIZE", 16)
	if err != nil {
		return Config{}, err
	}
	cfg.PageSize = pageSize

	if cfg.StateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		cfg.StateDir = filepath.Join(home, ".unimarket")
	}
	if cfg.APIBaseURL == "" {
		return Config{}, fmt.Errorf("API_BASE_URL is required")
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func parseIntEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("invalid %s integer: %q", key, raw)
	}
	return value, nil
}
