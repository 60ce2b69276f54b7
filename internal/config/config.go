// Package config loads application configuration from environment variables.
package config

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	APIURL      string
	DBPath      string
	SecretKey   []byte // nil when BAKELINK_SECRET_KEY is unset.
	HTTPTimeout time.Duration
	HTTPCache   bool
	LogLevel    slog.Level
}

// HasSecretKey returns true when stored credentials will be encrypted.
func (c *Config) HasSecretKey() bool {
	return c.SecretKey != nil
}

// Overrides carries command-line values that take precedence over the environment.
// Empty fields are ignored.
type Overrides struct {
	APIURL string
	DBPath string
}

// Load reads configuration from environment variables and returns a validated Config.
// BAKELINK_API_URL is required and must be an absolute http(s) URL.
// Optional variables with defaults: BAKELINK_DB_PATH ($XDG_DATA_HOME/bakelink/bakelink.db),
// BAKELINK_SECRET_KEY (unset, 64 hex characters), BAKELINK_HTTP_TIMEOUT (0, no timeout),
// BAKELINK_HTTP_CACHE (false), BAKELINK_LOG_LEVEL (warn).
func Load() (*Config, error) {
	return LoadWith(Overrides{})
}

// LoadWith is Load with o applied on top of the environment.
func LoadWith(o Overrides) (*Config, error) {
	apiURL := strings.TrimSpace(os.Getenv("BAKELINK_API_URL"))
	if o.APIURL != "" {
		apiURL = strings.TrimSpace(o.APIURL)
	}
	if apiURL == "" {
		return nil, fmt.Errorf("BAKELINK_API_URL is required")
	}
	if err := ValidateAPIURL(apiURL); err != nil {
		return nil, fmt.Errorf("BAKELINK_API_URL: %w", err)
	}

	dbPath := DefaultDBPath()
	if v, ok := os.LookupEnv("BAKELINK_DB_PATH"); ok && v != "" {
		dbPath = v
	}
	if o.DBPath != "" {
		dbPath = o.DBPath
	}

	var secretKey []byte
	if v, ok := os.LookupEnv("BAKELINK_SECRET_KEY"); ok && v != "" {
		key, err := hex.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("BAKELINK_SECRET_KEY is not valid hex: %w", err)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("BAKELINK_SECRET_KEY must decode to 32 bytes, got %d", len(key))
		}
		secretKey = key
	}

	var httpTimeout time.Duration
	if v, ok := os.LookupEnv("BAKELINK_HTTP_TIMEOUT"); ok && v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("BAKELINK_HTTP_TIMEOUT has invalid duration %q: %w", v, err)
		}
		if parsed < 0 {
			return nil, fmt.Errorf("BAKELINK_HTTP_TIMEOUT must not be negative, got %s", parsed)
		}
		httpTimeout = parsed
	}

	httpCache := false
	if v, ok := os.LookupEnv("BAKELINK_HTTP_CACHE"); ok && v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("BAKELINK_HTTP_CACHE has invalid boolean %q: %w", v, err)
		}
		httpCache = parsed
	}

	logLevel := slog.LevelWarn
	if v, ok := os.LookupEnv("BAKELINK_LOG_LEVEL"); ok && v != "" {
		if err := logLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("BAKELINK_LOG_LEVEL has invalid level %q: %w", v, err)
		}
	}

	return &Config{
		APIURL:      apiURL,
		DBPath:      dbPath,
		SecretKey:   secretKey,
		HTTPTimeout: httpTimeout,
		HTTPCache:   httpCache,
		LogLevel:    logLevel,
	}, nil
}

// ValidateAPIURL checks that raw is an absolute http or https URL.
func ValidateAPIURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL %q must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("URL %q has no host", raw)
	}
	return nil
}

// DefaultDBPath returns the database location under the XDG data directory.
// Checks XDG_DATA_HOME first, falls back to ~/.local/share.
func DefaultDBPath() string {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		base = filepath.Join(os.Getenv("HOME"), ".local", "share")
	}
	return filepath.Join(base, "bakelink", "bakelink.db")
}
