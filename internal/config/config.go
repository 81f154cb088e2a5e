// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading. Values start
// from development defaults, are overlaid by an optional YAML file and
// finally by environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// History backends.
const (
	BackendMemory = "memory"
	BackendValkey = "valkey"
)

// Config holds all application configuration values.
type Config struct {
	// Server settings
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Env      string `yaml:"env"` // "development", "production", "testing"
	LogLevel string `yaml:"log_level"`

	// Valkey (Redis-compatible) for history and the QR cache
	ValkeyHost     string `yaml:"valkey_host"`
	ValkeyPort     string `yaml:"valkey_port"`
	ValkeyPassword string `yaml:"valkey_password"`

	// Session history
	HistoryBackend  string   `yaml:"history_backend"`  // "memory" or "valkey"
	HistoryCapacity int      `yaml:"history_capacity"` // 0 = unbounded
	SessionTTL      Duration `yaml:"session_ttl"`

	// Rendering
	QRCacheTTL    Duration `yaml:"qr_cache_ttl"` // 0 disables the cache
	MaxUploadMB   int      `yaml:"max_upload_mb"`
	EscapeURLText bool     `yaml:"escape_url_text"`

	// Rate limiting of render requests per client IP
	RateLimit  int      `yaml:"rate_limit"`
	RateWindow Duration `yaml:"rate_window"`
}

// Duration is a wrapper around time.Duration that supports YAML unmarshalling
// from human-readable strings like "30s", "5m", "1h".
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// MarshalYAML implements the yaml.Marshaler interface for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// defaults returns a Config populated with development defaults.
func defaults() *Config {
	return &Config{
		Host:            "0.0.0.0",
		Port:            "8080",
		Env:             "development",
		LogLevel:        "info",
		ValkeyHost:      "localhost",
		ValkeyPort:      "6379",
		HistoryBackend:  BackendMemory,
		HistoryCapacity: 0,
		SessionTTL:      Duration{24 * time.Hour},
		QRCacheTTL:      Duration{10 * time.Minute},
		MaxUploadMB:     10,
		RateLimit:       30,
		RateWindow:      Duration{time.Minute},
	}
}

// Load reads configuration from the YAML file at path (skipped when path is
// empty or the file does not exist), then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
			// Missing file: keep defaults.
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to cfg.
func applyEnvOverrides(cfg *Config) error {
	cfg.Host = envOrDefault("APP_HOST", cfg.Host)
	cfg.Port = envOrDefault("APP_PORT", cfg.Port)
	cfg.Env = envOrDefault("APP_ENV", cfg.Env)
	cfg.LogLevel = envOrDefault("LOG_LEVEL", cfg.LogLevel)

	cfg.ValkeyHost = envOrDefault("VALKEY_HOST", cfg.ValkeyHost)
	cfg.ValkeyPort = envOrDefault("VALKEY_PORT", cfg.ValkeyPort)
	cfg.ValkeyPassword = envOrDefault("VALKEY_PASSWORD", cfg.ValkeyPassword)

	cfg.HistoryBackend = strings.ToLower(envOrDefault("HISTORY_BACKEND", cfg.HistoryBackend))

	var err error
	if cfg.HistoryCapacity, err = envInt("HISTORY_CAPACITY", cfg.HistoryCapacity); err != nil {
		return err
	}
	if cfg.MaxUploadMB, err = envInt("MAX_UPLOAD_MB", cfg.MaxUploadMB); err != nil {
		return err
	}
	if cfg.RateLimit, err = envInt("RATE_LIMIT", cfg.RateLimit); err != nil {
		return err
	}
	if cfg.SessionTTL, err = envDuration("SESSION_TTL", cfg.SessionTTL); err != nil {
		return err
	}
	if cfg.QRCacheTTL, err = envDuration("QR_CACHE_TTL", cfg.QRCacheTTL); err != nil {
		return err
	}
	if cfg.RateWindow, err = envDuration("RATE_WINDOW", cfg.RateWindow); err != nil {
		return err
	}

	if v := os.Getenv("ESCAPE_URL_TEXT"); v != "" {
		switch strings.ToLower(v) {
		case "true", "1", "yes":
			cfg.EscapeURLText = true
		case "false", "0", "no":
			cfg.EscapeURLText = false
		default:
			return fmt.Errorf("ESCAPE_URL_TEXT: invalid boolean %q", v)
		}
	}
	return nil
}

func (c *Config) validate() error {
	switch c.HistoryBackend {
	case BackendMemory, BackendValkey:
	default:
		return fmt.Errorf("history backend must be %q or %q, got %q", BackendMemory, BackendValkey, c.HistoryBackend)
	}
	if c.HistoryCapacity < 0 {
		return fmt.Errorf("history capacity must not be negative")
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("max upload size must be positive")
	}
	if c.RateLimit <= 0 || c.RateWindow.Duration <= 0 {
		return fmt.Errorf("rate limit and window must be positive")
	}
	if c.SessionTTL.Duration <= 0 {
		return fmt.Errorf("session TTL must be positive")
	}
	if c.Env == "production" && c.HistoryBackend == BackendValkey && c.ValkeyPassword == "" {
		return fmt.Errorf("VALKEY_PASSWORD must be set in production")
	}
	return nil
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// UsesValkey reports whether history is kept in Valkey.
func (c *Config) UsesValkey() bool {
	return c.HistoryBackend == BackendValkey
}

// QRCacheEnabled reports whether encoded bitmaps are cached. The cache lives
// in Valkey, so it is only used with the Valkey backend.
func (c *Config) QRCacheEnabled() bool {
	return c.UsesValkey() && c.QRCacheTTL.Duration > 0
}

// MaxUploadBytes returns the background upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, v)
	}
	return n, nil
}

func envDuration(key string, fallback Duration) (Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return Duration{}, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return Duration{d}, nil
}
