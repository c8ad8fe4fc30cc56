// Package config loads the bootstrap settings mirror needs before the
// database is open: where the backend and database live.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Environment overrides.
const (
	EnvBackendURL = "MIRROR_BACKEND_URL"
	EnvToken      = "MIRROR_TOKEN"
	EnvDB         = "MIRROR_DB"
)

// Config holds settings from config.json and the environment.
type Config struct {
	BackendURL     string `json:"backend_url"`
	Token          string `json:"token"`
	DBPath         string `json:"db"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	Timezone       string `json:"timezone"`
}

func defaults() Config {
	return Config{
		TimeoutSeconds: 15,
		Timezone:       "Local",
	}
}

// DefaultPath returns ~/.config/mirror/config.json
func DefaultPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "mirror", "config.json"), nil
}

// Load reads path (the default path when empty) and then applies the
// environment. A missing or malformed file gives defaults.
func Load(path string) Config {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return applyEnv(defaults())
		}
		path = p
	}
	return applyEnv(loadFrom(path))
}

// LoadFile reads path alone, without the environment. Use it before
// Save so that overrides are not written back.
func LoadFile(path string) Config { return loadFrom(path) }

func loadFrom(path string) Config {
	data, err := os.ReadFile(path)
	if err != nil {
		return defaults()
	}

	cfg := defaults()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return defaults()
	}
	return cfg
}

// applyEnv overlays non-empty environment variables.
func applyEnv(cfg Config) Config {
	if v := strings.TrimSpace(os.Getenv(EnvBackendURL)); v != "" {
		cfg.BackendURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvToken)); v != "" {
		cfg.Token = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDB)); v != "" {
		cfg.DBPath = v
	}
	return cfg
}

// Timeout is the request timeout, never below one second.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds < 1 {
		return time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Location resolves Timezone, falling back to the local zone.
func (c Config) Location() *time.Location {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Save writes cfg to path as indented JSON, creating the directory.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Set changes one key by its JSON name.
func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "backend_url":
		c.BackendURL = value
	case "token":
		c.Token = value
	case "db":
		c.DBPath = value
	case "timeout_seconds":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("timeout_seconds must be a positive integer, got %q", value)
		}
		c.TimeoutSeconds = n
	case "timezone":
		if value != "Local" {
			if _, err := time.LoadLocation(value); err != nil {
				return fmt.Errorf("unknown timezone %q: %w", value, err)
			}
		}
		c.Timezone = value
	default:
		return fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys(), ", "))
	}
	return nil
}

// Keys lists the settable keys.
func Keys() []string {
	keys := []string{"backend_url", "token", "db", "timeout_seconds", "timezone"}
	sort.Strings(keys)
	return keys
}

// Entries returns key/value pairs for display with the token masked.
func (c Config) Entries() [][2]string {
	return [][2]string{
		{"backend_url", c.BackendURL},
		{"db", c.DBPath},
		{"timeout_seconds", strconv.Itoa(c.TimeoutSeconds)},
		{"timezone", c.Timezone},
		{"token", MaskToken(c.Token)},
	}
}

// MaskToken keeps the last four characters of a token.
func MaskToken(tok string) string {
	if tok == "" {
		return ""
	}
	if len(tok) <= 4 {
		return "****"
	}
	return strings.Repeat("*", 8) + tok[len(tok)-4:]
}
