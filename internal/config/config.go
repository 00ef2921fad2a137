// Package config loads server configuration from the environment, validates
// it, and applies defaults. Secrets and tunables come from env vars; a .env
// file, when present, is loaded by the entry point before Load runs.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/avolkov/notekeep/internal/ratelimit"
)

// NotConfigured is surfaced on the dashboard when no sample API key is set.
const NotConfigured = "Not configured"

// Config holds all application configuration.
type Config struct {
	ListenAddr string // NOTEKEEP_ADDR
	DataDir    string // NOTEKEEP_DATA_DIR, home of users.json and notes.json

	// SampleAPIKey is an optional value surfaced to the presentation layer
	// on the dashboard. It is not used by core logic.
	SampleAPIKey string // SAMPLE_API_KEY

	RateLimit ratelimit.Config // NOTEKEEP_LOGIN_RPS / NOTEKEEP_LOGIN_BURST
}

// ValidationError collects configuration problems.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:   getenvDefault("NOTEKEEP_ADDR", ":5000"),
		DataDir:      getenvDefault("NOTEKEEP_DATA_DIR", "data"),
		SampleAPIKey: sampleAPIKey(),
		RateLimit:    ratelimit.DefaultConfig,
	}

	var problems []string
	if v := os.Getenv("NOTEKEEP_LOGIN_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil || rps <= 0 {
			problems = append(problems, fmt.Sprintf("NOTEKEEP_LOGIN_RPS must be a positive number, got %q", v))
		} else {
			cfg.RateLimit.RPS = rps
		}
	}
	if v := os.Getenv("NOTEKEEP_LOGIN_BURST"); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil || burst <= 0 {
			problems = append(problems, fmt.Sprintf("NOTEKEEP_LOGIN_BURST must be a positive integer, got %q", v))
		} else {
			cfg.RateLimit.Burst = burst
		}
	}
	if len(problems) > 0 {
		return nil, &ValidationError{Errors: problems}
	}
	return cfg, nil
}

// sampleAPIKey reads the optional dashboard value. The lowercase name is
// accepted for compatibility with existing deployments.
func sampleAPIKey() string {
	if v := os.Getenv("SAMPLE_API_KEY"); v != "" {
		return v
	}
	if v := os.Getenv("sample_api_key"); v != "" {
		return v
	}
	return NotConfigured
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
