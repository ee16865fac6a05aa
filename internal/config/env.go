package config

import (
	"os"
	"strings"
)

// loadFromEnv overrides config from environment variables.
func loadFromEnv(cfg *Config) {
	if v := os.Getenv("GRIDMARK_FILE"); v != "" {
		cfg.GridFile = v
	}
	if v := os.Getenv("GRIDMARK_JOURNAL"); v != "" {
		cfg.Journal = boolFromString(v)
	}
	if v := os.Getenv("GRIDMARK_JOURNAL_DIR"); v != "" {
		cfg.JournalDir = v
	}

	// Logging configuration
	if v := os.Getenv("GRIDMARK_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("GRIDMARK_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("GRIDMARK_LOG_TIMESTAMPS"); v != "" {
		cfg.LogTimestamps = boolFromString(v)
	}
	if v := os.Getenv("GRIDMARK_LOG_CALLER"); v != "" {
		cfg.LogCaller = boolFromString(v)
	}
}

func boolFromString(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
