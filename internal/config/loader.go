package config

import (
	"fmt"
	"os"
)

// Load loads configuration with 2-tier priority:
// Environment variables > Default values
func Load() (*Config, error) {
	// Load .env file if exists
	loadDotEnv()

	// Start with defaults
	cfg := DefaultConfig()

	// Apply environment variable overrides (highest priority)
	applyEnvOverrides(cfg)

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadDotEnv loads a .env file from the working directory.
func loadDotEnv() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // .env file is optional
	}

	// Simple .env parser: KEY=VALUE lines
	for _, line := range splitLines(string(data)) {
		line = trimSpace(line)
		if line == "" || line[0] == '#' {
			continue
		}
		if idx := indexOf(line, '='); idx > 0 {
			key := trimSpace(line[:idx])
			val := trimSpace(line[idx+1:])
			// Remove surrounding quotes
			val = trimQuotes(val)
			// Only set if not already set (env vars take precedence)
			if os.Getenv(key) == "" {
				os.Setenv(key, val)
			}
		}
	}
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	// Server config
	cfg.Server.Host = getEnvStr("WEBHOOK_RELAY_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnvInt("WEBHOOK_RELAY_PORT", cfg.Server.Port)
	cfg.Server.LogLevel = getEnvStr("LOG_LEVEL", cfg.Server.LogLevel)

	// Capture config
	cfg.Capture.MaxBodyBytes = getEnvInt64("WEBHOOK_RELAY_MAX_BODY_BYTES", cfg.Capture.MaxBodyBytes)

	// WebSocket config
	cfg.WebSocket.ReadBufferSize = getEnvInt("WEBHOOK_RELAY_WS_READ_BUFFER", cfg.WebSocket.ReadBufferSize)
	cfg.WebSocket.WriteBufferSize = getEnvInt("WEBHOOK_RELAY_WS_WRITE_BUFFER", cfg.WebSocket.WriteBufferSize)
	cfg.WebSocket.SendBufferSize = getEnvInt("WEBHOOK_RELAY_WS_SEND_BUFFER", cfg.WebSocket.SendBufferSize)

	// Log rotation config
	cfg.LogRotation.MaxSizeMB = getEnvInt("WEBHOOK_RELAY_LOG_MAX_SIZE_MB", cfg.LogRotation.MaxSizeMB)
	cfg.LogRotation.MaxBackups = getEnvInt("WEBHOOK_RELAY_LOG_MAX_BACKUPS", cfg.LogRotation.MaxBackups)
	cfg.LogRotation.MaxAgeDays = getEnvInt("WEBHOOK_RELAY_LOG_MAX_AGE_DAYS", cfg.LogRotation.MaxAgeDays)
	cfg.LogRotation.Compress = getEnvBool("WEBHOOK_RELAY_LOG_COMPRESS", cfg.LogRotation.Compress)
}

// String utility functions (avoiding external dependencies).

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			line := s[start:i]
			if len(line) > 0 && line[len(line)-1] == '\r' {
				line = line[:len(line)-1]
			}
			lines = append(lines, line)
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

func trimSpace(s string) string {
	start := 0
	end := len(s)
	for start < end && (s[start] == ' ' || s[start] == '\t') {
		start++
	}
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t') {
		end--
	}
	return s[start:end]
}

func indexOf(s string, c byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}
	return -1
}

func trimQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
