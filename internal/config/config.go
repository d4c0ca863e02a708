// Package config loads the runtime's YAML configuration file, applying
// defaults and environment-variable overrides, following the shape of
// the teacher's own config.Load.
package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for the opencowork server.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Session SessionConfig `yaml:"session"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the HTTP/WebSocket listener (C7).
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// SessionConfig holds per-session defaults and a tool-call iteration
// ceiling as read from the file. Nothing outside this package reads these
// fields: the gateway applies its own "ask" permission-mode default and
// takes provider and model from each SessionStart, and the runner takes
// its ceiling only from OPEN_COWORK_MAX_TOOL_ITERATIONS.
type SessionConfig struct {
	DefaultProvider       string `yaml:"default_provider"`
	DefaultModel          string `yaml:"default_model"`
	DefaultPermissionMode string `yaml:"default_permission_mode"`
	MaxToolIterations     uint64 `yaml:"max_tool_iterations"`
}

// LoggingConfig configures internal/observability.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and parses the YAML file at path, applying environment
// overrides and defaults. An empty or missing path yields an
// all-default Config.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else {
			expanded := os.ExpandEnv(string(data))
			decoder := yaml.NewDecoder(strings.NewReader(expanded))
			decoder.KnownFields(true)
			if decErr := decoder.Decode(cfg); decErr != nil && decErr != io.EOF {
				return nil, fmt.Errorf("failed to parse config: %w", decErr)
			}
		}
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8787
	}
	if cfg.Session.DefaultProvider == "" {
		cfg.Session.DefaultProvider = "anthropic"
	}
	if cfg.Session.DefaultPermissionMode == "" {
		cfg.Session.DefaultPermissionMode = "ask"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// applyEnvOverrides lets deployment environments override the YAML file
// without editing it, matching the teacher's NEXUS_* convention.
func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("OPEN_COWORK_HOST")); v != "" {
		cfg.Server.Host = v
	}
	if v := strings.TrimSpace(os.Getenv("OPEN_COWORK_PORT")); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := strings.TrimSpace(os.Getenv("OPEN_COWORK_LOG_LEVEL")); v != "" {
		cfg.Logging.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("OPEN_COWORK_LOG_FORMAT")); v != "" {
		cfg.Logging.Format = v
	}
	// OPEN_COWORK_MAX_TOOL_ITERATIONS is read directly by internal/runner
	// at run time (spec §4.6), not mirrored into Config, so the runner's
	// own env parsing (empty/invalid -> unlimited) stays the single
	// source of truth for that rule.
}
