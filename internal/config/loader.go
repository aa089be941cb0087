package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Environment variable overrides. They take precedence over the file.
const (
	envPort        = "STUDENTSVC_PORT"
	envStoragePath = "STUDENTSVC_STORAGE_PATH"
	envJWTSecret   = "STUDENTSVC_JWT_SECRET"
	envLogLevel    = "STUDENTSVC_LOG_LEVEL"
)

// Load reads configuration from the YAML file at path, applies
// environment overrides, and validates the result. An empty path
// yields defaults plus environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// applyEnv overrides configuration from environment variables.
func applyEnv(cfg *Config) error {
	if v := os.Getenv(envPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", envPort, err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv(envStoragePath); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv(envJWTSecret); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv(envLogLevel); v != "" {
		cfg.Log.Level = v
	}
	return nil
}
