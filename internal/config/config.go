// Package config loads and validates service configuration from a
// YAML file with environment variable overrides. Configuration is
// read once at process start; there is no hot reload.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	RateLimit RateLimitConfig `yaml:"rateLimit"`
	Auth      AuthConfig      `yaml:"auth"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address         string   `yaml:"address"`
	Port            int      `yaml:"port"`
	ReadTimeout     Duration `yaml:"readTimeout"`
	WriteTimeout    Duration `yaml:"writeTimeout"`
	IdleTimeout     Duration `yaml:"idleTimeout"`
	ShutdownTimeout Duration `yaml:"shutdownTimeout"`
}

// StorageConfig holds persistence settings.
type StorageConfig struct {
	// Path is the SQLite database file path.
	Path string `yaml:"path"`
}

// RateLimitConfig holds per-client rate limiting settings.
type RateLimitConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Capacity int      `yaml:"capacity"`
	Window   Duration `yaml:"window"`

	// TTL is the inactivity period after which a client bucket is
	// evicted. Zero keeps buckets for the process lifetime.
	TTL Duration `yaml:"ttl"`
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	// JWTSecret is the HS256 signing secret. Required.
	JWTSecret string `yaml:"jwtSecret"`

	Issuer   string       `yaml:"issuer"`
	TokenTTL Duration     `yaml:"tokenTTL"`
	Users    []UserConfig `yaml:"users"`
}

// UserConfig declares one account.
type UserConfig struct {
	Username     string   `yaml:"username"`
	PasswordHash string   `yaml:"passwordHash"`
	Roles        []string `yaml:"roles"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     Duration(30 * time.Second),
			WriteTimeout:    Duration(30 * time.Second),
			IdleTimeout:     Duration(120 * time.Second),
			ShutdownTimeout: Duration(30 * time.Second),
		},
		Storage: StorageConfig{
			Path: "students.db",
		},
		RateLimit: RateLimitConfig{
			Enabled:  true,
			Capacity: 10,
			Window:   Duration(time.Minute),
			TTL:      Duration(6 * time.Minute),
		},
		Auth: AuthConfig{
			Issuer:   "studentsvc",
			TokenTTL: Duration(time.Hour),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in (0, 65535], got %d", c.Server.Port)
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required")
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.Capacity <= 0 {
			return fmt.Errorf("rateLimit.capacity must be positive, got %d", c.RateLimit.Capacity)
		}
		if c.RateLimit.Window.Duration() <= 0 {
			return fmt.Errorf("rateLimit.window must be positive")
		}
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwtSecret is required")
	}
	for i, u := range c.Auth.Users {
		if u.Username == "" {
			return fmt.Errorf("auth.users[%d].username is required", i)
		}
		if u.PasswordHash == "" {
			return fmt.Errorf("auth.users[%d].passwordHash is required", i)
		}
	}
	return nil
}
