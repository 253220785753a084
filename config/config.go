// Package config holds the updater configuration: defaults, optional YAML
// file, environment overlay, then CLI flags, in that precedence order.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the complete updater configuration.
type Config struct {
	// Rewrite target: every acestream reference becomes
	// http://{host}:{port}/ace/getstream?id={id}.
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// Output settings
	OutDir       string `yaml:"out_dir"`
	CombinedName string `yaml:"combined_name"`
	EmitSources  bool   `yaml:"emit_sources"`

	// Persistence collaborators
	Backup bool `yaml:"backup"`
	Commit bool `yaml:"commit"`

	// Fetch settings
	TimeoutSeconds int           `yaml:"timeout_seconds"`
	MaxRetries     int           `yaml:"max_retries"`
	RetryBaseDelay time.Duration `yaml:"retry_base_delay"`
	RetryMaxDelay  time.Duration `yaml:"retry_max_delay"`
	Concurrency    int           `yaml:"concurrency"`
	RatePerSecond  float64       `yaml:"rate_per_second"`
	RateBurst      int           `yaml:"rate_burst"`

	// Rewrite policy
	RewriteStrayIDs bool `yaml:"rewrite_stray_ids"`

	// Logging
	LogLevel string `yaml:"log_level"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Host:           "127.0.0.1",
		Port:           6878,
		OutDir:         ".",
		CombinedName:   "playlist.m3u",
		Backup:         true,
		Commit:         true,
		TimeoutSeconds: 30,
		MaxRetries:     3,
		RetryBaseDelay: time.Second,
		RetryMaxDelay:  30 * time.Second,
		Concurrency:    4,
		RatePerSecond:  4,
		RateBurst:      4,
		LogLevel:       "INFO",
	}
}

// Timeout returns the per-attempt fetch timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LoadFile overlays the YAML file at path onto c.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays M3U_* environment variables onto c, returning an error
// listing every invalid value.
func (c *Config) ApplyEnv() error {
	parser := &envParser{}

	parser.parseString("M3U_HOST", &c.Host)
	parser.parseInt("M3U_PORT", &c.Port)
	parser.parseString("M3U_OUT_DIR", &c.OutDir)
	parser.parseString("M3U_COMBINED_NAME", &c.CombinedName)
	parser.parseInt("M3U_TIMEOUT", &c.TimeoutSeconds)
	parser.parseInt("M3U_MAX_RETRIES", &c.MaxRetries)
	parser.parseDuration("M3U_RETRY_BASE_DELAY", &c.RetryBaseDelay)
	parser.parseDuration("M3U_RETRY_MAX_DELAY", &c.RetryMaxDelay)
	parser.parseInt("M3U_CONCURRENCY", &c.Concurrency)
	parser.parseEnum("M3U_LOG_LEVEL", &c.LogLevel, map[string]bool{
		"DEBUG": true,
		"INFO":  true,
		"WARN":  true,
		"ERROR": true,
	})

	if len(parser.errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(parser.errors, "\n  - "))
	}
	return nil
}

// Validate performs validation on the configuration.
func (c *Config) Validate() error {
	var errors []string

	if c.Host == "" {
		errors = append(errors, "target host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		errors = append(errors, "target port must be between 1 and 65535")
	}
	if c.CombinedName == "" {
		errors = append(errors, "combined output name is required")
	}
	if c.TimeoutSeconds <= 0 {
		errors = append(errors, "timeout must be positive")
	}
	if c.MaxRetries <= 0 {
		errors = append(errors, "max retries must be positive")
	}
	if c.RetryBaseDelay <= 0 {
		errors = append(errors, "retry base delay must be positive")
	}
	if c.RetryMaxDelay < c.RetryBaseDelay {
		errors = append(errors, "retry max delay must be >= retry base delay")
	}
	if c.Concurrency <= 0 {
		errors = append(errors, "concurrency must be positive")
	}
	if c.RatePerSecond <= 0 {
		errors = append(errors, "rate per second must be positive")
	}
	if c.RateBurst <= 0 {
		errors = append(errors, "rate burst must be positive")
	}

	validLevels := map[string]bool{"DEBUG": true, "INFO": true, "WARN": true, "ERROR": true}
	if !validLevels[strings.ToUpper(c.LogLevel)] {
		errors = append(errors, "log level must be one of: DEBUG, INFO, WARN, ERROR")
	}

	if len(errors) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(errors, "\n  - "))
	}
	return nil
}
