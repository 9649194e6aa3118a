// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the service configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/olegiv/incident-intake/internal/notify"
	"github.com/olegiv/incident-intake/internal/store"
)

// MinCSRFKeyLength is the minimum length of an explicitly configured CSRF key.
const MinCSRFKeyLength = 32

// validLogLevels are the accepted INTAKE_LOG_LEVEL values.
var validLogLevels = []string{"debug", "info", "warn", "error"}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ServerHost string `env:"INTAKE_SERVER_HOST" envDefault:"0.0.0.0"`
	ServerPort int    `env:"INTAKE_SERVER_PORT" envDefault:"3000"`
	Env        string `env:"INTAKE_ENV" envDefault:"development"`
	LogLevel   string `env:"INTAKE_LOG_LEVEL" envDefault:"info"`

	DBDriver string `env:"INTAKE_DB_DRIVER" envDefault:"sqlite"`
	DBPath   string `env:"INTAKE_DB_PATH" envDefault:"./data/incidents.db"`

	// Timezone names the server zone recorded when a client sends none.
	// Empty means the process local zone.
	Timezone string `env:"INTAKE_TIMEZONE"`

	// SMTP notification; disabled when SMTPHost is empty.
	SMTPHost    string        `env:"INTAKE_SMTP_HOST"`
	SMTPPort    int           `env:"INTAKE_SMTP_PORT" envDefault:"587"`
	SMTPUser    string        `env:"INTAKE_SMTP_USER"`
	SMTPPass    string        `env:"INTAKE_SMTP_PASS"`
	SMTPSecure  bool          `env:"INTAKE_SMTP_SECURE" envDefault:"false"`
	SMTPTimeout time.Duration `env:"INTAKE_SMTP_TIMEOUT" envDefault:"10s"`
	MailFrom    string        `env:"INTAKE_MAIL_FROM"`
	MailTo      []string      `env:"INTAKE_MAIL_TO" envSeparator:","`

	// Per-IP limit on the submit endpoints.
	RateLimit float64 `env:"INTAKE_RATE_LIMIT" envDefault:"1"`
	RateBurst int     `env:"INTAKE_RATE_BURST" envDefault:"10"`

	CSRFKey string `env:"INTAKE_CSRF_KEY"`

	EventRetentionDays int `env:"INTAKE_EVENT_RETENTION_DAYS" envDefault:"90"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// MailEnabled returns true if SMTP notification is configured.
func (c Config) MailEnabled() bool {
	return c.SMTPHost != ""
}

// MailConfig returns the notifier settings.
func (c Config) MailConfig() notify.MailConfig {
	return notify.MailConfig{
		Host:     c.SMTPHost,
		Port:     c.SMTPPort,
		Username: c.SMTPUser,
		Password: c.SMTPPass,
		Secure:   c.SMTPSecure,
		From:     c.MailFrom,
		To:       c.MailTo,
		Timeout:  c.SMTPTimeout,
	}
}

// Location resolves Timezone, falling back to time.Local.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// EventRetention returns the event-log retention window.
func (c Config) EventRetention() time.Duration {
	return time.Duration(c.EventRetentionDays) * 24 * time.Hour
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.MailTo = compact(cfg.MailTo)
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if !store.IsSupportedDriver(c.DBDriver) {
		return fmt.Errorf("INTAKE_DB_DRIVER must be %q or %q, got %q",
			store.DriverModernc, store.DriverCgo, c.DBDriver)
	}
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return fmt.Errorf("INTAKE_SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort)
	}
	if !contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("INTAKE_LOG_LEVEL must be one of %s, got %q",
			strings.Join(validLogLevels, ", "), c.LogLevel)
	}
	if c.CSRFKey != "" && len(c.CSRFKey) < MinCSRFKeyLength {
		return fmt.Errorf("INTAKE_CSRF_KEY must be at least %d bytes long, got %d bytes",
			MinCSRFKeyLength, len(c.CSRFKey))
	}
	if c.RateLimit <= 0 || c.RateBurst < 1 {
		return fmt.Errorf("INTAKE_RATE_LIMIT and INTAKE_RATE_BURST must be positive")
	}
	if c.EventRetentionDays < 1 {
		return fmt.Errorf("INTAKE_EVENT_RETENTION_DAYS must be positive, got %d", c.EventRetentionDays)
	}
	if c.MailEnabled() {
		if c.MailFrom == "" {
			return fmt.Errorf("INTAKE_MAIL_FROM is required when INTAKE_SMTP_HOST is set")
		}
		if len(c.MailTo) == 0 {
			return fmt.Errorf("INTAKE_MAIL_TO is required when INTAKE_SMTP_HOST is set")
		}
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// compact trims every entry and drops empty ones.
func compact(list []string) []string {
	out := list[:0]
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
