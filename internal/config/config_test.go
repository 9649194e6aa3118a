// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set %s: %v", key, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBPath != "./data/incidents.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "./data/incidents.db")
	}
	if cfg.DBDriver != "sqlite" {
		t.Errorf("DBDriver = %q, want %q", cfg.DBDriver, "sqlite")
	}
	if cfg.ServerHost != "0.0.0.0" {
		t.Errorf("ServerHost = %q, want %q", cfg.ServerHost, "0.0.0.0")
	}
	if cfg.ServerPort != 3000 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 3000)
	}
	if cfg.Env != "development" {
		t.Errorf("Env = %q, want %q", cfg.Env, "development")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.SMTPPort != 587 {
		t.Errorf("SMTPPort = %d, want %d", cfg.SMTPPort, 587)
	}
	if cfg.SMTPTimeout != 10*time.Second {
		t.Errorf("SMTPTimeout = %v, want %v", cfg.SMTPTimeout, 10*time.Second)
	}
	if cfg.RateLimit != 1 || cfg.RateBurst != 10 {
		t.Errorf("rate = %v/%d, want 1/10", cfg.RateLimit, cfg.RateBurst)
	}
	if cfg.EventRetentionDays != 90 {
		t.Errorf("EventRetentionDays = %d, want %d", cfg.EventRetentionDays, 90)
	}
	if cfg.MailEnabled() {
		t.Error("MailEnabled() = true, want false")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Clearenv()
	setEnv(t, "INTAKE_DB_PATH", "/srv/intake.db")
	setEnv(t, "INTAKE_DB_DRIVER", "sqlite3")
	setEnv(t, "INTAKE_SERVER_HOST", "127.0.0.1")
	setEnv(t, "INTAKE_SERVER_PORT", "8081")
	setEnv(t, "INTAKE_ENV", "production")
	setEnv(t, "INTAKE_LOG_LEVEL", "DEBUG")
	setEnv(t, "INTAKE_SMTP_HOST", "smtp.example.com")
	setEnv(t, "INTAKE_SMTP_SECURE", "true")
	setEnv(t, "INTAKE_SMTP_TIMEOUT", "3s")
	setEnv(t, "INTAKE_MAIL_FROM", "intake@example.com")
	setEnv(t, "INTAKE_MAIL_TO", "ops@example.com, ,safety@example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBPath != "/srv/intake.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "/srv/intake.db")
	}
	if cfg.DBDriver != "sqlite3" {
		t.Errorf("DBDriver = %q, want %q", cfg.DBDriver, "sqlite3")
	}
	if cfg.ServerAddr() != "127.0.0.1:8081" {
		t.Errorf("ServerAddr() = %q, want %q", cfg.ServerAddr(), "127.0.0.1:8081")
	}
	if cfg.IsDevelopment() {
		t.Error("IsDevelopment() = true, want false")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}

	mc := cfg.MailConfig()
	if mc.Host != "smtp.example.com" || !mc.Secure || mc.Timeout != 3*time.Second {
		t.Errorf("MailConfig() = %+v", mc)
	}
	if got := strings.Join(mc.To, ";"); got != "ops@example.com;safety@example.com" {
		t.Errorf("MailConfig().To = %q", got)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"driver", map[string]string{"INTAKE_DB_DRIVER": "postgres"}, "INTAKE_DB_DRIVER"},
		{"port range", map[string]string{"INTAKE_SERVER_PORT": "70000"}, "INTAKE_SERVER_PORT"},
		{"port type", map[string]string{"INTAKE_SERVER_PORT": "abc"}, "parsing config"},
		{"log level", map[string]string{"INTAKE_LOG_LEVEL": "verbose"}, "INTAKE_LOG_LEVEL"},
		{"short csrf key", map[string]string{"INTAKE_CSRF_KEY": "short"}, "INTAKE_CSRF_KEY"},
		{"mail from", map[string]string{"INTAKE_SMTP_HOST": "smtp", "INTAKE_MAIL_TO": "a@b.c"}, "INTAKE_MAIL_FROM"},
		{"mail to", map[string]string{"INTAKE_SMTP_HOST": "smtp", "INTAKE_MAIL_FROM": "a@b.c"}, "INTAKE_MAIL_TO"},
		{"timezone", map[string]string{"INTAKE_TIMEZONE": "Mars/Olympus"}, "timezone"},
		{"retention", map[string]string{"INTAKE_EVENT_RETENTION_DAYS": "0"}, "INTAKE_EVENT_RETENTION_DAYS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			for k, v := range tt.env {
				setEnv(t, k, v)
			}

			_, err := Load()
			if err == nil {
				t.Fatal("Load() should fail")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to mention %q", err.Error(), tt.want)
			}
		})
	}
}

func TestConfig_Location(t *testing.T) {
	cfg := Config{}
	loc, err := cfg.Location()
	if err != nil || loc != time.Local {
		t.Errorf("Location() = %v, %v; want time.Local", loc, err)
	}

	cfg.Timezone = "Europe/Berlin"
	loc, err = cfg.Location()
	if err != nil {
		t.Fatalf("Location() error: %v", err)
	}
	if loc.String() != "Europe/Berlin" {
		t.Errorf("Location() = %q, want %q", loc.String(), "Europe/Berlin")
	}
}

func TestConfig_EventRetention(t *testing.T) {
	cfg := Config{EventRetentionDays: 2}
	if got := cfg.EventRetention(); got != 48*time.Hour {
		t.Errorf("EventRetention() = %v, want %v", got, 48*time.Hour)
	}
}
