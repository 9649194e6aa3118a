// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package store owns the SQLite schema and the queries run against it.
package store

import (
	"database/sql"
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/pressly/goose/v3"

	_ "github.com/mattn/go-sqlite3" // cgo SQLite driver ("sqlite3")
	_ "modernc.org/sqlite"          // pure Go SQLite driver ("sqlite")
)

//go:embed migrations/*.sql
var migrations embed.FS

// Supported database/sql driver names.
const (
	DriverModernc = "sqlite"  // modernc.org/sqlite, no cgo required
	DriverCgo     = "sqlite3" // github.com/mattn/go-sqlite3
)

// IsSupportedDriver reports whether name is one of the registered SQLite drivers.
func IsSupportedDriver(name string) bool {
	return name == DriverModernc || name == DriverCgo
}

// DBConfig holds database configuration options.
type DBConfig struct {
	// Driver is the database/sql driver name, DriverModernc or DriverCgo.
	Driver string
	// MaxOpenConns is the maximum number of open connections to the database.
	// SQLite allows a single writer; WAL mode lets readers proceed alongside it.
	MaxOpenConns int
	// MaxIdleConns is the maximum number of connections in the idle connection pool.
	MaxIdleConns int
	// ConnMaxLifetime is the maximum amount of time a connection may be reused.
	ConnMaxLifetime time.Duration
	// BusyTimeout is how long a connection waits on a locked database.
	BusyTimeout time.Duration
}

// DefaultDBConfig returns sensible defaults for SQLite.
func DefaultDBConfig() DBConfig {
	return DBConfig{
		Driver:          DriverModernc,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
		BusyTimeout:     5 * time.Second,
	}
}

// NewDB opens a SQLite database with the given driver and default settings.
func NewDB(driver, path string) (*sql.DB, error) {
	cfg := DefaultDBConfig()
	if driver != "" {
		cfg.Driver = driver
	}
	return NewDBWithConfig(path, cfg)
}

// NewDBWithConfig opens a SQLite database connection with custom configuration.
// The parent directory of path is created when missing.
func NewDBWithConfig(path string, cfg DBConfig) (*sql.DB, error) {
	if !IsSupportedDriver(cfg.Driver) {
		return nil, fmt.Errorf("unsupported sqlite driver %q", cfg.Driver)
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open(cfg.Driver, dsn(cfg.Driver, path, cfg.BusyTimeout))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	// Database-wide settings; per-connection ones travel in the DSN.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", pragma, err)
		}
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

// dsn builds a driver specific connection string so that every pooled
// connection gets the same busy timeout and foreign key setting.
func dsn(driver, path string, busy time.Duration) string {
	ms := busy.Milliseconds()
	q := url.Values{}
	switch driver {
	case DriverCgo:
		q.Set("_busy_timeout", fmt.Sprintf("%d", ms))
		q.Set("_foreign_keys", "on")
	default:
		q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", ms))
		q.Add("_pragma", "foreign_keys(1)")
	}
	return "file:" + path + "?" + q.Encode()
}

// Migrate runs all pending database migrations. Running it against an
// already migrated database is a no-op.
func Migrate(db *sql.DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	return nil
}
