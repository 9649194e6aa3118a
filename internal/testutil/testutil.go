// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers.
package testutil

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/olegiv/incident-intake/internal/store"
)

// TestLogger creates a test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestLoggerSilent creates a logger that discards everything.
func TestLoggerSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestDB creates a temporary migrated database using the default driver.
// It is closed automatically when the test ends.
func TestDB(t *testing.T) *sql.DB {
	t.Helper()
	return TestDBWithDriver(t, store.DriverModernc)
}

// TestDBWithDriver is TestDB for a specific SQLite driver.
func TestDBWithDriver(t *testing.T, driver string) *sql.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "intake-test.db")

	db, err := store.NewDB(driver, dbPath)
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := store.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	return db
}

// CountReports returns the number of rows in the reports table.
func CountReports(t *testing.T, db *sql.DB) int64 {
	t.Helper()
	n, err := store.New(db).CountReports(context.Background())
	if err != nil {
		t.Fatalf("CountReports: %v", err)
	}
	return n
}

// RecordingNotifier records every report it is asked to deliver and
// returns Err for each call.
type RecordingNotifier struct {
	Err error

	mu      sync.Mutex
	reports []store.Report
	ctxErrs []error
}

// Notify implements notify.Notifier.
func (n *RecordingNotifier) Notify(ctx context.Context, r store.Report) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reports = append(n.reports, r)
	n.ctxErrs = append(n.ctxErrs, ctx.Err())
	return n.Err
}

// Reports returns the reports seen so far.
func (n *RecordingNotifier) Reports() []store.Report {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]store.Report(nil), n.reports...)
}

// ContextErrs returns ctx.Err() as observed at each call.
func (n *RecordingNotifier) ContextErrs() []error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]error(nil), n.ctxErrs...)
}
