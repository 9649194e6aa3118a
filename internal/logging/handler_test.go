// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/olegiv/incident-intake/internal/model"
	"github.com/olegiv/incident-intake/internal/store"
	"github.com/olegiv/incident-intake/internal/testutil"
)

// discardHandler is a slog.Handler that discards all logs.
type discardHandler struct{}

func (h discardHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h discardHandler) WithGroup(string) slog.Handler             { return h }

func listEvents(t *testing.T, db *sql.DB) []store.Event {
	t.Helper()
	events, err := store.New(db).ListEvents(context.Background(), store.ListEventsParams{Limit: 10})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	return events
}

func TestEventLogHandler_ErrorLevel(t *testing.T) {
	db := testutil.TestDB(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, db))

	logger.Error("database write failed", "report_id", 4, "error", errors.New("disk I/O error"))

	events := listEvents(t, db)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	e := events[0]
	if e.Level != model.EventLevelError {
		t.Errorf("Level = %q, want %q", e.Level, model.EventLevelError)
	}
	if e.Message != "database write failed" {
		t.Errorf("Message = %q, want %q", e.Message, "database write failed")
	}

	var meta map[string]any
	if err := json.Unmarshal([]byte(e.Metadata), &meta); err != nil {
		t.Fatalf("Metadata is not JSON: %v (%q)", err, e.Metadata)
	}
	if meta["error"] != "disk I/O error" {
		t.Errorf("metadata error = %v, want %q", meta["error"], "disk I/O error")
	}
	if meta["report_id"] != float64(4) {
		t.Errorf("metadata report_id = %v, want 4", meta["report_id"])
	}
}

func TestEventLogHandler_InfoNotStored(t *testing.T) {
	db := testutil.TestDB(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, db))

	logger.Info("report saved", "report_id", 1)
	logger.Debug("noise")

	if events := listEvents(t, db); len(events) != 0 {
		t.Errorf("got %d events, want 0", len(events))
	}
}

func TestEventLogHandler_CustomLevel(t *testing.T) {
	db := testutil.TestDB(t)
	logger := slog.New(NewEventLogHandlerWithLevel(discardHandler{}, db, slog.LevelInfo))

	logger.Info("report saved")

	events := listEvents(t, db)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Level != model.EventLevelInfo {
		t.Errorf("Level = %q, want %q", events[0].Level, model.EventLevelInfo)
	}
}

func TestEventLogHandler_Category(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		args []any
		want string
	}{
		{"explicit", "something odd", []any{"category", model.EventCategoryReport}, model.EventCategoryReport},
		{"notification", "report notification failed", nil, model.EventCategoryNotification},
		{"smtp", "SMTP dial timeout", nil, model.EventCategoryNotification},
		{"report", "report lookup failed", nil, model.EventCategoryReport},
		{"maintenance", "WAL checkpoint failed", nil, model.EventCategoryMaintenance},
		{"fallback", "shutdown error", nil, model.EventCategorySystem},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.TestDB(t)
			logger := slog.New(NewEventLogHandler(discardHandler{}, db))

			logger.Warn(tt.msg, tt.args...)

			events := listEvents(t, db)
			if len(events) != 1 {
				t.Fatalf("got %d events, want 1", len(events))
			}
			if events[0].Category != tt.want {
				t.Errorf("Category = %q, want %q", events[0].Category, tt.want)
			}
			if events[0].Level != model.EventLevelWarning {
				t.Errorf("Level = %q, want %q", events[0].Level, model.EventLevelWarning)
			}
		})
	}
}

func TestEventLogHandler_WithAttrs(t *testing.T) {
	db := testutil.TestDB(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, db)).With("component", "scheduler")

	logger.Warn("purge failed")

	events := listEvents(t, db)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Metadata != `{"component":"scheduler"}` {
		t.Errorf("Metadata = %q", events[0].Metadata)
	}
	if events[0].Category != model.EventCategoryMaintenance {
		t.Errorf("Category = %q, want %q", events[0].Category, model.EventCategoryMaintenance)
	}
}

func TestEventLogHandler_WithGroup(t *testing.T) {
	db := testutil.TestDB(t)
	h := NewEventLogHandler(discardHandler{}, db)

	if _, ok := h.WithGroup("g").(*EventLogHandler); !ok {
		t.Error("WithGroup should return *EventLogHandler")
	}
}
