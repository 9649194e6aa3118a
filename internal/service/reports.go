// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/olegiv/incident-intake/internal/model"
	"github.com/olegiv/incident-intake/internal/notify"
	"github.com/olegiv/incident-intake/internal/report"
	"github.com/olegiv/incident-intake/internal/store"
)

// Workflow errors. Validation failures are reported as *report.ValidationError.
var (
	// ErrNotFound means the requested report does not exist.
	ErrNotFound = errors.New("report not found")
	// ErrPersistence means the store could not read or write.
	ErrPersistence = errors.New("report storage failed")
	// ErrNotification means the report was stored but the notification failed.
	ErrNotification = errors.New("report saved but notification failed")
)

// DefaultNotifyTimeout bounds the notification step of a submission.
const DefaultNotifyTimeout = 15 * time.Second

// Result describes a persisted submission.
type Result struct {
	ID     int64
	Report store.Report
}

// ReportServiceConfig holds optional ReportService settings.
type ReportServiceConfig struct {
	// Location is used to name the server timezone when the client sends none.
	Location *time.Location
	// NotifyTimeout bounds the notification step.
	NotifyTimeout time.Duration
	Logger        *slog.Logger
	// Events, when set, receives an audit entry per submission.
	Events *EventService
}

// ReportService runs the submission workflow:
// validate, sanitize, persist, notify.
type ReportService struct {
	queries       *store.Queries
	notifier      notify.Notifier
	events        *EventService
	logger        *slog.Logger
	tzName        string
	notifyTimeout time.Duration
	now           func() time.Time
}

// NewReportService creates a ReportService. db must already be migrated.
func NewReportService(db *sql.DB, n notify.Notifier, cfg ReportServiceConfig) *ReportService {
	if n == nil {
		n = notify.Noop{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = DefaultNotifyTimeout
	}
	return &ReportService{
		queries:       store.New(db),
		notifier:      n,
		events:        cfg.Events,
		logger:        cfg.Logger,
		tzName:        TimezoneName(cfg.Location),
		notifyTimeout: cfg.NotifyTimeout,
		now:           time.Now,
	}
}

// Submit validates, sanitizes and stores in, then attempts one notification.
//
// A *report.ValidationError means nothing was written. An error wrapping
// ErrPersistence means the write failed. An error wrapping ErrNotification
// comes with a valid Result: the report is stored and stays stored.
func (s *ReportService) Submit(ctx context.Context, in report.Input) (Result, error) {
	if err := report.Validate(in); err != nil {
		return Result{}, err
	}

	clean := in.Sanitized()
	if clean.Tz == "" {
		clean.Tz = report.Sanitize(s.tzName, report.MaxTz)
	}

	params := store.CreateReportParams{
		CreatedAt:    store.FormatTimestamp(s.now()),
		Category:     clean.Category,
		Title:        clean.Title,
		Location:     clean.Location,
		Asset:        clean.Asset,
		Description:  clean.Description,
		Immediate:    clean.Immediate,
		WhenTs:       clean.When,
		Tz:           clean.Tz,
		ContactName:  clean.ContactName,
		ContactEmail: clean.ContactEmail,
		UserAgent:    clean.UserAgent,
	}

	id, err := s.queries.CreateReport(ctx, params)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	saved := store.Report{
		ID:           id,
		CreatedAt:    params.CreatedAt,
		Category:     params.Category,
		Title:        params.Title,
		Location:     params.Location,
		Asset:        params.Asset,
		Description:  params.Description,
		Immediate:    params.Immediate,
		WhenTs:       params.WhenTs,
		Tz:           params.Tz,
		ContactName:  params.ContactName,
		ContactEmail: params.ContactEmail,
		UserAgent:    params.UserAgent,
	}
	result := Result{ID: id, Report: saved}

	s.logger.Info("report saved", "report_id", id, "report_category", saved.Category)
	s.audit(ctx, model.EventCategoryReport, "Report submitted: "+saved.Title, id)

	// The row is committed; a client that hangs up must not cut delivery short.
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()

	if err := s.notifier.Notify(notifyCtx, saved); err != nil {
		s.logger.Warn("report notification failed",
			"report_id", id,
			"category", model.EventCategoryNotification,
			"error", err)
		return result, fmt.Errorf("%w: %w", ErrNotification, err)
	}

	return result, nil
}

// List returns the newest reports, capped at store.ListLimit.
func (s *ReportService) List(ctx context.Context) ([]store.ReportSummary, error) {
	reports, err := s.queries.ListReports(ctx, store.ListLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return reports, nil
}

// Get returns one report, or ErrNotFound.
func (s *ReportService) Get(ctx context.Context, id int64) (store.Report, error) {
	r, err := s.queries.GetReport(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Report{}, ErrNotFound
		}
		return store.Report{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return r, nil
}

// Count returns the number of stored reports.
func (s *ReportService) Count(ctx context.Context) (int64, error) {
	n, err := s.queries.CountReports(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return n, nil
}

func (s *ReportService) audit(ctx context.Context, category, message string, id int64) {
	if s.events == nil {
		return
	}
	_ = s.events.LogInfo(ctx, category, message, map[string]any{"report_id": id})
}

// TimezoneName returns an IANA-style name for loc. For time.Local it falls
// back to $TZ and then to the current zone abbreviation.
func TimezoneName(loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	if name := loc.String(); name != "Local" && name != "" {
		return name
	}
	if tz := os.Getenv("TZ"); tz != "" {
		return tz
	}
	abbr, _ := time.Now().In(loc).Zone()
	return abbr
}
