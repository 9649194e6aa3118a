// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic database maintenance.
package scheduler

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/incident-intake/internal/service"
)

// Job names.
const (
	JobCheckpoint = "wal_checkpoint"
	JobPurge      = "event_purge"
)

// Default schedules, in standard five-field cron syntax.
const (
	DefaultCheckpointSchedule = "0 * * * *" // hourly
	DefaultPurgeSchedule      = "0 3 * * *" // daily at 03:00
)

// jobTimeout bounds a single job run.
const jobTimeout = 5 * time.Minute

// Config holds scheduler settings. Zero values fall back to the defaults.
type Config struct {
	CheckpointSchedule string
	PurgeSchedule      string
	// EventRetention is how long event-log rows are kept.
	EventRetention time.Duration
}

type job struct {
	name        string
	description string
	schedule    string
	run         func(ctx context.Context) error

	entryID cron.EntryID
	lastRun time.Time
	lastErr error
}

// JobInfo is the public view of a scheduled job.
type JobInfo struct {
	Name        string
	Description string
	Schedule    string
	LastRun     time.Time
	LastError   error
	NextRun     time.Time
}

// Scheduler runs the WAL checkpoint and event-log purge jobs. It never
// touches the reports table.
type Scheduler struct {
	db     *sql.DB
	events *service.EventService
	cron   *cron.Cron
	logger *slog.Logger

	mu   sync.Mutex
	jobs map[string]*job
}

// New creates a new scheduler instance.
func New(db *sql.DB, events *service.EventService, cfg Config, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.CheckpointSchedule == "" {
		cfg.CheckpointSchedule = DefaultCheckpointSchedule
	}
	if cfg.PurgeSchedule == "" {
		cfg.PurgeSchedule = DefaultPurgeSchedule
	}
	if cfg.EventRetention <= 0 {
		cfg.EventRetention = 90 * 24 * time.Hour
	}

	s := &Scheduler{
		db:     db,
		events: events,
		cron:   cron.New(),
		logger: logger,
		jobs:   make(map[string]*job),
	}

	s.jobs[JobCheckpoint] = &job{
		name:        JobCheckpoint,
		description: "Checkpoint and truncate the SQLite write-ahead log",
		schedule:    cfg.CheckpointSchedule,
		run:         s.checkpoint,
	}

	retention := cfg.EventRetention
	s.jobs[JobPurge] = &job{
		name:        JobPurge,
		description: fmt.Sprintf("Delete event-log entries older than %s", retention),
		schedule:    cfg.PurgeSchedule,
		run: func(ctx context.Context) error {
			return s.purgeEvents(ctx, retention)
		},
	}

	return s
}

// Start registers every job with cron and starts it.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, j := range s.jobs {
		name := j.name
		id, err := s.cron.AddFunc(j.schedule, func() {
			_ = s.RunNow(context.Background(), name)
		})
		if err != nil {
			return fmt.Errorf("scheduling %s (%q): %w", j.name, j.schedule, err)
		}
		j.entryID = id
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// RunNow runs the named job synchronously and records its outcome.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}

	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	start := time.Now()
	err := j.run(ctx)

	s.mu.Lock()
	j.lastRun = start
	j.lastErr = err
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("scheduler job failed", "job", name, "error", err)
		return err
	}
	s.logger.Debug("scheduler job finished", "job", name, "duration", time.Since(start))
	return nil
}

// List returns all jobs sorted by name.
func (s *Scheduler) List() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobInfo, 0, len(s.jobs))
	for _, j := range s.jobs {
		info := JobInfo{
			Name:        j.name,
			Description: j.description,
			Schedule:    j.schedule,
			LastRun:     j.lastRun,
			LastError:   j.lastErr,
		}
		if j.entryID != 0 {
			info.NextRun = s.cron.Entry(j.entryID).Next
		}
		out = append(out, info)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out
}

// checkpoint moves the WAL into the main database file and truncates it.
func (s *Scheduler) checkpoint(ctx context.Context) error {
	var busy, logFrames, checkpointed int
	row := s.db.QueryRowContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)")
	if err := row.Scan(&busy, &logFrames, &checkpointed); err != nil {
		return fmt.Errorf("wal checkpoint: %w", err)
	}
	if busy != 0 {
		s.logger.Info("wal checkpoint incomplete, database busy", "log_frames", logFrames, "checkpointed", checkpointed)
		return nil
	}
	s.logger.Debug("wal checkpoint done", "log_frames", logFrames, "checkpointed", checkpointed)
	return nil
}

func (s *Scheduler) purgeEvents(ctx context.Context, retention time.Duration) error {
	if s.events == nil {
		return nil
	}
	n, err := s.events.DeleteOldEvents(ctx, retention)
	if err != nil {
		return fmt.Errorf("purging events: %w", err)
	}
	if n > 0 {
		s.logger.Info("purged old events", "deleted", n, "retention", retention.String())
	}
	return nil
}
