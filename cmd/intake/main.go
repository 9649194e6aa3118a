// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Command intake serves the incident report intake form.
package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/olegiv/incident-intake/internal/config"
	"github.com/olegiv/incident-intake/internal/handler"
	"github.com/olegiv/incident-intake/internal/logging"
	"github.com/olegiv/incident-intake/internal/middleware"
	"github.com/olegiv/incident-intake/internal/notify"
	"github.com/olegiv/incident-intake/internal/render"
	"github.com/olegiv/incident-intake/internal/scheduler"
	"github.com/olegiv/incident-intake/internal/service"
	"github.com/olegiv/incident-intake/internal/session"
	"github.com/olegiv/incident-intake/internal/store"
	"github.com/olegiv/incident-intake/internal/version"
	"github.com/olegiv/incident-intake/web"
)

// notifyMargin is added to the SMTP timeout to bound the whole notify step.
const notifyMargin = 5 * time.Second

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "intake - incident report intake service\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  INTAKE_SERVER_PORT     Server port (default: 3000)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  INTAKE_ENV             Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  INTAKE_DB_DRIVER       sqlite (pure Go) or sqlite3 (cgo) (default: sqlite)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  INTAKE_DB_PATH         SQLite database path (default: ./data/incidents.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  INTAKE_SMTP_HOST       SMTP server; notifications are off when empty\n")
		_, _ = fmt.Fprintf(os.Stderr, "  INTAKE_MAIL_FROM       Sender address\n")
		_, _ = fmt.Fprintf(os.Stderr, "  INTAKE_MAIL_TO         Comma separated recipients\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("intake %s\n", version.Get())
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(textHandler)
	slog.SetDefault(logger)

	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("loading timezone: %w", err)
	}

	slog.Info("initializing database", "driver", cfg.DBDriver, "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBDriver, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	// Nothing else sees db until the schema is current.
	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Also write WARN and ERROR records to the event log
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	eventService := service.NewEventService(db)

	notifier, err := notify.New(cfg.MailConfig(), logger)
	if err != nil {
		return fmt.Errorf("configuring notifier: %w", err)
	}
	if cfg.MailEnabled() {
		slog.Info("mail notifications enabled", "host", cfg.SMTPHost, "recipients", len(cfg.MailTo))
	} else {
		slog.Info("mail notifications disabled, INTAKE_SMTP_HOST is empty")
	}

	reportService := service.NewReportService(db, notifier, service.ReportServiceConfig{
		Location:      loc,
		NotifyTimeout: cfg.SMTPTimeout + notifyMargin,
		Logger:        logger,
		Events:        eventService,
	})

	sessionManager := session.New(db, cfg.IsDevelopment())

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}

	staticFS, err := fs.Sub(web.Static, "static/dist")
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}

	csrfKey := []byte(cfg.CSRFKey)
	if len(csrfKey) == 0 {
		csrfKey = make([]byte, config.MinCSRFKeyLength)
		if _, err := rand.Read(csrfKey); err != nil {
			return fmt.Errorf("generating csrf key: %w", err)
		}
	}

	sched := scheduler.New(db, eventService, scheduler.Config{
		EventRetention: cfg.EventRetention(),
	}, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	router := handler.NewRouter(handler.RouterConfig{
		Reports:        handler.NewReportsHandler(reportService, renderer, logger),
		Health:         handler.NewHealthHandler(db),
		Renderer:       renderer,
		Sessions:       sessionManager,
		Static:         staticFS,
		IsDev:          cfg.IsDevelopment(),
		CSRF:           middleware.DefaultCSRFConfig(csrfKey, cfg.IsDevelopment(), cfg.ServerPort),
		RateLimiter:    middleware.NewGlobalRateLimiter(cfg.RateLimit, cfg.RateBurst),
		RequestTimeout: handler.DefaultRequestTimeout,
		LogRequests:    true,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // covers a slow SMTP server
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", version.Get().Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-quit:
	}

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
