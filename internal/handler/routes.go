// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"io/fs"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/incident-intake/internal/middleware"
	"github.com/olegiv/incident-intake/internal/render"
)

// Defaults used by NewRouter when RouterConfig leaves them unset.
const (
	DefaultRequestTimeout = 30 * time.Second
	staticMaxAge          = time.Hour
)

// RouterConfig wires the handlers and middleware of the application.
type RouterConfig struct {
	Reports  *ReportsHandler
	Health   *HealthHandler
	Renderer *render.Renderer
	// Sessions may be nil; flash messages are then dropped.
	Sessions *scs.SessionManager
	// Static holds the files served below /static/.
	Static fs.FS

	IsDev bool
	// CSRF protects the browser form post. /api/report is exempt.
	CSRF middleware.CSRFConfig
	// RateLimiter limits submissions per client IP. Nil disables limiting.
	RateLimiter *middleware.GlobalRateLimiter

	RequestTimeout time.Duration
	// LogRequests enables chi's request logger.
	LogRequests bool
}

// NewRouter builds the HTTP front door.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	if cfg.LogRequests {
		r.Use(chimw.Logger)
	}
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDev)))

	// Probes stay outside the session so they never touch the sessions table.
	r.Get(RouteHealthz, cfg.Health.Liveness)
	r.Get(RouteReadyz, cfg.Health.Readiness)

	if cfg.Static != nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(cfg.Static)))
		r.Handle(RouteStatic, middleware.StaticCache(staticMaxAge)(static))
	}

	r.Group(func(r chi.Router) {
		if cfg.Sessions != nil {
			r.Use(cfg.Sessions.LoadAndSave)
		}
		r.Use(middleware.SkipCSRF(RouteAPIReport))
		r.Use(middleware.CSRF(cfg.CSRF))

		r.Get(RouteList, cfg.Reports.List)
		r.Get(RouteNew, cfg.Reports.NewForm)
		r.Get(RouteReport, cfg.Reports.Show)

		if cfg.RateLimiter != nil {
			r.With(cfg.RateLimiter.HTMLMiddleware()).Post(RouteSubmit, cfg.Reports.Submit)
			r.With(cfg.RateLimiter.Middleware()).Post(RouteAPIReport, cfg.Reports.Submit)
		} else {
			r.Post(RouteSubmit, cfg.Reports.Submit)
			r.Post(RouteAPIReport, cfg.Reports.Submit)
		}

		r.NotFound(func(w http.ResponseWriter, req *http.Request) {
			renderNotFound(w, req, cfg.Renderer, "The page you requested does not exist.")
		})
	})

	return r
}
