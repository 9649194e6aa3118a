// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session configures the cookie session used to carry flash
// messages across the post/redirect/get cycle of a submission.
package session

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

// Session keys.
const (
	KeyFlash     = "flash"
	KeyFlashType = "flash_type"
)

// Flash types understood by the templates.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// New creates a session manager backed by the sessions table of db.
func New(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := scs.New()

	sm.Store = sqlite3store.New(db)

	sm.Lifetime = 24 * time.Hour
	sm.IdleTimeout = 2 * time.Hour
	sm.Cookie.Name = "intake_session"
	sm.Cookie.Path = "/"
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev

	if !isDev {
		// __Host- pins the cookie to this origin over HTTPS.
		sm.Cookie.Name = "__Host-intake_session"
	}

	return sm
}

// PutFlash stores a one-shot message for the next rendered page.
func PutFlash(ctx context.Context, sm *scs.SessionManager, message, flashType string) {
	if sm == nil {
		return
	}
	sm.Put(ctx, KeyFlash, message)
	sm.Put(ctx, KeyFlashType, flashType)
}

// PopFlash returns and clears the pending flash message, if any.
// The type defaults to FlashInfo.
func PopFlash(ctx context.Context, sm *scs.SessionManager) (message, flashType string) {
	if sm == nil {
		return "", ""
	}
	message = sm.PopString(ctx, KeyFlash)
	if message == "" {
		return "", ""
	}
	flashType = sm.PopString(ctx, KeyFlashType)
	if flashType == "" {
		flashType = FlashInfo
	}
	return message, flashType
}
