// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"

	"github.com/olegiv/incident-intake/internal/render"
)

// notice is the data of the errors/notice page.
type notice struct {
	Kind     string
	Heading  string
	Message  string
	LinkURL  string
	LinkText string
}

// flashAndRedirect sets a flash message and redirects with 303 See Other.
func flashAndRedirect(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message, messageType string) {
	renderer.SetFlash(r, message, messageType)
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// renderPage renders a page and falls back to a plain 500 if the template fails.
func renderPage(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, status int, name string, data render.TemplateData) {
	if err := renderer.RenderStatus(w, r, status, name, data); err != nil {
		logAndInternalError(w, "failed to render template", "template", name, "error", err)
	}
}

// renderNotice renders the notice page, falling back to plain text.
func renderNotice(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, status int, n notice) {
	data := render.TemplateData{Title: n.Heading, Data: n}
	if err := renderer.RenderStatus(w, r, status, TemplateNotice, data); err != nil {
		slog.Error("failed to render notice", "error", err)
		http.Error(w, n.Message, status)
	}
}

// renderNotFound renders the 404 notice.
func renderNotFound(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, message string) {
	renderNotice(w, r, renderer, http.StatusNotFound, notice{
		Kind:     "error",
		Heading:  "Not found",
		Message:  message,
		LinkURL:  RouteList,
		LinkText: "Back to reports",
	})
}

// renderInternalError renders a generic 500 notice. Details belong in the log.
func renderInternalError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer) {
	renderNotice(w, r, renderer, http.StatusInternalServerError, notice{
		Kind:     "error",
		Heading:  "Something went wrong",
		Message:  "The server could not complete the request. Please try again later.",
		LinkURL:  RouteList,
		LinkText: "Back to reports",
	})
}

// logAndHTTPError logs an error and writes an HTTP error response.
func logAndHTTPError(w http.ResponseWriter, message string, statusCode int, logMsg string, args ...any) {
	slog.Error(logMsg, args...)
	http.Error(w, message, statusCode)
}

// logAndInternalError logs an error and writes a 500 Internal Server Error response.
func logAndInternalError(w http.ResponseWriter, logMsg string, args ...any) {
	logAndHTTPError(w, "Internal Server Error", http.StatusInternalServerError, logMsg, args...)
}
