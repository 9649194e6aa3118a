// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render parses the embedded HTML templates and renders pages.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/incident-intake/internal/report"
	"github.com/olegiv/incident-intake/internal/session"
	"github.com/olegiv/incident-intake/internal/store"
)

const (
	baseLayout  = "layouts/base.html"
	partialsDir = "partials"
	layoutsDir  = "layouts"
)

// Renderer handles template rendering with caching.
type Renderer struct {
	templates      map[string]*template.Template
	sessionManager *scs.SessionManager
	isDev          bool
	appName        string
}

// Config holds renderer configuration.
type Config struct {
	TemplatesFS    fs.FS
	SessionManager *scs.SessionManager
	IsDev          bool
	// AppName is shown in page titles and the header. Defaults to "Incident Intake".
	AppName string
}

// New creates a new Renderer with parsed templates.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		templates:      make(map[string]*template.Template),
		sessionManager: cfg.SessionManager,
		isDev:          cfg.IsDev,
		appName:        cfg.AppName,
	}
	if r.appName == "" {
		r.appName = "Incident Intake"
	}

	if err := r.parseTemplates(cfg.TemplatesFS); err != nil {
		return nil, err
	}

	return r, nil
}

// parseTemplates parses every page template together with the base layout
// and all partials. A page is any .html file outside layouts/ and partials/;
// it is registered under its path without the extension, e.g. "reports/list".
func (r *Renderer) parseTemplates(templatesFS fs.FS) error {
	partials, err := templateFiles(templatesFS, partialsDir)
	if err != nil {
		return fmt.Errorf("getting partials: %w", err)
	}

	var pages []string
	err = fs.WalkDir(templatesFS, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p == partialsDir || p == layoutsDir {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(p, ".html") {
			pages = append(pages, p)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking templates: %w", err)
	}

	for _, page := range pages {
		name := strings.TrimSuffix(page, ".html")

		files := []string{baseLayout}
		files = append(files, partials...)
		files = append(files, page)

		tmpl, err := template.New("").Funcs(r.TemplateFuncs()).ParseFS(templatesFS, files...)
		if err != nil {
			return fmt.Errorf("parsing template %s: %w", name, err)
		}

		r.templates[name] = tmpl
	}

	if len(r.templates) == 0 {
		return fmt.Errorf("no page templates found")
	}

	return nil
}

// templateFiles returns all .html files in a directory.
func templateFiles(templatesFS fs.FS, dir string) ([]string, error) {
	var files []string

	entries, err := fs.ReadDir(templatesFS, dir)
	if err != nil {
		// No partials is fine.
		return files, nil
	}

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".html") {
			files = append(files, path.Join(dir, entry.Name()))
		}
	}

	return files, nil
}

// Has reports whether a page template is registered under name.
func (r *Renderer) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

// TemplateFuncs returns the custom template functions.
func (r *Renderer) TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatTimestamp": FormatTimestamp,
		"clientSummary":   report.ClientSummary,
		"label":           report.Label,
		"truncate": func(s string, length int) string {
			if utf8.RuneCountInString(s) <= length {
				return s
			}
			return string([]rune(s)[:length]) + "…"
		},
		"orDash": func(s string) string {
			if s == "" {
				return "-"
			}
			return s
		},
		"maxLen": maxLen,
	}
}

// FormatTimestamp renders a stored created_at value for display.
// Values that do not parse are returned unchanged.
func FormatTimestamp(s string) string {
	t, err := time.Parse(store.TimestampLayout, s)
	if err != nil {
		return s
	}
	return t.UTC().Format("2006-01-02 15:04 UTC")
}

// maxLen returns the maxlength attribute for a form field.
func maxLen(field string) int {
	switch field {
	case report.FieldCategory:
		return report.MaxCategory
	case report.FieldWhen:
		return report.MaxWhen
	case report.FieldLocation:
		return report.MaxLocation
	case report.FieldTitle:
		return report.MaxTitle
	case report.FieldAsset:
		return report.MaxAsset
	case report.FieldDescription:
		return report.MaxDescription
	case report.FieldImmediate:
		return report.MaxImmediate
	case report.FieldTz:
		return report.MaxTz
	case report.FieldContactName:
		return report.MaxContactName
	case report.FieldContactEmail:
		return report.MaxContactEmail
	}
	return 0
}

// TemplateData holds data passed to templates.
type TemplateData struct {
	Title       string
	AppName     string
	Data        any
	Flash       string
	FlashType   string
	CurrentYear int
	IsDev       bool
}

// Render renders a page with status 200.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, name string, data TemplateData) error {
	return r.RenderStatus(w, req, http.StatusOK, name, data)
}

// RenderStatus renders a page with the given status code. Nothing is written
// to w when the template fails.
func (r *Renderer) RenderStatus(w http.ResponseWriter, req *http.Request, status int, name string, data TemplateData) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	data.CurrentYear = time.Now().Year()
	data.AppName = r.appName
	data.IsDev = r.isDev

	if data.Flash == "" {
		data.Flash, data.FlashType = session.PopFlash(req.Context(), r.sessionManager)
	}

	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, "base", data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
	return nil
}

// SetFlash sets a flash message in the session.
func (r *Renderer) SetFlash(req *http.Request, message, flashType string) {
	session.PutFlash(req.Context(), r.sessionManager, message, flashType)
}
