// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/olegiv/incident-intake/internal/report"
	"github.com/olegiv/incident-intake/internal/store"
	"github.com/olegiv/incident-intake/web"
)

type listView struct {
	Reports   []store.ReportSummary
	Submitted bool
	Capped    bool
	Limit     int
}

type formView struct {
	ReadOnly   bool
	ID         int64
	CreatedAt  string
	Client     string
	Values     report.Input
	Errors     map[string]string
	Categories []string
}

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		t.Fatalf("fs.Sub: %v", err)
	}
	r, err := New(Config{TemplatesFS: templatesFS, IsDev: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func TestNew_RegistersPages(t *testing.T) {
	r := newTestRenderer(t)

	for _, name := range []string{"reports/list", "reports/form", "errors/notice"} {
		if !r.Has(name) {
			t.Errorf("template %q not registered", name)
		}
	}
	if r.Has("partials/flash") || r.Has("layouts/base") {
		t.Error("partials and layouts must not be registered as pages")
	}
}

func TestNew_NoPages(t *testing.T) {
	fsys := fstest.MapFS{
		"layouts/base.html": {Data: []byte(`{{define "base"}}{{end}}`)},
	}
	if _, err := New(Config{TemplatesFS: fsys}); err == nil {
		t.Error("expected error when no page templates exist")
	}
}

func TestRender_UnknownTemplate(t *testing.T) {
	r := newTestRenderer(t)
	rec := httptest.NewRecorder()

	err := r.Render(rec, httptest.NewRequest(http.MethodGet, "/", nil), "nope", TemplateData{})
	if err == nil {
		t.Fatal("expected error for unknown template")
	}
	if rec.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", rec.Body.String())
	}
}

func TestRender_List(t *testing.T) {
	r := newTestRenderer(t)
	rec := httptest.NewRecorder()

	data := TemplateData{
		Title: "Reports",
		Data: listView{
			Submitted: true,
			Limit:     store.ListLimit,
			Reports: []store.ReportSummary{
				{ID: 2, CreatedAt: "2026-10-16T08:30:00.000Z", Category: "Safety", Title: "<script>alert(1)</script>", Location: "Dock"},
				{ID: 1, CreatedAt: "2026-10-15T07:00:00.000Z", Category: "Quality", Title: "Bad batch", Location: "Line 2", Asset: "M-7"},
			},
		},
	}
	if err := r.Render(rec, httptest.NewRequest(http.MethodGet, "/?ok=1", nil), "reports/list", data); err != nil {
		t.Fatalf("Render: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}

	body := rec.Body.String()
	for _, want := range []string{
		"Report submitted",
		`href="/report/2"`,
		`href="/report/1"`,
		"2026-10-16 08:30 UTC",
		"&lt;script&gt;",
		"M-7",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
	if strings.Contains(body, "<script>alert(1)</script>") {
		t.Error("title was not escaped")
	}
	if strings.Index(body, `href="/report/2"`) > strings.Index(body, `href="/report/1"`) {
		t.Error("rows not rendered in the given order")
	}
}

func TestRender_ListEmpty(t *testing.T) {
	r := newTestRenderer(t)
	rec := httptest.NewRecorder()

	if err := r.Render(rec, httptest.NewRequest(http.MethodGet, "/", nil), "reports/list", TemplateData{Data: listView{}}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "No reports yet") {
		t.Error("empty state missing")
	}
	if strings.Contains(body, "Report submitted") {
		t.Error("banner shown without ok=1")
	}
}

func TestRenderStatus_FormWithErrors(t *testing.T) {
	r := newTestRenderer(t)
	rec := httptest.NewRecorder()

	data := TemplateData{
		Data: formView{
			Values: report.Input{Title: `Leak "north"`, Description: "drip"},
			Errors: map[string]string{
				report.FieldCategory: "Category is required",
				report.FieldWhen:     "When is required",
			},
		},
	}
	if err := r.RenderStatus(rec, httptest.NewRequest(http.MethodPost, "/submit", nil), http.StatusBadRequest, "reports/form", data); err != nil {
		t.Fatalf("RenderStatus: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"Category is required",
		"When is required",
		`value="Leak &#34;north&#34;"`,
		">drip</textarea>",
		`name="_website"`,
		`data-autofill="timezone"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
	if strings.Contains(body, "Title is required") {
		t.Error("unexpected error for title")
	}
}

func TestRender_FormReadOnly(t *testing.T) {
	r := newTestRenderer(t)
	rec := httptest.NewRecorder()

	data := TemplateData{
		Data: formView{
			ReadOnly:  true,
			ID:        9,
			CreatedAt: "2026-10-16T08:30:00.000Z",
			Client:    "Firefox 131.0 on Linux (desktop)",
			Values:    report.Input{Category: "Safety", Tz: "Europe/Berlin"},
		},
	}
	if err := r.Render(rec, httptest.NewRequest(http.MethodGet, "/report/9", nil), "reports/form", data); err != nil {
		t.Fatalf("Render: %v", err)
	}

	body := rec.Body.String()
	for _, want := range []string{"Report #9", "<fieldset disabled>", "Europe/Berlin", "Firefox 131.0"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
	if strings.Contains(body, "Submit report") || strings.Contains(body, "_website") {
		t.Error("read-only view must not be submittable")
	}
}

func TestRender_ExplicitFlash(t *testing.T) {
	r := newTestRenderer(t)
	rec := httptest.NewRecorder()

	data := TemplateData{
		Flash:     "Saved",
		FlashType: "success",
		Data:      listView{},
	}
	if err := r.Render(rec, httptest.NewRequest(http.MethodGet, "/", nil), "reports/list", data); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `class="flash flash-success"`) {
		t.Error("flash not rendered")
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"2026-10-16T08:30:00.000Z", "2026-10-16 08:30 UTC"},
		{"not a time", "not a time"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := FormatTimestamp(tt.in); got != tt.want {
			t.Errorf("FormatTimestamp(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTemplateFuncs_Truncate(t *testing.T) {
	truncate := (&Renderer{}).TemplateFuncs()["truncate"].(func(string, int) string)

	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q, want %q", got, "short")
	}
	if got := truncate("ééééé", 2); got != "éé…" {
		t.Errorf("truncate = %q, want %q", got, "éé…")
	}
}

func TestTemplateFuncs_MaxLen(t *testing.T) {
	if got := maxLen(report.FieldDescription); got != report.MaxDescription {
		t.Errorf("maxLen(description) = %d, want %d", got, report.MaxDescription)
	}
	if got := maxLen("unknown"); got != 0 {
		t.Errorf("maxLen(unknown) = %d, want 0", got)
	}
}
