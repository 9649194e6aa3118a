// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/incident-intake/internal/render"
	"github.com/olegiv/incident-intake/internal/report"
	"github.com/olegiv/incident-intake/internal/service"
	"github.com/olegiv/incident-intake/internal/session"
	"github.com/olegiv/incident-intake/internal/store"
)

// errBodyTooLarge is returned by decodeSubmission when the body exceeds MaxBodyBytes.
var errBodyTooLarge = errors.New("request body too large")

// ReportsHandler serves the list, form, detail and submit endpoints.
type ReportsHandler struct {
	svc      *service.ReportService
	renderer *render.Renderer
	logger   *slog.Logger
}

// NewReportsHandler creates a new ReportsHandler.
func NewReportsHandler(svc *service.ReportService, renderer *render.Renderer, logger *slog.Logger) *ReportsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportsHandler{
		svc:      svc,
		renderer: renderer,
		logger:   logger,
	}
}

// listView is the data of the reports/list page.
type listView struct {
	Reports   []store.ReportSummary
	Submitted bool
	Capped    bool
	Limit     int
}

// formView is the data of the reports/form page, used both for entry
// and for the read-only detail view.
type formView struct {
	ReadOnly   bool
	ID         int64
	CreatedAt  string
	Client     string
	Values     report.Input
	Errors     map[string]string
	Categories []string
}

// List handles GET /.
func (h *ReportsHandler) List(w http.ResponseWriter, r *http.Request) {
	reports, err := h.svc.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list reports", "error", err)
		renderInternalError(w, r, h.renderer)
		return
	}

	renderPage(w, r, h.renderer, http.StatusOK, TemplateList, render.TemplateData{
		Title: "Reports",
		Data: listView{
			Reports:   reports,
			Submitted: r.URL.Query().Get("ok") == "1",
			Capped:    len(reports) >= store.ListLimit,
			Limit:     store.ListLimit,
		},
	})
}

// NewForm handles GET /new.
func (h *ReportsHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, h.renderer, http.StatusOK, TemplateForm, render.TemplateData{
		Title: "New report",
		Data:  formView{Categories: Categories},
	})
}

// Show handles GET /report/{id}.
func (h *ReportsHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		renderNotFound(w, r, h.renderer, "There is no report with that number.")
		return
	}

	rep, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			renderNotFound(w, r, h.renderer, fmt.Sprintf("Report #%d does not exist.", id))
			return
		}
		h.logger.Error("failed to get report", "error", err, "report_id", id)
		renderInternalError(w, r, h.renderer)
		return
	}

	renderPage(w, r, h.renderer, http.StatusOK, TemplateForm, render.TemplateData{
		Title: fmt.Sprintf("Report #%d", rep.ID),
		Data: formView{
			ReadOnly:  true,
			ID:        rep.ID,
			CreatedAt: rep.CreatedAt,
			Client:    report.ClientSummary(rep.UserAgent),
			Values:    inputFromReport(rep),
		},
	})
}

// Submit handles POST /submit and POST /api/report.
func (h *ReportsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	in, honeypot, err := decodeSubmission(w, r)
	asJSON := wantsJSON(r, isJSONContent(r))

	if err != nil {
		status, msg := http.StatusBadRequest, "invalid request body"
		if errors.Is(err, errBodyTooLarge) {
			status, msg = http.StatusRequestEntityTooLarge, "request body too large"
		}
		h.logger.Info("rejected submission body", "error", err, "status", status)
		if asJSON {
			writeJSONError(w, status, msg)
			return
		}
		renderNotice(w, r, h.renderer, status, notice{
			Kind:     "error",
			Heading:  "Report not accepted",
			Message:  "The submitted data could not be read (" + msg + ").",
			LinkURL:  RouteNew,
			LinkText: "Back to the form",
		})
		return
	}

	if honeypot != "" {
		// Pretend success so the bot moves on.
		h.logger.Info("honeypot triggered", "path", r.URL.Path, "ip", r.RemoteAddr)
		if asJSON {
			writeJSON(w, http.StatusCreated, submitResponse{OK: true})
			return
		}
		http.Redirect(w, r, listSuccessURL, http.StatusSeeOther)
		return
	}

	res, err := h.svc.Submit(r.Context(), in)

	var verr *report.ValidationError
	switch {
	case errors.As(err, &verr):
		h.respondInvalid(w, r, asJSON, in, verr)

	case errors.Is(err, service.ErrNotification):
		h.respondNotificationFailed(w, r, asJSON, res.ID)

	case err != nil:
		h.logger.Error("failed to store report", "error", err)
		if asJSON {
			writeJSONError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		renderInternalError(w, r, h.renderer)

	default:
		if asJSON {
			writeJSON(w, http.StatusCreated, submitResponse{OK: true, ID: res.ID})
			return
		}
		flashAndRedirect(w, r, h.renderer, listSuccessURL,
			fmt.Sprintf("Report #%d submitted. Thank you.", res.ID), session.FlashSuccess)
	}
}

func (h *ReportsHandler) respondInvalid(w http.ResponseWriter, r *http.Request, asJSON bool, in report.Input, verr *report.ValidationError) {
	if asJSON {
		writeJSON(w, http.StatusBadRequest, submitResponse{
			OK:     false,
			Error:  verr.Error(),
			Fields: verr.Fields,
		})
		return
	}

	renderPage(w, r, h.renderer, http.StatusBadRequest, TemplateForm, render.TemplateData{
		Title: "New report",
		Data: formView{
			Values:     in,
			Errors:     verr.FieldErrors(),
			Categories: Categories,
		},
	})
}

func (h *ReportsHandler) respondNotificationFailed(w http.ResponseWriter, r *http.Request, asJSON bool, id int64) {
	const msg = "report saved but notification could not be sent"
	if asJSON {
		writeJSON(w, http.StatusBadGateway, submitResponse{
			OK:    false,
			ID:    id,
			Saved: true,
			Error: msg,
		})
		return
	}

	renderNotice(w, r, h.renderer, http.StatusBadGateway, notice{
		Kind:     "warning",
		Heading:  fmt.Sprintf("Report #%d saved", id),
		Message:  fmt.Sprintf("Report #%d was saved, but the notification email could not be sent. Please let the responsible team know directly.", id),
		LinkURL:  fmt.Sprintf("/report/%d", id),
		LinkText: "View the saved report",
	})
}

// submissionBody is the JSON shape of a submission.
type submissionBody struct {
	report.Input
	Website string `json:"_website"`
}

// decodeSubmission reads a JSON, multipart or urlencoded body, capped at
// MaxBodyBytes. It returns the raw input and the honeypot value.
func decodeSubmission(w http.ResponseWriter, r *http.Request) (report.Input, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	var (
		in       report.Input
		honeypot string
	)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch {
	case isJSONContent(r):
		var body submissionBody
		dec := json.NewDecoder(r.Body)
		if err := dec.Decode(&body); err != nil {
			return in, "", bodyError(err)
		}
		if _, err := dec.Token(); !errors.Is(err, io.EOF) {
			return in, "", errors.New("trailing data after JSON object")
		}
		in, honeypot = body.Input, body.Website

	case mediaType == "multipart/form-data":
		if err := r.ParseMultipartForm(MaxBodyBytes); err != nil {
			return in, "", bodyError(err)
		}
		in, honeypot = inputFromForm(r), r.PostFormValue(HoneypotField)

	default:
		if err := r.ParseForm(); err != nil {
			return in, "", bodyError(err)
		}
		in, honeypot = inputFromForm(r), r.PostFormValue(HoneypotField)
	}

	in.UserAgent = r.UserAgent()
	return in, honeypot, nil
}

func bodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return errBodyTooLarge
	}
	return err
}

func inputFromForm(r *http.Request) report.Input {
	return report.Input{
		Category:     r.PostFormValue(report.FieldCategory),
		When:         r.PostFormValue(report.FieldWhen),
		Location:     r.PostFormValue(report.FieldLocation),
		Title:        r.PostFormValue(report.FieldTitle),
		Asset:        r.PostFormValue(report.FieldAsset),
		Description:  r.PostFormValue(report.FieldDescription),
		Immediate:    r.PostFormValue(report.FieldImmediate),
		Tz:           r.PostFormValue(report.FieldTz),
		ContactName:  r.PostFormValue(report.FieldContactName),
		ContactEmail: r.PostFormValue(report.FieldContactEmail),
	}
}

func inputFromReport(rep store.Report) report.Input {
	return report.Input{
		Category:     rep.Category,
		When:         rep.WhenTs,
		Location:     rep.Location,
		Title:        rep.Title,
		Asset:        rep.Asset,
		Description:  rep.Description,
		Immediate:    rep.Immediate,
		Tz:           rep.Tz,
		ContactName:  rep.ContactName,
		ContactEmail: rep.ContactEmail,
		UserAgent:    rep.UserAgent,
	}
}
