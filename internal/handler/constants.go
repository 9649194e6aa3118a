// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route paths.
const (
	RouteList      = "/"
	RouteNew       = "/new"
	RouteReport    = "/report/{id}"
	RouteSubmit    = "/submit"
	RouteAPIReport = "/api/report"
	RouteHealthz   = "/healthz"
	RouteReadyz    = "/readyz"
	RouteStatic    = "/static/*"
)

// Page template names.
const (
	TemplateList   = "reports/list"
	TemplateForm   = "reports/form"
	TemplateNotice = "errors/notice"
)

// HoneypotField is a form field hidden from humans; bots tend to fill it.
const HoneypotField = "_website"

// MaxBodyBytes caps a submission body.
const MaxBodyBytes = 64 << 10

// listSuccessURL is where a browser lands after a successful submission.
const listSuccessURL = "/?ok=1"

// Categories suggested by the form. Any other value is accepted.
var Categories = []string{
	"Safety",
	"Security",
	"Environmental",
	"Equipment",
	"Quality",
	"Near miss",
	"Other",
}
