// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package notify sends best-effort notifications about newly stored reports.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/olegiv/incident-intake/internal/report"
	"github.com/olegiv/incident-intake/internal/store"
)

// Notifier delivers a notification for a report that is already persisted.
// Implementations make a single attempt and do not retry.
type Notifier interface {
	Notify(ctx context.Context, r store.Report) error
}

// Noop is used when no mail transport is configured. It never fails.
type Noop struct{}

// Notify implements Notifier.
func (Noop) Notify(context.Context, store.Report) error { return nil }

// Func adapts a plain function to the Notifier interface.
type Func func(ctx context.Context, r store.Report) error

// Notify implements Notifier.
func (f Func) Notify(ctx context.Context, r store.Report) error { return f(ctx, r) }

// Subject returns the one-line summary used as the mail subject.
func Subject(r store.Report) string {
	return fmt.Sprintf("[Incident] %s – %s", r.Category, r.Title)
}

// Body returns a plain-text rendering of every report field.
func Body(r store.Report) string {
	var sb strings.Builder

	line := func(label, value string) {
		if value == "" {
			value = "-"
		}
		sb.WriteString(label)
		sb.WriteString(": ")
		sb.WriteString(value)
		sb.WriteString("\n")
	}

	sb.WriteString("A new incident report was submitted.\n\n")
	line("ID", fmt.Sprintf("%d", r.ID))
	line("Created", r.CreatedAt)
	line(report.Label(report.FieldCategory), r.Category)
	line(report.Label(report.FieldTitle), r.Title)
	line(report.Label(report.FieldWhen), r.WhenTs)
	line(report.Label(report.FieldTz), r.Tz)
	line(report.Label(report.FieldLocation), r.Location)
	line(report.Label(report.FieldAsset), r.Asset)
	line(report.Label(report.FieldContactName), r.ContactName)
	line(report.Label(report.FieldContactEmail), r.ContactEmail)
	line("User agent", r.UserAgent)
	if summary := report.ClientSummary(r.UserAgent); summary != "" {
		line("Client", summary)
	}

	sb.WriteString("\n")
	sb.WriteString(report.Label(report.FieldDescription))
	sb.WriteString(":\n")
	sb.WriteString(orDash(r.Description))
	sb.WriteString("\n\n")
	sb.WriteString(report.Label(report.FieldImmediate))
	sb.WriteString(":\n")
	sb.WriteString(orDash(r.Immediate))
	sb.WriteString("\n")

	return sb.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
