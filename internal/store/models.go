// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import "time"

// Report is one row of the reports table.
type Report struct {
	ID           int64  `json:"id"`
	CreatedAt    string `json:"created_at"`
	Category     string `json:"category"`
	Title        string `json:"title"`
	Location     string `json:"location"`
	Asset        string `json:"asset"`
	Description  string `json:"description"`
	Immediate    string `json:"immediate"`
	WhenTs       string `json:"when_ts"`
	Tz           string `json:"tz"`
	ContactName  string `json:"contact_name"`
	ContactEmail string `json:"contact_email"`
	UserAgent    string `json:"user_agent"`
}

// ReportSummary is the subset of a report shown in the list view.
type ReportSummary struct {
	ID        int64  `json:"id"`
	CreatedAt string `json:"created_at"`
	Category  string `json:"category"`
	Title     string `json:"title"`
	Location  string `json:"location"`
	Asset     string `json:"asset"`
}

// Event is one row of the events table.
type Event struct {
	ID        int64     `json:"id"`
	Level     string    `json:"level"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Metadata  string    `json:"metadata"`
	CreatedAt time.Time `json:"created_at"`
}
