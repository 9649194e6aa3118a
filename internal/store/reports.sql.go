// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

// ListLimit caps the number of rows returned by ListReports.
const ListLimit = 500

// TimestampLayout is the ISO-8601 form used for reports.created_at.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTimestamp renders t in UTC using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

const createReport = `-- name: CreateReport :one
INSERT INTO reports (
    created_at, category, title, location, asset, description, immediate,
    when_ts, tz, contact_name, contact_email, user_agent
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id
`

// CreateReportParams holds the column values for a new report.
type CreateReportParams struct {
	CreatedAt    string
	Category     string
	Title        string
	Location     string
	Asset        string
	Description  string
	Immediate    string
	WhenTs       string
	Tz           string
	ContactName  string
	ContactEmail string
	UserAgent    string
}

func (q *Queries) CreateReport(ctx context.Context, arg CreateReportParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createReport,
		arg.CreatedAt,
		arg.Category,
		arg.Title,
		arg.Location,
		arg.Asset,
		arg.Description,
		arg.Immediate,
		arg.WhenTs,
		arg.Tz,
		arg.ContactName,
		arg.ContactEmail,
		arg.UserAgent,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const getReport = `-- name: GetReport :one
SELECT id, created_at, category, title, location, asset, description, immediate,
       when_ts, tz, contact_name, contact_email, user_agent
FROM reports
WHERE id = ?
`

func (q *Queries) GetReport(ctx context.Context, id int64) (Report, error) {
	row := q.db.QueryRowContext(ctx, getReport, id)
	var i Report
	err := row.Scan(
		&i.ID,
		&i.CreatedAt,
		&i.Category,
		&i.Title,
		&i.Location,
		&i.Asset,
		&i.Description,
		&i.Immediate,
		&i.WhenTs,
		&i.Tz,
		&i.ContactName,
		&i.ContactEmail,
		&i.UserAgent,
	)
	return i, err
}

const listReports = `-- name: ListReports :many
SELECT id, created_at, category, title, location, asset
FROM reports
ORDER BY id DESC
LIMIT ?
`

func (q *Queries) ListReports(ctx context.Context, limit int64) ([]ReportSummary, error) {
	rows, err := q.db.QueryContext(ctx, listReports, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ReportSummary{}
	for rows.Next() {
		var i ReportSummary
		if err := rows.Scan(
			&i.ID,
			&i.CreatedAt,
			&i.Category,
			&i.Title,
			&i.Location,
			&i.Asset,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countReports = `-- name: CountReports :one
SELECT COUNT(*) FROM reports
`

func (q *Queries) CountReports(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countReports)
	var count int64
	err := row.Scan(&count)
	return count, err
}
