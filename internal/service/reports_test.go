// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/incident-intake/internal/report"
	"github.com/olegiv/incident-intake/internal/store"
	"github.com/olegiv/incident-intake/internal/testutil"
)

func newTestService(t *testing.T, n *testutil.RecordingNotifier) (*ReportService, *sql.DB) {
	t.Helper()
	db := testutil.TestDB(t)
	svc := NewReportService(db, n, ReportServiceConfig{
		Location: time.UTC,
		Logger:   testutil.TestLoggerSilent(),
		Events:   NewEventService(db),
	})
	return svc, db
}

func validInput() report.Input {
	return report.Input{
		Category:    "Safety",
		When:        "2026-10-16 07:45",
		Location:    "Line 3",
		Title:       "Guard rail loose",
		Description: "Bolt sheared on the north rail.",
		UserAgent:   "curl/8.4.0",
	}
}

func TestSubmit_ValidationCreatesNoRow(t *testing.T) {
	for _, field := range report.RequiredFields {
		t.Run(field, func(t *testing.T) {
			n := &testutil.RecordingNotifier{}
			svc, db := newTestService(t, n)

			in := validInput()
			switch field {
			case report.FieldCategory:
				in.Category = " "
			case report.FieldWhen:
				in.When = ""
			case report.FieldLocation:
				in.Location = "\t"
			case report.FieldTitle:
				in.Title = ""
			case report.FieldDescription:
				in.Description = "\n\n"
			}

			_, err := svc.Submit(context.Background(), in)

			var verr *report.ValidationError
			require.True(t, errors.As(err, &verr), "err = %v", err)
			assert.Equal(t, []string{field}, verr.Fields)
			assert.Equal(t, int64(0), testutil.CountReports(t, db))
			assert.Empty(t, n.Reports())
		})
	}
}

func TestSubmit_CreatesOneRowWithIncreasingIDs(t *testing.T) {
	n := &testutil.RecordingNotifier{}
	svc, db := newTestService(t, n)
	ctx := context.Background()

	var last int64
	for i := 0; i < 3; i++ {
		before := time.Now().UTC().Truncate(time.Millisecond)
		res, err := svc.Submit(ctx, validInput())
		after := time.Now().UTC()
		require.NoError(t, err)

		assert.Greater(t, res.ID, last)
		last = res.ID
		assert.Equal(t, int64(i+1), testutil.CountReports(t, db))

		created, err := time.Parse(store.TimestampLayout, res.Report.CreatedAt)
		require.NoError(t, err)
		assert.False(t, created.Before(before), "created %v before %v", created, before)
		assert.False(t, created.After(after), "created %v after %v", created, after)
	}

	assert.Len(t, n.Reports(), 3)
}

func TestSubmit_SanitizesAndDefaultsTimezone(t *testing.T) {
	svc, _ := newTestService(t, &testutil.RecordingNotifier{})

	in := validInput()
	in.Title = "  Guard   rail\n loose  "
	in.Description = strings.Repeat("x", report.MaxDescription+10)

	res, err := svc.Submit(context.Background(), in)
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, "Guard rail loose", got.Title)
	assert.Len(t, got.Description, report.MaxDescription)
	assert.Equal(t, "UTC", got.Tz)
	assert.Equal(t, "curl/8.4.0", got.UserAgent)
	assert.Equal(t, res.Report, got)
}

func TestSubmit_KeepsClientTimezone(t *testing.T) {
	svc, _ := newTestService(t, &testutil.RecordingNotifier{})

	in := validInput()
	in.Tz = "America/Chicago"

	res, err := svc.Submit(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "America/Chicago", res.Report.Tz)
}

func TestSubmit_NotificationFailureKeepsRow(t *testing.T) {
	n := &testutil.RecordingNotifier{Err: errors.New("smtp: connection refused")}
	svc, db := newTestService(t, n)

	res, err := svc.Submit(context.Background(), validInput())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotification)
	assert.NotZero(t, res.ID)
	assert.Equal(t, int64(1), testutil.CountReports(t, db))

	got, err := svc.Get(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Report.Title, got.Title)
}

func TestSubmit_NotifyOutlivesCanceledRequest(t *testing.T) {
	n := &testutil.RecordingNotifier{}
	svc, _ := newTestService(t, n)

	ctx, cancel := context.WithCancel(context.Background())
	res, err := svc.Submit(ctx, validInput())
	require.NoError(t, err)
	cancel()

	assert.NotZero(t, res.ID)
	require.Len(t, n.ContextErrs(), 1)
	assert.NoError(t, n.ContextErrs()[0])
}

func TestSubmit_PersistenceFailure(t *testing.T) {
	n := &testutil.RecordingNotifier{}
	svc, db := newTestService(t, n)
	require.NoError(t, db.Close())

	_, err := svc.Submit(context.Background(), validInput())
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Empty(t, n.Reports())
}

func TestGet_NotFound(t *testing.T) {
	svc, _ := newTestService(t, &testutil.RecordingNotifier{})

	_, err := svc.Get(context.Background(), 12345)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList_NewestFirst(t *testing.T) {
	svc, _ := newTestService(t, &testutil.RecordingNotifier{})
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 3; i++ {
		res, err := svc.Submit(ctx, validInput())
		require.NoError(t, err)
		ids = append(ids, res.ID)
	}

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []int64{ids[2], ids[1], ids[0]}, []int64{list[0].ID, list[1].ID, list[2].ID})

	count, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestTimezoneName(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", TimezoneName(loc))
	assert.Equal(t, "UTC", TimezoneName(time.UTC))

	t.Setenv("TZ", "Europe/Lisbon")
	assert.Equal(t, "Europe/Lisbon", TimezoneName(time.Local))
}
