// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package report validates and normalises incoming incident reports.
package report

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Form field names as posted by the intake form.
const (
	FieldCategory     = "category"
	FieldWhen         = "when"
	FieldLocation     = "location"
	FieldTitle        = "title"
	FieldDescription  = "description"
	FieldAsset        = "asset"
	FieldImmediate    = "immediate"
	FieldTz           = "tz"
	FieldContactName  = "contact_name"
	FieldContactEmail = "contact_email"
)

// Maximum stored length, in characters, per field.
const (
	MaxCategory     = 200
	MaxTitle        = 300
	MaxLocation     = 300
	MaxAsset        = 200
	MaxDescription  = 5000
	MaxImmediate    = 2000
	MaxWhen         = 100
	MaxTz           = 64
	MaxContactName  = 200
	MaxContactEmail = 254
	MaxUserAgent    = 500
)

// RequiredFields lists the fields that must be non-blank, in display order.
var RequiredFields = []string{
	FieldCategory,
	FieldWhen,
	FieldLocation,
	FieldTitle,
	FieldDescription,
}

// Input is a submitted report before it is stored.
type Input struct {
	Category     string `json:"category"`
	When         string `json:"when"`
	Location     string `json:"location"`
	Title        string `json:"title"`
	Asset        string `json:"asset"`
	Description  string `json:"description"`
	Immediate    string `json:"immediate"`
	Tz           string `json:"tz"`
	ContactName  string `json:"contact_name"`
	ContactEmail string `json:"contact_email"`
	UserAgent    string `json:"-"`
}

// Value returns the raw value of a form field by name.
func (in Input) Value(field string) string {
	switch field {
	case FieldCategory:
		return in.Category
	case FieldWhen:
		return in.When
	case FieldLocation:
		return in.Location
	case FieldTitle:
		return in.Title
	case FieldDescription:
		return in.Description
	case FieldAsset:
		return in.Asset
	case FieldImmediate:
		return in.Immediate
	case FieldTz:
		return in.Tz
	case FieldContactName:
		return in.ContactName
	case FieldContactEmail:
		return in.ContactEmail
	}
	return ""
}

// Validate checks that every required field is present and not blank.
// It returns a *ValidationError naming all offending fields.
func Validate(in Input) error {
	var missing []string
	for _, field := range RequiredFields {
		if strings.TrimSpace(in.Value(field)) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// Sanitized returns a copy of in with every field passed through Sanitize.
func (in Input) Sanitized() Input {
	return Input{
		Category:     Sanitize(in.Category, MaxCategory),
		When:         Sanitize(in.When, MaxWhen),
		Location:     Sanitize(in.Location, MaxLocation),
		Title:        Sanitize(in.Title, MaxTitle),
		Asset:        Sanitize(in.Asset, MaxAsset),
		Description:  Sanitize(in.Description, MaxDescription),
		Immediate:    Sanitize(in.Immediate, MaxImmediate),
		Tz:           Sanitize(in.Tz, MaxTz),
		ContactName:  Sanitize(in.ContactName, MaxContactName),
		ContactEmail: Sanitize(in.ContactEmail, MaxContactEmail),
		UserAgent:    Sanitize(in.UserAgent, MaxUserAgent),
	}
}

// Sanitize normalises s to NFC, collapses whitespace runs to a single space,
// trims it and cuts it to at most max characters. Applying it twice gives
// the same result as applying it once.
func Sanitize(s string, max int) string {
	s = norm.NFC.String(s)
	s = strings.Join(strings.Fields(s), " ")
	return truncate(s, max)
}

// truncate cuts s to max runes. A space exposed at the cut is dropped.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return strings.TrimRight(s[:i], " ")
		}
		n++
	}
	return s
}
