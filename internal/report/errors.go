// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package report

import "strings"

// ValidationError reports required fields that were missing or blank.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required field(s): " + strings.Join(e.Fields, ", ")
}

// FieldErrors maps each missing field to a human readable message,
// ready to be shown next to the form input.
func (e *ValidationError) FieldErrors() map[string]string {
	errs := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		errs[f] = Label(f) + " is required"
	}
	return errs
}

// Label returns the display label of a form field.
func Label(field string) string {
	switch field {
	case FieldCategory:
		return "Category"
	case FieldWhen:
		return "When"
	case FieldLocation:
		return "Location"
	case FieldTitle:
		return "Title"
	case FieldDescription:
		return "Description"
	case FieldAsset:
		return "Asset"
	case FieldImmediate:
		return "Immediate actions"
	case FieldTz:
		return "Timezone"
	case FieldContactName:
		return "Contact name"
	case FieldContactEmail:
		return "Contact email"
	}
	return field
}
