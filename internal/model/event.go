// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model contains shared domain constants.
package model

// Event levels
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event categories
const (
	EventCategoryReport       = "report"
	EventCategoryNotification = "notification"
	EventCategoryMaintenance  = "maintenance"
	EventCategorySystem       = "system"
)

// ValidEventLevels returns all event levels, least severe first.
func ValidEventLevels() []string {
	return []string{EventLevelInfo, EventLevelWarning, EventLevelError}
}

// IsValidEventLevel checks if level is a known event level.
func IsValidEventLevel(level string) bool {
	for _, l := range ValidEventLevels() {
		if l == level {
			return true
		}
	}
	return false
}
