// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package report

import (
	"strings"

	"github.com/mileusna/useragent"
)

// ClientSummary turns a raw User-Agent header into a short description
// such as "Firefox 131.0 on Linux (desktop)". It returns "" for an empty header.
func ClientSummary(uaString string) string {
	if strings.TrimSpace(uaString) == "" {
		return ""
	}
	ua := useragent.Parse(uaString)

	browser := ua.Name
	if browser == "" {
		browser = "Unknown client"
	} else if ua.Version != "" {
		browser += " " + ua.Version
	}

	os := ua.OS
	if os == "" {
		os = "unknown OS"
	}

	var device string
	switch {
	case ua.Bot:
		device = "bot"
	case ua.Mobile:
		device = "mobile"
	case ua.Tablet:
		device = "tablet"
	case ua.Desktop:
		device = "desktop"
	default:
		device = "unknown device"
	}

	return browser + " on " + os + " (" + device + ")"
}
