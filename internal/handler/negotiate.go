// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"mime"
	"net/http"
	"strconv"
	"strings"
)

const (
	mediaJSON = "application/json"
	mediaHTML = "text/html"
)

// wantsJSON decides the response format of a submission. JSON wins when the
// Accept header ranks application/json above text/html. When neither is
// named, the body format decides.
func wantsJSON(r *http.Request, bodyIsJSON bool) bool {
	jsonQ, htmlQ := acceptQuality(r.Header.Get("Accept"))
	switch {
	case jsonQ > htmlQ:
		return true
	case htmlQ > 0:
		return false
	default:
		return bodyIsJSON
	}
}

// acceptQuality returns the q-values the Accept header gives to JSON and HTML.
// Only explicit media types and type/* ranges count; */* is ignored.
func acceptQuality(accept string) (jsonQ, htmlQ float64) {
	jsonRank, htmlRank := 0, 0

	for _, part := range strings.Split(accept, ",") {
		mediaType, params, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}

		q := 1.0
		if v, ok := params["q"]; ok {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				q = f
			}
		}

		// Exact types take precedence over type/* ranges.
		switch mediaType {
		case mediaJSON:
			jsonQ, jsonRank = q, 2
		case "application/*":
			if jsonRank < 2 {
				jsonQ, jsonRank = q, 1
			}
		case mediaHTML:
			htmlQ, htmlRank = q, 2
		case "text/*":
			if htmlRank < 2 {
				htmlQ, htmlRank = q, 1
			}
		}
	}

	return jsonQ, htmlQ
}

// isJSONContent reports whether the request body is declared as JSON.
func isJSONContent(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && (mediaType == mediaJSON || strings.HasSuffix(mediaType, "+json"))
}
