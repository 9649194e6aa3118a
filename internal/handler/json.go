// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"
)

// submitResponse is the JSON body of every /submit and /api/report reply.
type submitResponse struct {
	OK     bool     `json:"ok"`
	ID     int64    `json:"id,omitempty"`
	Saved  bool     `json:"saved,omitempty"`
	Error  string   `json:"error,omitempty"`
	Fields []string `json:"fields,omitempty"`
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONError writes a JSON error response.
func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, submitResponse{OK: false, Error: message})
}
