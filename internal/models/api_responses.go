// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

package models

import "time"

// APIResponse wraps health payloads and every error. Study content is
// returned bare on success.
//
//	{"status":"error","data":null,
//	 "error":{"code":"UPSTREAM_ERROR","message":"..."},
//	 "metadata":{"timestamp":"...","request_id":"..."}}
type APIResponse struct {
	Status   string      `json:"status"` // "success", "error", "ready" or "not_ready"
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// APIError carries a stable machine-readable Code (VALIDATION_ERROR,
// INVALID_SESSION, PAYLOAD_TOO_LARGE, UPSTREAM_ERROR, SERVICE_UNAVAILABLE and
// so on) next to a message meant for people.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthStatus is the readiness probe payload.
type HealthStatus struct {
	Status     string          `json:"status"`
	Version    string          `json:"version"`
	Uptime     float64         `json:"uptime_seconds"`
	Components map[string]bool `json:"components"`
}

// StudyTextRequest is the body of the text based generators.
type StudyTextRequest struct {
	Text string `json:"text" validate:"required"`
}
