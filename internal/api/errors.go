// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

package api

import "errors"

// ErrStudioUnavailable is reported when the study content services are
// disabled or have no model credentials.
var ErrStudioUnavailable = errors.New("study content services are not configured")

// Error codes used in responses.
const (
	codeValidation   = "VALIDATION_ERROR"
	codeInvalidJSON  = "INVALID_JSON"
	codeInvalidSess  = "INVALID_SESSION"
	codeTooLarge     = "PAYLOAD_TOO_LARGE"
	codeUpstream     = "UPSTREAM_ERROR"
	codeUnavailable  = "SERVICE_UNAVAILABLE"
	codeInternal     = "INTERNAL_ERROR"
	codeMethodNotAll = "METHOD_NOT_ALLOWED"
	codeNotFound     = "NOT_FOUND"
	codeRateLimited  = "RATE_LIMIT_EXCEEDED"
)

const requestIDHeader = "X-Request-ID"
