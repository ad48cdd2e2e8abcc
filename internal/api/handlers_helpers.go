// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/studybuddy/internal/logging"
	"github.com/tomtom215/studybuddy/internal/models"
	"github.com/tomtom215/studybuddy/internal/validation"
)

// sanitizeLogValue escapes control characters so client supplied strings
// (file names, model errors) cannot forge log lines.
func sanitizeLogValue(s string) string {
	if strings.IndexFunc(s, isControl) < 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		if isControl(r) {
			fmt.Fprintf(&b, `\x%02x`, r)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isControl(r rune) bool { return r < 0x20 || r == 0x7f }

// writeJSON writes v as an uncached JSON body.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	hdr := w.Header()
	hdr.Set("Content-Type", "application/json")
	hdr.Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Debug().Err(err).Msg("Client went away before the response was written")
	}
}

// respondJSON fills in the envelope metadata and writes it.
func respondJSON(w http.ResponseWriter, status int, resp *models.APIResponse) {
	if resp.Metadata.Timestamp.IsZero() {
		resp.Metadata.Timestamp = time.Now().UTC()
	}
	if resp.Metadata.RequestID == "" {
		resp.Metadata.RequestID = w.Header().Get(requestIDHeader)
	}
	writeJSON(w, status, resp)
}

// respondError writes the error envelope. err, when set, is logged and never
// sent to the client.
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		ev := logging.Warn()
		if status >= http.StatusInternalServerError {
			ev = logging.Error()
		}
		ev.Int("status", status).
			Str("code", code).
			Str("request_id", w.Header().Get(requestIDHeader)).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("Request failed")
	}

	respondJSON(w, status, &models.APIResponse{
		Status: "error",
		Error:  &models.APIError{Code: code, Message: message},
	})
}

// validateRequest runs the struct validator over v.
func validateRequest(v interface{}) *models.APIError {
	verr := validation.ValidateStruct(v)
	if verr == nil {
		return nil
	}
	e := verr.ToAPIError()
	return &models.APIError{Code: e.Code, Message: e.Message, Details: e.Details}
}

// decodeJSONBody reads at most limit bytes of JSON into v. On failure it has
// already written the response and returns false.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, limit int64, v interface{}) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	var tooBig *http.MaxBytesError
	switch {
	case errors.As(err, &tooBig):
		respondError(w, http.StatusRequestEntityTooLarge, codeTooLarge,
			fmt.Sprintf("Request body exceeds %d bytes", tooBig.Limit), nil)
	case err != nil:
		respondError(w, http.StatusBadRequest, codeInvalidJSON, "Could not read request body", err)
	case len(body) == 0:
		respondError(w, http.StatusBadRequest, codeInvalidJSON, "Request body is empty", nil)
	case json.Unmarshal(body, v) != nil:
		respondError(w, http.StatusBadRequest, codeInvalidJSON, "Request body is not valid JSON", nil)
	default:
		return true
	}
	return false
}
