// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

package api

import (
	"net/http"

	"github.com/tomtom215/studybuddy/internal/logging"
)

// focusSocketRequest is the query of the focus stream endpoint.
type focusSocketRequest struct {
	Session string `json:"session" validate:"omitempty,sessionid"`
}

// FocusWebSocket upgrades the request to a focus stream websocket. Clients
// that pass the same ?session= share one focus session; without it a new
// session id is generated and announced in the first message.
func (h *Handler) FocusWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.focus == nil {
		respondError(w, http.StatusServiceUnavailable, codeUnavailable, "Focus stream is not running", nil)
		return
	}

	req := focusSocketRequest{Session: r.URL.Query().Get("session")}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, codeInvalidSess, apiErr.Message, nil)
		return
	}
	if req.Session == "" {
		req.Session = h.newSessionID()
	}

	ctx := logging.ContextWithSessionID(r.Context(), req.Session)
	logging.Ctx(ctx).Debug().Str("remote_addr", r.RemoteAddr).Msg("Focus stream requested")

	h.focus.ServeSession(w, r.WithContext(ctx), req.Session)
}
