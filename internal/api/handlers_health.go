// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/studybuddy/internal/models"
)

// HealthLive answers 200 while the process runs, whatever its dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   map[string]interface{}{"alive": true, "uptime": h.uptime()},
	})
}

// HealthReady answers 200 only when every registered check passes: the
// landmark pool has a live worker, the focus stream is running, and so on.
// Otherwise it answers 503 with the per-check results.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}

	components, ready := h.runChecks()
	body := models.HealthStatus{
		Status:     "ready",
		Version:    Version,
		Uptime:     h.uptime(),
		Components: components,
	}
	status := http.StatusOK
	if !ready {
		body.Status, status = "not_ready", http.StatusServiceUnavailable
	}
	respondJSON(w, status, &models.APIResponse{Status: body.Status, Data: body})
}

func (h *Handler) uptime() float64 {
	return time.Since(h.startTime).Seconds()
}

// requireGet answers 405 for anything but GET.
func requireGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet {
		return true
	}
	respondError(w, http.StatusMethodNotAllowed, codeMethodNotAll, "Method not allowed", nil)
	return false
}
