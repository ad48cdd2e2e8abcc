// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

package api

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/studybuddy/internal/config"
	"github.com/tomtom215/studybuddy/internal/studio"
)

// FocusStream attaches websocket clients to focus sessions.
// Implemented by *websocket.Hub.
type FocusStream interface {
	ServeSession(w http.ResponseWriter, r *http.Request, sessionID string)
	Running() bool
}

// StudyService generates study content. Implemented by *studio.Service.
type StudyService interface {
	Summarize(ctx context.Context, filename, mimeType string, data []byte) (*studio.Content, error)
	Flashcards(ctx context.Context, text string) (*studio.Content, error)
	Quiz(ctx context.Context, text string) (*studio.Content, error)
	Mindmap(ctx context.Context, text string) (*studio.Content, error)
	MiniGame(ctx context.Context, text string) (*studio.Content, error)
}

// ReadinessCheck reports whether one dependency can serve traffic.
type ReadinessCheck func() bool

// Version is reported by the readiness probe; overridden at build time.
var Version = "dev"

// Handler contains dependencies for API handlers
//
// Handler methods are split across files:
//   - handlers.go: Handler struct and constructor (this file)
//   - handlers_helpers.go: response and request helpers
//   - handlers_health.go: liveness and readiness probes
//   - handlers_focus.go: focus stream websocket endpoint
//   - handlers_studio.go: study content endpoints
type Handler struct {
	focus          FocusStream
	studio         StudyService // nil when study content is unavailable
	maxUploadBytes int64
	maxTextBytes   int
	startTime      time.Time
	newSessionID   func() string

	checksMu sync.RWMutex
	checks   map[string]ReadinessCheck
}

// NewHandler creates the API handler. studyService may be nil, in which case
// the study content endpoints answer 503.
func NewHandler(cfg *config.Config, focus FocusStream, studyService StudyService) *Handler {
	h := &Handler{
		focus:          focus,
		studio:         studyService,
		maxUploadBytes: cfg.Studio.MaxUploadBytes,
		maxTextBytes:   cfg.Studio.MaxTextBytes,
		startTime:      time.Now(),
		newSessionID:   uuid.NewString,
		checks:         make(map[string]ReadinessCheck),
	}
	if focus != nil {
		h.AddReadinessCheck("focus_stream", focus.Running)
	}
	return h
}

// AddReadinessCheck registers a named dependency for the readiness probe.
func (h *Handler) AddReadinessCheck(name string, check ReadinessCheck) {
	h.checksMu.Lock()
	defer h.checksMu.Unlock()
	h.checks[name] = check
}

// runChecks evaluates every readiness check in name order.
func (h *Handler) runChecks() (map[string]bool, bool) {
	h.checksMu.RLock()
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	checks := make([]ReadinessCheck, 0, len(names))
	sort.Strings(names)
	for _, name := range names {
		checks = append(checks, h.checks[name])
	}
	h.checksMu.RUnlock()

	results := make(map[string]bool, len(names))
	ready := true
	for i, name := range names {
		ok := checks[i]()
		results[name] = ok
		ready = ready && ok
	}
	return results, ready
}
