// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/studybuddy/internal/middleware"
)

// gzipLevel is the compression level for study content responses.
const gzipLevel = 5

// chiMiddleware adapts http.HandlerFunc middleware to Chi's func(http.Handler) http.Handler.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// Router wires handlers and middleware into a chi router.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router for handler.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, chiMiddleware: mw}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight is answered

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, codeNotFound, "Not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, codeMethodNotAll, "Method not allowed", nil)
	})

	// ========================
	// Operations
	// ========================
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})
	r.Handle("/metrics", promhttp.Handler())

	// ========================
	// Focus Stream
	// ========================
	r.Group(func(r chi.Router) {
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Get("/ws/focus", router.handler.FocusWebSocket)
		r.Get("/api/v1/focus/ws", router.handler.FocusWebSocket)
	})

	// ========================
	// Study Content
	// ========================
	// Both mounts share one limiter.
	studio := router.studioRoutes(router.chiMiddleware.RateLimit())
	r.Group(studio)
	r.Route("/api/v1/studio", studio)

	return r
}

func (router *Router) studioRoutes(limit func(http.Handler) http.Handler) func(chi.Router) {
	return func(r chi.Router) {
		r.Use(limit)
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(chimiddleware.Compress(gzipLevel, "application/json"))

		r.Post("/upload", router.handler.UploadDocument)
		r.Post("/generate-flashcards", router.handler.GenerateFlashcards)
		r.Post("/generate-quiz", router.handler.GenerateQuiz)
		r.Post("/generate-mindmap", router.handler.GenerateMindmap)
		r.Post("/generate-mini-game", router.handler.GenerateMiniGame)
	}
}
