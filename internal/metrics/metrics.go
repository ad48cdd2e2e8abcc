// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Focus pipeline
	FramesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "focus_frames_received_total",
			Help: "Total number of video frames received on focus sessions",
		},
	)

	FramesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "focus_frames_dropped_total",
			Help: "Frames discarded before processing",
		},
		[]string{"reason"},
	)

	FramesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "focus_frames_processed_total",
			Help: "Frames that went through the pipeline, by outcome",
		},
		[]string{"outcome"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "focus_stage_duration_seconds",
			Help:    "Duration of each pipeline stage in seconds",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"stage"},
	)

	FocusScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "focus_score",
			Help:    "Distribution of emitted focus scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	EventsPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "focus_events_published_total",
			Help: "Focus score events handed to the stream publisher",
		},
	)

	EventsPublishFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "focus_events_publish_failed_total",
			Help: "Focus score events the publisher rejected",
		},
	)

	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "focus_sessions_active",
			Help: "Number of open focus sessions",
		},
	)

	// Landmark workers
	LandmarkWorkersAlive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "landmark_workers_alive",
			Help: "Face-mesh worker processes currently running",
		},
	)

	LandmarkWorkerRestarts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "landmark_worker_restarts_total",
			Help: "Face-mesh worker processes replaced after a failure",
		},
	)

	// HTTP and websocket
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests being served",
		},
	)

	WSConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections_active",
			Help: "Number of open websocket connections",
		},
	)

	// Study content
	StudioRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_requests_total",
			Help: "Study content generation requests by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	StudioCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_cache_lookups_total",
			Help: "Study content cache lookups by result (hit, miss)",
		},
		[]string{"result"},
	)

	StudioLLMDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "studio_llm_duration_seconds",
			Help:    "Latency of language model calls in seconds",
			Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 20, 40, 80},
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

// Drop reasons for RecordFrameDropped.
const (
	DropSuperseded  = "superseded"
	DropRejected    = "rejected"
	DropRateLimited = "rate_limited"
	DropOversized   = "oversized"
	DropClosed      = "closed"
)

// Outcomes for RecordFrameProcessed.
const (
	OutcomeScored      = "scored"
	OutcomeNoFace      = "no_face"
	OutcomeDecodeError = "decode_error"
	OutcomeModelError  = "model_error"
)

// RecordFrameReceived counts one inbound frame.
func RecordFrameReceived() {
	FramesReceived.Inc()
}

// RecordFrameDropped counts a frame discarded before processing.
func RecordFrameDropped(reason string) {
	FramesDropped.WithLabelValues(reason).Inc()
}

// RecordFrameProcessed counts a frame by pipeline outcome.
func RecordFrameProcessed(outcome string) {
	FramesProcessed.WithLabelValues(outcome).Inc()
}

// RecordStage observes one pipeline stage duration.
func RecordStage(stage string, d time.Duration) {
	StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordFocusScore observes an emitted score.
func RecordFocusScore(score int) {
	FocusScore.Observe(float64(score))
}

// RecordEventPublish counts a publish attempt by result.
func RecordEventPublish(err error) {
	if err != nil {
		EventsPublishFailed.Inc()
		return
	}
	EventsPublished.Inc()
}

// TrackSession adjusts the open session gauge.
func TrackSession(open bool) {
	if open {
		SessionsActive.Inc()
	} else {
		SessionsActive.Dec()
	}
}

// TrackWebSocket adjusts the open websocket gauge.
func TrackWebSocket(open bool) {
	if open {
		WSConnectionsActive.Inc()
	} else {
		WSConnectionsActive.Dec()
	}
}

// RecordWorkerRestart counts a replaced face-mesh worker.
func RecordWorkerRestart() {
	LandmarkWorkerRestarts.Inc()
}

// SetWorkersAlive sets the running face-mesh worker gauge.
func SetWorkersAlive(n int) {
	LandmarkWorkersAlive.Set(float64(n))
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordStudioRequest counts a content generation request.
func RecordStudioRequest(kind, outcome string) {
	StudioRequests.WithLabelValues(kind, outcome).Inc()
}

// RecordStudioCache counts a content cache lookup.
func RecordStudioCache(hit bool) {
	if hit {
		StudioCacheLookups.WithLabelValues("hit").Inc()
		return
	}
	StudioCacheLookups.WithLabelValues("miss").Inc()
}

// RecordLLMCall observes the latency of one model call.
func RecordLLMCall(d time.Duration) {
	StudioLLMDuration.Observe(d.Seconds())
}

// SetCircuitBreakerState publishes a breaker state; state follows
// gobreaker's ordering (closed, half-open, open).
func SetCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}
