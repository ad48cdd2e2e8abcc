// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

/*
Package metrics declares the Prometheus collectors for the service and the
Record helpers the rest of the code calls.

Metrics are exposed at /metrics in Prometheus text format.

Focus pipeline:
  - focus_frames_received_total
  - focus_frames_dropped_total{reason}: superseded, rejected, rate_limited, oversized, closed
  - focus_frames_processed_total{outcome}: scored, no_face, decode_error, model_error
  - focus_stage_duration_seconds{stage}: decode, landmarks, score
  - focus_score: histogram of emitted scores
  - focus_events_published_total / focus_events_publish_failed_total
  - focus_sessions_active

Landmark workers:
  - landmark_workers_alive
  - landmark_worker_restarts_total

HTTP and websocket:
  - http_requests_total{method,endpoint,status}
  - http_request_duration_seconds{method,endpoint}
  - http_requests_in_flight
  - websocket_connections_active

Study content:
  - studio_requests_total{kind,outcome}
  - studio_cache_lookups_total{result}
  - studio_llm_duration_seconds
  - circuit_breaker_state{name}: 0 closed, 1 half-open, 2 open
*/
package metrics
