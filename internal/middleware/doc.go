// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

/*
Package middleware provides HTTP middleware shared by the API router.

Key Components:

  - RequestID: per-request ID and correlation ID, propagated to the logging
    context and echoed in the X-Request-ID response header
  - PrometheusMetrics: request count, latency and in-flight gauges, labelled
    by the matched chi route pattern so path parameters do not explode the
    label set

Both are written as http.HandlerFunc wrappers; the api package adapts them
for chi's r.Use.

Websocket upgrades pass through PrometheusMetrics untouched: the recording
writer forwards http.Hijacker, and a hijacked connection is recorded with
status 101.
*/
package middleware
