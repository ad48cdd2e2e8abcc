// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

// Package services adapts components with a blocking lifecycle to suture's
// Serve(ctx) pattern.
//
// The landmark pool, event broker and websocket hub implement
// suture.Service themselves. The HTTP server does not, so HTTPServerService
// translates ListenAndServe and Shutdown and runs drain hooks once the
// server has stopped accepting requests.
package services
