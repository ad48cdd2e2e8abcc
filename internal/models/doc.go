// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

// Package models defines the HTTP request and response shapes shared by the
// API handlers.
//
// Study content bodies live in the studio package and focus stream messages
// in the websocket package; this package only holds the generic wrappers.
package models
