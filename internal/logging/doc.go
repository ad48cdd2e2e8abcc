// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

/*
Package logging provides the process-wide zerolog logger and the adapters
that let third-party libraries write through it.

Initialize once at startup, then log with the leveled helpers:

	logging.Init(logging.Config{Level: "info", Format: "json"})
	logging.Info().Str("session_id", id).Msg("Session opened")
	logging.Ctx(ctx).Error().Err(err).Msg("Frame skipped")

Always terminate an event chain with Msg or Send; an unterminated event is
never written.

Adapters:

  - SlogHandler: slog.Handler backed by zerolog, used by sutureslog for
    supervisor events.
  - WatermillLogger: watermill.LoggerAdapter backed by zerolog, used by the
    pub/sub broker.

Context helpers carry request, correlation and focus session IDs so every
line written through Ctx is attributable to the frame stream it belongs to.
*/
package logging
