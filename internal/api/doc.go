// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

/*
Package api provides the HTTP surface of the service, routed with chi.

Routes:

	GET  /api/v1/health/live        liveness probe
	GET  /api/v1/health/ready       readiness probe (503 until every check passes)
	GET  /metrics                   Prometheus metrics
	GET  /ws/focus?session=<id>     focus score stream (websocket)
	GET  /api/v1/focus/ws           same, under the versioned prefix
	POST /upload                    document summary (multipart field "file")
	POST /generate-flashcards       flip cards from {"text": ...}
	POST /generate-quiz             multiple choice quiz from {"text": ...}
	POST /generate-mindmap          topic tree from {"text": ...}
	POST /generate-mini-game        matching game from {"text": ...}

The study content routes are also mounted under /api/v1/studio. Their
success bodies are the bare content object ({"id", "type", "data"}); every
error, on any route, uses the models.APIResponse envelope with status
"error".

Middleware stack (outermost first): request ID, real IP, panic recovery,
CORS. Study content routes add IP rate limiting, Prometheus instrumentation
and gzip compression; the websocket routes add instrumentation only.
*/
package api
