// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

/*
Package main is the entry point for the StudyBuddy server.

The server scores webcam frames for attentiveness and streams focus score
updates back over a websocket. It also serves the study content endpoints
(summaries, flashcards, quizzes, mind maps, mini-games) backed by a hosted
language model.

# Application Architecture

	RootSupervisor ("studybuddy")
	├── InferenceSupervisor ("inference-layer")
	│   └── Landmark worker pool (face-mesh subprocesses)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── Event broker (gochannel, or NATS with -tags nats)
	│   └── WebSocket hub
	└── APISupervisor ("api-layer")
	    └── HTTP server (chi router)

Component initialization order:

 1. Configuration: koanf v2 (defaults, config.yaml, environment)
 2. Logging: zerolog with JSON or console output
 3. Landmark pool and focus pipeline
 4. Event broker and focus session registry
 5. WebSocket hub
 6. Study content service (only when STUDIO_ENABLED and GEMINI_API_KEY are set)
 7. Supervisor tree and HTTP server

# Build Tags

	go build ./cmd/server               # in-process event broker
	go build -tags nats ./cmd/server    # NATS event broker, optionally embedded

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server stops accepting
requests, open focus sessions are closed, the hub disconnects its clients,
the worker processes are stopped and the broker is closed.

# Example Usage

	export LANDMARK_COMMAND=python3
	export LANDMARK_ARGS="-u, /opt/worker/face_mesh_worker.py"
	export STUDIO_ENABLED=true
	export GEMINI_API_KEY=...
	./studybuddy
*/
package main
