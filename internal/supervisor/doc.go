// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

/*
Package supervisor provides process supervision using suture v4.

The tree organizes long-running services into three layers for failure
isolation:

	RootSupervisor ("studybuddy")
	├── InferenceSupervisor ("inference-layer")
	│   └── landmark.Pool (face-mesh worker processes)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── pubsub.Broker (gochannel or NATS)
	│   └── websocket.Hub
	└── APISupervisor ("api-layer")
	    └── services.HTTPServerService

A worker pool that cannot start (missing interpreter, model download
failure) is restarted with backoff by the inference layer while the API keeps
answering health probes and study content requests.

Supervisor events (restarts, backoff, timeouts) are logged through sutureslog
into the zerolog-backed slog handler from the logging package.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfigFrom(cfg.Supervisor))
	if err != nil {
	    return err
	}
	tree.AddInferenceService(pool)
	tree.AddMessagingService(broker)
	tree.AddMessagingService(hub)
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	errCh := tree.ServeBackground(ctx)
*/
package supervisor
