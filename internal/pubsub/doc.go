// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

/*
Package pubsub carries focus score events from session tasks to the
connections that watch them.

The Broker is a thin layer over Watermill. Each session has its own topic,
focus.<sessionID>, and every event is a JSON message with a fresh UUID.
Delivery is fire and forget: an event published while nobody is subscribed
is gone, and a subscriber sees only events published after it subscribed.

Backends:

  - gochannel: in-process Watermill GoChannel. The default.
  - nats: core NATS through watermill-nats, optionally with an embedded
    nats-server. Only available when built with -tags=nats; otherwise
    New returns ErrNATSNotEnabled.

Publishing goes through a gobreaker circuit breaker so a dead transport
fails fast instead of stalling every session.
*/
package pubsub
