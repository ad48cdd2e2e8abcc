// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

/*
Package websocket implements the focus stream: the persistent connection a
browser uses to push video frames and receive focus scores.

It uses gorilla/websocket with a hub-client architecture. The hub owns the
set of live connections; every client is joined to exactly one focus
session, and several clients may join the same session.

	           ┌──────────────┐
	frames ──► │    Client    │ ──► focus.Session (mailbox, cooldown)
	           │ read │ write │                 │
	           └──────┴───▲───┘                 ▼
	                      └──────── pubsub topic focus.<id>

Each client has three goroutines:

  - readPump: decodes inbound messages, throttles frames with a token
    bucket, submits them to the session.
  - writePump: writes queued messages and pings.
  - forwardEvents: relays the session's published events into the
    client's send queue.

Message envelope, both directions:

	{"type": "<type>", "data": <payload>}

Inbound:

  - sendVideoFrame: data is the base64 frame, a data URL prefix is allowed
  - ping: answered with pong

Outbound:

  - session: {"sessionId": "..."}, sent once after joining
  - focusScoreUpdate: {"timestamp": <epoch ms>, "focusScore": <0..100>}
  - error: {"code": "...", "message": "..."} for a rejected message
  - pong

Connection lifecycle:

 1. The API layer picks the session ID and calls Hub.ServeSession.
 2. The hub takes a session reference and subscribes to its events.
 3. The client is registered and starts its pumps.
 4. On disconnect the client is unregistered; the session reference is
    released and the session stops when no client is left.

Frames that exceed the per-connection rate are dropped and counted; the
session mailbox absorbs the rest. A message larger than the read limit
closes the connection with status 1009.
*/
package websocket
