// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

/*
Package focus turns a stream of webcam frames into a periodic focus score.

Each frame goes through four stages, synchronously, inside the session that
received it:

	DecodeFrame   base64 JPEG/PNG -> RGB Raster
	Detector      Raster -> LandmarkSet (nil when no face is visible)
	MetricEngine  LandmarkSet -> mean eye aspect ratio (EAR)
	Scorer        EAR -> integer score in [0, 100]

The resulting Event {timestamp, focusScore} is handed to a Publisher.

# Sessions

A Session owns one goroutine and moves through three states:

	Idle -> Processing -> Cooldown -> Idle

Frames that arrive while the session is Processing or in Cooldown wait in a
mailbox that holds a single frame. With OverflowLatest a newer frame replaces
the waiting one; with OverflowReject the newer frame is dropped. A session
therefore never queues more than one frame, and never emits two events closer
together than its cooldown.

Frames that fail to decode, or that the detector cannot process, are logged
and skipped; the session goes straight back to Idle without a cooldown.
A frame with no face is not an error: it scores 0.

# Eye aspect ratio

For the six landmarks P0..P5 of one eye (corners P0/P3, upper lid P1/P2,
lower lid P5/P4):

	EAR = (|P1-P5| + |P2-P4|) / (2 * |P0-P3|)

computed on the normalized x/y plane. A zero-width eye yields 0.
*/
package focus
