// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

package focus

import "errors"

var (
	// ErrDecode marks a frame that could not be decoded into a raster.
	ErrDecode = errors.New("frame decode failed")

	// ErrModelInvocation marks a landmark detector failure: crash, timeout,
	// or a malformed result.
	ErrModelInvocation = errors.New("landmark model invocation failed")

	// ErrPublish marks an event the stream publisher could not deliver.
	ErrPublish = errors.New("focus event publish failed")

	// ErrSessionClosed is returned when a frame is submitted to a closed session.
	ErrSessionClosed = errors.New("focus session closed")

	// ErrFrameDropped is returned by Submit under OverflowReject when a frame
	// is already waiting.
	ErrFrameDropped = errors.New("frame dropped: session busy")

	// ErrInvalidEyeRegion is returned when an eye index lies outside the
	// landmark set.
	ErrInvalidEyeRegion = errors.New("eye landmark index out of range")
)
