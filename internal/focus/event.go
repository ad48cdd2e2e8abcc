// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

package focus

import (
	"context"
	"time"
)

// Event is one emitted focus score.
type Event struct {
	// Timestamp is milliseconds since the Unix epoch, taken when the frame
	// was scored.
	Timestamp  int64 `json:"timestamp"`
	FocusScore int   `json:"focusScore"`
}

// Time returns the event timestamp as a time.Time.
func (e Event) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// Publisher delivers events to every subscriber of a session. Delivery is
// at most once; callers treat an error as a lost event.
type Publisher interface {
	Publish(ctx context.Context, sessionID string, ev Event) error
}

// PublisherFunc adapts a function to the Publisher interface.
type PublisherFunc func(ctx context.Context, sessionID string, ev Event) error

// Publish calls f.
func (f PublisherFunc) Publish(ctx context.Context, sessionID string, ev Event) error {
	return f(ctx, sessionID, ev)
}
