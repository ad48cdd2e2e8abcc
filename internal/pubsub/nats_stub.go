// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

//go:build !nats

package pubsub

import (
	"github.com/tomtom215/studybuddy/internal/config"
)

// newNATSBroker is unavailable without the nats build tag.
func newNATSBroker(config.PubSubConfig) (*Broker, error) {
	return nil, ErrNATSNotEnabled
}
