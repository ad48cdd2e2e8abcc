// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

//go:build nats

package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/studybuddy/internal/focus"
)

func TestNATSBrokerEmbedded(t *testing.T) {
	cfg := testConfig()
	cfg.Backend = "nats"
	cfg.EmbeddedServer = true
	cfg.EmbeddedHost = "127.0.0.1"
	cfg.EmbeddedPort = -1
	cfg.MaxReconnects = 1
	cfg.ReconnectWait = 100 * time.Millisecond

	b, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer b.Close()
	if b.Backend() != "nats" {
		t.Errorf("Backend = %q", b.Backend())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, err := b.Subscribe(ctx, "nats-session")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	// Core NATS subscriptions become active asynchronously.
	want := focus.Event{Timestamp: 42, FocusScore: 88}
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		if err := b.Publish(ctx, "nats-session", want); err != nil {
			t.Fatalf("Publish: %v", err)
		}
		select {
		case got := <-events:
			if got != want {
				t.Errorf("got %+v, want %+v", got, want)
			}
			return
		case <-tick.C:
		case <-deadline:
			t.Fatal("no event received over NATS")
		}
	}
}
