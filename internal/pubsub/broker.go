// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

package pubsub

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/studybuddy/internal/config"
	"github.com/tomtom215/studybuddy/internal/focus"
	"github.com/tomtom215/studybuddy/internal/logging"
	"github.com/tomtom215/studybuddy/internal/resilience"
)

const (
	// TopicPrefix is prepended to the session ID to form its topic.
	TopicPrefix = "focus."

	metaSession = "session_id"

	// subscriberBuffer is the event backlog a single subscriber may hold.
	subscriberBuffer = 16
)

var (
	// ErrClosed is returned by Publish and Subscribe after Close.
	ErrClosed = errors.New("pubsub broker is closed")

	// ErrNATSNotEnabled is returned when the nats backend is selected in a
	// binary built without the nats tag.
	ErrNATSNotEnabled = errors.New("NATS backend not available: build with -tags=nats")
)

// Topic returns the topic carrying events for sessionID.
func Topic(sessionID string) string {
	return TopicPrefix + sessionID
}

// Broker publishes focus events and fans them out to subscribers.
type Broker struct {
	backend string
	pub     message.Publisher
	sub     message.Subscriber
	breaker *gobreaker.CircuitBreaker[interface{}]
	closers []func() error
	logger  zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

var _ focus.Publisher = (*Broker)(nil)

// New builds a broker for the configured backend.
func New(cfg config.PubSubConfig) (*Broker, error) {
	switch cfg.Backend {
	case "", "gochannel":
		return NewGoChannel(cfg), nil
	case "nats":
		return newNATSBroker(cfg)
	default:
		return nil, fmt.Errorf("unknown pubsub backend %q", cfg.Backend)
	}
}

// NewGoChannel builds an in-process broker.
func NewGoChannel(cfg config.PubSubConfig) *Broker {
	ch := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: cfg.BufferSize,
		// Per-topic ordering: the next publish waits for the previous ack.
		BlockPublishUntilSubscriberAck: true,
	}, watermillLogger())
	return newBroker("gochannel", ch, ch, cfg, ch.Close)
}

func newBroker(backend string, pub message.Publisher, sub message.Subscriber, cfg config.PubSubConfig, closers ...func() error) *Broker {
	return &Broker{
		backend: backend,
		pub:     pub,
		sub:     sub,
		breaker: resilience.NewCircuitBreaker(resilience.BreakerConfig{
			Name:             "pubsub-" + backend,
			Timeout:          cfg.BreakerTimeout,
			FailureThreshold: cfg.BreakerFailureThreshold,
		}),
		closers: closers,
		logger:  logging.WithComponent("pubsub").With().Str("backend", backend).Logger(),
	}
}

// Backend names the transport in use.
func (b *Broker) Backend() string { return b.backend }

// Publish sends ev on the session's topic. Delivery is at most once.
func (b *Broker) Publish(ctx context.Context, sessionID string, ev focus.Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return fmt.Errorf("%w: %w", focus.ErrPublish, ErrClosed)
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("%w: encode event: %w", focus.ErrPublish, err)
	}
	msg := message.NewMessage(uuid.New().String(), payload)
	msg.Metadata.Set(metaSession, sessionID)
	if cid := logging.CorrelationIDFromContext(ctx); cid != "" {
		msg.Metadata.Set("correlation_id", cid)
	}

	_, err = b.breaker.Execute(func() (interface{}, error) {
		return nil, b.pub.Publish(Topic(sessionID), msg)
	})
	if err != nil {
		return fmt.Errorf("%w: %w", focus.ErrPublish, err)
	}
	return nil
}

// Subscribe returns the events of one session published from now on. The
// channel is closed when ctx is cancelled or the broker is closed.
func (b *Broker) Subscribe(ctx context.Context, sessionID string) (<-chan focus.Event, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, ErrClosed
	}

	msgs, err := b.sub.Subscribe(ctx, Topic(sessionID))
	if err != nil {
		return nil, fmt.Errorf("subscribe to %s: %w", Topic(sessionID), err)
	}

	out := make(chan focus.Event, subscriberBuffer)
	go b.forward(ctx, msgs, out)
	return out, nil
}

func (b *Broker) forward(ctx context.Context, msgs <-chan *message.Message, out chan<- focus.Event) {
	defer close(out)
	for msg := range msgs {
		var ev focus.Event
		err := json.Unmarshal(msg.Payload, &ev)
		msg.Ack()
		if err != nil {
			b.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping undecodable focus event")
			continue
		}
		select {
		case out <- ev:
		case <-ctx.Done():
			// Drain so the transport can finish closing the subscription.
			for m := range msgs {
				m.Ack()
			}
			return
		}
	}
}

// Close shuts the transport down. Open subscriptions end.
func (b *Broker) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	var errs []error
	for _, c := range b.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	b.logger.Info().Msg("Pub/sub broker closed")
	return errors.Join(errs...)
}

// Serve implements suture.Service. The broker is usable from construction;
// Serve closes it when the supervisor stops.
func (b *Broker) Serve(ctx context.Context) error {
	b.logger.Info().Msg("Pub/sub broker running")
	<-ctx.Done()
	b.Close()
	return ctx.Err()
}

// String names the service for supervisor logs.
func (b *Broker) String() string {
	return "pubsub-broker"
}

// watermillLogger is the adapter shared by every backend.
func watermillLogger() watermill.LoggerAdapter {
	return logging.NewWatermillLogger()
}
