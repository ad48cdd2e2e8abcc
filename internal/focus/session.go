// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

package focus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/studybuddy/internal/logging"
	"github.com/tomtom215/studybuddy/internal/metrics"
)

// State is the lifecycle state of a session task.
type State int32

const (
	StateIdle State = iota
	StateProcessing
	StateCooldown
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateProcessing:
		return "processing"
	case StateCooldown:
		return "cooldown"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// OverflowPolicy decides which frame survives when the mailbox is full.
type OverflowPolicy int

const (
	// OverflowLatest keeps the newest frame and drops the waiting one.
	OverflowLatest OverflowPolicy = iota
	// OverflowReject keeps the waiting frame and drops the newest one.
	OverflowReject
)

// ParseOverflowPolicy parses "latest" or "reject".
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch s {
	case "", "latest":
		return OverflowLatest, nil
	case "reject":
		return OverflowReject, nil
	default:
		return 0, fmt.Errorf("unknown overflow policy %q", s)
	}
}

// DefaultCooldown is the minimum spacing between two emitted events.
const DefaultCooldown = 1500 * time.Millisecond

// SessionConfig configures a Session.
type SessionConfig struct {
	Cooldown time.Duration
	Overflow OverflowPolicy
}

// Session is the per-session frame worker. It processes one frame at a
// time, publishes the result, then waits out the cooldown.
type Session struct {
	id        string
	processor Processor
	publisher Publisher
	cfg       SessionConfig
	logger    zerolog.Logger

	mu      sync.Mutex
	pending *Frame
	closed  bool

	notify chan struct{}
	state  atomic.Int32
	lastTS int64

	cancel context.CancelFunc
	done   chan struct{}
}

// NewSession creates a session. Call Start to begin processing.
func NewSession(id string, processor Processor, publisher Publisher, cfg SessionConfig) *Session {
	if cfg.Cooldown < 0 {
		cfg.Cooldown = 0
	}
	return &Session{
		id:        id,
		processor: processor,
		publisher: publisher,
		cfg:       cfg,
		logger:    logging.With().Str("component", "focus-session").Str("session_id", id).Logger(),
		notify:    make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State { return State(s.state.Load()) }

// Done is closed once the session goroutine has exited.
func (s *Session) Done() <-chan struct{} { return s.done }

// Start launches the session goroutine. The session stops when parent is
// cancelled or Close is called.
func (s *Session) Start(parent context.Context) {
	ctx, cancel := context.WithCancel(logging.ContextWithSessionID(parent, s.id))
	s.cancel = cancel
	metrics.TrackSession(true)
	go s.run(ctx)
}

// Submit hands a frame to the session. Under OverflowLatest a waiting
// frame is replaced and Submit returns nil; under OverflowReject the new
// frame is refused with ErrFrameDropped.
func (s *Session) Submit(f Frame) error {
	metrics.RecordFrameReceived()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		metrics.RecordFrameDropped(metrics.DropClosed)
		return ErrSessionClosed
	}
	if s.pending != nil {
		if s.cfg.Overflow == OverflowReject {
			s.mu.Unlock()
			metrics.RecordFrameDropped(metrics.DropRejected)
			return ErrFrameDropped
		}
		metrics.RecordFrameDropped(metrics.DropSuperseded)
	}
	s.pending = &f
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
	return nil
}

// Close stops the session, discards any waiting frame and any in-flight
// result, and waits for the goroutine to exit.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.done
		return
	}
	s.closed = true
	s.pending = nil
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		<-s.done
	} else {
		// never started
		s.state.Store(int32(StateClosed))
		close(s.done)
	}
}

func (s *Session) take() *Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.pending
	s.pending = nil
	return f
}

func (s *Session) run(ctx context.Context) {
	defer func() {
		s.mu.Lock()
		s.closed = true
		s.pending = nil
		s.mu.Unlock()
		s.state.Store(int32(StateClosed))
		metrics.TrackSession(false)
		close(s.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.notify:
		}

		frame := s.take()
		if frame == nil {
			continue
		}

		if !s.handle(ctx, frame) {
			s.state.Store(int32(StateIdle))
			continue
		}

		if !s.cooldown(ctx) {
			return
		}
		s.state.Store(int32(StateIdle))
	}
}

// handle processes and publishes one frame. It reports whether an event
// was emitted, which is what starts a cooldown.
func (s *Session) handle(ctx context.Context, frame *Frame) bool {
	s.state.Store(int32(StateProcessing))

	res, err := s.processor.Process(ctx, *frame)
	if ctx.Err() != nil {
		// Session closed mid-frame: the result belongs to nobody.
		return false
	}
	if err != nil {
		s.logFrameError(err)
		return false
	}

	ev := res.Event
	if ev.Timestamp < s.lastTS {
		ev.Timestamp = s.lastTS
	}
	s.lastTS = ev.Timestamp

	err = s.publisher.Publish(ctx, s.id, ev)
	metrics.RecordEventPublish(err)
	if err != nil {
		s.logger.Warn().Err(err).Int("focus_score", ev.FocusScore).Msg("Focus event not delivered")
	} else {
		metrics.RecordFocusScore(ev.FocusScore)
		s.logger.Debug().
			Int("focus_score", ev.FocusScore).
			Float64("ear", res.EAR).
			Bool("face", res.FaceDetected).
			Msg("Focus score emitted")
	}
	return true
}

func (s *Session) logFrameError(err error) {
	stage := "unknown"
	switch {
	case errors.Is(err, ErrDecode):
		stage = "decode"
	case errors.Is(err, ErrModelInvocation):
		stage = "landmarks"
	}
	s.logger.Warn().Err(err).Str("stage", stage).Msg("Frame skipped")
}

func (s *Session) cooldown(ctx context.Context) bool {
	s.state.Store(int32(StateCooldown))
	if s.cfg.Cooldown == 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(s.cfg.Cooldown)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
