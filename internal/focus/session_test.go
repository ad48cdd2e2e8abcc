// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

package focus

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// taggedProcessor scores frame i with score i (taken from Image length),
// optionally blocking each call until release is closed.
type taggedProcessor struct {
	mu      sync.Mutex
	calls   int
	delay   time.Duration
	release chan struct{}
}

func (p *taggedProcessor) Process(ctx context.Context, f Frame) (Result, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()

	if p.release != nil {
		select {
		case <-p.release:
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	}
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	if f.Encoded == "bad" {
		return Result{}, ErrDecode
	}
	return Result{
		Event:        Event{Timestamp: time.Now().UnixMilli(), FocusScore: len(f.Image)},
		FaceDetected: true,
	}, nil
}

func (p *taggedProcessor) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func tagged(n int) Frame {
	return Frame{Image: make([]byte, n)}
}

func startSession(t *testing.T, proc Processor, pub Publisher, cfg SessionConfig) *Session {
	t.Helper()
	s := NewSession("test-session", proc, pub, cfg)
	s.Start(context.Background())
	t.Cleanup(s.Close)
	return s
}

func TestSessionEmissionSpacing(t *testing.T) {
	t.Parallel()

	const cooldown = 60 * time.Millisecond
	pub := &recordingPublisher{}
	s := startSession(t, &taggedProcessor{}, pub, SessionConfig{Cooldown: cooldown})

	stop := time.After(400 * time.Millisecond)
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()
	i := 1
loop:
	for {
		select {
		case <-stop:
			break loop
		case <-ticker.C:
			_ = s.Submit(tagged(i % 100))
			i++
		}
	}

	events, at := pub.snapshot()
	if len(events) < 2 {
		t.Fatalf("got %d events, want at least 2", len(events))
	}
	for k := 1; k < len(at); k++ {
		if gap := at[k].Sub(at[k-1]); gap < cooldown {
			t.Errorf("events %d and %d only %v apart, want >= %v", k-1, k, gap, cooldown)
		}
		if events[k].Timestamp < events[k-1].Timestamp {
			t.Errorf("timestamp went backwards: %d < %d", events[k].Timestamp, events[k-1].Timestamp)
		}
	}
	// 400ms of input at a 60ms cooldown cannot yield more than ceil(400/60) events.
	if len(events) > 7 {
		t.Errorf("got %d events, want <= 7", len(events))
	}
}

func TestSessionBurstNewestWins(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	proc := &taggedProcessor{release: release}
	pub := &recordingPublisher{}
	s := startSession(t, proc, pub, SessionConfig{Cooldown: 20 * time.Millisecond})

	if err := s.Submit(tagged(1)); err != nil {
		t.Fatal(err)
	}
	waitFor(t, time.Second, func() bool { return s.State() == StateProcessing })

	// Frames 2..10 arrive while frame 1 is in flight.
	for i := 2; i <= 10; i++ {
		if err := s.Submit(tagged(i)); err != nil {
			t.Fatalf("Submit(%d): %v", i, err)
		}
	}
	close(release)

	waitFor(t, time.Second, func() bool { return pub.count() == 2 })
	time.Sleep(60 * time.Millisecond)

	events, _ := pub.snapshot()
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].FocusScore != 1 || events[1].FocusScore != 10 {
		t.Errorf("scores = %d, %d; want 1, 10", events[0].FocusScore, events[1].FocusScore)
	}
	if proc.callCount() != 2 {
		t.Errorf("processor ran %d times, want 2", proc.callCount())
	}
}

func TestSessionRejectPolicy(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	pub := &recordingPublisher{}
	s := startSession(t, &taggedProcessor{release: release}, pub,
		SessionConfig{Cooldown: 10 * time.Millisecond, Overflow: OverflowReject})

	_ = s.Submit(tagged(1))
	waitFor(t, time.Second, func() bool { return s.State() == StateProcessing })

	if err := s.Submit(tagged(2)); err != nil {
		t.Fatalf("first waiting frame should be accepted: %v", err)
	}
	if err := s.Submit(tagged(3)); !errors.Is(err, ErrFrameDropped) {
		t.Fatalf("Submit while full error = %v, want ErrFrameDropped", err)
	}
	close(release)

	waitFor(t, time.Second, func() bool { return pub.count() == 2 })
	events, _ := pub.snapshot()
	if events[1].FocusScore != 2 {
		t.Errorf("second event score = %d, want 2 (older frame kept)", events[1].FocusScore)
	}
}

func TestSessionDecodeErrorReturnsToIdle(t *testing.T) {
	t.Parallel()

	proc := &taggedProcessor{}
	pub := &recordingPublisher{}
	s := startSession(t, proc, pub, SessionConfig{Cooldown: time.Second})

	if err := s.Submit(Frame{Encoded: "bad"}); err != nil {
		t.Fatal(err)
	}
	waitFor(t, time.Second, func() bool { return proc.callCount() == 1 && s.State() == StateIdle })
	time.Sleep(20 * time.Millisecond)
	if pub.count() != 0 {
		t.Fatalf("failed frame produced %d events", pub.count())
	}

	// No cooldown after a failure: the next frame is scored right away.
	start := time.Now()
	_ = s.Submit(tagged(7))
	waitFor(t, 500*time.Millisecond, func() bool { return pub.count() == 1 })
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("next frame took %v, cooldown should not apply after failure", elapsed)
	}
}

func TestSessionEmptyPayloadWithRealPipeline(t *testing.T) {
	t.Parallel()

	p, _ := NewPipeline(staticDetector(faceWithEAR(0.3), nil))
	pub := &recordingPublisher{}
	s := startSession(t, p, pub, SessionConfig{Cooldown: 10 * time.Millisecond})

	_ = s.Submit(Frame{Encoded: ""})
	waitFor(t, time.Second, func() bool { return s.State() == StateIdle })

	_ = s.Submit(jpegFrame(t))
	waitFor(t, time.Second, func() bool { return pub.count() == 1 })
	events, _ := pub.snapshot()
	if events[0].FocusScore != 100 {
		t.Errorf("FocusScore = %d, want 100", events[0].FocusScore)
	}
}

func TestSessionPublishErrorContinues(t *testing.T) {
	t.Parallel()

	pub := &recordingPublisher{err: ErrPublish}
	s := startSession(t, &taggedProcessor{}, pub, SessionConfig{Cooldown: 5 * time.Millisecond})

	_ = s.Submit(tagged(1))
	waitFor(t, time.Second, func() bool { return pub.count() == 1 })
	waitFor(t, time.Second, func() bool { return s.State() == StateIdle })
	_ = s.Submit(tagged(2))
	waitFor(t, time.Second, func() bool { return pub.count() == 2 })
}

func TestSessionCloseDiscardsInFlight(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	pub := &recordingPublisher{}
	s := NewSession("closing", &taggedProcessor{release: release}, pub, SessionConfig{})
	s.Start(context.Background())

	_ = s.Submit(tagged(1))
	waitFor(t, time.Second, func() bool { return s.State() == StateProcessing })
	_ = s.Submit(tagged(2))

	s.Close()
	close(release)

	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("session did not stop")
	}
	if pub.count() != 0 {
		t.Errorf("closed session published %d events", pub.count())
	}
	if s.State() != StateClosed {
		t.Errorf("State() = %v, want closed", s.State())
	}
	if err := s.Submit(tagged(3)); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("Submit after Close error = %v, want ErrSessionClosed", err)
	}
}

func TestSessionCooldownState(t *testing.T) {
	t.Parallel()

	pub := &recordingPublisher{}
	s := startSession(t, &taggedProcessor{}, pub, SessionConfig{Cooldown: 200 * time.Millisecond})

	if s.State() != StateIdle {
		t.Fatalf("initial State() = %v, want idle", s.State())
	}
	_ = s.Submit(tagged(1))
	waitFor(t, time.Second, func() bool { return s.State() == StateCooldown })
	waitFor(t, time.Second, func() bool { return s.State() == StateIdle })
}

func TestParseOverflowPolicy(t *testing.T) {
	t.Parallel()

	if p, err := ParseOverflowPolicy("latest"); err != nil || p != OverflowLatest {
		t.Errorf("latest = %v, %v", p, err)
	}
	if p, err := ParseOverflowPolicy("reject"); err != nil || p != OverflowReject {
		t.Errorf("reject = %v, %v", p, err)
	}
	if _, err := ParseOverflowPolicy("fifo"); err == nil {
		t.Error("expected error for unknown policy")
	}
}
