// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

package landmark

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/studybuddy/internal/config"
	"github.com/tomtom215/studybuddy/internal/focus"
	"github.com/tomtom215/studybuddy/internal/logging"
	"github.com/tomtom215/studybuddy/internal/metrics"
)

// Config configures a Pool.
type Config struct {
	Spec         WorkerSpec
	Workers      int
	CallTimeout  time.Duration
	StartTimeout time.Duration
}

// ConfigFrom builds a pool configuration, turning model options into worker
// flags.
func ConfigFrom(cfg config.LandmarkConfig) Config {
	args := append([]string{}, cfg.Args...)
	args = append(args,
		"--max-faces="+strconv.Itoa(cfg.MaxFaces),
		"--min-detection-confidence="+strconv.FormatFloat(cfg.DetectionConfidence, 'f', -1, 64),
		"--min-tracking-confidence="+strconv.FormatFloat(cfg.TrackingConfidence, 'f', -1, 64),
	)
	if cfg.RefineLandmarks {
		args = append(args, "--refine-landmarks")
	}
	return Config{
		Spec:         WorkerSpec{Command: cfg.Command, Args: args},
		Workers:      cfg.Workers,
		CallTimeout:  cfg.CallTimeout,
		StartTimeout: cfg.StartTimeout,
	}
}

// conn is the part of a Worker the pool depends on.
type conn interface {
	Detect(r *focus.Raster) (*focus.LandmarkSet, error)
	Alive() bool
	Stderr() string
	Close() error
}

type starterFunc func(id int) (conn, error)

type slot struct {
	id int
	w  conn
}

// Pool is the process-wide registry of face-mesh workers. It implements
// focus.Detector; each Detect call holds one worker exclusively.
type Pool struct {
	cfg    Config
	start  starterFunc
	logger zerolog.Logger

	mu      sync.Mutex
	running bool
	slots   chan *slot
	alive   atomic.Int32
}

var _ focus.Detector = (*Pool)(nil)

// NewPool creates a pool. Workers are launched by Start.
func NewPool(cfg Config) *Pool {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	p := &Pool{
		cfg:    cfg,
		logger: logging.WithComponent("landmark-pool"),
	}
	p.start = func(id int) (conn, error) {
		return StartWorker(id, cfg.Spec, cfg.StartTimeout)
	}
	return p
}

// Start launches every worker concurrently and fails if any of them does.
func (p *Pool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return nil
	}

	workers := make([]conn, p.cfg.Workers)
	g, _ := errgroup.WithContext(ctx)
	for i := range workers {
		g.Go(func() error {
			w, err := p.start(i)
			if err != nil {
				return err
			}
			workers[i] = w
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, w := range workers {
			if w != nil {
				w.Close()
			}
		}
		return fmt.Errorf("failed to start landmark workers: %w", err)
	}

	p.slots = make(chan *slot, len(workers))
	for i, w := range workers {
		p.slots <- &slot{id: i, w: w}
	}
	p.alive.Store(int32(len(workers)))
	metrics.SetWorkersAlive(len(workers))
	p.running = true

	p.logger.Info().Int("workers", len(workers)).Str("command", p.cfg.Spec.Command).Msg("Landmark workers started")
	return nil
}

// Ready reports whether the pool is running with at least one live worker.
func (p *Pool) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running && p.alive.Load() > 0
}

// Detect runs face-mesh inference on one raster.
func (p *Pool) Detect(ctx context.Context, r *focus.Raster) (*focus.LandmarkSet, error) {
	p.mu.Lock()
	slots, running := p.slots, p.running
	p.mu.Unlock()
	if !running {
		return nil, fmt.Errorf("%w: %w", focus.ErrModelInvocation, ErrPoolClosed)
	}

	var s *slot
	select {
	case s = <-slots:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer p.release(s)

	if err := p.ensureWorker(s); err != nil {
		return nil, fmt.Errorf("%w: %w", focus.ErrModelInvocation, err)
	}

	type result struct {
		set *focus.LandmarkSet
		err error
	}
	done := make(chan result, 1)
	w := s.w
	go func() {
		set, err := w.Detect(r)
		done <- result{set, err}
	}()

	timer := time.NewTimer(p.cfg.CallTimeout)
	defer timer.Stop()

	select {
	case res := <-done:
		if res.err == nil {
			return res.set, nil
		}
		var werr *WorkerError
		if !errors.As(res.err, &werr) {
			// Crash or protocol error: the stream is no longer aligned.
			p.discard(s, res.err)
		}
		return nil, fmt.Errorf("%w: %w", focus.ErrModelInvocation, res.err)
	case <-timer.C:
		p.discard(s, errors.New("call timed out"))
		<-done
		return nil, fmt.Errorf("%w: worker %d did not answer within %v", focus.ErrModelInvocation, s.id, p.cfg.CallTimeout)
	case <-ctx.Done():
		p.discard(s, ctx.Err())
		<-done
		return nil, ctx.Err()
	}
}

// ensureWorker replaces a missing or dead worker in s.
func (p *Pool) ensureWorker(s *slot) error {
	if s.w != nil && s.w.Alive() {
		return nil
	}
	if s.w != nil {
		p.discard(s, errors.New("process exited"))
	}
	w, err := p.start(s.id)
	if err != nil {
		return err
	}
	s.w = w
	p.alive.Add(1)
	metrics.SetWorkersAlive(int(p.alive.Load()))
	metrics.RecordWorkerRestart()
	p.logger.Info().Int("worker", s.id).Msg("Landmark worker restarted")
	return nil
}

func (p *Pool) discard(s *slot, cause error) {
	if s.w == nil {
		return
	}
	p.logger.Warn().
		Err(cause).
		Int("worker", s.id).
		Str("stderr", s.w.Stderr()).
		Msg("Discarding landmark worker")
	s.w.Close()
	s.w = nil
	p.alive.Add(-1)
	metrics.SetWorkersAlive(int(p.alive.Load()))
}

func (p *Pool) release(s *slot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		if s.w != nil {
			s.w.Close()
			s.w = nil
		}
		return
	}
	p.slots <- s
}

// Close stops idle workers immediately; workers busy in Detect are stopped
// when their call returns.
func (p *Pool) Close() error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	slots := p.slots
	p.mu.Unlock()

	for {
		select {
		case s := <-slots:
			if s.w != nil {
				s.w.Close()
			}
		default:
			p.alive.Store(0)
			metrics.SetWorkersAlive(0)
			p.logger.Info().Msg("Landmark workers stopped")
			return nil
		}
	}
}

// Serve implements suture.Service: start the workers, hold them until ctx
// is cancelled, then stop them.
func (p *Pool) Serve(ctx context.Context) error {
	if err := p.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	p.Close()
	return ctx.Err()
}

// String names the service for supervisor logs.
func (p *Pool) String() string {
	return "landmark-pool"
}
