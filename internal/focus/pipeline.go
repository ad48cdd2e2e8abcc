// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

package focus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/studybuddy/internal/metrics"
)

// Result is the outcome of scoring one frame.
type Result struct {
	Event        Event
	EAR          float64
	FaceDetected bool
}

// Processor scores a single frame.
type Processor interface {
	Process(ctx context.Context, f Frame) (Result, error)
}

// Pipeline chains decoder, detector, metric engine and scorer.
type Pipeline struct {
	detector Detector
	metric   MetricEngine
	scorer   Scorer
	now      func() time.Time

	maxPixels int
}

// PipelineOption customizes a Pipeline.
type PipelineOption func(*Pipeline)

// WithMetricEngine overrides the eye regions.
func WithMetricEngine(m MetricEngine) PipelineOption {
	return func(p *Pipeline) { p.metric = m }
}

// WithScorer overrides the EAR calibration.
func WithScorer(s Scorer) PipelineOption {
	return func(p *Pipeline) { p.scorer = s }
}

// WithMaxFramePixels bounds the declared width×height of a frame. Values
// of 0 or less keep DefaultMaxFramePixels.
func WithMaxFramePixels(n int) PipelineOption {
	return func(p *Pipeline) {
		if n > 0 {
			p.maxPixels = n
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) PipelineOption {
	return func(p *Pipeline) { p.now = now }
}

// NewPipeline returns a pipeline using detector for landmark extraction.
func NewPipeline(detector Detector, opts ...PipelineOption) (*Pipeline, error) {
	if detector == nil {
		return nil, errors.New("focus: nil detector")
	}
	p := &Pipeline{
		detector: detector,
		metric:   DefaultMetricEngine(),
		scorer:   DefaultScorer(),
		now:      time.Now,

		maxPixels: DefaultMaxFramePixels,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Process runs one frame through every stage. Errors wrap ErrDecode or
// ErrModelInvocation; a frame without a face is a successful zero score.
func (p *Pipeline) Process(ctx context.Context, f Frame) (Result, error) {
	start := time.Now()
	raster, err := decodeFrame(f, p.maxPixels)
	metrics.RecordStage("decode", time.Since(start))
	if err != nil {
		metrics.RecordFrameProcessed(metrics.OutcomeDecodeError)
		return Result{}, err
	}

	start = time.Now()
	set, err := p.detector.Detect(ctx, raster)
	metrics.RecordStage("landmarks", time.Since(start))
	if err != nil {
		metrics.RecordFrameProcessed(metrics.OutcomeModelError)
		if errors.Is(err, ErrModelInvocation) || errors.Is(err, context.Canceled) {
			return Result{}, err
		}
		return Result{}, fmt.Errorf("%w: %v", ErrModelInvocation, err)
	}

	start = time.Now()
	res := Result{FaceDetected: set != nil}
	if set != nil {
		if err := set.Validate(); err != nil {
			metrics.RecordFrameProcessed(metrics.OutcomeModelError)
			return Result{}, err
		}
		ear, err := p.metric.AverageEAR(set)
		if err != nil {
			metrics.RecordFrameProcessed(metrics.OutcomeModelError)
			return Result{}, fmt.Errorf("%w: %v", ErrModelInvocation, err)
		}
		res.EAR = ear
	}
	res.Event = Event{
		Timestamp:  p.now().UnixMilli(),
		FocusScore: p.scorer.Score(res.EAR, res.FaceDetected),
	}
	metrics.RecordStage("score", time.Since(start))

	if res.FaceDetected {
		metrics.RecordFrameProcessed(metrics.OutcomeScored)
	} else {
		metrics.RecordFrameProcessed(metrics.OutcomeNoFace)
	}
	return res, nil
}
