// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

package focus

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPipelineNoFaceScoresZero(t *testing.T) {
	t.Parallel()

	p, err := NewPipeline(staticDetector(nil, nil))
	if err != nil {
		t.Fatal(err)
	}
	frame := jpegFrame(t)
	for i := 0; i < 3; i++ {
		res, err := p.Process(context.Background(), frame)
		if err != nil {
			t.Fatalf("Process: %v", err)
		}
		if res.FaceDetected || res.Event.FocusScore != 0 {
			t.Fatalf("run %d: result = %+v, want no face and score 0", i, res)
		}
	}
}

func TestPipelineScoresFace(t *testing.T) {
	t.Parallel()

	fixed := time.UnixMilli(1_700_000_000_123)
	p, err := NewPipeline(staticDetector(faceWithEAR(0.30), nil), WithClock(func() time.Time { return fixed }))
	if err != nil {
		t.Fatal(err)
	}
	res, err := p.Process(context.Background(), jpegFrame(t))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !res.FaceDetected {
		t.Error("FaceDetected = false")
	}
	if res.Event.FocusScore != 100 {
		t.Errorf("FocusScore = %d, want 100", res.Event.FocusScore)
	}
	if res.Event.Timestamp != fixed.UnixMilli() {
		t.Errorf("Timestamp = %d, want %d", res.Event.Timestamp, fixed.UnixMilli())
	}
}

func TestPipelineCustomCalibration(t *testing.T) {
	t.Parallel()

	s, _ := NewScorer(0.1, 0.5)
	p, _ := NewPipeline(staticDetector(faceWithEAR(0.30), nil), WithScorer(s))
	res, err := p.Process(context.Background(), jpegFrame(t))
	if err != nil {
		t.Fatal(err)
	}
	if res.Event.FocusScore != 50 {
		t.Errorf("FocusScore = %d, want 50", res.Event.FocusScore)
	}
}

func TestPipelineErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		detector Detector
		frame    Frame
		want     error
	}{
		{"empty payload", staticDetector(nil, nil), Frame{}, ErrDecode},
		{"detector failure", staticDetector(nil, errors.New("worker exited")), jpegFrame(t), ErrModelInvocation},
		{"partial landmarks", staticDetector(&LandmarkSet{Points: make([]Point, 10)}, nil), jpegFrame(t), ErrModelInvocation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p, _ := NewPipeline(tt.detector)
			if _, err := p.Process(context.Background(), tt.frame); !errors.Is(err, tt.want) {
				t.Errorf("Process() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPipelineDecodeFailureSkipsDetector(t *testing.T) {
	t.Parallel()

	called := false
	p, _ := NewPipeline(DetectorFunc(func(context.Context, *Raster) (*LandmarkSet, error) {
		called = true
		return nil, nil
	}))
	if _, err := p.Process(context.Background(), Frame{Encoded: "!!"}); !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
	if called {
		t.Error("detector ran on an undecodable frame")
	}
}

func TestPipelineMaxFramePixels(t *testing.T) {
	t.Parallel()

	called := false
	p, err := NewPipeline(DetectorFunc(func(context.Context, *Raster) (*LandmarkSet, error) {
		called = true
		return nil, nil
	}), WithMaxFramePixels(100))
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	if _, err := p.Process(context.Background(), jpegFrame(t)); !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode for a frame over the pixel limit, got %v", err)
	}
	if called {
		t.Error("detector ran on a frame over the pixel limit")
	}
}

func TestNewPipelineNilDetector(t *testing.T) {
	t.Parallel()

	if _, err := NewPipeline(nil); err == nil {
		t.Error("expected error for nil detector")
	}
}
