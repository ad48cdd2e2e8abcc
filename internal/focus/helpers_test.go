// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

package focus

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/studybuddy/internal/logging"
)

//nolint:gochecknoinits // silence logging for the package tests
func init() {
	logging.Init(logging.Config{Level: "disabled", Output: io.Discard})
}

// testImage returns a horizontal gradient so round-trip checks exercise
// more than a flat color.
func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / w), G: 128, B: uint8(y * 255 / h), A: 255})
		}
	}
	return img
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatalf("jpeg.Encode: %v", err)
	}
	return buf.Bytes()
}

func jpegFrame(t *testing.T) Frame {
	t.Helper()
	return Frame{Encoded: base64.StdEncoding.EncodeToString(encodeJPEG(t, testImage(32, 24)))}
}

// faceWithEAR builds a refined mesh whose eyes both have the given EAR.
// Each eye is 0.1 wide and both lid pairs are ear*width apart.
func faceWithEAR(ear float64) *LandmarkSet {
	pts := make([]Point, RefinedMeshLandmarks)
	for i := range pts {
		pts[i] = Point{X: 0.5, Y: 0.5}
	}
	place := func(r EyeRegion, cx float64) {
		const width = 0.1
		lid := ear * width
		left, right := cx-width/2, cx+width/2
		pts[r.Indices[0]] = Point{X: left, Y: 0.4}
		pts[r.Indices[3]] = Point{X: right, Y: 0.4}
		pts[r.Indices[1]] = Point{X: left + width/3, Y: 0.4 - lid/2}
		pts[r.Indices[2]] = Point{X: left + 2*width/3, Y: 0.4 - lid/2}
		pts[r.Indices[5]] = Point{X: left + width/3, Y: 0.4 + lid/2}
		pts[r.Indices[4]] = Point{X: left + 2*width/3, Y: 0.4 + lid/2}
	}
	place(RightEye, 0.35)
	place(LeftEye, 0.65)
	return &LandmarkSet{Points: pts}
}

func staticDetector(set *LandmarkSet, err error) Detector {
	return DetectorFunc(func(context.Context, *Raster) (*LandmarkSet, error) {
		return set, err
	})
}

// recordingPublisher keeps every published event with its wall-clock time.
type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
	at     []time.Time
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, ev Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	p.at = append(p.at, time.Now())
	return p.err
}

func (p *recordingPublisher) snapshot() ([]Event, []time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event(nil), p.events...), append([]time.Time(nil), p.at...)
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}
