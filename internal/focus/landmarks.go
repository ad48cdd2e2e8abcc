// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

package focus

import (
	"context"
	"fmt"
	"math"
)

// Face mesh cardinalities. Iris refinement adds ten points.
const (
	MeshLandmarks        = 468
	RefinedMeshLandmarks = 478
)

// Point is a normalized landmark: x and y in [0, 1] relative to the frame,
// z relative depth.
type Point struct {
	X, Y, Z float64
}

// LandmarkSet is the mesh of a single face.
type LandmarkSet struct {
	Points []Point
}

// Validate rejects partially populated or non-finite sets.
func (s *LandmarkSet) Validate() error {
	if n := len(s.Points); n != MeshLandmarks && n != RefinedMeshLandmarks {
		return fmt.Errorf("%w: got %d landmarks, want %d or %d",
			ErrModelInvocation, n, MeshLandmarks, RefinedMeshLandmarks)
	}
	for i, p := range s.Points {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return fmt.Errorf("%w: landmark %d is not finite", ErrModelInvocation, i)
		}
	}
	return nil
}

// Detector extracts face landmarks from a raster. A nil set with a nil error
// means no face was found. Implementations must be safe for concurrent use.
type Detector interface {
	Detect(ctx context.Context, frame *Raster) (*LandmarkSet, error)
}

// DetectorFunc adapts a function to the Detector interface.
type DetectorFunc func(ctx context.Context, frame *Raster) (*LandmarkSet, error)

// Detect calls f.
func (f DetectorFunc) Detect(ctx context.Context, frame *Raster) (*LandmarkSet, error) {
	return f(ctx, frame)
}

// EyeRegion names the six mesh indices of one eye in EAR order:
// outer corner, two upper lid points, inner corner, two lower lid points.
type EyeRegion struct {
	Name    string
	Indices [6]int
}

var (
	// RightEye is the subject's right eye on the 468-point mesh.
	RightEye = EyeRegion{Name: "right", Indices: [6]int{33, 160, 158, 133, 153, 144}}

	// LeftEye is the subject's left eye on the 468-point mesh.
	LeftEye = EyeRegion{Name: "left", Indices: [6]int{362, 385, 387, 263, 373, 380}}
)

// NewEyeRegion builds a region from a configured index list.
func NewEyeRegion(name string, indices []int) (EyeRegion, error) {
	if len(indices) != 6 {
		return EyeRegion{}, fmt.Errorf("%s eye: need 6 indices, got %d", name, len(indices))
	}
	r := EyeRegion{Name: name}
	for i, idx := range indices {
		if idx < 0 || idx >= RefinedMeshLandmarks {
			return EyeRegion{}, fmt.Errorf("%w: %s eye index %d", ErrInvalidEyeRegion, name, idx)
		}
		r.Indices[i] = idx
	}
	return r, nil
}

// Points picks the region's six landmarks out of set.
func (r EyeRegion) Points(set *LandmarkSet) ([6]Point, error) {
	var pts [6]Point
	for i, idx := range r.Indices {
		if idx < 0 || idx >= len(set.Points) {
			return pts, fmt.Errorf("%w: %s eye index %d, set has %d points",
				ErrInvalidEyeRegion, r.Name, idx, len(set.Points))
		}
		pts[i] = set.Points[idx]
	}
	return pts, nil
}
