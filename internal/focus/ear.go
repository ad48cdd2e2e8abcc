// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

package focus

import "math"

// EyeAspectRatio computes the EAR of one eye. It returns 0 when the two
// corners coincide.
func EyeAspectRatio(p [6]Point) float64 {
	width := distance(p[0], p[3])
	if width == 0 {
		return 0
	}
	return (distance(p[1], p[5]) + distance(p[2], p[4])) / (2 * width)
}

// distance is the Euclidean distance in the x/y plane.
func distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// MetricEngine computes the per-frame eye metric. It keeps no state between
// frames.
type MetricEngine struct {
	Left  EyeRegion
	Right EyeRegion
}

// DefaultMetricEngine uses the standard mesh eye regions.
func DefaultMetricEngine() MetricEngine {
	return MetricEngine{Left: LeftEye, Right: RightEye}
}

// AverageEAR returns the mean EAR of both eyes.
func (m MetricEngine) AverageEAR(set *LandmarkSet) (float64, error) {
	left, err := m.Left.Points(set)
	if err != nil {
		return 0, err
	}
	right, err := m.Right.Points(set)
	if err != nil {
		return 0, err
	}
	return (EyeAspectRatio(left) + EyeAspectRatio(right)) / 2, nil
}
