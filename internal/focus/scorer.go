// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

package focus

import (
	"fmt"
	"math"
)

// Default EAR calibration. Below ClosedEAR the eyes read as shut, above
// AlertEAR as fully open.
const (
	DefaultClosedEAR = 0.18
	DefaultAlertEAR  = 0.30
)

// Scorer maps an eye aspect ratio to a focus score in [0, 100]. The mapping
// is linear between ClosedEAR and AlertEAR and clamped outside it, so it is
// monotonic non-decreasing in EAR and deterministic.
type Scorer struct {
	ClosedEAR float64
	AlertEAR  float64
}

// NewScorer validates the calibration thresholds.
func NewScorer(closedEAR, alertEAR float64) (Scorer, error) {
	if closedEAR < 0 || alertEAR <= closedEAR {
		return Scorer{}, fmt.Errorf("invalid EAR calibration: closed=%.3f alert=%.3f", closedEAR, alertEAR)
	}
	return Scorer{ClosedEAR: closedEAR, AlertEAR: alertEAR}, nil
}

// DefaultScorer returns a Scorer with the default calibration.
func DefaultScorer() Scorer {
	return Scorer{ClosedEAR: DefaultClosedEAR, AlertEAR: DefaultAlertEAR}
}

// Score returns the focus score for a frame. faceFound=false always scores 0.
func (s Scorer) Score(ear float64, faceFound bool) int {
	if !faceFound || math.IsNaN(ear) {
		return 0
	}
	span := s.AlertEAR - s.ClosedEAR
	if span <= 0 {
		if ear >= s.AlertEAR {
			return 100
		}
		return 0
	}
	v := math.Round(100 * (ear - s.ClosedEAR) / span)
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return int(v)
	}
}
