// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

package focus

import (
	"fmt"

	"github.com/tomtom215/studybuddy/internal/config"
)

// PipelineFrom builds a pipeline with the configured calibration and eye
// regions. Empty eye index lists keep the standard mesh regions.
func PipelineFrom(cfg config.FocusConfig, detector Detector, opts ...PipelineOption) (*Pipeline, error) {
	scorer, err := NewScorer(cfg.ClosedEAR, cfg.AlertEAR)
	if err != nil {
		return nil, err
	}

	metric := DefaultMetricEngine()
	if len(cfg.LeftEye) > 0 {
		if metric.Left, err = NewEyeRegion("left", cfg.LeftEye); err != nil {
			return nil, err
		}
	}
	if len(cfg.RightEye) > 0 {
		if metric.Right, err = NewEyeRegion("right", cfg.RightEye); err != nil {
			return nil, err
		}
	}

	opts = append([]PipelineOption{
		WithScorer(scorer),
		WithMetricEngine(metric),
		WithMaxFramePixels(cfg.MaxFramePixels),
	}, opts...)
	return NewPipeline(detector, opts...)
}

// SessionConfigFrom converts the focus section into session settings.
func SessionConfigFrom(cfg config.FocusConfig) (SessionConfig, error) {
	policy, err := ParseOverflowPolicy(cfg.OverflowPolicy)
	if err != nil {
		return SessionConfig{}, fmt.Errorf("focus overflow policy: %w", err)
	}
	return SessionConfig{Cooldown: cfg.Cooldown, Overflow: policy}, nil
}
