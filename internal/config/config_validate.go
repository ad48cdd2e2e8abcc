// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tomtom215/studybuddy/internal/logging"
)

// Validate checks every configuration section and returns the first problem.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateSecurity,
		c.validateLogging,
		c.validateFocus,
		c.validateLandmarks,
		c.validatePubSub,
		c.validateStudio,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if len(c.Security.CORSOrigins) == 0 {
		return fmt.Errorf("security.cors_origins must list at least one origin (use * for any)")
	}
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs <= 0 {
			return fmt.Errorf("security.rate_limit_requests must be positive, got %d", c.Security.RateLimitReqs)
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("security.rate_limit_window must be positive")
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("logging.level %q is not a valid level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateFocus() error {
	f := c.Focus
	if f.Cooldown < 0 {
		return fmt.Errorf("focus.cooldown must not be negative, got %v", f.Cooldown)
	}
	switch f.OverflowPolicy {
	case "latest", "reject":
	default:
		return fmt.Errorf("focus.overflow_policy must be latest or reject, got %q", f.OverflowPolicy)
	}
	if f.MaxFramesPerSecond < 0 {
		return fmt.Errorf("focus.max_frames_per_second must not be negative")
	}
	if f.MaxFrameBytes <= 0 {
		return fmt.Errorf("focus.max_frame_bytes must be positive")
	}
	if f.MaxFramePixels <= 0 {
		return fmt.Errorf("focus.max_frame_pixels must be positive")
	}
	if f.ClosedEAR < 0 || f.AlertEAR <= f.ClosedEAR {
		return fmt.Errorf("focus.alert_ear (%.3f) must be greater than focus.closed_ear (%.3f) and both non-negative",
			f.AlertEAR, f.ClosedEAR)
	}
	if err := validateEye("focus.left_eye", f.LeftEye); err != nil {
		return err
	}
	return validateEye("focus.right_eye", f.RightEye)
}

func validateEye(name string, indices []int) error {
	if len(indices) != 6 {
		return fmt.Errorf("%s must list exactly 6 landmark indices, got %d", name, len(indices))
	}
	for _, idx := range indices {
		if idx < 0 {
			return fmt.Errorf("%s contains negative index %d", name, idx)
		}
	}
	return nil
}

func (c *Config) validateLandmarks() error {
	l := c.Landmarks
	if strings.TrimSpace(l.Command) == "" {
		return fmt.Errorf("landmarks.command is required")
	}
	if l.Workers < 1 {
		return fmt.Errorf("landmarks.workers must be at least 1, got %d", l.Workers)
	}
	if l.CallTimeout <= 0 || l.StartTimeout <= 0 {
		return fmt.Errorf("landmarks.call_timeout and landmarks.start_timeout must be positive")
	}
	if l.MaxFaces < 1 {
		return fmt.Errorf("landmarks.max_faces must be at least 1")
	}
	for name, v := range map[string]float64{
		"landmarks.detection_confidence": l.DetectionConfidence,
		"landmarks.tracking_confidence":  l.TrackingConfidence,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be within [0, 1], got %.2f", name, v)
		}
	}
	return nil
}

func (c *Config) validatePubSub() error {
	p := c.PubSub
	switch p.Backend {
	case "gochannel":
		if p.BufferSize < 0 {
			return fmt.Errorf("pubsub.buffer_size must not be negative")
		}
	case "nats":
		if !p.EmbeddedServer {
			u, err := url.Parse(p.NATSURL)
			if err != nil || (u.Scheme != "nats" && u.Scheme != "tls") {
				return fmt.Errorf("pubsub.nats_url must be a nats:// or tls:// URL, got %q", p.NATSURL)
			}
		} else if p.EmbeddedPort < 1 || p.EmbeddedPort > 65535 {
			return fmt.Errorf("pubsub.embedded_port must be between 1 and 65535, got %d", p.EmbeddedPort)
		}
	default:
		return fmt.Errorf("pubsub.backend must be gochannel or nats, got %q", p.Backend)
	}
	if p.BreakerFailureThreshold == 0 {
		return fmt.Errorf("pubsub.breaker_failure_threshold must be at least 1")
	}
	return nil
}

func (c *Config) validateStudio() error {
	s := c.Studio
	if !s.Enabled {
		return nil
	}
	u, err := url.Parse(s.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("studio.base_url must be an http(s) URL, got %q", s.BaseURL)
	}
	if s.Model == "" {
		return fmt.Errorf("studio.model is required when studio is enabled")
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("studio.timeout must be positive")
	}
	if s.MaxUploadBytes <= 0 || s.MaxTextBytes <= 0 {
		return fmt.Errorf("studio.max_upload_bytes and studio.max_text_bytes must be positive")
	}
	if s.BreakerFailureThreshold == 0 {
		return fmt.Errorf("studio.breaker_failure_threshold must be at least 1")
	}
	if s.CacheSize < 0 {
		return fmt.Errorf("studio.cache_size must not be negative")
	}
	if s.CacheSize > 0 && s.CacheTTL <= 0 {
		return fmt.Errorf("studio.cache_ttl must be positive when the cache is enabled")
	}
	return nil
}
