// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

// Package config loads the service configuration from defaults, an optional
// YAML file and environment variables, in that order of precedence.
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("Failed to load configuration")
//	}
//
// Config is immutable after Load and safe for concurrent reads.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Security   SecurityConfig   `koanf:"security"`
	Logging    LoggingConfig    `koanf:"logging"`
	Focus      FocusConfig      `koanf:"focus"`
	Landmarks  LandmarkConfig   `koanf:"landmarks"`
	PubSub     PubSubConfig     `koanf:"pubsub"`
	Studio     StudioConfig     `koanf:"studio"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig holds CORS and request rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// FocusConfig controls the per-session frame pipeline.
type FocusConfig struct {
	// Cooldown is the minimum spacing between two emitted scores of one session.
	Cooldown time.Duration `koanf:"cooldown"`

	// OverflowPolicy decides what happens to a frame that arrives while the
	// session is busy: "latest" replaces the pending frame, "reject" drops
	// the new one.
	OverflowPolicy string `koanf:"overflow_policy"`

	// MaxFramesPerSecond throttles each websocket connection before frames
	// reach the session mailbox. 0 disables the limiter.
	MaxFramesPerSecond float64 `koanf:"max_frames_per_second"`

	// MaxFrameBytes bounds one inbound websocket message.
	MaxFrameBytes int64 `koanf:"max_frame_bytes"`

	// MaxFramePixels bounds the width×height a frame header may declare.
	MaxFramePixels int `koanf:"max_frame_pixels"`

	ClosedEAR float64 `koanf:"closed_ear"`
	AlertEAR  float64 `koanf:"alert_ear"`

	LeftEye  []int `koanf:"left_eye"`
	RightEye []int `koanf:"right_eye"`
}

// LandmarkConfig configures the face-mesh worker processes.
type LandmarkConfig struct {
	Command             string        `koanf:"command"`
	Args                []string      `koanf:"args"`
	Workers             int           `koanf:"workers"`
	CallTimeout         time.Duration `koanf:"call_timeout"`
	StartTimeout        time.Duration `koanf:"start_timeout"`
	MaxFaces            int           `koanf:"max_faces"`
	RefineLandmarks     bool          `koanf:"refine_landmarks"`
	DetectionConfidence float64       `koanf:"detection_confidence"`
	TrackingConfidence  float64       `koanf:"tracking_confidence"`
}

// PubSubConfig selects the event transport for focus score updates.
type PubSubConfig struct {
	// Backend is "gochannel" (in-process) or "nats" (requires the nats build tag).
	Backend        string        `koanf:"backend"`
	BufferSize     int64         `koanf:"buffer_size"`
	NATSURL        string        `koanf:"nats_url"`
	EmbeddedServer bool          `koanf:"embedded_server"`
	EmbeddedHost   string        `koanf:"embedded_host"`
	EmbeddedPort   int           `koanf:"embedded_port"`
	MaxReconnects  int           `koanf:"max_reconnects"`
	ReconnectWait  time.Duration `koanf:"reconnect_wait"`

	BreakerFailureThreshold uint32        `koanf:"breaker_failure_threshold"`
	BreakerTimeout          time.Duration `koanf:"breaker_timeout"`
}

// StudioConfig configures the LLM-backed study content endpoints.
type StudioConfig struct {
	Enabled        bool          `koanf:"enabled"`
	APIKey         string        `koanf:"api_key"`
	Model          string        `koanf:"model"`
	BaseURL        string        `koanf:"base_url"`
	Timeout        time.Duration `koanf:"timeout"`
	MaxUploadBytes int64         `koanf:"max_upload_bytes"`
	MaxTextBytes   int           `koanf:"max_text_bytes"`

	// CacheSize bounds how many generated results are kept for repeated
	// inputs. 0 disables the cache.
	CacheSize int           `koanf:"cache_size"`
	CacheTTL  time.Duration `koanf:"cache_ttl"`

	BreakerFailureThreshold uint32        `koanf:"breaker_failure_threshold"`
	BreakerTimeout          time.Duration `koanf:"breaker_timeout"`
}

// Available reports whether the studio endpoints can call the model.
func (s StudioConfig) Available() bool {
	return s.Enabled && s.APIKey != ""
}

// SupervisorConfig tunes the suture tree.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold"`
	FailureDecay     float64       `koanf:"failure_decay"`
	FailureBackoff   time.Duration `koanf:"failure_backoff"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout"`
}

// Load reads configuration from all sources and validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
