// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the config file locations searched in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/studybuddy/config.yaml",
	"/etc/studybuddy/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            5000,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    2 * time.Minute, // LLM calls on /upload are slow
			IdleTimeout:     2 * time.Minute,
			ShutdownTimeout: 10 * time.Second,
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   30,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Focus: FocusConfig{
			Cooldown:           1500 * time.Millisecond,
			OverflowPolicy:     "latest",
			MaxFramesPerSecond: 30,
			MaxFrameBytes:      4 << 20,
			MaxFramePixels:     4096 * 4096,
			ClosedEAR:          0.18,
			AlertEAR:           0.30,
			LeftEye:            []int{362, 385, 387, 263, 373, 380},
			RightEye:           []int{33, 160, 158, 133, 153, 144},
		},
		Landmarks: LandmarkConfig{
			Command:             "python3",
			Args:                []string{"-u", "face_mesh_worker.py"},
			Workers:             1,
			CallTimeout:         2 * time.Second,
			StartTimeout:        30 * time.Second,
			MaxFaces:            1,
			RefineLandmarks:     true,
			DetectionConfidence: 0.5,
			TrackingConfidence:  0.5,
		},
		PubSub: PubSubConfig{
			Backend:                 "gochannel",
			BufferSize:              64,
			NATSURL:                 "nats://127.0.0.1:4222",
			EmbeddedServer:          true,
			EmbeddedHost:            "127.0.0.1",
			EmbeddedPort:            4222,
			MaxReconnects:           -1,
			ReconnectWait:           2 * time.Second,
			BreakerFailureThreshold: 5,
			BreakerTimeout:          30 * time.Second,
		},
		Studio: StudioConfig{
			Enabled:                 true,
			Model:                   "gemini-1.5-pro-latest",
			BaseURL:                 "https://generativelanguage.googleapis.com/v1beta/models",
			Timeout:                 90 * time.Second,
			MaxUploadBytes:          20 << 20,
			MaxTextBytes:            200_000,
			CacheSize:               256,
			CacheTTL:                30 * time.Minute,
			BreakerFailureThreshold: 5,
			BreakerTimeout:          60 * time.Second,
		},
		Supervisor: SupervisorConfig{
			FailureThreshold: 5,
			FailureDecay:     30,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  10 * time.Second,
		},
	}
}

// LoadWithKoanf loads configuration in three layers: struct defaults, the
// first config file found, then mapped environment variables.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are split on commas when they arrive as env strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"landmarks.args",
	"focus.left_eye",
	"focus.right_eye",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		var trimmed []string
		for _, p := range strings.Split(strVal, ",") {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to config paths.
// Unmapped variables are ignored so unrelated environment cannot leak in.
var envMappings = map[string]string{
	"http_host":             "server.host",
	"http_port":             "server.port",
	"port":                  "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",

	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_requests",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"focus_cooldown":         "focus.cooldown",
	"focus_overflow_policy":  "focus.overflow_policy",
	"focus_max_fps":          "focus.max_frames_per_second",
	"focus_max_frame_bytes":  "focus.max_frame_bytes",
	"focus_max_frame_pixels": "focus.max_frame_pixels",
	"focus_closed_ear":       "focus.closed_ear",
	"focus_alert_ear":        "focus.alert_ear",
	"focus_left_eye":         "focus.left_eye",
	"focus_right_eye":        "focus.right_eye",

	"landmark_command":              "landmarks.command",
	"landmark_args":                 "landmarks.args",
	"landmark_workers":              "landmarks.workers",
	"landmark_call_timeout":         "landmarks.call_timeout",
	"landmark_start_timeout":        "landmarks.start_timeout",
	"landmark_detection_confidence": "landmarks.detection_confidence",
	"landmark_tracking_confidence":  "landmarks.tracking_confidence",
	"landmark_refine":               "landmarks.refine_landmarks",

	"pubsub_backend":      "pubsub.backend",
	"pubsub_buffer_size":  "pubsub.buffer_size",
	"nats_url":            "pubsub.nats_url",
	"nats_embedded":       "pubsub.embedded_server",
	"nats_embedded_port":  "pubsub.embedded_port",
	"nats_max_reconnects": "pubsub.max_reconnects",

	"studio_enabled":          "studio.enabled",
	"google_api_key":          "studio.api_key",
	"gemini_api_key":          "studio.api_key",
	"gemini_model":            "studio.model",
	"gemini_base_url":         "studio.base_url",
	"studio_timeout":          "studio.timeout",
	"studio_max_upload_bytes": "studio.max_upload_bytes",
	"studio_cache_size":       "studio.cache_size",
	"studio_cache_ttl":        "studio.cache_ttl",

	"supervisor_failure_threshold": "supervisor.failure_threshold",
	"supervisor_failure_backoff":   "supervisor.failure_backoff",
	"supervisor_shutdown_timeout":  "supervisor.shutdown_timeout",
}

// envTransformFunc maps an environment variable name to its config path,
// e.g. FOCUS_COOLDOWN -> focus.cooldown.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
