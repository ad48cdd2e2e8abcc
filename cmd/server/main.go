// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/studybuddy/internal/api"
	"github.com/tomtom215/studybuddy/internal/cache"
	"github.com/tomtom215/studybuddy/internal/config"
	"github.com/tomtom215/studybuddy/internal/focus"
	"github.com/tomtom215/studybuddy/internal/landmark"
	"github.com/tomtom215/studybuddy/internal/logging"
	"github.com/tomtom215/studybuddy/internal/pubsub"
	"github.com/tomtom215/studybuddy/internal/studio"
	"github.com/tomtom215/studybuddy/internal/supervisor"
	"github.com/tomtom215/studybuddy/internal/supervisor/services"
	ws "github.com/tomtom215/studybuddy/internal/websocket"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})
	api.Version = version

	logging.Info().
		Str("version", version).
		Str("addr", cfg.Server.Addr()).
		Str("pubsub_backend", cfg.PubSub.Backend).
		Bool("studio", cfg.Studio.Available()).
		Msg("Starting StudyBuddy")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Focus pipeline
	pool := landmark.NewPool(landmark.ConfigFrom(cfg.Landmarks))
	pipeline, err := focus.PipelineFrom(cfg.Focus, pool)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build focus pipeline")
	}

	broker, err := pubsub.New(cfg.PubSub)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create event broker")
	}

	sessionCfg, err := focus.SessionConfigFrom(cfg.Focus)
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid focus session configuration")
	}
	registry := focus.NewRegistry(ctx, pipeline, broker, sessionCfg)

	hub := ws.NewHub(registry, broker, ws.Config{
		MaxFramesPerSecond: cfg.Focus.MaxFramesPerSecond,
		MaxMessageBytes:    cfg.Focus.MaxFrameBytes,
		AllowedOrigins:     cfg.Security.CORSOrigins,
	})

	// Study content
	var studyService api.StudyService
	if cfg.Studio.Available() {
		var opts []studio.Option
		if cfg.Studio.CacheSize > 0 {
			opts = append(opts, studio.WithCache(cache.New[*studio.Content](cfg.Studio.CacheSize, cfg.Studio.CacheTTL)))
		}
		studyService = studio.NewService(studio.NewGemini(cfg.Studio), opts...)
		logging.Info().Str("model", cfg.Studio.Model).Int("cache_size", cfg.Studio.CacheSize).Msg("Study content endpoints enabled")
	} else {
		logging.Info().Msg("Study content endpoints disabled (STUDIO_ENABLED or GEMINI_API_KEY not set)")
	}

	handler := api.NewHandler(cfg, hub, studyService)
	handler.AddReadinessCheck("landmark_pool", pool.Ready)

	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(cfg.Security)))
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfigFrom(cfg.Supervisor))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}
	tree.AddInferenceService(pool)
	tree.AddMessagingService(broker)
	tree.AddMessagingService(hub)
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout,
		services.WithDrain(func(context.Context) { registry.CloseAll() }),
	))

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
		stop()
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Sessions may still be open if the API layer never started.
	registry.CloseAll()
	if err := broker.Close(); err != nil {
		logging.Warn().Err(err).Msg("Failed to close event broker")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Application stopped gracefully")
}
