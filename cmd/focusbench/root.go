// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tomtom215/studybuddy/internal/config"
	"github.com/tomtom215/studybuddy/internal/focus"
	"github.com/tomtom215/studybuddy/internal/landmark"
	"github.com/tomtom215/studybuddy/internal/logging"
)

// Options holds the flags shared by score and replay.
type Options struct {
	ClosedEAR float64
	AlertEAR  float64
	Workers   int
	Verbose   bool
}

var opts Options

var rootCmd = &cobra.Command{
	Use:           "focusbench",
	Short:         "Score still images with the focus pipeline",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := "warn"
		if opts.Verbose {
			level = "debug"
		}
		logging.Init(logging.Config{Level: level, Format: "console", Timestamp: true, Output: os.Stderr})
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().Float64Var(&opts.ClosedEAR, "closed-ear", 0, "EAR at or below which the score is 0 (default: focus.closed_ear)")
	rootCmd.PersistentFlags().Float64Var(&opts.AlertEAR, "alert-ear", 0, "EAR at or above which the score is 100 (default: focus.alert_ear)")
	rootCmd.PersistentFlags().IntVarP(&opts.Workers, "workers", "w", 0, "Landmark worker processes (default: landmarks.workers)")
	rootCmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Log worker activity to stderr")
}

// startBench loads the configuration, applies flag overrides and starts a
// landmark pool. The returned stop function shuts the workers down.
func startBench(ctx context.Context) (*bench, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if opts.ClosedEAR > 0 {
		cfg.Focus.ClosedEAR = opts.ClosedEAR
	}
	if opts.AlertEAR > 0 {
		cfg.Focus.AlertEAR = opts.AlertEAR
	}
	if opts.Workers > 0 {
		cfg.Landmarks.Workers = opts.Workers
	}

	pool := landmark.NewPool(landmark.ConfigFrom(cfg.Landmarks))
	pipeline, err := focus.PipelineFrom(cfg.Focus, pool)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Start(ctx); err != nil {
		return nil, nil, err
	}
	return newBench(pipeline, cfg.Landmarks.Workers), func() { pool.Close() }, nil
}
