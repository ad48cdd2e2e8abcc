// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

package main

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay <dir>",
	Short: "Score every image in a directory of captured frames",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := collectFrames(args[0])
		if err != nil {
			return err
		}

		b, stop, err := startBench(cmd.Context())
		if err != nil {
			return err
		}
		defer stop()

		bar := progressbar.NewOptions(len(paths),
			progressbar.OptionSetDescription("Scoring frames"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)

		sum, err := b.run(cmd.Context(), paths, os.Stdout, bar)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, sum)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)
}
