// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

package main

import (
	"os"

	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score <image...>",
	Short: "Score one or more images",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, stop, err := startBench(cmd.Context())
		if err != nil {
			return err
		}
		defer stop()

		_, err = b.run(cmd.Context(), args, os.Stdout, nil)
		return err
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}
