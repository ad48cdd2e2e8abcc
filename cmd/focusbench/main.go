// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

// Command focusbench runs the focus scoring pipeline offline against still
// images, for calibrating the EAR thresholds.
//
//	focusbench score face.jpg
//	focusbench replay ./frames --workers 4 --closed-ear 0.2 > scores.jsonl
//
// Scores are printed to stdout as focusScoreUpdate JSON lines, one per
// image. Progress and the summary go to stderr.
package main

func main() {
	Execute()
}
