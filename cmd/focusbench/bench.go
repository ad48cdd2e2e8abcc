// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/studybuddy/internal/focus"
	ws "github.com/tomtom215/studybuddy/internal/websocket"
)

var imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

// scoreLine is one output record: the websocket update plus what an
// operator needs to calibrate against it.
type scoreLine struct {
	ws.Message
	File         string  `json:"file"`
	EAR          float64 `json:"ear"`
	FaceDetected bool    `json:"faceDetected"`
	Error        string  `json:"error,omitempty"`
}

// summary aggregates a run.
type summary struct {
	Frames int
	Faces  int
	Errors int
	MinEAR float64
	MaxEAR float64
	sum    int
}

func (s *summary) add(line scoreLine) {
	s.Frames++
	if line.Error != "" {
		s.Errors++
		return
	}
	if !line.FaceDetected {
		return
	}
	if s.Faces == 0 || line.EAR < s.MinEAR {
		s.MinEAR = line.EAR
	}
	if s.Faces == 0 || line.EAR > s.MaxEAR {
		s.MaxEAR = line.EAR
	}
	s.Faces++
	s.sum += line.Message.Data.(focus.Event).FocusScore
}

// MeanScore is the average score over frames with a face.
func (s *summary) MeanScore() float64 {
	if s.Faces == 0 {
		return 0
	}
	return float64(s.sum) / float64(s.Faces)
}

func (s *summary) String() string {
	return fmt.Sprintf("frames=%d faces=%d errors=%d mean_score=%.1f ear_min=%.3f ear_max=%.3f",
		s.Frames, s.Faces, s.Errors, s.MeanScore(), s.MinEAR, s.MaxEAR)
}

type bench struct {
	processor focus.Processor
	workers   int
}

func newBench(processor focus.Processor, workers int) *bench {
	if workers < 1 {
		workers = 1
	}
	return &bench{processor: processor, workers: workers}
}

// scoreFile runs one image through the pipeline. Failures are reported in
// the line rather than aborting the run.
func (b *bench) scoreFile(ctx context.Context, path string) scoreLine {
	line := scoreLine{File: path}
	data, err := os.ReadFile(path)
	if err != nil {
		line.Error = err.Error()
		return line
	}
	res, err := b.processor.Process(ctx, focus.Frame{Image: data})
	if err != nil {
		line.Error = err.Error()
		return line
	}
	line.Message = ws.Message{Type: ws.MessageTypeFocusScoreUpdate, Data: res.Event}
	line.EAR = res.EAR
	line.FaceDetected = res.FaceDetected
	return line
}

// run scores paths concurrently and writes the lines to out in input order.
// bar may be nil.
func (b *bench) run(ctx context.Context, paths []string, out io.Writer, bar *progressbar.ProgressBar) (*summary, error) {
	lines := make([]scoreLine, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			lines[i] = b.scoreFile(gctx, path)
			if bar != nil {
				_ = bar.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sum := &summary{}
	enc := json.NewEncoder(out)
	for _, line := range lines {
		sum.add(line)
		if err := enc.Encode(line); err != nil {
			return nil, err
		}
	}
	return sum, nil
}

// collectFrames lists the images in dir, sorted by name so frame sequences
// replay in capture order.
func collectFrames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return nil, fmt.Errorf("no .jpg, .jpeg or .png files in %s", dir)
	}
	return paths, nil
}
