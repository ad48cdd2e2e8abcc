// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

package landmark

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/tomtom215/studybuddy/internal/focus"
)

// WorkerSpec describes how to launch a worker process.
type WorkerSpec struct {
	Command string
	Args    []string
	// Env is appended to the parent environment.
	Env []string
}

// Worker is one face-mesh process. It is not safe for concurrent use; the
// Pool guarantees a single caller at a time.
type Worker struct {
	ID int

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	writer *bufio.Writer
	data   io.ReadCloser
	stderr *tailBuffer

	exited    chan struct{}
	closeOnce sync.Once
}

// StartWorker launches a worker and waits up to readyTimeout for its ready
// message.
func StartWorker(id int, spec WorkerSpec, readyTimeout time.Duration) (*Worker, error) {
	cmd := exec.Command(spec.Command, spec.Args...) //nolint:gosec // command comes from operator configuration
	if len(spec.Env) > 0 {
		cmd.Env = append(os.Environ(), spec.Env...)
	}

	// Responses travel on a side pipe that the child sees as fd 3.
	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create data pipe: %w", err)
	}
	cmd.ExtraFiles = []*os.File{w}

	stderr := newTailBuffer(8 << 10)
	cmd.Stderr = stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		w.Close()
		r.Close()
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		w.Close()
		r.Close()
		return nil, fmt.Errorf("worker %d failed to start: %w", id, err)
	}
	// Only the child holds the write end now, so its exit surfaces as EOF.
	w.Close()

	wk := newWorker(id, stdin, r)
	wk.cmd = cmd
	wk.stderr = stderr
	go func() {
		_ = cmd.Wait()
		close(wk.exited)
	}()

	ready := make(chan error, 1)
	go func() { ready <- readReady(r) }()

	select {
	case err := <-ready:
		if err != nil {
			wk.Close()
			return nil, fmt.Errorf("worker %d handshake: %w (stderr: %s)", id, err, stderr.String())
		}
	case <-time.After(readyTimeout):
		wk.Close()
		return nil, fmt.Errorf("worker %d not ready within %v (stderr: %s)", id, readyTimeout, stderr.String())
	}
	return wk, nil
}

// newWorker wires a worker over existing pipes.
func newWorker(id int, stdin io.WriteCloser, data io.ReadCloser) *Worker {
	return &Worker{
		ID:     id,
		stdin:  stdin,
		writer: bufio.NewWriterSize(stdin, 64<<10),
		data:   data,
		stderr: newTailBuffer(0),
		exited: make(chan struct{}),
	}
}

// Detect sends one raster and waits for the landmarks.
func (w *Worker) Detect(r *focus.Raster) (*focus.LandmarkSet, error) {
	if err := writeRequest(w.writer, r); err != nil {
		return nil, err
	}
	if err := w.writer.Flush(); err != nil {
		return nil, fmt.Errorf("flush request: %w", err)
	}
	return readResponse(w.data)
}

// Alive reports whether the process is still running. Workers built over
// plain pipes (no process) are always alive until closed.
func (w *Worker) Alive() bool {
	select {
	case <-w.exited:
		return false
	default:
		return true
	}
}

// Stderr returns the tail of the worker's stderr output.
func (w *Worker) Stderr() string {
	return w.stderr.String()
}

// Close stops the worker. Closing stdin asks it to exit; it is killed if it
// has not exited after two seconds.
func (w *Worker) Close() error {
	w.closeOnce.Do(func() {
		w.stdin.Close()
		w.data.Close()
		if w.cmd == nil {
			close(w.exited)
			return
		}
		select {
		case <-w.exited:
		case <-time.After(2 * time.Second):
			_ = w.cmd.Process.Kill()
			<-w.exited
		}
	})
	return nil
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	max int
	buf []byte
}

func newTailBuffer(limit int) *tailBuffer {
	return &tailBuffer{max: limit}
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.max <= 0 {
		return len(p), nil
	}
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}
