// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

package supervisor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

var errSimulated = errors.New("simulated failure")

// fakeService stands in for the pool, broker, hub or HTTP server. It fails
// the first failures runs and then blocks until canceled.
type fakeService struct {
	name     string
	starts   atomic.Int32
	mu       sync.Mutex
	failures int
	stopped  chan struct{}
	once     sync.Once
}

func newFakeService(name string, failures int) *fakeService {
	return &fakeService{name: name, failures: failures, stopped: make(chan struct{})}
}

func (f *fakeService) Serve(ctx context.Context) error {
	f.starts.Add(1)

	f.mu.Lock()
	if f.failures > 0 {
		f.failures--
		f.mu.Unlock()
		return errSimulated
	}
	f.mu.Unlock()

	<-ctx.Done()
	f.once.Do(func() { close(f.stopped) })
	return ctx.Err()
}

func (f *fakeService) String() string { return f.name }

func (f *fakeService) Starts() int { return int(f.starts.Load()) }
