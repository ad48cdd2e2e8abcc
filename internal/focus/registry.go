// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

package focus

import (
	"context"
	"regexp"
	"sync"
)

// MaxSessionIDLength bounds client-chosen session identifiers.
const MaxSessionIDLength = 64

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidSessionID reports whether id can name a session. IDs end up in
// pub/sub subjects, so separators and wildcards are not allowed.
func ValidSessionID(id string) bool {
	return len(id) <= MaxSessionIDLength && sessionIDPattern.MatchString(id)
}

// Registry owns the live sessions, keyed by session ID. Several connections
// may share one session; the session is closed when the last one releases it.
type Registry struct {
	parent    context.Context
	processor Processor
	publisher Publisher
	cfg       SessionConfig

	mu       sync.Mutex
	sessions map[string]*registryEntry
	closed   bool
}

type registryEntry struct {
	session *Session
	refs    int
}

// NewRegistry creates a registry. Sessions it starts are children of parent.
func NewRegistry(parent context.Context, processor Processor, publisher Publisher, cfg SessionConfig) *Registry {
	return &Registry{
		parent:    parent,
		processor: processor,
		publisher: publisher,
		cfg:       cfg,
		sessions:  make(map[string]*registryEntry),
	}
}

// Acquire returns the session for id, starting it if needed, and takes a
// reference on it. Every successful Acquire must be paired with Release.
func (r *Registry) Acquire(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || r.parent.Err() != nil {
		return nil, ErrSessionClosed
	}
	if e, ok := r.sessions[id]; ok {
		e.refs++
		return e.session, nil
	}
	s := NewSession(id, r.processor, r.publisher, r.cfg)
	s.Start(r.parent)
	r.sessions[id] = &registryEntry{session: s, refs: 1}
	return s, nil
}

// Release drops a reference taken by Acquire.
func (r *Registry) Release(id string) {
	r.mu.Lock()
	e, ok := r.sessions[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	e.refs--
	if e.refs > 0 {
		r.mu.Unlock()
		return
	}
	delete(r.sessions, id)
	r.mu.Unlock()

	e.session.Close()
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Lookup returns the live session for id, if any, without taking a reference.
func (r *Registry) Lookup(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	return e.session, true
}

// CloseAll closes every session and refuses further Acquire calls.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	r.closed = true
	sessions := make([]*Session, 0, len(r.sessions))
	for id, e := range r.sessions {
		sessions = append(sessions, e.session)
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
