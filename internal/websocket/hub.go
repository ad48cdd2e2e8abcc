// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

package websocket

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tomtom215/studybuddy/internal/focus"
	"github.com/tomtom215/studybuddy/internal/logging"
	"github.com/tomtom215/studybuddy/internal/metrics"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled is the normal graceful shutdown path.
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline may indicate a hung operation during shutdown.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Message types on the focus stream.
const (
	MessageTypeSendVideoFrame   = "sendVideoFrame"
	MessageTypeFocusScoreUpdate = "focusScoreUpdate"
	MessageTypeSession          = "session"
	MessageTypeError            = "error"
	MessageTypePing             = "ping"
	MessageTypePong             = "pong"
)

// ErrHubNotRunning is returned when a connection arrives while the hub loop
// is stopped.
var ErrHubNotRunning = errors.New("websocket hub is not running")

// Message is the envelope for every websocket message.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// SessionInfo is sent to a client once it has joined a session.
type SessionInfo struct {
	SessionID string `json:"sessionId"`
}

// ErrorData reports a rejected inbound message.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Sessions hands out per-session frame workers. *focus.Registry implements it.
type Sessions interface {
	Acquire(id string) (*focus.Session, error)
	Release(id string)
}

// EventSource delivers the events of one session. *pubsub.Broker implements it.
type EventSource interface {
	Subscribe(ctx context.Context, sessionID string) (<-chan focus.Event, error)
}

// Config holds per-connection limits.
type Config struct {
	// MaxFramesPerSecond throttles inbound frames per connection; 0 disables it.
	MaxFramesPerSecond float64
	// MaxMessageBytes bounds one inbound message.
	MaxMessageBytes int64
	// AllowedOrigins lists accepted Origin headers; "*" accepts any.
	AllowedOrigins []string
}

// Hub tracks the connected clients and ties each one to its focus session.
type Hub struct {
	sessions Sessions
	events   EventSource
	cfg      Config
	upgrader websocket.Upgrader
	logger   zerolog.Logger

	clients    map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex

	// runCtx and done belong to the current RunWithContext call.
	runCtx context.Context
	done   chan struct{}
}

// NewHub creates a hub. It accepts connections once RunWithContext runs.
func NewHub(sessions Sessions, events EventSource, cfg Config) *Hub {
	if cfg.MaxMessageBytes <= 0 {
		cfg.MaxMessageBytes = defaultMaxMessageSize
	}
	stopped := make(chan struct{})
	close(stopped)

	h := &Hub{
		sessions:   sessions,
		events:     events,
		cfg:        cfg,
		logger:     logging.WithComponent("websocket-hub"),
		clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       stopped,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  64 << 10,
		WriteBufferSize: 4 << 10,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.cfg.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	h.logger.Warn().Str("origin", origin).Msg("Rejected websocket origin")
	return false
}

// Running reports whether the hub loop is accepting connections.
func (h *Hub) Running() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

func (h *Hub) current() (context.Context, chan struct{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.runCtx, h.done
}

// ServeSession upgrades the request and joins the connection to sessionID.
// The caller validates the session ID.
func (h *Hub) ServeSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	runCtx, done := h.current()
	select {
	case <-done:
		http.Error(w, ErrHubNotRunning.Error(), http.StatusServiceUnavailable)
		return
	default:
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already replied.
		h.logger.Debug().Err(err).Msg("Websocket upgrade failed")
		return
	}

	c := NewClient(h, conn, sessionID)
	if err := h.attach(runCtx, done, c); err != nil {
		h.logger.Warn().Err(err).Str("session_id", sessionID).Msg("Could not join focus session")
		msg := websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "session unavailable")
		_ = conn.WriteMessage(websocket.CloseMessage, msg)
		_ = conn.Close()
		return
	}
	c.Start()
}

// attach takes a session reference, subscribes to its events and registers
// the client with the hub loop.
func (h *Hub) attach(runCtx context.Context, done chan struct{}, c *Client) error {
	session, err := h.sessions.Acquire(c.sessionID)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(runCtx)
	events, err := h.events.Subscribe(ctx, c.sessionID)
	if err != nil {
		cancel()
		h.sessions.Release(c.sessionID)
		return err
	}
	c.bind(session, cancel)
	go c.forwardEvents(events)

	c.trySend(Message{Type: MessageTypeSession, Data: SessionInfo{SessionID: c.sessionID}})

	select {
	case h.Register <- c:
		return nil
	case <-done:
		c.detach()
		return ErrHubNotRunning
	}
}

func (h *Hub) unregister(c *Client) {
	_, done := h.current()
	select {
	case h.Unregister <- c:
	case <-done:
		c.detach()
	}
}

// RunWithContext runs the hub loop until ctx is cancelled, then closes every
// client. It is designed for suture supervision and may be called again
// after it returns.
//
// Context cancellation takes priority over lifecycle events so shutdown is
// never starved by a flood of connections.
func (h *Hub) RunWithContext(ctx context.Context) error {
	h.mu.Lock()
	h.runCtx = ctx
	h.done = make(chan struct{})
	done := h.done
	h.mu.Unlock()

	defer close(done)

	for {
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.addClient(client)
		case client := <-h.Unregister:
			h.removeClient(client)
		}
	}
}

// Serve implements suture.Service.
func (h *Hub) Serve(ctx context.Context) error {
	return h.RunWithContext(ctx)
}

// String names the service for supervisor logs.
func (h *Hub) String() string {
	return "websocket-hub"
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	total := len(h.clients)
	h.mu.Unlock()

	metrics.TrackWebSocket(true)
	h.logger.Info().
		Str("session_id", c.sessionID).
		Int("total_clients", total).
		Msg("websocket client connected")
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	total := len(h.clients)
	h.mu.Unlock()

	c.detach()
	if ok {
		metrics.TrackWebSocket(false)
		h.logger.Info().
			Str("session_id", c.sessionID).
			Int("total_clients", total).
			Msg("websocket client disconnected")
	}
}

// logGracefulShutdown closes every client and logs the shutdown. The
// context error is not logged as an error: cancellation is the expected path.
func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.GetClientCount()
	h.closeAllClients()

	h.logger.Info().
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", clientCount).
		Msg("websocket hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ShutdownReasonContextDeadline
	}
	return ShutdownReasonContextCanceled
}

// closeAllClients closes clients in ID order so shutdown logs are stable.
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
		delete(h.clients, c)
	}
	h.mu.Unlock()

	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	for _, c := range clients {
		c.detach()
		metrics.TrackWebSocket(false)
	}
}

// GetClientCount returns the number of connected clients.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// SessionClientCount returns the number of clients joined to sessionID.
func (h *Hub) SessionClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for c := range h.clients {
		if c.sessionID == sessionID {
			n++
		}
	}
	return n
}
