// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

package websocket

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/tomtom215/studybuddy/internal/focus"
	"github.com/tomtom215/studybuddy/internal/metrics"
)

const (
	writeWait             = 10 * time.Second
	pongWait              = 60 * time.Second
	pingPeriod            = (pongWait * 9) / 10
	defaultMaxMessageSize = 4 << 20
	sendBuffer            = 256
)

// clientIDCounter gives clients monotonically increasing IDs so they sort
// in connection order.
var clientIDCounter atomic.Uint64

// inboundMessage defers decoding of data until the type is known.
type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Client is one websocket connection joined to a focus session.
type Client struct {
	id        uint64
	hub       *Hub
	conn      *websocket.Conn
	sessionID string
	limiter   *rate.Limiter

	session *focus.Session
	cancel  context.CancelFunc

	sendMu     sync.Mutex
	send       chan Message
	sendClosed bool

	detachOnce sync.Once
}

// NewClient creates a client for conn. The hub binds it to its session.
func NewClient(hub *Hub, conn *websocket.Conn, sessionID string) *Client {
	limit := rate.Inf
	burst := 1
	if fps := hub.cfg.MaxFramesPerSecond; fps > 0 {
		limit = rate.Limit(fps)
		burst = int(fps)
		if burst < 1 {
			burst = 1
		}
	}
	return &Client{
		id:        clientIDCounter.Add(1),
		hub:       hub,
		conn:      conn,
		sessionID: sessionID,
		limiter:   rate.NewLimiter(limit, burst),
		send:      make(chan Message, sendBuffer),
	}
}

// ID returns the client's connection-ordered identifier.
func (c *Client) ID() uint64 {
	return c.id
}

// SessionID returns the session the client is joined to.
func (c *Client) SessionID() string {
	return c.sessionID
}

func (c *Client) bind(session *focus.Session, cancel context.CancelFunc) {
	c.session = session
	c.cancel = cancel
}

// trySend queues msg without blocking. It reports false when the queue is
// full or closed.
func (c *Client) trySend(msg Message) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.sendClosed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) sendError(code, message string) {
	c.trySend(Message{Type: MessageTypeError, Data: ErrorData{Code: code, Message: message}})
}

// detach ends the client's subscription, closes its send queue and drops
// its session reference. Safe to call more than once.
func (c *Client) detach() {
	c.detachOnce.Do(func() {
		c.sendMu.Lock()
		c.sendClosed = true
		close(c.send)
		c.sendMu.Unlock()

		if c.cancel != nil {
			c.cancel()
		}
		if c.session != nil {
			c.hub.sessions.Release(c.sessionID)
		}
	})
}

// forwardEvents relays session events until the subscription ends. A slow
// client loses updates rather than stalling the session.
func (c *Client) forwardEvents(events <-chan focus.Event) {
	for ev := range events {
		if !c.trySend(Message{Type: MessageTypeFocusScoreUpdate, Data: ev}) {
			c.hub.logger.Debug().
				Uint64("client_id", c.id).
				Str("session_id", c.sessionID).
				Msg("Client send queue full, dropping focus update")
		}
	}
}

// readPump reads inbound messages and hands frames to the session.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(c.hub.cfg.MaxMessageBytes)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.hub.logger.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			switch {
			case errors.Is(err, websocket.ErrReadLimit):
				metrics.RecordFrameDropped(metrics.DropOversized)
				c.hub.logger.Warn().Str("session_id", c.sessionID).Msg("websocket message over size limit")
			case websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure):
				c.hub.logger.Error().Err(err).Msg("unexpected websocket close error")
			}
			return
		}
		// Any inbound traffic proves the peer is alive.
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError("invalid_message", "message must be a JSON object with type and data")
			continue
		}

		switch msg.Type {
		case MessageTypeSendVideoFrame:
			if !c.handleFrame(msg.Data) {
				return
			}
		case MessageTypePing:
			c.trySend(Message{Type: MessageTypePong})
		default:
			c.sendError("unknown_type", "unsupported message type "+msg.Type)
		}
	}
}

// handleFrame submits one frame. It returns false once the session is gone.
func (c *Client) handleFrame(raw json.RawMessage) bool {
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		c.sendError("invalid_frame", "sendVideoFrame data must be a base64 string")
		return true
	}
	if !c.limiter.Allow() {
		metrics.RecordFrameDropped(metrics.DropRateLimited)
		return true
	}

	err := c.session.Submit(focus.Frame{Encoded: encoded, ReceivedAt: time.Now()})
	switch {
	case err == nil, errors.Is(err, focus.ErrFrameDropped):
		return true
	case errors.Is(err, focus.ErrSessionClosed):
		return false
	default:
		c.hub.logger.Warn().Err(err).Str("session_id", c.sessionID).Msg("frame not accepted")
		return true
	}
}

// writePump writes queued messages and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.hub.logger.Error().Err(err).Msg("failed to set write deadline")
				return
			}
			if !ok {
				// The hub closed the queue.
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			payload, err := json.Marshal(message)
			if err != nil {
				c.hub.logger.Error().Err(err).Str("type", message.Type).Msg("failed to encode websocket message")
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.hub.logger.Debug().Err(err).Msg("failed to write websocket message")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.hub.logger.Error().Err(err).Msg("failed to set write deadline for ping")
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Start begins reading and writing for the client.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}
