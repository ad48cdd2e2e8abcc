// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

package websocket

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/studybuddy/internal/config"
	"github.com/tomtom215/studybuddy/internal/focus"
	"github.com/tomtom215/studybuddy/internal/logging"
	"github.com/tomtom215/studybuddy/internal/metrics"
	"github.com/tomtom215/studybuddy/internal/pubsub"
)

//nolint:gochecknoinits // silence logging for the package tests
func init() {
	logging.Init(logging.Config{Level: "disabled", Output: io.Discard})
}

// lengthProcessor scores a frame by the length of its text so tests can
// tell frames apart without real images. An empty frame fails to decode.
type lengthProcessor struct{}

func (lengthProcessor) Process(_ context.Context, f focus.Frame) (focus.Result, error) {
	if f.Encoded == "" {
		return focus.Result{}, focus.ErrDecode
	}
	return focus.Result{
		Event:        focus.Event{Timestamp: time.Now().UnixMilli(), FocusScore: len(f.Encoded) % 101},
		FaceDetected: true,
	}, nil
}

type testEnv struct {
	hub      *Hub
	registry *focus.Registry
	server   *httptest.Server
	cancel   context.CancelFunc
	stopped  chan error
}

func newTestEnv(t *testing.T, cfg Config) *testEnv {
	t.Helper()

	broker := pubsub.NewGoChannel(config.PubSubConfig{BufferSize: 16})
	ctx, cancel := context.WithCancel(context.Background())
	registry := focus.NewRegistry(ctx, lengthProcessor{}, broker, focus.SessionConfig{})
	hub := NewHub(registry, broker, cfg)

	env := &testEnv{hub: hub, registry: registry, cancel: cancel, stopped: make(chan error, 1)}
	go func() { env.stopped <- hub.RunWithContext(ctx) }()
	waitUntil(t, hub.Running)

	env.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeSession(w, r, r.URL.Query().Get("session"))
	}))
	t.Cleanup(func() {
		cancel()
		env.server.Close()
		registry.CloseAll()
		broker.Close()
	})
	return env
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met within 2s")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func (e *testEnv) dial(t *testing.T, session string, header http.Header) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(e.server.URL, "http") + "/?session=" + session
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		t.Fatalf("Failed to dial websocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

type received struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func readMessage(t *testing.T, conn *websocket.Conn) received {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(3 * time.Second)); err != nil {
		t.Fatalf("SetReadDeadline: %v", err)
	}
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	var msg received
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return msg
}

func readUntil(t *testing.T, conn *websocket.Conn, msgType string) received {
	t.Helper()
	for i := 0; i < 10; i++ {
		msg := readMessage(t, conn)
		if msg.Type == msgType {
			return msg
		}
	}
	t.Fatalf("no %s message received", msgType)
	return received{}
}

func send(t *testing.T, conn *websocket.Conn, msgType string, data interface{}) {
	t.Helper()
	payload, err := json.Marshal(Message{Type: msgType, Data: data})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
}

func TestClient_Constants(t *testing.T) {
	if writeWait != 10*time.Second {
		t.Errorf("writeWait = %v", writeWait)
	}
	if pongWait != 60*time.Second {
		t.Errorf("pongWait = %v", pongWait)
	}
	if pingPeriod >= pongWait {
		t.Errorf("pingPeriod %v must be shorter than pongWait %v", pingPeriod, pongWait)
	}
}

func TestHubAnnouncesSession(t *testing.T) {
	env := newTestEnv(t, Config{AllowedOrigins: []string{"*"}})
	conn := env.dial(t, "alpha", nil)

	msg := readMessage(t, conn)
	if msg.Type != MessageTypeSession {
		t.Fatalf("first message type = %q, want %q", msg.Type, MessageTypeSession)
	}
	var info SessionInfo
	if err := json.Unmarshal(msg.Data, &info); err != nil {
		t.Fatalf("decode session info: %v", err)
	}
	if info.SessionID != "alpha" {
		t.Errorf("sessionId = %q, want alpha", info.SessionID)
	}
	waitUntil(t, func() bool { return env.hub.GetClientCount() == 1 })
}

func TestHubFrameProducesFocusUpdate(t *testing.T) {
	env := newTestEnv(t, Config{AllowedOrigins: []string{"*"}})
	conn := env.dial(t, "beta", nil)
	readUntil(t, conn, MessageTypeSession)

	send(t, conn, MessageTypeSendVideoFrame, strings.Repeat("A", 42))

	msg := readUntil(t, conn, MessageTypeFocusScoreUpdate)
	var ev focus.Event
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if ev.FocusScore != 42 {
		t.Errorf("focusScore = %d, want 42", ev.FocusScore)
	}
	if ev.Timestamp == 0 {
		t.Error("timestamp not set")
	}
}

func TestHubSharedSession(t *testing.T) {
	env := newTestEnv(t, Config{AllowedOrigins: []string{"*"}})
	sender := env.dial(t, "shared", nil)
	watcher := env.dial(t, "shared", nil)
	readUntil(t, sender, MessageTypeSession)
	readUntil(t, watcher, MessageTypeSession)
	waitUntil(t, func() bool { return env.hub.SessionClientCount("shared") == 2 })

	if env.registry.Len() != 1 {
		t.Errorf("registry has %d sessions, want 1", env.registry.Len())
	}

	send(t, sender, MessageTypeSendVideoFrame, "frame")
	for _, conn := range []*websocket.Conn{sender, watcher} {
		msg := readUntil(t, conn, MessageTypeFocusScoreUpdate)
		var ev focus.Event
		_ = json.Unmarshal(msg.Data, &ev)
		if ev.FocusScore != 5 {
			t.Errorf("focusScore = %d, want 5", ev.FocusScore)
		}
	}
}

func TestHubPingPong(t *testing.T) {
	env := newTestEnv(t, Config{AllowedOrigins: []string{"*"}})
	conn := env.dial(t, "ping", nil)
	readUntil(t, conn, MessageTypeSession)

	send(t, conn, MessageTypePing, nil)
	readUntil(t, conn, MessageTypePong)
}

func TestHubRejectsBadMessages(t *testing.T) {
	env := newTestEnv(t, Config{AllowedOrigins: []string{"*"}})
	conn := env.dial(t, "bad", nil)
	readUntil(t, conn, MessageTypeSession)

	cases := []struct {
		name    string
		payload string
		code    string
	}{
		{"not json", "{", "invalid_message"},
		{"frame not a string", `{"type":"sendVideoFrame","data":{"x":1}}`, "invalid_frame"},
		{"unknown type", `{"type":"subscribe","data":null}`, "unknown_type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(tc.payload)); err != nil {
				t.Fatalf("WriteMessage: %v", err)
			}
			msg := readUntil(t, conn, MessageTypeError)
			var data ErrorData
			_ = json.Unmarshal(msg.Data, &data)
			if data.Code != tc.code {
				t.Errorf("code = %q, want %q", data.Code, tc.code)
			}
		})
	}
}

func TestHubEmptyFrameKeepsSessionAlive(t *testing.T) {
	env := newTestEnv(t, Config{AllowedOrigins: []string{"*"}})
	conn := env.dial(t, "empty", nil)
	readUntil(t, conn, MessageTypeSession)

	send(t, conn, MessageTypeSendVideoFrame, "")
	send(t, conn, MessageTypeSendVideoFrame, "next")

	msg := readUntil(t, conn, MessageTypeFocusScoreUpdate)
	var ev focus.Event
	_ = json.Unmarshal(msg.Data, &ev)
	if ev.FocusScore != 4 {
		t.Errorf("focusScore = %d, want 4 from the frame after the empty one", ev.FocusScore)
	}
}

func TestHubReleasesSessionOnDisconnect(t *testing.T) {
	env := newTestEnv(t, Config{AllowedOrigins: []string{"*"}})
	conn := env.dial(t, "gone", nil)
	readUntil(t, conn, MessageTypeSession)
	waitUntil(t, func() bool { return env.registry.Len() == 1 })

	conn.Close()
	waitUntil(t, func() bool { return env.registry.Len() == 0 && env.hub.GetClientCount() == 0 })
}

func TestHubShutdownClosesClients(t *testing.T) {
	env := newTestEnv(t, Config{AllowedOrigins: []string{"*"}})
	conn := env.dial(t, "closing", nil)
	readUntil(t, conn, MessageTypeSession)
	waitUntil(t, func() bool { return env.hub.GetClientCount() == 1 })

	env.cancel()
	if err := <-env.stopped; !errors.Is(err, context.Canceled) {
		t.Errorf("RunWithContext = %v, want context.Canceled", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				t.Errorf("read error = %v, want normal closure", err)
			}
			break
		}
	}
	if env.hub.Running() {
		t.Error("hub still running after cancel")
	}
	waitUntil(t, func() bool { return env.registry.Len() == 0 })
}

func TestHubNotRunning(t *testing.T) {
	broker := pubsub.NewGoChannel(config.PubSubConfig{})
	defer broker.Close()
	registry := focus.NewRegistry(context.Background(), lengthProcessor{}, broker, focus.SessionConfig{})
	defer registry.CloseAll()
	hub := NewHub(registry, broker, Config{})

	rec := httptest.NewRecorder()
	hub.ServeSession(rec, httptest.NewRequest(http.MethodGet, "/ws/focus", nil), "s")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestHubCheckOrigin(t *testing.T) {
	env := newTestEnv(t, Config{AllowedOrigins: []string{"https://study.example"}})
	wsURL := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/?session=o"

	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err == nil {
		t.Fatal("dial with a foreign origin succeeded")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("response = %v, want 403", resp)
	}

	conn := env.dial(t, "o", http.Header{"Origin": []string{"https://study.example"}})
	readUntil(t, conn, MessageTypeSession)
}

func TestHubRateLimitsFrames(t *testing.T) {
	env := newTestEnv(t, Config{AllowedOrigins: []string{"*"}, MaxFramesPerSecond: 1})
	conn := env.dial(t, "flood", nil)
	readUntil(t, conn, MessageTypeSession)

	before := testutil.ToFloat64(metrics.FramesDropped.WithLabelValues(metrics.DropRateLimited))
	for i := 0; i < 5; i++ {
		send(t, conn, MessageTypeSendVideoFrame, "frame")
	}
	// A ping after the frames proves the reader handled all of them.
	send(t, conn, MessageTypePing, nil)
	readUntil(t, conn, MessageTypePong)

	after := testutil.ToFloat64(metrics.FramesDropped.WithLabelValues(metrics.DropRateLimited))
	if after-before < 3 {
		t.Errorf("rate limited drops = %v, want at least 3", after-before)
	}
}

func TestHubOversizedMessageClosesConnection(t *testing.T) {
	env := newTestEnv(t, Config{AllowedOrigins: []string{"*"}, MaxMessageBytes: 1024})
	conn := env.dial(t, "big", nil)
	readUntil(t, conn, MessageTypeSession)

	send(t, conn, MessageTypeSendVideoFrame, strings.Repeat("A", 4096))

	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseMessageTooBig) {
				t.Errorf("read error = %v, want close 1009", err)
			}
			break
		}
	}
}
