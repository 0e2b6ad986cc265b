package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/iksnae/weather-chat/internal/chat"
)

// ChatRequest is a decoded one-shot request body
type ChatRequest struct {
	Message string         `json:"message"`
	History []chat.Message `json:"history"`
}

// ClientFrame is a decoded client-to-server real-time frame
type ClientFrame struct {
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// RealtimeHandler returns the raw frames to send back for one client frame.
// Returning nil sends nothing.
type RealtimeHandler func(frame ClientFrame) [][]byte

// FakeBackend is an in-process stand-in for the weather chat backend. It
// serves POST /chat and the /ws WebSocket endpoint and records what it
// receives.
type FakeBackend struct {
	Server *httptest.Server

	mu              sync.Mutex
	chatStatus      int
	chatBody        string
	realtimeEnabled bool
	realtime        RealtimeHandler
	requests        []ChatRequest
	frames          []ClientFrame
	conns           map[*websocket.Conn]struct{}

	upgrader websocket.Upgrader
}

// NewFakeBackend starts a backend that answers every message with
// LondonReplyJSON and accepts WebSocket connections. It is closed when the
// test ends.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()
	b := &FakeBackend{
		chatStatus:      http.StatusOK,
		chatBody:        LondonReplyJSON,
		realtimeEnabled: true,
		realtime:        EchoWeatherReply,
		conns:           map[*websocket.Conn]struct{}{},
		upgrader:        websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/chat", b.handleChat)
	mux.HandleFunc("/ws", b.handleWS)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, `{"status":"ok"}`)
	})
	b.Server = httptest.NewServer(mux)
	t.Cleanup(b.Close)
	return b
}

// URL is the base URL for one-shot calls
func (b *FakeBackend) URL() string {
	return b.Server.URL
}

// WSURL is the real-time channel address
func (b *FakeBackend) WSURL() string {
	return "ws" + strings.TrimPrefix(b.Server.URL, "http") + "/ws"
}

// SetChatResponse sets the status and raw body returned by POST /chat
func (b *FakeBackend) SetChatResponse(status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chatStatus = status
	b.chatBody = body
}

// SetRealtimeEnabled makes the /ws handshake succeed or fail
func (b *FakeBackend) SetRealtimeEnabled(enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.realtimeEnabled = enabled
}

// SetRealtimeHandler replaces the reply logic for real-time frames
func (b *FakeBackend) SetRealtimeHandler(h RealtimeHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.realtime = h
}

// Requests returns the one-shot requests received so far
func (b *FakeBackend) Requests() []ChatRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]ChatRequest, len(b.requests))
	copy(out, b.requests)
	return out
}

// Frames returns the real-time frames received so far
func (b *FakeBackend) Frames() []ClientFrame {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]ClientFrame, len(b.frames))
	copy(out, b.frames)
	return out
}

// Push sends a raw frame to every connected client
func (b *FakeBackend) Push(frame []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for conn := range b.conns {
		_ = conn.WriteMessage(websocket.TextMessage, frame)
	}
}

// DropConnections closes every open WebSocket connection from the server side
func (b *FakeBackend) DropConnections() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for conn := range b.conns {
		_ = conn.Close()
		delete(b.conns, conn)
	}
}

// Close shuts the server down
func (b *FakeBackend) Close() {
	b.DropConnections()
	b.Server.Close()
}

func (b *FakeBackend) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	b.requests = append(b.requests, req)
	status, body := b.chatStatus, b.chatBody
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func (b *FakeBackend) handleWS(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	enabled := b.realtimeEnabled
	b.mu.Unlock()
	if !enabled {
		http.NotFound(w, r)
		return
	}

	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	b.mu.Lock()
	b.conns[conn] = struct{}{}
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.conns, conn)
		b.mu.Unlock()
		_ = conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var frame ClientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			continue
		}

		b.mu.Lock()
		b.frames = append(b.frames, frame)
		handler := b.realtime
		b.mu.Unlock()

		if handler == nil {
			continue
		}
		for _, out := range handler(frame) {
			b.mu.Lock()
			err := conn.WriteMessage(websocket.TextMessage, out)
			b.mu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
