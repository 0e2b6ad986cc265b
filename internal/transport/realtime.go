package transport

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/iksnae/weather-chat/internal"
	"github.com/rs/zerolog"
)

const (
	handshakeTimeout = 10 * time.Second
	writeWait        = 10 * time.Second
	maxFrameSize     = 1 << 20
	frameBuffer      = 16
)

// Realtime is a persistent channel that may carry a message to the backend
type Realtime interface {
	// TrySend writes frame if the channel is open. It does not wait for a reply.
	TrySend(frame OutboundFrame) bool
	// Frames yields inbound frames and is closed when the channel goes down.
	Frames() <-chan InboundFrame
	State() ConnectionState
	Close() error
}

// WSChannel is a Realtime backed by a WebSocket connection. It is dialed
// once; there is no reconnection.
type WSChannel struct {
	url     string
	onState func(ConnectionState)
	log     zerolog.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	state  ConnectionState
	closed bool

	frames chan InboundFrame
	done   chan struct{}
	quit   chan struct{}
}

// RealtimeOption configures a WSChannel
type RealtimeOption func(*WSChannel)

// WithStateHandler registers fn to observe ConnectionState transitions
func WithStateHandler(fn func(ConnectionState)) RealtimeOption {
	return func(c *WSChannel) {
		c.onState = fn
	}
}

// DialRealtime performs the WebSocket handshake. A failed handshake is not an
// error: the returned channel is in the fallback state and refuses sends.
func DialRealtime(ctx context.Context, url string, opts ...RealtimeOption) *WSChannel {
	c := &WSChannel{
		url:    url,
		log:    internal.Logger().With().Str("component", "realtime").Str("url", url).Logger(),
		state:  StateDisconnected,
		frames: make(chan InboundFrame, frameBuffer),
		done:   make(chan struct{}),
		quit:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	dialer := websocket.Dialer{
		Proxy:            websocket.DefaultDialer.Proxy,
		HandshakeTimeout: handshakeTimeout,
	}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		c.log.Warn().Err(err).Msg("real-time handshake failed, using one-shot fallback")
		c.setState(StateFallback)
		close(c.frames)
		close(c.done)
		return c
	}

	conn.SetReadLimit(maxFrameSize)
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	c.setState(StateConnected)
	c.log.Info().Msg("real-time channel connected")

	go c.readLoop(conn)
	return c
}

func (c *WSChannel) readLoop(conn *websocket.Conn) {
	defer func() {
		c.setState(StateFallback)
		close(c.frames)
		close(c.done)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && !c.isClosed() {
				c.log.Warn().Err(err).Msg("real-time channel closed unexpectedly")
			} else {
				c.log.Debug().Err(err).Msg("real-time channel closed")
			}
			return
		}

		var frame InboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			perr := &internal.ParseError{Source: "realtime", Key: c.url, Err: err}
			c.log.Warn().Err(perr).Msg("dropping malformed frame")
			continue
		}
		select {
		case c.frames <- frame:
		case <-c.quit:
			return
		}
	}
}

// TrySend implements Realtime
func (c *WSChannel) TrySend(frame OutboundFrame) bool {
	c.mu.Lock()
	if c.conn == nil || c.closed || c.state != StateConnected {
		c.mu.Unlock()
		return false
	}

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	err := c.conn.WriteJSON(frame)
	c.mu.Unlock()

	if err != nil {
		c.log.Warn().Err(err).Msg("real-time write failed")
		_ = c.Close()
		return false
	}
	return true
}

// Frames implements Realtime
func (c *WSChannel) Frames() <-chan InboundFrame {
	return c.frames
}

// Done is closed once the channel can no longer deliver frames
func (c *WSChannel) Done() <-chan struct{} {
	return c.done
}

// State implements Realtime
func (c *WSChannel) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Close sends a close frame, releases the connection and moves the channel to
// the fallback state.
func (c *WSChannel) Close() error {
	c.mu.Lock()
	if c.closed || c.conn == nil {
		c.closed = true
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.quit)
	conn := c.conn
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.mu.Unlock()

	c.setState(StateFallback)
	return conn.Close()
}

func (c *WSChannel) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *WSChannel) setState(state ConnectionState) {
	c.mu.Lock()
	if c.state == state {
		c.mu.Unlock()
		return
	}
	c.state = state
	fn := c.onState
	c.mu.Unlock()

	c.log.Debug().Stringer("state", state).Msg("connection state changed")
	if fn != nil {
		fn(state)
	}
}
