package transport

import (
	"context"
	"net/http"
	"sync"

	"github.com/iksnae/weather-chat/internal"
	"github.com/iksnae/weather-chat/internal/chat"
	"github.com/iksnae/weather-chat/internal/config"
)

// Session is the scoped handle a chat view holds between mount and
// teardown. It owns the real-time connection.
type Session struct {
	store    *chat.Store
	realtime Realtime
	selector *Selector

	cancel    context.CancelFunc
	listening sync.WaitGroup
	closeOnce sync.Once
}

type sessionOptions struct {
	store      *chat.Store
	httpClient HTTPClient
	onState    func(ConnectionState)
	realtime   Realtime
}

// SessionOption configures Open
type SessionOption func(*sessionOptions)

// WithStore uses store instead of a fresh one
func WithStore(store *chat.Store) SessionOption {
	return func(o *sessionOptions) {
		o.store = store
	}
}

// WithHTTPClient overrides the client used for one-shot calls
func WithHTTPClient(client HTTPClient) SessionOption {
	return func(o *sessionOptions) {
		o.httpClient = client
	}
}

// WithSessionStateHandler observes real-time ConnectionState transitions
func WithSessionStateHandler(fn func(ConnectionState)) SessionOption {
	return func(o *sessionOptions) {
		o.onState = fn
	}
}

// WithRealtime uses rt instead of dialing cfg.WSURL
func WithRealtime(rt Realtime) SessionOption {
	return func(o *sessionOptions) {
		o.realtime = rt
	}
}

// Open dials the real-time channel, prepares the one-shot client and starts
// listening for inbound frames. It never fails because the real-time
// channel is unavailable; deliveries then use the one-shot endpoint.
func Open(ctx context.Context, cfg *config.Config, opts ...SessionOption) *Session {
	o := sessionOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.store == nil {
		o.store = chat.NewStore()
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: cfg.RequestTimeout}
	}
	if o.realtime == nil {
		o.realtime = DialRealtime(ctx, cfg.WSURL, WithStateHandler(o.onState))
	}

	oneShot := NewOneShotClient(cfg.ChatEndpoint(), o.httpClient)
	selector := NewSelector(o.store, o.realtime, oneShot,
		WithReplyTimeout(cfg.ReplyTimeout),
		WithBackendHint(cfg.APIURL),
	)

	listenCtx, cancel := context.WithCancel(context.Background())
	s := &Session{
		store:    o.store,
		realtime: o.realtime,
		selector: selector,
		cancel:   cancel,
	}
	s.listening.Add(1)
	go func() {
		defer s.listening.Done()
		selector.Listen(listenCtx)
	}()

	internal.LogDebug("Session opened (realtime: %s, endpoint: %s)", o.realtime.State(), oneShot.Endpoint())
	return s
}

// Deliver sends one user message; see Selector.Deliver
func (s *Session) Deliver(ctx context.Context, text string) Outcome {
	return s.selector.Deliver(ctx, text)
}

// Store returns the conversation store
func (s *Session) Store() *chat.Store {
	return s.store
}

// State reports the real-time channel health
func (s *Session) State() ConnectionState {
	return s.selector.State()
}

// Close releases the real-time connection and stops listening. In-flight
// one-shot calls are left to finish on their own.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.realtime.Close()
		s.cancel()
		s.listening.Wait()
		internal.LogDebug("Session closed")
	})
	return err
}
