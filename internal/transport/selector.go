package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/iksnae/weather-chat/internal"
	"github.com/iksnae/weather-chat/internal/chat"
	"github.com/rs/zerolog"
)

// Route names the transport that served a delivery
type Route string

const (
	RouteRealtime Route = "realtime"
	RouteOneShot  Route = "oneshot"
)

// Outcome describes what happened to one delivered message. Reply is the
// assistant message appended for it, nil when nothing was appended. Err is
// set when the delivery failed; a failed one-shot still carries the
// synthetic error Reply.
type Outcome struct {
	Route Route
	Reply *chat.Message
	Err   error
}

// Selector delivers user messages, preferring the real-time channel and
// falling back to a one-shot call. Every reply ends up in the store.
type Selector struct {
	store        *chat.Store
	realtime     Realtime
	oneShot      OneShot
	replyTimeout time.Duration
	backend      string
	log          zerolog.Logger

	mu        sync.Mutex
	waiters   []chan chat.Message
	abandoned int

	drained   chan struct{}
	drainOnce sync.Once
}

// SelectorOption configures a Selector
type SelectorOption func(*Selector)

// WithReplyTimeout bounds the wait for a real-time reply. Zero waits forever.
func WithReplyTimeout(d time.Duration) SelectorOption {
	return func(s *Selector) {
		s.replyTimeout = d
	}
}

// WithBackendHint sets the address named in user-visible error messages
func WithBackendHint(addr string) SelectorOption {
	return func(s *Selector) {
		s.backend = addr
	}
}

// NewSelector creates a selector. realtime may be nil, in which case every
// message goes through oneShot.
func NewSelector(store *chat.Store, realtime Realtime, oneShot OneShot, opts ...SelectorOption) *Selector {
	s := &Selector{
		store:    store,
		realtime: realtime,
		oneShot:  oneShot,
		log:      internal.Logger().With().Str("component", "selector").Logger(),
		drained:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State reports the real-time channel health
func (s *Selector) State() ConnectionState {
	if s.realtime == nil {
		return StateDisconnected
	}
	return s.realtime.State()
}

// Deliver appends a user message with the given text to the store, sends it
// and blocks until its reply has been appended or the delivery has failed.
func (s *Selector) Deliver(ctx context.Context, text string) Outcome {
	user := chat.NewUserMessage(text)
	history := s.store.AppendWithHistory(user)

	if s.realtime != nil {
		waiter := make(chan chat.Message, 1)
		s.mu.Lock()
		s.waiters = append(s.waiters, waiter)
		s.mu.Unlock()

		if s.realtime.TrySend(OutboundFrame{Content: text, Timestamp: user.Timestamp}) {
			reply, err := s.await(ctx, waiter)
			if err == nil {
				return Outcome{Route: RouteRealtime, Reply: &reply}
			}
			if ctx.Err() != nil {
				return Outcome{Route: RouteRealtime, Err: ctx.Err()}
			}
			s.log.Warn().Err(err).Msg("no real-time reply, falling back to one-shot")
			_ = s.realtime.Close()
		} else {
			s.dropWaiter(waiter)
			s.log.Debug().Err(internal.ErrChannelUnavailable).Msg("using one-shot")
		}
	}

	return s.deliverOneShot(ctx, text, history)
}

// await waits for the reply routed to waiter. After a timeout the waiter is
// abandoned so a late reply is discarded instead of appended. A cancelled
// wait only withdraws the waiter.
func (s *Selector) await(ctx context.Context, waiter chan chat.Message) (chat.Message, error) {
	var timeout <-chan time.Time
	if s.replyTimeout > 0 {
		timer := time.NewTimer(s.replyTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	var cause error
	timedOut := false
	select {
	case msg := <-waiter:
		return msg, nil
	case <-timeout:
		cause = fmt.Errorf("no reply within %s", s.replyTimeout)
		timedOut = true
	case <-s.drained:
		cause = internal.ErrChannelUnavailable
	case <-ctx.Done():
		cause = ctx.Err()
	}

	s.mu.Lock()
	if s.dropWaiterLocked(waiter) {
		// the channel is closed after a timeout but frames already read
		// still reach HandleFrame
		if timedOut {
			s.abandoned++
		}
		s.mu.Unlock()
		return chat.Message{}, cause
	}
	s.mu.Unlock()

	// The reply won the race: it has been appended and is on its way.
	return <-waiter, nil
}

func (s *Selector) deliverOneShot(ctx context.Context, text string, history []chat.Message) Outcome {
	reply, err := s.oneShot.Send(ctx, text, history)
	if err != nil {
		s.log.Error().Err(err).Msg("one-shot delivery failed")
		msg := chat.NewAssistantMessage(s.errorContent(err), nil, time.Time{})
		s.store.Append(msg)
		return Outcome{Route: RouteOneShot, Reply: &msg, Err: err}
	}

	msg := chat.NewAssistantMessage(reply.Response, reply.Data, reply.Timestamp)
	s.store.Append(msg)
	return Outcome{Route: RouteOneShot, Reply: &msg}
}

func (s *Selector) errorContent(err error) string {
	if s.backend == "" {
		return fmt.Sprintf("Error: %v. Please make sure the backend server is running.", err)
	}
	return fmt.Sprintf("Error: %v. Please make sure the backend server is running at %s.", err, s.backend)
}

// HandleFrame routes one inbound frame. The oldest pending delivery gets
// it; frames nobody waits for are appended as server pushes unless they
// answer a delivery that already gave up.
func (s *Selector) HandleFrame(frame InboundFrame) {
	if frame.Role == chat.RoleUser {
		s.log.Debug().Msg("ignoring echoed user frame")
		return
	}

	s.mu.Lock()
	var waiter chan chat.Message
	switch {
	case len(s.waiters) > 0:
		waiter = s.waiters[0]
		s.waiters = s.waiters[1:]
	case s.abandoned > 0:
		s.abandoned--
		s.mu.Unlock()
		s.log.Warn().Msg("discarding late real-time reply")
		return
	}
	s.mu.Unlock()

	msg := frame.toMessage()
	s.store.Append(msg)
	if waiter != nil {
		waiter <- msg
	}
}

// Listen feeds inbound frames to HandleFrame until the channel closes or
// ctx is done. Pending real-time deliveries give up once Listen returns.
func (s *Selector) Listen(ctx context.Context) {
	defer s.drainOnce.Do(func() { close(s.drained) })
	if s.realtime == nil {
		return
	}
	frames := s.realtime.Frames()
	for {
		select {
		case frame, ok := <-frames:
			if !ok {
				return
			}
			s.HandleFrame(frame)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Selector) dropWaiter(waiter chan chat.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropWaiterLocked(waiter)
}

func (s *Selector) dropWaiterLocked(waiter chan chat.Message) bool {
	for i, w := range s.waiters {
		if w == waiter {
			s.waiters = append(s.waiters[:i], s.waiters[i+1:]...)
			return true
		}
	}
	return false
}
