package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// WelcomeMessage seeds every new conversation
const WelcomeMessage = "Hello! I'm your weather assistant. Ask me about the weather in any city, " +
	"for example \"What's the weather in London?\""

// Store holds the ordered, append-only transcript of one chat view
type Store struct {
	mu        sync.RWMutex
	id        string
	startedAt time.Time
	messages  []Message
	listeners []func(Message)
}

// NewStore creates a store seeded with the assistant welcome message
func NewStore() *Store {
	s := &Store{
		id:        uuid.NewString(),
		startedAt: time.Now().UTC(),
	}
	s.messages = append(s.messages, NewAssistantMessage(WelcomeMessage, nil, s.startedAt))
	return s
}

// Append adds msg to the end of the transcript and notifies listeners.
// Listeners run on the caller's goroutine after the lock is released.
func (s *Store) Append(msg Message) {
	s.AppendWithHistory(msg)
}

// AppendWithHistory appends msg and returns the transcript as it was just
// before the append, so callers can send the prior history along with it.
func (s *Store) AppendWithHistory(msg Message) []Message {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	s.mu.Lock()
	prior := make([]Message, len(s.messages))
	copy(prior, s.messages)
	s.messages = append(s.messages, msg)
	listeners := make([]func(Message), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(msg)
	}
	return prior
}

// OnAppend registers fn to be called after every Append
func (s *Store) OnAppend(fn func(Message)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Messages returns a copy of the full ordered transcript
func (s *Store) Messages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of messages in the transcript
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Snapshot returns the transcript for export
func (s *Store) Snapshot() *Transcript {
	return &Transcript{
		ID:        s.id,
		StartedAt: s.startedAt,
		Messages:  s.Messages(),
	}
}
