package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/iksnae/weather-chat/internal/chat"
	"github.com/iksnae/weather-chat/internal/transport"
)

// StoreUpdatedMsg tells the model that the conversation store changed
type StoreUpdatedMsg struct{}

// StateChangedMsg carries a real-time ConnectionState transition
type StateChangedMsg struct {
	State transport.ConnectionState
}

// Bridge forwards session events into a running program. Events raised
// before Attach are dropped; the model reads current state on start.
type Bridge struct {
	mu      sync.Mutex
	program *tea.Program
}

// Attach starts forwarding events to p
func (b *Bridge) Attach(p *tea.Program) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.program = p
}

// OnState is a ConnectionState handler for transport.WithSessionStateHandler
func (b *Bridge) OnState(state transport.ConnectionState) {
	b.send(StateChangedMsg{State: state})
}

// OnAppend is a chat.Store listener
func (b *Bridge) OnAppend(chat.Message) {
	b.send(StoreUpdatedMsg{})
}

func (b *Bridge) send(msg tea.Msg) {
	b.mu.Lock()
	p := b.program
	b.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}
