// Package ui is the interactive chat view.
package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/weather-chat/internal"
	"github.com/iksnae/weather-chat/internal/chat"
	"github.com/iksnae/weather-chat/internal/export"
	"github.com/iksnae/weather-chat/internal/render"
	"github.com/iksnae/weather-chat/internal/transport"
)

const helpText = "Enter sends • /export <file.json|jsonl|yaml|md|db> • /help • /quit • PgUp/PgDn scroll • Esc quits"

// Conversation is what the view needs from a chat session
type Conversation interface {
	Deliver(ctx context.Context, text string) transport.Outcome
	Store() *chat.Store
	State() transport.ConnectionState
}

type deliveredMsg struct {
	outcome transport.Outcome
}

type exportedMsg struct {
	path   string
	format string
	err    error
}

var noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Italic(true)

// Model is the Bubble Tea model of the chat view
type Model struct {
	ctx  context.Context
	conv Conversation

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	state   transport.ConnectionState
	loading bool
	notice  string
	width   int
	height  int
	ready   bool
}

// New creates a chat view over conv. ctx bounds every delivery.
func New(ctx context.Context, conv Conversation) Model {
	in := textinput.New()
	in.Placeholder = "Ask about the weather in any city..."
	in.Prompt = "› "
	in.CharLimit = 500
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)

	vp := viewport.New(render.DefaultWidth, 10)
	vp.KeyMap = viewport.KeyMap{
		PageDown: key.NewBinding(key.WithKeys("pgdown")),
		PageUp:   key.NewBinding(key.WithKeys("pgup")),
		Up:       key.NewBinding(key.WithKeys("up")),
		Down:     key.NewBinding(key.WithKeys("down")),
	}

	return Model{
		ctx:      ctx,
		conv:     conv,
		viewport: vp,
		input:    in,
		spinner:  sp,
		state:    conv.State(),
		notice:   helpText,
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Loading reports whether a delivery is pending
func (m Model) Loading() bool {
	return m.loading
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		m.refresh()
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		case tea.KeyPgUp, tea.KeyPgDown, tea.KeyUp, tea.KeyDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case StoreUpdatedMsg:
		m.state = m.conv.State()
		m.refresh()
		return m, nil

	case StateChangedMsg:
		m.state = msg.State
		return m, nil

	case deliveredMsg:
		m.loading = false
		m.state = m.conv.State()
		if msg.outcome.Err != nil {
			internal.LogWarn("Delivery via %s failed: %v", msg.outcome.Route, msg.outcome.Err)
			m.notice = "The last message could not be delivered."
		} else {
			m.notice = helpText
		}
		m.refresh()
		return m, nil

	case exportedMsg:
		if msg.err != nil {
			m.notice = fmt.Sprintf("Export failed: %v", msg.err)
		} else {
			m.notice = fmt.Sprintf("Exported conversation to %s (%s)", msg.path, msg.format)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit handles Enter. Blank input is ignored, and so is a message typed
// while a delivery is pending. Slash commands always run.
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	if strings.HasPrefix(text, "/") {
		m.input.Reset()
		return m.command(text)
	}
	if m.loading {
		return m, nil
	}
	m.input.Reset()

	m.loading = true
	m.notice = ""
	return m, tea.Batch(m.spinner.Tick, m.deliver(text))
}

func (m Model) deliver(text string) tea.Cmd {
	ctx, conv := m.ctx, m.conv
	return func() tea.Msg {
		return deliveredMsg{outcome: conv.Deliver(ctx, text)}
	}
}

func (m Model) command(text string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(text)
	switch fields[0] {
	case "/quit", "/exit":
		return m, tea.Quit
	case "/help":
		m.notice = helpText
		return m, nil
	case "/export":
		if len(fields) < 2 {
			m.notice = "Usage: /export <file.json|jsonl|yaml|md|db>"
			return m, nil
		}
		return m, exportCmd(m.conv.Store().Snapshot(), fields[1])
	default:
		m.notice = fmt.Sprintf("Unknown command %s. Type /help for help.", fields[0])
		return m, nil
	}
}

func exportCmd(transcript *chat.Transcript, path string) tea.Cmd {
	return func() tea.Msg {
		format, err := export.WriteFile(transcript, path)
		if err != nil {
			internal.LogError("Export to %s failed: %v", path, err)
		}
		return exportedMsg{path: path, format: format, err: err}
	}
}

func (m *Model) resize() {
	headerHeight := lipgloss.Height(m.header())
	footerHeight := 2
	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-headerHeight-footerHeight-1, 1)
	m.input.Width = max(m.width-lipgloss.Width(m.input.Prompt)-1, 10)
}

// refresh re-renders the transcript and keeps the newest message in view
func (m *Model) refresh() {
	width := m.width
	if width <= 0 {
		width = render.DefaultWidth
	}
	m.viewport.SetContent(render.Transcript(m.conv.Store().Messages(), width))
	m.viewport.GotoBottom()
}

func (m Model) header() string {
	return render.Title("Weather Chat") + "  " + render.Status(m.state)
}

// View implements tea.Model
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	status := noticeStyle.Render(m.notice)
	if m.loading {
		status = m.spinner.View() + " " + noticeStyle.Render("Checking the weather...")
	}

	return strings.Join([]string{
		m.header(),
		m.viewport.View(),
		status,
		m.input.View(),
	}, "\n")
}
