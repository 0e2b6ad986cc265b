// Package render turns conversation messages into styled terminal text.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/weather-chat/internal/chat"
	"github.com/iksnae/weather-chat/internal/transport"
)

// DefaultWidth is used when the terminal width is unknown
const DefaultWidth = 80

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			Padding(0, 1)

	userLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true).
			Padding(0, 1)

	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("135")).
				Bold(true).
				Padding(0, 1)

	contentStyle = lipgloss.NewStyle().
			Padding(0, 2)

	errorContentStyle = contentStyle.
				Foreground(lipgloss.Color("196"))

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1).
			MarginLeft(2)

	cardTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229"))

	cardLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Width(12)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Italic(true)

	statusStyles = map[transport.ConnectionState]lipgloss.Style{
		transport.StateConnected:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		transport.StateFallback:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		transport.StateDisconnected: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
)

// Title renders the application header
func Title(text string) string {
	return titleStyle.Render(fmt.Sprintf("🌤  %s", text))
}

// Status renders the connection indicator shown in the header
func Status(state transport.ConnectionState) string {
	var label string
	switch state {
	case transport.StateConnected:
		label = "● live"
	case transport.StateFallback:
		label = "● fallback (HTTP)"
	default:
		label = "○ connecting"
	}
	return statusStyles[state].Render(label)
}

// Hint renders muted helper text
func Hint(text string) string {
	return hintStyle.Render(text)
}

// Transcript renders every message, separated by blank lines
func Transcript(msgs []chat.Message, width int) string {
	parts := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		parts = append(parts, Message(msg, width))
	}
	return strings.Join(parts, "\n\n")
}

// Message renders one message with its role label, time and weather card
func Message(msg chat.Message, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}

	var label string
	switch msg.Role {
	case chat.RoleUser:
		label = userLabelStyle.Render("👤 You")
	default:
		label = assistantLabelStyle.Render("🤖 Assistant")
	}
	header := label
	if !msg.Timestamp.IsZero() {
		header += " " + timestampStyle.Render(msg.Timestamp.Local().Format(time.Kitchen))
	}

	style := contentStyle
	if msg.Role == chat.RoleAssistant && strings.HasPrefix(msg.Content, "Error:") {
		style = errorContentStyle
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	content := strings.TrimSpace(msg.Content)
	if content == "" {
		b.WriteString(style.Foreground(lipgloss.Color("240")).Render("(empty message)"))
	} else {
		b.WriteString(style.Render(WrapText(content, width-4)))
	}
	if msg.WeatherData != nil {
		b.WriteString("\n")
		b.WriteString(Weather(msg.WeatherData))
	}
	return b.String()
}

// Weather renders a snapshot as a bordered card
func Weather(w *chat.WeatherSnapshot) string {
	if w == nil {
		return ""
	}

	title := w.City
	if w.Country != "" {
		title = fmt.Sprintf("%s, %s", w.City, w.Country)
	}
	condition := w.Condition
	if w.Description != "" {
		condition = fmt.Sprintf("%s (%s)", w.Condition, w.Description)
	}

	rows := []string{
		cardTitleStyle.Render(title),
		row("Temperature", fmt.Sprintf("%s°C, feels like %s°C", number(w.Temperature), number(w.FeelsLike))),
		row("Condition", condition),
		row("Humidity", fmt.Sprintf("%s%%", number(w.Humidity))),
		row("Wind", fmt.Sprintf("%s m/s", number(w.WindSpeed))),
		row("Pressure", fmt.Sprintf("%s hPa", number(w.Pressure))),
		row("Visibility", fmt.Sprintf("%s m", number(w.Visibility))),
	}
	if w.Timestamp != "" {
		rows = append(rows, row("Observed", w.Timestamp))
	}
	return cardStyle.Render(strings.Join(rows, "\n"))
}

func row(label, value string) string {
	return cardLabelStyle.Render(label) + value
}

// number drops the fraction of whole values so 15.0 prints as 15
func number(v float64) string {
	return fmt.Sprintf("%g", v)
}

// WrapText wraps each line of text at word boundaries to at most width
// columns. Words longer than width are left intact.
func WrapText(text string, width int) string {
	if width <= 0 {
		return text
	}
	lines := strings.Split(text, "\n")
	var wrapped []string

	for _, line := range lines {
		if lipgloss.Width(line) <= width {
			wrapped = append(wrapped, line)
			continue
		}

		current := ""
		for _, word := range strings.Fields(line) {
			switch {
			case current == "":
				current = word
			case lipgloss.Width(current)+lipgloss.Width(word)+1 > width:
				wrapped = append(wrapped, current)
				current = word
			default:
				current += " " + word
			}
		}
		if current != "" {
			wrapped = append(wrapped, current)
		}
	}

	return strings.Join(wrapped, "\n")
}
