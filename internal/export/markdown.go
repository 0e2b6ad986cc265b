package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iksnae/weather-chat/internal/chat"
)

// MarkdownExporter exports transcripts in Markdown format
type MarkdownExporter struct{}

// Export exports a transcript to Markdown format
func (e *MarkdownExporter) Export(transcript *chat.Transcript, w io.Writer) error {
	_, _ = fmt.Fprintf(w, "# Weather chat %s\n\n", transcript.ID)
	if !transcript.StartedAt.IsZero() {
		_, _ = fmt.Fprintf(w, "**Started:** %s  \n", transcript.StartedAt.Format(time.RFC3339))
	}
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(transcript.Messages))

	_, _ = fmt.Fprintf(w, "---\n\n")
	_, _ = fmt.Fprintf(w, "## Messages\n\n")

	for i, msg := range transcript.Messages {
		timestamp := ""
		if !msg.Timestamp.IsZero() {
			timestamp = fmt.Sprintf(" (%s)", msg.Timestamp.Format(time.RFC3339))
		}

		_, _ = fmt.Fprintf(w, "**%s:**%s\n\n%s\n\n", msg.Role, timestamp, escapeMarkdown(msg.Content))

		if msg.WeatherData != nil {
			writeWeatherTable(w, msg.WeatherData)
		}

		if i < len(transcript.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

func writeWeatherTable(w io.Writer, data *chat.WeatherSnapshot) {
	rows := [][2]string{
		{"City", data.City},
		{"Country", data.Country},
		{"Temperature", fmt.Sprintf("%g °C", data.Temperature)},
		{"Feels like", fmt.Sprintf("%g °C", data.FeelsLike)},
		{"Condition", data.Condition},
		{"Description", data.Description},
		{"Humidity", fmt.Sprintf("%g %%", data.Humidity)},
		{"Wind speed", fmt.Sprintf("%g m/s", data.WindSpeed)},
		{"Pressure", fmt.Sprintf("%g hPa", data.Pressure)},
		{"Visibility", fmt.Sprintf("%g m", data.Visibility)},
		{"Observed", data.Timestamp},
	}

	_, _ = fmt.Fprintf(w, "| Field | Value |\n|---|---|\n")
	for _, row := range rows {
		_, _ = fmt.Fprintf(w, "| %s | %s |\n", row[0], strings.ReplaceAll(row[1], "|", "\\|"))
	}
	_, _ = fmt.Fprintln(w)
}

// escapeMarkdown escapes markdown emphasis outside fenced code blocks
func escapeMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "```"):
			inCodeBlock = !inCodeBlock
		case !inCodeBlock:
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
		}
		result = append(result, line)
	}

	return strings.Join(result, "\n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
