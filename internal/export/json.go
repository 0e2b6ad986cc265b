package export

import (
	"encoding/json"
	"io"
	"time"

	"github.com/iksnae/weather-chat/internal/chat"
)

// jsonMessage keeps the message ID, which the wire format leaves out
type jsonMessage struct {
	ID string `json:"id"`
	chat.Message
}

type jsonTranscript struct {
	ID        string        `json:"id"`
	StartedAt time.Time     `json:"started_at"`
	Messages  []jsonMessage `json:"messages"`
}

// JSONExporter exports transcripts in JSON format (pretty-printed)
type JSONExporter struct{}

// Export exports a transcript to JSON format
func (e *JSONExporter) Export(transcript *chat.Transcript, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	out := jsonTranscript{
		ID:        transcript.ID,
		StartedAt: transcript.StartedAt,
		Messages:  make([]jsonMessage, 0, len(transcript.Messages)),
	}
	for _, msg := range transcript.Messages {
		out.Messages = append(out.Messages, jsonMessage{ID: msg.ID, Message: msg})
	}
	return enc.Encode(out)
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}
