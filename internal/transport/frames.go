package transport

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/iksnae/weather-chat/internal/chat"
)

// ConnectionState reflects the health of the real-time channel
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnected
	StateFallback
)

func (s ConnectionState) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateFallback:
		return "fallback"
	default:
		return "disconnected"
	}
}

// OutboundFrame is what the client writes to the real-time channel
type OutboundFrame struct {
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// InboundFrame is what the server writes to the real-time channel
type InboundFrame struct {
	Role      chat.Role             `json:"role"`
	Content   string                `json:"content"`
	Data      *chat.WeatherSnapshot `json:"data"`
	Timestamp wireTime              `json:"timestamp"`
}

// Reply is a parsed one-shot response
type Reply struct {
	Response  string
	Data      *chat.WeatherSnapshot
	Timestamp time.Time
}

type chatRequest struct {
	Message string         `json:"message"`
	History []chat.Message `json:"history"`
}

type chatResponse struct {
	Response  *string               `json:"response"`
	Data      *chat.WeatherSnapshot `json:"data,omitempty"`
	Timestamp wireTime              `json:"timestamp"`
}

var wireTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// wireTime accepts ISO 8601 timestamps with or without a zone offset.
// Timestamps without a zone are read as UTC; unparseable values decode to
// the zero time.
type wireTime struct {
	time.Time
}

func (t *wireTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// null or a non-string value
		t.Time = time.Time{}
		return nil
	}
	s = strings.TrimSpace(s)
	for _, layout := range wireTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	t.Time = time.Time{}
	return nil
}

func (t wireTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

// toMessage converts an inbound frame into a transcript message
func (f InboundFrame) toMessage() chat.Message {
	return chat.NewAssistantMessage(f.Content, f.Data, f.Timestamp.Time)
}
