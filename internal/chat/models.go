package chat

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies who authored a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// WeatherSnapshot is the structured weather record a backend may attach to a
// reply. It is only ever displayed, never interpreted.
type WeatherSnapshot struct {
	City        string  `json:"city" yaml:"city"`
	Country     string  `json:"country" yaml:"country"`
	Temperature float64 `json:"temperature" yaml:"temperature"`
	FeelsLike   float64 `json:"feels_like" yaml:"feels_like"`
	Condition   string  `json:"condition" yaml:"condition"`
	Description string  `json:"description" yaml:"description"`
	Humidity    float64 `json:"humidity" yaml:"humidity"`
	WindSpeed   float64 `json:"wind_speed" yaml:"wind_speed"`
	Pressure    float64 `json:"pressure" yaml:"pressure"`
	Visibility  float64 `json:"visibility" yaml:"visibility"`
	Timestamp   string  `json:"timestamp" yaml:"timestamp"`
}

// Message is one entry of the transcript. Messages are never modified after
// they are appended to a Store.
type Message struct {
	ID          string           `json:"-" yaml:"id"`
	Role        Role             `json:"role" yaml:"role"`
	Content     string           `json:"content" yaml:"content"`
	WeatherData *WeatherSnapshot `json:"weatherData,omitempty" yaml:"weather_data,omitempty"`
	Timestamp   time.Time        `json:"timestamp" yaml:"timestamp"`
}

// NewUserMessage creates a user message stamped with the current time
func NewUserMessage(content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

// NewAssistantMessage creates an assistant message. A zero timestamp is
// replaced with the current time.
func NewAssistantMessage(content string, data *WeatherSnapshot, ts time.Time) Message {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return Message{
		ID:          uuid.NewString(),
		Role:        RoleAssistant,
		Content:     content,
		WeatherData: data,
		Timestamp:   ts,
	}
}

// Transcript is a read-only snapshot of a conversation
type Transcript struct {
	ID        string    `json:"id" yaml:"id"`
	StartedAt time.Time `json:"started_at" yaml:"started_at"`
	Messages  []Message `json:"messages" yaml:"messages"`
}

// CountByRole returns how many messages in the transcript have the given role
func (t *Transcript) CountByRole(role Role) int {
	n := 0
	for _, msg := range t.Messages {
		if msg.Role == role {
			n++
		}
	}
	return n
}
