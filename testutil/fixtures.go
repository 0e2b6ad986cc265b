package testutil

import (
	"encoding/json"
	"time"

	"github.com/iksnae/weather-chat/internal/chat"
)

// LondonReplyJSON is a complete one-shot reply for "What's the weather in London?"
const LondonReplyJSON = `{
  "response": "It's 15°C and cloudy in London.",
  "data": {
    "city": "London",
    "country": "GB",
    "temperature": 15,
    "feels_like": 13.5,
    "condition": "Clouds",
    "description": "overcast clouds",
    "humidity": 72,
    "wind_speed": 4.1,
    "pressure": 1012,
    "visibility": 10000,
    "timestamp": "2024-05-01T12:00:00"
  },
  "timestamp": "2024-05-01T12:00:00"
}`

// LondonReplyText is the response text carried by LondonReplyJSON
const LondonReplyText = "It's 15°C and cloudy in London."

// LondonTimestamp is the timestamp carried by LondonReplyJSON
var LondonTimestamp = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// LondonWeather returns the snapshot carried by LondonReplyJSON
func LondonWeather() *chat.WeatherSnapshot {
	return &chat.WeatherSnapshot{
		City:        "London",
		Country:     "GB",
		Temperature: 15,
		FeelsLike:   13.5,
		Condition:   "Clouds",
		Description: "overcast clouds",
		Humidity:    72,
		WindSpeed:   4.1,
		Pressure:    1012,
		Visibility:  10000,
		Timestamp:   "2024-05-01T12:00:00",
	}
}

// AssistantFrame encodes a server-to-client real-time frame
func AssistantFrame(content string, data *chat.WeatherSnapshot) []byte {
	frame := map[string]interface{}{
		"role":      "assistant",
		"content":   content,
		"timestamp": "2024-05-01T12:00:00",
	}
	if data != nil {
		frame["data"] = data
	}
	out, _ := json.Marshal(frame)
	return out
}

// EchoWeatherReply answers every frame with the London weather
func EchoWeatherReply(ClientFrame) [][]byte {
	return [][]byte{AssistantFrame(LondonReplyText, LondonWeather())}
}

// SampleTranscript builds a short conversation for rendering and export tests
func SampleTranscript() *chat.Transcript {
	started := time.Date(2024, 5, 1, 11, 59, 0, 0, time.UTC)
	return &chat.Transcript{
		ID:        "3f2a6c1e-8d4b-4a57-9b1e-0c2d5e6f7a80",
		StartedAt: started,
		Messages: []chat.Message{
			{ID: "m1", Role: chat.RoleAssistant, Content: chat.WelcomeMessage, Timestamp: started},
			{ID: "m2", Role: chat.RoleUser, Content: "What's the weather in London?", Timestamp: started.Add(30 * time.Second)},
			{ID: "m3", Role: chat.RoleAssistant, Content: LondonReplyText, WeatherData: LondonWeather(), Timestamp: LondonTimestamp},
		},
	}
}
