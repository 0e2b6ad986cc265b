package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/iksnae/weather-chat/internal/chat"
	"github.com/iksnae/weather-chat/testutil"
	"gopkg.in/yaml.v3"
)

func TestYAMLExporter_Export(t *testing.T) {
	tests := []struct {
		name       string
		transcript *chat.Transcript
	}{
		{name: "conversation", transcript: testutil.SampleTranscript()},
		{name: "empty transcript", transcript: &chat.Transcript{ID: "empty"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := (&YAMLExporter{}).Export(tt.transcript, &buf); err != nil {
				t.Fatalf("YAMLExporter.Export() error = %v", err)
			}

			var decoded chat.Transcript
			if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
				t.Fatalf("Output is not valid YAML: %v\nOutput: %s", err, buf.String())
			}
			if decoded.ID != tt.transcript.ID {
				t.Errorf("ID = %q, want %q", decoded.ID, tt.transcript.ID)
			}
			if len(decoded.Messages) != len(tt.transcript.Messages) {
				t.Errorf("got %d messages, want %d", len(decoded.Messages), len(tt.transcript.Messages))
			}
		})
	}
}

func TestYAMLExporter_WeatherFields(t *testing.T) {
	var buf bytes.Buffer
	if err := (&YAMLExporter{}).Export(testutil.SampleTranscript(), &buf); err != nil {
		t.Fatalf("YAMLExporter.Export() error = %v", err)
	}
	for _, want := range []string{"weather_data:", "city: London", "feels_like: 13.5", "id: m3"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("Output should contain %q", want)
		}
	}
}

func TestYAMLExporter_Extension(t *testing.T) {
	if got := (&YAMLExporter{}).Extension(); got != "yaml" {
		t.Errorf("YAMLExporter.Extension() = %v, want yaml", got)
	}
}
