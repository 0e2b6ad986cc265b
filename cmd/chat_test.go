package cmd

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/iksnae/weather-chat/internal/config"
	"github.com/iksnae/weather-chat/testutil"
)

func TestChatCommandFlags(t *testing.T) {
	chat, _, err := rootCmd.Find([]string{"chat"})
	if err != nil {
		t.Fatalf("chat command not found: %v", err)
	}
	if chat.Flag("export") == nil {
		t.Error("chat command should have --export flag")
	}
}

func TestRunChat_QuitAndExport(t *testing.T) {
	isolateConfig(t)
	backend := testutil.NewFakeBackend(t)
	cfg := config.Default()
	cfg.APIURL = backend.URL()
	cfg.WSURL = backend.WSURL()

	path := filepath.Join(t.TempDir(), "chat.jsonl")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := runChat(ctx, cfg, path,
		tea.WithContext(ctx),
		tea.WithInput(strings.NewReader("/quit\r")),
		tea.WithOutput(io.Discard),
		tea.WithoutSignalHandler(),
	)
	if err != nil {
		t.Fatalf("runChat() error = %v", err)
	}

	data := string(testutil.ReadFile(t, path))
	if strings.Count(data, "\n") != 1 {
		t.Errorf("export should hold only the welcome message, got:\n%s", data)
	}
	if !strings.Contains(data, `"role":"assistant"`) {
		t.Errorf("export should contain the welcome message, got:\n%s", data)
	}
}
