package cmd

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// isolateConfig keeps tests away from the user's config file and environment
func isolateConfig(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	for _, env := range os.Environ() {
		if name, _, ok := strings.Cut(env, "="); ok && strings.HasPrefix(name, "WEATHER_CHAT_") {
			t.Setenv(name, "")
			_ = os.Unsetenv(name)
		}
	}
}

// resetFlags restores every flag to its default so runs do not leak state
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// executeCommand runs the root command with args and captures its output
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	isolateConfig(t)
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	var stdout, stderr bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)

	err := rootCmd.Execute()
	return stdout.String() + stderr.String(), err
}

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{
			name: "version flag",
			args: []string{"--version"},
			want: "dev (commit: unknown",
		},
		{
			name: "help flag",
			args: []string{"--help"},
			want: "weather-chat",
		},
		{
			name:    "unknown command",
			args:    []string{"nonexistent-command"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := executeCommand(t, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("rootCmd.Execute() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.want != "" && !strings.Contains(out, tt.want) {
				t.Errorf("output %q should contain %q", out, tt.want)
			}
		})
	}
}

func TestRootCommand_InvalidURLFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "api url", args: []string{"ask", "--api-url", "ftp://example.com", "hi"}, want: "invalid api url"},
		{name: "ws url", args: []string{"ask", "--ws-url", "http://example.com/ws", "hi"}, want: "invalid websocket url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCommand(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestRootCommand_MissingConfigFile(t *testing.T) {
	_, err := executeCommand(t, "healthcheck", "--config", "/nonexistent/weather-chat.yaml")
	if err == nil || !strings.Contains(err.Error(), "failed to load configuration") {
		t.Errorf("error = %v, want a configuration error", err)
	}
}

func TestRootCommand_ConfigFileAndFlagPrecedence(t *testing.T) {
	isolateConfig(t)
	path := t.TempDir() + "/config.yaml"
	data := "api_url: http://file.example:9000\nws_url: ws://file.example:9000/ws\nreply_timeout: 5s\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })
	if err := rootCmd.ParseFlags([]string{"--config", path, "--api-url", "http://flag.example:8000"}); err != nil {
		t.Fatal(err)
	}

	loaded, err := loadConfig(rootCmd)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if loaded.APIURL != "http://flag.example:8000" {
		t.Errorf("APIURL = %q, flag should win over the file", loaded.APIURL)
	}
	if loaded.WSURL != "ws://file.example:9000/ws" {
		t.Errorf("WSURL = %q, want the file value", loaded.WSURL)
	}
	if loaded.ReplyTimeout.String() != "5s" {
		t.Errorf("ReplyTimeout = %s, want 5s", loaded.ReplyTimeout)
	}
}
