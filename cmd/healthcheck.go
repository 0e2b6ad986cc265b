package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/weather-chat/internal/config"
	"github.com/iksnae/weather-chat/internal/transport"
	"github.com/spf13/cobra"
)

const probeTimeout = 10 * time.Second

var (
	healthcheckVerbose bool
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check that the weather backend can be reached",
	Long: `Check the health of the weather backend by verifying:
  • Configuration resolution
  • The WebSocket handshake (real-time channel)
  • The HTTP base URL (one-shot fallback)

Chat still works without the WebSocket as long as the HTTP endpoint answers.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHealthcheck(cmd.Context(), cfg, cmd.OutOrStdout())
	},
}

func runHealthcheck(ctx context.Context, cfg *config.Config, w io.Writer) error {
	line := func(a ...interface{}) { _, _ = fmt.Fprintln(w, a...) }
	linef := func(format string, a ...interface{}) { _, _ = fmt.Fprintf(w, format, a...) }

	line(sectionStyle.Render("🔍 Weather Chat Health Check"))
	line()

	// Step 1: Configuration
	line(infoStyle.Render("Step 1: Resolving configuration..."))
	line(successStyle.Render("✅ Configuration loaded"))
	if healthcheckVerbose {
		linef("   Config file: %s\n", resolvedConfigPath())
		linef("   API URL: %s\n", cfg.APIURL)
		linef("   WebSocket URL: %s\n", cfg.WSURL)
		linef("   Reply timeout: %s\n", cfg.ReplyTimeout)
		linef("   Request timeout: %s\n", cfg.RequestTimeout)
	}
	line()

	// Step 2: WebSocket handshake
	line(infoStyle.Render("Step 2: Opening the real-time channel..."))
	dialCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	channel := transport.DialRealtime(dialCtx, cfg.WSURL)
	cancel()
	realtimeOK := channel.State() == transport.StateConnected
	_ = channel.Close()
	if realtimeOK {
		line(successStyle.Render("✅ WebSocket handshake succeeded"))
	} else {
		line(warningStyle.Render("⚠️  WebSocket not available, messages will use HTTP"))
	}
	if healthcheckVerbose {
		linef("   Address: %s\n", cfg.WSURL)
	}
	line()

	// Step 3: HTTP base URL
	line(infoStyle.Render("Step 3: Probing the HTTP endpoint..."))
	status, err := probeHTTP(ctx, cfg.APIURL)
	httpOK := err == nil
	if httpOK {
		line(successStyle.Render(fmt.Sprintf("✅ Backend answered with status %d", status)))
	} else {
		line(errorStyle.Render("❌ Backend unreachable:"), err)
	}
	if healthcheckVerbose {
		linef("   Chat endpoint: %s\n", cfg.ChatEndpoint())
	}
	line()

	// Summary
	line(sectionStyle.Render("📊 Summary"))
	line()

	switch {
	case httpOK && realtimeOK:
		line(successStyle.Render("✅ Health check passed!"))
		line(successStyle.Render("   • Real-time: connected"))
		line(successStyle.Render("   • HTTP: reachable"))
		return nil
	case httpOK:
		line(warningStyle.Render("⚠️  Health check passed with warnings"))
		line("   • Real-time: unavailable (fallback mode)")
		line("   • HTTP: reachable")
		return nil
	default:
		line(errorStyle.Render("❌ Health check failed"))
		linef("   • Make sure the backend server is running at %s\n", cfg.APIURL)
		return fmt.Errorf("health check failed: backend unreachable at %s", cfg.APIURL)
	}
}

// probeHTTP reports the status of a GET on the base URL. Any HTTP response
// counts as reachable.
func probeHTTP(ctx context.Context, baseURL string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return 0, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, err
	}
	_ = resp.Body.Close()
	return resp.StatusCode, nil
}

func resolvedConfigPath() string {
	if configPath != "" {
		return configPath
	}
	if p := config.DefaultPath(); p != "" {
		return p + " (if present)"
	}
	return "(none)"
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVarP(&healthcheckVerbose, "verbose", "v", false, "Show detailed diagnostic information")
}
