package cmd

import (
	"fmt"
	"os"

	"github.com/iksnae/weather-chat/internal"
	"github.com/iksnae/weather-chat/internal/config"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	apiURL     string
	wsURL      string
	logFile    string
	version    string = "dev"
	commit     string = "unknown"
	date       string = "unknown"

	// cfg is resolved before any subcommand runs
	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "weather-chat",
	Short: "Chat with a weather assistant from your terminal",
	Long: `A terminal client for a conversational weather assistant.

Messages go over a WebSocket when the backend offers one and fall back to
a plain HTTP request when it does not. Replies can carry current weather
data, which is shown as a card next to the answer.

Quick Start:
  weather-chat chat                                   # Interactive chat
  weather-chat ask "What's the weather in London?"   # One question, then exit
  weather-chat healthcheck                            # Check the backend

Configuration is read from ~/.config/weather-chat/config.yaml, a .env file,
WEATHER_CHAT_* environment variables and flags, in that order.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		internal.SetVerbose(verbose)

		loaded, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if !verbose {
			internal.SetLogLevel(internal.ParseLogLevel(loaded.LogLevel))
		}
		cfg = loaded
		internal.LogDebug("Using api url %s, websocket url %s", cfg.APIURL, cfg.WSURL)
		return nil
	},
}

// loadConfig resolves configuration and applies flags given on the command line
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	loaded, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("api-url") {
		loaded.APIURL = apiURL
	}
	if flags.Changed("ws-url") {
		loaded.WSURL = wsURL
	}
	if flags.Changed("log-file") {
		loaded.LogFile = logFile
	}
	if err := loaded.Validate(); err != nil {
		return nil, err
	}
	return loaded, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default is $XDG_CONFIG_HOME/weather-chat/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend HTTP base URL (default "+config.DefaultAPIURL+")")
	rootCmd.PersistentFlags().StringVar(&wsURL, "ws-url", "", "Backend WebSocket URL (default "+config.DefaultWSURL+")")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log file used by the interactive chat")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
