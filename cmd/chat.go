package cmd

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/iksnae/weather-chat/internal"
	"github.com/iksnae/weather-chat/internal/config"
	"github.com/iksnae/weather-chat/internal/export"
	"github.com/iksnae/weather-chat/internal/transport"
	"github.com/iksnae/weather-chat/internal/ui"
	"github.com/spf13/cobra"
)

var chatExport string

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive weather chat",
	Long: `Open the interactive chat view.

Type a question and press Enter. While an answer is pending the input is
locked. Slash commands:
  /export <file>   Save the conversation (.json, .jsonl, .yaml, .md, .db)
  /help            Show key bindings
  /quit            Leave the chat (Esc and Ctrl+C work too)

Logs are written to the log file instead of the terminal while the view is
open.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.LogFile != "" {
			closer, err := internal.SetLogFile(cfg.LogFile)
			if err != nil {
				internal.PrintWarning(fmt.Sprintf("Cannot write log file %s: %v", cfg.LogFile, err))
			} else {
				defer func() {
					internal.SetLogOutput(os.Stderr)
					_ = closer.Close()
					if verbose {
						internal.PrintInfo(fmt.Sprintf("Session log: %s", cfg.LogFile))
					}
				}()
			}
		}

		return runChat(cmd.Context(), cfg, chatExport, tea.WithAltScreen())
	},
}

// runChat opens a session, runs the chat view until it quits and optionally
// exports the transcript afterwards
func runChat(ctx context.Context, cfg *config.Config, exportPath string, opts ...tea.ProgramOption) error {
	bridge := &ui.Bridge{}
	session := transport.Open(ctx, cfg, transport.WithSessionStateHandler(bridge.OnState))
	defer func() { _ = session.Close() }()
	session.Store().OnAppend(bridge.OnAppend)

	program := tea.NewProgram(ui.New(ctx, session), opts...)
	bridge.Attach(program)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("chat view failed: %w", err)
	}

	if exportPath == "" {
		return nil
	}
	format, err := export.WriteFile(session.Store().Snapshot(), exportPath)
	if err != nil {
		return err
	}
	internal.PrintSuccess(fmt.Sprintf("Exported conversation to %s (%s)", exportPath, format))
	return nil
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVar(&chatExport, "export", "", "Write the conversation to this file on exit (format from extension)")
}
