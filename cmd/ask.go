package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/weather-chat/internal"
	"github.com/iksnae/weather-chat/internal/chat"
	"github.com/iksnae/weather-chat/internal/config"
	"github.com/iksnae/weather-chat/internal/export"
	"github.com/iksnae/weather-chat/internal/render"
	"github.com/iksnae/weather-chat/internal/transport"
	"github.com/spf13/cobra"
)

var askFormat string

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a single question and print the answer",
	Long: `Send one message to the weather assistant, print the conversation and exit.

The output format is text by default; json, jsonl, yaml, md and sqlite print
the whole transcript in that format. The exit status is non-zero when the
question could not be delivered.`,
	Example: `  weather-chat ask "What's the weather in London?"
  weather-chat ask --format json "Is it raining in Paris?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.TrimSpace(strings.Join(args, " "))
		if question == "" {
			return fmt.Errorf("question must not be empty")
		}
		return runAsk(cmd.Context(), cfg, question, askFormat, cmd.OutOrStdout())
	},
}

func runAsk(ctx context.Context, cfg *config.Config, question, format string, w io.Writer) error {
	var exporter export.Exporter
	if format != "text" {
		var err error
		if exporter, err = export.NewExporter(format); err != nil {
			return err
		}
	}

	var (
		session *transport.Session
		outcome transport.Outcome
	)
	err := internal.ShowProgressWithSteps(ctx, []internal.ProgressStep{
		{
			Message: "Connecting to the weather backend",
			Fn: func() error {
				session = transport.Open(ctx, cfg)
				return nil
			},
		},
		{
			Message: "Asking the weather assistant",
			Fn: func() error {
				outcome = session.Deliver(ctx, question)
				return outcome.Err
			},
		},
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		// a step may still be running; leave its session alone
		return ctxErr
	}
	defer func() { _ = session.Close() }()

	if err == nil && outcome.Route == transport.RouteOneShot {
		internal.PrintWarning("Real-time channel unavailable, answered over HTTP")
	}

	transcript := session.Store().Snapshot()
	if exporter != nil {
		if exportErr := exporter.Export(transcript, w); exportErr != nil {
			return &internal.ExportError{Format: format, Path: "stdout", Err: exportErr}
		}
	} else {
		printConversation(w, transcript)
	}

	if err != nil {
		return fmt.Errorf("could not get an answer: %w", err)
	}
	internal.LogDebug("Answered via %s", outcome.Route)
	return nil
}

// printConversation writes everything after the welcome message
func printConversation(w io.Writer, transcript *chat.Transcript) {
	msgs := transcript.Messages
	if len(msgs) > 0 && msgs[0].Content == chat.WelcomeMessage {
		msgs = msgs[1:]
	}
	_, _ = fmt.Fprintln(w, render.Transcript(msgs, render.DefaultWidth))
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askFormat, "format", "f", "text", "Output format (text, json, jsonl, yaml, md, sqlite)")
}
