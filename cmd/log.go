package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/salescope-dev/salescope/internal/config"
	"github.com/salescope-dev/salescope/internal/output"
	"github.com/salescope-dev/salescope/internal/qlog"
	"github.com/salescope-dev/salescope/internal/tail"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View, follow, or export the query log",
	Long: `Display the recorded query log: every question asked through the
pipeline together with its response and timestamp.

Examples:
  salescope log
  salescope log --lines 10
  salescope log --follow
  salescope log --output query_log_export.txt
  salescope log --format json`,
	Args: cobra.NoArgs,
	RunE: runLog,
}

func init() {
	logCmd.Flags().BoolP("follow", "F", false, "follow the log for new entries")
	logCmd.Flags().IntP("lines", "n", 0, "show only the last n entries (0 = all)")
	logCmd.Flags().StringP("output", "o", "", "export the rendered log to a file")

	rootCmd.AddCommand(logCmd)
}

func runLog(cmd *cobra.Command, args []string) error {
	follow, _ := cmd.Flags().GetBool("follow")
	lines, _ := cmd.Flags().GetInt("lines")
	outputPath, _ := cmd.Flags().GetString("output")

	format := output.ParseFormat(viper.GetString("format"))

	cfg := &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	logStore := qlog.New(cfg.QueryLog.Path)

	if outputPath != "" {
		text, err := logStore.Render()
		if err != nil {
			return fmt.Errorf("failed to render query log: %w", err)
		}
		if err := os.WriteFile(outputPath, []byte(text), 0o644); err != nil {
			return fmt.Errorf("failed to export query log: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Query log exported to %s\n", outputPath)
		return nil
	}

	colorize := output.ShouldColorize(output.ColorAuto, cmd.OutOrStdout())

	if follow {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		tailer := tail.New(tail.Options{
			FilePath: cfg.QueryLog.Path,
			Lines:    lines,
			Follow:   true,
			OutputFunc: func(e qlog.Entry) error {
				fmt.Fprint(cmd.OutOrStdout(), formatLogEntry(e, colorize))
				return nil
			},
		})
		return tailer.Run(ctx)
	}

	entries, err := logStore.ReadAll()
	if err != nil {
		if errors.Is(err, qlog.ErrNoLogs) {
			fmt.Fprintln(cmd.OutOrStdout(), qlog.NoLogs)
			return nil
		}
		return fmt.Errorf("failed to read query log: %w", err)
	}

	if lines > 0 && len(entries) > lines {
		entries = entries[len(entries)-lines:]
	}

	if format == output.FormatJSON {
		writer := output.New(cmd.OutOrStdout(), output.FormatJSON)
		return writer.WriteJSON(entries)
	}

	for _, e := range entries {
		fmt.Fprint(cmd.OutOrStdout(), formatLogEntry(e, colorize))
	}
	return nil
}

// formatLogEntry renders one log entry the way the exported log reads,
// with optional color for interactive viewing.
func formatLogEntry(e qlog.Entry, colorize bool) string {
	var sb strings.Builder
	sb.WriteString(output.Gray(e.Timestamp.Format(qlog.TimeLayout), colorize))
	sb.WriteString(" | Query: ")
	sb.WriteString(output.Bold(e.Query, colorize))
	sb.WriteString("\nResponse: ")
	sb.WriteString(e.Response)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 50))
	sb.WriteString("\n")
	return sb.String()
}
