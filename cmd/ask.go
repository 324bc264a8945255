package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/salescope-dev/salescope/internal/config"
	"github.com/salescope-dev/salescope/internal/dataset"
	"github.com/salescope-dev/salescope/internal/fallback"
	"github.com/salescope-dev/salescope/internal/llm"
	"github.com/salescope-dev/salescope/internal/output"
	"github.com/salescope-dev/salescope/internal/pipeline"
	"github.com/salescope-dev/salescope/internal/qlog"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a natural-language question about the sales data",
	Long: `Ask a natural-language question about the sales dataset.

Questions matching a known analytical intent are answered exactly from the
data. Anything else is forwarded to the configured LLM provider along with a
summary of the dataset. Each question and its response are appended to the
query log.

Examples:
  salescope ask "What were the total orders by year?"
  salescope ask "Top customers by sales"
  salescope ask "orders by month in 2003"
  salescope ask "sales by country" --no-log`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().Bool("no-log", false, "do not record this query in the query log")

	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := args[0]
	noLog, _ := cmd.Flags().GetBool("no-log")

	format := output.ParseFormat(viper.GetString("format"))
	logger := newLogger(viper.GetBool("verbose"))

	cfg := &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	store, err := dataset.Load(cfg.Dataset.Path)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	logger.Info("dataset loaded", "path", cfg.Dataset.Path, "rows", store.Len(), "skipped", store.Skipped())

	provider, err := llm.NewProvider(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create LLM provider: %w\n\nTroubleshooting:\n- For groq, set GROQ_API_KEY or llm.groq.api_key in ~/.salescope.yaml\n- For ollama, ensure it is running: ollama serve", err)
	}

	responder := fallback.New(provider, chatOptions(cfg), logger)

	opts := []pipeline.Option{}
	if noLog {
		opts = append(opts, pipeline.WithoutRecording())
	}
	pipe := pipeline.New(store, responder, qlog.New(cfg.QueryLog.Path), logger, opts...)

	answer := pipe.Answer(context.Background(), question)

	if format == output.FormatJSON {
		writer := output.New(cmd.OutOrStdout(), output.FormatJSON)
		return writer.WriteJSON(map[string]interface{}{
			"question": question,
			"answer":   answer,
			"metadata": map[string]string{
				"provider": cfg.LLM.Provider,
				"dataset":  cfg.Dataset.Path,
			},
		})
	}

	fmt.Fprintln(cmd.OutOrStdout(), answer)
	return nil
}

// chatOptions picks the model for the configured provider, the way the
// provider factory expects it.
func chatOptions(cfg *config.Config) llm.ChatOptions {
	opts := llm.ChatOptions{
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	}

	switch cfg.LLM.Provider {
	case "groq":
		opts.Model = cfg.LLM.Groq.Model
	case "openai":
		opts.Model = cfg.LLM.OpenAI.Model
	case "anthropic":
		opts.Model = cfg.LLM.Anthropic.Model
	case "ollama":
		opts.Model = cfg.LLM.Ollama.Model
	}

	return opts
}
