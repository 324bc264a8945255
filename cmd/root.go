package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "salescope",
	Short: "Ask questions about your sales data",
	Long: `Salescope answers natural-language questions about a sales dataset.

Known analytical questions (order counts, top customers, sales by country,
and so on) are computed exactly from the data; anything else is delegated to
an LLM supplied with a summary of the dataset. Every query and response is
recorded in a durable query log.

Examples:
  salescope ask "total orders by year"
  salescope ask "top customers by sales"
  salescope ask "orders by month in 2003"
  salescope stats
  salescope log --follow`,
}

// Execute is called by main.main(). It runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.salescope.yaml)")
	rootCmd.PersistentFlags().StringP("format", "f", "text", "output format (text, json, table)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")

	_ = viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error finding home directory:", err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".salescope")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("SALESCOPE")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("format", "text")
	viper.SetDefault("verbose", false)
	viper.SetDefault("dataset.path", "sales_data_sample.csv")
	viper.SetDefault("query_log.path", "query_log.csv")
	viper.SetDefault("llm.provider", "groq")
	viper.SetDefault("llm.temperature", 0)
	viper.SetDefault("llm.max_tokens", 800)
	viper.SetDefault("llm.groq.model", "llama3-70b-8192")
	viper.SetDefault("llm.openai.model", "gpt-4o")
	viper.SetDefault("llm.anthropic.model", "claude-3-7-sonnet-20250219")
	viper.SetDefault("llm.ollama.host", "http://localhost:11434")
	viper.SetDefault("llm.ollama.model", "llama3.2")

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

// newLogger builds the slog logger commands share, lifting the level to
// Info when --verbose is set.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelError
	if verbose {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}
