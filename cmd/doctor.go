package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/salescope-dev/salescope/internal/config"
	"github.com/salescope-dev/salescope/internal/dataset"
	"github.com/salescope-dev/salescope/internal/llm"
	"github.com/salescope-dev/salescope/internal/qlog"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the dataset, query log, and LLM provider are usable",
	Long: `Check the environment salescope needs to answer questions:

- the sales dataset loads and has rows
- the query log is readable (a missing log is fine)
- the configured LLM provider is reachable
- for ollama, the configured model has been pulled

Deterministic questions work without a reachable provider; only unmatched
questions need one.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	logger := newLogger(viper.GetBool("verbose"))
	out := cmd.OutOrStdout()

	cfg := &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	failures := 0
	check := func(name string, err error) {
		if err != nil {
			failures++
			fmt.Fprintf(out, "FAIL  %s: %v\n", name, err)
			return
		}
		fmt.Fprintf(out, "ok    %s\n", name)
	}

	store, err := dataset.Load(cfg.Dataset.Path)
	check(fmt.Sprintf("dataset %s", cfg.Dataset.Path), err)
	if err == nil {
		fmt.Fprintf(out, "      %d rows, %d skipped, years %v\n", store.Len(), store.Skipped(), store.Years())
	}

	_, logErr := qlog.New(cfg.QueryLog.Path).ReadAll()
	if errors.Is(logErr, qlog.ErrNoLogs) {
		logErr = nil
	}
	check(fmt.Sprintf("query log %s", cfg.QueryLog.Path), logErr)

	provider, err := llm.NewProvider(cfg, logger)
	check(fmt.Sprintf("provider %s", cfg.LLM.Provider), err)

	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		check(fmt.Sprintf("%s reachable", cfg.LLM.Provider), provider.Heartbeat(ctx))

		if checker, ok := provider.(llm.ModelChecker); ok {
			model := cfg.LLM.Ollama.Model
			available, err := checker.ModelAvailable(ctx, model)
			if err == nil && !available {
				err = fmt.Errorf("model not pulled, run: ollama pull %s", model)
			}
			check(fmt.Sprintf("model %s", model), err)
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d check(s) failed", failures)
	}
	fmt.Fprintln(out, "All checks passed.")
	return nil
}
