// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/messai-quality/internal/extract"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract technical metadata from abstracts with a local Ollama model",
	Long: `Extract sends the abstract of each paper that lacks a system type or
performance data to an Ollama model and fills the empty fields (system type,
power output, efficiency, electrode materials, organisms). Fields that already
hold a value are never overwritten, so the command is safe to re-run.`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().Int("limit", 0, "maximum number of papers to process (0 = all)")
	extractCmd.Flags().String("model", "", "Ollama model name (default llama3.1)")
	extractCmd.Flags().String("endpoint", "", "Ollama server URL (default http://localhost:11434)")

	_ = viper.BindPFlag("extraction.limit", extractCmd.Flags().Lookup("limit"))
	_ = viper.BindPFlag("extraction.model", extractCmd.Flags().Lookup("model"))
	_ = viper.BindPFlag("extraction.endpoint", extractCmd.Flags().Lookup("endpoint"))

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	backend := extract.NewOllamaBackend(cfg.Extraction)
	summary, err := extract.ExtractAll(cmd.Context(), backend, st, cfg.Extraction, logger, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d paper(s) failed extraction", summary.Failed)
	}
	return nil
}
