// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/messai-quality/internal/batch"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score papers and write the scores back onto their records",
	Long: `Score computes a quality score for each paper in the store, one paper at
a time with a fixed delay between papers to respect citation API rate limits.
Each score is saved under the paper's qualityScore metadata key.

A paper that fails to score is recorded with a zero score and an issue in the
report; the run continues. If no score could be saved at all, the partial
report is still written and the command exits non-zero.`,
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().Int("limit", 0, "maximum number of papers to score (0 = all)")
	scoreCmd.Flags().String("report", "", "path for the detailed report; .yaml/.yml writes YAML (default reports/quality-report.json)")
	scoreCmd.Flags().String("metrics-file", "", "write run metrics in Prometheus textfile format")
	scoreCmd.Flags().Duration("delay", 0, "delay between consecutive papers (default 100ms)")
	scoreCmd.Flags().String("citations", "", "citation source: crossref, openalex, or none")

	_ = viper.BindPFlag("batch.limit", scoreCmd.Flags().Lookup("limit"))
	_ = viper.BindPFlag("batch.report_file", scoreCmd.Flags().Lookup("report"))
	_ = viper.BindPFlag("batch.metrics_file", scoreCmd.Flags().Lookup("metrics-file"))
	_ = viper.BindPFlag("batch.delay", scoreCmd.Flags().Lookup("delay"))
	_ = viper.BindPFlag("enrichment.backend", scoreCmd.Flags().Lookup("citations"))

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	cfg, st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	scorer, err := newScorer(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	papers, err := st.ListPapers(ctx, cfg.Batch.Limit)
	if err != nil {
		return err
	}

	delay := cfg.Batch.Delay
	if delay <= 0 {
		delay = batch.DefaultDelay
	}
	metrics := batch.NewMetrics()
	runner := &batch.Runner{
		Scorer:    scorer,
		Persister: st,
		Delay:     delay,
		Limit:     cfg.Batch.Limit,
		Logger:    logger,
		Metrics:   metrics,
		Out:       cmd.OutOrStdout(),
	}

	report, runErr := runner.Run(ctx, papers)
	if report != nil {
		if err := writeReport(report, cfg.Batch.ReportFile); err != nil {
			logger.Error("writing report failed", zap.Error(err))
			if runErr == nil {
				runErr = err
			}
		} else if cfg.Batch.ReportFile != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "\nReport written to %s\n", cfg.Batch.ReportFile)
		}
	}
	if cfg.Batch.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.Batch.MetricsFile); err != nil {
			logger.Error("writing metrics failed", zap.Error(err))
		}
	}

	if errors.Is(runErr, batch.ErrPersistenceUnavailable) {
		return fmt.Errorf("scoring run %s: %w", report.RunID, runErr)
	}
	return runErr
}

func writeReport(report *batch.Report, path string) error {
	if path == "" {
		return nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return report.WriteYAML(path)
	default:
		return report.WriteJSON(path)
	}
}
