// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/messai-quality/internal/enrich"
	"github.com/pdiddy/messai-quality/internal/scoring"
	"github.com/pdiddy/messai-quality/internal/secrets"
	"github.com/pdiddy/messai-quality/internal/store"
	"github.com/pdiddy/messai-quality/pkg/types"
)

const (
	defaultDBPath     = "data/papers.db"
	defaultUserAgent  = "messai-quality/0.1"
	defaultReportFile = "reports/quality-report.json"
)

// setDefaults registers every configuration key so environment variables
// and config files can override any of them.
func setDefaults(v *viper.Viper) {
	v.SetDefault("secrets_dir", ".secrets")

	v.SetDefault("store.path", defaultDBPath)

	v.SetDefault("scoring.tables_file", "")
	v.SetDefault("scoring.recent_years", 5)

	v.SetDefault("enrichment.backend", string(types.CitationCrossRef))
	v.SetDefault("enrichment.timeout", enrich.DefaultTimeout)
	v.SetDefault("enrichment.user_agent", defaultUserAgent)
	v.SetDefault("enrichment.mailto", "")
	v.SetDefault("enrichment.max_retries", 2)

	v.SetDefault("batch.limit", 0)
	v.SetDefault("batch.delay", 100*time.Millisecond)
	v.SetDefault("batch.report_file", defaultReportFile)
	v.SetDefault("batch.metrics_file", "")

	v.SetDefault("extraction.endpoint", "http://localhost:11434")
	v.SetDefault("extraction.model", "llama3.1")
	v.SetDefault("extraction.timeout", 120*time.Second)
	v.SetDefault("extraction.user_agent", defaultUserAgent)
	v.SetDefault("extraction.max_retries", 3)
	v.SetDefault("extraction.limit", 0)
	v.SetDefault("extraction.delay", 500*time.Millisecond)
}

// loadConfig decodes the merged configuration (defaults, config file,
// environment, bound flags).
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	if cfg.Enrichment.Mailto == "" {
		cfg.Enrichment.Mailto = loadedSecrets.Get(secrets.CrossRefMailto, secrets.OpenAlexEmail)
	}
	return cfg, nil
}

// openStore loads the configuration and opens the paper database.
func openStore() (types.Config, *store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return cfg, nil, err
	}
	st, err := store.Open(cfg.Store)
	if err != nil {
		return cfg, nil, err
	}
	logger.Debug("opened paper store", zap.String("path", cfg.Store.Path))
	return cfg, st, nil
}

// newScorer builds a scorer from the scoring and enrichment settings.
func newScorer(cfg types.Config) (*scoring.Scorer, error) {
	tables, err := scoring.LoadTables(cfg.Scoring.TablesFile)
	if err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: cfg.Enrichment.Timeout}
	src, err := enrich.NewSource(cfg.Enrichment, client, logger)
	if err != nil {
		return nil, err
	}
	if src == nil {
		logger.Info("citation lookups disabled; citation counts will be unknown")
	}

	return scoring.NewScorer(tables,
		scoring.WithCitationSource(src),
		scoring.WithLookupTimeout(cfg.Enrichment.Timeout),
		scoring.WithRecentYears(cfg.Scoring.RecentYears),
		scoring.WithLogger(logger),
	), nil
}
