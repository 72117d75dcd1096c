// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/messai-quality/internal/batch"
	"github.com/pdiddy/messai-quality/internal/secrets"
	"github.com/pdiddy/messai-quality/pkg/types"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	setDefaults(viper.GetViper())
	viper.SetEnvPrefix("MESSAI_QUALITY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	loadedSecrets = nil
	t.Cleanup(viper.Reset)
}

func TestLoadConfigDefaults(t *testing.T) {
	resetViper(t)

	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, defaultDBPath, cfg.Store.Path)
	assert.Equal(t, 5, cfg.Scoring.RecentYears)
	assert.Equal(t, types.CitationCrossRef, cfg.Enrichment.Backend)
	assert.Equal(t, 10*time.Second, cfg.Enrichment.Timeout)
	assert.Equal(t, defaultUserAgent, cfg.Enrichment.UserAgent)
	assert.Equal(t, 2, cfg.Enrichment.MaxRetries)
	assert.Equal(t, 100*time.Millisecond, cfg.Batch.Delay)
	assert.Equal(t, defaultReportFile, cfg.Batch.ReportFile)
	assert.Equal(t, "llama3.1", cfg.Extraction.Model)
	assert.Equal(t, 500*time.Millisecond, cfg.Extraction.Delay)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("MESSAI_QUALITY_BATCH_DELAY", "2s")
	t.Setenv("MESSAI_QUALITY_ENRICHMENT_BACKEND", "openalex")
	t.Setenv("MESSAI_QUALITY_STORE_PATH", "/tmp/other.db")
	resetViper(t)

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.Batch.Delay)
	assert.Equal(t, types.CitationOpenAlex, cfg.Enrichment.Backend)
	assert.Equal(t, "/tmp/other.db", cfg.Store.Path)
}

func TestLoadConfigMailtoFromSecrets(t *testing.T) {
	resetViper(t)
	loadedSecrets = secrets.Secrets{secrets.OpenAlexEmail: "lab@example.org"}

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "lab@example.org", cfg.Enrichment.Mailto)

	viper.Set("enrichment.mailto", "explicit@example.org")
	cfg, err = loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "explicit@example.org", cfg.Enrichment.Mailto)
}

func TestNewScorerRejectsUnknownBackend(t *testing.T) {
	resetViper(t)
	viper.Set("enrichment.backend", "scopus")

	cfg, err := loadConfig()
	require.NoError(t, err)
	_, err = newScorer(cfg)
	assert.Error(t, err)
}

func TestWriteReportFormat(t *testing.T) {
	runner := &batch.Runner{Scorer: nopScorer{}}
	report, err := runner.Run(context.Background(), []types.Paper{{ID: "a", Title: "A"}})
	require.NoError(t, err)

	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "r.yaml")
	jsonPath := filepath.Join(dir, "r.json")
	require.NoError(t, writeReport(report, yamlPath))
	require.NoError(t, writeReport(report, jsonPath))
	require.NoError(t, writeReport(report, ""))

	yamlData, err := os.ReadFile(yamlPath)
	require.NoError(t, err)
	assert.Contains(t, string(yamlData), "run_id: ")

	jsonData, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.Contains(t, string(jsonData), `"run_id": `)
}

type nopScorer struct{}

func (nopScorer) Score(context.Context, types.Paper) (types.QualityScore, error) {
	return types.QualityScore{Overall: 50, Recommendations: []string{}}, nil
}
