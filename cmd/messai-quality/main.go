// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the messai-quality CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/messai-quality/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// loadedSecrets holds contact addresses loaded from the secrets directory at startup.
	loadedSecrets secrets.Secrets

	// logger is the process-wide structured logger, built in PersistentPreRunE.
	logger = zap.NewNop()
)

// rootCmd is the base command for the messai-quality CLI.
var rootCmd = &cobra.Command{
	Use:   "messai-quality",
	Short: "Score the quality of bioelectrochemical systems research papers",
	Long: `messai-quality rates papers in the MESSAi literature database on a 0-100
scale. Each score combines authenticity, relevance, completeness, impact, and
methodology sub-scores, and carries recommendations for improving the record.

Papers are imported into a local SQLite store, optionally enriched with
metadata extracted from their abstracts, then scored in a sequential batch
that writes each score back onto the paper record.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		l, err := newLogger(verbose)
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		logger = l

		dir := viper.GetString("secrets_dir")
		s, err := secrets.Load(dir, logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug("loaded secrets", zap.Strings("keys", keys))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./messai-quality.yaml or ~/.config/messai-quality/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "SQLite paper database (default data/papers.db)")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets", "directory of secret files (crossref-mailto, openalex-email)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	_ = viper.BindPFlag("store.path", rootCmd.PersistentFlags().Lookup("db"))
	_ = viper.BindPFlag("secrets_dir", rootCmd.PersistentFlags().Lookup("secrets-dir"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("messai-quality")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "messai-quality"))
		}
	}

	setDefaults(viper.GetViper())

	viper.SetEnvPrefix("MESSAI_QUALITY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds a console logger on stderr. Progress output stays on
// stdout so it can be piped.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
