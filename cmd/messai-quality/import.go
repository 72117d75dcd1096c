// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var importCmd = &cobra.Command{
	Use:   "import FILE...",
	Short: "Load paper records from YAML or JSON files into the store",
	Long: `Import reads files holding a list of paper records (.json files as JSON,
anything else as YAML) and upserts them into the paper database. Existing
papers keep their stored quality scores and other metadata.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	_, st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	total := 0
	for _, path := range args {
		n, err := st.ImportFile(cmd.Context(), path)
		total += n
		if err != nil {
			return fmt.Errorf("importing %s (%d records loaded before the error): %w", path, n, err)
		}
		logger.Debug("imported file", zap.String("path", path), zap.Int("papers", n))
		fmt.Fprintf(cmd.OutOrStdout(), "imported: %s (%d papers)\n", path, n)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nImport summary: %d papers from %d file(s)\n", total, len(args))
	return nil
}
