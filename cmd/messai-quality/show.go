// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

var showCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Print a paper's stored quality score",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().Bool("json", false, "output as JSON instead of YAML")

	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	_, st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	paper, err := st.GetPaper(ctx, args[0])
	if err != nil {
		return err
	}
	score, ok, err := st.QualityScore(ctx, paper.ID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("paper %s has not been scored; run `messai-quality score` first", paper.ID)
	}

	out := struct {
		ID    string `json:"id" yaml:"id"`
		Title string `json:"title" yaml:"title"`
		Band  string `json:"band" yaml:"band"`
		Score any    `json:"quality_score" yaml:"quality_score"`
	}{paper.ID, paper.Title, string(score.Band()), score}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(out)
}
