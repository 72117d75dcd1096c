// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/messai-quality/pkg/types"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List scored papers in a quality band",
	Long: `List prints the scored papers whose overall score falls in the given
band (high >= 80, medium 60-79, low < 60), highest score first.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().String("band", "high", "quality band: high, medium, or low")
	listCmd.Flags().Int("limit", 0, "maximum number of papers to list (0 = all)")

	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	band, _ := cmd.Flags().GetString("band")
	limit, _ := cmd.Flags().GetInt("limit")

	_, st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	papers, err := st.ListByBand(cmd.Context(), types.QualityBand(strings.ToLower(band)), limit)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if len(papers) == 0 {
		fmt.Fprintln(w, "No papers found.")
		return nil
	}

	fmt.Fprintf(w, "%-7s  %-24s  %s\n", "Overall", "ID", "Title")
	fmt.Fprintln(w, strings.Repeat("-", 90))
	for _, p := range papers {
		id := p.ID
		if len(id) > 24 {
			id = id[:21] + "..."
		}
		title := p.Title
		if len(title) > 55 {
			title = title[:52] + "..."
		}
		fmt.Fprintf(w, "%7d  %-24s  %s\n", p.Overall, id, title)
	}
	fmt.Fprintf(w, "\n%d papers\n", len(papers))
	return nil
}
