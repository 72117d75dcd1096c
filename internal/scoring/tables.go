// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scoring

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"
)

//go:embed tables.yaml
var defaultTablesYAML []byte

// Tables holds the keyword lists and lookup tables the sub-score
// calculators consult. All entries are matched case-insensitively as
// substrings; they are lowercased when loaded.
type Tables struct {
	RelevanceKeywords       []string           `yaml:"relevance_keywords"`
	MethodologyPhrases      []string           `yaml:"methodology_phrases"`
	StatisticalPhrases      []string           `yaml:"statistical_phrases"`
	ReputableSources        []string           `yaml:"reputable_sources"`
	SyntheticAuthorPatterns []string           `yaml:"synthetic_author_patterns"`
	GenericSystemTypes      []string           `yaml:"generic_system_types"`
	HighImpactJournals      []string           `yaml:"high_impact_journals"`
	JournalImpactFactors    map[string]float64 `yaml:"journal_impact_factors"`
}

// DefaultTables returns the built-in tables.
func DefaultTables() *Tables {
	t, err := parseTables(defaultTablesYAML)
	if err != nil {
		panic(fmt.Sprintf("built-in scoring tables: %v", err))
	}
	return t
}

// LoadTables reads a YAML tables file and overlays it on the built-in
// tables. A table present in the file replaces the built-in one entirely.
// An empty path returns the built-in tables.
func LoadTables(path string) (*Tables, error) {
	base := DefaultTables()
	if path == "" {
		return base, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tables file %s: %w", path, err)
	}
	override, err := parseTables(data)
	if err != nil {
		return nil, fmt.Errorf("tables file %s: %w", path, err)
	}

	base.overlay(override)
	if err := base.Validate(); err != nil {
		return nil, fmt.Errorf("tables file %s: %w", path, err)
	}
	return base, nil
}

func parseTables(data []byte) (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing tables: %w", err)
	}
	t.normalize()
	return &t, nil
}

// Validate checks that the density-based tables are non-empty, since the
// relevance and methodology densities divide by their length.
func (t *Tables) Validate() error {
	if len(t.RelevanceKeywords) == 0 {
		return fmt.Errorf("relevance_keywords must not be empty")
	}
	if len(t.MethodologyPhrases) == 0 {
		return fmt.Errorf("methodology_phrases must not be empty")
	}
	for journal, factor := range t.JournalImpactFactors {
		if factor < 0 {
			return fmt.Errorf("journal_impact_factors[%q]: negative factor %v", journal, factor)
		}
	}
	return nil
}

func (t *Tables) overlay(o *Tables) {
	if o.RelevanceKeywords != nil {
		t.RelevanceKeywords = o.RelevanceKeywords
	}
	if o.MethodologyPhrases != nil {
		t.MethodologyPhrases = o.MethodologyPhrases
	}
	if o.StatisticalPhrases != nil {
		t.StatisticalPhrases = o.StatisticalPhrases
	}
	if o.ReputableSources != nil {
		t.ReputableSources = o.ReputableSources
	}
	if o.SyntheticAuthorPatterns != nil {
		t.SyntheticAuthorPatterns = o.SyntheticAuthorPatterns
	}
	if o.GenericSystemTypes != nil {
		t.GenericSystemTypes = o.GenericSystemTypes
	}
	if o.HighImpactJournals != nil {
		t.HighImpactJournals = o.HighImpactJournals
	}
	if o.JournalImpactFactors != nil {
		t.JournalImpactFactors = o.JournalImpactFactors
	}
}

func (t *Tables) normalize() {
	for _, list := range []*[]string{
		&t.RelevanceKeywords,
		&t.MethodologyPhrases,
		&t.StatisticalPhrases,
		&t.ReputableSources,
		&t.SyntheticAuthorPatterns,
		&t.GenericSystemTypes,
		&t.HighImpactJournals,
	} {
		*list = lowerAll(*list)
	}
	if t.JournalImpactFactors != nil {
		m := make(map[string]float64, len(t.JournalImpactFactors))
		for k, v := range t.JournalImpactFactors {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				m[k] = v
			}
		}
		t.JournalImpactFactors = m
	}
}

func lowerAll(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
