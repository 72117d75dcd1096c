// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/messai-quality/pkg/types"
)

// ScoredPaper pairs a paper with its stored overall score.
type ScoredPaper struct {
	ID      string `json:"id" yaml:"id"`
	Title   string `json:"title" yaml:"title"`
	Overall int    `json:"overall" yaml:"overall"`
}

// ListByBand returns scored papers whose overall score falls in band,
// highest first. A limit of 0 or less returns all.
func (s *Store) ListByBand(ctx context.Context, band types.QualityBand, limit int) ([]ScoredPaper, error) {
	var lo, hi int
	switch band {
	case types.BandHigh:
		lo, hi = types.HighQualityMin, 100
	case types.BandMedium:
		lo, hi = types.MediumQualityMin, types.HighQualityMin-1
	case types.BandLow:
		lo, hi = 0, types.MediumQualityMin-1
	default:
		return nil, fmt.Errorf("unknown quality band %q (want high, medium, or low)", band)
	}

	query := `SELECT id, title, overall FROM (
			SELECT id, title, CAST(json_extract(metadata, '$.` + QualityScoreKey + `.overall') AS INTEGER) AS overall
			FROM papers
			WHERE json_extract(metadata, '$.` + QualityScoreKey + `.overall') IS NOT NULL
		)
		WHERE overall BETWEEN ? AND ?
		ORDER BY overall DESC, id`
	args := []any{lo, hi}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying papers by band: %w", err)
	}
	defer rows.Close()

	var out []ScoredPaper
	for rows.Next() {
		var sp ScoredPaper
		if err := rows.Scan(&sp.ID, &sp.Title, &sp.Overall); err != nil {
			return nil, fmt.Errorf("scanning scored paper: %w", err)
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}

// ExtractedFields holds metadata recovered from a paper's abstract.
// Nil and empty fields are left untouched by UpdateExtracted.
type ExtractedFields struct {
	SystemType       string
	PowerOutput      *float64
	Efficiency       *float64
	AnodeMaterials   []string
	CathodeMaterials []string
	OrganismTypes    []string
}

// UpdateExtracted fills the paper's empty technical fields from f. Fields
// that already hold a value are never overwritten. It reports how many
// fields were filled.
func (s *Store) UpdateExtracted(ctx context.Context, id string, f ExtractedFields) (int, error) {
	p, err := s.GetPaper(ctx, id)
	if err != nil {
		return 0, err
	}

	filled := 0
	if p.SystemType == "" && f.SystemType != "" {
		p.SystemType = f.SystemType
		filled++
	}
	if p.PowerOutput == nil && f.PowerOutput != nil {
		p.PowerOutput = f.PowerOutput
		filled++
	}
	if p.Efficiency == nil && f.Efficiency != nil {
		p.Efficiency = f.Efficiency
		filled++
	}
	for _, pair := range []struct {
		dst *string
		src []string
	}{
		{&p.AnodeMaterials, f.AnodeMaterials},
		{&p.CathodeMaterials, f.CathodeMaterials},
		{&p.OrganismTypes, f.OrganismTypes},
	} {
		if strings.TrimSpace(*pair.dst) == "" && len(pair.src) > 0 {
			*pair.dst = types.EncodeList(pair.src)
			filled++
		}
	}

	if filled == 0 {
		return 0, nil
	}
	return filled, s.UpsertPaper(ctx, p)
}

// ImportFile loads papers from a YAML or JSON file holding a list of paper
// records and upserts them. Records without an ID or title are rejected.
func (s *Store) ImportFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}

	var papers []types.Paper
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &papers)
	default:
		err = yaml.Unmarshal(data, &papers)
	}
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", path, err)
	}

	for i, p := range papers {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := s.UpsertPaper(ctx, p); err != nil {
			return i, fmt.Errorf("record %d: %w", i, err)
		}
	}
	return len(papers), nil
}
