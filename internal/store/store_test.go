// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/messai-quality/pkg/types"
)

// --- test helpers ---

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(types.StoreConfig{Path: filepath.Join(t.TempDir(), "db", "papers.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func floatPtr(f float64) *float64 { return &f }

func samplePaper(id string) types.Paper {
	pub := time.Date(2023, 5, 17, 0, 0, 0, 0, time.UTC)
	return types.Paper{
		ID:              id,
		Title:           "Graphite brush anodes for microbial fuel cells",
		Authors:         `["Bruce E. Logan"]`,
		Abstract:        "Brush anodes improved power density in single-chamber MFCs.",
		DOI:             "10.1021/es062644y",
		SystemType:      "MFC",
		PowerOutput:     floatPtr(2400),
		AnodeMaterials:  `["graphite brush"]`,
		Source:          "crossref_api",
		Journal:         "Environmental Science & Technology",
		PublicationDate: &pub,
	}
}

// --- schema ---

func TestOpenCreatesSchema(t *testing.T) {
	s := testStore(t)
	var count int
	require.NoError(t, s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='papers'`,
	).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestOpenEmptyPath(t *testing.T) {
	_, err := Open(types.StoreConfig{})
	assert.Error(t, err)
}

// --- papers ---

func TestUpsertAndGetPaper(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	want := samplePaper("p1")

	require.NoError(t, s.UpsertPaper(ctx, want))
	got, err := s.GetPaper(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	want.Title = "Updated title"
	want.PowerOutput = nil
	require.NoError(t, s.UpsertPaper(ctx, want))
	got, err = s.GetPaper(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Updated title", got.Title)
	assert.Nil(t, got.PowerOutput)
}

func TestUpsertPaperValidation(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	assert.Error(t, s.UpsertPaper(ctx, types.Paper{Title: "no id"}))
	assert.Error(t, s.UpsertPaper(ctx, types.Paper{ID: "no-title"}))
}

func TestGetPaperNotFound(t *testing.T) {
	s := testStore(t)
	_, err := s.GetPaper(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrPaperNotFound)
}

func TestListPapers(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, s.UpsertPaper(ctx, samplePaper(id)))
	}

	all, err := s.ListPapers(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, "c", all[2].ID)

	limited, err := s.ListPapers(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestListMissingExtraction(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	complete := samplePaper("complete")
	require.NoError(t, s.UpsertPaper(ctx, complete))

	noType := samplePaper("no-type")
	noType.SystemType = ""
	require.NoError(t, s.UpsertPaper(ctx, noType))

	noAbstract := samplePaper("no-abstract")
	noAbstract.SystemType = ""
	noAbstract.Abstract = ""
	require.NoError(t, s.UpsertPaper(ctx, noAbstract))

	papers, err := s.ListMissingExtraction(ctx, 0)
	require.NoError(t, err)
	require.Len(t, papers, 1)
	assert.Equal(t, "no-type", papers[0].ID)
}

// --- quality scores ---

func TestSaveQualityScore(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.UpsertPaper(ctx, samplePaper("p1")))

	_, ok, err := s.QualityScore(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, ok)

	cites := 12
	score := types.QualityScore{
		Overall: 72, Authenticity: 90, Relevance: 70, Completeness: 65, Impact: 50, Methodology: 60,
		Breakdown:       types.QualityBreakdown{HasVerificationID: true, CitationCount: &cites},
		Recommendations: []string{"Add electrode material information"},
		ScoredAt:        time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, s.SaveQualityScore(ctx, "p1", score))

	got, ok, err := s.QualityScore(ctx, "p1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, score, got)
}

func TestSaveQualityScorePreservesOtherMetadata(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.UpsertPaper(ctx, samplePaper("p1")))

	require.NoError(t, s.SetMetadata(ctx, "p1", "extraction", map[string]string{"model": "llama3.1"}))
	require.NoError(t, s.SaveQualityScore(ctx, "p1", types.QualityScore{Overall: 40}))
	require.NoError(t, s.SaveQualityScore(ctx, "p1", types.QualityScore{Overall: 55}))

	var raw string
	require.NoError(t, s.db.QueryRow(`SELECT metadata FROM papers WHERE id = 'p1'`).Scan(&raw))
	var meta map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(raw), &meta))
	assert.Contains(t, meta, "extraction")
	assert.Contains(t, meta, QualityScoreKey)

	got, _, err := s.QualityScore(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 55, got.Overall)

	// Re-importing the paper keeps the score.
	require.NoError(t, s.UpsertPaper(ctx, samplePaper("p1")))
	got, ok, err := s.QualityScore(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 55, got.Overall)
}

func TestSaveQualityScoreUnknownPaper(t *testing.T) {
	s := testStore(t)
	err := s.SaveQualityScore(context.Background(), "ghost", types.QualityScore{})
	assert.ErrorIs(t, err, ErrPaperNotFound)
}

func TestSetMetadataReservedKey(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.UpsertPaper(ctx, samplePaper("p1")))
	assert.Error(t, s.SetMetadata(ctx, "p1", QualityScoreKey, 1))
}

func TestSetMetadataEncodingError(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.UpsertPaper(ctx, samplePaper("p1")))
	require.NoError(t, s.SetMetadata(ctx, "p1", "extraction", map[string]string{"model": "llama3.1"}))

	err := s.SetMetadata(ctx, "p1", "extraction", map[string]any{"bad": make(chan int)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encoding metadata")

	var raw string
	require.NoError(t, s.db.QueryRow(`SELECT metadata FROM papers WHERE id = 'p1'`).Scan(&raw))
	assert.JSONEq(t, `{"extraction":{"model":"llama3.1"}}`, raw)
}

func TestListByBand(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	scores := map[string]int{"hi1": 92, "hi2": 80, "mid": 65, "low": 12}
	for id, overall := range scores {
		require.NoError(t, s.UpsertPaper(ctx, samplePaper(id)))
		require.NoError(t, s.SaveQualityScore(ctx, id, types.QualityScore{Overall: overall}))
	}
	require.NoError(t, s.UpsertPaper(ctx, samplePaper("unscored")))

	high, err := s.ListByBand(ctx, types.BandHigh, 0)
	require.NoError(t, err)
	require.Len(t, high, 2)
	assert.Equal(t, "hi1", high[0].ID)
	assert.Equal(t, 92, high[0].Overall)
	assert.Equal(t, "hi2", high[1].ID)

	mid, err := s.ListByBand(ctx, types.BandMedium, 0)
	require.NoError(t, err)
	require.Len(t, mid, 1)
	assert.Equal(t, "mid", mid[0].ID)

	low, err := s.ListByBand(ctx, types.BandLow, 0)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "low", low[0].ID)

	_, err = s.ListByBand(ctx, "excellent", 0)
	assert.Error(t, err)
}

// --- extraction updates ---

func TestUpdateExtractedFillsOnlyEmptyFields(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	p := samplePaper("p1")
	p.Efficiency = nil
	p.CathodeMaterials = ""
	require.NoError(t, s.UpsertPaper(ctx, p))

	filled, err := s.UpdateExtracted(ctx, "p1", ExtractedFields{
		SystemType:       "MEC",
		PowerOutput:      floatPtr(1),
		Efficiency:       floatPtr(61.5),
		AnodeMaterials:   []string{"carbon felt"},
		CathodeMaterials: []string{"stainless steel"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, filled)

	got, err := s.GetPaper(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "MFC", got.SystemType)
	assert.Equal(t, 2400.0, *got.PowerOutput)
	assert.Equal(t, 61.5, *got.Efficiency)
	assert.Equal(t, `["graphite brush"]`, got.AnodeMaterials)
	assert.Equal(t, `["stainless steel"]`, got.CathodeMaterials)

	filled, err = s.UpdateExtracted(ctx, "p1", ExtractedFields{SystemType: "MDC"})
	require.NoError(t, err)
	assert.Zero(t, filled)
}

// --- import ---

func TestImportFileYAML(t *testing.T) {
	s := testStore(t)
	path := filepath.Join(t.TempDir(), "papers.yaml")
	content := `- id: logan-2007
  title: Graphite fiber brush anodes for increased power production
  authors: '["Bruce E. Logan", "Shaoan Cheng"]'
  doi: 10.1021/es062644y
  power_output: 2400
  publication_date: 2007-03-01T00:00:00Z
- id: manual-1
  title: Notes on an anonymous reactor
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	n, err := s.ImportFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	p, err := s.GetPaper(context.Background(), "logan-2007")
	require.NoError(t, err)
	assert.Equal(t, "10.1021/es062644y", p.DOI)
	require.NotNil(t, p.PowerOutput)
	assert.Equal(t, 2400.0, *p.PowerOutput)
	require.NotNil(t, p.PublicationDate)
	assert.Equal(t, 2007, p.PublicationDate.Year())
}

func TestImportFileJSON(t *testing.T) {
	s := testStore(t)
	path := filepath.Join(t.TempDir(), "papers.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"j1","title":"JSON paper","efficiency":33.3}]`), 0o644))

	n, err := s.ImportFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	p, err := s.GetPaper(context.Background(), "j1")
	require.NoError(t, err)
	assert.Equal(t, 33.3, *p.Efficiency)
}

func TestImportFileRejectsRecordWithoutTitle(t *testing.T) {
	s := testStore(t)
	path := filepath.Join(t.TempDir(), "papers.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"ok","title":"fine"},{"id":"bad"}]`), 0o644))

	n, err := s.ImportFile(context.Background(), path)
	assert.Error(t, err)
	assert.Equal(t, 1, n)
}
