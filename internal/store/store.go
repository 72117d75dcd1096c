// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists paper records and their quality scores in SQLite.
// Scores live in each paper's JSON metadata column under the
// "qualityScore" key so they never collide with other metadata.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/messai-quality/pkg/types"
)

// QualityScoreKey is the metadata key under which scores are stored.
const QualityScoreKey = "qualityScore"

// ErrPaperNotFound is returned when a paper ID has no row.
var ErrPaperNotFound = errors.New("paper not found")

const paperColumns = `id, title, authors, abstract, doi, arxiv_id, pubmed_id, ieee_id,
	external_url, keywords, system_type, power_output, efficiency,
	anode_materials, cathode_materials, organism_types, source,
	journal, volume, issue, pages, publication_date`

// Store manages the paper database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database at cfg.Path and creates the
// schema if it does not exist.
func Open(cfg types.StoreConfig) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("store path is empty")
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			authors TEXT,
			abstract TEXT,
			doi TEXT,
			arxiv_id TEXT,
			pubmed_id TEXT,
			ieee_id TEXT,
			external_url TEXT,
			keywords TEXT,
			system_type TEXT,
			power_output REAL,
			efficiency REAL,
			anode_materials TEXT,
			cathode_materials TEXT,
			organism_types TEXT,
			source TEXT,
			journal TEXT,
			volume TEXT,
			issue TEXT,
			pages TEXT,
			publication_date TEXT,
			metadata TEXT NOT NULL DEFAULT '{}',
			updated_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_doi ON papers(doi)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_system_type ON papers(system_type)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// UpsertPaper inserts a paper or replaces its fields. Stored metadata,
// including any quality score, is preserved.
func (s *Store) UpsertPaper(ctx context.Context, p types.Paper) error {
	if p.ID == "" {
		return fmt.Errorf("paper has no id")
	}
	if p.Title == "" {
		return fmt.Errorf("paper %s has no title", p.ID)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO papers (`+paperColumns+`, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, authors=excluded.authors, abstract=excluded.abstract,
			doi=excluded.doi, arxiv_id=excluded.arxiv_id, pubmed_id=excluded.pubmed_id,
			ieee_id=excluded.ieee_id, external_url=excluded.external_url,
			keywords=excluded.keywords, system_type=excluded.system_type,
			power_output=excluded.power_output, efficiency=excluded.efficiency,
			anode_materials=excluded.anode_materials, cathode_materials=excluded.cathode_materials,
			organism_types=excluded.organism_types, source=excluded.source,
			journal=excluded.journal, volume=excluded.volume, issue=excluded.issue,
			pages=excluded.pages, publication_date=excluded.publication_date,
			updated_at=excluded.updated_at`,
		p.ID, p.Title, p.Authors, p.Abstract, p.DOI, p.ArxivID, p.PubMedID, p.IEEEID,
		p.ExternalURL, p.Keywords, p.SystemType, nullFloat(p.PowerOutput), nullFloat(p.Efficiency),
		p.AnodeMaterials, p.CathodeMaterials, p.OrganismTypes, p.Source,
		p.Journal, p.Volume, p.Issue, p.Pages, formatDate(p.PublicationDate),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting paper %s: %w", p.ID, err)
	}
	return nil
}

// GetPaper returns the paper with the given ID.
func (s *Store) GetPaper(ctx context.Context, id string) (types.Paper, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+paperColumns+` FROM papers WHERE id = ?`, id)
	p, err := scanPaper(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Paper{}, fmt.Errorf("%s: %w", id, ErrPaperNotFound)
	}
	return p, err
}

// ListPapers returns papers ordered by ID. A limit of 0 or less returns all.
func (s *Store) ListPapers(ctx context.Context, limit int) ([]types.Paper, error) {
	query := `SELECT ` + paperColumns + ` FROM papers ORDER BY id`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.queryPapers(ctx, query, args...)
}

// ListMissingExtraction returns papers with an abstract but no system type
// or performance data, the candidates for metadata extraction.
func (s *Store) ListMissingExtraction(ctx context.Context, limit int) ([]types.Paper, error) {
	query := `SELECT ` + paperColumns + ` FROM papers
		WHERE abstract IS NOT NULL AND abstract != ''
		  AND (system_type IS NULL OR system_type = ''
		       OR (power_output IS NULL AND efficiency IS NULL))
		ORDER BY id`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.queryPapers(ctx, query, args...)
}

func (s *Store) queryPapers(ctx context.Context, query string, args ...any) ([]types.Paper, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying papers: %w", err)
	}
	defer rows.Close()

	var papers []types.Paper
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		papers = append(papers, p)
	}
	return papers, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPaper(sc scanner) (types.Paper, error) {
	var (
		p                                                 types.Paper
		authors, abstract, doi, arxivID, pubmedID, ieeeID sql.NullString
		extURL, keywords, systemType                      sql.NullString
		power, efficiency                                 sql.NullFloat64
		anode, cathode, organisms, source                 sql.NullString
		journal, volume, issue, pages, pubDate            sql.NullString
	)
	err := sc.Scan(&p.ID, &p.Title, &authors, &abstract, &doi, &arxivID, &pubmedID, &ieeeID,
		&extURL, &keywords, &systemType, &power, &efficiency,
		&anode, &cathode, &organisms, &source,
		&journal, &volume, &issue, &pages, &pubDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Paper{}, err
		}
		return types.Paper{}, fmt.Errorf("scanning paper: %w", err)
	}

	p.Authors = authors.String
	p.Abstract = abstract.String
	p.DOI = doi.String
	p.ArxivID = arxivID.String
	p.PubMedID = pubmedID.String
	p.IEEEID = ieeeID.String
	p.ExternalURL = extURL.String
	p.Keywords = keywords.String
	p.SystemType = systemType.String
	if power.Valid {
		v := power.Float64
		p.PowerOutput = &v
	}
	if efficiency.Valid {
		v := efficiency.Float64
		p.Efficiency = &v
	}
	p.AnodeMaterials = anode.String
	p.CathodeMaterials = cathode.String
	p.OrganismTypes = organisms.String
	p.Source = source.String
	p.Journal = journal.String
	p.Volume = volume.String
	p.Issue = issue.String
	p.Pages = pages.String
	if pubDate.String != "" {
		if t, err := time.Parse(time.RFC3339, pubDate.String); err == nil {
			p.PublicationDate = &t
		}
	}
	return p, nil
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func formatDate(t *time.Time) sql.NullString {
	if t == nil || t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// metadata reads and decodes the metadata column of a paper.
func (s *Store) metadata(ctx context.Context, q querier, id string) (map[string]json.RawMessage, error) {
	var raw string
	err := q.QueryRowContext(ctx, `SELECT metadata FROM papers WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, ErrPaperNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading metadata for %s: %w", id, err)
	}

	meta := map[string]json.RawMessage{}
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			return nil, fmt.Errorf("decoding metadata for %s: %w", id, err)
		}
	}
	return meta, nil
}

// SaveQualityScore attaches score to the paper under the qualityScore
// metadata key, replacing any previous score. Other metadata keys are kept.
func (s *Store) SaveQualityScore(ctx context.Context, id string, score types.QualityScore) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	meta, err := s.metadata(ctx, tx, id)
	if err != nil {
		return err
	}

	encoded, err := json.Marshal(score)
	if err != nil {
		return fmt.Errorf("encoding quality score: %w", err)
	}
	meta[QualityScoreKey] = encoded

	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE papers SET metadata = ?, updated_at = ? WHERE id = ?`,
		string(data), time.Now().UTC().Format(time.RFC3339), id,
	); err != nil {
		return fmt.Errorf("updating metadata for %s: %w", id, err)
	}
	return tx.Commit()
}

// QualityScore returns the stored score of a paper. ok is false when the
// paper has not been scored.
func (s *Store) QualityScore(ctx context.Context, id string) (score types.QualityScore, ok bool, err error) {
	meta, err := s.metadata(ctx, s.db, id)
	if err != nil {
		return score, false, err
	}
	raw, found := meta[QualityScoreKey]
	if !found {
		return score, false, nil
	}
	if err := json.Unmarshal(raw, &score); err != nil {
		return score, false, fmt.Errorf("decoding quality score for %s: %w", id, err)
	}
	return score, true, nil
}

// SetMetadata stores an arbitrary JSON value under key in the paper's
// metadata, leaving other keys untouched.
func (s *Store) SetMetadata(ctx context.Context, id, key string, value any) error {
	if key == QualityScoreKey {
		return fmt.Errorf("metadata key %q is reserved", key)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	meta, err := s.metadata(ctx, tx, id)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding metadata %s: %w", key, err)
	}
	meta[key] = encoded

	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE papers SET metadata = ? WHERE id = ?`, string(data), id); err != nil {
		return fmt.Errorf("updating metadata for %s: %w", id, err)
	}
	return tx.Commit()
}
