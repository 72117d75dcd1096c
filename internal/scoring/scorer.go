// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scoring computes quality scores for bioelectrochemical-systems
// research papers. A score combines five sub-scores (authenticity,
// relevance, completeness, impact, methodology) with fixed weights and
// carries advisory recommendations for the weak ones.
//
// All sub-scores except impact are pure functions of the paper record and
// the scoring tables. Impact may consult a citation source over the
// network; a failed lookup is treated as an unknown citation count.
package scoring

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/messai-quality/internal/enrich"
	"github.com/pdiddy/messai-quality/pkg/types"
)

const defaultRecentYears = 5

// Scorer scores papers against a set of tables and an optional citation
// source. The zero value is not usable; build one with NewScorer.
type Scorer struct {
	tables        *Tables
	citations     enrich.CitationSource
	impactFactors enrich.ImpactFactorTable
	lookupTimeout time.Duration
	recentYears   int
	now           func() time.Time
	log           *zap.Logger
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithCitationSource sets the source consulted for citation counts. Without
// one, citation counts are always unknown.
func WithCitationSource(src enrich.CitationSource) Option {
	return func(s *Scorer) { s.citations = src }
}

// WithLookupTimeout bounds each citation lookup.
func WithLookupTimeout(d time.Duration) Option {
	return func(s *Scorer) { s.lookupTimeout = d }
}

// WithRecentYears sets the age limit for the is-recent signal.
func WithRecentYears(years int) Option {
	return func(s *Scorer) {
		if years > 0 {
			s.recentYears = years
		}
	}
}

// WithClock replaces time.Now, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *Scorer) { s.now = now }
}

// WithLogger sets the logger for lookup diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(s *Scorer) {
		if log != nil {
			s.log = log
		}
	}
}

// NewScorer returns a Scorer using tables. A nil tables value selects the
// built-in tables.
func NewScorer(tables *Tables, opts ...Option) *Scorer {
	if tables == nil {
		tables = DefaultTables()
	}
	s := &Scorer{
		tables:        tables,
		impactFactors: enrich.ImpactFactorTable(tables.JournalImpactFactors),
		lookupTimeout: enrich.DefaultTimeout,
		recentYears:   defaultRecentYears,
		now:           time.Now,
		log:           zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Tables returns the tables the scorer was built with.
func (s *Scorer) Tables() *Tables { return s.tables }

// Score computes the quality score of p. It returns an error only when a
// serialized list field of p is malformed.
func (s *Scorer) Score(ctx context.Context, p types.Paper) (types.QualityScore, error) {
	f, err := ExtractFeatures(p, s.tables)
	if err != nil {
		return types.QualityScore{}, err
	}

	citations, impactFactor := s.enrich(ctx, p)

	sub := SubScores{
		Authenticity: Authenticity(p, f, s.tables),
		Relevance:    Relevance(p, f, s.tables),
		Completeness: Completeness(p, f),
		Impact:       Impact(p.Journal, citations, impactFactor, s.tables),
		Methodology:  Methodology(f, s.tables),
	}

	b := types.QualityBreakdown{
		HasVerificationID:  p.HasVerificationID(),
		HasExternalURL:     hasExternalURL(p),
		HasAbstract:        hasAbstract(p),
		HasPerformanceData: p.HasPerformanceData(),
		HasMaterialsData:   p.HasMaterialsData(),
		IsRecent:           s.isRecent(p),
		IsReputableSource:  isReputable(p, s.tables),
		HasMethodology:     f.MethodologyMatches > 0,
		CitationCount:      citations,
		ImpactFactor:       impactFactor,
	}

	return types.QualityScore{
		Overall:         Overall(sub),
		Authenticity:    sub.Authenticity,
		Relevance:       sub.Relevance,
		Completeness:    sub.Completeness,
		Impact:          sub.Impact,
		Methodology:     sub.Methodology,
		Breakdown:       b,
		Recommendations: Recommendations(sub, b),
		ScoredAt:        s.now().UTC(),
	}, nil
}

// enrich resolves the citation count and impact factor for p.
func (s *Scorer) enrich(ctx context.Context, p types.Paper) (*int, *float64) {
	var citations *int
	if p.DOI != "" {
		citations = enrich.Lookup(ctx, s.citations, p.DOI, s.lookupTimeout, s.log)
	}
	return citations, s.impactFactors.Lookup(p.Journal)
}

func (s *Scorer) isRecent(p types.Paper) bool {
	if p.PublicationDate == nil || p.PublicationDate.IsZero() {
		return false
	}
	cutoff := s.now().AddDate(-s.recentYears, 0, 0)
	return p.PublicationDate.After(cutoff)
}
