// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paper quality
// scorer: the paper record read from the literature database, the quality
// score attached back onto it, and stage configuration.
package types

import "time"

// QualityScore is the result of scoring one paper. It is computed whole and
// replaces any previous score for the paper.
type QualityScore struct {
	// Overall is the weighted combination of the five sub-scores, 0-100.
	Overall int `json:"overall" yaml:"overall"`

	Authenticity int `json:"authenticity" yaml:"authenticity"`
	Relevance    int `json:"relevance" yaml:"relevance"`
	Completeness int `json:"completeness" yaml:"completeness"`
	Impact       int `json:"impact" yaml:"impact"`
	Methodology  int `json:"methodology" yaml:"methodology"`

	Breakdown QualityBreakdown `json:"breakdown" yaml:"breakdown"`

	// Recommendations lists improvement suggestions in a fixed order.
	Recommendations []string `json:"recommendations" yaml:"recommendations"`

	// ScoredAt is when the score was computed.
	ScoredAt time.Time `json:"scored_at" yaml:"scored_at"`
}

// QualityBreakdown records which signals were found while scoring.
// CitationCount and ImpactFactor are nil when unknown; a non-nil zero is a
// known value.
type QualityBreakdown struct {
	HasVerificationID  bool `json:"has_verification_id" yaml:"has_verification_id"`
	HasExternalURL     bool `json:"has_external_url" yaml:"has_external_url"`
	HasAbstract        bool `json:"has_abstract" yaml:"has_abstract"`
	HasPerformanceData bool `json:"has_performance_data" yaml:"has_performance_data"`
	HasMaterialsData   bool `json:"has_materials_data" yaml:"has_materials_data"`
	IsRecent           bool `json:"is_recent" yaml:"is_recent"`
	IsReputableSource  bool `json:"is_reputable_source" yaml:"is_reputable_source"`
	HasMethodology     bool `json:"has_methodology" yaml:"has_methodology"`

	CitationCount *int     `json:"citation_count,omitempty" yaml:"citation_count,omitempty"`
	ImpactFactor  *float64 `json:"impact_factor,omitempty" yaml:"impact_factor,omitempty"`
}

// QualityBand classifies an overall score.
type QualityBand string

const (
	BandHigh   QualityBand = "high"
	BandMedium QualityBand = "medium"
	BandLow    QualityBand = "low"
)

// Band thresholds on the overall score.
const (
	HighQualityMin   = 80
	MediumQualityMin = 60
	NeedsReviewBelow = 50
)

// BandFor returns the quality band for an overall score.
func BandFor(overall int) QualityBand {
	switch {
	case overall >= HighQualityMin:
		return BandHigh
	case overall >= MediumQualityMin:
		return BandMedium
	default:
		return BandLow
	}
}

// Band returns the quality band of the score.
func (q QualityScore) Band() QualityBand {
	return BandFor(q.Overall)
}

// NeedsReview reports whether the score falls below the review threshold.
func (q QualityScore) NeedsReview() bool {
	return q.Overall < NeedsReviewBelow
}
