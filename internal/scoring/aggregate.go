// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scoring

import "github.com/pdiddy/messai-quality/pkg/types"

// Weights are the sub-score weights in percent. They sum to 100.
const (
	WeightAuthenticity = 30
	WeightRelevance    = 25
	WeightCompleteness = 20
	WeightImpact       = 15
	WeightMethodology  = 10
)

// Recommendation thresholds. Methodology has none.
const (
	AuthenticityThreshold = 70
	RelevanceThreshold    = 60
	CompletenessThreshold = 70
	ImpactThreshold       = 50
)

// SubScores holds the five sub-scores, each in [0, 100].
type SubScores struct {
	Authenticity int
	Relevance    int
	Completeness int
	Impact       int
	Methodology  int
}

// Overall returns round(0.30·a + 0.25·r + 0.20·c + 0.15·i + 0.10·m).
// The sum is computed in integer hundredths so halves round up exactly.
func Overall(s SubScores) int {
	sum := WeightAuthenticity*s.Authenticity +
		WeightRelevance*s.Relevance +
		WeightCompleteness*s.Completeness +
		WeightImpact*s.Impact +
		WeightMethodology*s.Methodology
	return capScore((sum + 50) / 100)
}

// Recommendations returns improvement suggestions for every tracked
// sub-score below its threshold, in the order authenticity, relevance,
// completeness, impact. It returns an empty (non-nil) slice when nothing
// is below threshold.
func Recommendations(s SubScores, b types.QualityBreakdown) []string {
	recs := []string{}

	if s.Authenticity < AuthenticityThreshold {
		n := len(recs)
		if !b.HasVerificationID {
			recs = append(recs, "Add DOI, PubMed ID, or arXiv ID for verification")
		}
		if !b.HasExternalURL {
			recs = append(recs, "Add a link to the original publication")
		}
		if !b.HasAbstract {
			recs = append(recs, "Add the full paper abstract")
		}
		if len(recs) == n {
			recs = append(recs, "Confirm the paper's provenance and author list")
		}
	}

	if s.Relevance < RelevanceThreshold {
		recs = append(recs, "Verify the paper is relevant to bioelectrochemical systems research")
		if !b.HasPerformanceData {
			recs = append(recs, "Extract performance metrics (power output, efficiency)")
		}
	}

	if s.Completeness < CompletenessThreshold {
		n := len(recs)
		if !b.HasMaterialsData {
			recs = append(recs, "Add electrode material information")
		}
		if !b.HasPerformanceData && s.Relevance >= RelevanceThreshold {
			recs = append(recs, "Extract performance metrics (power output, efficiency)")
		}
		if len(recs) == n {
			recs = append(recs, "Complete bibliographic details (journal, volume, issue, pages)")
		}
	}

	if s.Impact < ImpactThreshold {
		if b.CitationCount == nil {
			recs = append(recs, "Resolve the citation count to assess impact")
		} else {
			recs = append(recs, "Low citation impact; check for a more recent or widely cited source")
		}
	}

	return recs
}
