// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scoring

import (
	"strings"

	"github.com/pdiddy/messai-quality/internal/enrich"
	"github.com/pdiddy/messai-quality/pkg/types"
)

// Features holds the text-derived signals shared by the sub-score
// calculators.
type Features struct {
	// Text is the lowercase title + abstract + keywords string.
	Text string

	// Authors is the decoded author list.
	Authors []string

	RelevanceMatches   int
	MethodologyMatches int
	Quantitative       bool
	Statistical        bool
}

// ExtractFeatures scans a paper once for all text signals. It fails only
// when a serialized list field is malformed.
func ExtractFeatures(p types.Paper, t *Tables) (Features, error) {
	authors, err := p.AuthorList()
	if err != nil {
		return Features{}, err
	}
	if _, err := p.KeywordList(); err != nil {
		return Features{}, err
	}

	text := searchableText(p)
	return Features{
		Text:               text,
		Authors:            authors,
		RelevanceMatches:   countMatches(text, t.RelevanceKeywords),
		MethodologyMatches: countMatches(text, t.MethodologyPhrases),
		Quantitative:       hasQuantitativeData(text),
		Statistical:        containsAny(text, t.StatisticalPhrases),
	}, nil
}

// minAbstractLen is the length an abstract must exceed to count as present.
const minAbstractLen = 50

func hasAbstract(p types.Paper) bool {
	return len(strings.TrimSpace(p.Abstract)) > minAbstractLen
}

func hasExternalURL(p types.Paper) bool {
	return strings.TrimSpace(p.ExternalURL) != ""
}

func isReputable(p types.Paper, t *Tables) bool {
	return p.Source != "" && inList(p.Source, t.ReputableSources)
}

// Authenticity scores how verifiable the paper is:
//
//	verification ID (DOI/arXiv/PubMed/IEEE)  40
//	external URL                             20
//	reputable source tag                     20
//	abstract longer than 50 chars            10
//	non-synthetic author list                10
func Authenticity(p types.Paper, f Features, t *Tables) int {
	score := 0
	if p.HasVerificationID() {
		score += 40
	}
	if hasExternalURL(p) {
		score += 20
	}
	if isReputable(p, t) {
		score += 20
	}
	if hasAbstract(p) {
		score += 10
	}
	if len(f.Authors) > 0 && !isSyntheticAuthor(f.Authors, t.SyntheticAuthorPatterns) {
		score += 10
	}
	return capScore(score)
}

// Relevance scores fit to bioelectrochemical-systems research. Keyword
// density contributes up to 60 points and saturates once a third of the
// keywords match.
func Relevance(p types.Paper, f Features, t *Tables) int {
	score := density(f.RelevanceMatches, len(t.RelevanceKeywords), 60, 3)
	if st := strings.TrimSpace(p.SystemType); st != "" && !inList(st, t.GenericSystemTypes) {
		score += 20
	}
	if p.HasPerformanceData() {
		score += 15
	}
	if p.HasMaterialsData() {
		score += 5
	}
	return capScore(score)
}

// Completeness scores how many bibliographic and technical fields are filled.
func Completeness(p types.Paper, f Features) int {
	score := 0

	// Essential bibliographic fields.
	if strings.TrimSpace(p.Abstract) != "" {
		score += 20
	}
	if hasExternalURL(p) {
		score += 15
	}
	if len(f.Authors) > 0 {
		score += 10
	}
	if p.PublicationDate != nil && !p.PublicationDate.IsZero() {
		score += 10
	}

	// Technical data.
	if p.HasPerformanceData() {
		score += 20
	}
	if p.HasMaterialsData() {
		score += 15
	}

	// Minor fields.
	if strings.TrimSpace(p.Journal) != "" {
		score += 5
	}
	if strings.TrimSpace(p.Volume) != "" && strings.TrimSpace(p.Issue) != "" {
		score += 3
	}
	if strings.TrimSpace(p.Pages) != "" {
		score += 2
	}
	return capScore(score)
}

// Impact scores citation and venue signals. A nil citation count or impact
// factor means unknown and earns no tier bonus.
func Impact(journal string, citations *int, impactFactor *float64, t *Tables) int {
	score := 30

	if citations != nil {
		switch c := *citations; {
		case c > 100:
			score += 30
		case c > 50:
			score += 20
		case c > 10:
			score += 10
		case c > 0:
			score += 5
		}
	}

	if impactFactor != nil {
		switch f := *impactFactor; {
		case f > 10:
			score += 25
		case f > 5:
			score += 15
		case f > 2:
			score += 10
		case f > 1:
			score += 5
		}
	}

	if enrich.MatchJournal(journal, t.HighImpactJournals) {
		score += 15
	}
	return capScore(score)
}

// Methodology scores methodological rigour: base 40, up to 40 from
// indicator-phrase density (saturating at half the phrases), 10 for
// quantitative data, 10 for statistical-significance language.
func Methodology(f Features, t *Tables) int {
	score := 40 + density(f.MethodologyMatches, len(t.MethodologyPhrases), 40, 2)
	if f.Quantitative {
		score += 10
	}
	if f.Statistical {
		score += 10
	}
	return capScore(score)
}
