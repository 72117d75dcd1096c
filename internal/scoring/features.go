// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scoring

import (
	"regexp"
	"strings"

	"github.com/pdiddy/messai-quality/pkg/types"
)

// quantitativePattern matches a number followed by a measurement unit,
// e.g. "1.2 mW", "450mV", "20 mAh", "85%", "30 °C", "200 mg/L" (after
// lowercasing). Units match as prefixes, except a bare "v" which must end
// the word or spell "volt(s)", so "3 very" is not a measurement.
var quantitativePattern = regexp.MustCompile(`\d+(?:\.\d+)?\s*(?:%|°c|mw|ma|mv|mg/l|v(?:olts?)?\b)`)

// searchableText joins title, abstract, and keywords into one lowercase
// string for substring scanning. Keywords are used in their serialized
// form so a malformed keyword list still contributes its text.
func searchableText(p types.Paper) string {
	parts := make([]string, 0, 3)
	for _, s := range []string{p.Title, p.Abstract, p.Keywords} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// countMatches returns how many terms occur in text as substrings.
// text and terms are expected to be lowercase already.
func countMatches(text string, terms []string) int {
	n := 0
	for _, term := range terms {
		if term != "" && strings.Contains(text, term) {
			n++
		}
	}
	return n
}

// containsAny reports whether text contains any of the terms.
func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if term != "" && strings.Contains(text, term) {
			return true
		}
	}
	return false
}

func hasQuantitativeData(text string) bool {
	return quantitativePattern.MatchString(text)
}

// isSyntheticAuthor reports whether any author name matches a deny-listed
// pattern such as "AI Research Assistant".
func isSyntheticAuthor(authors []string, patterns []string) bool {
	for _, a := range authors {
		if containsAny(strings.ToLower(a), patterns) {
			return true
		}
	}
	return false
}

// inList reports whether value, lowercased and trimmed, equals an entry.
func inList(value string, list []string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

// density scales matches/total to max points, saturating once the share of
// matched terms reaches 1/saturation.
func density(matches, total, max, saturation int) int {
	if total == 0 || matches <= 0 {
		return 0
	}
	// Round half up in integer arithmetic: matches*max*saturation/total.
	pts := (2*matches*max*saturation + total) / (2 * total)
	if pts > max {
		return max
	}
	return pts
}

func capScore(score int) int {
	if score > 100 {
		return 100
	}
	if score < 0 {
		return 0
	}
	return score
}
