// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import "strings"

// ExactPrefix marks a journal pattern that must equal the whole journal
// name. Without it a pattern matches anywhere inside the name, so a bare
// "science" would match "Science of the Total Environment".
const ExactPrefix = "exact:"

// ImpactFactorTable maps lowercase journal patterns to impact factors. It
// is a static table; no network call is made.
type ImpactFactorTable map[string]float64

// Lookup returns the impact factor of the table entry matching journal, or
// nil when no entry matches. When several entries match, the longest wins,
// so "energy & environmental science" is preferred over "environmental
// science".
func (t ImpactFactorTable) Lookup(journal string) *float64 {
	j := normalizeJournal(journal)
	if j == "" {
		return nil
	}

	best, bestLen := "", 0
	for pattern := range t {
		n := matchLen(j, pattern)
		if n == 0 {
			continue
		}
		if n > bestLen || (n == bestLen && pattern < best) {
			best, bestLen = pattern, n
		}
	}
	if best == "" {
		return nil
	}
	f := t[best]
	return &f
}

// MatchJournal reports whether journal matches any of the patterns. Plain
// patterns match case-insensitively anywhere in the name; patterns with
// ExactPrefix must equal the whole name.
func MatchJournal(journal string, patterns []string) bool {
	j := normalizeJournal(journal)
	if j == "" {
		return false
	}
	for _, p := range patterns {
		if matchLen(j, p) > 0 {
			return true
		}
	}
	return false
}

// matchLen returns the length of the matched pattern text, or 0 when the
// pattern does not match the normalized journal name j.
func matchLen(j, pattern string) int {
	p := strings.ToLower(strings.TrimSpace(pattern))
	if name, ok := strings.CutPrefix(p, ExactPrefix); ok {
		name = normalizeJournal(name)
		if name == "" || name != j {
			return 0
		}
		return len(name)
	}
	if p == "" || !strings.Contains(j, p) {
		return 0
	}
	return len(p)
}

func normalizeJournal(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
