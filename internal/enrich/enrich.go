// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrich resolves the optional impact signals used while scoring a
// paper: citation counts from a bibliographic API and journal impact
// factors from a static table. Lookups are best effort; every failure
// degrades to "unknown" (nil).
package enrich

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds a single citation lookup when none is configured.
const DefaultTimeout = 10 * time.Second

// CitationSource resolves the citation count of a paper by DOI. A nil
// count with a nil error means the source has no count for the DOI.
type CitationSource interface {
	Name() string
	CitationCount(ctx context.Context, doi string) (*int, error)
}

// Lookup queries src for doi, bounded by timeout. Errors, timeouts, and
// panics inside src all yield nil. Lookup never blocks longer than timeout
// even if src ignores its context.
func Lookup(ctx context.Context, src CitationSource, doi string, timeout time.Duration, log *zap.Logger) *int {
	if src == nil {
		return nil
	}
	doi = NormalizeDOI(doi)
	if doi == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		count *int
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- result{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		n, err := src.CitationCount(ctx, doi)
		ch <- result{count: n, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			log.Debug("citation lookup failed",
				zap.String("source", src.Name()), zap.String("doi", doi), zap.Error(r.err))
			return nil
		}
		if r.count != nil && *r.count < 0 {
			return nil
		}
		return r.count
	case <-ctx.Done():
		log.Debug("citation lookup timed out",
			zap.String("source", src.Name()), zap.String("doi", doi), zap.Duration("timeout", timeout))
		return nil
	}
}

// NormalizeDOI strips resolver prefixes ("https://doi.org/", "doi:") and
// surrounding whitespace from a DOI.
func NormalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	lower := strings.ToLower(doi)
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "https://dx.doi.org/", "http://dx.doi.org/", "doi:"} {
		if strings.HasPrefix(lower, prefix) {
			return strings.TrimSpace(doi[len(prefix):])
		}
	}
	return doi
}

// escapeDOI escapes each "/"-separated segment of doi for use in a URL
// path. DOIs may carry "#", "?" and "<" (legacy SICI suffixes), which would
// otherwise truncate the path or start a query.
func escapeDOI(doi string) string {
	segs := strings.Split(doi, "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return strings.Join(segs, "/")
}
