// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/pdiddy/messai-quality/internal/httputil"
	"github.com/pdiddy/messai-quality/pkg/types"
)

// openAlexAPIBase is the OpenAlex works endpoint. Declared as a var so tests
// can substitute an httptest server.
var openAlexAPIBase = "https://api.openalex.org/works/"

// OpenAlexSource reads citation counts from the OpenAlex works API.
type OpenAlexSource struct {
	Client *http.Client
	Config types.EnrichmentConfig
	Logger *zap.Logger
}

// Name returns the source identifier.
func (s *OpenAlexSource) Name() string { return "openalex" }

// openAlexWork captures the fields we need from an OpenAlex work record.
type openAlexWork struct {
	ID           string `json:"id"`
	CitedByCount *int   `json:"cited_by_count"`
}

// CitationCount returns cited_by_count for doi.
func (s *OpenAlexSource) CitationCount(ctx context.Context, doi string) (*int, error) {
	apiURL := openAlexAPIBase + "https://doi.org/" + escapeDOI(doi)
	if s.Config.Mailto != "" {
		apiURL += "?" + url.Values{"mailto": {s.Config.Mailto}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating OpenAlex request: %w", err)
	}
	if s.Config.UserAgent != "" {
		req.Header.Set("User-Agent", s.Config.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, clientOrDefault(s.Client), req, s.Config.MaxRetries, s.Logger)
	if err != nil {
		return nil, fmt.Errorf("OpenAlex API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenAlex API returned HTTP %d", resp.StatusCode)
	}

	var work openAlexWork
	if err := json.NewDecoder(resp.Body).Decode(&work); err != nil {
		return nil, fmt.Errorf("parsing OpenAlex response: %w", err)
	}
	if work.CitedByCount == nil {
		return nil, fmt.Errorf("OpenAlex response has no cited_by_count")
	}
	return work.CitedByCount, nil
}

// NewSource returns the citation source selected by cfg.Backend, or nil for
// "none". An empty backend selects CrossRef.
func NewSource(cfg types.EnrichmentConfig, client *http.Client, log *zap.Logger) (CitationSource, error) {
	switch cfg.Backend {
	case "", types.CitationCrossRef:
		return &CrossRefSource{Client: client, Config: cfg, Logger: log}, nil
	case types.CitationOpenAlex:
		return &OpenAlexSource{Client: client, Config: cfg, Logger: log}, nil
	case types.CitationNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown citation backend %q (want crossref, openalex, or none)", cfg.Backend)
	}
}
