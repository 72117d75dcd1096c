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

// crossrefAPIBase is the CrossRef works endpoint. Declared as a var so tests
// can substitute an httptest server.
var crossrefAPIBase = "https://api.crossref.org/works/"

// CrossRefSource reads citation counts from the CrossRef works API.
type CrossRefSource struct {
	Client *http.Client
	Config types.EnrichmentConfig
	Logger *zap.Logger
}

// Name returns the source identifier.
func (s *CrossRefSource) Name() string { return "crossref" }

// crossrefResponse captures the fields we need from a CrossRef work record.
type crossrefResponse struct {
	Status  string `json:"status"`
	Message struct {
		DOI                 string `json:"DOI"`
		IsReferencedByCount *int   `json:"is-referenced-by-count"`
	} `json:"message"`
}

// CitationCount returns message.is-referenced-by-count for doi.
func (s *CrossRefSource) CitationCount(ctx context.Context, doi string) (*int, error) {
	apiURL := crossrefAPIBase + escapeDOI(doi)
	if s.Config.Mailto != "" {
		apiURL += "?" + url.Values{"mailto": {s.Config.Mailto}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating CrossRef request: %w", err)
	}
	if s.Config.UserAgent != "" {
		req.Header.Set("User-Agent", s.Config.UserAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httputil.DoWithRetry(ctx, clientOrDefault(s.Client), req, s.Config.MaxRetries, s.Logger)
	if err != nil {
		return nil, fmt.Errorf("CrossRef API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("CrossRef API returned HTTP %d", resp.StatusCode)
	}

	var cr crossrefResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("parsing CrossRef response: %w", err)
	}
	if cr.Message.IsReferencedByCount == nil {
		return nil, fmt.Errorf("CrossRef response has no is-referenced-by-count")
	}
	return cr.Message.IsReferencedByCount, nil
}

func clientOrDefault(c *http.Client) *http.Client {
	if c == nil {
		return http.DefaultClient
	}
	return c
}
