// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract recovers technical metadata (system type, performance
// figures, electrode materials, organisms) from paper abstracts with a
// local language model, filling fields the scorer rewards.
package extract

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pdiddy/messai-quality/internal/store"
	"github.com/pdiddy/messai-quality/pkg/types"
)

// MetadataKey is the paper metadata key recording the last extraction.
const MetadataKey = "extraction"

// validSystemTypes is the set of accepted system type tags.
var validSystemTypes = map[string]bool{
	"MFC": true,
	"MEC": true,
	"MDC": true,
	"MES": true,
	"BES": true,
}

// Upper bounds for extracted figures. Values beyond them are model noise.
const (
	maxPowerOutput = 1e6 // mW/m²
	maxEfficiency  = 100 // %
)

// Backend abstracts the language model so tests can supply a mock.
type Backend interface {
	Extract(ctx context.Context, abstract string) (Metadata, error)
}

// Metadata is the structured response from the backend for one abstract.
// Unknown values are null or empty.
type Metadata struct {
	SystemType       string   `json:"system_type" yaml:"system_type"`
	PowerOutput      *float64 `json:"power_output" yaml:"power_output"`
	Efficiency       *float64 `json:"efficiency" yaml:"efficiency"`
	AnodeMaterials   []string `json:"anode_materials" yaml:"anode_materials"`
	CathodeMaterials []string `json:"cathode_materials" yaml:"cathode_materials"`
	OrganismTypes    []string `json:"organism_types" yaml:"organism_types"`
}

// Target is the paper store the extractor reads candidates from and
// writes results to.
type Target interface {
	ListMissingExtraction(ctx context.Context, limit int) ([]types.Paper, error)
	UpdateExtracted(ctx context.Context, id string, f store.ExtractedFields) (int, error)
	SetMetadata(ctx context.Context, id, key string, value any) error
}

// BatchSummary holds counts from a batch extraction run.
type BatchSummary struct {
	Extracted int
	Skipped   int
	Failed    int
}

// Total returns the number of papers processed.
func (s BatchSummary) Total() int {
	return s.Extracted + s.Skipped + s.Failed
}

// HasFailures reports whether any papers failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// ExtractAll runs the backend over every paper that has an abstract but
// lacks technical metadata, and fills the empty fields. Fields that already
// hold a value are never overwritten, so repeated runs are idempotent.
// Papers whose extraction yields nothing new are counted as skipped.
func ExtractAll(ctx context.Context, backend Backend, target Target, cfg types.ExtractionConfig, log *zap.Logger, w io.Writer) (BatchSummary, error) {
	if log == nil {
		log = zap.NewNop()
	}
	papers, err := target.ListMissingExtraction(ctx, cfg.Limit)
	if err != nil {
		return BatchSummary{}, fmt.Errorf("listing extraction candidates: %w", err)
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	var limiter *rate.Limiter
	if cfg.Delay > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.Delay), 1)
	}

	var summary BatchSummary
	for _, p := range papers {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return summary, err
			}
		}

		fmt.Fprintf(w, "extracting %s\n", p.ID)
		meta, err := callWithRetry(ctx, backend, p.Abstract, maxRetries)
		if err != nil {
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			fmt.Fprintf(w, "failed  %s: %v\n", p.ID, err)
			log.Warn("extraction failed", zap.String("paper", p.ID), zap.Error(err))
			summary.Failed++
			continue
		}
		if errs := validate(meta); len(errs) > 0 {
			fmt.Fprintf(w, "failed  %s: validation: %s\n", p.ID, strings.Join(errs, "; "))
			summary.Failed++
			continue
		}

		filled, err := target.UpdateExtracted(ctx, p.ID, toFields(meta))
		if err != nil {
			fmt.Fprintf(w, "failed  %s: write error: %v\n", p.ID, err)
			summary.Failed++
			continue
		}
		if err := target.SetMetadata(ctx, p.ID, MetadataKey, map[string]any{
			"model":        cfg.Model,
			"fields":       filled,
			"extracted_at": time.Now().UTC().Format(time.RFC3339),
		}); err != nil {
			log.Warn("recording extraction metadata failed", zap.String("paper", p.ID), zap.Error(err))
		}

		if filled == 0 {
			fmt.Fprintf(w, "skipped %s (nothing new)\n", p.ID)
			summary.Skipped++
			continue
		}
		fmt.Fprintf(w, "extracted %s (%d fields)\n", p.ID, filled)
		summary.Extracted++
	}

	fmt.Fprintf(w, "\nExtraction summary: %d extracted, %d skipped, %d failed (total: %d)\n",
		summary.Extracted, summary.Skipped, summary.Failed, summary.Total())
	return summary, nil
}

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// callWithRetry calls the backend with exponential backoff.
func callWithRetry(ctx context.Context, backend Backend, abstract string, maxRetries int) (Metadata, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return Metadata{}, ctx.Err()
			case <-time.After(backoff):
			}
		}

		meta, err := backend.Extract(ctx, abstract)
		if err == nil {
			return meta, nil
		}
		lastErr = err
	}
	return Metadata{}, fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}

// validate checks the backend response, returning one message per invalid
// field. System types are compared case-insensitively.
func validate(m Metadata) []string {
	var errs []string
	if st := strings.ToUpper(strings.TrimSpace(m.SystemType)); st != "" && !validSystemTypes[st] {
		errs = append(errs, fmt.Sprintf("invalid system type %q", m.SystemType))
	}
	if m.PowerOutput != nil && (*m.PowerOutput < 0 || *m.PowerOutput > maxPowerOutput) {
		errs = append(errs, fmt.Sprintf("power output %g out of range [0,%g]", *m.PowerOutput, float64(maxPowerOutput)))
	}
	if m.Efficiency != nil && (*m.Efficiency < 0 || *m.Efficiency > maxEfficiency) {
		errs = append(errs, fmt.Sprintf("efficiency %g out of range [0,%d]", *m.Efficiency, maxEfficiency))
	}
	return errs
}

// toFields converts validated metadata to store fields, trimming blanks.
func toFields(m Metadata) store.ExtractedFields {
	return store.ExtractedFields{
		SystemType:       strings.ToUpper(strings.TrimSpace(m.SystemType)),
		PowerOutput:      m.PowerOutput,
		Efficiency:       m.Efficiency,
		AnodeMaterials:   cleanList(m.AnodeMaterials),
		CathodeMaterials: cleanList(m.CathodeMaterials),
		OrganismTypes:    cleanList(m.OrganismTypes),
	}
}

func cleanList(items []string) []string {
	var out []string
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
