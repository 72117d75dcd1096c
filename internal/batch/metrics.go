// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pdiddy/messai-quality/pkg/types"
)

// Citation lookup outcomes recorded by Metrics.
const (
	LookupResolved = "resolved"
	LookupUnknown  = "unknown"
	LookupNoDOI    = "no_doi"
)

// Metrics collects counters for scoring runs on a private registry. The
// registry can be dumped in Prometheus text format with WriteTextfile.
type Metrics struct {
	registry *prometheus.Registry

	papers   *prometheus.CounterVec
	lookups  *prometheus.CounterVec
	overall  prometheus.Histogram
	persists *prometheus.CounterVec
}

// NewMetrics creates and registers the scoring metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		papers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "messai_quality_papers_total",
				Help: "Papers processed by scoring runs, by outcome and band.",
			},
			[]string{"outcome", "band"},
		),
		lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "messai_quality_citation_lookups_total",
				Help: "Citation count lookups, by outcome.",
			},
			[]string{"outcome"},
		),
		overall: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "messai_quality_overall_score",
				Help:    "Distribution of overall quality scores.",
				Buckets: prometheus.LinearBuckets(10, 10, 10),
			},
		),
		persists: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "messai_quality_persist_total",
				Help: "Score write-backs, by status.",
			},
			[]string{"status"},
		),
	}
	m.registry.MustRegister(m.papers, m.lookups, m.overall, m.persists)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) observeScored(p types.Paper, score types.QualityScore) {
	if m == nil {
		return
	}
	m.papers.WithLabelValues("scored", string(score.Band())).Inc()
	m.overall.Observe(float64(score.Overall))
	switch {
	case p.DOI == "":
		m.lookups.WithLabelValues(LookupNoDOI).Inc()
	case score.Breakdown.CitationCount != nil:
		m.lookups.WithLabelValues(LookupResolved).Inc()
	default:
		m.lookups.WithLabelValues(LookupUnknown).Inc()
	}
}

func (m *Metrics) observeFailed() {
	if m == nil {
		return
	}
	m.papers.WithLabelValues("failed", string(types.BandLow)).Inc()
}

func (m *Metrics) observePersist(err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.persists.WithLabelValues(status).Inc()
}

// WriteTextfile writes the current metric values to path in the Prometheus
// text exposition format, for the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
