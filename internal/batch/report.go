// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/messai-quality/pkg/types"
)

// Entry is the outcome for one paper.
type Entry struct {
	ID     string             `json:"id" yaml:"id"`
	Title  string             `json:"title" yaml:"title"`
	Score  types.QualityScore `json:"score" yaml:"score"`
	Issues []string           `json:"issues,omitempty" yaml:"issues,omitempty"`

	// Failed is set when scoring the paper raised an error or panic.
	Failed bool `json:"failed,omitempty" yaml:"failed,omitempty"`

	// PersistFailed is set when the score could not be written back.
	PersistFailed bool `json:"persist_failed,omitempty" yaml:"persist_failed,omitempty"`
}

// ReviewItem names a paper whose score fell below the review threshold.
type ReviewItem struct {
	ID      string `json:"id" yaml:"id"`
	Title   string `json:"title" yaml:"title"`
	Overall int    `json:"overall" yaml:"overall"`
}

// Summary aggregates a run. Average and band counts cover scored papers
// only; failed papers are counted in Failed.
type Summary struct {
	Total       int          `json:"total" yaml:"total"`
	Scored      int          `json:"scored" yaml:"scored"`
	Failed      int          `json:"failed" yaml:"failed"`
	Average     float64      `json:"average" yaml:"average"`
	High        int          `json:"high" yaml:"high"`
	Medium      int          `json:"medium" yaml:"medium"`
	Low         int          `json:"low" yaml:"low"`
	NeedsReview []ReviewItem `json:"needs_review" yaml:"needs_review"`
}

// HasFailures reports whether any paper failed to score.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Report is the record of one scoring run.
type Report struct {
	RunID      string    `json:"run_id" yaml:"run_id"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
	Entries    []Entry   `json:"entries" yaml:"entries"`
	Summary    Summary   `json:"summary" yaml:"summary"`
}

func newReport() *Report {
	return &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Entries:   []Entry{},
	}
}

func summarize(entries []Entry) Summary {
	s := Summary{Total: len(entries), NeedsReview: []ReviewItem{}}
	sum := 0
	for _, e := range entries {
		if e.Failed {
			s.Failed++
			continue
		}
		s.Scored++
		sum += e.Score.Overall
		switch e.Score.Band() {
		case types.BandHigh:
			s.High++
		case types.BandMedium:
			s.Medium++
		default:
			s.Low++
		}
		if e.Score.NeedsReview() {
			s.NeedsReview = append(s.NeedsReview, ReviewItem{ID: e.ID, Title: e.Title, Overall: e.Score.Overall})
		}
	}
	if s.Scored > 0 {
		s.Average = float64(sum) / float64(s.Scored)
	}
	return s
}

// FormatSummary prints the run summary in a human-readable form.
func (r *Report) FormatSummary(w io.Writer) {
	s := r.Summary
	fmt.Fprintf(w, "Scoring summary: %d scored, %d failed (total: %d)\n", s.Scored, s.Failed, s.Total)
	fmt.Fprintf(w, "  average overall: %.1f\n", s.Average)
	fmt.Fprintf(w, "  high (>=%d): %d  medium (%d-%d): %d  low (<%d): %d\n",
		types.HighQualityMin, s.High,
		types.MediumQualityMin, types.HighQualityMin-1, s.Medium,
		types.MediumQualityMin, s.Low)
	if len(s.NeedsReview) > 0 {
		fmt.Fprintf(w, "  needs review (<%d): %d\n", types.NeedsReviewBelow, len(s.NeedsReview))
		for _, item := range s.NeedsReview {
			fmt.Fprintf(w, "    %3d  %s  %s\n", item.Overall, item.ID, item.Title)
		}
	}
}

// WriteJSON writes the report to path as indented JSON, creating parent
// directories as needed.
func (r *Report) WriteJSON(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// WriteYAML writes the report to path as YAML.
func (r *Report) WriteYAML(path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	return writeFile(path, data)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return nil
}
