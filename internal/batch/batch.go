// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch scores a collection of papers one at a time, writes each
// score back through a Persister, and accumulates a run report.
//
// Papers are processed sequentially with a fixed delay between them so the
// citation API is never hit concurrently. A failure on one paper is recorded
// in the report and never stops the run.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/messai-quality/pkg/types"
)

// DefaultDelay is the pause between consecutive papers.
const DefaultDelay = 100 * time.Millisecond

// ErrPersistenceUnavailable is returned when every score write-back in a
// run failed.
var ErrPersistenceUnavailable = errors.New("persistence unavailable: every score write failed")

// Scorer computes the quality score of one paper.
type Scorer interface {
	Score(ctx context.Context, p types.Paper) (types.QualityScore, error)
}

// Persister attaches a computed score to the paper's stored record.
type Persister interface {
	SaveQualityScore(ctx context.Context, id string, score types.QualityScore) error
}

// PersisterFunc adapts a function to the Persister interface.
type PersisterFunc func(ctx context.Context, id string, score types.QualityScore) error

// SaveQualityScore calls f.
func (f PersisterFunc) SaveQualityScore(ctx context.Context, id string, score types.QualityScore) error {
	return f(ctx, id, score)
}

// Runner drives a scoring run. Scorer is required; the other fields are
// optional. A nil Persister skips write-back.
type Runner struct {
	Scorer    Scorer
	Persister Persister

	// Delay is the pause after one paper finishes and before the next
	// starts. Zero disables the pause.
	Delay time.Duration

	// Limit caps the number of papers scored. Zero or less scores all.
	Limit int

	Logger  *zap.Logger
	Metrics *Metrics

	// Out receives per-paper progress lines and the final summary.
	Out io.Writer
}

// Run scores papers in order and returns the run report. The report holds
// exactly one entry per processed paper. Run returns a non-nil error only
// when ctx is cancelled, in which case the report covers the papers
// processed so far, or when every write-back failed, in which case the
// full report is returned with ErrPersistenceUnavailable.
func (r *Runner) Run(ctx context.Context, papers []types.Paper) (*Report, error) {
	if r.Scorer == nil {
		return nil, fmt.Errorf("batch runner has no scorer")
	}
	log := r.Logger
	if log == nil {
		log = zap.NewNop()
	}
	out := r.Out
	if out == nil {
		out = io.Discard
	}
	if r.Limit > 0 && len(papers) > r.Limit {
		papers = papers[:r.Limit]
	}

	report := newReport()
	log.Info("scoring run started", zap.String("run_id", report.RunID), zap.Int("papers", len(papers)))

	writes, writeFailures := 0, 0
	for i, p := range papers {
		if i > 0 && r.Delay > 0 {
			select {
			case <-ctx.Done():
				return r.finish(report, out, log), ctx.Err()
			case <-time.After(r.Delay):
			}
		}
		if err := ctx.Err(); err != nil {
			return r.finish(report, out, log), err
		}

		entry := r.scoreOne(ctx, p, log)
		if len(entry.Issues) == 0 && r.Persister != nil {
			writes++
			err := r.Persister.SaveQualityScore(ctx, p.ID, entry.Score)
			r.Metrics.observePersist(err)
			if err != nil {
				writeFailures++
				entry.Issues = append(entry.Issues, fmt.Sprintf("persist: %v", err))
				entry.PersistFailed = true
				log.Warn("saving quality score failed", zap.String("paper", p.ID), zap.Error(err))
			}
		}
		report.Entries = append(report.Entries, entry)

		if entry.Failed {
			fmt.Fprintf(out, "[%d/%d] failed:  %s (%s)\n", i+1, len(papers), p.ID, entry.Issues[0])
		} else {
			fmt.Fprintf(out, "[%d/%d] scored:  %s overall=%d (%s)\n",
				i+1, len(papers), p.ID, entry.Score.Overall, entry.Score.Band())
		}
	}

	r.finish(report, out, log)
	if writes > 0 && writeFailures == writes {
		return report, ErrPersistenceUnavailable
	}
	return report, nil
}

// scoreOne scores a single paper, converting errors and panics into a
// zero score with issues.
func (r *Runner) scoreOne(ctx context.Context, p types.Paper, log *zap.Logger) (entry Entry) {
	entry = Entry{ID: p.ID, Title: p.Title}
	defer func() {
		if rec := recover(); rec != nil {
			entry.Score = failedScore()
			entry.Failed = true
			entry.Issues = []string{fmt.Sprintf("scoring panicked: %v", rec)}
			r.Metrics.observeFailed()
			log.Error("scoring panicked", zap.String("paper", p.ID), zap.Any("panic", rec))
		}
	}()

	score, err := r.Scorer.Score(ctx, p)
	if err != nil {
		entry.Score = failedScore()
		entry.Failed = true
		entry.Issues = []string{err.Error()}
		r.Metrics.observeFailed()
		log.Warn("scoring failed", zap.String("paper", p.ID), zap.Error(err))
		return entry
	}
	entry.Score = score
	r.Metrics.observeScored(p, score)
	log.Debug("paper scored",
		zap.String("paper", p.ID),
		zap.Int("overall", score.Overall),
		zap.Intp("citations", score.Breakdown.CitationCount),
	)
	return entry
}

func (r *Runner) finish(report *Report, out io.Writer, log *zap.Logger) *Report {
	report.FinishedAt = time.Now().UTC()
	report.Summary = summarize(report.Entries)
	fmt.Fprintln(out)
	report.FormatSummary(out)
	log.Info("scoring run finished",
		zap.String("run_id", report.RunID),
		zap.Int("scored", report.Summary.Scored),
		zap.Int("failed", report.Summary.Failed),
		zap.Float64("average", report.Summary.Average),
	)
	return report
}

func failedScore() types.QualityScore {
	return types.QualityScore{Recommendations: []string{}, ScoredAt: time.Now().UTC()}
}
