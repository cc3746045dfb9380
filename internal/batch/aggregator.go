// Package batch runs the stats/classify/score pipeline across many
// genomes and merges the results into a comparative view.
package batch

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seqlab/enzymescan/internal/classify"
	"github.com/seqlab/enzymescan/internal/fasta"
	"github.com/seqlab/enzymescan/internal/score"
	"github.com/seqlab/enzymescan/internal/stats"
)

// ErrDuplicateGenome indicates two batch inputs share a genome ID.
var ErrDuplicateGenome = errors.New("duplicate genome identifier in batch")

// Genome is one batch input: an assembly plus its gene annotations.
type Genome struct {
	ID        string
	Sequences []fasta.Record
	Genes     []classify.GeneRecord
}

// GenomeResult is the outcome of processing one genome. Err is set
// when processing failed; the entry is still present in the batch
// result so failed genomes are never silently omitted.
type GenomeResult struct {
	GenomeID     string
	Stats        *stats.AssemblyStats
	Candidates   []score.CandidateScore
	Unclassified int // genes with no family match, kept for diagnostics
	Err          error
}

// Result maps every requested genome to its outcome.
type Result struct {
	RunID   string
	Order   []string // genome IDs in input order
	Genomes map[string]*GenomeResult
	Partial bool // true when cancellation abandoned in-flight genomes
}

// BatchCandidate is a candidate keyed for cross-genome comparison.
type BatchCandidate struct {
	GenomeID string
	score.CandidateScore
}

// TopN returns the best n candidates across all genomes, ordered by
// descending score with ties broken by (genome ID, gene ID). n <= 0
// returns every candidate.
func (r *Result) TopN(n int) []BatchCandidate {
	var all []BatchCandidate
	for _, id := range r.Order {
		gr := r.Genomes[id]
		if gr.Err != nil {
			continue
		}
		for _, c := range gr.Candidates {
			all = append(all, BatchCandidate{GenomeID: id, CandidateScore: c})
		}
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].Score != all[j].Score {
			return all[i].Score > all[j].Score
		}
		if all[i].GenomeID != all[j].GenomeID {
			return all[i].GenomeID < all[j].GenomeID
		}
		return all[i].Gene.ID < all[j].Gene.ID
	})

	if n > 0 && len(all) > n {
		all = all[:n]
	}
	return all
}

// Failed returns the IDs of genomes whose processing failed, in input order.
func (r *Result) Failed() []string {
	var failed []string
	for _, id := range r.Order {
		if r.Genomes[id].Err != nil {
			failed = append(failed, id)
		}
	}
	return failed
}

// Aggregator orchestrates per-genome processing across a worker pool.
type Aggregator struct {
	classifier *classify.Classifier
	scorer     *score.Scorer
	statsOpts  stats.Options
	workers    int
	logger     *zap.Logger
}

// NewAggregator creates an aggregator. A worker count of 0 uses one
// worker per CPU.
func NewAggregator(classifier *classify.Classifier, scorer *score.Scorer, workers int) *Aggregator {
	return &Aggregator{
		classifier: classifier,
		scorer:     scorer,
		workers:    workers,
		logger:     zap.NewNop(),
	}
}

// SetLogger sets the logger for per-genome progress and warnings.
func (a *Aggregator) SetLogger(l *zap.Logger) {
	a.logger = l
}

// SetStatsOptions configures assembly statistics computation.
func (a *Aggregator) SetStatsOptions(opts stats.Options) {
	a.statsOpts = opts
}

// Run processes every genome and returns a result covering all of
// them. Per-genome failures are recorded, never fatal. When ctx is
// cancelled, genomes not yet started are recorded with the context
// error and completed results are retained.
func (a *Aggregator) Run(ctx context.Context, genomes []Genome) (*Result, error) {
	if len(genomes) == 0 {
		return nil, stats.ErrEmptyInput
	}

	seen := make(map[string]bool, len(genomes))
	order := make([]string, len(genomes))
	for i, g := range genomes {
		if seen[g.ID] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateGenome, g.ID)
		}
		seen[g.ID] = true
		order[i] = g.ID
	}

	result := &Result{
		RunID:   uuid.NewString(),
		Order:   order,
		Genomes: make(map[string]*GenomeResult, len(genomes)),
	}
	a.logger.Info("starting batch",
		zap.String("run_id", result.RunID),
		zap.Int("genomes", len(genomes)),
		zap.Int("workers", a.workers))

	tasks := make(chan task, len(genomes))
	for i, g := range genomes {
		tasks <- task{Seq: i, Genome: g}
	}
	close(tasks)

	results := fanOut(tasks, a.workers, func(t task) *GenomeResult {
		// Abandon work queued after cancellation; completed results
		// are still reported as a partial batch.
		if err := ctx.Err(); err != nil {
			return &GenomeResult{GenomeID: t.Genome.ID, Err: err}
		}
		return a.processGenome(t.Genome)
	})

	collectOrdered(results, func(gr *GenomeResult) {
		result.Genomes[gr.GenomeID] = gr
		if gr.Err != nil {
			if errors.Is(gr.Err, context.Canceled) || errors.Is(gr.Err, context.DeadlineExceeded) {
				result.Partial = true
				return
			}
			a.logger.Warn("genome failed",
				zap.String("genome", gr.GenomeID),
				zap.Error(gr.Err))
		}
	})

	return result, nil
}

// processGenome runs the full single-genome pipeline: assembly stats,
// classification, then scoring.
func (a *Aggregator) processGenome(g Genome) *GenomeResult {
	gr := &GenomeResult{GenomeID: g.ID}

	assembly, err := stats.Compute(g.Sequences, a.statsOpts)
	if err != nil {
		gr.Err = fmt.Errorf("assembly stats: %w", err)
		return gr
	}
	gr.Stats = assembly

	if len(g.Genes) == 0 {
		gr.Err = fmt.Errorf("gene records: %w", stats.ErrEmptyInput)
		return gr
	}

	classified := a.classifier.ClassifyAll(g.Genes)
	for _, c := range classified {
		if !c.Candidate() {
			gr.Unclassified++
		}
	}

	gr.Candidates = a.scorer.Rank(classified)
	a.logger.Debug("genome processed",
		zap.String("genome", g.ID),
		zap.Int("genes", len(g.Genes)),
		zap.Int("candidates", len(gr.Candidates)),
		zap.Int("unclassified", gr.Unclassified))

	return gr
}
