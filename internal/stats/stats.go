// Package stats computes assembly-quality statistics from sequence records.
package stats

import (
	"errors"
	"fmt"
	"sort"

	"github.com/seqlab/enzymescan/internal/fasta"
)

// Sentinel errors for invalid input.
var (
	ErrEmptyInput      = errors.New("no sequence records supplied")
	ErrInvalidSequence = errors.New("sequence record has no residues")
)

// Quality tiers derived from N50.
const (
	QualityExcellent = "excellent" // N50 > 50 kb
	QualityMedium    = "medium"    // N50 > 10 kb
	QualityLow       = "low"
)

// N50 thresholds for assembly quality tiers, in bases.
const (
	excellentN50 = 50000
	mediumN50    = 10000
)

// Options controls statistics computation.
type Options struct {
	// MinLength drops records shorter than this many residues before
	// any statistic is computed. Zero disables filtering.
	MinLength int
}

// AssemblyStats is an immutable summary of an assembly.
type AssemblyStats struct {
	SequenceCount int
	TotalLength   int
	GCFraction    float64 // over unambiguous A/C/G/T only
	N50           int
	N90           int
	MaxLength     int
	MinLength     int
	MeanLength    float64
	MedianLength  int
}

// Quality returns the N50-based quality tier of the assembly.
func (s *AssemblyStats) Quality() string {
	switch {
	case s.N50 > excellentN50:
		return QualityExcellent
	case s.N50 > mediumN50:
		return QualityMedium
	default:
		return QualityLow
	}
}

// Compute derives assembly statistics from an ordered set of records.
// It is a pure function: records are not mutated and the result does
// not depend on input order beyond the documented N50/N90 tie-break.
func Compute(records []fasta.Record, opts Options) (*AssemblyStats, error) {
	if len(records) == 0 {
		return nil, ErrEmptyInput
	}
	for _, r := range records {
		if r.Length() == 0 {
			return nil, fmt.Errorf("record %q: %w", r.ID, ErrInvalidSequence)
		}
	}

	if opts.MinLength > 0 {
		filtered := make([]fasta.Record, 0, len(records))
		for _, r := range records {
			if r.Length() >= opts.MinLength {
				filtered = append(filtered, r)
			}
		}
		records = filtered
		if len(records) == 0 {
			return nil, fmt.Errorf("min length %d: %w", opts.MinLength, ErrEmptyInput)
		}
	}

	lengths := make([]int, len(records))
	total := 0
	gcCount := 0
	acgtCount := 0
	for i, r := range records {
		lengths[i] = r.Length()
		total += lengths[i]
		gc, acgt := countGC(r.Seq)
		gcCount += gc
		acgtCount += acgt
	}

	s := &AssemblyStats{
		SequenceCount: len(records),
		TotalLength:   total,
		N50:           nx(lengths, 0.5, total),
		N90:           nx(lengths, 0.9, total),
		MeanLength:    float64(total) / float64(len(records)),
	}

	if acgtCount > 0 {
		s.GCFraction = float64(gcCount) / float64(acgtCount)
	}

	sorted := append([]int(nil), lengths...)
	sort.Ints(sorted)
	s.MinLength = sorted[0]
	s.MaxLength = sorted[len(sorted)-1]
	s.MedianLength = sorted[len(sorted)/2]

	return s, nil
}

// nx returns the length at which the cumulative sum of lengths, taken
// in descending order, first reaches the given fraction of the total.
// Equal lengths keep their input order (stable sort), which makes the
// returned value identical for any permutation of the input.
func nx(lengths []int, fraction float64, total int) int {
	sorted := append([]int(nil), lengths...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i] > sorted[j] })

	threshold := fraction * float64(total)
	cumulative := 0
	for _, l := range sorted {
		cumulative += l
		if float64(cumulative) >= threshold {
			return l
		}
	}
	return 0
}

// countGC counts G/C residues and total unambiguous A/C/G/T residues.
// Ambiguity codes (N, IUPAC degenerate bases) are excluded from both.
func countGC(seq string) (gc, acgt int) {
	for i := 0; i < len(seq); i++ {
		switch seq[i] {
		case 'G', 'C', 'g', 'c':
			gc++
			acgt++
		case 'A', 'T', 'a', 't':
			acgt++
		}
	}
	return gc, acgt
}
