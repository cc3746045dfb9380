// Package score ranks classified genes by a weighted multi-criteria score.
package score

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/seqlab/enzymescan/internal/classify"
)

// ErrInvalidWeightConfig indicates a malformed weight configuration.
// Treat it as fatal: bad weights would invalidate every result.
var ErrInvalidWeightConfig = errors.New("invalid weight configuration")

// Reference ranges used when the batch has no usable spread for a
// feature (single candidate, or all values equal).
const (
	refMinLength = 100
	refMaxLength = 1500
	// Maximum amino-acid Shannon entropy: log2(20) bits.
	refMaxComplexity = 4.3219
)

// Sub-score values for features without a numeric range.
const (
	subScorePresent   = 100.0
	subScoreAbsent    = 0.0
	subScoreUnknown   = 50.0
	subScoreECMatch   = 100.0
	subScoreKeyword   = 60.0
)

// Weights configures the relative importance of each scoring feature.
type Weights struct {
	Length        float64 `yaml:"length" mapstructure:"length"`
	SignalPeptide float64 `yaml:"signal_peptide" mapstructure:"signal_peptide"`
	Confidence    float64 `yaml:"confidence" mapstructure:"confidence"`
	Complexity    float64 `yaml:"complexity" mapstructure:"complexity"`
}

// DefaultWeights returns the standard feature weighting.
func DefaultWeights() Weights {
	return Weights{
		Length:        0.30,
		SignalPeptide: 0.20,
		Confidence:    0.30,
		Complexity:    0.20,
	}
}

// Validate checks that no weight is negative and the total is positive.
func (w Weights) Validate() error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"length", w.Length},
		{"signal_peptide", w.SignalPeptide},
		{"confidence", w.Confidence},
		{"complexity", w.Complexity},
	} {
		if f.value < 0 {
			return fmt.Errorf("%w: weight %q is negative (%g)", ErrInvalidWeightConfig, f.name, f.value)
		}
	}
	if w.Length+w.SignalPeptide+w.Confidence+w.Complexity <= 0 {
		return fmt.Errorf("%w: weights sum to zero", ErrInvalidWeightConfig)
	}
	return nil
}

// Subscores holds the per-feature sub-scores, each in [0,100].
type Subscores struct {
	Length        float64
	SignalPeptide float64
	Confidence    float64
	Complexity    float64
}

// CandidateScore is a scored, ranked candidate within one genome.
type CandidateScore struct {
	Gene       classify.GeneRecord
	Family     classify.Family
	Confidence classify.Confidence
	Subscores  Subscores
	Score      float64 // [0,100], one decimal
	Rank       int     // 1-based position within the genome
}

// Scorer computes candidate scores for one batch of classified genes.
type Scorer struct {
	weights Weights
	total   float64
}

// NewScorer creates a scorer after validating the weight configuration.
func NewScorer(w Weights) (*Scorer, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{
		weights: w,
		total:   w.Length + w.SignalPeptide + w.Confidence + w.Complexity,
	}, nil
}

// Rank scores every candidate gene (classified, confidence above
// none) and returns them ordered by descending score, ties broken by
// ascending gene identifier. Unclassified genes are skipped. Inputs
// are never mutated and input order does not affect the result.
func (s *Scorer) Rank(genes []classify.ClassifiedGene) []CandidateScore {
	candidates := make([]classify.ClassifiedGene, 0, len(genes))
	for _, g := range genes {
		if g.Candidate() {
			candidates = append(candidates, g)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	lengthRange := observedLengthRange(candidates)
	complexityRange := observedComplexityRange(candidates)

	scored := make([]CandidateScore, len(candidates))
	for i, g := range candidates {
		sub := Subscores{
			Length:        lengthRange.scale(float64(g.Gene.Length)),
			SignalPeptide: signalSubscore(g.Gene.SignalPeptide),
			Confidence:    confidenceSubscore(g.Confidence),
			Complexity:    complexitySubscore(g.Gene.Complexity, complexityRange),
		}
		scored[i] = CandidateScore{
			Gene:       g.Gene,
			Family:     g.Family,
			Confidence: g.Confidence,
			Subscores:  sub,
			Score:      s.combine(sub),
		}
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Gene.ID < scored[j].Gene.ID
	})
	for i := range scored {
		scored[i].Rank = i + 1
	}

	return scored
}

// combine returns the weighted mean of the sub-scores, rounded to one
// decimal. Monotonic in every weight by construction.
func (s *Scorer) combine(sub Subscores) float64 {
	weighted := sub.Length*s.weights.Length +
		sub.SignalPeptide*s.weights.SignalPeptide +
		sub.Confidence*s.weights.Confidence +
		sub.Complexity*s.weights.Complexity
	return math.Round(weighted/s.total*10) / 10
}

// featureRange is a min-max scaling window for one numeric feature.
type featureRange struct {
	min, max float64
}

// scale maps v into [0,100], clamping outside the window.
func (r featureRange) scale(v float64) float64 {
	if r.max <= r.min {
		return subScoreUnknown
	}
	scaled := (v - r.min) / (r.max - r.min) * 100
	return math.Max(0, math.Min(100, scaled))
}

// observedLengthRange returns the batch's length window, or the fixed
// reference window when the batch has no spread.
func observedLengthRange(genes []classify.ClassifiedGene) featureRange {
	minL, maxL := genes[0].Gene.Length, genes[0].Gene.Length
	for _, g := range genes[1:] {
		if g.Gene.Length < minL {
			minL = g.Gene.Length
		}
		if g.Gene.Length > maxL {
			maxL = g.Gene.Length
		}
	}
	if minL == maxL {
		return featureRange{min: refMinLength, max: refMaxLength}
	}
	return featureRange{min: float64(minL), max: float64(maxL)}
}

// observedComplexityRange returns the window over genes that carry a
// complexity value, falling back to the entropy reference window.
func observedComplexityRange(genes []classify.ClassifiedGene) featureRange {
	var values []float64
	for _, g := range genes {
		if g.Gene.Complexity != nil {
			values = append(values, *g.Gene.Complexity)
		}
	}
	if len(values) < 2 {
		return featureRange{min: 0, max: refMaxComplexity}
	}
	minC, maxC := values[0], values[0]
	for _, v := range values[1:] {
		minC = math.Min(minC, v)
		maxC = math.Max(maxC, v)
	}
	if minC == maxC {
		return featureRange{min: 0, max: refMaxComplexity}
	}
	return featureRange{min: minC, max: maxC}
}

func signalSubscore(flag *bool) float64 {
	switch {
	case flag == nil:
		return subScoreUnknown
	case *flag:
		return subScorePresent
	default:
		return subScoreAbsent
	}
}

func confidenceSubscore(c classify.Confidence) float64 {
	switch c {
	case classify.ConfidenceEC:
		return subScoreECMatch
	case classify.ConfidenceKeyword:
		return subScoreKeyword
	default:
		return 0
	}
}

func complexitySubscore(v *float64, r featureRange) float64 {
	if v == nil {
		return subScoreUnknown
	}
	return r.scale(*v)
}
