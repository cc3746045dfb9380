// Package classify assigns annotated genes to industrial enzyme families.
package classify

// GeneRecord is a single annotated gene, as produced by an external
// annotation tool. Immutable input to classification.
type GeneRecord struct {
	ID       string // locus tag, unique within a genome
	GenomeID string // parent genome identifier
	Product  string // annotation text (product description)
	ECNumber string // optional EC number, e.g. "3.1.1.3"
	Length   int    // sequence length in residues
	Seq      string // optional amino-acid sequence, used for FASTA export

	// SignalPeptide reports whether the gene product carries a
	// predicted signal peptide. Nil when the upstream tool did not
	// make a call either way.
	SignalPeptide *bool

	// Complexity is an optional sequence-complexity metric
	// (amino-acid Shannon entropy, in bits). Nil when unavailable.
	Complexity *float64
}

// Confidence describes how a family assignment was made.
type Confidence int

const (
	// ConfidenceNone means no rule matched; the gene is excluded
	// from scoring but retained in diagnostics.
	ConfidenceNone Confidence = iota
	// ConfidenceKeyword means a family lexicon term matched the
	// product description.
	ConfidenceKeyword
	// ConfidenceEC means the EC number prefix mapped to exactly one
	// family in the rule table.
	ConfidenceEC
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceEC:
		return "exact-EC-match"
	case ConfidenceKeyword:
		return "keyword-match"
	default:
		return "none"
	}
}

// ClassifiedGene is a gene record with its family assignment.
type ClassifiedGene struct {
	Gene       GeneRecord
	Family     Family // FamilyNone when unclassified
	Confidence Confidence
}

// Candidate reports whether the gene is eligible for scoring.
func (c *ClassifiedGene) Candidate() bool {
	return c.Family != FamilyNone && c.Confidence != ConfidenceNone
}
