package output

import (
	"bufio"
	"fmt"
	"io"

	"github.com/seqlab/enzymescan/internal/batch"
	"github.com/seqlab/enzymescan/internal/score"
)

// WriteCandidateFASTA exports ranked candidates as FASTA, preserving
// the original sequence text. Candidates with no attached sequence
// are skipped. Header format: >id|family|score_<score>|rank_<rank>
func WriteCandidateFASTA(w io.Writer, candidates []score.CandidateScore) error {
	bw := bufio.NewWriter(w)
	for _, c := range candidates {
		if c.Gene.Seq == "" {
			continue
		}
		if _, err := fmt.Fprintf(bw, ">%s|%s|score_%.1f|rank_%d\n%s\n",
			c.Gene.ID, c.Family, c.Score, c.Rank, c.Gene.Seq); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteBatchFASTA exports cross-genome candidates, prefixing each
// identifier with its genome so identifiers stay unique batch-wide.
func WriteBatchFASTA(w io.Writer, candidates []batch.BatchCandidate) error {
	bw := bufio.NewWriter(w)
	for _, c := range candidates {
		if c.Gene.Seq == "" {
			continue
		}
		if _, err := fmt.Fprintf(bw, ">%s|%s|%s|score_%.1f|rank_%d\n%s\n",
			c.GenomeID, c.Gene.ID, c.Family, c.Score, c.Rank, c.Gene.Seq); err != nil {
			return err
		}
	}
	return bw.Flush()
}
