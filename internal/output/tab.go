// Package output provides tab-delimited and FASTA result formatters.
package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/seqlab/enzymescan/internal/batch"
	"github.com/seqlab/enzymescan/internal/score"
	"github.com/seqlab/enzymescan/internal/stats"
)

// CandidateWriter writes ranked candidates in tab-delimited format.
type CandidateWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewCandidateWriter creates a new tab-delimited candidate writer.
func NewCandidateWriter(w io.Writer) *CandidateWriter {
	return &CandidateWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#Rank",
			"Genome",
			"Gene",
			"Family",
			"Confidence",
			"Length",
			"Score",
			"Score_length",
			"Score_signal",
			"Score_confidence",
			"Score_complexity",
			"Product",
		},
	}
}

// WriteHeader writes the header line.
func (cw *CandidateWriter) WriteHeader() error {
	_, err := cw.w.WriteString(strings.Join(cw.columns, "\t") + "\n")
	return err
}

// Write writes a single ranked candidate.
func (cw *CandidateWriter) Write(genomeID string, c score.CandidateScore) error {
	_, err := fmt.Fprintf(cw.w, "%d\t%s\t%s\t%s\t%s\t%d\t%.1f\t%.1f\t%.1f\t%.1f\t%.1f\t%s\n",
		c.Rank,
		orDash(genomeID),
		c.Gene.ID,
		string(c.Family),
		c.Confidence.String(),
		c.Gene.Length,
		c.Score,
		c.Subscores.Length,
		c.Subscores.SignalPeptide,
		c.Subscores.Confidence,
		c.Subscores.Complexity,
		orDash(c.Gene.Product),
	)
	return err
}

// Flush flushes buffered output.
func (cw *CandidateWriter) Flush() error {
	return cw.w.Flush()
}

// WriteStats writes one assembly statistics table.
func WriteStats(w io.Writer, genomeID string, s *stats.AssemblyStats) error {
	bw := bufio.NewWriter(w)
	rows := []struct {
		key   string
		value string
	}{
		{"genome", genomeID},
		{"sequences", fmt.Sprintf("%d", s.SequenceCount)},
		{"total_length", fmt.Sprintf("%d", s.TotalLength)},
		{"gc_percent", fmt.Sprintf("%.2f", s.GCFraction*100)},
		{"n50", fmt.Sprintf("%d", s.N50)},
		{"n90", fmt.Sprintf("%d", s.N90)},
		{"longest_contig", fmt.Sprintf("%d", s.MaxLength)},
		{"shortest_contig", fmt.Sprintf("%d", s.MinLength)},
		{"mean_length", fmt.Sprintf("%.2f", s.MeanLength)},
		{"median_length", fmt.Sprintf("%d", s.MedianLength)},
		{"quality", s.Quality()},
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(bw, "%s\t%s\n", r.key, r.value); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteBatchSummary writes the comparative per-genome table. Every
// requested genome appears; failed genomes carry their error in the
// last column instead of being omitted.
func WriteBatchSummary(w io.Writer, r *batch.Result) error {
	bw := bufio.NewWriter(w)

	header := []string{
		"#Genome", "Status", "Sequences", "Total_length", "GC_percent",
		"N50", "Quality", "Candidates", "Unclassified", "Error",
	}
	if _, err := bw.WriteString(strings.Join(header, "\t") + "\n"); err != nil {
		return err
	}

	for _, id := range r.Order {
		gr := r.Genomes[id]
		if gr.Err != nil {
			statsCols := "-\t-\t-\t-\t-"
			if gr.Stats != nil {
				statsCols = statsRow(gr.Stats)
			}
			if _, err := fmt.Fprintf(bw, "%s\tFAILED\t%s\t-\t-\t%v\n",
				id, statsCols, gr.Err); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(bw, "%s\tOK\t%s\t%d\t%d\t-\n",
			id, statsRow(gr.Stats), len(gr.Candidates), gr.Unclassified); err != nil {
			return err
		}
	}

	return bw.Flush()
}

func statsRow(s *stats.AssemblyStats) string {
	return fmt.Sprintf("%d\t%d\t%.2f\t%d\t%s",
		s.SequenceCount, s.TotalLength, s.GCFraction*100, s.N50, s.Quality())
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
