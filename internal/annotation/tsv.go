// Package annotation loads gene records from annotation-tool output.
//
// The expected input is the tab-separated feature table written by
// Prokka-style annotators, with a header line naming at least the
// locus_tag, length_bp and product columns. EC_number is optional.
package annotation

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/seqlab/enzymescan/internal/classify"
	"github.com/seqlab/enzymescan/internal/fasta"
)

// Column names recognized in the TSV header (case-insensitive).
const (
	colLocusTag = "locus_tag"
	colFtype    = "ftype"
	colLength   = "length_bp"
	colEC       = "ec_number"
	colProduct  = "product"
)

// LoadTSV reads gene records for one genome from an annotation table.
// Only CDS features are kept. Records keep their input order.
func LoadTSV(path, genomeID string) ([]classify.GeneRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open annotation table: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	return ParseTSV(reader, genomeID)
}

// ParseTSV parses annotation rows from a reader.
func ParseTSV(reader io.Reader, genomeID string) ([]classify.GeneRecord, error) {
	scanner := bufio.NewScanner(reader)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	var cols map[string]int
	var genes []classify.GeneRecord
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Split(line, "\t")

		if cols == nil {
			cols = indexColumns(fields)
			if _, ok := cols[colLocusTag]; !ok {
				return nil, fmt.Errorf("annotation table: missing %s column", colLocusTag)
			}
			if _, ok := cols[colProduct]; !ok {
				return nil, fmt.Errorf("annotation table: missing %s column", colProduct)
			}
			continue
		}

		if ftype := field(fields, cols, colFtype); ftype != "" && !strings.EqualFold(ftype, "CDS") {
			continue
		}

		id := field(fields, cols, colLocusTag)
		if id == "" {
			return nil, fmt.Errorf("annotation table line %d: empty locus_tag", lineNum)
		}

		g := classify.GeneRecord{
			ID:       id,
			GenomeID: genomeID,
			Product:  field(fields, cols, colProduct),
			ECNumber: field(fields, cols, colEC),
		}
		if raw := field(fields, cols, colLength); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("annotation table line %d: bad %s %q", lineNum, colLength, raw)
			}
			// length_bp is nucleotides including the stop codon;
			// convert to residues.
			g.Length = n/3 - 1
			if g.Length < 0 {
				g.Length = 0
			}
		}
		g.SignalPeptide = DetectSignalPeptide(g.Product)

		genes = append(genes, g)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read annotation table: %w", err)
	}

	return genes, nil
}

// AttachSequences joins translated protein sequences (e.g. a Prokka
// .faa file) onto gene records by identifier, filling in Seq, the
// residue length, and the entropy complexity metric. Records with no
// matching sequence are left untouched.
func AttachSequences(genes []classify.GeneRecord, proteins []fasta.Record) {
	byID := make(map[string]string, len(proteins))
	for _, p := range proteins {
		byID[p.ID] = p.Seq
	}
	for i := range genes {
		seq, ok := byID[genes[i].ID]
		if !ok || seq == "" {
			continue
		}
		seq = strings.TrimSuffix(seq, "*")
		genes[i].Seq = seq
		genes[i].Length = len(seq)
		e := Entropy(seq)
		genes[i].Complexity = &e
	}
}

// Signal-peptide indicator terms, matched against the product text.
var (
	signalPositive = []string{"signal", "secreted", "extracellular", "exported", "precursor", "preprotein"}
	signalNegative = []string{"intracellular", "cytoplasmic", "membrane"}
)

// DetectSignalPeptide makes a coarse secretion call from the product
// description. Returns nil when the text gives no indication.
func DetectSignalPeptide(product string) *bool {
	p := strings.ToLower(product)
	for _, kw := range signalPositive {
		if strings.Contains(p, kw) {
			v := true
			return &v
		}
	}
	for _, kw := range signalNegative {
		if strings.Contains(p, kw) {
			v := false
			return &v
		}
	}
	return nil
}

// Entropy returns the Shannon entropy of the sequence in bits per
// residue. Empty sequences score zero.
func Entropy(seq string) float64 {
	if seq == "" {
		return 0
	}
	counts := make(map[rune]int)
	total := 0
	for _, r := range seq {
		counts[r]++
		total++
	}
	entropy := 0.0
	for _, n := range counts {
		p := float64(n) / float64(total)
		entropy -= p * math.Log2(p)
	}
	return entropy
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return cols
}

func field(fields []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[i])
}
