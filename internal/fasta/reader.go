// Package fasta loads assembly sequence records from FASTA files.
package fasta

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// Record is a single sequence record from an assembly.
// Records are treated as immutable once loaded.
type Record struct {
	ID          string // first whitespace-delimited token of the header
	Description string // remainder of the header line, may be empty
	Seq         string // raw residue text, newlines stripped
}

// Length returns the number of residues in the record.
func (r *Record) Length() int {
	return len(r.Seq)
}

// Load reads all records from a FASTA file. Gzipped files are
// detected by the .gz suffix.
func Load(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open FASTA file: %w", err)
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

	return Parse(reader)
}

// Parse reads FASTA records from a reader, preserving input order.
func Parse(reader io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(reader)
	// Increase buffer size for long contig lines
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 64*1024*1024)

	var records []Record
	var current *Record
	var seq strings.Builder

	flush := func() {
		if current != nil {
			current.Seq = seq.String()
			records = append(records, *current)
		}
		seq.Reset()
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, ">") {
			flush()
			id, desc := parseHeader(line)
			current = &Record{ID: id, Description: desc}
		} else if current != nil {
			seq.WriteString(strings.TrimSpace(line))
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read FASTA: %w", err)
	}

	return records, nil
}

// parseHeader splits a ">id description" header line.
func parseHeader(line string) (id, desc string) {
	header := strings.TrimPrefix(line, ">")
	fields := strings.SplitN(header, " ", 2)
	id = strings.TrimSpace(fields[0])
	if len(fields) == 2 {
		desc = strings.TrimSpace(fields[1])
	}
	return id, desc
}
