package fasta

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	content := `>contig_1 Bacillus subtilis assembly
ATGCGATCGATCG
ATCGATCGATCGA
>contig_2
GGGCCC
`

	records, err := Parse(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "contig_1", records[0].ID)
	assert.Equal(t, "Bacillus subtilis assembly", records[0].Description)
	assert.Equal(t, "ATGCGATCGATCGATCGATCGATCGA", records[0].Seq)
	assert.Equal(t, 26, records[0].Length())

	assert.Equal(t, "contig_2", records[1].ID)
	assert.Empty(t, records[1].Description)
	assert.Equal(t, "GGGCCC", records[1].Seq)
}

func TestParse_PreservesInputOrder(t *testing.T) {
	content := ">b\nAAA\n>a\nCCC\n>c\nGGG\n"

	records, err := Parse(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "b", records[0].ID)
	assert.Equal(t, "a", records[1].ID)
	assert.Equal(t, "c", records[2].ID)
}

func TestParse_Empty(t *testing.T) {
	records, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParse_HeaderWithoutSequence(t *testing.T) {
	records, err := Parse(strings.NewReader(">empty\n>full\nACGT\n"))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "", records[0].Seq)
	assert.Equal(t, "ACGT", records[1].Seq)
}

func TestParseHeader(t *testing.T) {
	tests := []struct {
		line string
		id   string
		desc string
	}{
		{">contig_1", "contig_1", ""},
		{">contig_1 length=5000 cov=31.1", "contig_1", "length=5000 cov=31.1"},
		{">GENOME_00001 lipase precursor", "GENOME_00001", "lipase precursor"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			id, desc := parseHeader(tt.line)
			assert.Equal(t, tt.id, id)
			assert.Equal(t, tt.desc, desc)
		})
	}
}
