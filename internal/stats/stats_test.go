package stats

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seqlab/enzymescan/internal/fasta"
)

func makeRecords(lengths ...int) []fasta.Record {
	records := make([]fasta.Record, len(lengths))
	bases := "ACGT"
	for i, l := range lengths {
		seq := make([]byte, l)
		for j := range seq {
			seq[j] = bases[j%4]
		}
		records[i] = fasta.Record{ID: string(rune('a' + i)), Seq: string(seq)}
	}
	return records
}

func TestCompute_ThreeContigScenario(t *testing.T) {
	// Contigs 100/200/300, total 600. Sorted descending: 300, 200,
	// 100; cumulative reaches 300 (50%) at the first contig.
	s, err := Compute(makeRecords(100, 200, 300), Options{})
	require.NoError(t, err)

	assert.Equal(t, 3, s.SequenceCount)
	assert.Equal(t, 600, s.TotalLength)
	assert.Equal(t, 300, s.N50)
	// 90% threshold is 540, reached at cumulative 600 (third contig).
	assert.Equal(t, 100, s.N90)
	assert.Equal(t, 300, s.MaxLength)
	assert.Equal(t, 100, s.MinLength)
	assert.InDelta(t, 200.0, s.MeanLength, 1e-9)
	assert.Equal(t, 200, s.MedianLength)
}

func TestCompute_EmptyInput(t *testing.T) {
	_, err := Compute(nil, Options{})
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestCompute_InvalidSequence(t *testing.T) {
	records := []fasta.Record{
		{ID: "ok", Seq: "ACGT"},
		{ID: "bad", Seq: ""},
	}
	_, err := Compute(records, Options{})
	require.ErrorIs(t, err, ErrInvalidSequence)
	assert.Contains(t, err.Error(), "bad")
}

func TestCompute_OrderIndependence(t *testing.T) {
	lengths := []int{500, 123, 4000, 4000, 77, 981, 250, 3333}
	records := makeRecords(lengths...)

	want, err := Compute(records, Options{})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	for range 10 {
		shuffled := append([]fasta.Record(nil), records...)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		got, err := Compute(shuffled, Options{})
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestCompute_N50AtLeastN90(t *testing.T) {
	cases := [][]int{
		{1},
		{10, 10, 10},
		{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		{100000, 50, 50, 50},
	}
	for _, lengths := range cases {
		s, err := Compute(makeRecords(lengths...), Options{})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, s.N50, s.N90)
		assert.GreaterOrEqual(t, s.N50, s.MinLength)
		assert.LessOrEqual(t, s.N50, s.MaxLength)
		assert.GreaterOrEqual(t, s.N90, s.MinLength)
		assert.LessOrEqual(t, s.N90, s.MaxLength)
	}
}

func TestCompute_GCExcludesAmbiguous(t *testing.T) {
	// 4 G/C out of 8 unambiguous bases; the two Ns count toward
	// total length but not GC.
	records := []fasta.Record{{ID: "c1", Seq: "GGCCAATTNN"}}

	s, err := Compute(records, Options{})
	require.NoError(t, err)

	assert.Equal(t, 10, s.TotalLength)
	assert.InDelta(t, 0.5, s.GCFraction, 1e-9)
}

func TestCompute_GCLowercase(t *testing.T) {
	records := []fasta.Record{{ID: "c1", Seq: "gcgcat"}}
	s, err := Compute(records, Options{})
	require.NoError(t, err)
	assert.InDelta(t, 4.0/6.0, s.GCFraction, 1e-9)
}

func TestCompute_MinLengthFilter(t *testing.T) {
	s, err := Compute(makeRecords(100, 200, 300), Options{MinLength: 150})
	require.NoError(t, err)

	// The 100 bp contig is dropped before anything is computed.
	assert.Equal(t, 2, s.SequenceCount)
	assert.Equal(t, 500, s.TotalLength)
	assert.Equal(t, 300, s.N50)
	assert.Equal(t, 200, s.MinLength)
}

func TestCompute_MinLengthFilterDropsAll(t *testing.T) {
	_, err := Compute(makeRecords(100, 120), Options{MinLength: 500})
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestQualityTiers(t *testing.T) {
	tests := []struct {
		n50  int
		want string
	}{
		{60000, QualityExcellent},
		{50000, QualityMedium},
		{20000, QualityMedium},
		{10000, QualityLow},
		{500, QualityLow},
	}
	for _, tt := range tests {
		s := &AssemblyStats{N50: tt.n50}
		assert.Equal(t, tt.want, s.Quality(), "n50=%d", tt.n50)
	}
}

func TestNx_TieBreakStable(t *testing.T) {
	// Equal lengths: the answer is the shared length either way, but
	// the stable sort guarantees identical results for permutations.
	lengths := []int{200, 200, 200}
	assert.Equal(t, 200, nx(lengths, 0.5, 600))
	assert.Equal(t, 200, nx(lengths, 0.9, 600))
}

func TestCompute_SingleContig(t *testing.T) {
	s, err := Compute(makeRecords(1234), Options{})
	require.NoError(t, err)
	assert.Equal(t, 1234, s.N50)
	assert.Equal(t, 1234, s.N90)
	assert.Equal(t, 1234, s.MedianLength)
}
