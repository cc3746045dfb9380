package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	table := DefaultRules()
	require.NoError(t, table.Validate())
	return NewClassifier(table)
}

func TestClassify_ExactECMatch(t *testing.T) {
	c := newTestClassifier(t)

	// Triacylglycerol lipase EC with a product text containing no
	// lexicon term at all.
	got := c.Classify(GeneRecord{
		ID:       "GENOME_00042",
		Product:  "hypothetical protein",
		ECNumber: "3.1.1.3",
	})

	assert.Equal(t, FamilyLipase, got.Family)
	assert.Equal(t, ConfidenceEC, got.Confidence)
	assert.True(t, got.Candidate())
}

func TestClassify_ECPrecedesKeyword(t *testing.T) {
	c := newTestClassifier(t)

	// Product says protease but the EC number says xylanase; EC wins.
	got := c.Classify(GeneRecord{
		ID:       "g1",
		Product:  "putative protease",
		ECNumber: "3.2.1.8",
	})

	assert.Equal(t, FamilyXylanase, got.Family)
	assert.Equal(t, ConfidenceEC, got.Confidence)
}

func TestClassify_KeywordMatch(t *testing.T) {
	c := newTestClassifier(t)

	tests := []struct {
		product string
		family  Family
	}{
		{"Triacylglycerol lipase precursor", FamilyLipase},
		{"carboxylesterase", FamilyLipase},
		{"serine peptidase", FamilyProtease},
		{"endo-1,4-beta-xylanase", FamilyXylanase},
		{"beta-glucosidase", FamilyCellulase},
		{"Chitinase A1", FamilyChitinase},
		{"glucoamylase family protein", FamilyAmylase},
		{"catalase-peroxidase", FamilyPeroxidase},
	}

	for _, tt := range tests {
		t.Run(tt.product, func(t *testing.T) {
			got := c.Classify(GeneRecord{ID: "g", Product: tt.product})
			assert.Equal(t, tt.family, got.Family)
			assert.Equal(t, ConfidenceKeyword, got.Confidence)
		})
	}
}

func TestClassify_KeywordPriorityOrder(t *testing.T) {
	c := newTestClassifier(t)

	// Both an esterase (lipase lexicon) and a peptidase (protease
	// lexicon) term appear; lipase is earlier in the priority order.
	got := c.Classify(GeneRecord{
		ID:      "g1",
		Product: "esterase/peptidase bifunctional protein",
	})

	assert.Equal(t, FamilyLipase, got.Family)
	assert.Equal(t, ConfidenceKeyword, got.Confidence)
}

func TestClassify_MalformedECFallsThrough(t *testing.T) {
	c := newTestClassifier(t)

	for _, ec := range []string{"abc", "3..1", "3.1.1.3.5", "", "-", "N/A", "3.x.1"} {
		got := c.Classify(GeneRecord{ID: "g", Product: "alkaline protease", ECNumber: ec})
		assert.Equal(t, FamilyProtease, got.Family, "ec=%q", ec)
		assert.Equal(t, ConfidenceKeyword, got.Confidence, "ec=%q", ec)
	}
}

func TestClassify_NoMatch(t *testing.T) {
	c := newTestClassifier(t)

	got := c.Classify(GeneRecord{
		ID:       "g1",
		Product:  "50S ribosomal protein L3",
		ECNumber: "2.7.7.6",
	})

	assert.Equal(t, FamilyNone, got.Family)
	assert.Equal(t, ConfidenceNone, got.Confidence)
	assert.False(t, got.Candidate())
}

func TestClassify_Idempotent(t *testing.T) {
	c := newTestClassifier(t)

	g := GeneRecord{ID: "g1", Product: "subtilisin-like protease", ECNumber: "3.4.21.62"}
	first := c.Classify(g)
	second := c.Classify(g)
	assert.Equal(t, first, second)
}

func TestClassify_CaseInsensitiveKeywords(t *testing.T) {
	c := newTestClassifier(t)

	got := c.Classify(GeneRecord{ID: "g1", Product: "ALKALINE PROTEASE"})
	assert.Equal(t, FamilyProtease, got.Family)
}

func TestClassifyAll_PreservesOrder(t *testing.T) {
	c := newTestClassifier(t)

	genes := []GeneRecord{
		{ID: "g1", Product: "lipase"},
		{ID: "g2", Product: "ribosomal protein"},
		{ID: "g3", Product: "xylanase"},
	}
	got := c.ClassifyAll(genes)
	require.Len(t, got, 3)
	assert.Equal(t, "g1", got[0].Gene.ID)
	assert.Equal(t, FamilyLipase, got[0].Family)
	assert.Equal(t, FamilyNone, got[1].Family)
	assert.Equal(t, FamilyXylanase, got[2].Family)
}

func TestNormalizeEC(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"3.1.1.3", "3.1.1.3"},
		{"EC 3.1.1.3", "3.1.1.3"},
		{"EC:3.4.21.62", "3.4.21.62"},
		{"3.2.1.-", "3.2.1.-"},
		{"3.4", "3.4"},
		{"", ""},
		{"-", ""},
		{"N/A", ""},
		{"n/a", ""},
		{"3.1.1.3.5", ""},
		{"3..1", ""},
		{"lipase", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeEC(tt.in))
		})
	}
}

func TestECHasPrefix(t *testing.T) {
	assert.True(t, ecHasPrefix("3.1.1.3", "3.1.1"))
	assert.True(t, ecHasPrefix("3.1.1", "3.1.1"))
	assert.True(t, ecHasPrefix("3.4.21.62", "3.4"))
	// Component-wise: 3.1.1 must not cover 3.1.11.x
	assert.False(t, ecHasPrefix("3.1.11.2", "3.1.1"))
	assert.False(t, ecHasPrefix("3.2.1.41", "3.2.1.4"))
}
