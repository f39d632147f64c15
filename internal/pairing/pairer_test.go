package pairing

import (
	"testing"

	"asepower/domain/core"
	"asepower/domain/design"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(theta float64, nbiorep, reads int) design.Record {
	return design.Record{Theta: theta, RsimG1: 0.8, RsimG2: 0.8, NBiorep: nbiorep, AllelicReads: reads, SimRuns: 100}
}

func TestClassify(t *testing.T) {
	null := &design.Table{Name: "design_H1_null", Records: []design.Record{rec(0.5, 3, 100)}}
	notNull := &design.Table{Name: "design_H1_not_null", Records: []design.Record{rec(0.6, 3, 100)}}

	tests := []struct {
		name  string
		c1    *design.Table
		c2    *design.Table
		want  Category
		set1  int
		set2  int
		dir   string
		fails bool
	}{
		{"both not null", notNull, notNull, BothNotNull, 1, 2, "H1_not_null_H2_not_null_H3_null", false},
		{"only condition 2 not null", null, notNull, OnlyCondition2NotNull, 1, 1, "H1_null_H2_not_null_H3_not_null", false},
		{"both null", null, null, BothNull, 1, 2, "H1_null_H2_null_H3_null", false},
		{"only condition 1 not null", notNull, null, 0, 0, 0, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.c1, tt.c2)
			if tt.fails {
				assert.ErrorIs(t, err, core.ErrUnsupportedCategory)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			s1, s2 := got.SetIndices()
			assert.Equal(t, tt.set1, s1)
			assert.Equal(t, tt.set2, s2)
			assert.Equal(t, tt.dir, got.DirName())
		})
	}
}

func TestPair_InnerJoinExceptTheta(t *testing.T) {
	c1 := &design.Table{Name: "design_H1_null", Records: []design.Record{
		rec(0.5, 3, 100),
		rec(0.5, 5, 100),
		rec(0.5, 3, 200),
	}}
	c2 := &design.Table{Name: "design_H1_not_null", Records: []design.Record{
		rec(0.7, 3, 100),
		rec(0.7, 4, 100),
	}}

	res := NewPairer(Options{}).Pair(c1, c2, OnlyCondition2NotNull)

	require.Len(t, res.Pairs, 1)
	p := res.Pairs[0]
	assert.Equal(t, "H1_null/out_set_1_theta_0.5_rsim-g1_0.8_rsim-g2_0.8_nbiorep_3_allelicreads_100_simruns_100.tsv", p.Condition1File)
	assert.Equal(t, "H1_not_null/out_set_1_theta_0.7_rsim-g1_0.8_rsim-g2_0.8_nbiorep_3_allelicreads_100_simruns_100.tsv", p.Condition2File)
	assert.Equal(t, "theta1_0.5_theta2_0.7_rsim-g1_0.8_rsim-g2_0.8_nbiorep_3_allelicreads_100_simruns_100.tsv", p.MergedFile)
	assert.Equal(t, OnlyCondition2NotNull, p.Category)
	assert.Equal(t, 0.5, p.Comparison.Theta1)
	assert.Equal(t, 0.7, p.Comparison.Theta2)

	// two unmatched condition-1 rows, one unmatched condition-2 row
	assert.Equal(t, 3, res.Dropped)
}

func TestPair_NoMatchIsNotAnError(t *testing.T) {
	c1 := &design.Table{Records: []design.Record{rec(0.5, 3, 100)}}
	c2 := &design.Table{Records: []design.Record{rec(0.5, 4, 100)}}

	res := NewPairer(Options{}).Pair(c1, c2, BothNull)
	assert.Empty(t, res.Pairs)
	assert.Equal(t, 2, res.Dropped)
}

func TestPair_BothNotNullUsesDistinctSets(t *testing.T) {
	c1 := &design.Table{Records: []design.Record{rec(0.6, 3, 100)}}
	c2 := &design.Table{Records: []design.Record{rec(0.6, 3, 100), rec(0.7, 3, 100)}}

	res := NewPairer(Options{}).Pair(c1, c2, BothNotNull)
	require.Len(t, res.Pairs, 2)
	assert.Contains(t, res.Pairs[0].Condition1File, "out_set_1_")
	assert.Contains(t, res.Pairs[0].Condition2File, "out_set_2_")
	assert.Equal(t, "theta1_0.6_theta2_0.6_rsim-g1_0.8_rsim-g2_0.8_nbiorep_3_allelicreads_100_simruns_100.tsv", res.Pairs[0].MergedFile)
	assert.Equal(t, 0, res.Dropped)

	strict := NewPairer(Options{SameImbalance: true}).Pair(c1, c2, BothNotNull)
	require.Len(t, strict.Pairs, 1)
	assert.Equal(t, 0.6, strict.Pairs[0].Comparison.Theta2)
	assert.Equal(t, 1, strict.Dropped)
}

func TestPair_BothNullReadsSecondSetForCondition2(t *testing.T) {
	c1 := &design.Table{Records: []design.Record{rec(0.5, 3, 100)}}
	c2 := &design.Table{Records: []design.Record{rec(0.5, 3, 100)}}

	res := NewPairer(Options{}).Pair(c1, c2, BothNull)
	require.Len(t, res.Pairs, 1)
	assert.Equal(t, "H1_null/out_set_1_theta_0.5_rsim-g1_0.8_rsim-g2_0.8_nbiorep_3_allelicreads_100_simruns_100.tsv", res.Pairs[0].Condition1File)
	assert.Equal(t, "H1_null/out_set_2_theta_0.5_rsim-g1_0.8_rsim-g2_0.8_nbiorep_3_allelicreads_100_simruns_100.tsv", res.Pairs[0].Condition2File)
}

func TestPair_DuplicateRowsCollapse(t *testing.T) {
	c1 := &design.Table{Records: []design.Record{rec(0.5, 3, 100), rec(0.5, 3, 100)}}
	c2 := &design.Table{Records: []design.Record{rec(0.7, 3, 100)}}

	res := NewPairer(Options{}).Pair(c1, c2, OnlyCondition2NotNull)
	assert.Len(t, res.Pairs, 1)
	assert.Equal(t, 1, res.Duplicates)
	assert.Equal(t, 0, res.Dropped)
}
