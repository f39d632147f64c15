package summary

import (
	"testing"

	"asepower/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumns_FixedSchema(t *testing.T) {
	require.Len(t, Columns, 38)
	assert.Equal(t, "nfeature", Columns[0])
	assert.Equal(t, "prop_H3_LE01", Columns[37])

	seen := make(map[string]bool)
	for _, c := range Columns {
		assert.False(t, seen[c], "duplicate column %s", c)
		seen[c] = true
	}
}

func TestRow_RecordMatchesColumns(t *testing.T) {
	r := Row{
		NFeature:     10,
		RG1:          0.8,
		NumBioreps:   3,
		AllelicReads: 300,
		DeltaAI3:     0.8,
		Alpha1:       ColumnStats{Mean: 1.5, Median: 1.25, Variance: 0.0625},
		H3:           EvidenceProps{LE05: 0.3, LE01: 0.1},
	}

	rec := r.Record()
	require.Len(t, rec, len(Columns))

	idx := func(name string) int {
		for i, c := range Columns {
			if c == name {
				return i
			}
		}
		t.Fatalf("unknown column %s", name)
		return -1
	}
	assert.Equal(t, "10", rec[idx("nfeature")])
	assert.Equal(t, "3", rec[idx("num_bioreps")])
	assert.Equal(t, "300", rec[idx("num_allele_specific_reads")])
	assert.Equal(t, "0.8", rec[idx("delta_AI_3")])
	assert.Equal(t, "1.5", rec[idx("average_alpha1")])
	assert.Equal(t, "1.25", rec[idx("median_alpha1")])
	assert.Equal(t, "0.0625", rec[idx("variance_alpha1")])
	assert.Equal(t, "0.3", rec[idx("prop_H3_LE05")])
	assert.Equal(t, "0.1", rec[idx("prop_H3_LE01")])
}

func TestFromRecord_RoundTrip(t *testing.T) {
	r := Row{
		NFeature:          100,
		RG1:               0.8,
		RG2:               0.7,
		NumBioreps:        4,
		ReadsPerBiorep:    50,
		AllelicReads:      200,
		CoveragePerBiorep: 33.333333333333336,
		Theta1Sim:         0.5,
		Theta2Sim:         0.7,
		DeltaAI2:          0.4,
		DeltaAI3:          0.4,
		Alpha1Sim:         1,
		C2SampleProp:      ColumnStats{Mean: 0.61, Median: 0.6, Variance: 0.002},
		H2:                EvidenceProps{LE05: 0.92, LE01: 0.71},
	}

	got, err := FromRecord(Columns, r.Record())
	require.NoError(t, err)
	assert.Equal(t, r.Values(), got.Values())
	assert.Equal(t, 0.7, got.Comparison.Theta2)
	assert.Equal(t, 4, got.Comparison.NBiorep)
}

func TestFromRecord_Errors(t *testing.T) {
	rec := Row{NFeature: 1}.Record()

	_, err := FromRecord(Columns[1:], rec[1:])
	assert.ErrorIs(t, err, core.ErrMissingColumn)

	bad := append([]string(nil), rec...)
	bad[0] = "ten"
	_, err = FromRecord(Columns, bad)
	assert.ErrorIs(t, err, core.ErrSchemaMismatch)

	bad[0] = "1.5"
	_, err = FromRecord(Columns, bad)
	assert.ErrorIs(t, err, core.ErrSchemaMismatch)

	_, err = FromValues([]float64{1, 2})
	assert.ErrorIs(t, err, core.ErrSchemaMismatch)
}
