package scenario

import (
	"errors"
	"fmt"
	"testing"

	"asepower/domain/core"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_Format(t *testing.T) {
	k := Key{Theta: 0.65, RsimG1: 0.8, RsimG2: 0.75, NBiorep: 3, AllelicReads: 1000, SimRuns: 100}
	assert.Equal(t,
		"out_set_2_theta_0.65_rsim-g1_0.8_rsim-g2_0.75_nbiorep_3_allelicreads_1000_simruns_100",
		Encode(k, 2))
	assert.Equal(t, Encode(k, 2)+".tsv", FileName(k, 2))
}

func TestEncode_FixedPointFloats(t *testing.T) {
	k := Key{Theta: 0.00001, RsimG1: 0.8, RsimG2: 0.8, NBiorep: 3, AllelicReads: 120, SimRuns: 100}
	name := Encode(k, 1)
	assert.Contains(t, name, "_theta_0.00001_")
	assert.NotContains(t, name, "e-")

	got, _, err := ParseName(name)
	require.NoError(t, err)
	assert.Equal(t, k.Theta, got.Theta)
}

func TestDecode_RoundTrip(t *testing.T) {
	thetas := []float64{0.5, 0.55, 0.6, 0.65, 0.8, 0.123456789}
	rates := []float64{0.8, 0.65, 1}
	for _, theta := range thetas {
		for _, rate := range rates {
			for _, nbiorep := range []int{1, 3, 10} {
				for set := 1; set <= 3; set++ {
					k := Key{Theta: theta, RsimG1: rate, RsimG2: 0.8, NBiorep: nbiorep, AllelicReads: 25 * nbiorep, SimRuns: 1000}
					name := fmt.Sprintf("%v/%v/%d/%d", theta, rate, nbiorep, set)
					t.Run(name, func(t *testing.T) {
						got, gotSet, err := ParseName(Encode(k, set))
						require.NoError(t, err)
						if diff := cmp.Diff(k, got); diff != "" {
							t.Errorf("round trip mismatch (-want +got):\n%s", diff)
						}
						assert.Equal(t, set, gotSet)
					})
				}
			}
		}
	}
}

func TestDecode_AcceptsPathsAndDefaults(t *testing.T) {
	k, err := Decode("sims/H1_null/out_set_1_theta_0.5_nbiorep_3_allelicreads_100_simruns_10.tsv")
	require.NoError(t, err)
	assert.Equal(t, Key{Theta: 0.5, RsimG1: DefaultMappingRate, RsimG2: DefaultMappingRate, NBiorep: 3, AllelicReads: 100, SimRuns: 10}, k)

	k, err = Decode("theta_0.6_rsim-g1_0.7_rsim-g2_0.9_nbiorep_2_allelicreads_50_simruns_5")
	require.NoError(t, err)
	assert.Equal(t, 0.7, k.RsimG1)
	assert.Equal(t, 0.9, k.RsimG2)
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"odd tokens", "theta_0.5_nbiorep"},
		{"unknown tag", "theta_0.5_depth_3_nbiorep_3_allelicreads_100_simruns_10"},
		{"duplicate tag", "theta_0.5_theta_0.6_nbiorep_3_allelicreads_100_simruns_10"},
		{"missing simruns", "theta_0.5_nbiorep_3_allelicreads_100_rsim-g1_0.8"},
		{"non-numeric theta", "theta_abc_nbiorep_3_allelicreads_100_simruns_10"},
		{"nan theta", "theta_NaN_nbiorep_3_allelicreads_100_simruns_10"},
		{"fractional nbiorep", "theta_0.5_nbiorep_3.5_allelicreads_100_simruns_10"},
		{"doubled separator", "theta__0.5_nbiorep_3_allelicreads_100_simruns_10"},
		{"bad set index", "out_set_x_theta_0.5_nbiorep_3_allelicreads_100_simruns_10"},
		{"set prefix only", "out_set_1"},
		{"two thetas", "theta1_0.5_theta2_0.6_nbiorep_3_allelicreads_100_simruns_10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrMalformedScenarioKey), "got %v", err)
		})
	}
}

func TestDecodeComparison_NotNullVariant(t *testing.T) {
	c, err := DecodeComparison("theta1_0.5_theta2_0.7_rsim-g1_0.8_rsim-g2_0.8_nbiorep_4_allelicreads_200_simruns_50", ConditionUnset)
	require.NoError(t, err)
	assert.Equal(t, Comparison{Theta1: 0.5, Theta2: 0.7, RsimG1: 0.8, RsimG2: 0.8, NBiorep: 4, AllelicReads: 200, SimRuns: 50}, c)
}

func TestDecodeComparison_NotNullVariantIsStrict(t *testing.T) {
	for _, input := range []string{
		"theta1_0.5_nbiorep_4_allelicreads_200_simruns_50_rsim-g1_0.8_rsim-g2_0.8",
		"theta1_0.5_theta2_0.7_nbiorep_4_allelicreads_200_simruns_50",
		"theta_0.5_theta1_0.5_theta2_0.7_rsim-g1_0.8_rsim-g2_0.8_nbiorep_4_allelicreads_200_simruns_50",
	} {
		_, err := DecodeComparison(input, Condition1)
		assert.ErrorIs(t, err, core.ErrMalformedScenarioKey, input)
	}
}

func TestDecodeComparison_NullVariant(t *testing.T) {
	input := "theta_0.7_nbiorep_4_allelicreads_200_simruns_50"

	c, err := DecodeComparison(input, Condition2)
	require.NoError(t, err)
	assert.Equal(t, NullTheta, c.Theta1)
	assert.Equal(t, 0.7, c.Theta2)
	assert.Equal(t, DefaultMappingRate, c.RsimG1)
	assert.Equal(t, DefaultMappingRate, c.RsimG2)

	c, err = DecodeComparison(input, Condition1)
	require.NoError(t, err)
	assert.Equal(t, 0.7, c.Theta1)
	assert.Equal(t, NullTheta, c.Theta2)

	_, err = DecodeComparison(input, ConditionUnset)
	assert.ErrorIs(t, err, core.ErrMalformedScenarioKey)
}

func TestMergedName_RoundTrip(t *testing.T) {
	c := Comparison{Theta1: 0.55, Theta2: 0.65, RsimG1: 0.8, RsimG2: 0.7, NBiorep: 5, AllelicReads: 500, SimRuns: 100}
	name := MergedName(c)
	assert.Equal(t, "theta1_0.55_theta2_0.65_rsim-g1_0.8_rsim-g2_0.7_nbiorep_5_allelicreads_500_simruns_100.tsv", name)

	got, err := DecodeComparison(name, ConditionUnset)
	require.NoError(t, err)
	assert.Equal(t, c, got)
	assert.Equal(t, c.String()+".tsv", name)
}

func TestConditionFromDir(t *testing.T) {
	tests := map[string]Condition{
		"sims/H1_null":                    Condition1,
		"sims/H1_not_null/":               Condition1,
		"H2_not_null":                     Condition2,
		"out/c2":                          Condition2,
		"condition_1":                     Condition1,
		"comparate2":                      Condition2,
		"H1_not_null_H2_not_null_H3_null": ConditionUnset,
		"results":                         ConditionUnset,
		"c12":                             ConditionUnset,
	}
	for dir, want := range tests {
		assert.Equal(t, want, ConditionFromDir(dir), dir)
	}
}

func TestKey_SameScenario(t *testing.T) {
	base := Key{Theta: 0.5, RsimG1: 0.8, RsimG2: 0.8, NBiorep: 3, AllelicReads: 100, SimRuns: 10}
	other := base
	other.Theta = 0.7
	other.Condition = Condition2
	assert.True(t, base.SameScenario(other))

	other.NBiorep = 4
	assert.False(t, base.SameScenario(other))
}

func TestKey_Validate(t *testing.T) {
	good := Key{Theta: 0.6, RsimG1: 0.8, RsimG2: 0.8, NBiorep: 3, AllelicReads: 100, SimRuns: 10}
	require.NoError(t, good.Validate())

	bad := good
	bad.Theta = 1
	assert.ErrorIs(t, bad.Validate(), core.ErrOutOfRange)

	bad = good
	bad.SimRuns = 0
	assert.ErrorIs(t, bad.Validate(), core.ErrOutOfRange)
}

func TestComparison_Less(t *testing.T) {
	a := Comparison{Theta1: 0.5, Theta2: 0.6, RsimG1: 0.8, RsimG2: 0.8, NBiorep: 3, AllelicReads: 100, SimRuns: 10}
	b := a
	b.NBiorep = 4
	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
	assert.False(t, a.Less(a))
}
