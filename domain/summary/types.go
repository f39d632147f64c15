// Package summary defines the per-scenario summary row written for the
// plotting collaborator.
package summary

import (
	"fmt"
	"math"
	"strconv"

	"asepower/domain/core"
	"asepower/domain/scenario"
)

// Thresholds the Bayes evidence columns are compared against.
const (
	Threshold05 = 0.05
	Threshold01 = 0.01
)

// ColumnStats summarizes one monitored posterior column.
type ColumnStats struct {
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	Variance float64 `json:"variance"`
}

// EvidenceProps is the share of features whose Bayes evidence falls strictly
// below each threshold.
type EvidenceProps struct {
	LE05 float64 `json:"le05"`
	LE01 float64 `json:"le01"`
}

// Row is one scenario's summary. Field order matches Columns.
type Row struct {
	NFeature          int     `json:"nfeature"`
	RG1               float64 `json:"r_g1"`
	RG2               float64 `json:"r_g2"`
	NumBioreps        int     `json:"num_bioreps"`
	ReadsPerBiorep    float64 `json:"num_allele_specific_reads_per_biorep"`
	AllelicReads      int     `json:"num_allele_specific_reads"`
	CoveragePerBiorep float64 `json:"coverage_per_biorep"`
	Theta1Sim         float64 `json:"theta1_sim"`
	Theta2Sim         float64 `json:"theta2_sim"`
	DeltaAI1          float64 `json:"delta_AI_1"`
	DeltaAI2          float64 `json:"delta_AI_2"`
	DeltaAI3          float64 `json:"delta_AI_3"`
	Alpha1Sim         float64 `json:"alpha1_sim"`
	Alpha2Sim         float64 `json:"alpha2_sim"`

	Alpha1       ColumnStats `json:"alpha1"`
	Alpha2       ColumnStats `json:"alpha2"`
	Theta1       ColumnStats `json:"theta1"`
	Theta2       ColumnStats `json:"theta2"`
	C1SampleProp ColumnStats `json:"c1_sampleprop"`
	C2SampleProp ColumnStats `json:"c2_sampleprop"`

	H1 EvidenceProps `json:"h1"`
	H2 EvidenceProps `json:"h2"`
	H3 EvidenceProps `json:"h3"`

	// Not part of the table.
	Comparison scenario.Comparison `json:"-"`
	Source     string              `json:"source"`
}

// Columns is the fixed header of the summary table.
var Columns = []string{
	"nfeature", "r_g1", "r_g2", "num_bioreps", "num_allele_specific_reads_per_biorep",
	"num_allele_specific_reads", "coverage_per_biorep",
	"theta1_sim", "theta2_sim", "delta_AI_1", "delta_AI_2", "delta_AI_3",
	"alpha1_sim", "alpha2_sim",
	"average_alpha1", "median_alpha1", "variance_alpha1",
	"average_alpha2", "median_alpha2", "variance_alpha2",
	"average_theta1", "median_theta1", "variance_theta1",
	"average_theta2", "median_theta2", "variance_theta2",
	"average_c1_sampleprop", "median_c1_sampleprop", "variance_c1_sampleprop",
	"average_c2_sampleprop", "median_c2_sampleprop", "variance_c2_sampleprop",
	"prop_H1_LE05", "prop_H1_LE01", "prop_H2_LE05", "prop_H2_LE01", "prop_H3_LE05", "prop_H3_LE01",
}

// Values returns the row's cells in Columns order, integers as int and
// everything else as float64.
func (r Row) Values() []interface{} {
	vals := []interface{}{
		r.NFeature, r.RG1, r.RG2, r.NumBioreps, r.ReadsPerBiorep,
		r.AllelicReads, r.CoveragePerBiorep,
		r.Theta1Sim, r.Theta2Sim, r.DeltaAI1, r.DeltaAI2, r.DeltaAI3,
		r.Alpha1Sim, r.Alpha2Sim,
	}
	for _, s := range []ColumnStats{r.Alpha1, r.Alpha2, r.Theta1, r.Theta2, r.C1SampleProp, r.C2SampleProp} {
		vals = append(vals, s.Mean, s.Median, s.Variance)
	}
	for _, p := range []EvidenceProps{r.H1, r.H2, r.H3} {
		vals = append(vals, p.LE05, p.LE01)
	}
	return vals
}

// Record formats the row for a delimited file.
func (r Row) Record() []string {
	vals := r.Values()
	out := make([]string, len(vals))
	for i, v := range vals {
		switch x := v.(type) {
		case int:
			out[i] = strconv.Itoa(x)
		case float64:
			out[i] = strconv.FormatFloat(x, 'g', -1, 64)
		}
	}
	return out
}

// FromValues rebuilds a row from cells in Columns order. Integer columns
// must hold whole numbers.
func FromValues(vals []float64) (Row, error) {
	if len(vals) != len(Columns) {
		return Row{}, fmt.Errorf("%w: %d values for %d summary columns", core.ErrSchemaMismatch, len(vals), len(Columns))
	}
	for _, i := range []int{0, 3, 5} {
		if vals[i] != math.Trunc(vals[i]) {
			return Row{}, fmt.Errorf("%w: %s value %v is not an integer", core.ErrSchemaMismatch, Columns[i], vals[i])
		}
	}

	r := Row{
		NFeature:          int(vals[0]),
		RG1:               vals[1],
		RG2:               vals[2],
		NumBioreps:        int(vals[3]),
		ReadsPerBiorep:    vals[4],
		AllelicReads:      int(vals[5]),
		CoveragePerBiorep: vals[6],
		Theta1Sim:         vals[7],
		Theta2Sim:         vals[8],
		DeltaAI1:          vals[9],
		DeltaAI2:          vals[10],
		DeltaAI3:          vals[11],
		Alpha1Sim:         vals[12],
		Alpha2Sim:         vals[13],
	}
	stats := []*ColumnStats{&r.Alpha1, &r.Alpha2, &r.Theta1, &r.Theta2, &r.C1SampleProp, &r.C2SampleProp}
	for i, s := range stats {
		base := 14 + 3*i
		*s = ColumnStats{Mean: vals[base], Median: vals[base+1], Variance: vals[base+2]}
	}
	props := []*EvidenceProps{&r.H1, &r.H2, &r.H3}
	for i, p := range props {
		base := 32 + 2*i
		*p = EvidenceProps{LE05: vals[base], LE01: vals[base+1]}
	}
	r.Comparison = scenario.Comparison{
		Theta1:       r.Theta1Sim,
		Theta2:       r.Theta2Sim,
		RsimG1:       r.RG1,
		RsimG2:       r.RG2,
		NBiorep:      r.NumBioreps,
		AllelicReads: r.AllelicReads,
	}
	return r, nil
}

// FromRecord parses one line of a summary table with the given header.
// Extra columns are ignored.
func FromRecord(header, record []string) (Row, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[h] = i
	}
	vals := make([]float64, len(Columns))
	for i, col := range Columns {
		j, ok := index[col]
		if !ok {
			return Row{}, core.NewMissingColumnError("summary", col)
		}
		if j >= len(record) {
			return Row{}, fmt.Errorf("%w: record has %d fields, %s is field %d", core.ErrSchemaMismatch, len(record), col, j+1)
		}
		v, err := strconv.ParseFloat(record[j], 64)
		if err != nil {
			return Row{}, fmt.Errorf("%w: %s value %q is not a number", core.ErrSchemaMismatch, col, record[j])
		}
		vals[i] = v
	}
	return FromValues(vals)
}
