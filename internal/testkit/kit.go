package testkit

import (
	"path/filepath"
	"strconv"
	"testing"

	"asepower/internal/table"
)

// ResultColumns are the fitting-engine output columns the summary reads.
var ResultColumns = []string{
	"alpha1_postmean", "alpha2_postmean",
	"c1_theta", "c2_theta",
	"c1_sampleprop", "c2_sampleprop",
	"c1_Bayes_evidence", "c2_Bayes_evidence", "H3_independence_Bayes_evidence",
}

// ResultSpec describes a synthetic fitting-engine result table. Columns not
// set in Values are filled with Fill.
type ResultSpec struct {
	Comparison string
	Rows       int
	Values     map[string][]float64
	Fill       float64
	Omit       []string // columns left out of the header
}

// ResultTable builds the table described by spec.
func ResultTable(spec ResultSpec) *table.Table {
	omit := make(map[string]bool, len(spec.Omit))
	for _, c := range spec.Omit {
		omit[c] = true
	}

	header := []string{"FEATURE_ID", "comparison"}
	for _, c := range ResultColumns {
		if !omit[c] {
			header = append(header, c)
		}
	}

	t := table.New(header)
	for i := 0; i < spec.Rows; i++ {
		row := []string{FeatureID(i + 1), spec.Comparison}
		for _, c := range header[2:] {
			v := spec.Fill
			if vals, ok := spec.Values[c]; ok && i < len(vals) {
				v = vals[i]
			}
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// WriteTable stores t as TSV under dir and returns its path.
func WriteTable(tb testing.TB, dir, name string, t *table.Table) string {
	tb.Helper()
	path := filepath.Join(dir, name)
	if err := t.Write(path, table.TSV); err != nil {
		tb.Fatalf("write %s: %v", path, err)
	}
	return path
}
