// Package design models the CSV design files that parameterize simulations.
package design

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"asepower/domain/core"
	"asepower/domain/scenario"
)

// Design file columns.
const (
	ColTheta        = "theta"
	ColSimRuns      = "simruns"
	ColNBiorep      = "nbiorep"
	ColAllelicReads = "n_allele_specific_reads"
	ColRsimG1       = "rsim-g1"
	ColRsimG2       = "rsim-g2"
)

// RequiredColumns must be present in every design file.
var RequiredColumns = []string{ColTheta, ColSimRuns, ColNBiorep, ColAllelicReads}

// Record is one row of a design file.
type Record struct {
	Theta        float64
	RsimG1       float64
	RsimG2       float64
	NBiorep      int
	AllelicReads int
	SimRuns      int
	Line         int // 1-based data row, for error messages
}

// Key returns the scenario the record parameterizes.
func (r Record) Key() scenario.Key {
	return scenario.Key{
		Theta:        r.Theta,
		RsimG1:       r.RsimG1,
		RsimG2:       r.RsimG2,
		NBiorep:      r.NBiorep,
		AllelicReads: r.AllelicReads,
		SimRuns:      r.SimRuns,
	}
}

// Table is an ordered design file.
type Table struct {
	Name    string
	Path    string
	Records []Record
}

// NotNull reports whether the design simulates allelic imbalance. The file
// name decides when it carries a null/not_null marker, the thetas otherwise.
func (t *Table) NotNull() bool {
	name := strings.ToLower(t.Name)
	if strings.Contains(name, "not_null") {
		return true
	}
	if strings.Contains(name, "null") {
		return false
	}
	for _, r := range t.Records {
		if r.Theta != scenario.NullTheta {
			return true
		}
	}
	return false
}

// NameFromPath strips directory and extension from a design file path.
func NameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// FromRows builds a Table from header-keyed rows. Missing rsim-g1/rsim-g2
// columns default to the unbiased mapping rate.
func FromRows(path string, headers []string, rows []map[string]string) (*Table, error) {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}
	for _, col := range RequiredColumns {
		if !present[col] {
			return nil, core.NewInvalidDesignError(path, fmt.Sprintf("missing column %q", col))
		}
	}

	t := &Table{Name: NameFromPath(path), Path: path, Records: make([]Record, 0, len(rows))}
	for i, row := range rows {
		rec, err := parseRecord(row, i+1)
		if err != nil {
			return nil, core.NewInvalidDesignError(path, err.Error())
		}
		t.Records = append(t.Records, rec)
	}
	return t, nil
}

func parseRecord(row map[string]string, line int) (Record, error) {
	rec := Record{Line: line, RsimG1: scenario.DefaultMappingRate, RsimG2: scenario.DefaultMappingRate}
	var err error

	if rec.Theta, err = parseFloat(row, ColTheta, line); err != nil {
		return Record{}, err
	}
	if rec.SimRuns, err = parseInt(row, ColSimRuns, line); err != nil {
		return Record{}, err
	}
	if rec.NBiorep, err = parseInt(row, ColNBiorep, line); err != nil {
		return Record{}, err
	}
	if rec.AllelicReads, err = parseInt(row, ColAllelicReads, line); err != nil {
		return Record{}, err
	}
	if v, ok := row[ColRsimG1]; ok && v != "" {
		if rec.RsimG1, err = parseFloat(row, ColRsimG1, line); err != nil {
			return Record{}, err
		}
	}
	if v, ok := row[ColRsimG2]; ok && v != "" {
		if rec.RsimG2, err = parseFloat(row, ColRsimG2, line); err != nil {
			return Record{}, err
		}
	}

	if err := rec.Key().Validate(); err != nil {
		return Record{}, fmt.Errorf("row %d: %w", line, err)
	}
	return rec, nil
}

func parseFloat(row map[string]string, col string, line int) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
	if err != nil {
		return 0, fmt.Errorf("row %d: %s value %q is not a number", line, col, row[col])
	}
	return v, nil
}

func parseInt(row map[string]string, col string, line int) (int, error) {
	raw := strings.TrimSpace(row[col])
	if v, err := strconv.Atoi(raw); err == nil {
		return v, nil
	}
	// spreadsheets hand integers back as 100.0
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("row %d: %s value %q is not an integer", line, col, row[col])
	}
	return int(f), nil
}
