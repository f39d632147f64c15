package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"asepower/domain/core"
	"asepower/domain/summary"
	"asepower/internal"
	apperrors "asepower/internal/errors"
	"asepower/internal/table"
	"asepower/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySink struct {
	rows []summary.Row
	err  error
}

func (m *memorySink) Name() string { return "memory" }

func (m *memorySink) WriteSummary(ctx context.Context, runID core.RunID, rows []summary.Row) error {
	if m.err != nil {
		return m.err
	}
	m.rows = rows
	return nil
}

const comparisonID = "theta1_0.5_theta2_0.7_rsim-g1_0.8_rsim-g2_0.8_nbiorep_4_allelicreads_200_simruns_50"

func writeResults(t *testing.T, dir string, omit ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	testkit.WriteTable(t, dir, "result_1.tsv", testkit.ResultTable(testkit.ResultSpec{Comparison: comparisonID, Rows: 10, Fill: 0.5}))
	testkit.WriteTable(t, dir, "result_2.tsv", testkit.ResultTable(testkit.ResultSpec{Comparison: comparisonID, Rows: 20, Fill: 0.01, Omit: omit}))
}

func TestSummaryService_Run(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "H1_null_H2_not_null_H3_not_null")
	writeResults(t, dir)

	store := &memorySink{}
	output := filepath.Join(root, "summary", "posterior_estimates_summary_across_simul.csv")
	resp, err := NewSummaryService(internal.NewDiscardLogger(), store).Run(context.Background(), SummaryRequest{
		Dirs:   []string{dir},
		Output: output,
		XLSX:   filepath.Join(root, "summary", "summary.xlsx"),
	})
	require.NoError(t, err)

	require.Len(t, resp.Rows, 2)
	assert.Equal(t, 10, resp.Rows[0].NFeature)
	assert.Equal(t, 20, resp.Rows[1].NFeature)
	assert.InDelta(t, 1.0, resp.Rows[1].H1.LE05, 1e-12)
	assert.Len(t, store.rows, 2)
	assert.Len(t, resp.Sinks, 3)

	got, err := table.Read(output, table.CSV)
	require.NoError(t, err)
	assert.Equal(t, summary.Columns, got.Header)
	assert.Equal(t, 2, got.Len())
	assert.FileExists(t, filepath.Join(root, "summary", "summary.xlsx"))
	assert.FileExists(t, resp.ManifestPath)
}

func TestSummaryService_FailsWithoutWriting(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "results")
	writeResults(t, dir, "H3_independence_Bayes_evidence")

	store := &memorySink{}
	output := filepath.Join(root, "summary.csv")
	_, err := NewSummaryService(internal.NewDiscardLogger(), store).Run(context.Background(), SummaryRequest{
		Dirs:   []string{dir},
		Output: output,
	})
	require.ErrorIs(t, err, core.ErrMissingColumn)
	assert.Contains(t, err.Error(), "result_2.tsv")
	assert.NoFileExists(t, output)
	assert.NoFileExists(t, output+".manifest.json")
	assert.Nil(t, store.rows)
}

func TestSummaryService_StoreFailure(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "results")
	writeResults(t, dir)

	output := filepath.Join(root, "summary.csv")
	_, err := NewSummaryService(internal.NewDiscardLogger(), &memorySink{err: errors.New("connection refused")}).Run(
		context.Background(), SummaryRequest{Dirs: []string{dir}, Output: output})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "memory")
	assert.NoFileExists(t, output)
	assert.NoFileExists(t, output+".manifest.json")
}

func TestSummaryService_StoreFailureRemovesWorkbook(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "results")
	writeResults(t, dir)

	output := filepath.Join(root, "summary.csv")
	workbook := filepath.Join(root, "summary.xlsx")
	_, err := NewSummaryService(internal.NewDiscardLogger(), &memorySink{err: errors.New("connection refused")}).Run(
		context.Background(), SummaryRequest{Dirs: []string{dir}, Output: output, XLSX: workbook})
	require.Error(t, err)
	assert.NoFileExists(t, workbook)
	assert.NoFileExists(t, output)
	assert.NoFileExists(t, output+".manifest.json")
}

func TestSummaryService_NoDirs(t *testing.T) {
	_, err := NewSummaryService(internal.NewDiscardLogger()).Run(context.Background(), SummaryRequest{Output: "x.csv"})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}
