// Package export writes run outputs to the filesystem.
package export

import (
	"context"

	"asepower/domain/core"
	"asepower/domain/summary"
	"asepower/internal"
	"asepower/internal/table"
)

// CSVSummaryWriter writes the summary table consumed by the plotting tools.
type CSVSummaryWriter struct {
	path   string
	logger *internal.Logger
}

// NewCSVSummaryWriter creates a writer for path.
func NewCSVSummaryWriter(path string, logger *internal.Logger) *CSVSummaryWriter {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &CSVSummaryWriter{path: path, logger: logger}
}

func (w *CSVSummaryWriter) Name() string { return "csv:" + w.path }

// WriteSummary implements ports.SummarySink. The file appears complete or
// not at all.
func (w *CSVSummaryWriter) WriteSummary(ctx context.Context, runID core.RunID, rows []summary.Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := SummaryTable(rows).Write(w.path, table.CSV); err != nil {
		return err
	}
	w.logger.Info("[CSVSummaryWriter] Run %s: wrote %d rows to %s", runID, len(rows), w.path)
	return nil
}

// SummaryTable lays rows out under the fixed summary header.
func SummaryTable(rows []summary.Row) *table.Table {
	t := table.New(summary.Columns)
	for _, row := range rows {
		t.Rows = append(t.Rows, row.Record())
	}
	return t
}
