package excel

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"asepower/domain/core"
	"asepower/domain/summary"
	"asepower/internal"

	"github.com/xuri/excelize/v2"
)

// SummaryWriter stores the summary table as a workbook, one row per
// scenario under the fixed summary header.
type SummaryWriter struct {
	path   string
	logger *internal.Logger
}

// NewSummaryWriter creates a writer for path.
func NewSummaryWriter(path string, logger *internal.Logger) *SummaryWriter {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &SummaryWriter{path: path, logger: logger}
}

func (w *SummaryWriter) Name() string { return "xlsx:" + w.path }

// WriteSummary implements ports.SummarySink.
func (w *SummaryWriter) WriteSummary(ctx context.Context, runID core.RunID, rows []summary.Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := WriteSummaryXLSX(w.path, rows); err != nil {
		return err
	}
	w.logger.Info("[SummaryWriter] Run %s: wrote %d rows to %s", runID, len(rows), w.path)
	return nil
}

// WriteSummaryXLSX writes rows to a new workbook at path. Integers and
// floats are stored as numbers.
func WriteSummaryXLSX(path string, rows []summary.Row) error {
	f := excelize.NewFile()
	defer f.Close()

	// Ensure Sheet1 exists and is active.
	sheet := DefaultSheet
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx == -1 {
		idx, err := f.NewSheet(sheet)
		if err != nil {
			return err
		}
		f.SetActiveSheet(idx)
	}

	// Header row
	for i, h := range summary.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	// Data rows
	for r, row := range rows {
		for c, v := range row.Values() {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	// SaveAs picks the format from the extension, so the workbook is
	// streamed into the temp file instead.
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.temp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)
	if _, err := f.WriteTo(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close workbook %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move workbook into %s: %w", path, err)
	}
	return nil
}
