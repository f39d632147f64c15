package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"asepower/adapters/excel"
	"asepower/adapters/export"
	"asepower/domain/core"
	"asepower/domain/run"
	"asepower/domain/summary"
	"asepower/internal"
	"asepower/internal/analysis"
	apperrors "asepower/internal/errors"
	"asepower/ports"
)

// SummaryService summarizes fitting-engine results into the summary table.
type SummaryService struct {
	stores []ports.SummarySink
	logger *internal.Logger
}

// SummaryRequest defines the inputs of a summary run
type SummaryRequest struct {
	Dirs            []string
	Output          string // CSV summary table
	XLSX            string // optional workbook copy
	ExcludeSuffixes []string
	Workers         int
	SortByScenario  bool
}

// SummaryResponse contains the outcome of a summary run
type SummaryResponse struct {
	RunID        core.RunID    `json:"run_id"`
	Rows         []summary.Row `json:"rows"`
	Sinks        []string      `json:"sinks"`
	ManifestPath string        `json:"manifest_path"`
	RuntimeMs    int64         `json:"runtime_ms"`
}

// NewSummaryService creates a summary service. stores receive every
// successful run in addition to the CSV table.
func NewSummaryService(logger *internal.Logger, stores ...ports.SummarySink) *SummaryService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &SummaryService{stores: stores, logger: logger}
}

// Run summarizes every result table under req.Dirs. Nothing is written
// unless every table summarizes.
func (s *SummaryService) Run(ctx context.Context, req SummaryRequest) (*SummaryResponse, error) {
	startTime := time.Now()
	runID := core.NewRunID()

	if len(req.Dirs) == 0 {
		return nil, apperrors.InvalidInput("no input directories")
	}

	aggregator := analysis.NewAggregator(&analysis.AggregatorConfig{
		ExcludeSuffixes: req.ExcludeSuffixes,
		Workers:         req.Workers,
		SortByScenario:  req.SortByScenario,
	}, s.logger)
	rows, err := aggregator.Summarize(ctx, req.Dirs)
	if err != nil {
		return nil, err
	}

	names, err := s.writeOutputs(ctx, runID, req, rows)
	if err != nil {
		return nil, err
	}

	manifest := run.NewManifest(runID, run.KindSummarize, req.Dirs, req.Output,
		fmt.Sprintf("exclude=%s sorted=%t", strings.Join(req.ExcludeSuffixes, ","), req.SortByScenario),
		run.Counts{Files: len(rows), Rows: len(rows)})
	manifestPath, err := export.WriteManifest(manifest)
	if err != nil {
		return nil, err
	}

	s.logger.Info("[SummaryService] Run %s: %d scenarios -> %s", runID, len(rows), strings.Join(names, ", "))

	return &SummaryResponse{
		RunID:        runID,
		Rows:         rows,
		Sinks:        names,
		ManifestPath: manifestPath,
		RuntimeMs:    time.Since(startTime).Milliseconds(),
	}, nil
}

// summaryOutput is a sink plus the file it creates, if any.
type summaryOutput struct {
	sink ports.SummarySink
	file string
}

// writeOutputs hands rows to every sink. The CSV table goes last, so a run
// that fails on any other sink leaves no table behind; workbooks written
// before the failure are removed.
func (s *SummaryService) writeOutputs(ctx context.Context, runID core.RunID, req SummaryRequest, rows []summary.Row) ([]string, error) {
	var outputs []summaryOutput
	if req.XLSX != "" {
		outputs = append(outputs, summaryOutput{sink: excel.NewSummaryWriter(req.XLSX, s.logger), file: req.XLSX})
	}
	for _, store := range s.stores {
		outputs = append(outputs, summaryOutput{sink: store})
	}
	outputs = append(outputs, summaryOutput{sink: export.NewCSVSummaryWriter(req.Output, s.logger), file: req.Output})

	names := make([]string, 0, len(outputs))
	var written []string
	for _, out := range outputs {
		if err := out.sink.WriteSummary(ctx, runID, rows); err != nil {
			for _, file := range written {
				if rmErr := os.Remove(file); rmErr != nil && !os.IsNotExist(rmErr) {
					s.logger.Warn("[SummaryService] Run %s: failed to remove %s: %v", runID, file, rmErr)
				}
			}
			return nil, fmt.Errorf("write summary to %s: %w", out.sink.Name(), err)
		}
		if out.file != "" {
			written = append(written, out.file)
		}
		names = append(names, out.sink.Name())
	}
	return names, nil
}
