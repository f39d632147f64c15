package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"asepower/adapters/export"
	"asepower/domain/core"
	"asepower/domain/run"
	"asepower/internal"
	"asepower/internal/dataset"
	"asepower/internal/pairing"
	"asepower/ports"
)

// MergeService pairs two condition designs and merges their simulated
// tables into comparison datasets.
type MergeService struct {
	loader ports.DesignLoader
	logger *internal.Logger
}

// MergeRequest defines the inputs of a merge run
type MergeRequest struct {
	Design1        string
	Design2        string
	SimulationRoot string
	OutputDir      string // <SimulationRoot>/<category dir> when empty
	FeatureColumn  string
	Workers        int
	SameImbalance  bool
}

// MergeResponse contains the outcome of a merge run
type MergeResponse struct {
	RunID        core.RunID             `json:"run_id"`
	Category     pairing.Category       `json:"category"`
	OutputDir    string                 `json:"output_dir"`
	Results      []*dataset.MergeResult `json:"results"`
	Dropped      int                    `json:"dropped"`
	Duplicates   int                    `json:"duplicates"`
	ManifestPath string                 `json:"manifest_path"`
	RuntimeMs    int64                  `json:"runtime_ms"`
}

// NewMergeService creates a merge service
func NewMergeService(loader ports.DesignLoader, logger *internal.Logger) *MergeService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &MergeService{loader: loader, logger: logger}
}

// Run executes one merge. An empty pair list is a valid outcome.
func (s *MergeService) Run(ctx context.Context, req MergeRequest) (*MergeResponse, error) {
	startTime := time.Now()
	runID := core.NewRunID()

	d1, err := s.loader.LoadDesign(req.Design1)
	if err != nil {
		return nil, err
	}
	d2, err := s.loader.LoadDesign(req.Design2)
	if err != nil {
		return nil, err
	}

	category, err := pairing.Classify(d1, d2)
	if err != nil {
		return nil, err
	}
	s.logger.Info("[MergeService] Run %s: %s", runID, category)

	paired := pairing.NewPairer(pairing.Options{SameImbalance: req.SameImbalance}).Pair(d1, d2, category)
	if paired.Dropped > 0 {
		s.logger.Warn("[MergeService] %d design rows found no partner and were dropped", paired.Dropped)
	}
	if paired.Duplicates > 0 {
		s.logger.Warn("[MergeService] %d duplicate comparisons skipped", paired.Duplicates)
	}

	outputDir := req.OutputDir
	if outputDir == "" {
		outputDir = filepath.Join(req.SimulationRoot, category.DirName())
	}

	merger := dataset.NewMerger(&dataset.MergeConfig{
		SimulationRoot: req.SimulationRoot,
		OutputDir:      outputDir,
		FeatureColumn:  req.FeatureColumn,
		Workers:        req.Workers,
	}, s.logger)
	results, err := merger.MergeAll(ctx, paired.Pairs)
	if err != nil {
		return nil, err
	}

	rows := 0
	for _, r := range results {
		rows += r.RowCount
	}
	manifest := run.NewManifest(runID, run.KindMerge, []string{req.Design1, req.Design2}, outputDir,
		fmt.Sprintf("category=%d same_imbalance=%t feature=%s", category, req.SameImbalance, req.FeatureColumn),
		run.Counts{Pairs: len(paired.Pairs), Dropped: paired.Dropped, Duplicates: paired.Duplicates, Files: len(results), Rows: rows})
	manifestPath, err := export.WriteManifest(manifest)
	if err != nil {
		return nil, err
	}

	return &MergeResponse{
		RunID:        runID,
		Category:     category,
		OutputDir:    outputDir,
		Results:      results,
		Dropped:      paired.Dropped,
		Duplicates:   paired.Duplicates,
		ManifestPath: manifestPath,
		RuntimeMs:    time.Since(startTime).Milliseconds(),
	}, nil
}
