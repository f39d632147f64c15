package app

import (
	"context"
	"fmt"
	"time"

	"asepower/adapters/export"
	"asepower/domain/core"
	"asepower/domain/run"
	"asepower/internal"
	"asepower/internal/simulate"
	"asepower/ports"
)

// SimulationService runs the external simulator over a design file.
type SimulationService struct {
	loader    ports.DesignLoader
	simulator ports.Simulator
	logger    *internal.Logger
}

// SimulationRequest defines the inputs of a simulation run
type SimulationRequest struct {
	Design    string
	OutputDir string
	Sets      int
	Workers   int
}

// SimulationResponse contains the outcome of a simulation run
type SimulationResponse struct {
	RunID        core.RunID            `json:"run_id"`
	Jobs         []ports.SimulationJob `json:"jobs"`
	ManifestPath string                `json:"manifest_path"`
	RuntimeMs    int64                 `json:"runtime_ms"`
}

// NewSimulationService creates a simulation service
func NewSimulationService(loader ports.DesignLoader, simulator ports.Simulator, logger *internal.Logger) *SimulationService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &SimulationService{loader: loader, simulator: simulator, logger: logger}
}

// Run simulates every design record req.Sets times.
func (s *SimulationService) Run(ctx context.Context, req SimulationRequest) (*SimulationResponse, error) {
	startTime := time.Now()
	runID := core.NewRunID()

	d, err := s.loader.LoadDesign(req.Design)
	if err != nil {
		return nil, err
	}

	runner := simulate.NewRunner(&simulate.RunnerConfig{
		OutputDir: req.OutputDir,
		Sets:      req.Sets,
		Workers:   req.Workers,
	}, s.simulator, s.logger)
	jobs := runner.Plan(d)
	s.logger.Info("[SimulationService] Run %s: %d records x %d sets from %s", runID, len(d.Records), req.Sets, req.Design)

	if err := runner.Run(ctx, jobs); err != nil {
		return nil, err
	}

	manifest := run.NewManifest(runID, run.KindSimulate, []string{req.Design}, req.OutputDir,
		fmt.Sprintf("sets=%d", req.Sets), run.Counts{Files: len(jobs), Rows: len(d.Records)})
	manifestPath, err := export.WriteManifest(manifest)
	if err != nil {
		return nil, err
	}

	return &SimulationResponse{
		RunID:        runID,
		Jobs:         jobs,
		ManifestPath: manifestPath,
		RuntimeMs:    time.Since(startTime).Milliseconds(),
	}, nil
}
