// Package simulate drives the external simulator over a design table.
package simulate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"asepower/domain/design"
	"asepower/domain/scenario"
	"asepower/internal"
	"asepower/ports"

	"golang.org/x/sync/errgroup"
)

// SetPrefix starts every simulator output prefix.
const SetPrefix = "out_set_"

// RunnerConfig configures a simulation run
type RunnerConfig struct {
	OutputDir string
	Sets      int // Replicate sets per design record
	Workers   int // Concurrent simulator processes, 1 when unset
}

// Runner fans design records out to the simulator.
type Runner struct {
	config    *RunnerConfig
	simulator ports.Simulator
	logger    *internal.Logger
}

// NewRunner creates a runner
func NewRunner(config *RunnerConfig, simulator ports.Simulator, logger *internal.Logger) *Runner {
	cfg := *config
	if cfg.Sets < 1 {
		cfg.Sets = 1
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Runner{config: &cfg, simulator: simulator, logger: logger}
}

// Plan lists one job per record and set, records in design order and sets
// ascending. Null records go to H1_null, the rest to H1_not_null.
func (r *Runner) Plan(t *design.Table) []ports.SimulationJob {
	jobs := make([]ports.SimulationJob, 0, len(t.Records)*r.config.Sets)
	for _, rec := range t.Records {
		k := rec.Key()
		for set := 1; set <= r.config.Sets; set++ {
			jobs = append(jobs, ports.SimulationJob{
				Key:          k,
				Set:          set,
				OutputPrefix: filepath.Join(r.config.OutputDir, scenario.SimulationDir(k), fmt.Sprintf("%s%d", SetPrefix, set)),
			})
		}
	}
	return jobs
}

// Run executes jobs, stopping at the first failure.
func (r *Runner) Run(ctx context.Context, jobs []ports.SimulationJob) error {
	startTime := time.Now()

	dirs := make(map[string]bool)
	for _, job := range jobs {
		dir := filepath.Dir(job.OutputPrefix)
		if dirs[dir] {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create simulation directory %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.Workers)
	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r.logger.Info("[Simulate] Job %d/%d: theta=%v set=%d -> %s",
				i+1, len(jobs), job.Key.Theta, job.Set, job.OutputPrefix)
			return r.simulator.Simulate(gctx, job)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	r.logger.Info("[Simulate] %d simulator runs completed in %s", len(jobs), time.Since(startTime).Round(time.Millisecond))
	return nil
}
