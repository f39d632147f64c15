package ports

import (
	"context"

	"asepower/domain/scenario"
)

// SimulationJob is one invocation of the external simulator: one design
// record, one replicate set.
type SimulationJob struct {
	Key          scenario.Key
	Set          int
	OutputPrefix string // <outdir>/H1_null|H1_not_null/out_set_<set>
}

// Simulator produces the per-feature wide table of a job.
type Simulator interface {
	Simulate(ctx context.Context, job SimulationJob) error
}
