package simulate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"asepower/domain/design"
	"asepower/domain/scenario"
	"asepower/internal"
	"asepower/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSimulator struct {
	mu   sync.Mutex
	jobs []ports.SimulationJob
	fail string
}

func (f *fakeSimulator) Simulate(ctx context.Context, job ports.SimulationJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs = append(f.jobs, job)
	if f.fail != "" && job.OutputPrefix == f.fail {
		return errors.New("simulator exited with status 1")
	}
	return nil
}

func testDesign() *design.Table {
	return &design.Table{
		Name: "c1",
		Records: []design.Record{
			{Theta: 0.5, RsimG1: 0.8, RsimG2: 0.8, NBiorep: 3, AllelicReads: 120, SimRuns: 100},
			{Theta: 0.7, RsimG1: 0.8, RsimG2: 0.8, NBiorep: 3, AllelicReads: 120, SimRuns: 100},
		},
	}
}

func TestRunner_Plan(t *testing.T) {
	r := NewRunner(&RunnerConfig{OutputDir: "sims", Sets: 2}, &fakeSimulator{}, internal.NewDiscardLogger())

	jobs := r.Plan(testDesign())
	require.Len(t, jobs, 4)

	prefixes := make([]string, len(jobs))
	for i, j := range jobs {
		prefixes[i] = j.OutputPrefix
	}
	assert.Equal(t, []string{
		filepath.Join("sims", scenario.NullDir, "out_set_1"),
		filepath.Join("sims", scenario.NullDir, "out_set_2"),
		filepath.Join("sims", scenario.NotNullDir, "out_set_1"),
		filepath.Join("sims", scenario.NotNullDir, "out_set_2"),
	}, prefixes)
	assert.Equal(t, 0.7, jobs[3].Key.Theta)
	assert.Equal(t, 2, jobs[3].Set)
}

func TestRunner_Run(t *testing.T) {
	root := t.TempDir()
	sim := &fakeSimulator{}
	r := NewRunner(&RunnerConfig{OutputDir: root, Sets: 2, Workers: 3}, sim, internal.NewDiscardLogger())

	require.NoError(t, r.Run(context.Background(), r.Plan(testDesign())))
	assert.Len(t, sim.jobs, 4)
	assert.DirExists(t, filepath.Join(root, scenario.NullDir))
	assert.DirExists(t, filepath.Join(root, scenario.NotNullDir))
}

func TestRunner_RunFails(t *testing.T) {
	root := t.TempDir()
	sim := &fakeSimulator{fail: filepath.Join(root, scenario.NotNullDir, "out_set_1")}
	r := NewRunner(&RunnerConfig{OutputDir: root}, sim, internal.NewDiscardLogger())

	err := r.Run(context.Background(), r.Plan(testDesign()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 1")
}

func TestRunner_RunEmpty(t *testing.T) {
	root := filepath.Join(t.TempDir(), "unused")
	r := NewRunner(&RunnerConfig{OutputDir: root}, &fakeSimulator{}, internal.NewDiscardLogger())

	require.NoError(t, r.Run(context.Background(), nil))
	_, err := os.Stat(root)
	assert.True(t, os.IsNotExist(err))
}
