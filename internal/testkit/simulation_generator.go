package testkit

import (
	"fmt"
	"math/rand"
	"strconv"

	"asepower/internal/table"
)

// SimulationConfig configures the read-count table generator
type SimulationConfig struct {
	Features int     `json:"features"`
	NBiorep  int     `json:"nbiorep"`
	Theta    float64 `json:"theta"`
	Depth    int     `json:"depth"` // mean allele-specific reads per replicate
	Seed     int64   `json:"seed"`
}

// DefaultSimulationConfig returns small defaults suitable for tests
func DefaultSimulationConfig() SimulationConfig {
	return SimulationConfig{
		Features: 100,
		NBiorep:  3,
		Theta:    0.5,
		Depth:    40,
		Seed:     42,
	}
}

// SimulationGenerator produces per-condition wide tables shaped like the
// simulator's output: FEATURE_ID then c1_ count columns per replicate.
type SimulationGenerator struct {
	config SimulationConfig
	rng    *rand.Rand
}

// NewSimulationGenerator creates a generator
func NewSimulationGenerator(config SimulationConfig) *SimulationGenerator {
	return &SimulationGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Header returns the simulated table header.
func (g *SimulationGenerator) Header() []string {
	header := []string{"FEATURE_ID"}
	for r := 1; r <= g.config.NBiorep; r++ {
		header = append(header,
			fmt.Sprintf("c1_g1_%d", r),
			fmt.Sprintf("c1_g2_%d", r),
			fmt.Sprintf("c1_both_%d", r),
		)
	}
	return append(header, "c1_num_reps")
}

// Generate builds a table; feature identifiers are F0001, F0002, ...
func (g *SimulationGenerator) Generate() *table.Table {
	t := table.New(g.Header())
	for f := 1; f <= g.config.Features; f++ {
		row := []string{FeatureID(f)}
		for r := 0; r < g.config.NBiorep; r++ {
			total := g.config.Depth/2 + g.rng.Intn(g.config.Depth+1)
			g1 := 0
			for i := 0; i < total; i++ {
				if g.rng.Float64() < g.config.Theta {
					g1++
				}
			}
			both := g.rng.Intn(g.config.Depth/4 + 1)
			row = append(row, strconv.Itoa(g1), strconv.Itoa(total-g1), strconv.Itoa(both))
		}
		row = append(row, strconv.Itoa(g.config.NBiorep))
		t.Rows = append(t.Rows, row)
	}
	return t
}

// FeatureID formats the i-th synthetic feature identifier.
func FeatureID(i int) string {
	return fmt.Sprintf("F%04d", i)
}
