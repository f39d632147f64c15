// Package scenario holds the identity of one simulated allele-specific
// expression scenario and its filename encoding.
package scenario

import (
	"fmt"
	"math"

	"asepower/domain/core"
)

const (
	// NullTheta is the allelic proportion under no imbalance.
	NullTheta = 0.5
	// DefaultMappingRate is the unbiased mapping rate assumed when a design
	// or scenario string carries no rsim-g1/rsim-g2 values.
	DefaultMappingRate = 0.8
)

// Condition identifies one of the two comparates.
type Condition int

const (
	ConditionUnset Condition = iota
	Condition1
	Condition2
)

func (c Condition) Valid() bool {
	return c == Condition1 || c == Condition2
}

func (c Condition) String() string {
	switch c {
	case Condition1:
		return "c1"
	case Condition2:
		return "c2"
	default:
		return "unset"
	}
}

// Key is the identity of one per-condition simulation.
type Key struct {
	Theta        float64   `json:"theta"`
	RsimG1       float64   `json:"rsim_g1"`
	RsimG2       float64   `json:"rsim_g2"`
	NBiorep      int       `json:"nbiorep"`
	AllelicReads int       `json:"allelic_reads"`
	SimRuns      int       `json:"simruns"`
	Condition    Condition `json:"condition,omitempty"`
}

// WithCondition returns a copy of k tagged with c.
func (k Key) WithCondition(c Condition) Key {
	k.Condition = c
	return k
}

// IsNull reports whether the key simulates no allelic imbalance.
func (k Key) IsNull() bool {
	return k.Theta == NullTheta
}

// SameScenario reports whether k and other agree on every parameter except
// theta and the condition tag.
func (k Key) SameScenario(other Key) bool {
	return k.RsimG1 == other.RsimG1 &&
		k.RsimG2 == other.RsimG2 &&
		k.NBiorep == other.NBiorep &&
		k.AllelicReads == other.AllelicReads &&
		k.SimRuns == other.SimRuns
}

// Validate checks that k describes a simulation the external simulator can run.
func (k Key) Validate() error {
	switch {
	case !(k.Theta > 0 && k.Theta < 1):
		return fmt.Errorf("%w: theta %v must lie in (0, 1)", core.ErrOutOfRange, k.Theta)
	case !(k.RsimG1 > 0 && k.RsimG1 <= 1), !(k.RsimG2 > 0 && k.RsimG2 <= 1):
		return fmt.Errorf("%w: mapping rates %v/%v must lie in (0, 1]", core.ErrOutOfRange, k.RsimG1, k.RsimG2)
	case k.NBiorep <= 0:
		return fmt.Errorf("%w: nbiorep %d must be positive", core.ErrOutOfRange, k.NBiorep)
	case k.AllelicReads <= 0:
		return fmt.Errorf("%w: allelic reads %d must be positive", core.ErrOutOfRange, k.AllelicReads)
	case k.SimRuns <= 0:
		return fmt.Errorf("%w: simruns %d must be positive", core.ErrOutOfRange, k.SimRuns)
	}
	return nil
}

// Comparison is the identity of a two-condition scenario: both thetas plus
// the parameters the two conditions share.
type Comparison struct {
	Theta1       float64 `json:"theta1"`
	Theta2       float64 `json:"theta2"`
	RsimG1       float64 `json:"rsim_g1"`
	RsimG2       float64 `json:"rsim_g2"`
	NBiorep      int     `json:"nbiorep"`
	AllelicReads int     `json:"allelic_reads"`
	SimRuns      int     `json:"simruns"`
}

// NewComparison combines two per-condition keys that share a scenario.
func NewComparison(c1, c2 Key) (Comparison, error) {
	if !c1.SameScenario(c2) {
		return Comparison{}, fmt.Errorf("%w: condition keys differ outside theta", core.ErrSchemaMismatch)
	}
	return Comparison{
		Theta1:       c1.Theta,
		Theta2:       c2.Theta,
		RsimG1:       c1.RsimG1,
		RsimG2:       c1.RsimG2,
		NBiorep:      c1.NBiorep,
		AllelicReads: c1.AllelicReads,
		SimRuns:      c1.SimRuns,
	}, nil
}

// String returns the comparison identifier used as compID by the fitting engine.
func (c Comparison) String() string {
	return comparisonStem(c)
}

// Less orders comparisons by their parameters, thetas last.
func (c Comparison) Less(other Comparison) bool {
	a := [...]float64{c.RsimG1, c.RsimG2, float64(c.NBiorep), float64(c.AllelicReads), float64(c.SimRuns), c.Theta1, c.Theta2}
	b := [...]float64{other.RsimG1, other.RsimG2, float64(other.NBiorep), float64(other.AllelicReads), float64(other.SimRuns), other.Theta1, other.Theta2}
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Simulation directories split per-condition simulations by imbalance.
const (
	NullDir    = "H1_null"
	NotNullDir = "H1_not_null"
)

// SimulationDir is the directory the simulator writes k's datasets to.
func SimulationDir(k Key) string {
	if k.IsNull() {
		return NullDir
	}
	return NotNullDir
}
