package scenario

import (
	"fmt"
	"math"
	"strconv"

	"asepower/domain/core"

	"github.com/montanaflynn/stats"
)

// DeltaAI is the normalized distance of theta from the null value,
// |theta - 0.5| / 0.5, rounded to two decimals.
func DeltaAI(theta float64) (float64, error) {
	return round2(math.Abs(theta-NullTheta) / NullTheta)
}

// DeltaAIBetween is |theta2 - theta1| / theta1 rounded to two decimals.
func DeltaAIBetween(theta1, theta2 float64) (float64, error) {
	if theta1 == 0 {
		return 0, core.NewDivisionByZeroError("delta_AI_3 with theta1 = 0")
	}
	if theta1 < 0 {
		return 0, fmt.Errorf("%w: theta1 %v is negative", core.ErrOutOfRange, theta1)
	}
	return round2(math.Abs(theta2-theta1) / theta1)
}

// AlphaSim inverts theta = 1/(alpha^2 + 1), the parameterization used by
// the fitting engine.
func AlphaSim(theta float64) (float64, error) {
	if theta == 0 {
		return 0, core.NewDivisionByZeroError("alpha_sim with theta = 0")
	}
	if theta < 0 || theta > 1 {
		return 0, fmt.Errorf("%w: theta %v outside [0, 1] has no alpha", core.ErrOutOfRange, theta)
	}
	return math.Sqrt(1/theta - 1), nil
}

// CoveragePerBiorep counts the reads attributed to one allele per biological
// replicate, including reads that map equally well to both alleles.
func (c Comparison) CoveragePerBiorep() (float64, error) {
	if c.NBiorep == 0 {
		return 0, core.NewDivisionByZeroError("coverage_per_biorep with nbiorep = 0")
	}
	meanRate, err := stats.Mean([]float64{c.RsimG1, c.RsimG2})
	if err != nil {
		return 0, err
	}
	if meanRate == 0 {
		return 0, core.NewDivisionByZeroError("coverage_per_biorep with zero mapping rates")
	}
	return float64(c.AllelicReads) / 2 / float64(c.NBiorep) / meanRate, nil
}

// ReadsPerBiorep is allelic reads divided by the number of replicates.
func (c Comparison) ReadsPerBiorep() (float64, error) {
	if c.NBiorep == 0 {
		return 0, core.NewDivisionByZeroError("reads_per_biorep with nbiorep = 0")
	}
	return float64(c.AllelicReads) / float64(c.NBiorep), nil
}

// round2 rounds to two decimals from the exact binary value, ties to even.
func round2(v float64) (float64, error) {
	if !finite(v) {
		return 0, fmt.Errorf("%w: cannot round %v", core.ErrOutOfRange, v)
	}
	return strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
}
