package analysis

import (
	"asepower/domain/summary"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// Describe computes mean, median and population variance of values.
func Describe(values []float64) (summary.ColumnStats, error) {
	median, err := stats.Median(values)
	if err != nil {
		return summary.ColumnStats{}, err
	}
	mean, variance := stat.PopMeanVariance(values, nil)
	return summary.ColumnStats{Mean: mean, Median: median, Variance: variance}, nil
}

// ProportionBelow is the share of values strictly below threshold.
func ProportionBelow(values []float64, threshold float64) float64 {
	if len(values) == 0 {
		return 0
	}
	n := 0
	for _, v := range values {
		if v < threshold {
			n++
		}
	}
	return float64(n) / float64(len(values))
}

// Evidence computes the proportions below both thresholds.
func Evidence(values []float64) summary.EvidenceProps {
	return summary.EvidenceProps{
		LE05: ProportionBelow(values, summary.Threshold05),
		LE01: ProportionBelow(values, summary.Threshold01),
	}
}
