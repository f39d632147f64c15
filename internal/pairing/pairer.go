// Package pairing joins the design tables of two comparates into the list of
// comparison datasets to merge.
package pairing

import (
	"fmt"
	"path"

	"asepower/domain/core"
	"asepower/domain/design"
	"asepower/domain/scenario"
)

// Category is the hypothesis split a pair of designs produces.
type Category int

const (
	// BothNotNull: H1 not null, H2 not null, H3 null.
	BothNotNull Category = iota + 1
	// OnlyCondition2NotNull: H1 null, H2 not null, H3 not null.
	OnlyCondition2NotNull
	// BothNull: H1 null, H2 null, H3 null.
	BothNull
)

func (c Category) String() string {
	switch c {
	case BothNotNull:
		return "H1 not null, H2 not null, H3 null"
	case OnlyCondition2NotNull:
		return "H1 null, H2 not null, H3 not null"
	case BothNull:
		return "H1 null, H2 null, H3 null"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// DirName is the default output directory for the category's merged datasets.
func (c Category) DirName() string {
	switch c {
	case BothNotNull:
		return "H1_not_null_H2_not_null_H3_null"
	case OnlyCondition2NotNull:
		return "H1_null_H2_not_null_H3_not_null"
	case BothNull:
		return "H1_null_H2_null_H3_null"
	default:
		return ""
	}
}

// SetIndices returns the replicate sets condition 1 and condition 2 read.
// Only when condition 2 alone is not null do both conditions read set 1;
// they come from different simulation directories in that case.
func (c Category) SetIndices() (int, int) {
	switch c {
	case OnlyCondition2NotNull:
		return 1, 1
	default:
		return 1, 2
	}
}

// Classify derives the category from the not-null markers of the designs.
func Classify(c1, c2 *design.Table) (Category, error) {
	n1, n2 := c1.NotNull(), c2.NotNull()
	switch {
	case n1 && n2:
		return BothNotNull, nil
	case !n1 && n2:
		return OnlyCondition2NotNull, nil
	case !n1 && !n2:
		return BothNull, nil
	default:
		return 0, fmt.Errorf("%w: condition 1 design %s is not null while condition 2 design %s is null",
			core.ErrUnsupportedCategory, c1.Name, c2.Name)
	}
}

// Record is one matched comparison. File paths are relative to the
// simulation root and use forward slashes.
type Record struct {
	Condition1File string
	Condition2File string
	MergedFile     string
	Category       Category
	Comparison     scenario.Comparison
}

// Result is the outcome of pairing two designs.
type Result struct {
	Pairs []Record
	// Dropped counts design rows of either condition that found no partner.
	Dropped int
	// Duplicates counts matches that repeat an earlier merged file.
	Duplicates int
}

// Options tune the join.
type Options struct {
	// SameImbalance additionally requires equal thetas when both designs
	// are not null.
	SameImbalance bool
}

// Pairer matches condition-1 and condition-2 design rows.
type Pairer struct {
	opts Options
}

// NewPairer creates a pairer
func NewPairer(opts Options) *Pairer {
	return &Pairer{opts: opts}
}

// Pair inner-joins the two designs on every scenario parameter except theta.
// Rows without a partner are dropped and counted; that is not an error.
func (p *Pairer) Pair(c1, c2 *design.Table, cat Category) Result {
	set1, set2 := cat.SetIndices()
	used2 := make([]bool, len(c2.Records))
	seen := make(map[string]bool)

	var res Result
	for _, r1 := range c1.Records {
		k1 := r1.Key().WithCondition(scenario.Condition1)
		matched := false
		for j, r2 := range c2.Records {
			k2 := r2.Key().WithCondition(scenario.Condition2)
			if !p.matches(k1, k2, cat) {
				continue
			}
			matched = true
			used2[j] = true

			comparison, err := scenario.NewComparison(k1, k2)
			if err != nil {
				continue
			}
			merged := scenario.MergedName(comparison)
			if seen[merged] {
				res.Duplicates++
				continue
			}
			seen[merged] = true

			res.Pairs = append(res.Pairs, Record{
				Condition1File: path.Join(scenario.SimulationDir(k1), scenario.FileName(k1, set1)),
				Condition2File: path.Join(scenario.SimulationDir(k2), scenario.FileName(k2, set2)),
				MergedFile:     merged,
				Category:       cat,
				Comparison:     comparison,
			})
		}
		if !matched {
			res.Dropped++
		}
	}
	for _, used := range used2 {
		if !used {
			res.Dropped++
		}
	}
	return res
}

func (p *Pairer) matches(k1, k2 scenario.Key, cat Category) bool {
	if !k1.SameScenario(k2) {
		return false
	}
	if p.opts.SameImbalance && cat == BothNotNull {
		return k1.Theta == k2.Theta
	}
	return true
}
