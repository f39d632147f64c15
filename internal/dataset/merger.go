// Package dataset merges per-condition simulated read-count tables into the
// two-condition comparison datasets the fitting engine consumes.
//
// Both inputs were simulated from the same feature list in the same order,
// so rows are aligned by position. When both tables carry the feature
// identifier column the alignment is verified row by row before anything is
// written.
package dataset

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"asepower/domain/core"
	"asepower/internal"
	"asepower/internal/pairing"
	"asepower/internal/table"

	"golang.org/x/sync/errgroup"
)

// DefaultFeatureColumn identifies a feature in simulated tables.
const DefaultFeatureColumn = "FEATURE_ID"

const (
	condition1Prefix = "c1_"
	condition2Prefix = "c2_"
)

// MergeConfig holds configuration for merge operations
type MergeConfig struct {
	SimulationRoot string // Condition files are resolved against this directory
	OutputDir      string // Merged tables are written here
	FeatureColumn  string // Shared feature identifier, dropped from condition 2
	Workers        int    // Concurrent merges, 1 when unset
}

// MergeResult contains the result of a merge operation
type MergeResult struct {
	Pair          pairing.Record `json:"pair"`
	RowCount      int            `json:"row_count"`
	ColumnCount   int            `json:"column_count"`
	OutputPath    string         `json:"output_path"`
	ExecutionTime time.Duration  `json:"execution_time"`
}

// Merger handles dataset merging operations
type Merger struct {
	config *MergeConfig
	logger *internal.Logger
}

// NewMerger creates a new dataset merger
func NewMerger(config *MergeConfig, logger *internal.Logger) *Merger {
	cfg := *config
	if cfg.FeatureColumn == "" {
		cfg.FeatureColumn = DefaultFeatureColumn
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Merger{config: &cfg, logger: logger}
}

// Merge combines the two condition tables of pair and writes the result.
// Nothing is written when the tables cannot be aligned.
func (m *Merger) Merge(ctx context.Context, pair pairing.Record) (*MergeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	startTime := time.Now()

	path1 := filepath.Join(m.config.SimulationRoot, filepath.FromSlash(pair.Condition1File))
	path2 := filepath.Join(m.config.SimulationRoot, filepath.FromSlash(pair.Condition2File))

	t1, err := table.Read(path1, table.TSV)
	if err != nil {
		return nil, err
	}
	t2, err := table.Read(path2, table.TSV)
	if err != nil {
		return nil, err
	}

	merged, err := MergeTables(t1, t2, m.config.FeatureColumn)
	if err != nil {
		return nil, err
	}

	outPath := filepath.Join(m.config.OutputDir, pair.MergedFile)
	if err := merged.Write(outPath, table.TSV); err != nil {
		return nil, err
	}

	m.logger.Debug("[Merger] %s + %s -> %s (%d rows)", pair.Condition1File, pair.Condition2File, outPath, merged.Len())

	return &MergeResult{
		Pair:          pair,
		RowCount:      merged.Len(),
		ColumnCount:   len(merged.Header),
		OutputPath:    outPath,
		ExecutionTime: time.Since(startTime),
	}, nil
}

// MergeAll merges every pair with at most Workers merges in flight. Results
// keep the order of pairs; the first failure cancels the rest.
func (m *Merger) MergeAll(ctx context.Context, pairs []pairing.Record) ([]*MergeResult, error) {
	results := make([]*MergeResult, len(pairs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.config.Workers)
	for i, pair := range pairs {
		g.Go(func() error {
			res, err := m.Merge(gctx, pair)
			if err != nil {
				return fmt.Errorf("merge %s: %w", pair.MergedFile, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	m.logger.Info("[Merger] Merged %d comparison datasets into %s", len(results), m.config.OutputDir)
	return results, nil
}

// MergeTables concatenates the columns of t1 and t2 row by row. The feature
// column is dropped from t2 after checking it agrees with t1, and t2's c1_
// columns become c2_ columns.
func MergeTables(t1, t2 *table.Table, featureColumn string) (*table.Table, error) {
	if t1.Len() != t2.Len() {
		return nil, core.NewSchemaMismatchError(t2.Path,
			fmt.Sprintf("%d rows, condition 1 table %s has %d", t2.Len(), t1.Path, t1.Len()))
	}

	if err := verifyFeatures(t1, t2, featureColumn); err != nil {
		return nil, err
	}

	keep, renamed := condition2Columns(t2.Header, featureColumn)

	header := append(append([]string(nil), t1.Header...), renamed...)
	seen := make(map[string]bool, len(header))
	for _, h := range header {
		if seen[h] {
			return nil, core.NewSchemaMismatchError(t2.Path, fmt.Sprintf("column %q would appear twice in the merged table", h))
		}
		seen[h] = true
	}

	merged := table.New(header)
	for i := range t1.Rows {
		row := make([]string, 0, len(header))
		row = append(row, t1.Rows[i]...)
		for _, idx := range keep {
			if idx >= len(t2.Rows[i]) {
				return nil, core.NewSchemaMismatchError(t2.Path, fmt.Sprintf("row %d is shorter than the header", i+1))
			}
			row = append(row, t2.Rows[i][idx])
		}
		if err := merged.Append(row); err != nil {
			return nil, err
		}
	}
	return merged, nil
}

// RenameCondition2 maps a condition-2 column to its merged name: a leading
// c1_ becomes c2_, every other name is unchanged.
func RenameCondition2(column string) string {
	if strings.HasPrefix(column, condition1Prefix) {
		return condition2Prefix + strings.TrimPrefix(column, condition1Prefix)
	}
	return column
}

func condition2Columns(header []string, featureColumn string) ([]int, []string) {
	keep := make([]int, 0, len(header))
	renamed := make([]string, 0, len(header))
	for i, h := range header {
		if h == featureColumn {
			continue
		}
		keep = append(keep, i)
		renamed = append(renamed, RenameCondition2(h))
	}
	return keep, renamed
}

func verifyFeatures(t1, t2 *table.Table, featureColumn string) error {
	i1, ok1 := t1.Index(featureColumn)
	i2, ok2 := t2.Index(featureColumn)
	if !ok1 || !ok2 {
		return nil
	}
	for r := range t1.Rows {
		if t1.Rows[r][i1] != t2.Rows[r][i2] {
			return core.NewSchemaMismatchError(t2.Path,
				fmt.Sprintf("row %d %s %q does not match condition 1 %q", r+1, featureColumn, t2.Rows[r][i2], t1.Rows[r][i1]))
		}
	}
	return nil
}
