package analysis

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"asepower/domain/core"
	"asepower/domain/scenario"
	"asepower/domain/summary"
	"asepower/internal"
	"asepower/internal/table"

	"golang.org/x/sync/errgroup"
)

// Result table columns.
const (
	ColComparison  = "comparison"
	ColAlpha1      = "alpha1_postmean"
	ColAlpha2      = "alpha2_postmean"
	ColTheta1      = "c1_theta"
	ColTheta2      = "c2_theta"
	ColSampleProp1 = "c1_sampleprop"
	ColSampleProp2 = "c2_sampleprop"
	ColEvidenceH1  = "c1_Bayes_evidence"
	ColEvidenceH2  = "c2_Bayes_evidence"
	ColEvidenceH3  = "H3_independence_Bayes_evidence"
)

// RequiredColumns must be present in every result table.
var RequiredColumns = []string{
	ColComparison,
	ColAlpha1, ColAlpha2,
	ColTheta1, ColTheta2,
	ColSampleProp1, ColSampleProp2,
	ColEvidenceH1, ColEvidenceH2, ColEvidenceH3,
}

// DefaultExcludeSuffixes mark raw engine output and temporary files.
var DefaultExcludeSuffixes = []string{"r_out", "temp"}

// AggregatorConfig configures a summary run
type AggregatorConfig struct {
	ExcludeSuffixes []string
	Workers         int  // Files summarized concurrently, 1 when unset
	SortByScenario  bool // Order rows by scenario parameters instead of encounter order
}

// Source is one result table found in an input directory.
type Source struct {
	Dir       string
	Path      string
	Condition scenario.Condition
}

// Aggregator turns directories of fitting-engine result tables into
// summary rows, one per table.
type Aggregator struct {
	config *AggregatorConfig
	logger *internal.Logger
}

// NewAggregator creates an aggregator
func NewAggregator(config *AggregatorConfig, logger *internal.Logger) *Aggregator {
	cfg := AggregatorConfig{ExcludeSuffixes: DefaultExcludeSuffixes, Workers: 1}
	if config != nil {
		cfg = *config
		if cfg.ExcludeSuffixes == nil {
			cfg.ExcludeSuffixes = DefaultExcludeSuffixes
		}
		if cfg.Workers < 1 {
			cfg.Workers = 1
		}
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Aggregator{config: &cfg, logger: logger}
}

// Discover lists the result tables in dirs: directories in argument order,
// files in lexical order, excluded suffixes and subdirectories skipped.
func (a *Aggregator) Discover(dirs []string) ([]Source, error) {
	var sources []Source
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to read input directory %s: %w", dir, err)
		}
		cond := scenario.ConditionFromDir(dir)
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if a.excluded(entry.Name()) {
				a.logger.Debug("[Aggregator] Skipping %s", filepath.Join(dir, entry.Name()))
				continue
			}
			sources = append(sources, Source{Dir: dir, Path: filepath.Join(dir, entry.Name()), Condition: cond})
		}
	}
	return sources, nil
}

// Summarize produces one row per result table found in dirs. Any failing
// table fails the whole run.
func (a *Aggregator) Summarize(ctx context.Context, dirs []string) ([]summary.Row, error) {
	startTime := time.Now()

	sources, err := a.Discover(dirs)
	if err != nil {
		return nil, err
	}

	rows := make([]summary.Row, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.config.Workers)
	for i, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			row, err := a.SummarizeFile(src)
			if err != nil {
				return err
			}
			rows[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if a.config.SortByScenario {
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].Comparison.Less(rows[j].Comparison)
		})
	}

	a.logger.Info("[Aggregator] Summarized %d result tables from %d directories in %s",
		len(rows), len(dirs), time.Since(startTime).Round(time.Millisecond))
	return rows, nil
}

// SummarizeFile reads and summarizes one result table.
func (a *Aggregator) SummarizeFile(src Source) (summary.Row, error) {
	a.logger.Debug("[Aggregator] Summarizing %s", src.Path)
	t, err := table.Read(src.Path, table.TSV)
	if err != nil {
		return summary.Row{}, err
	}
	row, err := SummarizeTable(t, src.Condition)
	if err != nil {
		return summary.Row{}, fmt.Errorf("summarize %s: %w", src.Path, err)
	}
	row.Source = src.Path
	return row, nil
}

// SummarizeTable computes the summary row of a loaded result table. cond is
// the condition single-theta comparison identifiers belong to.
func SummarizeTable(t *table.Table, cond scenario.Condition) (summary.Row, error) {
	for _, col := range RequiredColumns {
		if !t.Has(col) {
			return summary.Row{}, core.NewMissingColumnError(tableName(t), col)
		}
	}

	nfeature := t.Len()
	if nfeature == 0 {
		return summary.Row{}, core.NewDivisionByZeroError(fmt.Sprintf("%s has no features", tableName(t)))
	}

	ids, _ := t.Column(ColComparison)
	comparison, err := scenario.DecodeComparison(ids[0], cond)
	if err != nil {
		return summary.Row{}, err
	}

	row, err := simulatedColumns(comparison)
	if err != nil {
		return summary.Row{}, err
	}
	row.NFeature = nfeature
	row.Comparison = comparison

	monitored := []struct {
		col string
		dst *summary.ColumnStats
	}{
		{ColAlpha1, &row.Alpha1},
		{ColAlpha2, &row.Alpha2},
		{ColTheta1, &row.Theta1},
		{ColTheta2, &row.Theta2},
		{ColSampleProp1, &row.C1SampleProp},
		{ColSampleProp2, &row.C2SampleProp},
	}
	for _, m := range monitored {
		values, err := t.Floats(m.col)
		if err != nil {
			return summary.Row{}, err
		}
		if *m.dst, err = Describe(values); err != nil {
			return summary.Row{}, fmt.Errorf("describe %s: %w", m.col, err)
		}
	}

	evidence := []struct {
		col string
		dst *summary.EvidenceProps
	}{
		{ColEvidenceH1, &row.H1},
		{ColEvidenceH2, &row.H2},
		{ColEvidenceH3, &row.H3},
	}
	for _, e := range evidence {
		values, err := t.Floats(e.col)
		if err != nil {
			return summary.Row{}, err
		}
		*e.dst = Evidence(values)
	}

	return row, nil
}

// simulatedColumns fills the parameters and derived values of a scenario.
func simulatedColumns(c scenario.Comparison) (summary.Row, error) {
	var (
		row summary.Row
		err error
	)
	row.RG1 = c.RsimG1
	row.RG2 = c.RsimG2
	row.NumBioreps = c.NBiorep
	row.AllelicReads = c.AllelicReads
	row.Theta1Sim = c.Theta1
	row.Theta2Sim = c.Theta2

	if row.CoveragePerBiorep, err = c.CoveragePerBiorep(); err != nil {
		return row, err
	}
	if row.ReadsPerBiorep, err = c.ReadsPerBiorep(); err != nil {
		return row, err
	}
	if row.Alpha1Sim, err = scenario.AlphaSim(c.Theta1); err != nil {
		return row, err
	}
	if row.Alpha2Sim, err = scenario.AlphaSim(c.Theta2); err != nil {
		return row, err
	}
	if row.DeltaAI1, err = scenario.DeltaAI(c.Theta1); err != nil {
		return row, err
	}
	if row.DeltaAI2, err = scenario.DeltaAI(c.Theta2); err != nil {
		return row, err
	}
	if row.DeltaAI3, err = scenario.DeltaAIBetween(c.Theta1, c.Theta2); err != nil {
		return row, err
	}
	return row, nil
}

func (a *Aggregator) excluded(name string) bool {
	for _, suffix := range a.config.ExcludeSuffixes {
		if suffix != "" && strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

func tableName(t *table.Table) string {
	if t.Path == "" {
		return "<table>"
	}
	return t.Path
}
