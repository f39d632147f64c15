package migration

import (
	"context"
	"fmt"
	"strings"

	"asepower/domain/summary"
	"asepower/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createSummaryRunsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create summary_runs table")
	}

	if err := r.createScenarioSummariesTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create scenario_summaries table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createSummaryRunsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS summary_runs (
			id UUID PRIMARY KEY,
			row_count INTEGER NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createScenarioSummariesTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, ScenarioSummariesDDL())
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_scenario_summaries_comparison ON scenario_summaries(comparison);
		CREATE INDEX IF NOT EXISTS idx_scenario_summaries_delta ON scenario_summaries(delta_ai_1, delta_ai_2, delta_ai_3);
	`)
	return err
}

// intColumns are stored as INTEGER, everything else as DOUBLE PRECISION.
var intColumns = map[string]bool{
	"nfeature":                  true,
	"num_bioreps":               true,
	"num_allele_specific_reads": true,
}

// SQLColumn is the Postgres column holding a summary column.
func SQLColumn(name string) string {
	return strings.ToLower(name)
}

// ScenarioSummariesDDL creates one column per summary column, in order.
func ScenarioSummariesDDL() string {
	var b strings.Builder
	b.WriteString(`CREATE TABLE IF NOT EXISTS scenario_summaries (
			run_id UUID NOT NULL REFERENCES summary_runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			comparison TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT ''`)
	for _, col := range summary.Columns {
		typ := "DOUBLE PRECISION"
		if intColumns[col] {
			typ = "INTEGER"
		}
		fmt.Fprintf(&b, ",\n\t\t\t%s %s NOT NULL", SQLColumn(col), typ)
	}
	b.WriteString(",\n\t\t\tPRIMARY KEY (run_id, position)\n\t\t)")
	return b.String()
}
