package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"asepower/domain/core"
	"asepower/domain/summary"
	apperrors "asepower/internal/errors"
	"asepower/internal/migration"
	"asepower/ports"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// summaryRepository implements ports.SummaryRepository
type summaryRepository struct {
	db *sqlx.DB
}

// NewSummaryRepository creates a new summary repository
func NewSummaryRepository(db *sqlx.DB) ports.SummaryRepository {
	return &summaryRepository{db: db}
}

// Connect opens the summary store and brings its schema up to date.
func Connect(ctx context.Context, databaseURL string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", databaseURL)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to connect to summary store", err)
	}
	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return nil, apperrors.WithCode(apperrors.CodeDatabaseError, err)
	}
	return db, nil
}

func (r *summaryRepository) Name() string { return "postgres" }

// WriteSummary stores a run and its rows in one transaction.
func (r *summaryRepository) WriteSummary(ctx context.Context, runID core.RunID, rows []summary.Row) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.DatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO summary_runs (id, row_count, created_at) VALUES ($1, $2, NOW())`,
		runID.String(), len(rows))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			return apperrors.DatabaseError(fmt.Sprintf("run %s is already stored", runID), err)
		}
		return apperrors.DatabaseError("failed to create summary run", err)
	}

	query := insertQuery()
	for i, row := range rows {
		args := append([]interface{}{runID.String(), i, row.Comparison.String(), row.Source}, row.Values()...)
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return apperrors.DatabaseError(fmt.Sprintf("failed to store summary row %d", i), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.DatabaseError("failed to commit summary run", err)
	}
	return nil
}

// ListByRun returns the rows of a run in their original order.
func (r *summaryRepository) ListByRun(ctx context.Context, runID core.RunID) ([]summary.Row, error) {
	query := fmt.Sprintf(`SELECT comparison, source, %s FROM scenario_summaries WHERE run_id = $1 ORDER BY position`,
		strings.Join(sqlColumns(), ", "))

	rows, err := r.db.QueryxContext(ctx, query, runID.String())
	if err != nil {
		return nil, apperrors.DatabaseError("failed to query summary rows", err)
	}
	defer rows.Close()

	var out []summary.Row
	for rows.Next() {
		var comparison, source string
		vals := make([]float64, len(summary.Columns))
		dest := []interface{}{&comparison, &source}
		for i := range vals {
			dest = append(dest, &vals[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, apperrors.DatabaseError("failed to scan summary row", err)
		}
		row, err := summary.FromValues(vals)
		if err != nil {
			return nil, err
		}
		row.Source = source
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.DatabaseError("failed to read summary rows", err)
	}
	return out, nil
}

func sqlColumns() []string {
	cols := make([]string, len(summary.Columns))
	for i, c := range summary.Columns {
		cols[i] = migration.SQLColumn(c)
	}
	return cols
}

func insertQuery() string {
	cols := append([]string{"run_id", "position", "comparison", "source"}, sqlColumns()...)
	placeholders := make([]string, len(cols))
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO scenario_summaries (%s) VALUES (%s)",
		strings.Join(cols, ", "), strings.Join(placeholders, ", "))
}
