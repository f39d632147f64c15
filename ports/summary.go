package ports

import (
	"context"

	"asepower/domain/core"
	"asepower/domain/summary"
)

// SummarySink receives the finished summary table of a run. A sink sees
// either every row of a run or nothing.
type SummarySink interface {
	WriteSummary(ctx context.Context, runID core.RunID, rows []summary.Row) error
	Name() string
}

// SummaryRepository is a queryable SummarySink.
type SummaryRepository interface {
	SummarySink
	ListByRun(ctx context.Context, runID core.RunID) ([]summary.Row, error)
}
