package main

import (
	"context"
	"log"
	"os"

	"asepower/adapters/postgres"
	"asepower/domain/core"
	"asepower/domain/summary"
	apperrors "asepower/internal/errors"
	"asepower/internal/table"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate <database_url> [summary.csv...]")
	}

	databaseURL := os.Args[1]
	files := os.Args[2:]

	ctx := context.Background()

	// Connect and bring the schema up to date
	db, err := postgres.Connect(ctx, databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Printf("Schema up to date")

	repo := postgres.NewSummaryRepository(db)

	imported := 0
	skipped := 0
	for _, file := range files {
		rows, err := loadSummary(file)
		if err != nil {
			log.Printf("Failed to load summary from %s: %v", file, err)
			skipped++
			continue
		}

		runID := core.NewRunID()
		if err := repo.WriteSummary(ctx, runID, rows); err != nil {
			log.Printf("Failed to store %s: %v", file, err)
			skipped++
			continue
		}

		imported++
		log.Printf("Imported %d rows from %s as run %s", len(rows), file, runID)
	}

	log.Printf("Import complete: %d imported, %d skipped", imported, skipped)
}

// loadSummary reads a summary table written by `asepower summarize`.
func loadSummary(path string) ([]summary.Row, error) {
	t, err := table.Read(path, table.CSV)
	if err != nil {
		return nil, err
	}
	rows := make([]summary.Row, 0, t.Len())
	for i, record := range t.Rows {
		row, err := summary.FromRecord(t.Header, record)
		if err != nil {
			return nil, apperrors.Wrapf(err, "summary %s row %d", path, i+1)
		}
		row.Source = path
		rows = append(rows, row)
	}
	return rows, nil
}
