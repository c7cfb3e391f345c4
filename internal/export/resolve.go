package export

import (
	"fmt"
	"os"

	"sportsviz/etl/internal/models"
	"sportsviz/etl/internal/ranking"

	"github.com/gocarina/gocsv"
)

// ReadHistory reads a {entity_id, effective_date, rank_value} CSV file.
func ReadHistory(path string) ([]ranking.Snapshot, error) {
	var rows []models.HistoryCSVRow
	if err := readRows(path, &rows); err != nil {
		return nil, err
	}
	return models.Snapshots(rows)
}

// ReadQueries reads a {entity_id, query_date[, mode]} CSV file. Rows without
// a mode use mode.
func ReadQueries(path string, mode ranking.Mode) ([]ranking.Query, error) {
	var rows []models.QueryCSVRow
	if err := readRows(path, &rows); err != nil {
		return nil, err
	}
	return models.Queries(rows, mode)
}

// WriteResolved writes resolver answers aligned with their queries.
func WriteResolved(path string, rows []models.ResolvedRankRow) error {
	return writeRows(path, rows)
}

func readRows[T any](path string, out *[]T) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if err := gocsv.UnmarshalFile(f, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
