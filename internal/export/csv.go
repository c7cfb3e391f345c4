// Package export writes pipeline results as CSV files for the visualization
// layer and reads the CSV inputs of the standalone resolver.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"sportsviz/etl/internal/metrics"
	"sportsviz/etl/internal/models"
	"sportsviz/etl/internal/tournament"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
)

// Writer writes one CSV file per result set into a directory. Files are
// replaced on every run.
type Writer struct {
	dir string
}

// NewWriter creates dir if needed.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir %s: %w", dir, err)
	}
	return &Writer{dir: dir}, nil
}

// Name identifies the sink in logs and metrics.
func (w *Writer) Name() string { return "csv" }

// Dir returns the output directory.
func (w *Writer) Dir() string { return w.dir }

// WriteNotableWins writes <discipline>_notable_wins.csv.
func (w *Writer) WriteNotableWins(_ context.Context, discipline string, rows []models.NotableWinRow) error {
	return writeRows(w.path(discipline+"_notable_wins.csv"), rows)
}

// WriteTournamentSummaries writes <discipline>_tournament_summary.csv.
func (w *Writer) WriteTournamentSummaries(_ context.Context, discipline string, rows []models.TournamentSummaryRow) error {
	return writeRows(w.path(discipline+"_tournament_summary.csv"), rows)
}

// WriteProgression writes <discipline>_ranking_progression.csv.
func (w *Writer) WriteProgression(_ context.Context, discipline string, rows []models.ProgressionRow) error {
	return writeRows(w.path(discipline+"_ranking_progression.csv"), rows)
}

// WriteArcheryMonthEnd writes archery_month_end_ranking.csv.
func (w *Writer) WriteArcheryMonthEnd(_ context.Context, rows []models.ArcheryMonthEndRow) error {
	return writeRows(w.path("archery_month_end_ranking.csv"), rows)
}

// WriteTournamentDetails writes tournament_details.csv.
func (w *Writer) WriteTournamentDetails(_ context.Context, rows []models.TournamentDetailRow) error {
	return writeRows(w.path("tournament_details.csv"), rows)
}

// WriteHeadToHead writes h2h_matches.csv.
func (w *Writer) WriteHeadToHead(_ context.Context, rows []models.HeadToHeadRow) error {
	return writeRows(w.path("h2h_matches.csv"), rows)
}

// WriteArcheryCompetitionRanking writes archery_competition_ranking.csv.
func (w *Writer) WriteArcheryCompetitionRanking(_ context.Context, rows []models.ArcheryCompetitionRankingRow) error {
	return writeRows(w.path("archery_competition_ranking.csv"), rows)
}

// WriteShootingResults writes shooting_results.csv.
func (w *Writer) WriteShootingResults(_ context.Context, rows []models.ShootingResultVizRow) error {
	return writeRows(w.path("shooting_results.csv"), rows)
}

// WriteShootingRankDistribution writes shooting_rank_distribution.csv.
func (w *Writer) WriteShootingRankDistribution(_ context.Context, rows []models.ShootingRankDistributionRow) error {
	return writeRows(w.path("shooting_rank_distribution.csv"), rows)
}

// WriteFinishTallies writes <discipline>_tournament_finishes_<year>.csv. The
// tally columns are fixed by the round and grade lists, so the file is
// written row by row rather than from a struct.
func (w *Writer) WriteFinishTallies(_ context.Context, discipline string, year int, tallies []tournament.Tally) error {
	path := w.path(fmt.Sprintf("%s_tournament_finishes_%d.csv", discipline, year))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	out := gocsv.NewSafeCSVWriter(csv.NewWriter(f))
	if err := out.Write(tournament.Header()); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	for i := range tallies {
		if err := out.Write(tallies[i].Record()); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	out.Flush()
	if err := out.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}

	metrics.RecordRowsWritten("csv", filepath.Base(path), len(tallies))
	log.Debug().Str("file", path).Int("rows", len(tallies)).Msg("CSV written")
	return nil
}

func (w *Writer) path(name string) string {
	return filepath.Join(w.dir, name)
}

func writeRows[T any](path string, rows []T) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if rows == nil {
		rows = []T{}
	}
	if err := gocsv.MarshalFile(&rows, f); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	metrics.RecordRowsWritten("csv", filepath.Base(path), len(rows))
	log.Debug().Str("file", path).Int("rows", len(rows)).Msg("CSV written")
	return nil
}
