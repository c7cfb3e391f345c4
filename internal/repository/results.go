package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sportsviz/etl/internal/metrics"
	"sportsviz/etl/internal/models"
	"sportsviz/etl/internal/ranking"
	"sportsviz/etl/internal/tournament"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// ResultRepository writes pipeline results into viz_* tables. Every write
// replaces the table contents in one transaction.
type ResultRepository struct {
	db *Database
}

type column struct {
	name string
	kind string
}

type table struct {
	name    string
	columns []column
}

func (t table) createSQL() string {
	defs := make([]string, len(t.columns))
	for i, c := range t.columns {
		defs[i] = pgx.Identifier{c.name}.Sanitize() + " " + c.kind
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		pgx.Identifier{t.name}.Sanitize(), strings.Join(defs, ", "))
}

// addColumnsSQL adds columns missing from a table created by an older release.
func (t table) addColumnsSQL() string {
	defs := make([]string, len(t.columns))
	for i, c := range t.columns {
		defs[i] = "ADD COLUMN IF NOT EXISTS " + pgx.Identifier{c.name}.Sanitize() + " " + c.kind
	}
	return fmt.Sprintf("ALTER TABLE %s %s", pgx.Identifier{t.name}.Sanitize(), strings.Join(defs, ", "))
}

func (t table) columnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.name
	}
	return names
}

// Name identifies the sink in logs and metrics.
func (r *ResultRepository) Name() string { return "postgres" }

// WriteNotableWins replaces viz_badminton_<discipline>_notable_wins.
func (r *ResultRepository) WriteNotableWins(ctx context.Context, discipline string, rows []models.NotableWinRow) error {
	t := table{
		name: "viz_badminton_" + discipline + "_notable_wins",
		columns: []column{
			{"tournament_id", "integer"},
			{"tournament_name", "text"},
			{"tournament_grade", "text"},
			{"round_name", "text"},
			{"year", "integer"},
			{"start_date", "date"},
			{"entity_id", "text"},
			{"entity_name", "text"},
			{"opponent_id", "text"},
			{"opponent_name", "text"},
			{"win_flag", "boolean"},
			{"entity_world_ranking", "integer"},
			{"entity_ranking_date", "date"},
			{"opponent_world_ranking", "integer"},
			{"opponent_ranking_date", "date"},
			{"outcome", "text"},
			{"notable_win", "text"},
			{"lost_to", "text"},
		},
	}

	values := make([][]any, len(rows))
	for i, w := range rows {
		values[i] = []any{
			w.TournamentID, w.TournamentName, w.TournamentGrade, w.RoundName, w.Year,
			dateValue(w.StartDate), w.EntityID.String(), w.EntityName,
			w.OpponentID.String(), w.OpponentName, w.WinFlag,
			intValue(w.EntityRank), dateValue(w.EntityRankDate),
			intValue(w.OpponentRank), dateValue(w.OpponentRankDate),
			w.Outcome, w.NotableWin, w.LostTo,
		}
	}
	return r.replace(ctx, t, values)
}

// WriteTournamentSummaries replaces viz_badminton_<discipline>_tournament_summary.
func (r *ResultRepository) WriteTournamentSummaries(ctx context.Context, discipline string, rows []models.TournamentSummaryRow) error {
	t := table{
		name: "viz_badminton_" + discipline + "_tournament_summary",
		columns: []column{
			{"entity_id", "text"},
			{"tournament_id", "integer"},
			{"tournament_name", "text"},
			{"final_position", "text"},
			{"tournament_grade", "text"},
			{"tournament_year", "integer"},
			{"start_date", "date"},
			{"notable_wins", "text"},
			{"lost_to", "text"},
		},
	}

	values := make([][]any, len(rows))
	for i, s := range rows {
		values[i] = []any{
			s.EntityID.String(), s.TournamentID, s.TournamentName, s.FinalPosition,
			s.TournamentGrade, s.TournamentYear, dateValue(s.StartDate), s.NotableWins, s.LostTo,
		}
	}
	return r.replace(ctx, t, values)
}

// WriteProgression replaces viz_badminton_<discipline>_ranking_progression.
func (r *ResultRepository) WriteProgression(ctx context.Context, discipline string, rows []models.ProgressionRow) error {
	t := table{
		name: "viz_badminton_" + discipline + "_ranking_progression",
		columns: []column{
			{"entity_id", "text"},
			{"entity_name", "text"},
			{"ranking_date", "date"},
			{"year", "integer"},
			{"world_ranking", "integer"},
			{"world_tour_ranking", "integer"},
			{"olympic_rank", "integer"},
			{"ranking_category_id", "integer"},
		},
	}

	values := make([][]any, len(rows))
	for i, p := range rows {
		values[i] = []any{
			p.EntityID.String(), p.EntityName, dateValue(p.RankingDate), p.Year,
			intValue(p.WorldRanking), intValue(p.WorldTourRanking), intValue(p.OlympicRank), p.CategoryID,
		}
	}
	return r.replace(ctx, t, values)
}

// WriteArcheryMonthEnd replaces viz_archery_month_end_ranking.
func (r *ResultRepository) WriteArcheryMonthEnd(ctx context.Context, rows []models.ArcheryMonthEndRow) error {
	t := table{
		name: "viz_archery_month_end_ranking",
		columns: []column{
			{"athlete_id", "integer"},
			{"athlete_name", "text"},
			{"year", "integer"},
			{"rank", "integer"},
			{"rank_date_issued", "date"},
			{"points", "double precision"},
		},
	}

	values := make([][]any, len(rows))
	for i, a := range rows {
		values[i] = []any{a.AthleteID, a.AthleteName, a.Year, intValue(a.Rank), dateValue(a.DateIssued), floatValue(a.Points)}
	}
	return r.replace(ctx, t, values)
}

// WriteTournamentDetails replaces viz_badminton_tournament_details.
func (r *ResultRepository) WriteTournamentDetails(ctx context.Context, rows []models.TournamentDetailRow) error {
	t := table{
		name: "viz_badminton_tournament_details",
		columns: []column{
			{"tournament_id", "integer"},
			{"tournament_name", "text"},
			{"grade", "text"},
			{"new_grade", "text"},
			{"date", "text"},
			{"year", "integer"},
			{"start_date", "date"},
			{"end_date", "date"},
		},
	}

	values := make([][]any, len(rows))
	for i, d := range rows {
		values[i] = []any{
			d.TournamentID, d.Name, d.Grade, d.NewGrade, d.DateText, d.Year,
			dateValue(d.StartDate), dateValue(d.EndDate),
		}
	}
	return r.replace(ctx, t, values)
}

// WriteHeadToHead replaces viz_badminton_h2h_matches.
func (r *ResultRepository) WriteHeadToHead(ctx context.Context, rows []models.HeadToHeadRow) error {
	t := table{
		name: "viz_badminton_h2h_matches",
		columns: []column{
			{"head_to_head_stats_id", "integer"},
			{"main_athlete_id", "integer"},
			{"main_athlete_name", "text"},
			{"opponent_athlete_id", "integer"},
			{"opponent_athlete_name", "text"},
			{"tournament_id", "integer"},
			{"tournament_name", "text"},
			{"tournament_date", "date"},
			{"round_name", "text"},
			{"result_for_main_id", "text"},
		},
	}

	values := make([][]any, len(rows))
	for i, h := range rows {
		values[i] = []any{
			h.StatsID, h.MainID, h.MainName, h.OpponentID, h.OpponentName,
			h.TournamentID, h.TournamentName, dateValue(h.TournamentDate), h.Round, h.Result,
		}
	}
	return r.replace(ctx, t, values)
}

// WriteArcheryCompetitionRanking replaces viz_archery_competition_ranking.
func (r *ResultRepository) WriteArcheryCompetitionRanking(ctx context.Context, rows []models.ArcheryCompetitionRankingRow) error {
	t := table{
		name: "viz_archery_competition_ranking",
		columns: []column{
			{"athlete_id", "integer"},
			{"athlete_name", "text"},
			{"comp_id", "integer"},
			{"comp_full_name", "text"},
			{"comp_short_name", "text"},
			{"comp_place", "text"},
			{"comp_date", "date"},
			{"comp_rank", "integer"},
			{"comp_new_short_name", "text"},
		},
	}

	values := make([][]any, len(rows))
	for i, c := range rows {
		values[i] = []any{
			c.AthleteID, c.AthleteName, c.CompetitionID, c.FullName, c.ShortName,
			c.Place, dateValue(c.Date), intValue(c.CompetitionRank), c.NewShortName,
		}
	}
	return r.replace(ctx, t, values)
}

// WriteShootingResults replaces viz_shooting_results.
func (r *ResultRepository) WriteShootingResults(ctx context.Context, rows []models.ShootingResultVizRow) error {
	t := table{
		name: "viz_shooting_results",
		columns: []column{
			{"competition_id", "text"},
			{"competition_name", "text"},
			{"comp_short_name", "text"},
			{"event_name", "text"},
			{"year", "integer"},
			{"competition_date", "date"},
			{"athlete_name", "text"},
			{"qualification_rank", "integer"},
			{"final_rank", "integer"},
			{"last_attained_rank", "integer"},
			{"rank_type", "text"},
			{"score", "double precision"},
			{"q_min", "double precision"},
			{"q_max", "double precision"},
			{"host_nation", "text"},
			{"host_nation_code", "text"},
			{"host_city", "text"},
			{"comp_type", "text"},
		},
	}

	values := make([][]any, len(rows))
	for i, s := range rows {
		values[i] = []any{
			s.CompetitionID, s.CompetitionName, s.CompShortName, s.EventName, s.Year,
			dateValue(s.CompetitionDate), s.AthleteName,
			intValue(s.QualificationRank), intValue(s.FinalRank), intValue(s.LastAttainedRank),
			s.RankType, floatValue(s.Score), floatValue(s.QMin), floatValue(s.QMax),
			s.HostNation, s.HostNationCode, s.HostCity, s.CompType,
		}
	}
	return r.replace(ctx, t, values)
}

// WriteShootingRankDistribution replaces viz_shooting_rank_distribution.
func (r *ResultRepository) WriteShootingRankDistribution(ctx context.Context, rows []models.ShootingRankDistributionRow) error {
	t := table{
		name: "viz_shooting_rank_distribution",
		columns: []column{
			{"athlete_name", "text"},
			{"event_name", "text"},
			{"category", "text"},
			{"value", "integer"},
		},
	}

	values := make([][]any, len(rows))
	for i, d := range rows {
		values[i] = []any{d.AthleteName, d.EventName, d.Category, d.Value}
	}
	return r.replace(ctx, t, values)
}

// WriteFinishTallies replaces viz_badminton_<discipline>_tournament_finishes_<year>.
// Zero cells are stored as NULL.
func (r *ResultRepository) WriteFinishTallies(ctx context.Context, discipline string, year int, tallies []tournament.Tally) error {
	header := tournament.Header()
	cols := make([]column, len(header))
	for i, h := range header {
		kind := "integer"
		if h == "entity_id" {
			kind = "text"
		}
		cols[i] = column{name: h, kind: kind}
	}
	t := table{
		name:    fmt.Sprintf("viz_badminton_%s_tournament_finishes_%d", discipline, year),
		columns: cols,
	}

	values := make([][]any, len(tallies))
	for i := range tallies {
		values[i] = tallies[i].Values()
	}
	return r.replace(ctx, t, values)
}

func (r *ResultRepository) replace(ctx context.Context, t table, rows [][]any) error {
	start := time.Now()

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, t.createSQL()); err != nil {
		metrics.RecordDBQuery("create", t.name, "error", time.Since(start).Seconds())
		return fmt.Errorf("failed to create %s: %w", t.name, err)
	}
	if _, err := tx.Exec(ctx, t.addColumnsSQL()); err != nil {
		metrics.RecordDBQuery("alter", t.name, "error", time.Since(start).Seconds())
		return fmt.Errorf("failed to add columns to %s: %w", t.name, err)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM "+pgx.Identifier{t.name}.Sanitize()); err != nil {
		metrics.RecordDBQuery("delete", t.name, "error", time.Since(start).Seconds())
		return fmt.Errorf("failed to clear %s: %w", t.name, err)
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{t.name}, t.columnNames(), pgx.CopyFromRows(rows))
	if err != nil {
		metrics.RecordDBQuery("copy", t.name, "error", time.Since(start).Seconds())
		return fmt.Errorf("failed to copy into %s: %w", t.name, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit %s: %w", t.name, err)
	}

	metrics.RecordDBQuery("copy", t.name, "success", time.Since(start).Seconds())
	metrics.RecordRowsWritten(r.Name(), t.name, int(n))
	log.Debug().Str("table", t.name).Int64("rows", n).Msg("Table replaced")
	return nil
}

func dateValue(d ranking.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.Time()
}

func intValue(n models.NullInt32) any {
	if !n.Valid {
		return nil
	}
	return n.Int32
}

func floatValue(n models.NullFloat64) any {
	if !n.Valid {
		return nil
	}
	return n.Float64
}
