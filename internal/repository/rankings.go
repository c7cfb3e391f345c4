package repository

import (
	"context"
	"errors"
	"fmt"

	"sportsviz/etl/internal/config"
	"sportsviz/etl/internal/models"
	"sportsviz/etl/internal/ranking"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// RankingRepository reads ranking histories from the upstream ranking graphs.
type RankingRepository struct {
	db *Database
}

// LatestSinglesDate returns the most recent ranking date of the individual
// ranking graph. ErrNotFound means the graph is empty.
func (r *RankingRepository) LatestSinglesDate(ctx context.Context) (ranking.Date, error) {
	return r.latest(ctx, "badminton_ranking_graph_ind")
}

// LatestDoublesDate returns the most recent ranking date of the team ranking
// graph. ErrNotFound means the graph is empty.
func (r *RankingRepository) LatestDoublesDate(ctx context.Context) (ranking.Date, error) {
	return r.latest(ctx, "badminton_ranking_graph_team")
}

func (r *RankingRepository) latest(ctx context.Context, table string) (ranking.Date, error) {
	query := fmt.Sprintf(`SELECT date::date FROM %s ORDER BY date DESC LIMIT 1`, pgx.Identifier{table}.Sanitize())

	var d ranking.Date
	err := r.db.Pool.QueryRow(ctx, query).Scan(&d)
	if errors.Is(err, pgx.ErrNoRows) {
		return ranking.Date{}, fmt.Errorf("%s: %w", table, ErrNotFound)
	}
	if err != nil {
		return ranking.Date{}, fmt.Errorf("failed to get latest ranking date: %w", err)
	}
	return d, nil
}

// SinglesHistory returns the world-ranking snapshots of the given athletes in
// the given ranking categories, ordered by athlete, date and category. Rows of
// one athlete on one date therefore always reach the resolver in the same
// order, so duplicate collapsing picks the same row on every run.
func (r *RankingRepository) SinglesHistory(ctx context.Context, categories []int, entities []ranking.EntityID) ([]ranking.Snapshot, error) {
	ids, err := athleteIDs(entities)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT athlete_id, date::date, world_ranking
		FROM badminton_ranking_graph_ind
		WHERE athlete_id = ANY($1) AND ranking_category_id = ANY($2)
		ORDER BY athlete_id, date, ranking_category_id, world_ranking
	`

	var snaps []ranking.Snapshot
	err = r.db.query(ctx, "select", "badminton_ranking_graph_ind", query, func(rows pgx.Rows) error {
		var (
			id   int
			snap ranking.Snapshot
		)
		if err := rows.Scan(&id, &snap.EffectiveDate, &snap.Rank); err != nil {
			return err
		}
		snap.Entity = ranking.Athlete(id)
		snaps = append(snaps, snap)
		return nil
	}, ids, categories)
	if err != nil {
		return nil, fmt.Errorf("failed to get singles history: %w", err)
	}

	log.Debug().Int("entities", len(entities)).Int("count", len(snaps)).Msg("Retrieved singles history")
	return snaps, nil
}

// DoublesHistory returns the world-ranking snapshots of the given teams. Teams
// are matched regardless of the order their players are stored in; rows of a
// team stored under both orders are ordered by team row on the same date.
func (r *RankingRepository) DoublesHistory(ctx context.Context, entities []ranking.EntityID) ([]ranking.Snapshot, error) {
	keys := make([]string, len(entities))
	for i, e := range entities {
		keys[i] = e.String()
	}

	query := `
		SELECT LEAST(t.athlete_1_id, t.athlete_2_id) AS p1,
		       GREATEST(t.athlete_1_id, t.athlete_2_id) AS p2,
		       g.date::date, g.world_ranking
		FROM badminton_team t
		JOIN badminton_ranking_graph_team g ON g.team_id = t.row_id
		WHERE LEAST(t.athlete_1_id, t.athlete_2_id)::text || '-' ||
		      GREATEST(t.athlete_1_id, t.athlete_2_id)::text = ANY($1)
		ORDER BY p1, p2, g.date, t.row_id, g.world_ranking
	`

	var snaps []ranking.Snapshot
	err := r.db.query(ctx, "select", "badminton_ranking_graph_team", query, func(rows pgx.Rows) error {
		var (
			p1, p2 int
			snap   ranking.Snapshot
		)
		if err := rows.Scan(&p1, &p2, &snap.EffectiveDate, &snap.Rank); err != nil {
			return err
		}
		snap.Entity = ranking.Team(p1, p2)
		snaps = append(snaps, snap)
		return nil
	}, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to get doubles history: %w", err)
	}

	log.Debug().Int("entities", len(entities)).Int("count", len(snaps)).Msg("Retrieved doubles history")
	return snaps, nil
}

// ListSinglesProgression returns the full ranking graph rows of the given
// athletes, with display names.
func (r *RankingRepository) ListSinglesProgression(ctx context.Context, athletes []int, categories []int) ([]models.RankingRow, error) {
	query := `
		SELECT DISTINCT a.athlete_id, COALESCE(b.display_name, ''), a.date::date,
		       a.world_ranking, a.world_tour_ranking, a.olympics, a.ranking_category_id
		FROM badminton_ranking_graph_ind a
		JOIN badminton_athlete b ON a.athlete_id = b.athlete_id
		WHERE a.athlete_id = ANY($1) AND a.ranking_category_id = ANY($2)
	`

	var out []models.RankingRow
	err := r.db.query(ctx, "select", "badminton_ranking_graph_ind", query, func(rows pgx.Rows) error {
		var (
			id  int
			row models.RankingRow
		)
		err := rows.Scan(&id, &row.EntityName, &row.RankingDate,
			&row.WorldRanking, &row.WorldTourRanking, &row.OlympicRank, &row.CategoryID)
		if err != nil {
			return err
		}
		row.EntityID = ranking.Athlete(id)
		out = append(out, row)
		return nil
	}, athletes, categories)
	if err != nil {
		return nil, fmt.Errorf("failed to list singles progression: %w", err)
	}

	log.Debug().Int("count", len(out)).Msg("Retrieved singles progression")
	return out, nil
}

// ListDoublesProgression returns the team ranking graph rows of the given
// pairs. The display name keeps the stored player order.
func (r *RankingRepository) ListDoublesProgression(ctx context.Context, pairs []config.TeamPair) ([]models.RankingRow, error) {
	keys := make([]string, len(pairs))
	for i, p := range pairs {
		keys[i] = p.Entity().String()
	}

	query := `
		SELECT DISTINCT t.athlete_1_id, t.athlete_2_id,
		       COALESCE(a1.display_name, '') || ' & ' || COALESCE(a2.display_name, ''),
		       g.date::date, g.world_ranking, g.world_tour_ranking, g.olympics
		FROM badminton_team t
		JOIN badminton_ranking_graph_team g ON g.team_id = t.row_id
		LEFT JOIN badminton_athlete a1 ON t.athlete_1_id = a1.athlete_id
		LEFT JOIN badminton_athlete a2 ON t.athlete_2_id = a2.athlete_id
		WHERE LEAST(t.athlete_1_id, t.athlete_2_id)::text || '-' ||
		      GREATEST(t.athlete_1_id, t.athlete_2_id)::text = ANY($1)
	`

	var out []models.RankingRow
	err := r.db.query(ctx, "select", "badminton_ranking_graph_team", query, func(rows pgx.Rows) error {
		var (
			p1, p2 int
			row    models.RankingRow
		)
		err := rows.Scan(&p1, &p2, &row.EntityName, &row.RankingDate,
			&row.WorldRanking, &row.WorldTourRanking, &row.OlympicRank)
		if err != nil {
			return err
		}
		row.EntityID = ranking.Team(p1, p2)
		out = append(out, row)
		return nil
	}, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to list doubles progression: %w", err)
	}

	log.Debug().Int("count", len(out)).Msg("Retrieved doubles progression")
	return out, nil
}

// ListArcheryRankings returns the ranking history of the given archers, or of
// every archer when athletes is empty. Rows issued on the same date are
// ordered by rank.
func (r *RankingRepository) ListArcheryRankings(ctx context.Context, athletes []int) ([]models.ArcheryRankingRow, error) {
	query := `
		SELECT a.athlete_id, COALESCE(b.name, ''), a.rank, a.rank_old, a.rank_date_issued::date, a.points
		FROM archery_athlete_ranking_history a
		JOIN archery_athlete b ON a.athlete_id = b.athlete_id
		WHERE cardinality($1::int[]) = 0 OR a.athlete_id = ANY($1)
		ORDER BY a.athlete_id, a.rank_date_issued, a.rank, a.points
	`
	if athletes == nil {
		athletes = []int{}
	}

	var out []models.ArcheryRankingRow
	err := r.db.query(ctx, "select", "archery_athlete_ranking_history", query, func(rows pgx.Rows) error {
		var row models.ArcheryRankingRow
		if err := rows.Scan(&row.AthleteID, &row.AthleteName, &row.Rank, &row.OldRank, &row.DateIssued, &row.Points); err != nil {
			return err
		}
		out = append(out, row)
		return nil
	}, athletes)
	if err != nil {
		return nil, fmt.Errorf("failed to list archery rankings: %w", err)
	}

	log.Debug().Int("count", len(out)).Msg("Retrieved archery rankings")
	return out, nil
}

// ListArcheryCompetitionRankings returns the individual competition ranks of
// the given archers, or of every archer when athletes is empty. Competitions
// of sub-level 52 are left out.
func (r *RankingRepository) ListArcheryCompetitionRankings(ctx context.Context, athletes []int) ([]models.ArcheryCompetitionRow, error) {
	query := `
		SELECT a.athlete_id, COALESCE(a.name, ''), a.competition_id, COALESCE(b.name, ''),
		       COALESCE(b.name_short, ''), COALESCE(b.place, ''), b.date_from::date, a.rank
		FROM archery_competition_ind_ranking a
		JOIN archery_competition b ON a.competition_id = b.competition_id
		WHERE b.competition_sublevel <> 52
		  AND (cardinality($1::int[]) = 0 OR a.athlete_id = ANY($1))
		ORDER BY a.athlete_id, b.date_from, a.competition_id
	`
	if athletes == nil {
		athletes = []int{}
	}

	var out []models.ArcheryCompetitionRow
	err := r.db.query(ctx, "select", "archery_competition_ind_ranking", query, func(rows pgx.Rows) error {
		var row models.ArcheryCompetitionRow
		err := rows.Scan(&row.AthleteID, &row.AthleteName, &row.CompetitionID, &row.FullName,
			&row.ShortName, &row.Place, &row.Date, &row.CompetitionRank)
		if err != nil {
			return err
		}
		out = append(out, row)
		return nil
	}, athletes)
	if err != nil {
		return nil, fmt.Errorf("failed to list archery competition rankings: %w", err)
	}

	log.Debug().Int("count", len(out)).Msg("Retrieved archery competition rankings")
	return out, nil
}

func athleteIDs(entities []ranking.EntityID) ([]int, error) {
	ids := make([]int, 0, len(entities))
	for _, e := range entities {
		players, err := e.Players()
		if err != nil {
			return nil, err
		}
		if len(players) != 1 {
			return nil, fmt.Errorf("entity %s is not an athlete", e)
		}
		ids = append(ids, players[0])
	}
	return ids, nil
}
