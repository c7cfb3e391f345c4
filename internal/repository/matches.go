package repository

import (
	"context"
	"fmt"

	"sportsviz/etl/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// MatchRepository reads matches, draw positions and tournaments of focus
// athletes.
type MatchRepository struct {
	db *Database
}

const matchColumns = `
	m.athlete_id, m.tournament_id, COALESCE(t.name, ''), COALESCE(t.grade, ''),
	COALESCE(t.date, ''), COALESCE(t.year, 0), COALESCE(m.round_name, ''),
	COALESCE(m.draw_name_full, ''), COALESCE(m.winner, 0),
	COALESCE(m.team_1_player_1_id, 0), COALESCE(m.team_1_player_1_name, ''),
	COALESCE(m.team_1_player_2_id, 0), COALESCE(m.team_1_player_2_name, ''),
	COALESCE(m.team_2_player_1_id, 0), COALESCE(m.team_2_player_1_name, ''),
	COALESCE(m.team_2_player_2_id, 0), COALESCE(m.team_2_player_2_name, '')
`

// ListSinglesMatches returns the singles matches played by the given
// athletes.
func (r *MatchRepository) ListSinglesMatches(ctx context.Context, athletes []int) ([]models.MatchRow, error) {
	return r.listMatches(ctx, athletes, false)
}

// ListDoublesMatches returns the doubles matches played by the given
// athletes. A match shows up once per focus partner.
func (r *MatchRepository) ListDoublesMatches(ctx context.Context, athletes []int) ([]models.MatchRow, error) {
	return r.listMatches(ctx, athletes, true)
}

func (r *MatchRepository) listMatches(ctx context.Context, athletes []int, doubles bool) ([]models.MatchRow, error) {
	query := `
		SELECT DISTINCT ` + matchColumns + `
		FROM badminton_athlete_match m
		JOIN badminton_athlete_tournament t
		  ON m.tournament_id = t.tournament_id AND m.athlete_id = t.athlete_id
		WHERE m.athlete_id = ANY($1)
		  AND (COALESCE(m.team_1_player_2_id, 0) <> 0) = $2
		ORDER BY m.athlete_id, m.tournament_id
	`

	var out []models.MatchRow
	err := r.db.query(ctx, "select", "badminton_athlete_match", query, func(rows pgx.Rows) error {
		var m models.MatchRow
		err := rows.Scan(
			&m.AthleteID, &m.TournamentID, &m.TournamentName, &m.Grade,
			&m.DateText, &m.Year, &m.Round,
			&m.Category, &m.Winner,
			&m.Team1Player1ID, &m.Team1Player1Name,
			&m.Team1Player2ID, &m.Team1Player2Name,
			&m.Team2Player1ID, &m.Team2Player1Name,
			&m.Team2Player2ID, &m.Team2Player2Name,
		)
		if err != nil {
			return err
		}
		out = append(out, m)
		return nil
	}, athletes, doubles)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	log.Debug().Bool("doubles", doubles).Int("count", len(out)).Msg("Retrieved matches")
	return out, nil
}

// ListFinishes returns the final draw position of the given athletes in
// every tournament they entered.
func (r *MatchRepository) ListFinishes(ctx context.Context, athletes []int) ([]models.FinishRow, error) {
	query := `
		SELECT DISTINCT d.athlete_id, d.tournament_id, COALESCE(t.name, ''), COALESCE(t.grade, ''),
		       COALESCE(t.date, ''), COALESCE(t.year, 0), COALESCE(d.name, ''), COALESCE(d.position, '')
		FROM badminton_athlete_tournament_draw d
		INNER JOIN badminton_athlete_tournament t
		  ON d.tournament_id = t.tournament_id AND d.athlete_id = t.athlete_id
		WHERE d.athlete_id = ANY($1)
		ORDER BY d.athlete_id, d.tournament_id
	`

	var out []models.FinishRow
	err := r.db.query(ctx, "select", "badminton_athlete_tournament_draw", query, func(rows pgx.Rows) error {
		var f models.FinishRow
		err := rows.Scan(&f.AthleteID, &f.TournamentID, &f.TournamentName, &f.Grade,
			&f.DateText, &f.Year, &f.Category, &f.Position)
		if err != nil {
			return err
		}
		out = append(out, f)
		return nil
	}, athletes)
	if err != nil {
		return nil, fmt.Errorf("failed to list finishes: %w", err)
	}

	log.Debug().Int("count", len(out)).Msg("Retrieved tournament finishes")
	return out, nil
}

// ListTournaments returns every distinct tournament.
func (r *MatchRepository) ListTournaments(ctx context.Context) ([]models.TournamentRow, error) {
	query := `
		SELECT DISTINCT tournament_id, COALESCE(name, ''), COALESCE(grade, ''), COALESCE(date, ''), COALESCE(year, 0)
		FROM badminton_athlete_tournament
		ORDER BY tournament_id
	`

	var out []models.TournamentRow
	err := r.db.query(ctx, "select", "badminton_athlete_tournament", query, func(rows pgx.Rows) error {
		var t models.TournamentRow
		if err := rows.Scan(&t.TournamentID, &t.Name, &t.Grade, &t.DateText, &t.Year); err != nil {
			return err
		}
		out = append(out, t)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}

	log.Debug().Int("count", len(out)).Msg("Retrieved tournaments")
	return out, nil
}

// ListHeadToHeadMatches returns the past meetings listed on the head-to-head
// records of the given athletes, or of every athlete when athletes is empty.
func (r *MatchRepository) ListHeadToHeadMatches(ctx context.Context, athletes []int) ([]models.HeadToHeadMatchRow, error) {
	query := `
		SELECT b.head_to_head_stats_id, a.team_1_athlete_1_id,
		       COALESCE(b.team_1_athlete_1_id, 0), COALESCE(b.team_1_athlete_1_name, ''),
		       COALESCE(b.team_2_athlete_1_id, 0), COALESCE(b.team_2_athlete_1_name, ''),
		       COALESCE(b.tournament_id, 0), COALESCE(b.tournament_name, ''),
		       b.tournament_date::date, COALESCE(b.round_name, ''), COALESCE(b.winner, 0)
		FROM badminton_h2h_match_stats b
		JOIN badminton_h2h_stats a ON b.head_to_head_stats_id = a.row_id
		WHERE cardinality($1::int[]) = 0 OR a.team_1_athlete_1_id = ANY($1)
		ORDER BY a.row_id, b.tournament_date DESC, b.tournament_id, b.round_name, b.winner
	`
	if athletes == nil {
		athletes = []int{}
	}

	var out []models.HeadToHeadMatchRow
	err := r.db.query(ctx, "select", "badminton_h2h_match_stats", query, func(rows pgx.Rows) error {
		var m models.HeadToHeadMatchRow
		err := rows.Scan(&m.StatsID, &m.MainAthleteID,
			&m.Team1ID, &m.Team1Name, &m.Team2ID, &m.Team2Name,
			&m.TournamentID, &m.TournamentName,
			&m.TournamentDate, &m.Round, &m.Winner)
		if err != nil {
			return err
		}
		out = append(out, m)
		return nil
	}, athletes)
	if err != nil {
		return nil, fmt.Errorf("failed to list head-to-head matches: %w", err)
	}

	log.Debug().Int("count", len(out)).Msg("Retrieved head-to-head matches")
	return out, nil
}
