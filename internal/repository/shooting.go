package repository

import (
	"context"
	"fmt"

	"sportsviz/etl/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// ShootingRepository reads shooting competition results.
type ShootingRepository struct {
	db *Database
}

const shootingColumns = `
	r.competition_id, COALESCE(r.competition_name, ''), COALESCE(c.competition_type, ''),
	COALESCE(c.nation_name, ''), COALESCE(c.nation_code, ''),
	COALESCE(c.city, ''), COALESCE(r.event_name, ''), COALESCE(r.event_type, ''),
	COALESCE(r.year, 0), r.competition_date::date, COALESCE(r.athlete_name, ''),
	r.rank, COALESCE(r.total, '')
`

// ListResults returns the qualification and final results of the given
// athletes from fromYear on, in the events each athlete is registered for.
func (r *ShootingRepository) ListResults(ctx context.Context, athletes []string, fromYear int) ([]models.ShootingResultRow, error) {
	query := `
		SELECT ` + shootingColumns + `
		FROM shooting_results r
		JOIN shooting_athlete_events bio
		  ON r.athlete_name = bio.athlete_name AND r.event_name = bio.athlete_event
		LEFT JOIN shooting_competition c ON r.competition_id = c.competition_id
		WHERE r.athlete_name = ANY($1)
		  AND r.year >= $2
		  AND r.event_type IN ('Qualification', 'Final')
		ORDER BY r.athlete_name, r.competition_date, r.competition_id, r.event_name, r.event_type, r.rank
	`
	out, err := r.list(ctx, query, athletes, fromYear)
	if err != nil {
		return nil, fmt.Errorf("failed to list shooting results: %w", err)
	}

	log.Debug().Int("count", len(out)).Msg("Retrieved shooting results")
	return out, nil
}

// ListQualifications returns the qualification results of every athlete from
// fromYear on, in competitions of the given types.
func (r *ShootingRepository) ListQualifications(ctx context.Context, competitionTypes []string, fromYear int) ([]models.ShootingResultRow, error) {
	query := `
		SELECT ` + shootingColumns + `
		FROM shooting_results r
		JOIN shooting_competition c ON r.competition_id = c.competition_id
		WHERE c.competition_type = ANY($1)
		  AND r.year >= $2
		  AND r.event_type = 'Qualification'
		ORDER BY r.competition_id, r.event_name, r.rank, r.athlete_name
	`
	out, err := r.list(ctx, query, competitionTypes, fromYear)
	if err != nil {
		return nil, fmt.Errorf("failed to list shooting qualifications: %w", err)
	}

	log.Debug().Int("count", len(out)).Msg("Retrieved shooting qualifications")
	return out, nil
}

func (r *ShootingRepository) list(ctx context.Context, query string, args ...any) ([]models.ShootingResultRow, error) {
	var out []models.ShootingResultRow
	err := r.db.query(ctx, "select", "shooting_results", query, func(rows pgx.Rows) error {
		var row models.ShootingResultRow
		err := rows.Scan(&row.CompetitionID, &row.CompetitionName, &row.CompetitionType,
			&row.Nation, &row.NationCode, &row.City, &row.EventName, &row.Stage,
			&row.Year, &row.Date, &row.AthleteName,
			&row.Rank, &row.Total)
		if err != nil {
			return err
		}
		out = append(out, row)
		return nil
	}, args...)
	return out, err
}
