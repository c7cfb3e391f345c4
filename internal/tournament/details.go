package tournament

import (
	"sportsviz/etl/internal/models"

	"github.com/rs/zerolog/log"
)

// Details parses the date range and fills the grade of every tournament,
// inferring it from the name when none is stored.
// A tournament whose date text cannot be parsed keeps empty dates and is
// logged; Details never fails.
func Details(rows []models.TournamentRow, defaultGrade string) []models.TournamentDetailRow {
	out := make([]models.TournamentDetailRow, 0, len(rows))
	bad := 0
	for _, t := range rows {
		d := models.TournamentDetailRow{
			TournamentID: t.TournamentID,
			Name:         t.Name,
			Grade:        t.Grade,
			NewGrade:     DetailGrade(t.Grade, t.Name, defaultGrade),
			DateText:     t.DateText,
			Year:         t.Year,
		}
		start, end, err := ParseDateRange(t.DateText, t.Year)
		if err != nil {
			bad++
			log.Debug().
				Err(err).
				Int("tournament_id", t.TournamentID).
				Msg("Tournament date range not parsed")
		} else {
			d.StartDate, d.EndDate = start, end
		}
		out = append(out, d)
	}

	if bad > 0 {
		log.Warn().
			Int("tournaments", len(rows)).
			Int("unparsed_dates", bad).
			Msg("Some tournament date ranges could not be parsed")
	}
	return out
}
