package progression

import (
	"strconv"
	"strings"

	"sportsviz/etl/internal/models"
)

// CompetitionRanking labels each competition rank with "<place> <year>", the
// short name used on charts. A competition without a date keeps the place
// alone; one without a place keeps the stored short name.
func CompetitionRanking(rows []models.ArcheryCompetitionRow) []models.ArcheryCompetitionRankingRow {
	out := make([]models.ArcheryCompetitionRankingRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.ArcheryCompetitionRankingRow{
			AthleteID:       r.AthleteID,
			AthleteName:     r.AthleteName,
			CompetitionID:   r.CompetitionID,
			FullName:        r.FullName,
			ShortName:       r.ShortName,
			Place:           r.Place,
			Date:            r.Date,
			CompetitionRank: r.CompetitionRank,
			NewShortName:    competitionLabel(r),
		})
	}
	return out
}

func competitionLabel(r models.ArcheryCompetitionRow) string {
	place := strings.TrimSpace(r.Place)
	if place == "" {
		return r.ShortName
	}
	if r.Date.IsZero() {
		return place
	}
	return place + " " + strconv.Itoa(r.Date.Year())
}
