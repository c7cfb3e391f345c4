package notable

import (
	"slices"

	"sportsviz/etl/internal/models"
	"sportsviz/etl/internal/ranking"
)

// Head-to-head results from the main athlete's side.
const (
	HeadToHeadWin  = "Win"
	HeadToHeadLoss = "Loss"
)

// HeadToHead puts every past meeting of a focus athlete on the main side.
// Meetings the record's athlete did not play in are dropped, as are repeats
// of the same (main, opponent, tournament, date, round). Rows are ordered by
// tournament date, latest first, keeping source order within a date.
// An empty focus keeps every athlete.
func HeadToHead(rows []models.HeadToHeadMatchRow, focus []int) []models.HeadToHeadRow {
	type key struct {
		main, opponent int
		tournament     string
		date           ranking.Date
		round          string
	}
	seen := make(map[key]bool, len(rows))
	out := make([]models.HeadToHeadRow, 0, len(rows))

	for _, r := range rows {
		if len(focus) > 0 && !slices.Contains(focus, r.MainAthleteID) {
			continue
		}
		row := models.HeadToHeadRow{
			StatsID:        r.StatsID,
			MainID:         r.MainAthleteID,
			TournamentID:   r.TournamentID,
			TournamentName: r.TournamentName,
			TournamentDate: r.TournamentDate,
			Round:          r.Round,
			Result:         HeadToHeadLoss,
		}
		switch r.MainAthleteID {
		case r.Team1ID:
			row.MainName, row.OpponentID, row.OpponentName = r.Team1Name, r.Team2ID, r.Team2Name
			if r.Winner == 1 {
				row.Result = HeadToHeadWin
			}
		case r.Team2ID:
			row.MainName, row.OpponentID, row.OpponentName = r.Team2Name, r.Team1ID, r.Team1Name
			if r.Winner == 2 {
				row.Result = HeadToHeadWin
			}
		default:
			continue
		}

		k := key{row.MainID, row.OpponentID, row.TournamentName, row.TournamentDate, row.Round}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, row)
	}

	slices.SortStableFunc(out, func(a, b models.HeadToHeadRow) int {
		return b.TournamentDate.Compare(a.TournamentDate)
	})
	return out
}
