package notable

import (
	"strings"

	"sportsviz/etl/internal/models"
	"sportsviz/etl/internal/ranking"
	"sportsviz/etl/internal/tournament"
)

// Summarize collapses classified matches into one row per (entity,
// tournament): the furthest round reached and the distinct notable wins and
// losses in match order. Groups with no reported round are dropped. Output
// follows the first appearance of each group.
func Summarize(rows []models.NotableWinRow, defaultGrade string) []models.TournamentSummaryRow {
	type key struct {
		entity     ranking.EntityID
		tournament int
	}
	type group struct {
		best     int
		bestRank int
		wins     []string
		losses   []string
		seenWins map[string]bool
		seenLoss map[string]bool
	}

	var order []key
	groups := make(map[key]*group)

	for i, r := range rows {
		k := key{entity: r.EntityID, tournament: r.TournamentID}
		g, ok := groups[k]
		if !ok {
			g = &group{best: -1, bestRank: -1, seenWins: map[string]bool{}, seenLoss: map[string]bool{}}
			groups[k] = g
			order = append(order, k)
		}
		if rr := tournament.RoundRank(r.RoundName); rr > g.bestRank {
			g.best, g.bestRank = i, rr
		}
		if r.NotableWin != "" && !g.seenWins[r.NotableWin] {
			g.seenWins[r.NotableWin] = true
			g.wins = append(g.wins, r.NotableWin)
		}
		if r.LostTo != "" && !g.seenLoss[r.LostTo] {
			g.seenLoss[r.LostTo] = true
			g.losses = append(g.losses, r.LostTo)
		}
	}

	out := make([]models.TournamentSummaryRow, 0, len(order))
	for _, k := range order {
		g := groups[k]
		if g.bestRank < 0 {
			continue
		}
		best := rows[g.best]
		round, _ := tournament.NormalizeRound(best.RoundName)
		out = append(out, models.TournamentSummaryRow{
			EntityID:        best.EntityID,
			TournamentID:    best.TournamentID,
			TournamentName:  best.TournamentName,
			FinalPosition:   round,
			TournamentGrade: tournament.NormalizeGrade(best.TournamentGrade, defaultGrade),
			TournamentYear:  best.Year,
			StartDate:       best.StartDate,
			NotableWins:     strings.Join(g.wins, ", "),
			LostTo:          strings.Join(g.losses, ", "),
		})
	}
	return out
}
