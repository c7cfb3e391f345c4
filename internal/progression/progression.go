// Package progression builds the ranking-over-time views: badminton ranking
// progression per athlete or team, archery month-end snapshots and archery
// competition ranks.
package progression

import (
	"cmp"
	"slices"

	"sportsviz/etl/internal/models"
	"sportsviz/etl/internal/ranking"

	"github.com/rs/zerolog/log"
)

// Build orders rows by entity then ranking date and forward-fills the world
// tour ranking within each entity. A missing world tour ranking takes the
// entity's previous value; nothing carries across entities. Rows without a
// ranking date are dropped.
func Build(rows []models.RankingRow) []models.ProgressionRow {
	sorted := make([]models.RankingRow, 0, len(rows))
	dropped := 0
	for _, r := range rows {
		if r.RankingDate.IsZero() {
			dropped++
			continue
		}
		sorted = append(sorted, r)
	}
	if dropped > 0 {
		log.Warn().Int("dropped", dropped).Msg("Ranking rows without a date dropped")
	}

	slices.SortStableFunc(sorted, func(a, b models.RankingRow) int {
		if c := compareEntities(a.EntityID, b.EntityID); c != 0 {
			return c
		}
		return a.RankingDate.Compare(b.RankingDate)
	})

	out := make([]models.ProgressionRow, len(sorted))
	var last models.NullInt32
	for i, r := range sorted {
		if i == 0 || r.EntityID != sorted[i-1].EntityID {
			last = models.NullInt32{}
		}
		tour := r.WorldTourRanking
		if tour.Valid {
			last = tour
		} else {
			tour = last
		}
		out[i] = models.ProgressionRow{
			EntityID:         r.EntityID,
			EntityName:       r.EntityName,
			RankingDate:      r.RankingDate,
			Year:             r.RankingDate.Year(),
			WorldRanking:     r.WorldRanking,
			WorldTourRanking: tour,
			OlympicRank:      r.OlympicRank,
			CategoryID:       r.CategoryID,
		}
	}
	return out
}

// compareEntities orders numeric athlete and team keys by their IDs, and
// anything else as text after them.
func compareEntities(a, b ranking.EntityID) int {
	pa, errA := a.Players()
	pb, errB := b.Players()
	switch {
	case errA == nil && errB == nil:
		return slices.Compare(pa, pb)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	default:
		return cmp.Compare(a, b)
	}
}

// FilterYears keeps rows whose year is in years. An empty years keeps all rows.
func FilterYears(rows []models.ProgressionRow, years []int) []models.ProgressionRow {
	if len(years) == 0 {
		return rows
	}
	out := make([]models.ProgressionRow, 0, len(rows))
	for _, r := range rows {
		if slices.Contains(years, r.Year) {
			out = append(out, r)
		}
	}
	return out
}
