package progression

import (
	"context"
	"testing"
	"time"

	"sportsviz/etl/internal/models"
	"sportsviz/etl/internal/ranking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rankingRow(entity string, date string, world, tour int32) models.RankingRow {
	r := models.RankingRow{
		EntityID:    ranking.EntityID(entity),
		EntityName:  "Player " + entity,
		RankingDate: ranking.MustParseDate(date),
		CategoryID:  6,
	}
	if world > 0 {
		r.WorldRanking = models.Int32(world)
	}
	if tour > 0 {
		r.WorldTourRanking = models.Int32(tour)
	}
	return r
}

func TestBuild_ForwardFillsWithinEntity(t *testing.T) {
	rows := []models.RankingRow{
		rankingRow("100", "2024-01-16", 12, 0),
		rankingRow("99", "2024-01-02", 30, 0),
		rankingRow("100", "2024-01-02", 10, 8),
		rankingRow("100", "2024-01-09", 11, 0),
		rankingRow("99", "2024-01-09", 29, 25),
		rankingRow("99", "2024-01-16", 28, 0),
		{EntityID: "99", EntityName: "Player 99"},
	}

	out := Build(rows)
	require.Len(t, out, 6)

	// numeric entity order: 99 before 100
	assert.Equal(t, ranking.EntityID("99"), out[0].EntityID)
	assert.Equal(t, "2024-01-02", out[0].RankingDate.String())
	assert.False(t, out[0].WorldTourRanking.Valid, "Nothing to carry forward yet")
	assert.Equal(t, models.Int32(25), out[1].WorldTourRanking)
	assert.Equal(t, models.Int32(25), out[2].WorldTourRanking)

	assert.Equal(t, ranking.EntityID("100"), out[3].EntityID)
	assert.Equal(t, models.Int32(8), out[3].WorldTourRanking)
	assert.Equal(t, models.Int32(8), out[4].WorldTourRanking)
	assert.Equal(t, models.Int32(8), out[5].WorldTourRanking)
	assert.Equal(t, models.Int32(12), out[5].WorldRanking, "World ranking is not filled")
	assert.Equal(t, 2024, out[5].Year)
}

func TestBuild_TeamsOrderNumerically(t *testing.T) {
	rows := []models.RankingRow{
		rankingRow("70500-72435", "2024-01-02", 3, 3),
		rankingRow("59966-71612", "2024-01-02", 9, 9),
	}
	out := Build(rows)
	require.Len(t, out, 2)
	assert.Equal(t, ranking.EntityID("59966-71612"), out[0].EntityID)
}

func TestFilterYears(t *testing.T) {
	rows := []models.ProgressionRow{{Year: 2023}, {Year: 2024}, {Year: 2025}}
	assert.Len(t, FilterYears(rows, []int{2024, 2025}), 2)
	assert.Len(t, FilterYears(rows, nil), 3)
}

func archeryRow(id int, date string, rank int32) models.ArcheryRankingRow {
	return models.ArcheryRankingRow{
		AthleteID:   id,
		AthleteName: "Archer",
		Rank:        models.Int32(rank),
		DateIssued:  ranking.MustParseDate(date),
	}
}

func TestMonthEnd(t *testing.T) {
	rows := []models.ArcheryRankingRow{
		archeryRow(1, "2024-10-07", 14),
		archeryRow(1, "2024-10-28", 11),
		archeryRow(1, "2024-11-04", 9),
		archeryRow(1, "2025-09-29", 20),
		archeryRow(2, "2025-10-13", 40),
		archeryRow(2, "2024-09-30", 41),
	}

	out, err := MonthEnd(context.Background(), rows, time.October, nil)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, 1, out[0].AthleteID)
	assert.Equal(t, 2024, out[0].Year)
	assert.Equal(t, models.Int32(11), out[0].Rank)
	assert.Equal(t, "2024-10-28", out[0].DateIssued.String())

	// athlete 2 had nothing in October 2024; September does not count
	assert.Equal(t, 2, out[1].AthleteID)
	assert.Equal(t, 2025, out[1].Year)
	assert.Equal(t, models.Int32(40), out[1].Rank)
}

func TestMonthEnd_ExplicitYears(t *testing.T) {
	rows := []models.ArcheryRankingRow{
		archeryRow(1, "2024-10-07", 14),
		archeryRow(1, "2025-10-07", 12),
	}
	out, err := MonthEnd(context.Background(), rows, time.October, []int{2025})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 2025, out[0].Year)
}

func TestMonthEnd_BadDate(t *testing.T) {
	rows := []models.ArcheryRankingRow{{AthleteID: 1, Rank: models.Int32(3)}}
	_, err := MonthEnd(context.Background(), rows, time.October, nil)
	assert.True(t, ranking.IsDataError(err))
}

func TestMonthEnd_Points(t *testing.T) {
	withPoints := func(r models.ArcheryRankingRow, p float64) models.ArcheryRankingRow {
		r.Points = models.Float64(p)
		return r
	}
	rows := []models.ArcheryRankingRow{
		withPoints(archeryRow(1, "2024-10-07", 14), 150),
		withPoints(archeryRow(1, "2024-10-28", 12), 160.5),
		withPoints(archeryRow(1, "2024-10-28", 11), 171.25),
		archeryRow(2, "2024-10-14", 30),
	}

	out, err := MonthEnd(context.Background(), rows, time.October, nil,
		ranking.WithDuplicatePolicy(ranking.KeepBest))
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, models.Int32(11), out[0].Rank)
	assert.Equal(t, models.Float64(171.25), out[0].Points, "Points follow the kept row")
	assert.False(t, out[1].Points.Valid)

	out, err = MonthEnd(context.Background(), rows[:3], time.October, nil,
		ranking.WithDuplicatePolicy(ranking.KeepWorst))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, models.Float64(160.5), out[0].Points)
}

func TestCompetitionRanking(t *testing.T) {
	rows := []models.ArcheryCompetitionRow{
		{AthleteID: 7, CompetitionID: 900, ShortName: "WC Shanghai", Place: "Shanghai", Date: ranking.MustParseDate("2024-04-23"), CompetitionRank: models.Int32(2)},
		{AthleteID: 7, CompetitionID: 903, ShortName: "Trials", Place: " Antalya ", CompetitionRank: models.Int32(5)},
		{AthleteID: 8, CompetitionID: 904, ShortName: "Nationals", Date: ranking.MustParseDate("2023-12-01")},
	}

	out := CompetitionRanking(rows)
	require.Len(t, out, 3)
	assert.Equal(t, "Shanghai 2024", out[0].NewShortName)
	assert.Equal(t, models.Int32(2), out[0].CompetitionRank)
	assert.Equal(t, "Antalya", out[1].NewShortName)
	assert.Equal(t, "Nationals", out[2].NewShortName)
	assert.False(t, out[2].CompetitionRank.Valid)
}
