//go:build integration

package repository

import (
	"testing"

	"sportsviz/etl/internal/config"
	"sportsviz/etl/internal/models"
	"sportsviz/etl/internal/ranking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankingRepository_SinglesHistory(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	snaps, err := db.Rankings.SinglesHistory(ctx, []int{6}, []ranking.EntityID{"83950", "68870"})
	require.NoError(t, err)
	require.Len(t, snaps, 3, "Category 7 row and other athletes are excluded")

	assert.Equal(t, ranking.EntityID("68870"), snaps[0].Entity)
	assert.Equal(t, ranking.EntityID("83950"), snaps[1].Entity)
	assert.Equal(t, "2024-01-02", snaps[1].EffectiveDate.String())
	assert.Equal(t, int32(17), snaps[2].Rank.Int32)
}

func TestRankingRepository_SinglesHistorySameDayOrder(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	// 83950 has a category 6 and a category 7 rank on 2024-01-09
	snaps, err := db.Rankings.SinglesHistory(ctx, []int{7, 6}, []ranking.EntityID{"83950"})
	require.NoError(t, err)
	require.Len(t, snaps, 3)
	assert.Equal(t, int32(17), snaps[1].Rank.Int32)
	assert.Equal(t, int32(40), snaps[2].Rank.Int32)

	for i := 0; i < 3; i++ {
		r := ranking.NewResolver(ranking.WithDuplicatePolicy(ranking.KeepLast))
		report, err := r.Load(snaps)
		require.NoError(t, err)
		require.Len(t, report.Duplicates, 1)

		res, err := r.Resolve([]ranking.Query{{Entity: "83950", Date: ranking.MustParseDate("2024-01-09")}})
		require.NoError(t, err)
		assert.Equal(t, int32(40), res[0].Rank.Int32, "The higher category wins under keep_last")
	}
}

func TestRankingRepository_SinglesHistoryRejectsTeams(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	_, err := db.Rankings.SinglesHistory(ctx, []int{6}, []ranking.EntityID{ranking.Team(1, 2)})
	assert.Error(t, err)
}

func TestRankingRepository_DoublesHistory(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	// stored as (72435, 70500) and as (70500, 72435); the key is order-independent
	snaps, err := db.Rankings.DoublesHistory(ctx, []ranking.EntityID{ranking.Team(72435, 70500)})
	require.NoError(t, err)
	require.Len(t, snaps, 3)
	for _, s := range snaps {
		assert.Equal(t, ranking.EntityID("70500-72435"), s.Entity)
	}
	assert.Equal(t, int32(3), snaps[0].Rank.Int32)
	assert.Equal(t, int32(2), snaps[1].Rank.Int32, "Team row 1 comes first on 2024-01-09")
	assert.Equal(t, int32(4), snaps[2].Rank.Int32)

	r := ranking.NewResolver()
	_, err = r.Load(snaps)
	require.NoError(t, err)
	res, err := r.Resolve([]ranking.Query{{Entity: ranking.Team(70500, 72435), Date: ranking.MustParseDate("2024-01-10")}})
	require.NoError(t, err)
	assert.Equal(t, int32(4), res[0].Rank.Int32)
}

func TestRankingRepository_Progression(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	singles, err := db.Rankings.ListSinglesProgression(ctx, []int{83950}, []int{6, 7})
	require.NoError(t, err)
	assert.Len(t, singles, 3)
	for _, row := range singles {
		assert.Equal(t, "Lakshya Sen", row.EntityName)
	}

	doubles, err := db.Rankings.ListDoublesProgression(ctx, []config.TeamPair{{Player1: 70500, Player2: 72435}})
	require.NoError(t, err)
	require.Len(t, doubles, 3)
	names := map[string]bool{}
	for _, row := range doubles {
		names[row.EntityName] = true
		assert.Equal(t, ranking.Team(70500, 72435), row.EntityID)
	}
	assert.True(t, names["Satwiksairaj Rankireddy & Chirag Shetty"])
}

func TestRankingRepository_LatestDates(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	d, err := db.Rankings.LatestSinglesDate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-09", d.String())

	d, err = db.Rankings.LatestDoublesDate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-09", d.String())
}

func TestRankingRepository_ArcheryRankings(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	all, err := db.Rankings.ListArcheryRankings(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Deepika Kumari", all[0].AthleteName)
	assert.Equal(t, "2024-10-28", all[1].DateIssued.String())
	assert.Equal(t, models.Float64(187.25), all[1].Points)
	assert.False(t, all[2].Points.Valid, "NULL points stay null")

	none, err := db.Rankings.ListArcheryRankings(ctx, []int{404})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRankingRepository_ArcheryCompetitionRankings(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	rows, err := db.Rankings.ListArcheryCompetitionRankings(ctx, []int{7})
	require.NoError(t, err)
	require.Len(t, rows, 2, "Sub-level 52 competitions are left out")
	assert.Equal(t, 900, rows[0].CompetitionID)
	assert.Equal(t, "KUMARI Deepika", rows[0].AthleteName)
	assert.Equal(t, "Shanghai", rows[0].Place)
	assert.Equal(t, "2024-04-23", rows[0].Date.String())
	assert.Equal(t, models.Int32(9), rows[1].CompetitionRank)

	all, err := db.Rankings.ListArcheryCompetitionRankings(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
