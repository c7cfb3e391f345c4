//go:build integration

package repository

import (
	"testing"

	"sportsviz/etl/internal/ranking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchRepository_ListSinglesMatches(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	matches, err := db.Matches.ListSinglesMatches(ctx, []int{83950, 72435})
	require.NoError(t, err)
	require.Len(t, matches, 2, "Doubles match is excluded")

	for _, m := range matches {
		assert.False(t, m.IsDoubles())
		assert.Equal(t, "India Open", m.TournamentName)
		assert.Equal(t, "16 - 21 January", m.DateText)
		assert.Equal(t, 2024, m.Year)
	}

	side2 := map[ranking.EntityID]bool{}
	for _, m := range matches {
		id, _ := m.Side2()
		side2[id] = true
	}
	assert.True(t, side2["99001"])
	assert.True(t, side2["68870"])
}

func TestMatchRepository_ListDoublesMatches(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	matches, err := db.Matches.ListDoublesMatches(ctx, []int{72435, 70500})
	require.NoError(t, err)
	require.Len(t, matches, 1)

	m := matches[0]
	assert.True(t, m.IsDoubles())
	id, name := m.Side1()
	assert.Equal(t, ranking.Team(70500, 72435), id)
	assert.Equal(t, "Satwiksairaj Rankireddy & Chirag Shetty", name)
	assert.Equal(t, "MD", m.Category)
}

func TestMatchRepository_ListFinishes(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	finishes, err := db.Matches.ListFinishes(ctx, []int{83950})
	require.NoError(t, err)
	require.Len(t, finishes, 2)

	assert.Equal(t, "R16", finishes[0].Position)
	assert.Equal(t, "750", finishes[0].Grade)
	assert.Equal(t, "SF", finishes[1].Position)
	assert.Equal(t, "", finishes[1].Grade, "Missing grade is left for the caller to default")
}

func TestMatchRepository_ListTournaments(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	tournaments, err := db.Matches.ListTournaments(ctx)
	require.NoError(t, err)
	require.Len(t, tournaments, 2, "One row per tournament, not per athlete")
	assert.Equal(t, 501, tournaments[0].TournamentID)
	assert.Equal(t, "05 - 10 March", tournaments[1].DateText)
}

func TestMatchRepository_ListHeadToHeadMatches(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	rows, err := db.Matches.ListHeadToHeadMatches(ctx, []int{83950})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, r := range rows {
		assert.Equal(t, 83950, r.MainAthleteID)
		assert.Equal(t, 40, r.StatsID)
	}
	assert.Equal(t, "2024-01-16", rows[0].TournamentDate.String())
	assert.Equal(t, "Malaysia Open", rows[2].TournamentName)
	assert.Equal(t, 99001, rows[2].Team1ID)

	all, err := db.Matches.ListHeadToHeadMatches(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}
