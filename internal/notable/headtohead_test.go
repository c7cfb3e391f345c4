package notable

import (
	"testing"

	"sportsviz/etl/internal/models"
	"sportsviz/etl/internal/ranking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func h2hRow(main, t1, t2, winner int, tournament, date, round string) models.HeadToHeadMatchRow {
	return models.HeadToHeadMatchRow{
		StatsID:        main * 10,
		MainAthleteID:  main,
		Team1ID:        t1,
		Team1Name:      "Player " + string(ranking.Athlete(t1)),
		Team2ID:        t2,
		Team2Name:      "Player " + string(ranking.Athlete(t2)),
		TournamentName: tournament,
		TournamentDate: ranking.MustParseDate(date),
		Round:          round,
		Winner:         winner,
	}
}

func TestHeadToHead(t *testing.T) {
	rows := []models.HeadToHeadMatchRow{
		h2hRow(1, 1, 2, 1, "India Open", "2024-01-16", "R32"),
		h2hRow(1, 3, 1, 1, "Malaysia Open", "2024-01-09", "QF"),
		h2hRow(1, 1, 2, 2, "India Open", "2024-01-16", "R32"),
		h2hRow(1, 4, 5, 1, "German Open", "2024-03-05", "R16"),
		h2hRow(1, 2, 1, 2, "All England", "2024-03-12", "SF"),
		h2hRow(9, 9, 1, 1, "All England", "2024-03-12", "F"),
	}

	out := HeadToHead(rows, []int{1})
	require.Len(t, out, 3, "Repeats, foreign meetings and other mains are dropped")

	assert.Equal(t, "All England", out[0].TournamentName)
	assert.Equal(t, 1, out[0].MainID)
	assert.Equal(t, "Player 1", out[0].MainName)
	assert.Equal(t, 2, out[0].OpponentID)
	assert.Equal(t, HeadToHeadWin, out[0].Result, "Main on side 2 and side 2 won")

	assert.Equal(t, "India Open", out[1].TournamentName)
	assert.Equal(t, HeadToHeadWin, out[1].Result, "First of the repeats is kept")

	assert.Equal(t, "Malaysia Open", out[2].TournamentName)
	assert.Equal(t, 3, out[2].OpponentID)
	assert.Equal(t, HeadToHeadLoss, out[2].Result)
}

func TestHeadToHead_NoFocusKeepsAll(t *testing.T) {
	rows := []models.HeadToHeadMatchRow{
		h2hRow(1, 1, 2, 1, "India Open", "2024-01-16", "R32"),
		h2hRow(9, 9, 1, 2, "India Open", "2024-01-16", "R32"),
	}
	out := HeadToHead(rows, nil)
	require.Len(t, out, 2)
	assert.Equal(t, HeadToHeadWin, out[0].Result)
	assert.Equal(t, HeadToHeadLoss, out[1].Result)
	assert.Equal(t, 1, out[1].OpponentID)
}
