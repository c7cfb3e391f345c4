package notable

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"sportsviz/etl/internal/models"
	"sportsviz/etl/internal/ranking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolved(rank int32) ranking.Resolved {
	return ranking.Resolved{Rank: sql.NullInt32{Int32: rank, Valid: true}}
}

func TestClassify(t *testing.T) {
	unknown := ranking.Resolved{}

	tests := []struct {
		name     string
		won      bool
		focus    ranking.Resolved
		opponent ranking.Resolved
		policy   TiePolicy
		want     Outcome
	}{
		{name: "beat better ranked", won: true, focus: resolved(20), opponent: resolved(5), want: NotableWin},
		{name: "beat worse ranked", won: true, focus: resolved(5), opponent: resolved(20), want: Win},
		{name: "equal rank strict", won: true, focus: resolved(8), opponent: resolved(8), policy: Strict, want: Win},
		{name: "equal rank inclusive", won: true, focus: resolved(8), opponent: resolved(8), policy: Inclusive, want: NotableWin},
		{name: "opponent unranked", won: true, focus: resolved(8), opponent: unknown, want: InsufficientData},
		{name: "focus unranked", won: true, focus: unknown, opponent: resolved(3), want: InsufficientData},
		{name: "loss to worse ranked", won: false, focus: resolved(3), opponent: resolved(40), want: Loss},
		{name: "loss without ranks", won: false, focus: unknown, opponent: unknown, want: Loss},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.won, tt.focus, tt.opponent, tt.policy))
		})
	}
}

func TestParseTiePolicy(t *testing.T) {
	p, err := ParseTiePolicy("Inclusive")
	require.NoError(t, err)
	assert.Equal(t, Inclusive, p)
	assert.Equal(t, "inclusive", p.String())

	p, err = ParseTiePolicy("")
	require.NoError(t, err)
	assert.Equal(t, Strict, p)

	_, err = ParseTiePolicy(">=")
	assert.Error(t, err)
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "Viktor Axelsen (1)", Display("Viktor Axelsen", resolved(1)))
	assert.Equal(t, "Unknown Player", Display("Unknown Player", ranking.Resolved{}))
}

func loadedResolver(t *testing.T) *ranking.Resolver {
	t.Helper()
	r := ranking.NewResolver()
	_, err := r.Load([]ranking.Snapshot{
		{Entity: "10", EffectiveDate: ranking.MustParseDate("2024-01-02"), Rank: sql.NullInt32{Int32: 20, Valid: true}},
		{Entity: "11", EffectiveDate: ranking.MustParseDate("2024-01-02"), Rank: sql.NullInt32{Int32: 4, Valid: true}},
		{Entity: "12", EffectiveDate: ranking.MustParseDate("2024-01-02"), Rank: sql.NullInt32{Int32: 50, Valid: true}},
		// published on the first day of the tournament
		{Entity: "10", EffectiveDate: ranking.MustParseDate("2024-03-05"), Rank: sql.NullInt32{Int32: 15, Valid: true}},
	})
	require.NoError(t, err)
	return r
}

func match(round string, focus, opponent ranking.EntityID, winner int) Match {
	return Match{
		TournamentID:   100,
		TournamentName: "All England Open",
		Grade:          "1000",
		Round:          round,
		Year:           2024,
		StartDate:      ranking.MustParseDate("2024-03-05"),
		Focus:          focus,
		Side1:          Side{Entity: focus, Name: "Focus " + focus.String()},
		Side2:          Side{Entity: opponent, Name: "Opp " + opponent.String()},
		Winner:         winner,
	}
}

func TestAnnotator_Annotate(t *testing.T) {
	a := NewAnnotator(loadedResolver(t), Options{Mode: ranking.OnOrBefore, Workers: 2})

	// focus on side 2, side 1 won
	flipped := match("SF", "10", "11", 1)
	flipped.Side1, flipped.Side2 = flipped.Side2, flipped.Side1

	stranger := match("F", "10", "12", 1)
	stranger.Focus = "77"

	matches := []Match{
		match("R32", "10", "12", 1), // win over 50
		match("R16", "10", "11", 1), // notable win over 4
		match("QF", "10", "99", 1),  // opponent has no history
		flipped,
		match("F", "10", "12", 0), // walkover
		stranger,
	}

	rows, report, err := a.Annotate(context.Background(), matches)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, 1, report.Walkovers)
	assert.Equal(t, 1, report.Unmatched)
	assert.Equal(t, 1, report.Outcomes[Win])
	assert.Equal(t, 1, report.Outcomes[NotableWin])
	assert.Equal(t, 1, report.Outcomes[InsufficientData])
	assert.Equal(t, 1, report.Outcomes[Loss])

	win := rows[0]
	assert.Equal(t, string(Win), win.Outcome)
	assert.True(t, win.WinFlag)
	assert.Equal(t, int32(15), win.EntityRank.Int32, "ON_OR_BEFORE picks the snapshot published on the start date")
	assert.Equal(t, "2024-03-05", win.EntityRankDate.String())
	assert.Empty(t, win.NotableWin)

	notable := rows[1]
	assert.Equal(t, string(NotableWin), notable.Outcome)
	assert.Equal(t, "Opp 11 (4)", notable.NotableWin)

	insufficient := rows[2]
	assert.Equal(t, string(InsufficientData), insufficient.Outcome)
	assert.False(t, insufficient.OpponentRank.Valid)
	assert.True(t, insufficient.OpponentRankDate.IsZero())

	loss := rows[3]
	assert.Equal(t, string(Loss), loss.Outcome)
	assert.False(t, loss.WinFlag)
	assert.Equal(t, ranking.EntityID("10"), loss.EntityID)
	assert.Equal(t, ranking.EntityID("11"), loss.OpponentID)
	assert.Equal(t, "Opp 11 (4)", loss.LostTo)
}

func TestAnnotator_StrictlyBefore(t *testing.T) {
	a := NewAnnotator(loadedResolver(t), Options{Mode: ranking.StrictlyBefore})

	rows, _, err := a.Annotate(context.Background(), []Match{match("R32", "10", "12", 1)})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int32(20), rows[0].EntityRank.Int32)
	assert.Equal(t, "2024-01-02", rows[0].EntityRankDate.String())
}

func TestAnnotator_MissingStartDate(t *testing.T) {
	a := NewAnnotator(loadedResolver(t), Options{})

	m := match("R32", "10", "12", 1)
	m.StartDate = ranking.Date{}

	_, _, err := a.Annotate(context.Background(), []Match{m})
	require.Error(t, err)
	assert.True(t, ranking.IsDataError(err))
}

type failingResolver struct{}

func (failingResolver) ResolveParallel(context.Context, []ranking.Query, int) ([]ranking.Resolved, error) {
	return nil, errors.New("boom")
}

func TestAnnotator_ResolverError(t *testing.T) {
	a := NewAnnotator(failingResolver{}, Options{})
	_, _, err := a.Annotate(context.Background(), []Match{match("R32", "10", "12", 1)})
	assert.ErrorContains(t, err, "boom")
}

func TestSummarize(t *testing.T) {
	rows := []models.NotableWinRow{
		{EntityID: "10", TournamentID: 1, TournamentName: "India Open", RoundName: "R32", Year: 2025, NotableWin: "A (3)"},
		{EntityID: "10", TournamentID: 1, TournamentName: "India Open", RoundName: "QF", Year: 2025, NotableWin: "B (5)"},
		{EntityID: "10", TournamentID: 1, TournamentName: "India Open", RoundName: "R16", Year: 2025, NotableWin: "A (3)"},
		{EntityID: "10", TournamentID: 1, TournamentName: "India Open", RoundName: "SF", Year: 2025, LostTo: "C (1)"},
		{EntityID: "10", TournamentID: 2, TournamentName: "Qualifier Cup", RoundName: "Q1", Year: 2025},
		{EntityID: "11", TournamentID: 1, TournamentName: "India Open", RoundName: "r16", Year: 2025, TournamentGrade: ""},
	}

	summary := Summarize(rows, "G1_CC")
	require.Len(t, summary, 2)

	first := summary[0]
	assert.Equal(t, ranking.EntityID("10"), first.EntityID)
	assert.Equal(t, "SF", first.FinalPosition)
	assert.Equal(t, "A (3), B (5)", first.NotableWins)
	assert.Equal(t, "C (1)", first.LostTo)

	second := summary[1]
	assert.Equal(t, ranking.EntityID("11"), second.EntityID)
	assert.Equal(t, "R16", second.FinalPosition)
	assert.Equal(t, "G1_CC", second.TournamentGrade)
	assert.Empty(t, second.NotableWins)
}
