package notable

import (
	"context"
	"fmt"

	"sportsviz/etl/internal/models"
	"sportsviz/etl/internal/ranking"
	"sportsviz/etl/internal/tournament"

	"github.com/rs/zerolog/log"
)

// RankResolver resolves rank queries. *ranking.Resolver satisfies it.
type RankResolver interface {
	ResolveParallel(ctx context.Context, queries []ranking.Query, workers int) ([]ranking.Resolved, error)
}

// Side is one side of a match.
type Side struct {
	Entity ranking.EntityID
	Name   string
}

// Match is a match of a focus entity. Winner is 1 or 2 for the winning side
// and 0 for a walkover or unplayed match.
type Match struct {
	TournamentID   int
	TournamentName string
	Grade          string
	Round          string
	Year           int
	StartDate      ranking.Date
	Focus          ranking.EntityID
	Side1          Side
	Side2          Side
	Winner         int
}

// Report counts what Annotate did with its input.
type Report struct {
	Outcomes  map[Outcome]int
	Walkovers int
	Unmatched int
}

// Options configures an Annotator.
type Options struct {
	Mode         ranking.Mode
	TiePolicy    TiePolicy
	Workers      int
	DefaultGrade string
}

// Annotator attaches point-in-time ranks to matches and classifies them.
type Annotator struct {
	resolver RankResolver
	opts     Options
}

// NewAnnotator creates an annotator that resolves ranks with r.
func NewAnnotator(r RankResolver, opts Options) *Annotator {
	if opts.DefaultGrade == "" {
		opts.DefaultGrade = tournament.DefaultGrade
	}
	return &Annotator{resolver: r, opts: opts}
}

// Annotate classifies each match using both sides' ranks as of the
// tournament start date. Walkovers and matches the focus entity did not
// play in are skipped. A match without a start date fails the whole call.
func (a *Annotator) Annotate(ctx context.Context, matches []Match) ([]models.NotableWinRow, Report, error) {
	report := Report{Outcomes: make(map[Outcome]int, len(Outcomes))}

	type pending struct {
		match     Match
		focusSide int
	}
	kept := make([]pending, 0, len(matches))
	queries := make([]ranking.Query, 0, 2*len(matches))

	for _, m := range matches {
		if m.Winner == 0 {
			report.Walkovers++
			continue
		}
		var side int
		switch m.Focus {
		case m.Side1.Entity:
			side = 1
		case m.Side2.Entity:
			side = 2
		default:
			report.Unmatched++
			continue
		}
		if m.Winner != 1 && m.Winner != 2 {
			report.Unmatched++
			continue
		}
		kept = append(kept, pending{match: m, focusSide: side})
		queries = append(queries,
			ranking.Query{Entity: m.Side1.Entity, Date: m.StartDate, Mode: a.opts.Mode},
			ranking.Query{Entity: m.Side2.Entity, Date: m.StartDate, Mode: a.opts.Mode},
		)
	}

	resolved, err := a.resolver.ResolveParallel(ctx, queries, a.opts.Workers)
	if err != nil {
		return nil, report, fmt.Errorf("failed to resolve match ranks: %w", err)
	}

	rows := make([]models.NotableWinRow, 0, len(kept))
	for i, p := range kept {
		m := p.match
		focus, opp := m.Side1, m.Side2
		focusRank, oppRank := resolved[2*i], resolved[2*i+1]
		if p.focusSide == 2 {
			focus, opp = opp, focus
			focusRank, oppRank = oppRank, focusRank
		}
		won := m.Winner == p.focusSide
		outcome := Classify(won, focusRank, oppRank, a.opts.TiePolicy)
		report.Outcomes[outcome]++

		row := models.NotableWinRow{
			TournamentID:     m.TournamentID,
			TournamentName:   m.TournamentName,
			TournamentGrade:  tournament.NormalizeGrade(m.Grade, a.opts.DefaultGrade),
			RoundName:        m.Round,
			Year:             m.Year,
			StartDate:        m.StartDate,
			EntityID:         focus.Entity,
			EntityName:       focus.Name,
			OpponentID:       opp.Entity,
			OpponentName:     opp.Name,
			WinFlag:          won,
			EntityRank:       models.FromNull(focusRank.Rank),
			EntityRankDate:   focusRank.MatchedDate,
			OpponentRank:     models.FromNull(oppRank.Rank),
			OpponentRankDate: oppRank.MatchedDate,
			Outcome:          string(outcome),
		}
		switch outcome {
		case NotableWin:
			row.NotableWin = Display(opp.Name, oppRank)
		case Loss:
			row.LostTo = Display(opp.Name, oppRank)
		}
		rows = append(rows, row)
	}

	log.Debug().
		Int("matches", len(matches)).
		Int("classified", len(rows)).
		Int("walkovers", report.Walkovers).
		Int("unmatched", report.Unmatched).
		Int("notable_wins", report.Outcomes[NotableWin]).
		Int("insufficient_data", report.Outcomes[InsufficientData]).
		Msg("Matches annotated")

	return rows, report, nil
}
