package pipeline

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"sportsviz/etl/internal/cache"
	"sportsviz/etl/internal/metrics"
	"sportsviz/etl/internal/models"
	"sportsviz/etl/internal/notable"
	"sportsviz/etl/internal/ranking"
	"sportsviz/etl/internal/tournament"

	"github.com/rs/zerolog/log"
)

const (
	singles = "singles"
	doubles = "doubles"
)

// runNotable classifies every match of the discipline's focus entities and
// writes the match rows and the per-tournament summary.
func (p *Pipeline) runNotable(ctx context.Context, discipline string) error {
	lg := log.Ctx(ctx).With().Str("discipline", discipline).Logger()

	focus := p.focus.SinglesEntities()
	if discipline == doubles {
		focus = p.focus.DoublesEntities()
	}
	if len(focus) == 0 {
		lg.Warn().Msg("No focus entities configured, skipping")
		return nil
	}

	athletes, err := playersOf(focus)
	if err != nil {
		return err
	}

	var rows []models.MatchRow
	if discipline == singles {
		rows, err = p.matches.ListSinglesMatches(ctx, athletes)
	} else {
		rows, err = p.matches.ListDoublesMatches(ctx, athletes)
	}
	if err != nil {
		return err
	}

	matches, err := p.buildMatches(discipline, rows, focus)
	if err != nil {
		return err
	}
	lg.Info().Int("rows", len(rows)).Int("matches", len(matches)).Msg("Matches loaded")

	resolver, err := p.loadResolver(ctx, discipline, matchEntities(matches))
	if err != nil {
		return err
	}

	annotator := notable.NewAnnotator(&meteredResolver{resolver: resolver}, notable.Options{
		Mode:         p.opts.Mode,
		TiePolicy:    p.opts.TiePolicy,
		Workers:      p.opts.Workers,
		DefaultGrade: p.focus.DefaultGrade,
	})
	classified, report, err := annotator.Annotate(ctx, matches)
	if err != nil {
		return err
	}
	for outcome, n := range report.Outcomes {
		metrics.RecordOutcome(discipline, string(outcome), n)
	}
	lg.Info().
		Int("classified", len(classified)).
		Int("notable_wins", report.Outcomes[notable.NotableWin]).
		Int("insufficient_data", report.Outcomes[notable.InsufficientData]).
		Int("walkovers", report.Walkovers).
		Int("unmatched", report.Unmatched).
		Msg("Matches classified")

	summaries := notable.Summarize(classified, p.focus.DefaultGrade)

	return p.each(func(s Sink) error {
		if err := s.WriteNotableWins(ctx, discipline, classified); err != nil {
			return err
		}
		return s.WriteTournamentSummaries(ctx, discipline, summaries)
	})
}

// buildMatches turns source rows into matches seen from the focus side. Rows
// outside the report years are skipped. Doubles matches are listed once per
// focus partner and are deduplicated here. A tournament date that does not
// parse fails the job.
func (p *Pipeline) buildMatches(discipline string, rows []models.MatchRow, focus []ranking.EntityID) ([]notable.Match, error) {
	isFocus := make(map[ranking.EntityID]bool, len(focus))
	for _, e := range focus {
		isFocus[e] = true
	}

	type key struct {
		tournament int
		round      string
		side1      ranking.EntityID
		side2      ranking.EntityID
		focus      ranking.EntityID
	}
	seen := make(map[key]bool, len(rows))
	out := make([]notable.Match, 0, len(rows))

	for i, r := range rows {
		if !p.focus.HasYear(r.Year) {
			continue
		}
		if r.IsDoubles() != (discipline == doubles) {
			continue
		}

		id1, name1 := r.Side1()
		id2, name2 := r.Side2()
		var own ranking.EntityID
		switch r.AthleteID {
		case r.Team1Player1ID, r.Team1Player2ID:
			own = id1
		case r.Team2Player1ID, r.Team2Player2ID:
			own = id2
		default:
			continue
		}
		if !isFocus[own] {
			continue
		}

		k := key{tournament: r.TournamentID, round: r.Round, side1: id1, side2: id2, focus: own}
		if seen[k] {
			continue
		}
		seen[k] = true

		start, _, err := tournament.ParseDateRange(r.DateText, r.Year)
		if err != nil {
			var de *ranking.DataError
			if errors.As(err, &de) {
				de.Row = i
				de.Entity = own
			}
			return nil, fmt.Errorf("failed to parse date of tournament %d: %w", r.TournamentID, err)
		}

		out = append(out, notable.Match{
			TournamentID:   r.TournamentID,
			TournamentName: r.TournamentName,
			Grade:          r.Grade,
			Round:          r.Round,
			Year:           r.Year,
			StartDate:      start,
			Focus:          own,
			Side1:          notable.Side{Entity: id1, Name: name1},
			Side2:          notable.Side{Entity: id2, Name: name2},
			Winner:         r.Winner,
		})
	}
	return out, nil
}

// loadResolver fetches the histories of entities, through the cache when one
// is configured, and indexes them. The cache namespace carries the singles
// ranking categories and the latest ranking date, so a different category
// set or new upstream rankings bypass stale entries.
func (p *Pipeline) loadResolver(ctx context.Context, discipline string, entities []ranking.EntityID) (*ranking.Resolver, error) {
	latest := p.rankings.LatestSinglesDate
	source := cache.HistorySourceFunc(func(ctx context.Context, entities []ranking.EntityID) ([]ranking.Snapshot, error) {
		return p.rankings.SinglesHistory(ctx, p.focus.RankingCategories, entities)
	})
	if discipline == doubles {
		latest = p.rankings.LatestDoublesDate
		source = p.rankings.DoublesHistory
	}

	namespace := historyNamespace(discipline, p.focus.RankingCategories)
	if d, err := latest(ctx); err == nil {
		namespace += ":" + d.String()
	} else {
		log.Ctx(ctx).Warn().Err(err).Str("discipline", discipline).Msg("Latest ranking date unavailable")
	}

	history, err := cache.NewReadThrough(p.cache, source, namespace).History(ctx, entities)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resolver := ranking.NewResolver(ranking.WithDuplicatePolicy(p.opts.DuplicatePolicy))
	report, err := resolver.Load(history)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s ranking history: %w", discipline, err)
	}
	collapsed := 0
	for _, d := range report.Duplicates {
		collapsed += d.Collapsed
	}
	metrics.RecordLoad(report.Entities, collapsed, time.Since(start).Seconds())

	return resolver, nil
}

// historyNamespace names the cache namespace of a discipline's histories.
// Singles histories depend on the ranking categories, which are sorted so the
// configured order does not matter.
func historyNamespace(discipline string, categories []int) string {
	if discipline != singles {
		return discipline
	}
	sorted := slices.Clone(categories)
	slices.Sort(sorted)
	parts := make([]string, len(sorted))
	for i, c := range sorted {
		parts[i] = strconv.Itoa(c)
	}
	return discipline + ":" + strings.Join(parts, ",")
}

// meteredResolver records lookup counts and latency around a resolver.
type meteredResolver struct {
	resolver *ranking.Resolver
}

func (m *meteredResolver) ResolveParallel(ctx context.Context, queries []ranking.Query, workers int) ([]ranking.Resolved, error) {
	start := time.Now()
	out, err := m.resolver.ResolveParallel(ctx, queries, workers)
	if err != nil {
		return nil, err
	}
	resolved := 0
	for _, r := range out {
		if r.Resolved() {
			resolved++
		}
	}
	metrics.RecordResolve(resolved, len(out)-resolved, time.Since(start).Seconds())
	return out, nil
}

func matchEntities(matches []notable.Match) []ranking.EntityID {
	seen := make(map[ranking.EntityID]bool)
	var out []ranking.EntityID
	for _, m := range matches {
		for _, e := range []ranking.EntityID{m.Side1.Entity, m.Side2.Entity} {
			if !seen[e] {
				seen[e] = true
				out = append(out, e)
			}
		}
	}
	return out
}

func playersOf(entities []ranking.EntityID) ([]int, error) {
	seen := make(map[int]bool)
	var out []int
	for _, e := range entities {
		players, err := e.Players()
		if err != nil {
			return nil, err
		}
		for _, id := range players {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out, nil
}
