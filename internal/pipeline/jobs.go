package pipeline

import (
	"context"
	"time"

	"sportsviz/etl/internal/models"
	"sportsviz/etl/internal/notable"
	"sportsviz/etl/internal/progression"
	"sportsviz/etl/internal/ranking"
	"sportsviz/etl/internal/shooting"
	"sportsviz/etl/internal/tournament"

	"github.com/rs/zerolog/log"
)

// runFinishes writes one finish tally table per discipline and report year.
func (p *Pipeline) runFinishes(ctx context.Context) error {
	doublesAthletes, err := playersOf(p.focus.DoublesEntities())
	if err != nil {
		return err
	}
	athletes := map[string][]int{
		singles: p.focus.SinglesAthletes,
		doubles: doublesAthletes,
	}

	for _, discipline := range []string{singles, doubles} {
		ids := athletes[discipline]
		if len(ids) == 0 {
			log.Ctx(ctx).Warn().Str("discipline", discipline).Msg("No focus athletes configured, skipping finishes")
			continue
		}

		finishes, err := p.matches.ListFinishes(ctx, ids)
		if err != nil {
			return err
		}
		tallies := tournament.TallyFinishes(finishes, p.focus.Years, p.focus.DefaultGrade)

		for _, year := range p.focus.Years {
			var perYear []tournament.Tally
			for _, t := range tallies {
				if t.Year == year {
					perYear = append(perYear, t)
				}
			}
			err := p.each(func(s Sink) error {
				return s.WriteFinishTallies(ctx, discipline, year, perYear)
			})
			if err != nil {
				return err
			}
		}

		log.Ctx(ctx).Info().
			Str("discipline", discipline).
			Int("finishes", len(finishes)).
			Int("tallies", len(tallies)).
			Msg("Tournament finishes tallied")
	}
	return nil
}

// runProgression writes the ranking progression of the focus athletes and
// teams for the report years.
func (p *Pipeline) runProgression(ctx context.Context) error {
	singlesRows, err := p.rankings.ListSinglesProgression(ctx, p.focus.SinglesAthletes, p.focus.RankingCategories)
	if err != nil {
		return err
	}
	doublesRows, err := p.rankings.ListDoublesProgression(ctx, p.focus.DoublesTeams)
	if err != nil {
		return err
	}

	for _, d := range []struct {
		discipline string
		rows       []models.RankingRow
	}{
		{singles, singlesRows},
		{doubles, doublesRows},
	} {
		out := progression.FilterYears(progression.Build(d.rows), p.focus.Years)
		err := p.each(func(s Sink) error {
			return s.WriteProgression(ctx, d.discipline, out)
		})
		if err != nil {
			return err
		}
		log.Ctx(ctx).Info().Str("discipline", d.discipline).Int("rows", len(out)).Msg("Ranking progression built")
	}
	return nil
}

// runArchery writes each archer's last ranking of the snapshot month per
// report year.
func (p *Pipeline) runArchery(ctx context.Context) error {
	rows, err := p.rankings.ListArcheryRankings(ctx, p.focus.ArcheryAthletes)
	if err != nil {
		return err
	}

	out, err := progression.MonthEnd(ctx, rows, time.Month(p.focus.SnapshotMonth), p.focus.Years,
		ranking.WithDuplicatePolicy(p.opts.DuplicatePolicy))
	if err != nil {
		return err
	}

	log.Ctx(ctx).Info().Int("history", len(rows)).Int("rows", len(out)).Msg("Archery month-end rankings resolved")
	return p.each(func(s Sink) error {
		return s.WriteArcheryMonthEnd(ctx, out)
	})
}

// runTournaments writes every tournament with its parsed date range.
func (p *Pipeline) runTournaments(ctx context.Context) error {
	rows, err := p.matches.ListTournaments(ctx)
	if err != nil {
		return err
	}

	out := tournament.Details(rows, p.focus.DefaultGrade)
	log.Ctx(ctx).Info().Int("tournaments", len(out)).Msg("Tournament details built")
	return p.each(func(s Sink) error {
		return s.WriteTournamentDetails(ctx, out)
	})
}

// runHeadToHead writes the past meetings of the focus athletes, each seen
// from the focus athlete's side.
func (p *Pipeline) runHeadToHead(ctx context.Context) error {
	athletes := p.focus.HeadToHeadAthletes()
	if len(athletes) == 0 {
		log.Ctx(ctx).Warn().Msg("No focus athletes configured, skipping head-to-head")
		return nil
	}

	rows, err := p.matches.ListHeadToHeadMatches(ctx, athletes)
	if err != nil {
		return err
	}

	out := notable.HeadToHead(rows, athletes)
	log.Ctx(ctx).Info().Int("meetings", len(rows)).Int("rows", len(out)).Msg("Head-to-head records built")
	return p.each(func(s Sink) error {
		return s.WriteHeadToHead(ctx, out)
	})
}

// runArcheryCompetitions writes each archer's rank in every competition.
func (p *Pipeline) runArcheryCompetitions(ctx context.Context) error {
	rows, err := p.rankings.ListArcheryCompetitionRankings(ctx, p.focus.ArcheryAthletes)
	if err != nil {
		return err
	}

	out := progression.CompetitionRanking(rows)
	log.Ctx(ctx).Info().Int("rows", len(out)).Msg("Archery competition rankings built")
	return p.each(func(s Sink) error {
		return s.WriteArcheryCompetitionRanking(ctx, out)
	})
}

// runShooting writes the shooting results of the focus athletes with their
// event's qualification band, and the rank category counts.
func (p *Pipeline) runShooting(ctx context.Context) error {
	if p.shooting == nil || len(p.focus.ShootingAthletes) == 0 {
		log.Ctx(ctx).Warn().Msg("No shooting source or athletes configured, skipping shooting")
		return nil
	}

	rows, err := p.shooting.ListResults(ctx, p.focus.ShootingAthletes, p.focus.ShootingFromYear)
	if err != nil {
		return err
	}
	quals, err := p.shooting.ListQualifications(ctx, p.focus.ShootingCompetitionTypes, p.focus.ShootingFromYear)
	if err != nil {
		return err
	}

	bands := shooting.QualificationBands(quals)
	results := shooting.Results(rows, bands)
	dist := shooting.Distribution(results)

	log.Ctx(ctx).Info().
		Int("rows", len(rows)).
		Int("qualifications", len(quals)).
		Int("events", len(bands)).
		Int("results", len(results)).
		Msg("Shooting results built")
	return p.each(func(s Sink) error {
		if err := s.WriteShootingResults(ctx, results); err != nil {
			return err
		}
		return s.WriteShootingRankDistribution(ctx, dist)
	})
}
