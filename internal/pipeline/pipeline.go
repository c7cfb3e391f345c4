// Package pipeline runs the ETL jobs: load source rows, attach point-in-time
// ranks, derive the visualization tables and hand them to every sink.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"sportsviz/etl/internal/cache"
	"sportsviz/etl/internal/config"
	"sportsviz/etl/internal/metrics"
	"sportsviz/etl/internal/models"
	"sportsviz/etl/internal/notable"
	"sportsviz/etl/internal/ranking"
	"sportsviz/etl/internal/tournament"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Job names.
const (
	JobSingles     = "singles"
	JobDoubles     = "doubles"
	JobFinishes    = "finishes"
	JobProgression = "progression"
	JobArchery     = "archery"
	JobTournaments = "tournaments"

	JobHeadToHead          = "head_to_head"
	JobArcheryCompetitions = "archery_competitions"
	JobShooting            = "shooting"
)

// Jobs lists every job in run order.
var Jobs = []string{
	JobSingles, JobDoubles, JobFinishes, JobProgression, JobArchery, JobTournaments,
	JobHeadToHead, JobArcheryCompetitions, JobShooting,
}

// ParseJobs accepts "all" or a comma-separated list of job names.
func ParseJobs(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return slices.Clone(Jobs), nil
	}

	var jobs []string
	for _, name := range strings.Split(s, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if !slices.Contains(Jobs, name) {
			return nil, fmt.Errorf("unknown job: %s", name)
		}
		if !slices.Contains(jobs, name) {
			jobs = append(jobs, name)
		}
	}
	return jobs, nil
}

// RankingSource reads ranking graphs.
type RankingSource interface {
	LatestSinglesDate(ctx context.Context) (ranking.Date, error)
	LatestDoublesDate(ctx context.Context) (ranking.Date, error)
	SinglesHistory(ctx context.Context, categories []int, entities []ranking.EntityID) ([]ranking.Snapshot, error)
	DoublesHistory(ctx context.Context, entities []ranking.EntityID) ([]ranking.Snapshot, error)
	ListSinglesProgression(ctx context.Context, athletes []int, categories []int) ([]models.RankingRow, error)
	ListDoublesProgression(ctx context.Context, pairs []config.TeamPair) ([]models.RankingRow, error)
	ListArcheryRankings(ctx context.Context, athletes []int) ([]models.ArcheryRankingRow, error)
	ListArcheryCompetitionRankings(ctx context.Context, athletes []int) ([]models.ArcheryCompetitionRow, error)
}

// MatchSource reads matches, draw positions and tournaments.
type MatchSource interface {
	ListSinglesMatches(ctx context.Context, athletes []int) ([]models.MatchRow, error)
	ListDoublesMatches(ctx context.Context, athletes []int) ([]models.MatchRow, error)
	ListFinishes(ctx context.Context, athletes []int) ([]models.FinishRow, error)
	ListTournaments(ctx context.Context) ([]models.TournamentRow, error)
	ListHeadToHeadMatches(ctx context.Context, athletes []int) ([]models.HeadToHeadMatchRow, error)
}

// ShootingSource reads shooting results.
type ShootingSource interface {
	ListResults(ctx context.Context, athletes []string, fromYear int) ([]models.ShootingResultRow, error)
	ListQualifications(ctx context.Context, competitionTypes []string, fromYear int) ([]models.ShootingResultRow, error)
}

// Sink receives job results. *export.Writer and *repository.ResultRepository
// implement it.
type Sink interface {
	Name() string
	WriteNotableWins(ctx context.Context, discipline string, rows []models.NotableWinRow) error
	WriteTournamentSummaries(ctx context.Context, discipline string, rows []models.TournamentSummaryRow) error
	WriteProgression(ctx context.Context, discipline string, rows []models.ProgressionRow) error
	WriteFinishTallies(ctx context.Context, discipline string, year int, tallies []tournament.Tally) error
	WriteArcheryMonthEnd(ctx context.Context, rows []models.ArcheryMonthEndRow) error
	WriteTournamentDetails(ctx context.Context, rows []models.TournamentDetailRow) error
	WriteHeadToHead(ctx context.Context, rows []models.HeadToHeadRow) error
	WriteArcheryCompetitionRanking(ctx context.Context, rows []models.ArcheryCompetitionRankingRow) error
	WriteShootingResults(ctx context.Context, rows []models.ShootingResultVizRow) error
	WriteShootingRankDistribution(ctx context.Context, rows []models.ShootingRankDistributionRow) error
}

// Options tunes rank resolution and classification.
type Options struct {
	Mode            ranking.Mode
	DuplicatePolicy ranking.DuplicatePolicy
	TiePolicy       notable.TiePolicy
	Workers         int
}

// Deps wires a Pipeline. Cache and Shooting may be nil.
type Deps struct {
	Rankings RankingSource
	Matches  MatchSource
	Shooting ShootingSource
	Cache    cache.Store
	Sinks    []Sink
	Focus    *config.Focus
}

// Pipeline runs jobs against its sources and sinks.
type Pipeline struct {
	rankings RankingSource
	matches  MatchSource
	shooting ShootingSource
	cache    cache.Store
	sinks    []Sink
	focus    *config.Focus
	opts     Options
}

// New creates a pipeline.
func New(deps Deps, opts Options) *Pipeline {
	focus := deps.Focus
	if focus == nil {
		focus = config.DefaultFocus()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Pipeline{
		rankings: deps.Rankings,
		matches:  deps.Matches,
		shooting: deps.Shooting,
		cache:    deps.Cache,
		sinks:    deps.Sinks,
		focus:    focus,
		opts:     opts,
	}
}

// Run executes jobs in order under a fresh run ID. A failing job is logged and
// does not stop the others; the joined errors are returned.
func (p *Pipeline) Run(ctx context.Context, jobs []string) error {
	runID := uuid.NewString()
	logger := log.With().Str("run_id", runID).Logger()
	ctx = logger.WithContext(ctx)

	logger.Info().Strs("jobs", jobs).Int("sinks", len(p.sinks)).Msg("Pipeline run starting")
	start := time.Now()

	var errs []error
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		jobStart := time.Now()
		err := p.runJob(ctx, job)
		status := "success"
		if err != nil {
			status = "error"
			metrics.RecordError("pipeline", job)
			logger.Error().Err(err).Str("job", job).Msg("Job failed")
			errs = append(errs, fmt.Errorf("%s: %w", job, err))
		} else {
			logger.Info().Str("job", job).Dur("duration", time.Since(jobStart)).Msg("Job complete")
		}
		metrics.RecordJob(job, status, time.Since(jobStart).Seconds())
	}

	if len(errs) > 0 {
		logger.Warn().Int("failed", len(errs)).Dur("duration", time.Since(start)).Msg("Pipeline run finished with errors")
		return errors.Join(errs...)
	}

	metrics.RecordRunSuccess()
	logger.Info().Dur("duration", time.Since(start)).Msg("Pipeline run complete")
	return nil
}

func (p *Pipeline) runJob(ctx context.Context, job string) error {
	switch job {
	case JobSingles:
		return p.runNotable(ctx, singles)
	case JobDoubles:
		return p.runNotable(ctx, doubles)
	case JobFinishes:
		return p.runFinishes(ctx)
	case JobProgression:
		return p.runProgression(ctx)
	case JobArchery:
		return p.runArchery(ctx)
	case JobTournaments:
		return p.runTournaments(ctx)
	case JobHeadToHead:
		return p.runHeadToHead(ctx)
	case JobArcheryCompetitions:
		return p.runArcheryCompetitions(ctx)
	case JobShooting:
		return p.runShooting(ctx)
	default:
		return fmt.Errorf("unknown job: %s", job)
	}
}

// each hands the same result to every sink, stopping at the first failure.
func (p *Pipeline) each(write func(Sink) error) error {
	for _, s := range p.sinks {
		if err := write(s); err != nil {
			return fmt.Errorf("failed to write to %s sink: %w", s.Name(), err)
		}
	}
	return nil
}
