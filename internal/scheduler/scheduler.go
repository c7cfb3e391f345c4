package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Runner runs pipeline jobs. *pipeline.Pipeline satisfies it.
type Runner interface {
	Run(ctx context.Context, jobs []string) error
}

// Config holds the scheduler settings.
type Config struct {
	// NightlyRefreshCron is a standard 5-field cron expression.
	NightlyRefreshCron string
	// InitialRun runs the jobs once right after Start.
	InitialRun bool
	Jobs       []string
}

// Scheduler reruns the pipeline on a cron schedule. A run that is still going
// when the next one is due makes the next one skip.
type Scheduler struct {
	cfg    Config
	runner Runner
	cron   *cron.Cron
	wg     sync.WaitGroup
}

// NewScheduler creates a new scheduler instance
func NewScheduler(cfg Config, runner Runner) *Scheduler {
	logger := cronLogger{log.Logger}
	return &Scheduler{
		cfg:    cfg,
		runner: runner,
		cron: cron.New(cron.WithLogger(logger), cron.WithChain(
			cron.Recover(logger),
			cron.SkipIfStillRunning(logger),
		)),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	if _, err := s.cron.AddFunc(s.cfg.NightlyRefreshCron, func() {
		log.Info().Msg("Running nightly refresh...")
		s.run(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule nightly refresh: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.cfg.NightlyRefreshCron).
		Strs("jobs", s.cfg.Jobs).
		Msg("Nightly refresh scheduled")

	if s.cfg.InitialRun {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			log.Info().Msg("Running initial refresh...")
			s.run(ctx)
		}()
	}

	return nil
}

// Stop stops the scheduler and waits for a running refresh to return.
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	s.wg.Wait()

	log.Info().Msg("Scheduler stopped")
}

// Next returns the time of the next scheduled refresh.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *Scheduler) run(ctx context.Context) {
	if err := s.runner.Run(ctx, s.cfg.Jobs); err != nil {
		log.Error().Err(err).Msg("Scheduled refresh failed")
		return
	}
	log.Info().Time("next", s.Next()).Msg("Scheduled refresh complete")
}

// cronLogger routes cron's own messages through zerolog.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
