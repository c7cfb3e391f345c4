package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"sportsviz/etl/internal/cache"
	"sportsviz/etl/internal/config"
	"sportsviz/etl/internal/export"
	"sportsviz/etl/internal/notable"
	"sportsviz/etl/internal/pipeline"
	"sportsviz/etl/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func runCmd() *cobra.Command {
	var jobs string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			selected, err := pipeline.ParseJobs(jobs)
			if err != nil {
				return err
			}
			return withApp(func(ctx context.Context, app *app) error {
				return app.pipeline.Run(ctx, selected)
			})
		},
	}
	cmd.Flags().StringVar(&jobs, "job", "all", "Jobs to run: all or a comma-separated list of "+fmt.Sprint(pipeline.Jobs))
	return cmd
}

// app holds the wired dependencies of a pipeline process.
type app struct {
	cfg      *config.Config
	focus    *config.Focus
	db       *repository.Database
	cache    *cache.RedisCache
	pipeline *pipeline.Pipeline
}

// withApp loads configuration, connects to the stores and hands the wired app
// to fn with a context that is cancelled on SIGINT/SIGTERM.
func withApp(fn func(ctx context.Context, app *app) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	// .env may have changed APP_ENV or LOG_LEVEL
	configureLogger(cfg.IsDevelopment(), cfg.LogLevel)
	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Msg("Configuration loaded")

	focus, err := config.LoadFocus(cfg.FocusFile)
	if err != nil {
		return err
	}
	log.Info().
		Int("singles_athletes", len(focus.SinglesAthletes)).
		Int("doubles_teams", len(focus.DoublesTeams)).
		Int("archery_athletes", len(focus.ArcheryAthletes)).
		Ints("years", focus.Years).
		Msg("Focus sets loaded")

	tiePolicy, err := notable.ParseTiePolicy(cfg.NotableTiePolicy)
	if err != nil {
		return err
	}

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	a := &app{cfg: cfg, focus: focus, db: db}

	deps := pipeline.Deps{
		Rankings: db.Rankings,
		Matches:  db.Matches,
		Shooting: db.Shooting,
		Focus:    focus,
	}

	if cfg.RedisEnabled {
		redisCache, err := cache.NewRedisCache(cache.Config{
			Host:     cfg.RedisHost,
			Port:     strconv.Itoa(cfg.RedisPort),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.HistoryTTL(),
		})
		if err != nil {
			log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
		} else {
			defer redisCache.Close()
			a.cache = redisCache
			deps.Cache = redisCache
		}
	}

	if cfg.WriteCSV {
		w, err := export.NewWriter(cfg.OutputDir)
		if err != nil {
			return err
		}
		deps.Sinks = append(deps.Sinks, w)
	}
	if cfg.WriteTable {
		deps.Sinks = append(deps.Sinks, db.Results)
	}

	a.pipeline = pipeline.New(deps, pipeline.Options{
		Mode:            cfg.ResolveMode,
		DuplicatePolicy: cfg.DuplicatePolicy,
		TiePolicy:       tiePolicy,
		Workers:         cfg.ResolveWorkers,
	})

	return fn(ctx, a)
}
