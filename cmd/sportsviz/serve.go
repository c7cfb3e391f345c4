package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"sportsviz/etl/internal/metrics"
	"sportsviz/etl/internal/pipeline"
	"sportsviz/etl/internal/scheduler"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var jobs string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose metrics and rerun the pipeline on the nightly schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			selected, err := pipeline.ParseJobs(jobs)
			if err != nil {
				return err
			}
			return withApp(func(ctx context.Context, a *app) error {
				return serve(ctx, a, selected)
			})
		},
	}
	cmd.Flags().StringVar(&jobs, "job", "all", "Jobs to run on every refresh")
	return cmd
}

func serve(ctx context.Context, a *app, jobs []string) error {
	log.Info().Str("version", version).Msg("Starting sportsviz worker")

	var srv *http.Server
	if a.cfg.EnableMetrics {
		srv = startMetricsServer(a)
	}

	// Update system uptime and pool metrics
	startTime := time.Now()
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.SystemUptime.Set(time.Since(startTime).Seconds())
				a.db.RecordPoolStats()
			case <-ctx.Done():
				return
			}
		}
	}()

	sched := scheduler.NewScheduler(scheduler.Config{
		NightlyRefreshCron: a.cfg.NightlyRefreshCron,
		InitialRun:         a.cfg.InitialRunEnabled,
		Jobs:               jobs,
	}, a.pipeline)

	if a.cfg.EnableScheduler {
		if err := sched.Start(ctx); err != nil {
			return err
		}
	} else if a.cfg.InitialRunEnabled {
		if err := a.pipeline.Run(ctx, jobs); err != nil {
			log.Error().Err(err).Msg("Initial run failed, continuing anyway...")
		}
	}

	// Keep running until context is cancelled
	<-ctx.Done()
	log.Info().Msg("Received shutdown signal, gracefully shutting down...")

	if a.cfg.EnableScheduler {
		sched.Stop()
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Metrics server shutdown failed")
		}
	}

	log.Info().Msg("Worker shutdown complete")
	return nil
}

// startMetricsServer starts the Prometheus metrics HTTP server
func startMetricsServer(a *app) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "healthy", "database": "ok"}
		code := http.StatusOK
		if err := a.db.Health(r.Context()); err != nil {
			status["status"] = "unhealthy"
			status["database"] = err.Error()
			code = http.StatusServiceUnavailable
		}
		if a.cache != nil {
			status["cache"] = "ok"
			if err := a.cache.Health(r.Context()); err != nil {
				status["cache"] = err.Error()
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(status)
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.MetricsPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Int("port", a.cfg.MetricsPort).Msg("Starting metrics server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Metrics server failed")
		}
	}()

	return srv
}
