package main

import (
	"context"
	"fmt"
	"time"

	"sportsviz/etl/internal/export"
	"sportsviz/etl/internal/metrics"
	"sportsviz/etl/internal/models"
	"sportsviz/etl/internal/ranking"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func resolveCmd() *cobra.Command {
	var (
		historyPath string
		queriesPath string
		outPath     string
		modeName    string
		policyName  string
		workers     int
	)
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve point-in-time ranks from CSV files, without a database",
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := ranking.ParseMode(modeName)
			if err != nil {
				return err
			}
			policy, err := ranking.ParseDuplicatePolicy(policyName)
			if err != nil {
				return err
			}
			return resolveFiles(cmd.Context(), historyPath, queriesPath, outPath, mode, policy, workers)
		},
	}
	cmd.Flags().StringVar(&historyPath, "history", "", "CSV with entity_id, effective_date, rank_value")
	cmd.Flags().StringVar(&queriesPath, "queries", "", "CSV with entity_id, query_date and an optional mode")
	cmd.Flags().StringVar(&outPath, "out", "resolved.csv", "Output CSV")
	cmd.Flags().StringVar(&modeName, "mode", "on_or_before", "Mode for queries without one: on_or_before or strictly_before")
	cmd.Flags().StringVar(&policyName, "duplicates", "keep_last", "Same-day duplicate policy: keep_last, keep_best or keep_worst")
	cmd.Flags().IntVar(&workers, "workers", 4, "Parallel resolve workers")
	_ = cmd.MarkFlagRequired("history")
	_ = cmd.MarkFlagRequired("queries")
	return cmd
}

func resolveFiles(ctx context.Context, historyPath, queriesPath, outPath string, mode ranking.Mode, policy ranking.DuplicatePolicy, workers int) error {
	history, err := export.ReadHistory(historyPath)
	if err != nil {
		return err
	}
	queries, err := export.ReadQueries(queriesPath, mode)
	if err != nil {
		return err
	}

	start := time.Now()
	resolver := ranking.NewResolver(ranking.WithDuplicatePolicy(policy))
	report, err := resolver.Load(history)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", historyPath, err)
	}
	collapsed := 0
	for _, d := range report.Duplicates {
		collapsed += d.Collapsed
	}
	metrics.RecordLoad(report.Entities, collapsed, time.Since(start).Seconds())

	start = time.Now()
	answers, err := resolver.ResolveParallel(ctx, queries, workers)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", queriesPath, err)
	}

	rows := make([]models.ResolvedRankRow, len(answers))
	resolved := 0
	for i, a := range answers {
		rows[i] = models.NewResolvedRankRow(a, queries[i].Mode)
		if a.Resolved() {
			resolved++
		}
	}
	metrics.RecordResolve(resolved, len(answers)-resolved, time.Since(start).Seconds())

	if err := export.WriteResolved(outPath, rows); err != nil {
		return err
	}

	log.Info().
		Int("history_rows", report.Rows).
		Int("entities", report.Entities).
		Int("null_ranks", report.NullRanks).
		Int("queries", len(queries)).
		Int("resolved", resolved).
		Str("out", outPath).
		Msg("Ranks resolved")
	return nil
}
