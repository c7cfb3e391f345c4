package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the ranking history cache",
	}
	cmd.AddCommand(cacheFlushCmd())
	return cmd
}

func cacheFlushCmd() *cobra.Command {
	var namespaces []string
	cmd := &cobra.Command{
		Use:   "flush",
		Short: "Drop cached ranking histories",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				if a.cache == nil {
					return errors.New("redis cache is not available")
				}
				for _, ns := range namespaces {
					n, err := a.cache.Invalidate(ctx, ns)
					if err != nil {
						return fmt.Errorf("failed to flush %s: %w", ns, err)
					}
					log.Info().Str("namespace", ns).Int("keys", n).Msg("Cache flushed")
				}
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&namespaces, "namespace", []string{"singles", "doubles"}, "Namespaces to flush")
	return cmd
}
