// Command sportsviz builds the ranking visualization tables.
//
// Usage:
//
//	sportsviz run --job all
//	sportsviz run --job singles,doubles
//	sportsviz serve
//	sportsviz resolve --history history.csv --queries queries.csv --out resolved.csv
//	sportsviz cache flush --namespace singles
//	sportsviz version
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	setupLogger()

	root := &cobra.Command{
		Use:           "sportsviz",
		Short:         "Sports ranking ETL for the visualization layer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(runCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(resolveCmd())
	root.AddCommand(cacheCmd())
	root.AddCommand(versionCmd())

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

// setupLogger configures the zerolog logger from the process environment,
// before any .env file has been read.
func setupLogger() {
	configureLogger(os.Getenv("APP_ENV") == "development", os.Getenv("LOG_LEVEL"))
}

func configureLogger(development bool, lvl string) {
	// Pretty console logging in development
	if development {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
	}

	level := zerolog.InfoLevel
	if lvl != "" {
		parsedLevel, err := zerolog.ParseLevel(lvl)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)

	log.Debug().
		Str("level", level.String()).
		Msg("Logger initialized")
}
