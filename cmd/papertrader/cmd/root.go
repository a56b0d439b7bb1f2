package cmd

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "papertrader",
	Short: "A single-account paper trading simulator",
	Long: `Papertrader is a paper trading simulator for a single brokerage-style
account.

It provides tools for:
  - Creating accounts with CSV snapshot persistence and an audit log
  - Running the rise/fall threshold policy against live or recorded prices
  - Sampling live prices into monthly SQLite databases
  - Inspecting account state and historical valuations

Complete documentation is available at https://github.com/joelyuhas/papertrader`,
}

var log zerolog.Logger

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

var verbose bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	cobra.OnInitialize(func() {
		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			Level(level).
			With().Timestamp().Logger()
	})
}
