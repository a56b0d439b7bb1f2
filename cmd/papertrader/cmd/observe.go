package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joelyuhas/papertrader/market"
	"github.com/joelyuhas/papertrader/observer"
	"github.com/spf13/cobra"
)

var observeCmd = &cobra.Command{
	Use:   "observe",
	Short: "Sample live prices into monthly SQLite databases",
	Long: `Poll live prices for a set of tickers on a cron schedule and append
each sample to a per-ticker, per-month SQLite database. Sampling is skipped
outside regular trading hours unless --always is given.

The databases feed the 'observer' price source, which lets the trading
policy run against locally recorded prices instead of the live feed.

Example:
  papertrader observe --tickers VTI,QQQ --db-dir ./stockdbs --schedule "@every 5m"`,
	RunE: runObserve,
}

var (
	observeTickers  string
	observeDBDir    string
	observeSchedule string
	observeAlways   bool
)

func init() {
	rootCmd.AddCommand(observeCmd)

	observeCmd.Flags().StringVarP(&observeTickers, "tickers", "t", "", "comma-separated tickers to sample (required)")
	observeCmd.Flags().StringVarP(&observeDBDir, "db-dir", "d", "stockdbs", "directory for price databases")
	observeCmd.Flags().StringVarP(&observeSchedule, "schedule", "s", observer.DefaultSchedule, "cron schedule for sampling")
	observeCmd.Flags().BoolVar(&observeAlways, "always", false, "sample outside trading hours too")
	observeCmd.MarkFlagRequired("tickers")
}

func runObserve(cmd *cobra.Command, args []string) error {
	tickers := strings.Split(observeTickers, ",")
	for i, t := range tickers {
		tickers[i] = strings.ToUpper(strings.TrimSpace(t))
	}

	db := market.NewPriceDB(observeDBDir)
	s := observer.NewSampler(db, market.NewDirectSource(), tickers)
	s.MarketHoursOnly = !observeAlways
	s.Log = log

	log.Info().
		Strs("tickers", tickers).
		Str("db_dir", observeDBDir).
		Str("schedule", observeSchedule).
		Msg("starting price observer")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := s.Run(ctx, observeSchedule); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run sampler: %w", err)
	}
	return nil
}
