package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/joelyuhas/papertrader/account"
	"github.com/joelyuhas/papertrader/config"
	"github.com/joelyuhas/papertrader/market"
	"github.com/joelyuhas/papertrader/strategies"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the trading policy from a config file",
	Long: `Run the rise/fall trading policy using settings from a configuration file.

The config file specifies the account location, the price source, and the
policy parameters (ticker, thresholds, polling interval). The loop runs until
interrupted; account state is snapshotted after every trade and at the end of
each trading session.

Example:
  papertrader run -f examples/configs/basic.yaml`,
	RunE: runRun,
}

var runConfigPath string

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	interval, err := cfg.Policy.ParseInterval()
	if err != nil {
		return fmt.Errorf("parse interval: %w", err)
	}

	src, err := market.NewSource(cfg.Source)
	if err != nil {
		return fmt.Errorf("create price source: %w", err)
	}

	acct := account.New(cfg.Account.Number, cfg.Account.Dir, src, account.WithLogger(log))
	defer acct.Close()

	created, err := acct.CreateIfAbsent()
	if err != nil {
		return fmt.Errorf("open account: %w", err)
	}
	if !created {
		if err := acct.Reload(); err != nil {
			return fmt.Errorf("reload account: %w", err)
		}
	}

	log.Info().
		Str("account", acct.Number).
		Str("ticker", cfg.Policy.Ticker).
		Float64("cash", acct.Cash).
		Float64("rise_pct", cfg.Policy.RisePercent).
		Float64("fall_pct", cfg.Policy.FallPercent).
		Dur("interval", interval).
		Msg("starting policy loop")

	policy := &strategies.RiseFall{
		Account:     acct,
		Ticker:      cfg.Policy.Ticker,
		RisePercent: cfg.Policy.RisePercent,
		FallPercent: cfg.Policy.FallPercent,
		Log:         log,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = runLoop(ctx, cfg, acct, policy, interval)

	if perr := acct.PersistSnapshot(false); perr != nil {
		log.Error().Err(perr).Msg("final snapshot failed")
	}
	return err
}

// runLoop drives the policy on a fixed interval. When market-hours gating is
// enabled it skips closed-market cycles, writes the end-of-day snapshot on
// the open-to-closed transition, and optionally re-seeds daily extremes on
// the closed-to-open transition.
func runLoop(ctx context.Context, cfg *config.Config, acct *account.Account, policy *strategies.RiseFall, interval time.Duration) error {
	tick := time.NewTicker(interval)
	defer tick.Stop()

	inSession := market.InTradingHours(time.Now())
	for {
		var now time.Time
		select {
		case <-ctx.Done():
			return nil
		case now = <-tick.C:
		}

		if cfg.Policy.MarketHoursOnly {
			open := market.InTradingHours(now)
			if !open {
				if inSession {
					if err := acct.PersistSnapshot(true); err != nil {
						log.Error().Err(err).Msg("end-of-day snapshot failed")
					} else {
						log.Info().Msg("session closed, end-of-day snapshot written")
					}
				}
				inSession = false
				continue
			}
			if !inSession {
				log.Info().Msg("session open")
				if cfg.Policy.ResetDailyExtremes {
					for _, pos := range acct.Positions {
						pos.ResetSession()
					}
				}
			}
			inSession = true
		}

		acted, err := policy.Step(ctx)
		if err != nil {
			// Transient price failures should not kill the loop.
			log.Warn().Err(err).Msg("policy cycle failed")
			continue
		}
		if acted {
			log.Info().Float64("cash", acct.Cash).Float64("value", acct.Valuation()).Msg("policy acted")
		}
	}
}
