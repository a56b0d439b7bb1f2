// Package observer runs the background sampling process. One sampler fetches
// prices for a set of tickers on a cron cadence and appends them to the
// shared price store, so every trading process reads the store instead of
// hammering the feed with its own calls.
package observer

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/joelyuhas/papertrader/market"
)

// DefaultSchedule samples every five minutes.
const DefaultSchedule = "@every 5m"

// Sampler owns the write side of the price store.
type Sampler struct {
	db      *market.PriceDB
	fetch   market.PriceSource
	tickers []string

	// MarketHoursOnly skips sampling outside the regular session.
	MarketHoursOnly bool
	Log             zerolog.Logger

	now func() time.Time
}

func NewSampler(db *market.PriceDB, fetch market.PriceSource, tickers []string) *Sampler {
	return &Sampler{
		db:              db,
		fetch:           fetch,
		tickers:         tickers,
		MarketHoursOnly: true,
		Log:             zerolog.Nop(),
		now:             time.Now,
	}
}

// SampleOnce fetches and records one price per ticker. Individual ticker
// failures are logged and skipped so one bad symbol cannot starve the rest;
// the first error is returned after the full pass.
func (s *Sampler) SampleOnce(ctx context.Context) error {
	if s.MarketHoursOnly && !market.InTradingHours(s.now()) {
		s.Log.Debug().Msg("outside trading hours, skipping sample")
		return nil
	}

	var firstErr error
	for _, ticker := range s.tickers {
		price, err := s.fetch.GetPrice(ctx, ticker)
		if err != nil {
			s.Log.Warn().Str("ticker", ticker).Err(err).Msg("sample fetch failed")
			if firstErr == nil {
				firstErr = fmt.Errorf("sample %s: %w", ticker, err)
			}
			continue
		}
		if err := s.db.Write(ticker, price, s.now()); err != nil {
			s.Log.Error().Str("ticker", ticker).Err(err).Msg("sample write failed")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		s.Log.Info().Str("ticker", ticker).Float64("price", price).Msg("sampled")
	}
	return firstErr
}

// Run samples on the given cron schedule until ctx is cancelled.
func (s *Sampler) Run(ctx context.Context, schedule string) error {
	if schedule == "" {
		schedule = DefaultSchedule
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if err := s.SampleOnce(ctx); err != nil {
			s.Log.Warn().Err(err).Msg("sampling pass had failures")
		}
	})
	if err != nil {
		return fmt.Errorf("bad sample schedule %q: %w", schedule, err)
	}

	s.Log.Info().Str("schedule", schedule).Strs("tickers", s.tickers).Msg("observer started")
	c.Start()
	<-ctx.Done()

	stop := c.Stop()
	<-stop.Done()
	return ctx.Err()
}
