package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/mhzhou/ashare-screener/internal/contracts"
	"github.com/mhzhou/ashare-screener/pkg/logger"
)

// Provider is the upstream market data API surface the gateway consumes.
// *tushare.Client satisfies it.
type Provider interface {
	StockBasic(ctx context.Context) ([]contracts.Instrument, error)
	Daily(ctx context.Context, codes []string, tradeDate, start, end time.Time) ([]contracts.Bar, error)
	TradeCal(ctx context.Context, start, end time.Time) ([]time.Time, error)
}

// BarCache is the durable request cache consulted before hitting upstream.
// *barcache.Cache satisfies it.
type BarCache interface {
	Get(key string, dest interface{}) (bool, error)
	Put(key string, value interface{}) error
}

// Gateway wraps the upstream provider: universe, latest quotes, trading
// calendar and per-symbol bar series, with client-side pacing and caching.
type Gateway struct {
	provider Provider
	cache    BarCache
	pacer    Pacer
	logger   *logger.Logger

	quoteBatchSize int
	now            func() time.Time
}

// NewGateway creates a gateway. The pacer spaces quote batches; cache may
// be nil to disable bar caching.
func NewGateway(provider Provider, cache BarCache, pacer Pacer, quoteBatchSize int, log *logger.Logger) *Gateway {
	if pacer == nil {
		pacer = NopPacer{}
	}
	return &Gateway{
		provider:       provider,
		cache:          cache,
		pacer:          pacer,
		logger:         log,
		quoteBatchSize: quoteBatchSize,
		now:            time.Now,
	}
}

// SetClock overrides the time source for tests.
func (g *Gateway) SetClock(now func() time.Time) {
	g.now = now
}

// FetchUniverse returns the full instrument list, no filtering. A failure
// here is fatal: nothing downstream can proceed without the universe.
func (g *Gateway) FetchUniverse(ctx context.Context) ([]contracts.Instrument, error) {
	instruments, err := g.provider.StockBasic(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch universe: %w", err)
	}

	g.logger.WithField("count", len(instruments)).Info("Fetched instrument universe")
	return instruments, nil
}

// FetchLatestQuotes returns the daily quote snapshot per instrument for the
// given trading day, batching requests to respect provider payload limits
// and pausing between batches.
func (g *Gateway) FetchLatestQuotes(ctx context.Context, codes []string, tradeDate time.Time) (map[string]contracts.QuoteSnapshot, error) {
	quotes := make(map[string]contracts.QuoteSnapshot, len(codes))

	for i := 0; i < len(codes); i += g.quoteBatchSize {
		end := i + g.quoteBatchSize
		if end > len(codes) {
			end = len(codes)
		}
		batch := codes[i:end]

		bars, err := g.provider.Daily(ctx, batch, tradeDate, time.Time{}, time.Time{})
		if err != nil {
			return nil, fmt.Errorf("fetch quotes batch %d: %w", i/g.quoteBatchSize+1, err)
		}

		for _, bar := range bars {
			quotes[bar.TSCode] = contracts.QuoteSnapshot{
				TSCode:    bar.TSCode,
				TradeDate: bar.TradeDate,
				Close:     bar.Close,
				PctChange: bar.PctChange,
				Volume:    bar.Volume,
				// Tushare reports amount in thousand CNY; display unit is 万元.
				Turnover: bar.Turnover / 10,
			}
		}

		if end < len(codes) {
			if err := g.pacer.Pause(ctx); err != nil {
				return nil, fmt.Errorf("quote pacing interrupted: %w", err)
			}
		}
	}

	g.logger.WithFields(map[string]interface{}{
		"requested": len(codes),
		"quoted":    len(quotes),
		"date":      tradeDate.Format("2006-01-02"),
	}).Info("Fetched latest quotes")

	return quotes, nil
}

// ResolveLatestTradingDay returns today when the market is open, otherwise
// the most recent open day within a 7-day lookback. On upstream failure it
// degrades to today with a warning.
func (g *Gateway) ResolveLatestTradingDay(ctx context.Context) time.Time {
	today := g.now().Truncate(24 * time.Hour)

	days, err := g.provider.TradeCal(ctx, today, today)
	if err != nil {
		g.logger.WithError(err).Warn("Trading calendar unavailable, assuming today")
		return today
	}
	if len(days) > 0 {
		return days[0]
	}

	// Not a trading day: look back one week.
	days, err = g.provider.TradeCal(ctx, today.AddDate(0, 0, -7), today)
	if err != nil || len(days) == 0 {
		if err != nil {
			g.logger.WithError(err).Warn("Trading calendar lookback failed, assuming today")
		}
		return today
	}

	latest := days[0]
	for _, d := range days[1:] {
		if d.After(latest) {
			latest = d
		}
	}
	return latest
}

// FetchBars returns the daily bar series for one instrument over
// [start, end], consulting the cache first and populating it on miss.
// An empty series is valid "no data", not an error.
func (g *Gateway) FetchBars(ctx context.Context, code string, start, end time.Time) ([]contracts.Bar, error) {
	key := fmt.Sprintf("daily:%s:%s:%s", code, start.Format("20060102"), end.Format("20060102"))

	if g.cache != nil {
		var cached []contracts.Bar
		found, err := g.cache.Get(key, &cached)
		if err != nil {
			g.logger.WithError(err).WithField("key", key).Warn("Cache read failed")
		} else if found {
			return cached, nil
		}
	}

	bars, err := g.provider.Daily(ctx, []string{code}, time.Time{}, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetch bars for %s: %w", code, err)
	}

	if g.cache != nil {
		if err := g.cache.Put(key, bars); err != nil {
			// Advisory: the run continues without caching this entry.
			g.logger.WithError(err).WithField("key", key).Warn("Cache write failed")
		}
	}

	return bars, nil
}
