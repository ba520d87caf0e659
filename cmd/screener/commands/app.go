package commands

import (
	"context"
	"fmt"

	"github.com/mhzhou/ashare-screener/internal/barcache"
	"github.com/mhzhou/ashare-screener/internal/external/tushare"
	"github.com/mhzhou/ashare-screener/internal/marketdata"
	"github.com/mhzhou/ashare-screener/internal/screening"
	"github.com/mhzhou/ashare-screener/internal/signals"
	"github.com/mhzhou/ashare-screener/internal/universe"
	"github.com/mhzhou/ashare-screener/pkg/config"
	"github.com/mhzhou/ashare-screener/pkg/database"
	"github.com/mhzhou/ashare-screener/pkg/httputil"
	"github.com/mhzhou/ashare-screener/pkg/logger"
)

// app bundles the wired pipeline for CLI commands.
type app struct {
	cfg    *config.Config
	logger *logger.Logger
	cache  *barcache.Cache
	db     *database.DB // nil when run history is disabled
	runner *screening.Runner
}

// newApp loads config and wires the full screening pipeline. The Tushare
// token is verified up front: an authentication failure is fatal.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
		cfg.LogFormat = "console"
	}

	log := logger.New(cfg)

	httpClient := httputil.NewWithTimeout(log, cfg.Tushare.Timeout)
	ts := tushare.NewClient(httpClient, log, cfg.Tushare.Token, cfg.Tushare.BaseURL)

	if err := ts.Ping(ctx); err != nil {
		log.Error("Tushare authentication failed. Check the token, network connectivity and account rate limits.")
		return nil, err
	}
	log.Info("Tushare authentication verified")

	cache, err := barcache.Open(cfg.Cache.Path, cfg.Cache.TTL, log)
	if err != nil {
		return nil, fmt.Errorf("open bar cache: %w", err)
	}

	gateway := marketdata.NewGateway(
		ts, cache,
		marketdata.NewIntervalPacer(cfg.Screen.QuoteBatchDelay),
		cfg.Screen.QuoteBatchSize,
		log,
	)

	universeSvc := universe.NewService(gateway, cache, universe.Config{
		ExcludeBoards: cfg.Screen.ExcludeBoards,
		MinPrice:      cfg.Screen.MinPrice,
	}, log)

	streak := signals.NewStreakDetector(gateway, signals.StreakConfig{
		LimitUpPct:   cfg.Screen.LimitUpPct,
		RequiredDays: cfg.Screen.StreakDays,
	}, log)

	trendCfg := signals.DefaultTrendConfig()
	trendCfg.TrendDays = cfg.Screen.TrendDays
	trendCfg.MinReturn = cfg.Screen.TrendUpPct
	trendCfg.MaxAvgVol = cfg.Screen.TrendVolPct
	trend := signals.NewTrendDetector(gateway, trendCfg, log)

	orchestrator := screening.NewOrchestrator(
		streak, trend, gateway,
		marketdata.NewIntervalPacer(cfg.Screen.BatchDelay),
		cfg.Screen.BatchSize,
		log,
	)

	var db *database.DB
	var repo *screening.Repository
	if cfg.Database.Enabled() {
		db, err = database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect run-history database: %w", err)
		}
		repo = screening.NewRepository(db.Pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("prepare run-history schema: %w", err)
		}
	}

	runner := screening.NewRunner(universeSvc, orchestrator, repo, log)

	return &app{
		cfg:    cfg,
		logger: log,
		cache:  cache,
		db:     db,
		runner: runner,
	}, nil
}

// close releases the app's resources.
func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.cache != nil {
		a.cache.Close()
	}
}
