package signals

import (
	"context"
	"fmt"
	"time"

	"github.com/mhzhou/ashare-screener/internal/contracts"
	"github.com/mhzhou/ashare-screener/pkg/logger"
)

// TrendConfig parameterizes the sustained uptrend detector.
type TrendConfig struct {
	TrendDays  int     // window, calendar days
	MinReturn  float64 // minimum window return, percent
	MaxAvgVol  float64 // maximum average 20-day volatility, percent
	FastMADays int     // short moving average window
	SlowMADays int     // long moving average window
	VolAvgDays int     // bars averaged for the volatility metric
}

// DefaultTrendConfig mirrors the standard screening rules.
func DefaultTrendConfig() TrendConfig {
	return TrendConfig{
		TrendDays:  60,
		MinReturn:  30,
		MaxAvgVol:  25,
		FastMADays: 5,
		SlowMADays: 20,
		VolAvgDays: 20,
	}
}

// TrendDetector classifies instruments on a sustained uptrend: window
// return above threshold, fast MA above slow MA, and bounded volatility.
type TrendDetector struct {
	bars   BarProvider
	config TrendConfig
	logger *logger.Logger
}

// NewTrendDetector creates a trend detector.
func NewTrendDetector(bars BarProvider, cfg TrendConfig, log *logger.Logger) *TrendDetector {
	return &TrendDetector{
		bars:   bars,
		config: cfg,
		logger: log,
	}
}

// Detect returns (qualifies, window return %, average volatility %), both
// metrics rounded to two decimals. Fewer than TrendDays bars never computes
// partial statistics: it returns (false, 0, 0).
func (d *TrendDetector) Detect(ctx context.Context, code string, tradeDate time.Time) (bool, float64, float64, error) {
	start := tradeDate.AddDate(0, 0, -d.config.TrendDays)

	bars, err := d.bars.FetchBars(ctx, code, start, tradeDate)
	if err != nil {
		return false, 0, 0, fmt.Errorf("trend check %s: %w", code, err)
	}

	if len(bars) < d.config.TrendDays {
		return false, 0, 0, nil
	}

	sortBarsAsc(bars)

	firstClose := bars[0].Close
	lastClose := bars[len(bars)-1].Close

	var totalReturn float64
	if firstClose != 0 {
		totalReturn = (lastClose - firstClose) / firstClose * 100
	}

	fastMA := lastSMA(bars, d.config.FastMADays)
	slowMA := lastSMA(bars, d.config.SlowMADays)
	avgVol := avgVolatility(bars, d.config.VolAvgDays)

	qualifies := totalReturn >= d.config.MinReturn &&
		fastMA > slowMA &&
		avgVol <= d.config.MaxAvgVol

	d.logger.WithFields(map[string]interface{}{
		"code":       code,
		"return_pct": totalReturn,
		"fast_ma":    fastMA,
		"slow_ma":    slowMA,
		"avg_vol":    avgVol,
		"qualifies":  qualifies,
	}).Debug("Trend check completed")

	return qualifies, round2(totalReturn), round2(avgVol), nil
}

// lastSMA returns the simple moving average of close over the final window
// bars, or 0 while the window has not filled.
func lastSMA(bars []contracts.Bar, window int) float64 {
	if window <= 0 || len(bars) < window {
		return 0
	}

	var sum float64
	for _, bar := range bars[len(bars)-window:] {
		sum += bar.Close
	}
	return sum / float64(window)
}

// avgVolatility averages the per-bar range volatility (high-low over open,
// percent) across the final window bars. Bars with a zero open count as 0.
func avgVolatility(bars []contracts.Bar, window int) float64 {
	if window <= 0 || len(bars) == 0 {
		return 0
	}
	if len(bars) < window {
		window = len(bars)
	}

	var sum float64
	for _, bar := range bars[len(bars)-window:] {
		if bar.Open != 0 {
			sum += (bar.High - bar.Low) / bar.Open * 100
		}
	}
	return sum / float64(window)
}
