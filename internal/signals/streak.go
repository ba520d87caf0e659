package signals

import (
	"context"
	"fmt"
	"time"

	"github.com/mhzhou/ashare-screener/pkg/logger"
)

// StreakConfig parameterizes the consecutive limit-up detector.
type StreakConfig struct {
	LimitUpPct   float64 // daily pct change treated as limit-up
	RequiredDays int     // consecutive days needed to qualify
}

// StreakDetector classifies instruments on consecutive limit-up days.
type StreakDetector struct {
	bars   BarProvider
	config StreakConfig
	logger *logger.Logger
}

// NewStreakDetector creates a streak detector.
func NewStreakDetector(bars BarProvider, cfg StreakConfig, log *logger.Logger) *StreakDetector {
	return &StreakDetector{
		bars:   bars,
		config: cfg,
		logger: log,
	}
}

// Detect reports whether the instrument closed limit-up on each of the
// required most recent trading days ending at tradeDate, along with the
// observed streak length (capped at the required scan depth).
//
// Insufficient history is not an error: fewer bars than required days
// yields (false, 0).
func (d *StreakDetector) Detect(ctx context.Context, code string, tradeDate time.Time) (bool, int, error) {
	start := tradeDate.AddDate(0, 0, -(d.config.RequiredDays + 2))

	bars, err := d.bars.FetchBars(ctx, code, start, tradeDate)
	if err != nil {
		return false, 0, fmt.Errorf("streak check %s: %w", code, err)
	}

	if len(bars) < d.config.RequiredDays {
		return false, 0, nil
	}

	sortBarsDesc(bars)

	streak := 0
	for i := 0; i < d.config.RequiredDays && i < len(bars); i++ {
		if bars[i].PctChange < d.config.LimitUpPct {
			break
		}
		streak++
	}

	qualifies := streak >= d.config.RequiredDays

	d.logger.WithFields(map[string]interface{}{
		"code":      code,
		"streak":    streak,
		"qualifies": qualifies,
	}).Debug("Streak check completed")

	return qualifies, streak, nil
}
