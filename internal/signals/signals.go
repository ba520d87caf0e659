// Package signals holds the time-series classifiers: the consecutive
// limit-up streak detector and the sustained uptrend detector. Both consume
// a symbol's daily bar series and return a boolean classification plus
// supporting metrics.
package signals

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/mhzhou/ashare-screener/internal/contracts"
)

// BarProvider supplies historical daily bars for one instrument.
// *marketdata.Gateway satisfies it.
type BarProvider interface {
	FetchBars(ctx context.Context, code string, start, end time.Time) ([]contracts.Bar, error)
}

// sortBarsDesc orders bars newest first.
func sortBarsDesc(bars []contracts.Bar) {
	sort.Slice(bars, func(i, j int) bool {
		return bars[i].TradeDate.After(bars[j].TradeDate)
	})
}

// sortBarsAsc orders bars oldest first.
func sortBarsAsc(bars []contracts.Bar) {
	sort.Slice(bars, func(i, j int) bool {
		return bars[i].TradeDate.Before(bars[j].TradeDate)
	})
}

// round2 rounds to two decimal places for reported metrics.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
