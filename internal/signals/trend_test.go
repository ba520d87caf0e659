package signals

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhzhou/ashare-screener/internal/contracts"
	"github.com/mhzhou/ashare-screener/pkg/logger"
)

// risingSeries builds n daily bars with close rising linearly from first to
// last and a constant range volatility of volPct percent.
func risingSeries(end time.Time, n int, first, last, volPct float64) []contracts.Bar {
	bars := make([]contracts.Bar, 0, n)
	for i := 0; i < n; i++ {
		closePrice := first + (last-first)*float64(i)/float64(n-1)
		spread := closePrice * volPct / 100
		bars = append(bars, contracts.Bar{
			TSCode:    "600000.SH",
			TradeDate: end.AddDate(0, 0, i-n+1),
			Open:      closePrice,
			High:      closePrice + spread/2,
			Low:       closePrice - spread/2,
			Close:     closePrice,
		})
	}
	return bars
}

func TestTrendDetector_SpecScenario(t *testing.T) {
	// 60 bars, close 10 -> 14 (+40%), rising so MA5 > MA20, volatility 10%.
	end := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	provider := &fakeBars{bars: risingSeries(end, 60, 10, 14, 10)}
	d := NewTrendDetector(provider, DefaultTrendConfig(), logger.NewNop())

	match, ret, vol, err := d.Detect(context.Background(), "600000.SH", end)
	require.NoError(t, err)
	assert.True(t, match)
	assert.InDelta(t, 40.0, ret, 0.01)
	assert.InDelta(t, 10.0, vol, 0.01)
}

func TestTrendDetector_ShortSeriesNeverComputes(t *testing.T) {
	end := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	provider := &fakeBars{bars: risingSeries(end, 59, 10, 14, 10)}
	d := NewTrendDetector(provider, DefaultTrendConfig(), logger.NewNop())

	match, ret, vol, err := d.Detect(context.Background(), "600000.SH", end)
	require.NoError(t, err)
	assert.False(t, match)
	assert.Zero(t, ret, "partial statistics must not be computed")
	assert.Zero(t, vol)
}

func TestTrendDetector_RejectsLowReturn(t *testing.T) {
	end := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	provider := &fakeBars{bars: risingSeries(end, 60, 10, 12, 10)} // +20%
	d := NewTrendDetector(provider, DefaultTrendConfig(), logger.NewNop())

	match, ret, _, err := d.Detect(context.Background(), "600000.SH", end)
	require.NoError(t, err)
	assert.False(t, match)
	assert.InDelta(t, 20.0, ret, 0.01, "metrics are still reported")
}

func TestTrendDetector_RejectsHighVolatility(t *testing.T) {
	end := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	provider := &fakeBars{bars: risingSeries(end, 60, 10, 14, 30)}
	d := NewTrendDetector(provider, DefaultTrendConfig(), logger.NewNop())

	match, _, vol, err := d.Detect(context.Background(), "600000.SH", end)
	require.NoError(t, err)
	assert.False(t, match)
	assert.InDelta(t, 30.0, vol, 0.01)
}

func TestTrendDetector_RejectsFallingMA(t *testing.T) {
	// Rise sharply early then fall at the end: total return stays above the
	// threshold but the 5-day MA drops below the 20-day MA.
	end := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	bars := risingSeries(end, 60, 10, 15, 10)
	for i := 50; i < 60; i++ {
		drop := float64(i-49) * 0.15
		bars[i].Close = 15 - drop
		bars[i].Open = bars[i].Close
		bars[i].High = bars[i].Close * 1.05
		bars[i].Low = bars[i].Close * 0.95
	}
	d := NewTrendDetector(&fakeBars{bars: bars}, DefaultTrendConfig(), logger.NewNop())

	match, ret, _, err := d.Detect(context.Background(), "600000.SH", end)
	require.NoError(t, err)
	assert.False(t, match)
	assert.Greater(t, ret, 30.0)
}

func TestTrendDetector_ZeroFirstClose(t *testing.T) {
	end := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	bars := risingSeries(end, 60, 10, 14, 10)
	bars[0].Close = 0
	d := NewTrendDetector(&fakeBars{bars: bars}, DefaultTrendConfig(), logger.NewNop())

	match, ret, _, err := d.Detect(context.Background(), "600000.SH", end)
	require.NoError(t, err)
	assert.False(t, match)
	assert.Zero(t, ret, "zero first close must not divide")
}

func TestLastSMA(t *testing.T) {
	end := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	bars := risingSeries(end, 10, 1, 10, 0)

	assert.InDelta(t, 9.0, lastSMA(bars, 3), 1e-9) // (8+9+10)/3
	assert.Zero(t, lastSMA(bars, 20), "unfilled window is zero")
}
