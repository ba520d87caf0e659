package signals

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhzhou/ashare-screener/internal/contracts"
	"github.com/mhzhou/ashare-screener/pkg/logger"
)

// fakeBars serves a fixed series regardless of the requested range.
type fakeBars struct {
	bars []contracts.Bar
	err  error
}

func (f *fakeBars) FetchBars(ctx context.Context, code string, start, end time.Time) ([]contracts.Bar, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]contracts.Bar, len(f.bars))
	copy(out, f.bars)
	return out, nil
}

// barsFromChanges builds a daily series ending at end, newest change first.
func barsFromChanges(end time.Time, pctChanges ...float64) []contracts.Bar {
	bars := make([]contracts.Bar, 0, len(pctChanges))
	for i, pct := range pctChanges {
		bars = append(bars, contracts.Bar{
			TSCode:    "600000.SH",
			TradeDate: end.AddDate(0, 0, -i),
			Close:     10,
			PctChange: pct,
		})
	}
	return bars
}

func TestStreakDetector_Detect(t *testing.T) {
	end := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		changes    []float64
		required   int
		wantMatch  bool
		wantStreak int
	}{
		{
			name:       "two limit-ups then a normal day",
			changes:    []float64{9.9, 9.8, 5.0},
			required:   2,
			wantMatch:  true,
			wantStreak: 2,
		},
		{
			name:       "streak broken on most recent day",
			changes:    []float64{5.0, 9.9, 9.8},
			required:   2,
			wantMatch:  false,
			wantStreak: 0,
		},
		{
			name:       "streak broken on second day",
			changes:    []float64{9.9, 5.0, 9.8},
			required:   2,
			wantMatch:  false,
			wantStreak: 1,
		},
		{
			name:       "threshold is inclusive",
			changes:    []float64{9.8, 9.8, 1.0},
			required:   2,
			wantMatch:  true,
			wantStreak: 2,
		},
		{
			name:       "insufficient history",
			changes:    []float64{9.9},
			required:   2,
			wantMatch:  false,
			wantStreak: 0,
		},
		{
			name:       "three required, only two limit-ups",
			changes:    []float64{9.9, 9.8, 5.0, 2.0},
			required:   3,
			wantMatch:  false,
			wantStreak: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeBars{bars: barsFromChanges(end, tt.changes...)}
			d := NewStreakDetector(provider, StreakConfig{
				LimitUpPct:   9.8,
				RequiredDays: tt.required,
			}, logger.NewNop())

			match, streak, err := d.Detect(context.Background(), "600000.SH", end)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMatch, match)
			assert.Equal(t, tt.wantStreak, streak)
		})
	}
}

func TestStreakDetector_Monotonic(t *testing.T) {
	// A run of N limit-up days qualifies for every required length k <= N,
	// with the reported streak capped at the scan depth k.
	end := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	const n = 5
	changes := make([]float64, n)
	for i := range changes {
		changes[i] = 9.9
	}
	provider := &fakeBars{bars: barsFromChanges(end, changes...)}

	for k := 1; k <= n; k++ {
		d := NewStreakDetector(provider, StreakConfig{
			LimitUpPct:   9.8,
			RequiredDays: k,
		}, logger.NewNop())

		match, streak, err := d.Detect(context.Background(), "600000.SH", end)
		require.NoError(t, err)
		assert.True(t, match, "required=%d must qualify", k)
		assert.Equal(t, k, streak, "streak caps at scan depth %d", k)
	}
}

func TestStreakDetector_EmptySeries(t *testing.T) {
	d := NewStreakDetector(&fakeBars{}, StreakConfig{LimitUpPct: 9.8, RequiredDays: 2}, logger.NewNop())

	match, streak, err := d.Detect(context.Background(), "600000.SH", time.Now())
	require.NoError(t, err, "empty series is insufficient data, not an error")
	assert.False(t, match)
	assert.Zero(t, streak)
}

func TestStreakDetector_FetchErrorPropagates(t *testing.T) {
	d := NewStreakDetector(&fakeBars{err: fmt.Errorf("upstream down")}, StreakConfig{LimitUpPct: 9.8, RequiredDays: 2}, logger.NewNop())

	_, _, err := d.Detect(context.Background(), "600000.SH", time.Now())
	assert.Error(t, err)
}
