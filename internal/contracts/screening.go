package contracts

import (
	"fmt"
	"time"
)

// Classification labels one screened instrument. Detectors are tried in a
// fixed priority order (streak before trend) and the first match wins.
type Classification string

const (
	ClassStreak    Classification = "streak"    // consecutive limit-up
	ClassTrend     Classification = "trend"     // sustained uptrend
	ClassUnmatched Classification = "unmatched" // mode-all rows matching neither
)

// Mode selects which classifications a screening run computes.
type Mode string

const (
	ModeAll    Mode = "all"
	ModeStreak Mode = "streak"
	ModeTrend  Mode = "trend"
)

// ParseMode converts a CLI/API string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAll, ModeStreak, ModeTrend:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown mode %q (valid: all, streak, trend)", s)
	}
}

// WantsStreak reports whether the mode requires the streak check.
func (m Mode) WantsStreak() bool {
	return m == ModeAll || m == ModeStreak
}

// WantsTrend reports whether the mode requires the trend check.
func (m Mode) WantsTrend() bool {
	return m == ModeAll || m == ModeTrend
}

// ResultRow is one classified instrument in the final result table.
// Metric fields not produced by the matching detector stay at zero and
// render as empty in exports.
type ResultRow struct {
	Candidate
	Class        Classification `json:"class"`
	StreakDays   int            `json:"streak_days"`
	Return60     float64        `json:"return_60d_pct"`
	Volatility20 float64        `json:"volatility_20d_pct"`
}

// RunResult is the aggregate of one screening run.
type RunResult struct {
	TradeDate time.Time      `json:"trade_date"`
	Mode      Mode           `json:"mode"`
	Board     string         `json:"board,omitempty"`
	Rows      []ResultRow    `json:"rows"`
	Skipped   map[string]int `json:"skipped,omitempty"` // reason -> count
}

// Progress is the per-batch progress notification delivered to callers.
type Progress struct {
	Batch        int     `json:"batch"`
	TotalBatches int     `json:"total_batches"`
	Percent      float64 `json:"percent"`
}
