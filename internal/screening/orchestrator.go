package screening

import (
	"context"
	"fmt"
	"time"

	"github.com/mhzhou/ashare-screener/internal/contracts"
	"github.com/mhzhou/ashare-screener/pkg/logger"
)

// StreakDetector is the consecutive limit-up classifier.
type StreakDetector interface {
	Detect(ctx context.Context, code string, tradeDate time.Time) (bool, int, error)
}

// TrendDetector is the sustained uptrend classifier.
type TrendDetector interface {
	Detect(ctx context.Context, code string, tradeDate time.Time) (bool, float64, float64, error)
}

// Calendar resolves the reference trading day for a run.
type Calendar interface {
	ResolveLatestTradingDay(ctx context.Context) time.Time
}

// Pacer spaces screening batches; see marketdata.Pacer.
type Pacer interface {
	Pause(ctx context.Context) error
}

// ProgressFunc receives per-batch progress notifications.
type ProgressFunc func(contracts.Progress)

// Orchestrator runs the classification pipeline over the qualified
// candidate set in fixed-size batches. It is the error boundary for
// per-symbol work: one bad symbol never aborts a batch.
type Orchestrator struct {
	streak    StreakDetector
	trend     TrendDetector
	calendar  Calendar
	pacer     Pacer
	batchSize int
	logger    *logger.Logger
}

// NewOrchestrator creates an orchestrator. pacer may be nil to disable
// batch pacing.
func NewOrchestrator(streak StreakDetector, trend TrendDetector, calendar Calendar, pacer Pacer, batchSize int, log *logger.Logger) *Orchestrator {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &Orchestrator{
		streak:    streak,
		trend:     trend,
		calendar:  calendar,
		pacer:     pacer,
		batchSize: batchSize,
		logger:    log,
	}
}

// Run classifies every candidate under the requested mode, applies the
// optional board post-filter and deduplicates by symbol keeping the first
// occurrence. onProgress may be nil.
func (o *Orchestrator) Run(ctx context.Context, candidates []contracts.Candidate, mode contracts.Mode, boardFilter string, onProgress ProgressFunc) (*contracts.RunResult, error) {
	tradeDate := o.calendar.ResolveLatestTradingDay(ctx)

	result := &contracts.RunResult{
		TradeDate: tradeDate,
		Mode:      mode,
		Board:     boardFilter,
		Rows:      make([]contracts.ResultRow, 0),
		Skipped:   make(map[string]int),
	}

	total := len(candidates)
	totalBatches := (total + o.batchSize - 1) / o.batchSize

	o.logger.WithFields(map[string]interface{}{
		"candidates": total,
		"batches":    totalBatches,
		"mode":       mode,
		"date":       tradeDate.Format("2006-01-02"),
	}).Info("Screening run started")

	for batchIdx := 0; batchIdx*o.batchSize < total; batchIdx++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("screening run aborted: %w", err)
		}

		start := batchIdx * o.batchSize
		end := start + o.batchSize
		if end > total {
			end = total
		}

		for _, candidate := range candidates[start:end] {
			row, err := o.classify(ctx, candidate, mode, tradeDate)
			if err != nil {
				// Recoverable: log, count, and move on to the next symbol.
				o.logger.WithError(err).WithField("code", candidate.TSCode).Warn("Candidate skipped")
				result.Skipped[candidate.TSCode]++
				continue
			}
			if row != nil {
				result.Rows = append(result.Rows, *row)
			}
		}

		if onProgress != nil {
			onProgress(contracts.Progress{
				Batch:        batchIdx + 1,
				TotalBatches: totalBatches,
				Percent:      float64(end) / float64(total) * 100,
			})
		}

		if o.pacer != nil && end < total {
			if err := o.pacer.Pause(ctx); err != nil {
				return nil, fmt.Errorf("screening pacing interrupted: %w", err)
			}
		}
	}

	result.Rows = postFilter(result.Rows, boardFilter)
	result.Rows = dedupeBySymbol(result.Rows)

	o.logger.WithFields(map[string]interface{}{
		"rows":    len(result.Rows),
		"skipped": len(result.Skipped),
	}).Info("Screening run completed")

	return result, nil
}

// classify runs the detectors for one candidate in priority order: streak
// before trend, first match wins. Under mode all, a candidate matching
// neither is still emitted as unmatched. A nil row means the candidate
// produced no output for this mode.
func (o *Orchestrator) classify(ctx context.Context, candidate contracts.Candidate, mode contracts.Mode, tradeDate time.Time) (*contracts.ResultRow, error) {
	row := contracts.ResultRow{Candidate: candidate}

	if mode.WantsStreak() {
		match, days, err := o.streak.Detect(ctx, candidate.TSCode, tradeDate)
		if err != nil {
			return nil, err
		}
		row.StreakDays = days
		if match {
			row.Class = contracts.ClassStreak
			return &row, nil
		}
	}

	if mode.WantsTrend() {
		match, ret, vol, err := o.trend.Detect(ctx, candidate.TSCode, tradeDate)
		if err != nil {
			return nil, err
		}
		row.Return60 = ret
		row.Volatility20 = vol
		if match {
			row.Class = contracts.ClassTrend
			return &row, nil
		}
	}

	if mode == contracts.ModeAll {
		row.Class = contracts.ClassUnmatched
		return &row, nil
	}

	return nil, nil
}

// postFilter keeps rows on the requested board; empty filter keeps all.
func postFilter(rows []contracts.ResultRow, board string) []contracts.ResultRow {
	if board == "" {
		return rows
	}

	filtered := rows[:0]
	for _, row := range rows {
		if row.Board == board {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

// dedupeBySymbol keeps the first occurrence of each display symbol.
func dedupeBySymbol(rows []contracts.ResultRow) []contracts.ResultRow {
	seen := make(map[string]bool, len(rows))
	out := rows[:0]
	for _, row := range rows {
		if seen[row.Symbol] {
			continue
		}
		seen[row.Symbol] = true
		out = append(out, row)
	}
	return out
}
