package marketdata

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces out batched upstream requests to respect provider rate
// limits. Implementations block in Pause between batches.
type Pacer interface {
	Pause(ctx context.Context) error
}

// IntervalPacer enforces a fixed minimum delay between batches.
type IntervalPacer struct {
	limiter *rate.Limiter
}

// NewIntervalPacer creates a pacer that allows one batch per delay interval.
func NewIntervalPacer(delay time.Duration) *IntervalPacer {
	return &IntervalPacer{
		limiter: rate.NewLimiter(rate.Every(delay), 1),
	}
}

// Pause blocks until the next batch is allowed or the context is done.
func (p *IntervalPacer) Pause(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

// NopPacer never waits. Used in tests.
type NopPacer struct{}

// Pause returns immediately.
func (NopPacer) Pause(ctx context.Context) error {
	return ctx.Err()
}
