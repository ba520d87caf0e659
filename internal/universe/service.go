package universe

import (
	"context"
	"fmt"
	"time"

	"github.com/mhzhou/ashare-screener/internal/contracts"
	"github.com/mhzhou/ashare-screener/pkg/logger"
)

const cacheKey = "qualified_universe"

// Gateway is the market data surface the service consumes.
type Gateway interface {
	FetchUniverse(ctx context.Context) ([]contracts.Instrument, error)
	FetchLatestQuotes(ctx context.Context, codes []string, tradeDate time.Time) (map[string]contracts.QuoteSnapshot, error)
	ResolveLatestTradingDay(ctx context.Context) time.Time
}

// Cache is the durable request cache for the qualified set.
type Cache interface {
	Get(key string, dest interface{}) (bool, error)
	Put(key string, value interface{}) error
}

// Service produces the qualified candidate set, serving it from cache when
// a fresh copy exists.
type Service struct {
	gateway Gateway
	cache   Cache
	config  Config
	logger  *logger.Logger
}

// NewService creates a universe service. cache may be nil to always rebuild.
func NewService(gateway Gateway, cache Cache, cfg Config, log *logger.Logger) *Service {
	return &Service{
		gateway: gateway,
		cache:   cache,
		config:  cfg,
		logger:  log,
	}
}

// QualifiedUniverse returns the candidate set that passed the static
// eligibility rules. A universe fetch failure is fatal to the caller.
func (s *Service) QualifiedUniverse(ctx context.Context) ([]contracts.Candidate, error) {
	if s.cache != nil {
		var cached []contracts.Candidate
		found, err := s.cache.Get(cacheKey, &cached)
		if err != nil {
			s.logger.WithError(err).Warn("Universe cache read failed")
		} else if found {
			s.logger.WithField("count", len(cached)).Info("Using cached qualified universe")
			return cached, nil
		}
	}

	instruments, err := s.gateway.FetchUniverse(ctx)
	if err != nil {
		return nil, fmt.Errorf("build qualified universe: %w", err)
	}

	tradeDate := s.gateway.ResolveLatestTradingDay(ctx)

	codes := make([]string, 0, len(instruments))
	for _, inst := range instruments {
		codes = append(codes, inst.TSCode)
	}

	quotes, err := s.gateway.FetchLatestQuotes(ctx, codes, tradeDate)
	if err != nil {
		return nil, fmt.Errorf("build qualified universe: %w", err)
	}

	candidates := Qualify(instruments, quotes, s.config)

	s.logger.WithFields(map[string]interface{}{
		"raw":       len(instruments),
		"qualified": len(candidates),
		"date":      tradeDate.Format("2006-01-02"),
	}).Info("Built qualified universe")

	if s.cache != nil {
		if err := s.cache.Put(cacheKey, candidates); err != nil {
			s.logger.WithError(err).Warn("Universe cache write failed")
		}
	}

	return candidates, nil
}
