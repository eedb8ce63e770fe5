// Package tariff resolves the single applicable rate plan for a consumer
// classification at an instant.
package tariff

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"palika/internal/domain"
	"palika/internal/port"
)

// Resolver looks up tariff plans, consulting a short-TTL cache first when
// one is configured. The cache is never the source of truth: any cache
// error falls through to the repository.
type Resolver struct {
	repo  port.TariffRepository
	cache port.TariffCache
	log   *zap.Logger
}

// NewResolver creates a Resolver. cache may be nil.
func NewResolver(repo port.TariffRepository, cache port.TariffCache, log *zap.Logger) *Resolver {
	return &Resolver{repo: repo, cache: cache, log: log}
}

// Resolve returns the unique plan for the key whose effective range
// contains the instant. A zero instant means "now". When a pre-existing
// misconfiguration leaves more than one plan covering the instant, the
// most recent effective_from wins; write-time validation rejects new
// overlaps outright.
func (r *Resolver) Resolve(ctx context.Context, key port.TariffKey, at time.Time) (*domain.TariffPlan, error) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	cacheKey := cacheKeyFor(key, at)
	if r.cache != nil {
		plan, err := r.cache.Get(ctx, cacheKey)
		if err != nil {
			r.log.Warn("tariff cache get failed", zap.String("key", cacheKey), zap.Error(err))
		} else if plan != nil && plan.Covers(at) {
			return plan, nil
		}
	}

	plans, err := r.repo.FindApplicable(ctx, key, at)
	if err != nil {
		return nil, fmt.Errorf("tariff.Resolve: %w", err)
	}
	if len(plans) == 0 {
		return nil, domain.ErrNoApplicableTariff
	}
	if len(plans) > 1 {
		r.log.Warn("overlapping tariff plans for key, using most recent",
			zap.String("service_type", string(key.ServiceType)),
			zap.String("category", string(key.Category)),
			zap.String("zone", key.ZoneCode),
			zap.Int("matches", len(plans)))
	}
	plan := &plans[0]

	if r.cache != nil {
		if err := r.cache.Set(ctx, cacheKey, plan); err != nil {
			r.log.Warn("tariff cache set failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return plan, nil
}

func cacheKeyFor(key port.TariffKey, at time.Time) string {
	// Day granularity: plans are effective-dated, not intraday.
	return fmt.Sprintf("tariff:%s:%s:%s:%s",
		key.ServiceType, key.Category, key.ZoneCode, at.Format("2006-01-02"))
}
