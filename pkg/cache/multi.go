package cache

import (
	"context"
	"errors"
	"time"

	"github.com/signkit/signspace/pkg/observability"
)

// MultiTier composes cache tiers ordered fastest first. Reads probe tiers
// in order and promote hits into every faster tier; writes go through to
// all tiers. Tier errors on reads are swallowed so a degraded slow tier
// (e.g. an unreachable Redis backend) never fails a lookup.
type MultiTier struct {
	tiers []Tier
}

// NewMultiTier composes tiers ordered fastest first.
func NewMultiTier(tiers ...Tier) *MultiTier {
	return &MultiTier{tiers: tiers}
}

// Get probes tiers in order. A hit in a slower tier is promoted into every
// faster tier before returning.
func (m *MultiTier) Get(ctx context.Context, key string) ([]byte, bool, error) {
	for i, tier := range m.tiers {
		data, ok, err := tier.Get(ctx, key)
		if err != nil || !ok {
			continue
		}
		observability.Cache().OnCacheHit(ctx, tier.Name(), key)
		for j := 0; j < i; j++ {
			_ = m.tiers[j].Set(ctx, key, data, 0)
		}
		return data, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, key)
	return nil, false, nil
}

// Set writes through to all tiers. The first error is returned but slower
// tiers are still attempted.
func (m *MultiTier) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	var firstErr error
	for _, tier := range m.tiers {
		if err := tier.Set(ctx, key, data, ttl); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		observability.Cache().OnCacheSet(ctx, key, len(data))
	}
	return firstErr
}

// Delete removes the key from all tiers.
func (m *MultiTier) Delete(ctx context.Context, key string) error {
	var errs []error
	for _, tier := range m.tiers {
		errs = append(errs, tier.Delete(ctx, key))
	}
	return errors.Join(errs...)
}

// Close closes all tiers.
func (m *MultiTier) Close() error {
	var errs []error
	for _, tier := range m.tiers {
		errs = append(errs, tier.Close())
	}
	return errors.Join(errs...)
}

// Tiers returns the composed tiers, fastest first.
func (m *MultiTier) Tiers() []Tier {
	return m.tiers
}

// Warm promotes predicted keys from adaptive tiers into the fastest tier.
// Only keys still resolvable through Get are promoted; unknown predictions
// are skipped silently.
func (m *MultiTier) Warm(ctx context.Context, limit int) int {
	warmed := 0
	for _, tier := range m.tiers {
		adaptive, ok := tier.(*AdaptiveTier)
		if !ok {
			continue
		}
		for _, key := range adaptive.PredictedKeys(limit) {
			if _, hit, err := m.Get(ctx, key); err == nil && hit {
				warmed++
			}
		}
	}
	return warmed
}

// Ensure MultiTier implements Cache.
var _ Cache = (*MultiTier)(nil)
