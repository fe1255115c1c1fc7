// Package cache provides the multi-tier cache used by the structure engine.
//
// The cache stores serialized structures and analyses keyed by content
// hashes. Three in-memory tiers with different eviction policies are
// composed by [MultiTier]:
//
//   - a small, fast tier evicting by recency ([NewMemoryTier], LRU)
//   - a mid tier evicting by frequency ([NewFrequencyTier], LFU)
//   - a large, slow tier with an adaptive recency/frequency balance and
//     optional predictive preload ([NewAdaptiveTier])
//
// Policy choice affects hit rate only, never correctness: every tier
// honors the same Get/Set/Delete contract. All tiers are safe for
// concurrent use; each key's insert and evict is atomic per tier.
//
// An optional Redis-backed tier ([NewRedisTier]) can replace the slow tier
// when several processes share one cache. Caching remains best-effort -
// nothing in the engine depends on an entry surviving.
package cache

import (
	"context"
	"time"
)

// Cache is the storage interface shared by tiers and compositions.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a time-to-live. A non-positive ttl stores
	// the value without expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Tier is a named cache layer inside a MultiTier.
type Tier interface {
	Cache

	// Name identifies the tier in hooks and diagnostics.
	Name() string
}

// Default time-to-live per cached artifact class.
const (
	// TTLStructure applies to generated spatial structures.
	TTLStructure = 1 * time.Hour

	// TTLAnalysis applies to input analyses. Analyses are cheaper to
	// recompute than structures and keyed by volatile content hashes.
	TTLAnalysis = 30 * time.Minute
)

// Eviction policy names used in configuration.
const (
	PolicyLRU      = "lru"
	PolicyLFU      = "lfu"
	PolicyAdaptive = "adaptive"
)

// TierConfig configures one cache tier.
type TierConfig struct {
	// MaxEntries caps the number of entries; 0 uses the tier default.
	MaxEntries int `toml:"max_entries"`

	// Policy is one of the Policy* constants.
	Policy string `toml:"policy"`

	// TTL overrides the per-call TTL when positive.
	TTL time.Duration `toml:"ttl"`

	// Preload enables predictive preload (adaptive tier only).
	Preload bool `toml:"preload"`
}

// Config configures the standard three-tier composition.
type Config struct {
	Fast TierConfig `toml:"fast"`
	Mid  TierConfig `toml:"mid"`
	Slow TierConfig `toml:"slow"`

	// RedisAddr, when set, replaces the slow tier with a Redis backend.
	RedisAddr string `toml:"redis_addr"`
}

// DefaultConfig returns the standard tier sizing.
func DefaultConfig() Config {
	return Config{
		Fast: TierConfig{MaxEntries: 32, Policy: PolicyLRU},
		Mid:  TierConfig{MaxEntries: 128, Policy: PolicyLFU},
		Slow: TierConfig{MaxEntries: 512, Policy: PolicyAdaptive, Preload: true},
	}
}

// NewFromConfig builds the standard MultiTier composition from a config.
func NewFromConfig(cfg Config) *MultiTier {
	fast := NewMemoryTier("fast", cfg.Fast.MaxEntries)
	mid := NewFrequencyTier("mid", cfg.Mid.MaxEntries)

	var slow Tier
	if cfg.RedisAddr != "" {
		slow = NewRedisTier("slow", cfg.RedisAddr)
	} else {
		slow = NewAdaptiveTier("slow", cfg.Slow.MaxEntries, cfg.Slow.Preload)
	}

	return NewMultiTier(fast, mid, slow)
}
