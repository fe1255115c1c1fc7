// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers can register
// hooks at startup to receive events about structure generation, input
// analysis, and cache operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach avoids import cycles (hooks are registered by main, not by
// libraries) and keeps the core engine free of observability frameworks.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetEngineHooks(&myEngineHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Engine().OnGenerateStart(ctx, region, tag)
//	// ... generate structure ...
//	observability.Engine().OnGenerateComplete(ctx, region, tag, zones, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Engine Hooks
// =============================================================================

// EngineHooks receives events from the structure engine.
type EngineHooks interface {
	// Generation events
	OnGenerateStart(ctx context.Context, region, contextTag string)
	OnGenerateComplete(ctx context.Context, region, contextTag string, zoneCount int, duration time.Duration, err error)

	// Analysis events
	OnAnalyzeStart(ctx context.Context, inputSize int)
	OnAnalyzeComplete(ctx context.Context, componentCount int, duration time.Duration, err error)

	// Validation events
	OnValidateComplete(ctx context.Context, score float64, valid bool)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a hit on the named tier.
	OnCacheHit(ctx context.Context, tier, key string)

	// OnCacheMiss records a miss across all tiers.
	OnCacheMiss(ctx context.Context, key string)

	// OnCacheSet records a write-through of size bytes.
	OnCacheSet(ctx context.Context, key string, size int)

	// OnCacheEvict records an eviction from the named tier.
	OnCacheEvict(ctx context.Context, tier, key string)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEngineHooks is a no-op implementation of EngineHooks.
type NoopEngineHooks struct{}

func (NoopEngineHooks) OnGenerateStart(context.Context, string, string) {}
func (NoopEngineHooks) OnGenerateComplete(context.Context, string, string, int, time.Duration, error) {
}
func (NoopEngineHooks) OnAnalyzeStart(context.Context, int)                          {}
func (NoopEngineHooks) OnAnalyzeComplete(context.Context, int, time.Duration, error) {}
func (NoopEngineHooks) OnValidateComplete(context.Context, float64, bool)            {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string, string)   {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)          {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int)      {}
func (NoopCacheHooks) OnCacheEvict(context.Context, string, string) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	engineHooks EngineHooks = NoopEngineHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	hooksMu     sync.RWMutex
)

// SetEngineHooks registers custom engine hooks.
// This should be called once at application startup before any engine operations.
func SetEngineHooks(h EngineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		engineHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Engine returns the registered engine hooks.
func Engine() EngineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return engineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	engineHooks = NoopEngineHooks{}
	cacheHooks = NoopCacheHooks{}
}
