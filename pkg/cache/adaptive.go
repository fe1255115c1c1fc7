package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/signkit/signspace/pkg/observability"
)

// Adaptive tier tuning.
const (
	// ghostCapacity caps the list of recently evicted keys tracked for
	// balance adjustment and preload prediction.
	ghostCapacity = 64

	// balanceStep is how far one ghost hit shifts the recency/frequency
	// balance toward recency.
	balanceStep = 0.05
)

// adaptiveEntry is one stored value inside an AdaptiveTier.
type adaptiveEntry struct {
	data       []byte
	expiresAt  time.Time // zero = no expiration
	hits       int
	lastAccess time.Time
}

func (e *adaptiveEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// AdaptiveTier is the slow tier: a bounded in-memory cache scoring entries
// by a weighted mix of recency and frequency. The balance self-adjusts:
// every hit on a "ghost" (a recently evicted key) means the eviction was
// premature, so the weight shifts toward recency. Ghosts also feed
// PredictedKeys, which callers may use to warm faster tiers.
type AdaptiveTier struct {
	name    string
	max     int
	preload bool

	mu      sync.Mutex
	entries map[string]*adaptiveEntry
	ghosts  []string // most recently evicted last
	balance float64  // 0 = pure frequency, 1 = pure recency
}

// NewAdaptiveTier creates an adaptive tier with the given entry cap.
func NewAdaptiveTier(name string, maxEntries int, preload bool) *AdaptiveTier {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &AdaptiveTier{
		name:    name,
		max:     maxEntries,
		preload: preload,
		entries: make(map[string]*adaptiveEntry),
		balance: 0.5,
	}
}

// Name identifies the tier.
func (t *AdaptiveTier) Name() string { return t.name }

// Get retrieves a value, updating its recency and frequency. A miss on a
// ghosted key shifts the eviction balance toward recency.
func (t *AdaptiveTier) Get(ctx context.Context, key string) ([]byte, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[key]
	if !ok {
		if t.forgetGhost(key) && t.balance < 1.0 {
			t.balance += balanceStep
			if t.balance > 1.0 {
				t.balance = 1.0
			}
		}
		return nil, false, nil
	}
	now := time.Now()
	if entry.expired(now) {
		delete(t.entries, key)
		return nil, false, nil
	}
	entry.hits++
	entry.lastAccess = now
	return entry.data, true, nil
}

// Set stores a value, evicting the lowest-scoring entry at capacity.
func (t *AdaptiveTier) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	if existing, ok := t.entries[key]; ok {
		existing.data = data
		existing.expiresAt = expiry(ttl)
		existing.lastAccess = now
		return nil
	}

	if len(t.entries) >= t.max {
		victim := t.victim(now)
		if victim != "" {
			delete(t.entries, victim)
			t.remember(victim)
			observability.Cache().OnCacheEvict(ctx, t.name, victim)
		}
	}

	t.entries[key] = &adaptiveEntry{
		data:       data,
		expiresAt:  expiry(ttl),
		lastAccess: now,
	}
	t.forgetGhost(key)
	return nil
}

// Delete removes a value without ghosting it.
func (t *AdaptiveTier) Delete(ctx context.Context, key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, key)
	return nil
}

// Close drops all entries and ghosts.
func (t *AdaptiveTier) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = make(map[string]*adaptiveEntry)
	t.ghosts = nil
	return nil
}

// Len returns the current entry count.
func (t *AdaptiveTier) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// PredictedKeys returns keys likely to be requested again soon: recently
// evicted ghosts, most recent first. Empty unless preload is enabled.
func (t *AdaptiveTier) PredictedKeys(limit int) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.preload || len(t.ghosts) == 0 || limit <= 0 {
		return nil
	}
	if limit > len(t.ghosts) {
		limit = len(t.ghosts)
	}
	keys := make([]string, 0, limit)
	for i := len(t.ghosts) - 1; i >= 0 && len(keys) < limit; i-- {
		keys = append(keys, t.ghosts[i])
	}
	return keys
}

// victim selects the entry with the lowest combined recency/frequency score.
// Keys break exact score ties so eviction stays deterministic. Must be
// called with the mutex held.
func (t *AdaptiveTier) victim(now time.Time) string {
	keys := make([]string, 0, len(t.entries))
	for key := range t.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var victim string
	var found bool
	var minScore float64
	for _, key := range keys {
		score := t.score(t.entries[key], now)
		if !found || score < minScore {
			victim, minScore, found = key, score, true
		}
	}
	return victim
}

// score combines normalized recency and frequency per the current balance.
func (t *AdaptiveTier) score(e *adaptiveEntry, now time.Time) float64 {
	age := now.Sub(e.lastAccess).Seconds()
	recency := 1.0 / (1.0 + age)
	frequency := float64(e.hits) / float64(e.hits+1)
	return t.balance*recency + (1-t.balance)*frequency
}

// remember records an evicted key in the ghost list. Must be called with the
// mutex held.
func (t *AdaptiveTier) remember(key string) {
	t.ghosts = append(t.ghosts, key)
	if len(t.ghosts) > ghostCapacity {
		t.ghosts = t.ghosts[len(t.ghosts)-ghostCapacity:]
	}
}

// forgetGhost removes a key from the ghost list, reporting whether it was
// present. Must be called with the mutex held.
func (t *AdaptiveTier) forgetGhost(key string) bool {
	for i, ghost := range t.ghosts {
		if ghost == key {
			t.ghosts = append(t.ghosts[:i], t.ghosts[i+1:]...)
			return true
		}
	}
	return false
}

// Ensure AdaptiveTier implements Tier.
var _ Tier = (*AdaptiveTier)(nil)
