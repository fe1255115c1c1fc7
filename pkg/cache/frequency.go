package cache

import (
	"context"
	"sync"
	"time"

	"github.com/signkit/signspace/pkg/observability"
)

// freqEntry is one stored value inside a FrequencyTier.
type freqEntry struct {
	data      []byte
	expiresAt time.Time
	hits      int
	seq       uint64 // insertion order, breaks frequency ties
}

// FrequencyTier is the mid tier: a bounded in-memory cache evicting the
// least-frequently-used entry at capacity. Frequency ties are broken by
// insertion order (oldest first) so eviction stays deterministic.
type FrequencyTier struct {
	name string
	max  int

	mu      sync.Mutex
	entries map[string]*freqEntry
	nextSeq uint64
}

// NewFrequencyTier creates an LFU tier with the given entry cap.
func NewFrequencyTier(name string, maxEntries int) *FrequencyTier {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &FrequencyTier{
		name:    name,
		max:     maxEntries,
		entries: make(map[string]*freqEntry),
	}
}

// Name identifies the tier.
func (t *FrequencyTier) Name() string { return t.name }

// Get retrieves a value and counts the hit.
func (t *FrequencyTier) Get(ctx context.Context, key string) ([]byte, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[key]
	if !ok {
		return nil, false, nil
	}
	if entry.expired(time.Now()) {
		delete(t.entries, key)
		return nil, false, nil
	}
	entry.hits++
	return entry.data, true, nil
}

// Set stores a value, evicting the least-frequently-used entry at capacity.
func (t *FrequencyTier) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, ok := t.entries[key]; ok {
		existing.data = data
		existing.expiresAt = expiry(ttl)
		return nil
	}

	if len(t.entries) >= t.max {
		victim := t.victim()
		if victim != "" {
			delete(t.entries, victim)
			observability.Cache().OnCacheEvict(ctx, t.name, victim)
		}
	}

	t.entries[key] = &freqEntry{
		data:      data,
		expiresAt: expiry(ttl),
		seq:       t.nextSeq,
	}
	t.nextSeq++
	return nil
}

// Delete removes a value.
func (t *FrequencyTier) Delete(ctx context.Context, key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, key)
	return nil
}

// Close drops all entries.
func (t *FrequencyTier) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = make(map[string]*freqEntry)
	return nil
}

// Len returns the current entry count.
func (t *FrequencyTier) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// victim selects the least-frequently-used key, preferring older entries on
// ties. Must be called with the mutex held.
func (t *FrequencyTier) victim() string {
	var victim string
	var found bool
	var minHits int
	var minSeq uint64
	for key, entry := range t.entries {
		if !found || entry.hits < minHits || (entry.hits == minHits && entry.seq < minSeq) {
			victim, minHits, minSeq, found = key, entry.hits, entry.seq, true
		}
	}
	return victim
}

func (e *freqEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

func expiry(ttl time.Duration) time.Time {
	if ttl > 0 {
		return time.Now().Add(ttl)
	}
	return time.Time{}
}

// Ensure FrequencyTier implements Tier.
var _ Tier = (*FrequencyTier)(nil)
