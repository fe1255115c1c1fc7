package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/signkit/signspace/pkg/observability"
)

// DefaultMaxEntries is used when a tier is created with a non-positive cap.
const DefaultMaxEntries = 128

// memoryEntry is one stored value inside an in-memory tier.
type memoryEntry struct {
	key       string
	data      []byte
	expiresAt time.Time // zero = no expiration
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryTier is the small, fast tier: a bounded in-memory cache evicting
// the least-recently-used entry at capacity.
type MemoryTier struct {
	name string
	max  int

	mu      sync.Mutex
	entries map[string]*list.Element // key -> element holding *memoryEntry
	order   *list.List               // front = most recently used
}

// NewMemoryTier creates an LRU tier with the given entry cap.
func NewMemoryTier(name string, maxEntries int) *MemoryTier {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &MemoryTier{
		name:    name,
		max:     maxEntries,
		entries: make(map[string]*list.Element),
		order:   list.New(),
	}
}

// Name identifies the tier.
func (t *MemoryTier) Name() string { return t.name }

// Get retrieves a value and marks it most recently used.
func (t *MemoryTier) Get(ctx context.Context, key string) ([]byte, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	el, ok := t.entries[key]
	if !ok {
		return nil, false, nil
	}
	entry := el.Value.(*memoryEntry)
	if entry.expired(time.Now()) {
		t.remove(el)
		return nil, false, nil
	}
	t.order.MoveToFront(el)
	return entry.data, true, nil
}

// Set stores a value, evicting the least-recently-used entry at capacity.
func (t *MemoryTier) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry := &memoryEntry{key: key, data: data}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}

	if el, ok := t.entries[key]; ok {
		el.Value = entry
		t.order.MoveToFront(el)
		return nil
	}

	t.entries[key] = t.order.PushFront(entry)
	if t.order.Len() > t.max {
		oldest := t.order.Back()
		evicted := oldest.Value.(*memoryEntry)
		t.remove(oldest)
		observability.Cache().OnCacheEvict(ctx, t.name, evicted.key)
	}
	return nil
}

// Delete removes a value.
func (t *MemoryTier) Delete(ctx context.Context, key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if el, ok := t.entries[key]; ok {
		t.remove(el)
	}
	return nil
}

// Close drops all entries.
func (t *MemoryTier) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = make(map[string]*list.Element)
	t.order.Init()
	return nil
}

// Len returns the current entry count.
func (t *MemoryTier) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.order.Len()
}

// remove must be called with the mutex held.
func (t *MemoryTier) remove(el *list.Element) {
	entry := el.Value.(*memoryEntry)
	t.order.Remove(el)
	delete(t.entries, entry.key)
}

// Ensure MemoryTier implements Tier.
var _ Tier = (*MemoryTier)(nil)
