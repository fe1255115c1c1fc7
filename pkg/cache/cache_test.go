package cache

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/signkit/signspace/pkg/observability"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("NullCache.Get should always miss with nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("hash length = %d, want 64", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	// Structure keys vary with every context field
	base := k.StructureKey("france", 0.5, "conversational")
	if base != k.StructureKey("france", 0.5, "conversational") {
		t.Error("StructureKey should be deterministic")
	}
	if base == k.StructureKey("quebec", 0.5, "conversational") {
		t.Error("different regions should produce different keys")
	}
	if base == k.StructureKey("france", 0.9, "conversational") {
		t.Error("different formality should produce different keys")
	}
	if base == k.StructureKey("france", 0.5, "narrative") {
		t.Error("different tags should produce different keys")
	}

	if got := k.AnalysisKey("abc123"); got != "analysis:abc123" {
		t.Errorf("AnalysisKey unexpected: %s", got)
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "session:1:")

	key := scoped.AnalysisKey("abc")
	if key != "session:1:analysis:abc" {
		t.Errorf("ScopedKeyer AnalysisKey unexpected: %s", key)
	}

	sk := scoped.StructureKey("france", 0.5, "conversational")
	if len(sk) < 10 || sk[:10] != "session:1:" {
		t.Errorf("ScopedKeyer StructureKey should be prefixed: %s", sk)
	}

	// Nil inner falls back to the default keyer
	fallback := NewScopedKeyer(nil, "p:")
	if fallback.AnalysisKey("x") != "p:analysis:x" {
		t.Errorf("nil inner unexpected: %s", fallback.AnalysisKey("x"))
	}
}

func TestMemoryTierLRU(t *testing.T) {
	ctx := context.Background()
	tier := NewMemoryTier("fast", 2)
	defer tier.Close()

	tier.Set(ctx, "a", []byte("1"), 0)
	tier.Set(ctx, "b", []byte("2"), 0)

	// Touch "a" so "b" becomes least recently used
	if _, hit, _ := tier.Get(ctx, "a"); !hit {
		t.Fatal("a should be present")
	}

	tier.Set(ctx, "c", []byte("3"), 0)
	if _, hit, _ := tier.Get(ctx, "b"); hit {
		t.Error("b should have been evicted as least recently used")
	}
	if _, hit, _ := tier.Get(ctx, "a"); !hit {
		t.Error("a should survive the eviction")
	}
	if tier.Len() != 2 {
		t.Errorf("Len = %d, want 2", tier.Len())
	}
}

func TestMemoryTierExpiry(t *testing.T) {
	ctx := context.Background()
	tier := NewMemoryTier("fast", 8)
	defer tier.Close()

	tier.Set(ctx, "short", []byte("1"), time.Nanosecond)
	time.Sleep(time.Millisecond)
	if _, hit, _ := tier.Get(ctx, "short"); hit {
		t.Error("expired entry should miss")
	}

	tier.Set(ctx, "forever", []byte("2"), 0)
	if _, hit, _ := tier.Get(ctx, "forever"); !hit {
		t.Error("zero ttl should mean no expiration")
	}
}

func TestFrequencyTierLFU(t *testing.T) {
	ctx := context.Background()
	tier := NewFrequencyTier("mid", 2)
	defer tier.Close()

	tier.Set(ctx, "popular", []byte("1"), 0)
	tier.Set(ctx, "cold", []byte("2"), 0)
	tier.Get(ctx, "popular")
	tier.Get(ctx, "popular")

	tier.Set(ctx, "new", []byte("3"), 0)
	if _, hit, _ := tier.Get(ctx, "cold"); hit {
		t.Error("least frequently used entry should have been evicted")
	}
	if _, hit, _ := tier.Get(ctx, "popular"); !hit {
		t.Error("frequently hit entry should survive")
	}
}

func TestFrequencyTierTieBreak(t *testing.T) {
	ctx := context.Background()
	tier := NewFrequencyTier("mid", 2)
	defer tier.Close()

	// Equal hit counts: the older insertion loses
	tier.Set(ctx, "older", []byte("1"), 0)
	tier.Set(ctx, "newer", []byte("2"), 0)
	tier.Set(ctx, "third", []byte("3"), 0)

	if _, hit, _ := tier.Get(ctx, "older"); hit {
		t.Error("oldest zero-hit entry should have been evicted")
	}
	if _, hit, _ := tier.Get(ctx, "newer"); !hit {
		t.Error("newer entry should survive the tie break")
	}
}

func TestAdaptiveTierExpiry(t *testing.T) {
	ctx := context.Background()
	tier := NewAdaptiveTier("slow", 8, false)
	defer tier.Close()

	tier.Set(ctx, "short", []byte("1"), time.Nanosecond)
	time.Sleep(time.Millisecond)
	if _, hit, _ := tier.Get(ctx, "short"); hit {
		t.Error("expired entry should miss")
	}
	if tier.Len() != 0 {
		t.Errorf("expired entry should be dropped, len = %d", tier.Len())
	}

	tier.Set(ctx, "forever", []byte("2"), 0)
	if _, hit, _ := tier.Get(ctx, "forever"); !hit {
		t.Error("zero ttl should mean no expiration")
	}
}

func TestAdaptiveTierGhostBalance(t *testing.T) {
	ctx := context.Background()
	tier := NewAdaptiveTier("slow", 1, true)
	defer tier.Close()

	tier.Set(ctx, "a", []byte("1"), 0)
	tier.Set(ctx, "b", []byte("2"), 0) // evicts and ghosts "a"

	if tier.balance != 0.5 {
		t.Fatalf("initial balance = %v, want 0.5", tier.balance)
	}

	// Missing a ghosted key means the eviction was premature
	if _, hit, _ := tier.Get(ctx, "a"); hit {
		t.Fatal("evicted key should miss")
	}
	if math.Abs(tier.balance-0.55) > 1e-9 {
		t.Errorf("balance after ghost hit = %v, want 0.55", tier.balance)
	}

	// A plain miss on a never-seen key does not shift the balance
	shifted := tier.balance
	tier.Get(ctx, "never")
	if tier.balance != shifted {
		t.Errorf("balance after plain miss = %v, want %v", tier.balance, shifted)
	}
}

func TestAdaptiveTierPredictedKeys(t *testing.T) {
	ctx := context.Background()
	tier := NewAdaptiveTier("slow", 1, true)
	defer tier.Close()

	tier.Set(ctx, "a", []byte("1"), 0)
	tier.Set(ctx, "b", []byte("2"), 0) // ghosts "a"
	tier.Set(ctx, "c", []byte("3"), 0) // ghosts "b"

	keys := tier.PredictedKeys(10)
	if len(keys) != 2 || keys[0] != "b" || keys[1] != "a" {
		t.Errorf("PredictedKeys = %v, want [b a] (most recent first)", keys)
	}
	if got := tier.PredictedKeys(1); len(got) != 1 || got[0] != "b" {
		t.Errorf("PredictedKeys(1) = %v, want [b]", got)
	}

	// Re-inserting a ghost removes the prediction
	tier.Set(ctx, "b", []byte("2"), 0)
	for _, k := range tier.PredictedKeys(10) {
		if k == "b" {
			t.Error("stored keys should not be predicted")
		}
	}

	// Preload disabled means no predictions at all
	off := NewAdaptiveTier("slow", 1, false)
	off.Set(ctx, "a", nil, 0)
	off.Set(ctx, "b", nil, 0)
	if got := off.PredictedKeys(10); got != nil {
		t.Errorf("predictions with preload off = %v, want nil", got)
	}
}

func TestMultiTierPromotion(t *testing.T) {
	ctx := context.Background()
	fast := NewMemoryTier("fast", 4)
	mid := NewFrequencyTier("mid", 4)
	m := NewMultiTier(fast, mid)
	defer m.Close()

	// Seed only the slower tier
	mid.Set(ctx, "key", []byte("value"), 0)

	data, hit, err := m.Get(ctx, "key")
	if err != nil || !hit {
		t.Fatalf("Get = hit %v, err %v", hit, err)
	}
	if string(data) != "value" {
		t.Errorf("data = %q, want value", data)
	}

	// The hit should now be served from the fast tier directly
	if _, hit, _ := fast.Get(ctx, "key"); !hit {
		t.Error("hit should have been promoted into the fast tier")
	}
}

func TestMultiTierWriteThrough(t *testing.T) {
	ctx := context.Background()
	fast := NewMemoryTier("fast", 4)
	mid := NewFrequencyTier("mid", 4)
	m := NewMultiTier(fast, mid)
	defer m.Close()

	if err := m.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	for _, tier := range m.Tiers() {
		if _, hit, _ := tier.Get(ctx, "key"); !hit {
			t.Errorf("tier %s missing write-through value", tier.Name())
		}
	}

	if err := m.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, hit, _ := m.Get(ctx, "key"); hit {
		t.Error("deleted key should miss everywhere")
	}
}

// recordingHooks captures cache events for assertions.
type recordingHooks struct {
	observability.NoopCacheHooks
	hits   []string
	misses []string
	evicts []string
}

func (h *recordingHooks) OnCacheHit(_ context.Context, tier, key string) {
	h.hits = append(h.hits, tier+":"+key)
}

func (h *recordingHooks) OnCacheMiss(_ context.Context, key string) {
	h.misses = append(h.misses, key)
}

func (h *recordingHooks) OnCacheEvict(_ context.Context, tier, key string) {
	h.evicts = append(h.evicts, tier+":"+key)
}

func TestMultiTierHooks(t *testing.T) {
	defer observability.Reset()
	hooks := &recordingHooks{}
	observability.SetCacheHooks(hooks)

	ctx := context.Background()
	m := NewMultiTier(NewMemoryTier("fast", 4))
	defer m.Close()

	m.Get(ctx, "missing")
	m.Set(ctx, "key", []byte("v"), 0)
	m.Get(ctx, "key")

	if len(hooks.misses) != 1 || hooks.misses[0] != "missing" {
		t.Errorf("misses = %v, want [missing]", hooks.misses)
	}
	if len(hooks.hits) != 1 || hooks.hits[0] != "fast:key" {
		t.Errorf("hits = %v, want [fast:key]", hooks.hits)
	}
}

func TestEvictionHook(t *testing.T) {
	defer observability.Reset()
	hooks := &recordingHooks{}
	observability.SetCacheHooks(hooks)

	ctx := context.Background()
	tier := NewMemoryTier("fast", 1)
	defer tier.Close()

	tier.Set(ctx, "a", []byte("1"), 0)
	tier.Set(ctx, "b", []byte("2"), 0)

	if len(hooks.evicts) != 1 || hooks.evicts[0] != "fast:a" {
		t.Errorf("evicts = %v, want [fast:a]", hooks.evicts)
	}
}

func TestMultiTierWarm(t *testing.T) {
	ctx := context.Background()
	fast := NewMemoryTier("fast", 4)
	slow := NewAdaptiveTier("slow", 1, true)
	m := NewMultiTier(fast, slow)
	defer m.Close()

	// Evict "a" out of the slow tier, then restore it so the prediction
	// resolves through Get.
	slow.Set(ctx, "a", []byte("1"), 0)
	slow.Set(ctx, "b", []byte("2"), 0)

	if warmed := m.Warm(ctx, 10); warmed != 0 {
		t.Errorf("warming unresolvable predictions = %d, want 0", warmed)
	}
}

func TestNewFromConfigDefaults(t *testing.T) {
	m := NewFromConfig(DefaultConfig())
	defer m.Close()

	tiers := m.Tiers()
	if len(tiers) != 3 {
		t.Fatalf("tiers = %d, want 3", len(tiers))
	}
	if tiers[0].Name() != "fast" || tiers[1].Name() != "mid" || tiers[2].Name() != "slow" {
		t.Errorf("tier order unexpected: %s/%s/%s", tiers[0].Name(), tiers[1].Name(), tiers[2].Name())
	}
	if _, ok := tiers[2].(*AdaptiveTier); !ok {
		t.Errorf("slow tier without redis should be adaptive, got %T", tiers[2])
	}

	ctx := context.Background()
	if err := m.Set(ctx, "k", []byte("v"), TTLStructure); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if _, hit, _ := m.Get(ctx, "k"); !hit {
		t.Error("composed cache should serve its own writes")
	}
}
