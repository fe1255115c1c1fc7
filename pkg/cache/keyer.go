package cache

// Keyer generates cache keys for the engine's cacheable artifacts.
// Implementations must be deterministic: identical inputs produce identical
// keys across processes.
type Keyer interface {
	// StructureKey generates a key for a generated spatial structure from
	// the cultural context fields that drive generation.
	StructureKey(region string, formality float64, contextTag string) string

	// AnalysisKey generates a key for an input analysis from a content
	// hash of the input.
	AnalysisKey(contentHash string) string
}

// DefaultKeyer is the standard key generation scheme.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// StructureKey hashes the generation-driving context fields.
func (k *DefaultKeyer) StructureKey(region string, formality float64, contextTag string) string {
	return hashKey("structure", region, formality, contextTag)
}

// AnalysisKey prefixes the content hash of the analyzed input.
func (k *DefaultKeyer) AnalysisKey(contentHash string) string {
	return "analysis:" + contentHash
}

// ScopedKeyer wraps a Keyer with a prefix for multi-session isolation.
// Useful when several logical sessions share one cache instance and must
// not observe each other's structures.
//
// Example usage:
//
//	sessionKeyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "session:abc123:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// StructureKey generates a prefixed structure key.
func (k *ScopedKeyer) StructureKey(region string, formality float64, contextTag string) string {
	return k.prefix + k.inner.StructureKey(region, formality, contextTag)
}

// AnalysisKey generates a prefixed analysis key.
func (k *ScopedKeyer) AnalysisKey(contentHash string) string {
	return k.prefix + k.inner.AnalysisKey(contentHash)
}
