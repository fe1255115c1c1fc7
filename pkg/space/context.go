package space

import "github.com/signkit/signspace/pkg/geom"

// Context tags classify the usage situation a structure is generated for.
const (
	TagEducational    = "educational"
	TagConversational = "conversational"
	TagNarrative      = "narrative"
	TagTechnical      = "technical"
	TagCustom         = "custom"
)

// ValidTags is the set of supported context tags.
var ValidTags = map[string]bool{
	TagEducational:    true,
	TagConversational: true,
	TagNarrative:      true,
	TagTechnical:      true,
	TagCustom:         true,
}

// CulturalContext drives zone and proforme generation: which zones exist,
// where they sit, and how tense and compact the resulting space is.
type CulturalContext struct {
	// Region selects regional zone conventions and proforme variants
	// (e.g. "france" selects LSF conventions).
	Region string `json:"region" bson:"region" toml:"region"`

	// FormalityLevel adapts register on a continuous [0,1] scale. Higher
	// values enlarge the space, raise proforme tension, and pull positions
	// toward the body.
	FormalityLevel float64 `json:"formality_level" bson:"formality_level" toml:"formality_level"`

	// ContextTag is one of the Tag* constants. Empty defaults to
	// conversational.
	ContextTag string `json:"context_tag,omitempty" bson:"context_tag,omitempty" toml:"context_tag"`

	// Dialect optionally narrows the region (e.g. "marseille").
	Dialect string `json:"dialect,omitempty" bson:"dialect,omitempty" toml:"dialect"`

	// Extra holds genuinely culture-specific fields that no algorithm
	// depends on. It is carried through to generated structures untouched.
	Extra map[string]any `json:"extra,omitempty" bson:"extra,omitempty" toml:"extra"`
}

// Normalized returns a copy with the formality level clamped to [0,1] and
// an empty tag defaulted to conversational.
func (c CulturalContext) Normalized() CulturalContext {
	c.FormalityLevel = geom.Clamp01(c.FormalityLevel)
	if c.ContextTag == "" {
		c.ContextTag = TagConversational
	}
	return c
}

// IsFormal reports whether the context calls for a dedicated formal-register
// zone.
func (c CulturalContext) IsFormal() bool {
	return c.FormalityLevel > 0.7
}
