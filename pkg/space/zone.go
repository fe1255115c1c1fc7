package space

import (
	"github.com/signkit/signspace/pkg/geom"
)

// ZoneKind classifies a reference zone by the role it anchors.
type ZoneKind string

// Zone kinds.
const (
	ZoneTimeline  ZoneKind = "timeline"
	ZoneActant    ZoneKind = "actant"
	ZoneTopic     ZoneKind = "topic"
	ZoneNeutral   ZoneKind = "neutral"
	ZoneAbstract  ZoneKind = "abstract"
	ZoneContainer ZoneKind = "container"
)

// ValidZoneKinds is the set of supported zone kinds.
var ValidZoneKinds = map[ZoneKind]bool{
	ZoneTimeline:  true,
	ZoneActant:    true,
	ZoneTopic:     true,
	ZoneNeutral:   true,
	ZoneAbstract:  true,
	ZoneContainer: true,
}

// ZoneMeta is the typed metadata attached to a zone. Each kind carries the
// fields its placement and layout algorithms depend on; genuinely unknown
// culture-specific fields go in the zone's Extra map instead.
type ZoneMeta interface {
	zoneMeta()
}

// TimelineMeta describes a timeline zone: reading direction and the number
// of time segments laid out along its width.
type TimelineMeta struct {
	Direction string // "left-to-right" or "right-to-left"
	Segments  int    // time landmarks placed along the zone width
}

// ActantMeta describes an actant zone: the grammatical role anchored there
// by default.
type ActantMeta struct {
	Role string // "subject" or "object"
}

// TopicMeta describes a topic zone and its thematic field.
type TopicMeta struct {
	Field string
}

// NeutralMeta describes the neutral resting zone. It has no parameters.
type NeutralMeta struct{}

// AbstractMeta describes an abstract-concept zone.
type AbstractMeta struct {
	Concept string
}

// ContainerMeta describes a container zone and how many elements it is
// expected to hold.
type ContainerMeta struct {
	Capacity int
}

func (TimelineMeta) zoneMeta()  {}
func (ActantMeta) zoneMeta()    {}
func (TopicMeta) zoneMeta()     {}
func (NeutralMeta) zoneMeta()   {}
func (AbstractMeta) zoneMeta()  {}
func (ContainerMeta) zoneMeta() {}

// ReferenceZone is a named, typed 3D region used to anchor meaning
// spatially. Zones are created by the zone generator for a cultural context;
// their positions are mutated in place during overlap resolution and they
// are discarded on reset or context change.
type ReferenceZone struct {
	ID           string
	Name         string
	Kind         ZoneKind
	Area         geom.Area3D
	Significance float64 // importance weight in [0,1]
	Priority     int     // lower value = placed and protected first
	Meta         ZoneMeta
	Extra        map[string]any
}

// Clone returns a deep copy of the zone. ZoneMeta variants are value types,
// so assignment copies them; only the Extra map needs duplication.
func (z *ReferenceZone) Clone() *ReferenceZone {
	c := *z
	if z.Extra != nil {
		c.Extra = make(map[string]any, len(z.Extra))
		for k, v := range z.Extra {
			c.Extra[k] = v
		}
	}
	return &c
}

// Overlaps reports whether two zones encroach on each other.
func (z *ReferenceZone) Overlaps(other *ReferenceZone) bool {
	return z.Area.Overlaps(other.Area)
}
