// Package proforme maintains the catalog of hand-configuration primitives.
//
// A proforme is a reusable handshape + orientation representing a concept
// ("flat surface", "person moving", "grasping"). The Registry seeds a base
// set shared by all regions, layers region-specific variants on top, and
// continuously adapts tension and position to the formality level of the
// active cultural context.
//
// The Registry is single-writer state and is not internally synchronized.
package proforme

import (
	"github.com/signkit/signspace/pkg/geom"
	"github.com/signkit/signspace/pkg/space"
)

// Handshape is a five-finger bend configuration plus spread and overall
// tension. All values live in [0,1]: 0 is fully extended/relaxed, 1 is
// fully bent/tense.
type Handshape struct {
	Thumb  float64 `json:"thumb" bson:"thumb"`
	Index  float64 `json:"index" bson:"index"`
	Middle float64 `json:"middle" bson:"middle"`
	Ring   float64 `json:"ring" bson:"ring"`
	Pinky  float64 `json:"pinky" bson:"pinky"`

	Spread  float64 `json:"spread" bson:"spread"`
	Tension float64 `json:"tension" bson:"tension"`
}

// Clamp returns the handshape with every value clamped to [0,1].
func (h Handshape) Clamp() Handshape {
	h.Thumb = geom.Clamp01(h.Thumb)
	h.Index = geom.Clamp01(h.Index)
	h.Middle = geom.Clamp01(h.Middle)
	h.Ring = geom.Clamp01(h.Ring)
	h.Pinky = geom.Clamp01(h.Pinky)
	h.Spread = geom.Clamp01(h.Spread)
	h.Tension = geom.Clamp01(h.Tension)
	return h
}

// IsZero reports whether the handshape carries no configuration at all.
func (h Handshape) IsZero() bool {
	return h == Handshape{}
}

// Proforme is a hand-configuration primitive: a handshape, an orientation,
// and the concept it represents.
type Proforme struct {
	ID         string
	Name       string
	Shape      Handshape
	Orient     space.Orientation
	Represents string   // primary concept
	Associated []string // secondary concepts matched by lookup
	Regions    []string // cultural contexts the proforme belongs to; empty = base set

	// DefaultPos is the citation position, if the proforme has one.
	// Pos is the current position, adapted by formality; it starts at
	// DefaultPos on every PrepareForContext pass.
	DefaultPos *geom.Point3D
	Pos        *geom.Point3D
}

// Clone returns a deep copy of the proforme.
func (p *Proforme) Clone() *Proforme {
	c := *p
	if p.Associated != nil {
		c.Associated = append([]string(nil), p.Associated...)
	}
	if p.Regions != nil {
		c.Regions = append([]string(nil), p.Regions...)
	}
	if p.DefaultPos != nil {
		pos := *p.DefaultPos
		c.DefaultPos = &pos
	}
	if p.Pos != nil {
		pos := *p.Pos
		c.Pos = &pos
	}
	return &c
}
