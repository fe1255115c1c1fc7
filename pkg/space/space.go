// Package space models the 3D signing space: the coordinate frame in which
// a signed utterance's spatial elements are placed, the typed reference
// zones anchored in it, and the cultural context that shapes both.
//
// A SigningSpace is mutable, single-writer state. It is not internally
// synchronized: concurrent mutation from multiple callers against the same
// instance is undefined behavior and must be prevented by the owning layer,
// typically by giving each logical session its own instance.
package space

import "github.com/signkit/signspace/pkg/geom"

// Orientation describes the default palm and finger directions of the space.
type Orientation struct {
	Palm    string `json:"palm" bson:"palm"`
	Fingers string `json:"fingers" bson:"fingers"`
}

// Direction tags used by orientations and timeline metadata.
const (
	DirForward     = "forward"
	DirUp          = "up"
	DirDown        = "down"
	DirLeftToRight = "left-to-right"
	DirRightToLeft = "right-to-left"
)

// DefaultOrientation is the orientation restored by Reset: palm forward,
// fingers up, the citation posture.
var DefaultOrientation = Orientation{Palm: DirForward, Fingers: DirUp}

// defaultBounds is the signer-centered bounding volume restored by Reset.
var defaultBounds = geom.Area3D{Width: 2, Height: 2, Depth: 1.2}

// ConfigParams are partial overrides applied by Configure. Nil fields leave
// the current value untouched; zones are never affected.
type ConfigParams struct {
	Scale       *float64
	Origin      *geom.Point3D
	Orientation *Orientation
	Bounds      *geom.Area3D
}

// SigningSpace is a mutable 3D coordinate frame holding a registry of
// active reference zones and providing world<->space coordinate transforms.
type SigningSpace struct {
	Scale       float64
	Origin      geom.Point3D
	Orientation Orientation
	Bounds      geom.Area3D

	zones map[string]*ReferenceZone
}

// New creates a signing space in its reset state: scale 1, zero origin,
// default orientation, empty zone registry.
func New() *SigningSpace {
	s := &SigningSpace{}
	s.Reset()
	return s
}

// Initialize resets the space and seeds context-appropriate base zones.
// A "neutral-center" zone is always present; a "formal-space" zone is added
// when the context indicates formal register. The spatial scale grows with
// formality: formal signing uses a larger, more deliberate space.
func (s *SigningSpace) Initialize(ctx CulturalContext) {
	ctx = ctx.Normalized()
	s.Reset()
	s.Scale = 1 + ctx.FormalityLevel*0.5

	s.AddZone(&ReferenceZone{
		ID:           "neutral-center",
		Name:         "Neutral center",
		Kind:         ZoneNeutral,
		Area:         geom.Cube(geom.Point3D{}, 0.5),
		Significance: 1,
		Priority:     0,
		Meta:         NeutralMeta{},
	})

	if ctx.IsFormal() {
		s.AddZone(&ReferenceZone{
			ID:           "formal-space",
			Name:         "Formal register space",
			Kind:         ZoneAbstract,
			Area:         geom.Cube(geom.Point3D{Y: 0.3, Z: -0.2}, 0.4),
			Significance: geom.Clamp01(ctx.FormalityLevel),
			Priority:     1,
			Meta:         AbstractMeta{Concept: "formal-register"},
		})
	}
}

// Configure applies partial overrides without touching the zone registry.
func (s *SigningSpace) Configure(params ConfigParams) {
	if params.Scale != nil {
		s.Scale = *params.Scale
	}
	if params.Origin != nil {
		s.Origin = *params.Origin
	}
	if params.Orientation != nil {
		s.Orientation = *params.Orientation
	}
	if params.Bounds != nil {
		s.Bounds = *params.Bounds
	}
}

// AddZone registers a zone. Returns false without mutating state if a zone
// with the same ID is already registered or the zone is nil.
func (s *SigningSpace) AddZone(z *ReferenceZone) bool {
	if z == nil || z.ID == "" {
		return false
	}
	if _, exists := s.zones[z.ID]; exists {
		return false
	}
	s.zones[z.ID] = z
	return true
}

// RemoveZone unregisters the zone with the given ID. Returns false if no
// such zone exists.
func (s *SigningSpace) RemoveZone(id string) bool {
	if _, exists := s.zones[id]; !exists {
		return false
	}
	delete(s.zones, id)
	return true
}

// GetZone returns the zone with the given ID and true, or nil and false.
func (s *SigningSpace) GetZone(id string) (*ReferenceZone, bool) {
	z, ok := s.zones[id]
	return z, ok
}

// Zones returns all registered zones. The order is not guaranteed; the
// returned slice contains the live zone pointers.
func (s *SigningSpace) Zones() []*ReferenceZone {
	zones := make([]*ReferenceZone, 0, len(s.zones))
	for _, z := range s.zones {
		zones = append(zones, z)
	}
	return zones
}

// ZoneCount returns the number of registered zones.
func (s *SigningSpace) ZoneCount() int { return len(s.zones) }

// ToSpace transforms a world point into space coordinates:
// translate by the origin, then scale. Exact inverse of FromSpace.
func (s *SigningSpace) ToSpace(p geom.Point3D) geom.Point3D {
	return geom.Point3D{
		X: (p.X - s.Origin.X) * s.Scale,
		Y: (p.Y - s.Origin.Y) * s.Scale,
		Z: (p.Z - s.Origin.Z) * s.Scale,
	}
}

// FromSpace transforms a space point back into world coordinates:
// unscale, then translate. Exact inverse of ToSpace.
func (s *SigningSpace) FromSpace(p geom.Point3D) geom.Point3D {
	return geom.Point3D{
		X: p.X/s.Scale + s.Origin.X,
		Y: p.Y/s.Scale + s.Origin.Y,
		Z: p.Z/s.Scale + s.Origin.Z,
	}
}

// Clone performs a deep copy of the space including all zones.
func (s *SigningSpace) Clone() *SigningSpace {
	c := &SigningSpace{
		Scale:       s.Scale,
		Origin:      s.Origin,
		Orientation: s.Orientation,
		Bounds:      s.Bounds,
		zones:       make(map[string]*ReferenceZone, len(s.zones)),
	}
	for id, z := range s.zones {
		c.zones[id] = z.Clone()
	}
	return c
}

// Reset restores default scale (1), zero origin, default orientation, the
// default bounding volume, and an empty zone registry.
func (s *SigningSpace) Reset() {
	s.Scale = 1
	s.Origin = geom.Point3D{}
	s.Orientation = DefaultOrientation
	s.Bounds = defaultBounds
	s.zones = make(map[string]*ReferenceZone)
}
