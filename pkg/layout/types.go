package layout

import (
	"github.com/signkit/signspace/pkg/geom"
	"github.com/signkit/signspace/pkg/space"
)

// ElementKind classifies a spatial element.
type ElementKind string

// Element kinds.
const (
	ElementEntity    ElementKind = "entity"
	ElementLandmark  ElementKind = "landmark"
	ElementContainer ElementKind = "container"
	ElementConcept   ElementKind = "concept"
)

// RelationKind classifies a spatial relation. Generated layouts use the
// hierarchy/alignment/containment kinds; extracted analyses use the
// temporal/spatial/semantic/causal/structural kinds.
type RelationKind string

// Relation kinds.
const (
	RelationHierarchy   RelationKind = "hierarchy"
	RelationAlignment   RelationKind = "alignment"
	RelationContainment RelationKind = "containment"

	RelationTemporal   RelationKind = "temporal"
	RelationSpatial    RelationKind = "spatial"
	RelationSemantic   RelationKind = "semantic"
	RelationCausal     RelationKind = "causal"
	RelationStructural RelationKind = "structural"
)

// ValidRelationKinds is the set of supported relation kinds.
var ValidRelationKinds = map[RelationKind]bool{
	RelationHierarchy:   true,
	RelationAlignment:   true,
	RelationContainment: true,
	RelationTemporal:    true,
	RelationSpatial:     true,
	RelationSemantic:    true,
	RelationCausal:      true,
	RelationStructural:  true,
}

// Element is a semantic element placed into a reference zone. Elements are
// created per zone kind by the layout generator and repositioned by the
// overlap-resolution and visibility passes.
type Element struct {
	ID         string
	Kind       ElementKind
	Pos        geom.Point3D
	Dims       *geom.Dims // optional extents; nil for point-like elements
	Importance float64    // drives displacement splitting and salience promotion
	Props      map[string]any
	ZoneID     string // owning zone
}

// Radius approximates the element as a sphere: half its largest dimension,
// or a small default for point-like elements.
func (e *Element) Radius() float64 {
	if e.Dims == nil {
		return 0.05
	}
	a := geom.Area3D{Width: e.Dims.Width, Height: e.Dims.Height, Depth: e.Dims.Depth}
	return a.HalfExtent()
}

// Box returns the element's axis-aligned volume centered at its position.
// Point-like elements get a box of twice their default radius.
func (e *Element) Box() geom.Area3D {
	if e.Dims == nil {
		return geom.Cube(e.Pos, 0.1)
	}
	return geom.Area3D{Center: e.Pos, Width: e.Dims.Width, Height: e.Dims.Height, Depth: e.Dims.Depth}
}

// Clone returns a deep copy of the element.
func (e *Element) Clone() *Element {
	if e == nil {
		return nil
	}
	out := *e
	if e.Dims != nil {
		d := *e.Dims
		out.Dims = &d
	}
	if len(e.Props) > 0 {
		out.Props = make(map[string]any, len(e.Props))
		for k, v := range e.Props {
			out.Props[k] = v
		}
	}
	return &out
}

// Relation links two elements (or, on the analysis path, two components).
// Relations are created once per construction pass and never mutated
// afterward - corrections require creating a replacement relation.
type Relation struct {
	ID       string
	Kind     RelationKind
	Source   string
	Target   string
	Strength float64 // [0,1]
	Props    map[string]any
}

// Clone returns a deep copy of the relation.
func (r *Relation) Clone() *Relation {
	if r == nil {
		return nil
	}
	out := *r
	if len(r.Props) > 0 {
		out.Props = make(map[string]any, len(r.Props))
		for k, v := range r.Props {
			out.Props[k] = v
		}
	}
	return &out
}

// Layout is the product of a generation pass: the zones that were laid out,
// the elements placed into them, and the relations derived between them.
type Layout struct {
	Zones     []*space.ReferenceZone
	Elements  []*Element
	Relations []*Relation
}

// Element returns the element with the given ID and true, or nil and false.
func (l *Layout) Element(id string) (*Element, bool) {
	for _, e := range l.Elements {
		if e.ID == id {
			return e, true
		}
	}
	return nil, false
}

// Clone returns a deep copy of the layout.
func (l *Layout) Clone() *Layout {
	if l == nil {
		return nil
	}
	out := &Layout{}
	if len(l.Zones) > 0 {
		out.Zones = make([]*space.ReferenceZone, len(l.Zones))
		for i, z := range l.Zones {
			out.Zones[i] = z.Clone()
		}
	}
	if len(l.Elements) > 0 {
		out.Elements = make([]*Element, len(l.Elements))
		for i, e := range l.Elements {
			out.Elements[i] = e.Clone()
		}
	}
	if len(l.Relations) > 0 {
		out.Relations = make([]*Relation, len(l.Relations))
		for i, r := range l.Relations {
			out.Relations[i] = r.Clone()
		}
	}
	return out
}

// Zone returns the zone with the given ID and true, or nil and false.
func (l *Layout) Zone(id string) (*space.ReferenceZone, bool) {
	for _, z := range l.Zones {
		if z.ID == id {
			return z, true
		}
	}
	return nil, false
}
