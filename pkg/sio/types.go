package sio

import (
	"fmt"
	"sort"

	"github.com/signkit/signspace/pkg/analyze"
	"github.com/signkit/signspace/pkg/geom"
	"github.com/signkit/signspace/pkg/layout"
	"github.com/signkit/signspace/pkg/proforme"
	"github.com/signkit/signspace/pkg/space"
	"github.com/signkit/signspace/pkg/structure"
)

// =============================================================================
// Document - Spatial Structure Serialization
// =============================================================================

// Document is the canonical serialization format for spatial structures.
// Used for storage, caching, API responses, and cross-tool exchange.
//
// The format is human-readable and designed for round-trip fidelity:
// generate → export → re-import produces an equivalent structure.
type Document struct {
	ID        string                `json:"id" bson:"_id"`
	Context   space.CulturalContext `json:"context" bson:"context"`
	Space     Space                 `json:"space" bson:"space"`
	Zones     []Zone                `json:"zones" bson:"zones"`
	Proformes []Proforme            `json:"proformes,omitempty" bson:"proformes,omitempty"`

	Components []*analyze.Component `json:"components,omitempty" bson:"components,omitempty"`
	Relations  []Relation           `json:"relations,omitempty" bson:"relations,omitempty"`
	Elements   []Element            `json:"elements,omitempty" bson:"elements,omitempty"`

	Meta structure.Meta `json:"meta" bson:"meta"`
}

// Space is the serialized coordinate frame. Zones are stored once at the
// document level, not repeated here.
type Space struct {
	Scale       float64           `json:"scale" bson:"scale"`
	Origin      geom.Point3D      `json:"origin" bson:"origin"`
	Orientation space.Orientation `json:"orientation" bson:"orientation"`
	Bounds      geom.Area3D       `json:"bounds" bson:"bounds"`
}

// Zone is the serialized reference zone. The kind-specific metadata variants
// are flattened into optional fields; which fields are meaningful follows
// from the kind.
type Zone struct {
	ID           string         `json:"id" bson:"id"`
	Name         string         `json:"name,omitempty" bson:"name,omitempty"`
	Kind         string         `json:"kind" bson:"kind"`
	Area         geom.Area3D    `json:"area" bson:"area"`
	Significance float64        `json:"significance" bson:"significance"`
	Priority     int            `json:"priority" bson:"priority"`
	Direction    string         `json:"direction,omitempty" bson:"direction,omitempty"` // timeline
	Segments     int            `json:"segments,omitempty" bson:"segments,omitempty"`   // timeline
	Role         string         `json:"role,omitempty" bson:"role,omitempty"`           // actant
	Field        string         `json:"field,omitempty" bson:"field,omitempty"`         // topic
	Concept      string         `json:"concept,omitempty" bson:"concept,omitempty"`     // abstract
	Capacity     int            `json:"capacity,omitempty" bson:"capacity,omitempty"`   // container
	Extra        map[string]any `json:"extra,omitempty" bson:"extra,omitempty"`
}

// Proforme is the serialized hand-configuration primitive.
type Proforme struct {
	ID         string             `json:"id" bson:"id"`
	Name       string             `json:"name,omitempty" bson:"name,omitempty"`
	Shape      proforme.Handshape `json:"shape" bson:"shape"`
	Orient     space.Orientation  `json:"orient" bson:"orient"`
	Represents string             `json:"represents,omitempty" bson:"represents,omitempty"`
	Associated []string           `json:"associated,omitempty" bson:"associated,omitempty"`
	Regions    []string           `json:"regions,omitempty" bson:"regions,omitempty"`
	DefaultPos *geom.Point3D      `json:"default_pos,omitempty" bson:"default_pos,omitempty"`
	Pos        *geom.Point3D      `json:"pos,omitempty" bson:"pos,omitempty"`
}

// Element is the serialized layout element. The zone_id field references a
// zone in the document's zone list.
type Element struct {
	ID         string         `json:"id" bson:"id"`
	Kind       string         `json:"kind" bson:"kind"`
	Pos        geom.Point3D   `json:"pos" bson:"pos"`
	Dims       *geom.Dims     `json:"dims,omitempty" bson:"dims,omitempty"`
	Importance float64        `json:"importance" bson:"importance"`
	Props      map[string]any `json:"props,omitempty" bson:"props,omitempty"`
	ZoneID     string         `json:"zone_id,omitempty" bson:"zone_id,omitempty"`
}

// Relation is the serialized relation between two elements or components.
type Relation struct {
	ID       string         `json:"id" bson:"id"`
	Kind     string         `json:"kind" bson:"kind"`
	Source   string         `json:"source" bson:"source"`
	Target   string         `json:"target" bson:"target"`
	Strength float64        `json:"strength" bson:"strength"`
	Props    map[string]any `json:"props,omitempty" bson:"props,omitempty"`
}

// =============================================================================
// Structure ↔ Document Conversion
// =============================================================================

// FromStructure converts a structure to its serialization format.
// Zones, proformes, and elements are sorted by ID for deterministic output.
func FromStructure(s *structure.Structure) Document {
	doc := Document{
		ID:         s.ID,
		Context:    s.Context,
		Components: s.Components,
		Meta:       s.Meta,
	}
	if s.Space != nil {
		doc.Space = Space{
			Scale:       s.Space.Scale,
			Origin:      s.Space.Origin,
			Orientation: s.Space.Orientation,
			Bounds:      s.Space.Bounds,
		}
	}

	doc.Zones = make([]Zone, len(s.Zones))
	for i, z := range s.Zones {
		doc.Zones[i] = zoneToDoc(z)
	}
	sort.Slice(doc.Zones, func(i, j int) bool { return doc.Zones[i].ID < doc.Zones[j].ID })

	if len(s.Proformes) > 0 {
		doc.Proformes = make([]Proforme, len(s.Proformes))
		for i, p := range s.Proformes {
			doc.Proformes[i] = proformeToDoc(p)
		}
		sort.Slice(doc.Proformes, func(i, j int) bool { return doc.Proformes[i].ID < doc.Proformes[j].ID })
	}

	for _, r := range s.Relations {
		doc.Relations = append(doc.Relations, relationToDoc(r))
	}
	if s.Layout != nil {
		for _, e := range s.Layout.Elements {
			doc.Elements = append(doc.Elements, elementToDoc(e))
		}
		sort.Slice(doc.Elements, func(i, j int) bool { return doc.Elements[i].ID < doc.Elements[j].ID })
	}

	return doc
}

// ToStructure converts a document back to a structure.
// Returns an error for unknown zone or relation kinds or dangling zone
// references.
func ToStructure(doc Document) (*structure.Structure, error) {
	s := &structure.Structure{
		ID:         doc.ID,
		Context:    doc.Context.Normalized(),
		Components: doc.Components,
		Meta:       doc.Meta,
	}

	sp := space.New()
	sp.Configure(space.ConfigParams{
		Scale:       &doc.Space.Scale,
		Origin:      &doc.Space.Origin,
		Orientation: &doc.Space.Orientation,
		Bounds:      &doc.Space.Bounds,
	})
	if sp.Scale == 0 {
		sp.Scale = 1
	}

	s.Zones = make([]*space.ReferenceZone, len(doc.Zones))
	for i, zj := range doc.Zones {
		z, err := zoneFromDoc(zj)
		if err != nil {
			return nil, err
		}
		s.Zones[i] = z
		sp.AddZone(z)
	}
	s.Space = sp

	for _, pj := range doc.Proformes {
		s.Proformes = append(s.Proformes, proformeFromDoc(pj))
	}

	for _, rj := range doc.Relations {
		r, err := relationFromDoc(rj)
		if err != nil {
			return nil, err
		}
		s.Relations = append(s.Relations, r)
	}

	if len(doc.Elements) > 0 {
		l := &layout.Layout{Zones: s.Zones, Relations: s.Relations}
		for _, ej := range doc.Elements {
			e := elementFromDoc(ej)
			if e.ZoneID != "" {
				if _, ok := l.Zone(e.ZoneID); !ok {
					return nil, fmt.Errorf("element %s: unknown zone %s", e.ID, e.ZoneID)
				}
			}
			l.Elements = append(l.Elements, e)
		}
		s.Layout = l
	}

	return s, nil
}

// =============================================================================
// Internal Helpers
// =============================================================================

// zoneToDoc flattens a zone and its typed metadata into the wire form.
// This is the single point of conversion for all zone exports.
func zoneToDoc(z *space.ReferenceZone) Zone {
	zj := Zone{
		ID:           z.ID,
		Name:         z.Name,
		Kind:         string(z.Kind),
		Area:         z.Area,
		Significance: z.Significance,
		Priority:     z.Priority,
		Extra:        copyProps(z.Extra),
	}
	switch m := z.Meta.(type) {
	case space.TimelineMeta:
		zj.Direction = m.Direction
		zj.Segments = m.Segments
	case space.ActantMeta:
		zj.Role = m.Role
	case space.TopicMeta:
		zj.Field = m.Field
	case space.AbstractMeta:
		zj.Concept = m.Concept
	case space.ContainerMeta:
		zj.Capacity = m.Capacity
	}
	return zj
}

func zoneFromDoc(zj Zone) (*space.ReferenceZone, error) {
	kind := space.ZoneKind(zj.Kind)
	if !space.ValidZoneKinds[kind] {
		return nil, fmt.Errorf("zone %s: unknown kind %q", zj.ID, zj.Kind)
	}
	z := &space.ReferenceZone{
		ID:           zj.ID,
		Name:         zj.Name,
		Kind:         kind,
		Area:         zj.Area,
		Significance: zj.Significance,
		Priority:     zj.Priority,
		Extra:        copyProps(zj.Extra),
	}
	switch kind {
	case space.ZoneTimeline:
		z.Meta = space.TimelineMeta{Direction: zj.Direction, Segments: zj.Segments}
	case space.ZoneActant:
		z.Meta = space.ActantMeta{Role: zj.Role}
	case space.ZoneTopic:
		z.Meta = space.TopicMeta{Field: zj.Field}
	case space.ZoneNeutral:
		z.Meta = space.NeutralMeta{}
	case space.ZoneAbstract:
		z.Meta = space.AbstractMeta{Concept: zj.Concept}
	case space.ZoneContainer:
		z.Meta = space.ContainerMeta{Capacity: zj.Capacity}
	}
	return z, nil
}

func proformeToDoc(p *proforme.Proforme) Proforme {
	return Proforme{
		ID:         p.ID,
		Name:       p.Name,
		Shape:      p.Shape,
		Orient:     p.Orient,
		Represents: p.Represents,
		Associated: p.Associated,
		Regions:    p.Regions,
		DefaultPos: p.DefaultPos,
		Pos:        p.Pos,
	}
}

func proformeFromDoc(pj Proforme) *proforme.Proforme {
	return &proforme.Proforme{
		ID:         pj.ID,
		Name:       pj.Name,
		Shape:      pj.Shape,
		Orient:     pj.Orient,
		Represents: pj.Represents,
		Associated: pj.Associated,
		Regions:    pj.Regions,
		DefaultPos: pj.DefaultPos,
		Pos:        pj.Pos,
	}
}

func elementToDoc(e *layout.Element) Element {
	return Element{
		ID:         e.ID,
		Kind:       string(e.Kind),
		Pos:        e.Pos,
		Dims:       e.Dims,
		Importance: e.Importance,
		Props:      copyProps(e.Props),
		ZoneID:     e.ZoneID,
	}
}

func elementFromDoc(ej Element) *layout.Element {
	return &layout.Element{
		ID:         ej.ID,
		Kind:       layout.ElementKind(ej.Kind),
		Pos:        ej.Pos,
		Dims:       ej.Dims,
		Importance: ej.Importance,
		Props:      copyProps(ej.Props),
		ZoneID:     ej.ZoneID,
	}
}

func relationToDoc(r *layout.Relation) Relation {
	return Relation{
		ID:       r.ID,
		Kind:     string(r.Kind),
		Source:   r.Source,
		Target:   r.Target,
		Strength: r.Strength,
		Props:    copyProps(r.Props),
	}
}

func relationFromDoc(rj Relation) (*layout.Relation, error) {
	kind := layout.RelationKind(rj.Kind)
	if !layout.ValidRelationKinds[kind] {
		return nil, fmt.Errorf("relation %s: unknown kind %q", rj.ID, rj.Kind)
	}
	return &layout.Relation{
		ID:       rj.ID,
		Kind:     kind,
		Source:   rj.Source,
		Target:   rj.Target,
		Strength: rj.Strength,
		Props:    copyProps(rj.Props),
	}, nil
}

// copyProps creates a shallow copy of a property map to avoid mutation.
func copyProps(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	result := make(map[string]any, len(m))
	for k, v := range m {
		result[k] = v
	}
	return result
}
