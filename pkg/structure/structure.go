// Package structure defines the spatial structure aggregate: the complete
// result of generating a signing space arrangement for one cultural
// context. A structure bundles the configured space, its reference zones,
// the active proformes, the analyzed components and relations, and the
// geometric layout, plus derived quality metadata.
package structure

import (
	"time"

	"github.com/signkit/signspace/pkg/analyze"
	"github.com/signkit/signspace/pkg/layout"
	"github.com/signkit/signspace/pkg/proforme"
	"github.com/signkit/signspace/pkg/space"
)

// Meta holds derived information about a structure.
type Meta struct {
	// CreatedAt is when generation finished.
	CreatedAt time.Time `json:"created_at" bson:"created_at"`

	// Coherence is the overall coherence score in [0,1].
	Coherence float64 `json:"coherence" bson:"coherence"`

	// Complexity is the structural complexity score in [0,1].
	Complexity float64 `json:"complexity" bson:"complexity"`

	// Optimization notes which layout optimizations were applied.
	Optimization []string `json:"optimization,omitempty" bson:"optimization,omitempty"`

	// ElementCount is the number of layout elements.
	ElementCount int `json:"element_count" bson:"element_count"`

	// RelationCount is the number of relations.
	RelationCount int `json:"relation_count" bson:"relation_count"`
}

// Structure is the aggregate spatial arrangement for one cultural context.
type Structure struct {
	// ID uniquely identifies the structure.
	ID string `json:"id" bson:"_id"`

	// Context is the cultural context the structure was generated for.
	Context space.CulturalContext `json:"context" bson:"context"`

	// Space is the configured signing space.
	Space *space.SigningSpace `json:"space" bson:"space"`

	// Zones are the reference zones placed in the space, conflict-free.
	Zones []*space.ReferenceZone `json:"zones" bson:"zones"`

	// Proformes are the classifier handshapes active for the context.
	Proformes []*proforme.Proforme `json:"proformes,omitempty" bson:"proformes,omitempty"`

	// Components are the analyzed utterance components, if any.
	Components []*analyze.Component `json:"components,omitempty" bson:"components,omitempty"`

	// Relations connect components and layout elements.
	Relations []*layout.Relation `json:"relations,omitempty" bson:"relations,omitempty"`

	// Layout is the geometric arrangement of elements within zones.
	Layout *layout.Layout `json:"layout,omitempty" bson:"layout,omitempty"`

	// Meta holds derived quality information.
	Meta Meta `json:"meta" bson:"meta"`
}

// Zone returns the zone with the given ID, or nil.
func (s *Structure) Zone(id string) *space.ReferenceZone {
	for _, z := range s.Zones {
		if z.ID == id {
			return z
		}
	}
	return nil
}

// Proforme returns the proforme with the given ID, or nil.
func (s *Structure) Proforme(id string) *proforme.Proforme {
	for _, p := range s.Proformes {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Component returns the component with the given ID, or nil.
func (s *Structure) Component(id string) *analyze.Component {
	for _, c := range s.Components {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Clone returns a deep copy of the structure.
func (s *Structure) Clone() *Structure {
	if s == nil {
		return nil
	}
	out := &Structure{
		ID:      s.ID,
		Context: s.Context,
		Meta:    s.Meta,
	}
	if s.Space != nil {
		out.Space = s.Space.Clone()
	}
	if len(s.Zones) > 0 {
		out.Zones = make([]*space.ReferenceZone, len(s.Zones))
		for i, z := range s.Zones {
			out.Zones[i] = z.Clone()
		}
	}
	if len(s.Proformes) > 0 {
		out.Proformes = make([]*proforme.Proforme, len(s.Proformes))
		for i, p := range s.Proformes {
			out.Proformes[i] = p.Clone()
		}
	}
	if len(s.Components) > 0 {
		out.Components = make([]*analyze.Component, len(s.Components))
		for i, c := range s.Components {
			out.Components[i] = c.Clone()
		}
	}
	if len(s.Relations) > 0 {
		out.Relations = make([]*layout.Relation, len(s.Relations))
		for i, r := range s.Relations {
			out.Relations[i] = r.Clone()
		}
	}
	out.Layout = s.Layout.Clone()
	if len(s.Meta.Optimization) > 0 {
		out.Meta.Optimization = append([]string(nil), s.Meta.Optimization...)
	}
	return out
}
