package structure

import (
	"testing"

	"github.com/signkit/signspace/pkg/analyze"
	"github.com/signkit/signspace/pkg/geom"
	"github.com/signkit/signspace/pkg/layout"
	"github.com/signkit/signspace/pkg/proforme"
	"github.com/signkit/signspace/pkg/space"
)

func sample() *Structure {
	return &Structure{
		ID: "s-1",
		Zones: []*space.ReferenceZone{
			{ID: "neutral-center", Kind: space.ZoneNeutral, Area: geom.Cube(geom.Point3D{}, 0.5)},
		},
		Proformes:  []*proforme.Proforme{{ID: "pf-flat", Name: "Flat hand"}},
		Components: []*analyze.Component{{ID: "cmp-0", Kind: analyze.ComponentZone}},
		Relations: []*layout.Relation{
			{ID: "r1", Kind: layout.RelationSemantic, Source: "cmp-0", Target: "cmp-0", Strength: 0.5},
		},
		Layout: &layout.Layout{
			Elements: []*layout.Element{
				{ID: "e1", Kind: layout.ElementEntity, Props: map[string]any{"role": "subject"}},
			},
		},
		Meta: Meta{Optimization: []string{"zone-overlap-resolution"}},
	}
}

func TestLookups(t *testing.T) {
	s := sample()

	if z := s.Zone("neutral-center"); z == nil || z.Kind != space.ZoneNeutral {
		t.Errorf("Zone lookup = %+v", z)
	}
	if s.Zone("ghost") != nil {
		t.Error("missing zone should return nil")
	}
	if p := s.Proforme("pf-flat"); p == nil || p.Name != "Flat hand" {
		t.Errorf("Proforme lookup = %+v", p)
	}
	if s.Proforme("pf-ghost") != nil {
		t.Error("missing proforme should return nil")
	}
	if c := s.Component("cmp-0"); c == nil || c.Kind != analyze.ComponentZone {
		t.Errorf("Component lookup = %+v", c)
	}
	if s.Component("cmp-9") != nil {
		t.Error("missing component should return nil")
	}
}

func TestCloneIndependence(t *testing.T) {
	s := sample()
	c := s.Clone()

	// Mutating the clone must not touch the original anywhere
	c.Zones[0].Significance = 0.99
	c.Proformes[0].Name = "changed"
	c.Components[0].Label = "changed"
	c.Relations[0].Strength = 0
	c.Layout.Elements[0].Props["role"] = "changed"
	c.Meta.Optimization[0] = "changed"

	if s.Zones[0].Significance == 0.99 {
		t.Error("zone mutation leaked into the original")
	}
	if s.Proformes[0].Name == "changed" {
		t.Error("proforme mutation leaked into the original")
	}
	if s.Components[0].Label == "changed" {
		t.Error("component mutation leaked into the original")
	}
	if s.Relations[0].Strength == 0 {
		t.Error("relation mutation leaked into the original")
	}
	if s.Layout.Elements[0].Props["role"] == "changed" {
		t.Error("layout element mutation leaked into the original")
	}
	if s.Meta.Optimization[0] == "changed" {
		t.Error("optimization notes should be copied")
	}
}

func TestCloneNil(t *testing.T) {
	var s *Structure
	if s.Clone() != nil {
		t.Error("cloning nil should yield nil")
	}
}
