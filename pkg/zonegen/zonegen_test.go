package zonegen

import (
	"testing"

	serrors "github.com/signkit/signspace/pkg/errors"
	"github.com/signkit/signspace/pkg/geom"
	"github.com/signkit/signspace/pkg/space"
)

func TestGenerateZonesRequiresRegion(t *testing.T) {
	g := New(nil)
	_, err := g.GenerateZones(space.CulturalContext{})
	if err == nil {
		t.Fatal("empty region should fail generation")
	}
	if serrors.GetCode(err) != serrors.ErrCodeGeneration {
		t.Errorf("error code = %s, want %s", serrors.GetCode(err), serrors.ErrCodeGeneration)
	}
}

func TestGenerateZonesConversational(t *testing.T) {
	g := New(nil)
	zones, err := g.GenerateZones(space.CulturalContext{Region: "france", FormalityLevel: 0.5})
	if err != nil {
		t.Fatalf("GenerateZones error: %v", err)
	}

	byID := indexZones(zones)
	for _, id := range []string{"neutral-center", "actant-left", "actant-right", "timeline", "topic-upper"} {
		if byID[id] == nil {
			t.Errorf("zone %s missing for conversational context", id)
		}
	}
	if byID["abstract-high"] != nil {
		t.Error("abstract zone should not exist for conversational contexts")
	}
	if byID["container-front"] != nil {
		t.Error("container zone should not exist for conversational contexts")
	}
}

func TestGenerateZonesByTag(t *testing.T) {
	g := New(nil)

	tests := []struct {
		tag       string
		abstract  bool
		container bool
	}{
		{space.TagConversational, false, false},
		{space.TagTechnical, true, false},
		{space.TagEducational, true, true},
		{space.TagNarrative, false, true},
	}
	for _, tt := range tests {
		zones, err := g.GenerateZones(space.CulturalContext{Region: "france", ContextTag: tt.tag})
		if err != nil {
			t.Fatalf("%s: GenerateZones error: %v", tt.tag, err)
		}
		byID := indexZones(zones)
		if got := byID["abstract-high"] != nil; got != tt.abstract {
			t.Errorf("%s: abstract zone present = %v, want %v", tt.tag, got, tt.abstract)
		}
		if got := byID["container-front"] != nil; got != tt.container {
			t.Errorf("%s: container zone present = %v, want %v", tt.tag, got, tt.container)
		}
	}
}

func TestActantPlacement(t *testing.T) {
	g := New(nil)
	zones := g.GenerateZonesByKind(space.CulturalContext{Region: "france"}, space.ZoneActant)
	if len(zones) != 2 {
		t.Fatalf("actant zones = %d, want 2", len(zones))
	}

	byID := indexZones(zones)
	left := byID["actant-left"]
	right := byID["actant-right"]
	if left.Area.Center.X != -0.7 || right.Area.Center.X != 0.7 {
		t.Errorf("actant centers = %v / %v, want -0.7 / 0.7",
			left.Area.Center.X, right.Area.Center.X)
	}
	for _, z := range []*space.ReferenceZone{left, right} {
		if z.Area.Width != 0.4 || z.Area.Height != 0.4 || z.Area.Depth != 0.4 {
			t.Errorf("%s dimensions = %v/%v/%v, want 0.4 cubes",
				z.ID, z.Area.Width, z.Area.Height, z.Area.Depth)
		}
	}
	if left.Meta.(space.ActantMeta).Role != "subject" {
		t.Error("left actant should anchor the subject")
	}
	if right.Meta.(space.ActantMeta).Role != "object" {
		t.Error("right actant should anchor the object")
	}
}

func TestTimelineDirection(t *testing.T) {
	g := New(nil)

	tests := []struct {
		region string
		want   string
	}{
		{"france", space.DirLeftToRight},
		{"quebec", space.DirLeftToRight},
		{"morocco", space.DirRightToLeft},
		{"tunisia", space.DirRightToLeft},
		{"jordan", space.DirRightToLeft},
	}
	for _, tt := range tests {
		zones := g.GenerateZonesByKind(space.CulturalContext{Region: tt.region}, space.ZoneTimeline)
		if len(zones) != 1 {
			t.Fatalf("%s: timeline zones = %d, want 1", tt.region, len(zones))
		}
		meta := zones[0].Meta.(space.TimelineMeta)
		if meta.Direction != tt.want {
			t.Errorf("%s: timeline direction = %s, want %s", tt.region, meta.Direction, tt.want)
		}
	}
}

func TestTimelineSegments(t *testing.T) {
	g := New(nil)

	plain := g.GenerateZonesByKind(space.CulturalContext{Region: "france"}, space.ZoneTimeline)
	if got := plain[0].Meta.(space.TimelineMeta).Segments; got != 3 {
		t.Errorf("default timeline segments = %d, want 3", got)
	}

	narrative := g.GenerateZonesByKind(
		space.CulturalContext{Region: "france", ContextTag: space.TagNarrative},
		space.ZoneTimeline)
	if got := narrative[0].Meta.(space.TimelineMeta).Segments; got != 5 {
		t.Errorf("narrative timeline segments = %d, want 5", got)
	}
}

func TestOptimizeZoneLayoutSeparates(t *testing.T) {
	g := New(nil)
	a := &space.ReferenceZone{
		ID:       "important",
		Kind:     space.ZoneNeutral,
		Area:     geom.Cube(geom.Point3D{}, 0.5),
		Priority: 0,
	}
	b := &space.ReferenceZone{
		ID:       "lesser",
		Kind:     space.ZoneTopic,
		Area:     geom.Cube(geom.Point3D{X: 0.1}, 0.5),
		Priority: 1,
	}

	g.OptimizeZoneLayout([]*space.ReferenceZone{a, b})

	if a.Area.Center != (geom.Point3D{}) {
		t.Errorf("higher-priority zone moved to %+v", a.Area.Center)
	}
	if a.Overlaps(b) {
		t.Error("zones should be separated after optimization")
	}
	if b.Area.Center.X <= 0.1 {
		t.Errorf("displaced zone should move outward, X = %v", b.Area.Center.X)
	}
}

func TestOptimizeZoneLayoutCoincidentCenters(t *testing.T) {
	g := New(nil)
	a := &space.ReferenceZone{ID: "a", Area: geom.Cube(geom.Point3D{}, 0.4), Priority: 0}
	b := &space.ReferenceZone{ID: "b", Area: geom.Cube(geom.Point3D{}, 0.4), Priority: 1}

	g.OptimizeZoneLayout([]*space.ReferenceZone{a, b})

	if a.Overlaps(b) {
		t.Error("coincident zones should be separated")
	}
	// Fallback displacement goes along +X
	if b.Area.Center.X <= 0 {
		t.Errorf("fallback displacement should be along +X, got %+v", b.Area.Center)
	}
}

func TestGeneratedZonesDoNotOverlap(t *testing.T) {
	g := New(nil)
	for _, tag := range []string{space.TagConversational, space.TagNarrative, space.TagTechnical, space.TagEducational} {
		zones, err := g.GenerateZones(space.CulturalContext{Region: "france", ContextTag: tag})
		if err != nil {
			t.Fatalf("%s: GenerateZones error: %v", tag, err)
		}
		for i := range zones {
			for j := i + 1; j < len(zones); j++ {
				if zones[i].Overlaps(zones[j]) {
					t.Errorf("%s: zones %s and %s overlap", tag, zones[i].ID, zones[j].ID)
				}
			}
		}
	}
}

func TestGenerateZonesDeterministic(t *testing.T) {
	g := New(nil)
	ctx := space.CulturalContext{Region: "france", ContextTag: space.TagNarrative}

	first, err := g.GenerateZones(ctx)
	if err != nil {
		t.Fatal(err)
	}
	second, err := g.GenerateZones(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if len(first) != len(second) {
		t.Fatalf("zone counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID || first[i].Area != second[i].Area {
			t.Errorf("zone %d differs across runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func indexZones(zones []*space.ReferenceZone) map[string]*space.ReferenceZone {
	byID := make(map[string]*space.ReferenceZone, len(zones))
	for _, z := range zones {
		byID[z.ID] = z
	}
	return byID
}
