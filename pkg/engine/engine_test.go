package engine

import (
	"context"
	"testing"

	"github.com/signkit/signspace/pkg/analyze"
	"github.com/signkit/signspace/pkg/cache"
	serrors "github.com/signkit/signspace/pkg/errors"
	"github.com/signkit/signspace/pkg/geom"
	"github.com/signkit/signspace/pkg/layout"
	"github.com/signkit/signspace/pkg/space"
	"github.com/signkit/signspace/pkg/structure"
)

func TestGenerateStructure(t *testing.T) {
	mgr := NewManager(nil, nil, nil)
	ctx := context.Background()

	s, err := mgr.GenerateStructure(ctx, space.CulturalContext{
		Region:         "france",
		FormalityLevel: 0.5,
		ContextTag:     space.TagConversational,
	})
	if err != nil {
		t.Fatalf("GenerateStructure error: %v", err)
	}

	if s.ID == "" {
		t.Error("structure should have an ID")
	}
	if len(s.Zones) == 0 || len(s.Proformes) == 0 {
		t.Errorf("structure incomplete: %d zones, %d proformes", len(s.Zones), len(s.Proformes))
	}
	if s.Layout == nil || len(s.Layout.Elements) == 0 {
		t.Fatal("structure should carry a populated layout")
	}
	if s.Meta.Coherence <= 0 || s.Meta.Coherence > 1 {
		t.Errorf("coherence = %v, want (0,1]", s.Meta.Coherence)
	}
	if s.Meta.ElementCount != len(s.Layout.Elements) {
		t.Errorf("meta element count = %d, layout has %d", s.Meta.ElementCount, len(s.Layout.Elements))
	}
	if s.Meta.CreatedAt.IsZero() {
		t.Error("creation timestamp missing")
	}

	// The generated zone set must be overlap free
	for i := range s.Zones {
		for j := i + 1; j < len(s.Zones); j++ {
			if s.Zones[i].Overlaps(s.Zones[j]) {
				t.Errorf("zones %s and %s overlap", s.Zones[i].ID, s.Zones[j].ID)
			}
		}
	}
}

func TestGenerateRequiresRegion(t *testing.T) {
	mgr := NewManager(nil, nil, nil)
	_, err := mgr.GenerateStructure(context.Background(), space.CulturalContext{})
	if err == nil {
		t.Fatal("missing region should fail")
	}
	if serrors.GetCode(err) != serrors.ErrCodeGeneration {
		t.Errorf("error code = %s, want %s", serrors.GetCode(err), serrors.ErrCodeGeneration)
	}
}

func TestGenerateCacheHit(t *testing.T) {
	c := cache.NewMultiTier(cache.NewMemoryTier("fast", 8))
	defer c.Close()
	mgr := NewManager(c, nil, nil)
	ctx := context.Background()
	cctx := space.CulturalContext{Region: "france", FormalityLevel: 0.5}

	first, err := mgr.Generate(ctx, cctx)
	if err != nil {
		t.Fatalf("first Generate error: %v", err)
	}
	if first.CacheInfo.StructureHit {
		t.Error("first generation should not be a cache hit")
	}

	second, err := mgr.Generate(ctx, cctx)
	if err != nil {
		t.Fatalf("second Generate error: %v", err)
	}
	if !second.CacheInfo.StructureHit {
		t.Fatal("second generation should be served from cache")
	}
	if second.Structure.ID != first.Structure.ID {
		t.Error("cached structure should be identical to the original")
	}
	if len(second.Structure.Zones) != len(first.Structure.Zones) {
		t.Errorf("cached zones = %d, original %d",
			len(second.Structure.Zones), len(first.Structure.Zones))
	}

	// A different formality misses the cache
	third, err := mgr.Generate(ctx, space.CulturalContext{Region: "france", FormalityLevel: 0.9})
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.StructureHit {
		t.Error("different context should not hit the cache")
	}
}

func TestFormalSpaceZonePresent(t *testing.T) {
	mgr := NewManager(nil, nil, nil)
	s, err := mgr.GenerateStructure(context.Background(), space.CulturalContext{
		Region:         "france",
		FormalityLevel: 0.9,
	})
	if err != nil {
		t.Fatal(err)
	}
	if s.Zone("formal-space") == nil {
		t.Error("formal contexts should carry the formal-space zone")
	}
	if s.Zone("neutral-center") == nil {
		t.Error("neutral-center should always be present")
	}
}

func TestAnalyzeTextCached(t *testing.T) {
	c := cache.NewMultiTier(cache.NewMemoryTier("fast", 8))
	defer c.Close()
	mgr := NewManager(c, nil, nil)
	ctx := context.Background()

	first, err := mgr.AnalyzeText(ctx, "pointe maison regard")
	if err != nil {
		t.Fatalf("AnalyzeText error: %v", err)
	}
	second, err := mgr.AnalyzeText(ctx, "pointe maison regard")
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID {
		t.Error("identical input should return the cached analysis")
	}

	other, err := mgr.AnalyzeText(ctx, "different input")
	if err != nil {
		t.Fatal(err)
	}
	if other.ID == first.ID {
		t.Error("different input should produce a fresh analysis")
	}
}

func TestAnalyzeStructured(t *testing.T) {
	mgr := NewManager(nil, nil, nil)
	a, err := mgr.AnalyzeStructured(context.Background(), analyze.StructuredInput{
		Components: []analyze.ComponentSpec{
			{ID: "c1", Type: "pointing"},
			{ID: "c2", Type: "gaze"},
		},
		Relations: []analyze.RelationSpec{
			{ID: "r1", Type: "spatial", Source: "c1", Target: "c2", Strength: 0.7},
		},
	})
	if err != nil {
		t.Fatalf("AnalyzeStructured error: %v", err)
	}
	if len(a.Components) != 2 || len(a.Relations) != 1 {
		t.Errorf("analysis = %d components / %d relations, want 2 / 1",
			len(a.Components), len(a.Relations))
	}
	if a.Meta.Coherence != 1 {
		t.Errorf("coherence = %v, want 1", a.Meta.Coherence)
	}
}

func TestValidateGeneratedStructure(t *testing.T) {
	mgr := NewManager(nil, nil, nil)
	ctx := context.Background()

	s, err := mgr.GenerateStructure(ctx, space.CulturalContext{Region: "france", FormalityLevel: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	if err := mgr.ValidateStructure(ctx, s); err != nil {
		t.Errorf("freshly generated structure should validate: %v", err)
	}
}

func TestSelfValidateClean(t *testing.T) {
	mgr := NewManager(nil, nil, nil)
	s, err := mgr.GenerateStructure(context.Background(), space.CulturalContext{Region: "france", FormalityLevel: 0.5})
	if err != nil {
		t.Fatal(err)
	}

	report := mgr.SelfValidate(s)
	if !report.Valid {
		t.Errorf("generated structure should pass the integrity sweep: %v", report.Issues)
	}
	if report.Score != 1 {
		t.Errorf("clean score = %v, want 1", report.Score)
	}
}

func TestSelfValidateFindsIssues(t *testing.T) {
	mgr := NewManager(nil, nil, nil)
	s := &structure.Structure{
		Zones: []*space.ReferenceZone{
			{ID: "flat", Kind: space.ZoneTopic, Area: geom.Area3D{}, Significance: 2},
			{ID: "ok", Kind: space.ZoneNeutral, Area: geom.Cube(geom.Point3D{X: 2}, 0.3), Significance: 1},
		},
		Components: []*analyze.Component{
			{ID: "c1", Kind: analyze.ComponentPointing},
		},
		Relations: []*layout.Relation{
			{ID: "r1", Kind: "psychic", Source: "ghost", Target: "ghost", Strength: 1.5},
		},
	}

	report := mgr.SelfValidate(s)
	if report.Valid {
		t.Fatal("malformed structure should fail the sweep")
	}

	areas := make(map[string]int)
	for _, issue := range report.Issues {
		areas[issue.Area]++
	}
	// flat zone: non-positive dims + significance range
	if areas["zone"] < 2 {
		t.Errorf("zone issues = %d, want at least 2: %v", areas["zone"], report.Issues)
	}
	// relation: unknown kind, strength range, two unknown endpoints
	if areas["relation"] != 4 {
		t.Errorf("relation issues = %d, want 4: %v", areas["relation"], report.Issues)
	}
	// component: well-formed except for its empty property set
	if areas["component"] != 1 {
		t.Errorf("component issues = %d, want 1: %v", areas["component"], report.Issues)
	}
	if report.Score >= 1 {
		t.Errorf("score = %v, should be reduced", report.Score)
	}
}

func TestSelfValidateCrowding(t *testing.T) {
	mgr := NewManager(nil, nil, nil)
	s := &structure.Structure{
		Zones: []*space.ReferenceZone{
			{ID: "a", Kind: space.ZoneTopic, Area: geom.Cube(geom.Point3D{}, 0.4), Significance: 0.5},
			{ID: "b", Kind: space.ZoneTopic, Area: geom.Cube(geom.Point3D{X: 0.01}, 0.4), Significance: 0.5},
		},
	}

	report := mgr.SelfValidate(s)
	if report.Valid {
		t.Fatal("deeply overlapping zones should be flagged")
	}
	found := false
	for _, issue := range report.Issues {
		if issue.Area == "zone" && issue.Problem == "crowds zone b" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a crowding issue, got %v", report.Issues)
	}
}

func TestComplexityOf(t *testing.T) {
	if got := complexityOf(&layout.Layout{}); got != 0 {
		t.Errorf("empty layout complexity = %v, want 0", got)
	}

	l := &layout.Layout{
		Elements: []*layout.Element{
			{ID: "a", Kind: layout.ElementEntity},
			{ID: "b", Kind: layout.ElementLandmark},
		},
		Relations: []*layout.Relation{{ID: "r", Source: "a", Target: "b"}},
	}
	// diversity 2/4, density 1/2: 0.6*0.5 + 0.4*0.5 = 0.5
	if got := complexityOf(l); got != 0.5 {
		t.Errorf("complexity = %v, want 0.5", got)
	}
}
