package proforme

import (
	"math"
	"testing"

	"github.com/signkit/signspace/pkg/geom"
	"github.com/signkit/signspace/pkg/space"
)

func TestNewRegistrySeedsBaseSet(t *testing.T) {
	r := NewRegistry()

	for _, id := range []string{"pf-flat", "pf-index", "pf-fist", "pf-claw", "pf-spread"} {
		if _, ok := r.Get(id); !ok {
			t.Errorf("base proforme %s missing from catalog", id)
		}
	}

	// Nothing is active until a context is prepared
	if got := len(r.Active()); got != 0 {
		t.Errorf("Active before PrepareForContext = %d, want 0", got)
	}
}

func TestAddRemove(t *testing.T) {
	r := NewRegistry()
	p := &Proforme{ID: "pf-test", Name: "Test", Represents: "thing", Associated: []string{"object"}}

	if !r.Add(p) {
		t.Fatal("Add should succeed for a fresh ID")
	}
	if r.Add(p) {
		t.Error("Add should refuse duplicate IDs")
	}
	if r.Add(nil) || r.Add(&Proforme{}) {
		t.Error("Add should refuse nil and empty-ID proformes")
	}

	if !r.Remove("pf-test") {
		t.Error("Remove should succeed for a known ID")
	}
	if r.Remove("pf-test") {
		t.Error("Remove should fail for an unknown ID")
	}
	if _, ok := r.Get("pf-test"); ok {
		t.Error("removed proforme should be gone from the catalog")
	}
}

func TestPrepareForContextActivation(t *testing.T) {
	r := NewRegistry()
	r.PrepareForContext(space.CulturalContext{Region: "france", FormalityLevel: 0.5})

	active := r.Active()
	if len(active) != 7 {
		t.Fatalf("Active for france = %d proformes, want 7 (5 base + 2 regional)", len(active))
	}
	if _, ok := r.Get("pf-fr-vehicle"); !ok {
		t.Error("french regional variants should be layered in")
	}

	// Switching region deactivates variants without removing them
	r.PrepareForContext(space.CulturalContext{Region: "quebec", FormalityLevel: 0.5})
	for _, p := range r.Active() {
		if p.ID == "pf-fr-vehicle" {
			t.Error("french variant should be inactive under a quebec context")
		}
	}
	if _, ok := r.Get("pf-fr-vehicle"); !ok {
		t.Error("deactivated variants should remain in the catalog")
	}
}

func TestPrepareForContextIdempotent(t *testing.T) {
	r := NewRegistry()
	r.PrepareForContext(space.CulturalContext{Region: "france"})
	first := len(r.Active())

	r.PrepareForContext(space.CulturalContext{Region: "france"})
	if got := len(r.Active()); got != first {
		t.Errorf("repeated PrepareForContext changed active count: %d -> %d", first, got)
	}
}

func TestByRepresentation(t *testing.T) {
	r := NewRegistry()
	r.PrepareForContext(space.CulturalContext{Region: "france"})

	// Case-insensitive primary concept match
	if got := r.ByRepresentation("Surface"); len(got) != 1 || got[0].ID != "pf-flat" {
		t.Errorf("ByRepresentation(Surface) unexpected: %v", got)
	}

	// Associated concepts match too
	if got := r.ByRepresentation("pointing"); len(got) != 1 || got[0].ID != "pf-index" {
		t.Errorf("ByRepresentation(pointing) unexpected: %v", got)
	}

	// Inactive proformes are excluded
	r.PrepareForContext(space.CulturalContext{Region: "quebec"})
	if got := r.ByRepresentation("vehicle"); len(got) != 0 {
		t.Errorf("inactive variant should not match, got %v", got)
	}
}

func TestFormalityAdaptation(t *testing.T) {
	r := NewRegistry()

	r.PrepareForContext(space.CulturalContext{Region: "france", FormalityLevel: 0.1})
	relaxed, _ := r.Get("pf-flat")
	lowTension := relaxed.Shape.Tension
	if math.Abs(lowTension-0.53) > geom.Tolerance {
		t.Errorf("tension at formality 0.1 = %v, want 0.53", lowTension)
	}

	r.PrepareForContext(space.CulturalContext{Region: "france", FormalityLevel: 0.9})
	tense, _ := r.Get("pf-flat")
	if math.Abs(tense.Shape.Tension-0.77) > geom.Tolerance {
		t.Errorf("tension at formality 0.9 = %v, want 0.77", tense.Shape.Tension)
	}
	if tense.Shape.Tension <= lowTension {
		t.Error("tension should rise with formality")
	}
}

func TestFormalityPositionAdaptation(t *testing.T) {
	r := NewRegistry()
	r.PrepareForContext(space.CulturalContext{Region: "france", FormalityLevel: 0.5})

	p, _ := r.Get("pf-index")
	if p.Pos == nil {
		t.Fatal("positioned proforme should gain an adapted position")
	}
	// X compressed toward the midline, Y raised, Z pulled toward the body
	if math.Abs(p.Pos.X-0.2*0.9) > geom.Tolerance {
		t.Errorf("adapted X = %v, want %v", p.Pos.X, 0.2*0.9)
	}
	if math.Abs(p.Pos.Y-(0.2+0.01)) > geom.Tolerance {
		t.Errorf("adapted Y = %v, want %v", p.Pos.Y, 0.21)
	}
	if math.Abs(p.Pos.Z-(-0.3-0.005)) > geom.Tolerance {
		t.Errorf("adapted Z = %v, want %v", p.Pos.Z, -0.305)
	}

	// DefaultPos is never mutated
	if *p.DefaultPos != (geom.Point3D{X: 0.2, Y: 0.2, Z: -0.3}) {
		t.Errorf("DefaultPos mutated: %+v", *p.DefaultPos)
	}
}

func TestHandshapeClamp(t *testing.T) {
	h := Handshape{Thumb: 1.5, Index: -0.2, Tension: 2}.Clamp()
	if h.Thumb != 1 || h.Index != 0 || h.Tension != 1 {
		t.Errorf("Clamp unexpected: %+v", h)
	}
}

func TestHandshapeIsZero(t *testing.T) {
	if !(Handshape{}).IsZero() {
		t.Error("empty handshape should be zero")
	}
	if (Handshape{Spread: 0.1}).IsZero() {
		t.Error("configured handshape should not be zero")
	}
}

func TestProformeClone(t *testing.T) {
	pos := geom.Point3D{X: 0.1}
	p := &Proforme{
		ID:         "pf-x",
		Associated: []string{"a"},
		DefaultPos: &pos,
		Pos:        &pos,
	}
	c := p.Clone()
	c.Associated[0] = "b"
	c.Pos.X = 9
	if p.Associated[0] != "a" {
		t.Error("Clone should copy the Associated slice")
	}
	if p.Pos.X == 9 {
		t.Error("Clone should copy position pointers")
	}
}
