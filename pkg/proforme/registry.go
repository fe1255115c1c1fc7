package proforme

import (
	"strings"

	"github.com/signkit/signspace/pkg/geom"
	"github.com/signkit/signspace/pkg/space"
)

// Registry is the proforme catalog plus a concept index for lookup by
// represented meaning. Base proformes are seeded once at construction;
// regional variants are layered in by PrepareForContext.
type Registry struct {
	catalog map[string]*Proforme
	// byConcept maps lowercased concepts to proforme IDs. A proforme is
	// indexed under its primary concept and every associated concept.
	byConcept map[string][]string
	active    map[string]bool
	baseIDs   []string
	loaded    map[string]bool // regions already layered in
}

// NewRegistry creates a registry seeded with the base proforme set.
func NewRegistry() *Registry {
	r := &Registry{
		catalog:   make(map[string]*Proforme),
		byConcept: make(map[string][]string),
		active:    make(map[string]bool),
		loaded:    make(map[string]bool),
	}
	for _, p := range baseProformes() {
		r.Add(p)
		r.baseIDs = append(r.baseIDs, p.ID)
	}
	return r
}

// Add registers a proforme in the catalog and the concept index atomically.
// Adding a duplicate ID returns false without mutating either.
func (r *Registry) Add(p *Proforme) bool {
	if p == nil || p.ID == "" {
		return false
	}
	if _, exists := r.catalog[p.ID]; exists {
		return false
	}
	r.catalog[p.ID] = p
	for _, concept := range p.concepts() {
		r.byConcept[concept] = append(r.byConcept[concept], p.ID)
	}
	return true
}

// Remove deletes a proforme from the catalog and the concept index
// atomically. Returns false if the ID is unknown.
func (r *Registry) Remove(id string) bool {
	p, exists := r.catalog[id]
	if !exists {
		return false
	}
	delete(r.catalog, id)
	delete(r.active, id)
	for _, concept := range p.concepts() {
		ids := r.byConcept[concept]
		for i, pid := range ids {
			if pid == id {
				r.byConcept[concept] = append(ids[:i], ids[i+1:]...)
				break
			}
		}
		if len(r.byConcept[concept]) == 0 {
			delete(r.byConcept, concept)
		}
	}
	return true
}

// Get returns the proforme with the given ID and true, or nil and false.
func (r *Registry) Get(id string) (*Proforme, bool) {
	p, ok := r.catalog[id]
	return p, ok
}

// Active returns the currently active proformes in unspecified order.
func (r *Registry) Active() []*Proforme {
	out := make([]*Proforme, 0, len(r.active))
	for id := range r.active {
		if p, ok := r.catalog[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// ByRepresentation returns the active proformes representing the given
// concept. The lookup is case-insensitive and matches both primary and
// associated concepts.
func (r *Registry) ByRepresentation(concept string) []*Proforme {
	var out []*Proforme
	for _, id := range r.byConcept[strings.ToLower(concept)] {
		if !r.active[id] {
			continue
		}
		if p, ok := r.catalog[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// PrepareForContext readies the registry for a cultural context: it clears
// the active selection, re-activates all base proformes, layers in the
// region's variants (idempotent - loading a region twice does not
// duplicate), and applies the formality adaptation pass.
func (r *Registry) PrepareForContext(ctx space.CulturalContext) {
	ctx = ctx.Normalized()

	r.active = make(map[string]bool, len(r.baseIDs))
	for _, id := range r.baseIDs {
		r.active[id] = true
	}

	region := strings.ToLower(ctx.Region)
	if !r.loaded[region] {
		for _, p := range regionalProformes(region) {
			r.Add(p)
		}
		r.loaded[region] = true
	}
	for id, p := range r.catalog {
		if p.inRegion(region) {
			r.active[id] = true
		}
	}

	r.adaptFormality(ctx.FormalityLevel)
}

// adaptFormality applies the continuous formality adaptation to every
// active proforme: tension rises with formality, and positioned proformes
// are pulled toward the body and slightly raised.
func (r *Registry) adaptFormality(formality float64) {
	for id := range r.active {
		p, ok := r.catalog[id]
		if !ok {
			continue
		}
		p.Shape.Tension = geom.Clamp01(0.5 + formality*0.3)

		if p.DefaultPos == nil {
			continue
		}
		pos := *p.DefaultPos
		pos.X *= 1 - formality*0.2
		pos.Y += formality * 0.02
		pos.Z -= formality * 0.01
		p.Pos = &pos
	}
}

// concepts returns the lowercased index keys for a proforme.
func (p *Proforme) concepts() []string {
	out := make([]string, 0, 1+len(p.Associated))
	if p.Represents != "" {
		out = append(out, strings.ToLower(p.Represents))
	}
	for _, c := range p.Associated {
		out = append(out, strings.ToLower(c))
	}
	return out
}

func (p *Proforme) inRegion(region string) bool {
	for _, r := range p.Regions {
		if strings.ToLower(r) == region {
			return true
		}
	}
	return false
}

// baseProformes returns the classic set shared by all regions.
func baseProformes() []*Proforme {
	return []*Proforme{
		{
			ID:         "pf-flat",
			Name:       "Flat hand",
			Shape:      Handshape{Spread: 0.1, Tension: 0.5},
			Orient:     space.Orientation{Palm: space.DirDown, Fingers: space.DirForward},
			Represents: "surface",
			Associated: []string{"table", "wall", "flat object"},
			DefaultPos: &geom.Point3D{Y: 0.1, Z: -0.3},
		},
		{
			ID:         "pf-index",
			Name:       "Extended index",
			Shape:      Handshape{Thumb: 0.8, Middle: 1, Ring: 1, Pinky: 1, Tension: 0.5},
			Orient:     space.Orientation{Palm: space.DirDown, Fingers: space.DirForward},
			Represents: "person",
			Associated: []string{"pointing", "thin object"},
			DefaultPos: &geom.Point3D{X: 0.2, Y: 0.2, Z: -0.3},
		},
		{
			ID:         "pf-fist",
			Name:       "Closed fist",
			Shape:      Handshape{Thumb: 0.9, Index: 1, Middle: 1, Ring: 1, Pinky: 1, Tension: 0.5},
			Orient:     space.Orientation{Palm: space.DirForward, Fingers: space.DirUp},
			Represents: "compact object",
			Associated: []string{"stone", "head"},
		},
		{
			ID:         "pf-claw",
			Name:       "Clawed hand",
			Shape:      Handshape{Thumb: 0.5, Index: 0.5, Middle: 0.5, Ring: 0.5, Pinky: 0.5, Spread: 0.8, Tension: 0.5},
			Orient:     space.Orientation{Palm: space.DirDown, Fingers: space.DirDown},
			Represents: "grasping",
			Associated: []string{"claw", "holding"},
		},
		{
			ID:         "pf-spread",
			Name:       "Spread hand",
			Shape:      Handshape{Spread: 1, Tension: 0.5},
			Orient:     space.Orientation{Palm: space.DirForward, Fingers: space.DirUp},
			Represents: "crowd",
			Associated: []string{"many", "group"},
		},
	}
}

// regionalProformes returns the variants layered in for a region. Unknown
// regions have no variants, which is not an error.
func regionalProformes(region string) []*Proforme {
	switch region {
	case "france":
		return []*Proforme{
			{
				ID:         "pf-fr-vehicle",
				Name:       "LSF vehicle classifier",
				Shape:      Handshape{Ring: 1, Pinky: 1, Spread: 0.3, Tension: 0.5},
				Orient:     space.Orientation{Palm: space.DirDown, Fingers: space.DirForward},
				Represents: "vehicle",
				Associated: []string{"car", "transport"},
				Regions:    []string{"france"},
				DefaultPos: &geom.Point3D{X: -0.2, Y: 0, Z: -0.4},
			},
			{
				ID:         "pf-fr-duo",
				Name:       "LSF dual-person classifier",
				Shape:      Handshape{Thumb: 0.8, Ring: 1, Pinky: 1, Spread: 0.5, Tension: 0.5},
				Orient:     space.Orientation{Palm: space.DirForward, Fingers: space.DirUp},
				Represents: "two persons",
				Associated: []string{"couple", "pair"},
				Regions:    []string{"france"},
			},
		}
	case "quebec":
		return []*Proforme{
			{
				ID:         "pf-qc-animal",
				Name:       "LSQ small-animal classifier",
				Shape:      Handshape{Thumb: 0.4, Index: 0.6, Middle: 0.6, Ring: 0.6, Pinky: 0.6, Spread: 0.4, Tension: 0.5},
				Orient:     space.Orientation{Palm: space.DirDown, Fingers: space.DirForward},
				Represents: "small animal",
				Associated: []string{"cat", "squirrel"},
				Regions:    []string{"quebec"},
			},
		}
	default:
		return nil
	}
}
