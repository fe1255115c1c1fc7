// Package layout places semantic elements into generated reference zones,
// derives relations between them, and optimizes their positions.
//
// Generation is deterministic and runs in three phases: element synthesis
// per zone kind, relation derivation (hierarchy, alignment, containment),
// and an iterative, fixed-cap optimization pass (per-zone redistribution,
// global overlap resolution, salience promotion). The result is validated
// before being returned; an invalid layout raises a LayoutError.
package layout

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/signkit/signspace/pkg/errors"
	"github.com/signkit/signspace/pkg/geom"
	"github.com/signkit/signspace/pkg/space"
)

const (
	// maxOverlapIterations caps the global pairwise overlap-resolution
	// loop. The pass is deterministic and capped rather than physically
	// simulated so results are reproducible across platforms.
	maxOverlapIterations = 5

	// redistributionRadius is the circle radius used when a zone holds
	// more than one element.
	redistributionRadius = 0.15

	// salienceCount is how many top-importance elements are promoted
	// toward the viewer.
	salienceCount = 3
)

// Generator places elements into zones and derives their relations.
type Generator struct {
	Logger *log.Logger
}

// New creates a layout generator. A nil logger discards output.
func New(logger *log.Logger) *Generator {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Generator{Logger: logger}
}

// GenerateLayout synthesizes elements for every zone, derives relations,
// optimizes element positions, and validates the result. The zone slice
// must be non-empty; an empty input is a LayoutError.
func (g *Generator) GenerateLayout(zones []*space.ReferenceZone, ctx space.CulturalContext) (*Layout, error) {
	if len(zones) == 0 {
		return nil, errors.NewLayout("no zones to lay out")
	}

	l := &Layout{Zones: zones}
	for _, z := range zones {
		l.Elements = append(l.Elements, elementsForZone(z)...)
	}
	l.Relations = createRelations(l.Elements)

	g.optimizeElementPositions(l)

	if err := ValidateLayout(l); err != nil {
		return nil, err
	}

	g.Logger.Debug("generated layout",
		"zones", len(l.Zones),
		"elements", len(l.Elements),
		"relations", len(l.Relations))
	return l, nil
}

// elementsForZone synthesizes the elements appropriate to a zone's kind.
func elementsForZone(z *space.ReferenceZone) []*Element {
	switch z.Kind {
	case space.ZoneActant:
		props := map[string]any{}
		if m, ok := z.Meta.(space.ActantMeta); ok {
			props["role"] = m.Role
		}
		return []*Element{{
			ID:         z.ID + "-entity",
			Kind:       ElementEntity,
			Pos:        z.Area.Center,
			Dims:       &geom.Dims{Width: 0.2, Height: 0.2, Depth: 0.2},
			Importance: 0.8,
			Props:      props,
			ZoneID:     z.ID,
		}}

	case space.ZoneTimeline:
		segments := 3
		if m, ok := z.Meta.(space.TimelineMeta); ok && m.Segments > 0 {
			segments = m.Segments
		}
		// One landmark per time segment, evenly spaced along the width.
		elems := make([]*Element, 0, segments)
		for i := 0; i < segments; i++ {
			frac := (float64(i) + 0.5) / float64(segments)
			x := z.Area.Center.X - z.Area.Width/2 + z.Area.Width*frac
			elems = append(elems, &Element{
				ID:         fmt.Sprintf("%s-mark-%d", z.ID, i),
				Kind:       ElementLandmark,
				Pos:        geom.Point3D{X: x, Y: z.Area.Center.Y, Z: z.Area.Center.Z},
				Importance: 0.6,
				Props:      map[string]any{"segment": i},
				ZoneID:     z.ID,
			})
		}
		return elems

	case space.ZoneTopic:
		return []*Element{{
			ID:         z.ID + "-mark",
			Kind:       ElementLandmark,
			Pos:        z.Area.Center,
			Importance: 0.6,
			Props:      map[string]any{},
			ZoneID:     z.ID,
		}}

	case space.ZoneContainer:
		return []*Element{{
			ID:         z.ID + "-box",
			Kind:       ElementContainer,
			Pos:        z.Area.Center,
			Dims:       &geom.Dims{Width: z.Area.Width, Height: z.Area.Height, Depth: z.Area.Depth},
			Importance: 0.5,
			Props:      map[string]any{},
			ZoneID:     z.ID,
		}}

	case space.ZoneAbstract:
		return []*Element{{
			ID:         z.ID + "-concept",
			Kind:       ElementConcept,
			Pos:        z.Area.Center,
			Importance: 0.4,
			Props:      map[string]any{},
			ZoneID:     z.ID,
		}}

	default: // neutral zones anchor nothing
		return nil
	}
}

// createRelations derives relations between placed elements:
//   - hierarchy between every pair of entity elements
//   - alignment between every time landmark and every entity, carrying the
//     time segment as a property
//   - containment between container elements and any element geometrically
//     inside their volume
func createRelations(elements []*Element) []*Relation {
	var relations []*Relation
	nextID := 0
	add := func(kind RelationKind, src, tgt string, strength float64, props map[string]any) {
		relations = append(relations, &Relation{
			ID:       fmt.Sprintf("rel-%d", nextID),
			Kind:     kind,
			Source:   src,
			Target:   tgt,
			Strength: geom.Clamp01(strength),
			Props:    props,
		})
		nextID++
	}

	var entities, timeMarks, containers []*Element
	for _, e := range elements {
		switch {
		case e.Kind == ElementEntity:
			entities = append(entities, e)
		case e.Kind == ElementLandmark && hasProp(e, "segment"):
			timeMarks = append(timeMarks, e)
		case e.Kind == ElementContainer:
			containers = append(containers, e)
		}
	}

	for i := 0; i < len(entities); i++ {
		for j := i + 1; j < len(entities); j++ {
			add(RelationHierarchy, entities[i].ID, entities[j].ID, 0.7, map[string]any{})
		}
	}

	for _, mark := range timeMarks {
		for _, ent := range entities {
			add(RelationAlignment, mark.ID, ent.ID, 0.5, map[string]any{
				"segment": mark.Props["segment"],
			})
		}
	}

	for _, c := range containers {
		box := c.Box()
		for _, e := range elements {
			if e.ID == c.ID {
				continue
			}
			if box.Contains(e.Pos) {
				add(RelationContainment, c.ID, e.ID, 0.9, map[string]any{})
			}
		}
	}

	return relations
}

// optimizeElementPositions runs the three optimization phases in order.
func (g *Generator) optimizeElementPositions(l *Layout) {
	g.redistributeWithinZones(l)
	moved := g.resolveElementOverlaps(l)
	g.promoteSalientElements(l)
	if moved > 0 {
		g.Logger.Debug("resolved element overlaps", "displacements", moved)
	}
}

// redistributeWithinZones spreads multiple elements of one zone evenly on a
// fixed-radius circle around the zone center (in the X/Y plane). Zones with
// a single element are left alone - notably timeline landmarks keep their
// even spacing because each timeline element redistribution preserves
// determinism by sorting element IDs.
func (g *Generator) redistributeWithinZones(l *Layout) {
	byZone := make(map[string][]*Element)
	for _, e := range l.Elements {
		byZone[e.ZoneID] = append(byZone[e.ZoneID], e)
	}

	for zoneID, elems := range byZone {
		if len(elems) < 2 {
			continue
		}
		z, ok := l.Zone(zoneID)
		if !ok {
			continue
		}
		if z.Kind == space.ZoneTimeline {
			continue // timeline landmarks keep their linear spacing
		}
		sort.Slice(elems, func(i, j int) bool { return elems[i].ID < elems[j].ID })
		for i, e := range elems {
			angle := 2 * math.Pi * float64(i) / float64(len(elems))
			e.Pos = geom.Point3D{
				X: z.Area.Center.X + redistributionRadius*math.Cos(angle),
				Y: z.Area.Center.Y + redistributionRadius*math.Sin(angle),
				Z: z.Area.Center.Z,
			}
		}
	}
}

// resolveElementOverlaps runs up to maxOverlapIterations passes of global
// pairwise overlap detection. Two elements overlap when their centers are
// closer than the sum of their radii; both are displaced apart along the
// connecting vector, with the required separation split in inverse
// proportion to importance - the less important element moves further.
// Returns the number of displacements performed.
func (g *Generator) resolveElementOverlaps(l *Layout) int {
	moved := 0
	for iter := 0; iter < maxOverlapIterations; iter++ {
		anyOverlap := false
		for i := 0; i < len(l.Elements); i++ {
			for j := i + 1; j < len(l.Elements); j++ {
				a, b := l.Elements[i], l.Elements[j]
				required := a.Radius() + b.Radius()
				dist := a.Pos.Distance(b.Pos)
				if dist >= required-geom.Tolerance {
					continue
				}
				anyOverlap = true
				moved++

				gap := required - dist
				dir := b.Pos.Sub(a.Pos).Normalize()

				totalImp := a.Importance + b.Importance
				if totalImp <= 0 {
					totalImp = 1
				}
				// Inverse split: a's share of the move is b's share of
				// importance, and vice versa.
				aShare := b.Importance / totalImp
				bShare := a.Importance / totalImp

				a.Pos = a.Pos.Add(dir.Scale(-gap * aShare))
				b.Pos = b.Pos.Add(dir.Scale(gap * bShare))
			}
		}
		if !anyOverlap {
			break
		}
	}
	return moved
}

// promoteSalientElements moves the top elements by importance slightly
// forward (reduced depth) and up, favoring visual salience.
func (g *Generator) promoteSalientElements(l *Layout) {
	ranked := make([]*Element, len(l.Elements))
	copy(ranked, l.Elements)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Importance != ranked[j].Importance {
			return ranked[i].Importance > ranked[j].Importance
		}
		return ranked[i].ID < ranked[j].ID
	})

	for i := 0; i < salienceCount && i < len(ranked); i++ {
		ranked[i].Pos.Z -= 0.05
		ranked[i].Pos.Y += 0.03
	}
}

// ValidateLayout checks structural validity: non-empty zones and elements,
// every element's zone reference resolves, and every relation's endpoints
// resolve. Returns a LayoutError describing the first failure found.
func ValidateLayout(l *Layout) error {
	if len(l.Zones) == 0 {
		return errors.NewLayout("layout has no zones")
	}
	if len(l.Elements) == 0 {
		return errors.NewLayout("layout has no elements")
	}

	zoneIDs := make(map[string]bool, len(l.Zones))
	for _, z := range l.Zones {
		zoneIDs[z.ID] = true
	}
	elementIDs := make(map[string]bool, len(l.Elements))
	for _, e := range l.Elements {
		if !zoneIDs[e.ZoneID] {
			return errors.NewLayout("element %s references unknown zone %s", e.ID, e.ZoneID)
		}
		elementIDs[e.ID] = true
	}
	for _, r := range l.Relations {
		if !elementIDs[r.Source] {
			return errors.NewLayout("relation %s has unknown source %s", r.ID, r.Source)
		}
		if !elementIDs[r.Target] {
			return errors.NewLayout("relation %s has unknown target %s", r.ID, r.Target)
		}
	}
	return nil
}

func hasProp(e *Element, key string) bool {
	_, ok := e.Props[key]
	return ok
}
