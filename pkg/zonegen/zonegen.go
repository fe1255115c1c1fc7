// Package zonegen synthesizes reference zones for a cultural context and
// resolves pairwise zone overlaps by priority.
//
// Zone generation is deterministic: the same context always yields the same
// zones in the same positions. Overlap resolution follows a deliberate
// asymmetric policy - zones are processed in priority order (lowest priority
// number first) and only the later, less important zone of an overlapping
// pair is ever displaced. Higher-priority zones are never moved by
// lower-priority ones.
package zonegen

import (
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/signkit/signspace/pkg/errors"
	"github.com/signkit/signspace/pkg/geom"
	"github.com/signkit/signspace/pkg/space"
)

const (
	// separationMargin is the extra separation applied beyond the minimum
	// non-overlapping distance when displacing a zone.
	separationMargin = 0.05

	// maxResolvePasses caps the re-scan loop for a single zone during
	// overlap resolution. Displacing a zone away from one neighbor can push
	// it into another, so each zone is re-checked until clean or capped.
	maxResolvePasses = 10
)

// Generator synthesizes reference zones for cultural contexts.
type Generator struct {
	Logger *log.Logger
}

// New creates a zone generator. A nil logger discards output.
func New(logger *log.Logger) *Generator {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Generator{Logger: logger}
}

// GenerateZones synthesizes all zones for the context, grouped by kind, and
// resolves overlaps. Kinds may yield zero zones depending on context fields.
func (g *Generator) GenerateZones(ctx space.CulturalContext) ([]*space.ReferenceZone, error) {
	ctx = ctx.Normalized()
	if ctx.Region == "" {
		return nil, errors.NewGeneration("cultural context has no region", map[string]any{
			"context_tag": ctx.ContextTag,
		})
	}

	var zones []*space.ReferenceZone
	for _, kind := range []space.ZoneKind{
		space.ZoneNeutral,
		space.ZoneActant,
		space.ZoneTimeline,
		space.ZoneTopic,
		space.ZoneAbstract,
		space.ZoneContainer,
	} {
		zones = append(zones, g.GenerateZonesByKind(ctx, kind)...)
	}

	g.OptimizeZoneLayout(zones)

	g.Logger.Debug("generated zones",
		"region", ctx.Region,
		"tag", ctx.ContextTag,
		"count", len(zones))
	return zones, nil
}

// GenerateZonesByKind synthesizes the zones of a single kind for the
// context. The result is position-raw: call OptimizeZoneLayout afterwards.
func (g *Generator) GenerateZonesByKind(ctx space.CulturalContext, kind space.ZoneKind) []*space.ReferenceZone {
	ctx = ctx.Normalized()
	switch kind {
	case space.ZoneNeutral:
		return neutralZones()
	case space.ZoneActant:
		return actantZones()
	case space.ZoneTimeline:
		return timelineZones(ctx)
	case space.ZoneTopic:
		return topicZones(ctx)
	case space.ZoneAbstract:
		return abstractZones(ctx)
	case space.ZoneContainer:
		return containerZones(ctx)
	default:
		return nil
	}
}

// OptimizeZoneLayout resolves pairwise overlaps in place. Zones are
// processed in ascending priority order (lower number = more important =
// protected). Each zone is tested against every previously placed zone; on
// overlap, the current zone is displaced along the center-to-center vector
// by the minimum separating distance plus a 5% safety margin. Coincident
// centers fall back to a fixed axis offset.
func (g *Generator) OptimizeZoneLayout(zones []*space.ReferenceZone) {
	ordered := make([]*space.ReferenceZone, len(zones))
	copy(ordered, zones)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority < ordered[j].Priority
		}
		return ordered[i].ID < ordered[j].ID
	})

	for i := 1; i < len(ordered); i++ {
		cur := ordered[i]
		for pass := 0; pass < maxResolvePasses; pass++ {
			moved := false
			for j := 0; j < i; j++ {
				if displaceFrom(cur, ordered[j]) {
					moved = true
				}
			}
			if !moved {
				break
			}
		}
	}
}

// displaceFrom moves cur away from the protected zone if they overlap.
// Reports whether cur was moved.
func displaceFrom(cur, protected *space.ReferenceZone) bool {
	if !cur.Overlaps(protected) {
		return false
	}

	required := cur.Area.HalfExtent() + protected.Area.HalfExtent()
	v := cur.Area.Center.Sub(protected.Area.Center)
	dist := v.Length()
	shift := (required - dist) * (1 + separationMargin)

	// Normalize falls back to the X axis for coincident centers.
	cur.Area.Center = cur.Area.Center.Add(v.Normalize().Scale(shift))
	return true
}

// =============================================================================
// Per-kind zone synthesis
// =============================================================================

func neutralZones() []*space.ReferenceZone {
	return []*space.ReferenceZone{{
		ID:           "neutral-center",
		Name:         "Neutral center",
		Kind:         space.ZoneNeutral,
		Area:         geom.Cube(geom.Point3D{}, 0.5),
		Significance: 1,
		Priority:     0,
		Meta:         space.NeutralMeta{},
	}}
}

// actantZones places the two canonical actant anchors: subject to the
// signer's left, object to the right.
func actantZones() []*space.ReferenceZone {
	return []*space.ReferenceZone{
		{
			ID:           "actant-left",
			Name:         "Actant left",
			Kind:         space.ZoneActant,
			Area:         geom.Cube(geom.Point3D{X: -0.7}, 0.4),
			Significance: 0.9,
			Priority:     1,
			Meta:         space.ActantMeta{Role: "subject"},
		},
		{
			ID:           "actant-right",
			Name:         "Actant right",
			Kind:         space.ZoneActant,
			Area:         geom.Cube(geom.Point3D{X: 0.7}, 0.4),
			Significance: 0.9,
			Priority:     1,
			Meta:         space.ActantMeta{Role: "object"},
		},
	}
}

func timelineZones(ctx space.CulturalContext) []*space.ReferenceZone {
	direction := space.DirLeftToRight
	// Regions writing right-to-left sign their timelines the same way.
	switch strings.ToLower(ctx.Region) {
	case "morocco", "tunisia", "jordan":
		direction = space.DirRightToLeft
	}

	segments := 3 // past, present, future
	if ctx.ContextTag == space.TagNarrative {
		segments = 5 // narratives subdivide the line further
	}

	return []*space.ReferenceZone{{
		ID:           "timeline",
		Name:         "Timeline",
		Kind:         space.ZoneTimeline,
		Area:         geom.Area3D{Center: geom.Point3D{Y: 0.45}, Width: 1.6, Height: 0.2, Depth: 0.2},
		Significance: 0.8,
		Priority:     2,
		Meta:         space.TimelineMeta{Direction: direction, Segments: segments},
	}}
}

func topicZones(ctx space.CulturalContext) []*space.ReferenceZone {
	field := "general"
	if ctx.ContextTag == space.TagTechnical {
		field = "technical"
	}
	return []*space.ReferenceZone{{
		ID:           "topic-upper",
		Name:         "Topic anchor",
		Kind:         space.ZoneTopic,
		Area:         geom.Cube(geom.Point3D{Y: 0.7, Z: -0.1}, 0.35),
		Significance: 0.7,
		Priority:     3,
		Meta:         space.TopicMeta{Field: field},
	}}
}

// abstractZones exist only for contexts that discuss abstractions.
func abstractZones(ctx space.CulturalContext) []*space.ReferenceZone {
	if ctx.ContextTag != space.TagTechnical && ctx.ContextTag != space.TagEducational {
		return nil
	}
	return []*space.ReferenceZone{{
		ID:           "abstract-high",
		Name:         "Abstract concepts",
		Kind:         space.ZoneAbstract,
		Area:         geom.Cube(geom.Point3D{X: 0.3, Y: 0.8, Z: -0.2}, 0.3),
		Significance: 0.6,
		Priority:     4,
		Meta:         space.AbstractMeta{Concept: "idea"},
	}}
}

// containerZones exist for narrative and educational contexts, which group
// referents into located sets.
func containerZones(ctx space.CulturalContext) []*space.ReferenceZone {
	if ctx.ContextTag != space.TagNarrative && ctx.ContextTag != space.TagEducational {
		return nil
	}
	return []*space.ReferenceZone{{
		ID:           "container-front",
		Name:         "Container front",
		Kind:         space.ZoneContainer,
		Area:         geom.Cube(geom.Point3D{Y: -0.3, Z: -0.4}, 0.45),
		Significance: 0.6,
		Priority:     3,
		Meta:         space.ContainerMeta{Capacity: 4},
	}}
}
