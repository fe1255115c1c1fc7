package engine

import (
	"fmt"

	"github.com/signkit/signspace/pkg/layout"
	"github.com/signkit/signspace/pkg/space"
	"github.com/signkit/signspace/pkg/structure"
)

// crowdedFraction is how far two zone centers may close the gap between
// them before the pair is flagged as crowded rather than merely adjacent.
const crowdedFraction = 0.3

// Issue is one integrity finding from a self-validation sweep.
type Issue struct {
	Area    string `json:"area"`    // "zone", "proforme", "component", or "relation"
	ID      string `json:"id"`      // offending item, if identifiable
	Problem string `json:"problem"` // human-readable description
}

func (i Issue) String() string {
	if i.ID == "" {
		return fmt.Sprintf("%s: %s", i.Area, i.Problem)
	}
	return fmt.Sprintf("%s %s: %s", i.Area, i.ID, i.Problem)
}

// Report is the outcome of a self-validation sweep.
type Report struct {
	Valid  bool    `json:"valid"`
	Score  float64 `json:"score"` // 1 minus the fraction of items with issues
	Issues []Issue `json:"issues,omitempty"`
}

// SelfValidate runs a non-throwing integrity sweep over a structure: every
// zone, proforme, component, and relation is checked and all findings are
// collected rather than failing on the first. Use ValidateStructure for the
// threshold-gated quality check.
func (m *Manager) SelfValidate(s *structure.Structure) Report {
	var issues []Issue
	items := 0

	for _, z := range s.Zones {
		items++
		issues = append(issues, checkZone(z)...)
	}
	issues = append(issues, crowdedZones(s.Zones)...)

	for _, p := range s.Proformes {
		items++
		switch {
		case p.ID == "":
			issues = append(issues, Issue{Area: "proforme", Problem: "missing id"})
		case p.Name == "":
			issues = append(issues, Issue{Area: "proforme", ID: p.ID, Problem: "missing name"})
		case p.Shape.IsZero():
			issues = append(issues, Issue{Area: "proforme", ID: p.ID, Problem: "empty handshape"})
		case p.Orient.Palm == "" || p.Orient.Fingers == "":
			issues = append(issues, Issue{Area: "proforme", ID: p.ID, Problem: "incomplete orientation"})
		}
	}

	for _, c := range s.Components {
		items++
		switch {
		case c.ID == "":
			issues = append(issues, Issue{Area: "component", Problem: "missing id"})
		case c.Kind == "":
			issues = append(issues, Issue{Area: "component", ID: c.ID, Problem: "missing kind"})
		case len(c.Props) == 0:
			issues = append(issues, Issue{Area: "component", ID: c.ID, Problem: "empty properties"})
		}
	}

	for _, r := range s.Relations {
		items++
		issues = append(issues, checkRelation(s, r)...)
	}

	score := 1.0
	if items > 0 {
		score = 1 - float64(len(issues))/float64(items)
		if score < 0 {
			score = 0
		}
	}
	return Report{Valid: len(issues) == 0, Score: score, Issues: issues}
}

func checkZone(z *space.ReferenceZone) []Issue {
	var issues []Issue
	if z.ID == "" {
		issues = append(issues, Issue{Area: "zone", Problem: "missing id"})
	}
	if !space.ValidZoneKinds[z.Kind] {
		issues = append(issues, Issue{Area: "zone", ID: z.ID, Problem: fmt.Sprintf("unknown kind %q", z.Kind)})
	}
	if z.Area.Width <= 0 || z.Area.Height <= 0 || z.Area.Depth <= 0 {
		issues = append(issues, Issue{Area: "zone", ID: z.ID, Problem: "non-positive dimensions"})
	}
	if z.Significance < 0 || z.Significance > 1 {
		issues = append(issues, Issue{Area: "zone", ID: z.ID, Problem: "significance outside [0,1]"})
	}
	return issues
}

// crowdedZones flags zone pairs whose centers sit deep inside each other's
// volumes. Mild overlap is resolved during generation; deep overlap in a
// finished structure means conflict resolution failed or was bypassed.
func crowdedZones(zones []*space.ReferenceZone) []Issue {
	var issues []Issue
	for i := 0; i < len(zones); i++ {
		for j := i + 1; j < len(zones); j++ {
			a, b := zones[i], zones[j]
			required := a.Area.HalfExtent() + b.Area.HalfExtent()
			if required <= 0 {
				continue
			}
			dist := a.Area.Center.Distance(b.Area.Center)
			if dist < required*crowdedFraction {
				issues = append(issues, Issue{
					Area:    "zone",
					ID:      a.ID,
					Problem: fmt.Sprintf("crowds zone %s", b.ID),
				})
			}
		}
	}
	return issues
}

func checkRelation(s *structure.Structure, r *layout.Relation) []Issue {
	var issues []Issue
	if r.ID == "" {
		issues = append(issues, Issue{Area: "relation", Problem: "missing id"})
	}
	if !layout.ValidRelationKinds[r.Kind] {
		issues = append(issues, Issue{Area: "relation", ID: r.ID, Problem: fmt.Sprintf("unknown kind %q", r.Kind)})
	}
	if r.Strength < 0 || r.Strength > 1 {
		issues = append(issues, Issue{Area: "relation", ID: r.ID, Problem: "strength outside [0,1]"})
	}
	if !endpointExists(s, r.Source) {
		issues = append(issues, Issue{Area: "relation", ID: r.ID, Problem: fmt.Sprintf("unknown source %s", r.Source)})
	}
	if !endpointExists(s, r.Target) {
		issues = append(issues, Issue{Area: "relation", ID: r.ID, Problem: fmt.Sprintf("unknown target %s", r.Target)})
	}
	return issues
}

// endpointExists resolves a relation endpoint against layout elements and
// analyzed components.
func endpointExists(s *structure.Structure, id string) bool {
	if id == "" {
		return false
	}
	if s.Layout != nil {
		if _, ok := s.Layout.Element(id); ok {
			return true
		}
	}
	return s.Component(id) != nil
}
