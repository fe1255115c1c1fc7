package analyze

import (
	"time"

	"github.com/signkit/signspace/pkg/geom"
	"github.com/signkit/signspace/pkg/layout"
)

// ComponentKind classifies an extracted spatial component.
type ComponentKind string

// Component kinds recognized by the extractor. Unknown type labels on the
// structured path default to ComponentZone.
const (
	ComponentPointing ComponentKind = "pointing"
	ComponentGaze     ComponentKind = "gaze"
	ComponentMovement ComponentKind = "movement"
	ComponentZone     ComponentKind = "zone"
)

// Component is the analysis-path analogue of a layout element: a typed
// spatial unit extracted from raw or structured input.
type Component struct {
	ID    string         `json:"id" bson:"id"`
	Kind  ComponentKind  `json:"kind" bson:"kind"`
	Label string         `json:"label,omitempty" bson:"label,omitempty"`
	Pos   geom.Point3D   `json:"pos" bson:"pos"`
	Props map[string]any `json:"props,omitempty" bson:"props,omitempty"`
}

// Clone returns a deep copy of the component.
func (c *Component) Clone() *Component {
	if c == nil {
		return nil
	}
	out := *c
	if len(c.Props) > 0 {
		out.Props = make(map[string]any, len(c.Props))
		for k, v := range c.Props {
			out.Props[k] = v
		}
	}
	return &out
}

// Graph is the lightweight graph built over extracted components:
// nodes, edges, and a density metric of edges / (n*(n-1)).
type Graph struct {
	Nodes   []string `json:"nodes" bson:"nodes"` // component IDs
	Edges   []Edge   `json:"edges" bson:"edges"`
	Density float64  `json:"density" bson:"density"`
}

// Edge is a directed graph edge between two components.
type Edge struct {
	From string `json:"from" bson:"from"`
	To   string `json:"to" bson:"to"`
	Kind string `json:"kind" bson:"kind"`
}

// Metadata carries the computed metrics and advisory output of an analysis.
type Metadata struct {
	Complexity     float64       `json:"complexity" bson:"complexity"`
	Coherence      float64       `json:"coherence" bson:"coherence"`
	ComponentCount int           `json:"component_count" bson:"component_count"`
	RelationCount  int           `json:"relation_count" bson:"relation_count"`
	ProcessingTime time.Duration `json:"processing_time" bson:"processing_time"`
	Warnings       []string      `json:"warnings,omitempty" bson:"warnings,omitempty"`
	Suggestions    []string      `json:"suggestions,omitempty" bson:"suggestions,omitempty"`
}

// Analysis is the product of analyzing raw or structured input: typed
// components, the relations between them, the derived graph, and metrics.
type Analysis struct {
	ID         string             `json:"id" bson:"id"`
	Components []*Component       `json:"components" bson:"components"`
	Relations  []*layout.Relation `json:"relations" bson:"relations"`
	Graph      Graph              `json:"graph" bson:"graph"`
	Meta       Metadata           `json:"meta" bson:"meta"`
}

// Component returns the component with the given ID and true, or nil and
// false.
func (a *Analysis) Component(id string) (*Component, bool) {
	for _, c := range a.Components {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// StructuredInput is the explicit component/relation form of analyzer
// input, used when the caller has already segmented the utterance.
type StructuredInput struct {
	Components []ComponentSpec `json:"components" bson:"components"`
	Relations  []RelationSpec  `json:"relations" bson:"relations"`
}

// ComponentSpec describes one component in structured input. Position may
// be given nested (Pos) or flat (X/Y/Z); the nested form wins when both are
// present. Unknown Type labels default to the zone kind.
type ComponentSpec struct {
	ID    string         `json:"id" bson:"id"`
	Type  string         `json:"type" bson:"type"`
	Label string         `json:"label,omitempty" bson:"label,omitempty"`
	Pos   *geom.Point3D  `json:"pos,omitempty" bson:"pos,omitempty"`
	X     float64        `json:"x,omitempty" bson:"x,omitempty"`
	Y     float64        `json:"y,omitempty" bson:"y,omitempty"`
	Z     float64        `json:"z,omitempty" bson:"z,omitempty"`
	Props map[string]any `json:"props,omitempty" bson:"props,omitempty"`
}

// RelationSpec describes one relation in structured input. Unknown Type
// labels default to the semantic kind.
type RelationSpec struct {
	ID       string  `json:"id" bson:"id"`
	Type     string  `json:"type" bson:"type"`
	Source   string  `json:"source" bson:"source"`
	Target   string  `json:"target" bson:"target"`
	Strength float64 `json:"strength" bson:"strength"`
}
