// Package analyze converts raw text or structured records into typed
// spatial components and relations, builds a lightweight graph over them,
// and computes complexity and coherence metrics.
//
// The text path is deliberately simplistic: whitespace tokenization and
// substring classification, no linguistics. Malformed input never errors -
// an empty string produces a zero-component analysis with explicit warnings
// and a coherence score of exactly 0, so upstream validators can apply
// their own policy.
package analyze

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/signkit/signspace/pkg/geom"
	"github.com/signkit/signspace/pkg/layout"
)

// DefaultTimeBudget is the processing-time budget beyond which an analysis
// carries a warning. Exceeding the budget is advisory, never an error.
const DefaultTimeBudget = 200 * time.Millisecond

// Thresholds for advisory suggestions.
const (
	lowCoherence      = 0.5
	largeComponentSet = 20
	gridColumns       = 5
	gridSpacing       = 0.3
)

// Analyzer extracts spatial components from input and scores the result.
type Analyzer struct {
	Logger     *log.Logger
	TimeBudget time.Duration
}

// New creates an analyzer with the default time budget.
// A nil logger discards output.
func New(logger *log.Logger) *Analyzer {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Analyzer{Logger: logger, TimeBudget: DefaultTimeBudget}
}

// AnalyzeText extracts components from raw text: tokens are classified by
// substring, placed on a grid, and chained with temporal relations.
func (a *Analyzer) AnalyzeText(input string) *Analysis {
	start := time.Now()

	var components []*Component
	var relations []*layout.Relation
	for i, token := range strings.Fields(input) {
		components = append(components, &Component{
			ID:    fmt.Sprintf("cmp-%d", i),
			Kind:  classifyToken(token),
			Label: token,
			Pos:   gridPosition(i),
			Props: map[string]any{"token_index": i},
		})
		if i > 0 {
			relations = append(relations, &layout.Relation{
				ID:       fmt.Sprintf("seq-%d", i-1),
				Kind:     layout.RelationTemporal,
				Source:   fmt.Sprintf("cmp-%d", i-1),
				Target:   fmt.Sprintf("cmp-%d", i),
				Strength: 0.8,
				Props:    map[string]any{"order": i - 1},
			})
		}
	}

	return a.finish(components, relations, start)
}

// AnalyzeStructured maps an explicit component/relation list directly.
// Unknown component types default to the zone kind and unknown relation
// types to the semantic kind; positions come from the nested field or the
// flat x/y/z fields, defaulting to the origin.
func (a *Analyzer) AnalyzeStructured(input StructuredInput) *Analysis {
	start := time.Now()

	components := make([]*Component, 0, len(input.Components))
	for i, spec := range input.Components {
		id := spec.ID
		if id == "" {
			id = fmt.Sprintf("cmp-%d", i)
		}
		components = append(components, &Component{
			ID:    id,
			Kind:  classifyLabel(spec.Type),
			Label: spec.Label,
			Pos:   specPosition(spec),
			Props: spec.Props,
		})
	}

	relations := make([]*layout.Relation, 0, len(input.Relations))
	for i, spec := range input.Relations {
		id := spec.ID
		if id == "" {
			id = fmt.Sprintf("rel-%d", i)
		}
		relations = append(relations, &layout.Relation{
			ID:       id,
			Kind:     classifyRelation(spec.Type),
			Source:   spec.Source,
			Target:   spec.Target,
			Strength: geom.Clamp01(spec.Strength),
			Props:    map[string]any{},
		})
	}

	return a.finish(components, relations, start)
}

// finish builds the graph and metadata shared by both extraction paths.
func (a *Analyzer) finish(components []*Component, relations []*layout.Relation, start time.Time) *Analysis {
	analysis := &Analysis{
		ID:         uuid.NewString(),
		Components: components,
		Relations:  relations,
		Graph:      buildGraph(components, relations),
	}

	analysis.Meta = Metadata{
		Complexity:     complexityScore(components, analysis.Graph.Density),
		Coherence:      coherenceScore(components, relations),
		ComponentCount: len(components),
		RelationCount:  len(relations),
		ProcessingTime: time.Since(start),
	}
	a.advise(analysis)

	a.Logger.Debug("analyzed input",
		"components", len(components),
		"relations", len(relations),
		"coherence", analysis.Meta.Coherence)
	return analysis
}

// advise attaches warnings and suggestions to the finished analysis.
func (a *Analyzer) advise(analysis *Analysis) {
	m := &analysis.Meta
	if m.ComponentCount == 0 {
		m.Warnings = append(m.Warnings, "no spatial components extracted from input")
	}
	budget := a.TimeBudget
	if budget <= 0 {
		budget = DefaultTimeBudget
	}
	if m.ProcessingTime > budget {
		m.Warnings = append(m.Warnings, fmt.Sprintf(
			"processing took %s, over the %s budget", m.ProcessingTime, budget))
	}
	if m.ComponentCount > 0 && m.Coherence < lowCoherence {
		m.Suggestions = append(m.Suggestions,
			"low coherence: check that relations reference extracted components")
	}
	if m.ComponentCount > largeComponentSet {
		m.Suggestions = append(m.Suggestions,
			"large component set: consider splitting the utterance")
	}
}

// buildGraph derives the node/edge graph and its density metric.
// Density is edges / (n*(n-1)), the fraction of possible directed edges.
func buildGraph(components []*Component, relations []*layout.Relation) Graph {
	g := Graph{Nodes: make([]string, len(components))}
	for i, c := range components {
		g.Nodes[i] = c.ID
	}
	g.Edges = make([]Edge, len(relations))
	for i, r := range relations {
		g.Edges[i] = Edge{From: r.Source, To: r.Target, Kind: string(r.Kind)}
	}
	if n := len(components); n > 1 {
		g.Density = float64(len(relations)) / float64(n*(n-1))
	}
	return g
}

// complexityScore combines component type diversity with relation density.
func complexityScore(components []*Component, density float64) float64 {
	if len(components) == 0 {
		return 0
	}
	kinds := make(map[ComponentKind]bool)
	for _, c := range components {
		kinds[c.Kind] = true
	}
	diversity := float64(len(kinds)) / 4 // four recognized kinds
	return geom.Clamp01(0.6*diversity + 0.4*geom.Clamp01(density))
}

// coherenceScore is the fraction of relations whose endpoints both resolve
// to extracted components. No relations at all is perfectly coherent (1.0);
// no components at all scores 0.
func coherenceScore(components []*Component, relations []*layout.Relation) float64 {
	if len(components) == 0 {
		return 0
	}
	if len(relations) == 0 {
		return 1
	}
	ids := make(map[string]bool, len(components))
	for _, c := range components {
		ids[c.ID] = true
	}
	resolved := 0
	for _, r := range relations {
		if ids[r.Source] && ids[r.Target] {
			resolved++
		}
	}
	return float64(resolved) / float64(len(relations))
}

// classifyToken assigns a component kind by substring match. The keyword
// lists cover common French and English glosses for each component class.
func classifyToken(token string) ComponentKind {
	t := strings.ToLower(token)
	switch {
	case containsAny(t, "point", "index", "la-bas", "celui"):
		return ComponentPointing
	case containsAny(t, "regard", "gaze", "look", "yeux"):
		return ComponentGaze
	case containsAny(t, "aller", "move", "bouge", "deplace", "vers"):
		return ComponentMovement
	default:
		return ComponentZone
	}
}

// classifyLabel maps an explicit type label, defaulting unknowns to zone.
func classifyLabel(label string) ComponentKind {
	switch ComponentKind(strings.ToLower(label)) {
	case ComponentPointing, ComponentGaze, ComponentMovement, ComponentZone:
		return ComponentKind(strings.ToLower(label))
	default:
		return ComponentZone
	}
}

// classifyRelation maps an explicit relation label, defaulting unknowns to
// semantic.
func classifyRelation(label string) layout.RelationKind {
	k := layout.RelationKind(strings.ToLower(label))
	if layout.ValidRelationKinds[k] {
		return k
	}
	return layout.RelationSemantic
}

// gridPosition assigns successive components to a left-to-right,
// top-to-bottom grid in front of the signer.
func gridPosition(i int) geom.Point3D {
	return geom.Point3D{
		X: -0.6 + gridSpacing*float64(i%gridColumns),
		Y: 0.4 - gridSpacing*float64(i/gridColumns),
		Z: -0.2,
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// specPosition extracts a position from a component spec: the nested field
// wins, then the flat fields, defaulting to the origin.
func specPosition(spec ComponentSpec) geom.Point3D {
	if spec.Pos != nil {
		return *spec.Pos
	}
	return geom.Point3D{X: spec.X, Y: spec.Y, Z: spec.Z}
}
