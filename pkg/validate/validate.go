// Package validate scores the internal coherence of generated spatial
// structures and gates them against an acceptance threshold.
//
// Three metrics are computed: zone coherence (spatial consistency of the
// resolved zone layout), relation consistency (reference stability of the
// relation set), and proforme usage (contextual correctness of the active
// hand configurations). ValidateStructure gates each metric individually;
// MeasureCoherence combines them into the composite coherence score carried
// on structure metadata.
package validate

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/signkit/signspace/pkg/errors"
	"github.com/signkit/signspace/pkg/geom"
	"github.com/signkit/signspace/pkg/layout"
	"github.com/signkit/signspace/pkg/proforme"
	"github.com/signkit/signspace/pkg/space"
)

// DefaultThreshold is the minimum acceptable value for each metric.
const DefaultThreshold = 0.85

// Metric names used in score maps and validation errors.
const (
	MetricZoneCoherence       = "zone_coherence"
	MetricRelationConsistency = "relation_consistency"
	MetricProformeUsage       = "proforme_usage"
)

// Weights of the composite coherence score.
const (
	weightSpatial   = 0.4
	weightReference = 0.3
	weightProforme  = 0.3
)

// Scoring constants.
const (
	zoneBaseline         = 0.7  // starting point for zone coherence
	zoneCoverageWeight   = 0.3  // weight of the zone-count coverage bonus
	zoneCoverageTarget   = 5.0  // zone count at which coverage saturates
	overlapPenaltyScale  = 0.1  // penalty per fully-encroached zone pair
	danglingPenalty      = 0.2  // penalty per relation with a missing endpoint
	contradictionPenalty = 0.15 // penalty per over-constrained element pair
	proformeBaseline     = 0.9  // fixed high score absent contradicting evidence
	proformePenalty      = 0.1  // deduction per malformed active proforme
)

// Validator scores layouts and proforme selections.
type Validator struct {
	Logger    *log.Logger
	Threshold float64
}

// New creates a validator with the default threshold.
// A nil logger discards output.
func New(logger *log.Logger) *Validator {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Validator{Logger: logger, Threshold: DefaultThreshold}
}

// ValidateZoneCoherence scores the spatial consistency of a resolved zone
// layout: a 0.7 baseline, minus a penalty per overlapping zone pair
// proportional to the encroachment, plus a coverage bonus growing with zone
// count and saturating at five zones.
func (v *Validator) ValidateZoneCoherence(zones []*space.ReferenceZone) float64 {
	score := zoneBaseline

	for i := 0; i < len(zones); i++ {
		for j := i + 1; j < len(zones); j++ {
			a, b := zones[i].Area, zones[j].Area
			required := a.HalfExtent() + b.HalfExtent()
			if required <= 0 {
				continue
			}
			dist := a.Center.Distance(b.Center)
			if dist < required-geom.Tolerance {
				encroachment := (required - dist) / required
				score -= overlapPenaltyScale * encroachment
			}
		}
	}

	coverage := float64(len(zones)) / zoneCoverageTarget
	if coverage > 1 {
		coverage = 1
	}
	score += zoneCoverageWeight * coverage

	return geom.Clamp01(score)
}

// ValidateRelationConsistency scores reference stability: starting at 1.0,
// each relation with a dangling endpoint costs 0.2, and each (source,
// target) pair carrying more than two distinct relation kinds - a
// contradiction signal - costs a further penalty.
func (v *Validator) ValidateRelationConsistency(elements []*layout.Element, relations []*layout.Relation) float64 {
	score := 1.0

	ids := make(map[string]bool, len(elements))
	for _, e := range elements {
		ids[e.ID] = true
	}

	kindsByPair := make(map[[2]string]map[layout.RelationKind]bool)
	for _, r := range relations {
		if !ids[r.Source] || !ids[r.Target] {
			score -= danglingPenalty
			continue
		}
		pair := [2]string{r.Source, r.Target}
		if kindsByPair[pair] == nil {
			kindsByPair[pair] = make(map[layout.RelationKind]bool)
		}
		kindsByPair[pair][r.Kind] = true
	}

	for _, kinds := range kindsByPair {
		if len(kinds) > 2 {
			score -= contradictionPenalty
		}
	}

	return geom.Clamp01(score)
}

// ValidateProformeUsage scores contextual correctness of the active
// proformes. The check is intentionally simple: a fixed high score, lowered
// only by contradicting evidence - an active proforme with no handshape or
// an incomplete orientation.
func (v *Validator) ValidateProformeUsage(proformes []*proforme.Proforme) float64 {
	score := proformeBaseline
	for _, p := range proformes {
		if p.Shape.IsZero() || p.Orient.Palm == "" || p.Orient.Fingers == "" {
			score -= proformePenalty
		}
	}
	return geom.Clamp01(score)
}

// Scores computes the three per-metric scores for a layout and proforme
// selection.
func (v *Validator) Scores(l *layout.Layout, proformes []*proforme.Proforme) map[string]float64 {
	return map[string]float64{
		MetricZoneCoherence:       v.ValidateZoneCoherence(l.Zones),
		MetricRelationConsistency: v.ValidateRelationConsistency(l.Elements, l.Relations),
		MetricProformeUsage:       v.ValidateProformeUsage(proformes),
	}
}

// MeasureCoherence combines spatial consistency, reference stability, and
// proforme usage into the composite coherence score with fixed weights
// (0.4 / 0.3 / 0.3).
func (v *Validator) MeasureCoherence(l *layout.Layout, proformes []*proforme.Proforme) float64 {
	s := v.Scores(l, proformes)
	return geom.Clamp01(weightSpatial*s[MetricZoneCoherence] +
		weightReference*s[MetricRelationConsistency] +
		weightProforme*s[MetricProformeUsage])
}

// ValidateStructure computes all three scores and returns a
// ValidationError carrying the itemized breakdown if any metric falls below
// the threshold.
func (v *Validator) ValidateStructure(l *layout.Layout, proformes []*proforme.Proforme) error {
	threshold := v.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	scores := v.Scores(l, proformes)
	for _, score := range scores {
		if score < threshold {
			v.Logger.Debug("structure failed validation", "scores", scores, "threshold", threshold)
			return errors.NewValidation(scores, threshold)
		}
	}
	return nil
}
