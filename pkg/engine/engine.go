// Package engine provides the core structure engine for signspace.
//
// This package implements the complete context → zones → layout → metrics
// path that can be used by CLI, API, and worker components. By centralizing
// this logic, we ensure consistent behavior across all entry points and
// avoid code duplication.
//
// # Architecture
//
// The engine runs three operations:
//
//  1. Generate: Build a complete spatial structure for a cultural context
//  2. Analyze: Extract spatial components and relations from input
//  3. Validate: Score a structure's coherence against the quality threshold
//
// Each operation can be run independently; generation composes the zone
// generator, the proforme registry, and the layout generator.
//
// # Usage
//
// Create a Manager and generate a structure:
//
//	mgr := engine.NewManager(cache, nil, logger)
//	s, err := mgr.GenerateStructure(ctx, space.CulturalContext{
//	    Region:         "france",
//	    FormalityLevel: 0.5,
//	    ContextTag:     space.TagConversational,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(s.Meta.Coherence)
package engine

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/signkit/signspace/pkg/analyze"
	"github.com/signkit/signspace/pkg/cache"
	"github.com/signkit/signspace/pkg/geom"
	"github.com/signkit/signspace/pkg/layout"
	"github.com/signkit/signspace/pkg/observability"
	"github.com/signkit/signspace/pkg/proforme"
	"github.com/signkit/signspace/pkg/sio"
	"github.com/signkit/signspace/pkg/space"
	"github.com/signkit/signspace/pkg/structure"
	"github.com/signkit/signspace/pkg/validate"
	"github.com/signkit/signspace/pkg/zonegen"
)

// =============================================================================
// Manager - Engine Facade
// =============================================================================

// Manager orchestrates the structure engine: zone generation, proforme
// preparation, layout, analysis, and validation, with cached results.
//
// A Manager is safe for concurrent use: each generation builds its own
// signing space and registry state is prepared per call under the
// registry's single-writer discipline, so callers sharing a Manager must
// serialize PrepareForContext-affecting operations themselves. The cache
// and all read paths are concurrency-safe.
type Manager struct {
	cache  cache.Cache
	keyer  cache.Keyer
	logger *log.Logger

	zones     *zonegen.Generator
	layouts   *layout.Generator
	analyzer  *analyze.Analyzer
	validator *validate.Validator
}

// NewManager creates a manager. A nil cache disables caching, a nil keyer
// uses the default key scheme, and a nil logger discards output.
func NewManager(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Manager {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Manager{
		cache:     c,
		keyer:     keyer,
		logger:    logger,
		zones:     zonegen.New(logger),
		layouts:   layout.New(logger),
		analyzer:  analyze.New(logger),
		validator: validate.New(logger),
	}
}

// CacheInfo tracks which engine operations were served from cache.
type CacheInfo struct {
	StructureHit bool // Whether the structure came from cache
	AnalysisHit  bool // Whether the analysis came from cache
}

// Stats contains generation statistics.
type Stats struct {
	ZoneCount     int
	ElementCount  int
	RelationCount int
	GenerateTime  time.Duration
}

// Result contains the outputs of a generation run.
type Result struct {
	// Structure is the generated spatial structure.
	Structure *structure.Structure

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks whether the structure came from cache.
	CacheInfo CacheInfo
}

// =============================================================================
// Generation
// =============================================================================

// GenerateStructure builds a complete spatial structure for a cultural
// context. Identical contexts produce identical structures; results are
// cached under a key derived from the context's generation-driving fields.
func (m *Manager) GenerateStructure(ctx context.Context, cctx space.CulturalContext) (*structure.Structure, error) {
	res, err := m.Generate(ctx, cctx)
	if err != nil {
		return nil, err
	}
	return res.Structure, nil
}

// Generate builds a spatial structure and reports stats and cache usage.
func (m *Manager) Generate(ctx context.Context, cctx space.CulturalContext) (*Result, error) {
	cctx = cctx.Normalized()
	start := time.Now()
	observability.Engine().OnGenerateStart(ctx, cctx.Region, cctx.ContextTag)

	key := m.keyer.StructureKey(cctx.Region, cctx.FormalityLevel, cctx.ContextTag)
	if data, ok, err := m.cache.Get(ctx, key); err == nil && ok {
		if s, err := sio.UnmarshalStructure(data); err == nil {
			m.logger.Debug("structure cache hit", "key", key)
			observability.Engine().OnGenerateComplete(ctx, cctx.Region, cctx.ContextTag, len(s.Zones), time.Since(start), nil)
			return &Result{
				Structure: s,
				Stats:     statsFor(s, time.Since(start)),
				CacheInfo: CacheInfo{StructureHit: true},
			}, nil
		}
		m.logger.Warn("discarding undecodable cached structure", "key", key)
	}

	s, err := m.build(cctx)
	if err != nil {
		observability.Engine().OnGenerateComplete(ctx, cctx.Region, cctx.ContextTag, 0, time.Since(start), err)
		return nil, err
	}

	if data, err := sio.MarshalStructure(s); err == nil {
		if err := m.cache.Set(ctx, key, data, cache.TTLStructure); err != nil {
			m.logger.Warn("structure cache write failed", "key", key, "err", err)
		}
	}

	observability.Engine().OnGenerateComplete(ctx, cctx.Region, cctx.ContextTag, len(s.Zones), time.Since(start), nil)
	return &Result{
		Structure: s,
		Stats:     statsFor(s, time.Since(start)),
	}, nil
}

// build runs the uncached generation path.
func (m *Manager) build(cctx space.CulturalContext) (*structure.Structure, error) {
	sp := space.New()
	sp.Initialize(cctx)

	zones, err := m.zones.GenerateZones(cctx)
	if err != nil {
		return nil, err
	}
	// Generated zones replace seeded zones with the same ID so the registry
	// and the structure share one canonical set.
	for _, z := range zones {
		sp.RemoveZone(z.ID)
		sp.AddZone(z)
	}
	all := sp.Zones()
	m.zones.OptimizeZoneLayout(all)

	registry := proforme.NewRegistry()
	registry.PrepareForContext(cctx)
	proformes := registry.Active()

	l, err := m.layouts.GenerateLayout(all, cctx)
	if err != nil {
		return nil, err
	}

	s := &structure.Structure{
		ID:        uuid.NewString(),
		Context:   cctx,
		Space:     sp,
		Zones:     all,
		Proformes: proformes,
		Relations: l.Relations,
		Layout:    l,
		Meta: structure.Meta{
			CreatedAt:  time.Now().UTC(),
			Coherence:  m.validator.MeasureCoherence(l, proformes),
			Complexity: complexityOf(l),
			Optimization: []string{
				"zone-overlap-resolution",
				"element-redistribution",
				"salience-promotion",
			},
			ElementCount:  len(l.Elements),
			RelationCount: len(l.Relations),
		},
	}
	m.logger.Debug("structure built",
		"region", cctx.Region,
		"zones", len(all),
		"elements", len(l.Elements),
		"coherence", s.Meta.Coherence)
	return s, nil
}

// =============================================================================
// Analysis
// =============================================================================

// AnalyzeText extracts spatial components and relations from a textual
// utterance description. Results are cached by content hash.
func (m *Manager) AnalyzeText(ctx context.Context, input string) (*analyze.Analysis, error) {
	return m.analyzeCached(ctx, []byte(input), func() *analyze.Analysis {
		return m.analyzer.AnalyzeText(input)
	})
}

// AnalyzeStructured analyzes pre-segmented component and relation specs.
// Results are cached by content hash of the canonical JSON form.
func (m *Manager) AnalyzeStructured(ctx context.Context, input analyze.StructuredInput) (*analyze.Analysis, error) {
	content, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}
	return m.analyzeCached(ctx, content, func() *analyze.Analysis {
		return m.analyzer.AnalyzeStructured(input)
	})
}

func (m *Manager) analyzeCached(ctx context.Context, content []byte, run func() *analyze.Analysis) (*analyze.Analysis, error) {
	start := time.Now()
	observability.Engine().OnAnalyzeStart(ctx, len(content))

	key := m.keyer.AnalysisKey(cache.Hash(content))
	if data, ok, err := m.cache.Get(ctx, key); err == nil && ok {
		if a, err := sio.UnmarshalAnalysis(data); err == nil {
			observability.Engine().OnAnalyzeComplete(ctx, len(a.Components), time.Since(start), nil)
			return a, nil
		}
	}

	a := run()
	if data, err := sio.MarshalAnalysis(a); err == nil {
		if err := m.cache.Set(ctx, key, data, cache.TTLAnalysis); err != nil {
			m.logger.Warn("analysis cache write failed", "key", key, "err", err)
		}
	}
	observability.Engine().OnAnalyzeComplete(ctx, len(a.Components), time.Since(start), nil)
	return a, nil
}

// =============================================================================
// Validation
// =============================================================================

// ValidateStructure checks a structure against the quality threshold.
// Returns a validation error carrying the per-metric scores when the
// weighted overall score falls short.
func (m *Manager) ValidateStructure(ctx context.Context, s *structure.Structure) error {
	return m.ValidateStructureAt(ctx, s, m.validator.Threshold)
}

// ValidateStructureAt is ValidateStructure with a caller-supplied threshold.
func (m *Manager) ValidateStructureAt(ctx context.Context, s *structure.Structure, threshold float64) error {
	l := s.Layout
	if l == nil {
		l = &layout.Layout{Zones: s.Zones, Relations: s.Relations}
	}
	v := *m.validator
	v.Threshold = threshold
	err := v.ValidateStructure(l, s.Proformes)
	score := v.MeasureCoherence(l, s.Proformes)
	observability.Engine().OnValidateComplete(ctx, score, err == nil)
	return err
}

// =============================================================================
// Internal Helpers
// =============================================================================

func statsFor(s *structure.Structure, elapsed time.Duration) Stats {
	return Stats{
		ZoneCount:     len(s.Zones),
		ElementCount:  s.Meta.ElementCount,
		RelationCount: s.Meta.RelationCount,
		GenerateTime:  elapsed,
	}
}

// complexityOf scores a layout by element kind diversity and relation
// density, both normalized to [0,1].
func complexityOf(l *layout.Layout) float64 {
	if len(l.Elements) == 0 {
		return 0
	}
	kinds := make(map[layout.ElementKind]bool)
	for _, e := range l.Elements {
		kinds[e.Kind] = true
	}
	diversity := float64(len(kinds)) / 4

	density := 0.0
	if n := len(l.Elements); n > 1 {
		density = float64(len(l.Relations)) / float64(n*(n-1))
	}
	return geom.Clamp01(0.6*diversity + 0.4*density)
}
