// Package render converts spatial structures into visual artifacts.
//
// Structures are first flattened to Graphviz DOT: zones become clusters,
// layout elements and analyzed components become nodes, relations become
// edges. The DOT form can then be rendered to SVG or PNG via Graphviz.
package render

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/signkit/signspace/pkg/structure"
)

// Options configures structure rendering.
type Options struct {
	// Detailed includes positions and properties in node labels.
	// When false, only IDs and names are shown.
	Detailed bool

	// ShowProformes adds a cluster listing the active proformes.
	ShowProformes bool
}

// ToDOT converts a structure to Graphviz DOT format. Zones are rendered as
// clusters containing their elements; analyzed components appear as oval
// nodes; relations become labeled edges. The resulting DOT string can be
// rendered with [RenderSVG] or [RenderPNG].
func ToDOT(s *structure.Structure, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph signspace {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	placed := make(map[string]bool)
	for i, z := range s.Zones {
		fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", i)
		fmt.Fprintf(&buf, "    label=%q;\n", zoneLabel(z.Name, z.ID, string(z.Kind)))
		buf.WriteString("    style=dashed;\n")
		if s.Layout != nil {
			for _, e := range s.Layout.Elements {
				if e.ZoneID != z.ID {
					continue
				}
				placed[e.ID] = true
				fmt.Fprintf(&buf, "    %q [label=%q];\n", e.ID, elementLabel(e.ID, string(e.Kind), e.Pos.X, e.Pos.Y, e.Pos.Z, e.Props, opts.Detailed))
			}
		}
		buf.WriteString("  }\n")
	}

	if s.Layout != nil {
		for _, e := range s.Layout.Elements {
			if placed[e.ID] {
				continue
			}
			fmt.Fprintf(&buf, "  %q [label=%q];\n", e.ID, elementLabel(e.ID, string(e.Kind), e.Pos.X, e.Pos.Y, e.Pos.Z, e.Props, opts.Detailed))
		}
	}

	for _, c := range s.Components {
		fmt.Fprintf(&buf, "  %q [shape=oval, label=%q];\n", c.ID, elementLabel(componentName(c.ID, c.Label), string(c.Kind), c.Pos.X, c.Pos.Y, c.Pos.Z, c.Props, opts.Detailed))
	}

	if opts.ShowProformes && len(s.Proformes) > 0 {
		buf.WriteString("  subgraph cluster_proformes {\n")
		buf.WriteString("    label=\"proformes\";\n")
		buf.WriteString("    style=dotted;\n")
		for _, p := range s.Proformes {
			fmt.Fprintf(&buf, "    %q [shape=note, label=%q];\n", p.ID, p.Name+"\n"+p.Represents)
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for _, r := range s.Relations {
		fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", r.Source, r.Target, string(r.Kind))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func zoneLabel(name, id, kind string) string {
	if name == "" {
		name = id
	}
	return fmt.Sprintf("%s (%s)", name, kind)
}

func componentName(id, label string) string {
	if label != "" {
		return label
	}
	return id
}

func elementLabel(name, kind string, x, y, z float64, props map[string]any, detailed bool) string {
	if !detailed {
		return name
	}
	parts := []string{fmt.Sprintf("kind: %s", kind), fmt.Sprintf("pos: (%.2f, %.2f, %.2f)", x, y, z)}
	for _, k := range slices.Sorted(maps.Keys(props)) {
		parts = append(parts, fmt.Sprintf("%s: %v", k, props[k]))
	}
	return name + "\n" + strings.Join(parts, "\n")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
