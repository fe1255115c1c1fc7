package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/signkit/signspace/pkg/render"
	"github.com/signkit/signspace/pkg/sio"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output        string // output file path (derived from input if empty)
	format        string // output format: "dot", "svg", "png"
	detailed      bool   // include positions and properties in labels
	showProformes bool   // include the proforme cluster
}

// newRenderCmd creates the render command for visualizing structures.
// Zones are drawn as clusters containing their elements, components as oval
// nodes, and relations as labeled edges.
func newRenderCmd() *cobra.Command {
	opts := renderOpts{format: "svg"}

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render a spatial structure to DOT, SVG, or PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateRenderFormat(opts.format); err != nil {
				return err
			}
			return runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (derived from input if empty)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg (default), png, dot")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show positions and properties in labels")
	cmd.Flags().BoolVar(&opts.showProformes, "proformes", false, "include the proforme cluster")

	return cmd
}

// validRenderFormats is the set of supported render formats.
var validRenderFormats = map[string]bool{"dot": true, "svg": true, "png": true}

func validateRenderFormat(f string) error {
	if !validRenderFormats[f] {
		return fmt.Errorf("invalid format: %s (must be 'dot', 'svg', or 'png')", f)
	}
	return nil
}

// runRender loads the structure from input and renders it to the requested format.
func runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	logger.Infof("Rendering %s", input)

	s, err := sio.ReadStructureFile(input)
	if err != nil {
		return err
	}
	logger.Infof("Loaded structure: %d zones, %d relations", len(s.Zones), len(s.Relations))

	dot := render.ToDOT(s, render.Options{
		Detailed:      opts.detailed,
		ShowProformes: opts.showProformes,
	})

	var data []byte
	switch opts.format {
	case "dot":
		data = []byte(dot)
	default:
		// Graphviz runs in-process under wasm and can take a moment on
		// large structures.
		sp := newSpinnerWithContext(ctx, "Rendering "+strings.ToUpper(opts.format))
		sp.Start()
		if opts.format == "svg" {
			data, err = render.RenderSVG(dot)
		} else {
			data, err = render.RenderPNG(dot)
		}
		if err != nil {
			sp.StopWithError("Rendering failed")
			return err
		}
		sp.StopWithSuccess(fmt.Sprintf("Rendered %s (%d bytes)", strings.ToUpper(opts.format), len(data)))
	}
	logger.Debugf("Generated %s: %d bytes", opts.format, len(data))

	outputPath := opts.output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(input, filepath.Ext(input)) + "." + opts.format
	}

	out, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := out.Write(data); err != nil {
		return err
	}

	logger.Infof("Generated %s", outputPath)
	return nil
}
