package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/signkit/signspace/pkg/analyze"
	"github.com/signkit/signspace/pkg/engine"
	"github.com/signkit/signspace/pkg/sio"
)

// analyzeOpts holds the command-line flags for the analyze command.
type analyzeOpts struct {
	output  string // output file path (stdout if empty)
	noCache bool   // bypass the engine cache
}

// newAnalyzeCmd creates the analyze command.
// It extracts spatial components (pointing, gaze, movement, zone references)
// and relations from an utterance description, then scores the result for
// complexity and coherence.
//
// The argument is either free text or a path to a JSON file containing
// structured components and relations; files are auto-detected.
func newAnalyzeCmd(configPath *string) *cobra.Command {
	var opts analyzeOpts

	cmd := &cobra.Command{
		Use:   "analyze <text-or-file>",
		Short: "Analyze utterance input into spatial components and relations",
		Long: `Analyze utterance input into spatial components and relations.

The command auto-detects whether you're providing free text or a structured
JSON file of components and relations.

Examples:
  signspace analyze "point la-bas puis regard vers la zone"
  signspace analyze utterance.json
  signspace analyze utterance.json -o analysis.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			return runAnalyze(cmd.Context(), cfg, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the engine cache")

	return cmd
}

// runAnalyze dispatches to the text or structured path and writes the
// analysis as JSON.
func runAnalyze(ctx context.Context, cfg Config, input string, opts *analyzeOpts) error {
	logger := loggerFromContext(ctx)
	mgr := newManager(cfg, opts.noCache, logger)

	prog := newProgress(logger)
	a, err := analyzeInput(ctx, mgr, input)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Extracted %d components with %d relations", len(a.Components), len(a.Relations)))

	for _, w := range a.Meta.Warnings {
		printWarning("%s", w)
	}
	for _, s := range a.Meta.Suggestions {
		printInfo("%s", s)
	}

	data, err := sio.MarshalAnalysis(a)
	if err != nil {
		return err
	}
	out, err := openOutput(opts.output)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := out.Write(data); err != nil {
		return err
	}

	if opts.output != "" {
		printSuccess("Wrote analysis %s", a.ID)
		printFile(opts.output)
		printDetail("complexity %.2f · coherence %.2f", a.Meta.Complexity, a.Meta.Coherence)
	}
	return nil
}

// analyzeInput auto-detects structured JSON files versus free text.
func analyzeInput(ctx context.Context, mgr *engine.Manager, input string) (*analyze.Analysis, error) {
	if looksLikeFile(input) {
		data, err := os.ReadFile(input)
		if err != nil {
			return nil, err
		}
		var structured analyze.StructuredInput
		if err := json.Unmarshal(data, &structured); err != nil {
			return nil, fmt.Errorf("parse %s: %w", input, err)
		}
		return mgr.AnalyzeStructured(ctx, structured)
	}
	return mgr.AnalyzeText(ctx, input)
}

// looksLikeFile returns true if arg appears to be a file path rather than
// utterance text. It checks if the file exists or has a .json extension.
func looksLikeFile(arg string) bool {
	if strings.ContainsAny(arg, " \t\n") {
		return false
	}
	if _, err := os.Stat(arg); err == nil {
		return true
	}
	return strings.HasSuffix(strings.ToLower(arg), ".json")
}
