package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/signkit/signspace/pkg/cache"
	"github.com/signkit/signspace/pkg/engine"
	"github.com/signkit/signspace/pkg/sio"
	"github.com/signkit/signspace/pkg/space"
)

// generateOpts holds the command-line flags for the generate command.
type generateOpts struct {
	region    string  // cultural region (e.g., "france")
	formality float64 // formality level in [0,1]
	tag       string  // context tag (conversational, educational, ...)
	dialect   string  // optional regional dialect
	output    string  // output file path (stdout if empty)
	format    string  // output format: "json" or "bson"
	noCache   bool    // bypass the engine cache
}

// newGenerateCmd creates the generate command.
// It builds a complete spatial structure for the given cultural context:
// reference zones placed and de-conflicted, proformes prepared, and a
// geometric layout with derived coherence and complexity scores.
//
// Default options come from signspace.toml when present:
//   - region: france
//   - formality: 0.5
//   - tag: conversational
func newGenerateCmd(configPath *string) *cobra.Command {
	opts := generateOpts{formality: -1, format: "json"}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a spatial structure for a cultural context",
		Long: `Generate a complete signing space structure for a cultural context.

The structure contains culturally adapted reference zones (actants, timeline,
topic areas), the active proforme set, and a conflict-free geometric layout.

Examples:
  signspace generate --region france
  signspace generate --region quebec --formality 0.9 --tag narrative
  signspace generate --region france -o structure.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			cctx := contextFromFlags(cfg, &opts)
			if err := validateFormat(opts.format); err != nil {
				return err
			}
			return runGenerate(cmd.Context(), cfg, cctx, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.region, "region", "r", "", "cultural region (e.g., france, quebec)")
	cmd.Flags().Float64Var(&opts.formality, "formality", opts.formality, "formality level in [0,1]")
	cmd.Flags().StringVarP(&opts.tag, "tag", "t", "", "context tag: conversational, educational, narrative, technical, custom")
	cmd.Flags().StringVar(&opts.dialect, "dialect", "", "regional dialect")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: json (default), bson")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the engine cache")

	return cmd
}

// contextFromFlags merges command-line flags over the configured defaults.
func contextFromFlags(cfg Config, opts *generateOpts) space.CulturalContext {
	cctx := cfg.Context
	if opts.region != "" {
		cctx.Region = opts.region
	}
	if opts.formality >= 0 {
		cctx.FormalityLevel = opts.formality
	}
	if opts.tag != "" {
		cctx.ContextTag = opts.tag
	}
	if opts.dialect != "" {
		cctx.Dialect = opts.dialect
	}
	return cctx
}

// validFormats is the set of supported structure output formats.
var validFormats = map[string]bool{"json": true, "bson": true}

// validateFormat checks that the requested output format is supported.
func validateFormat(f string) error {
	if !validFormats[f] {
		return fmt.Errorf("invalid format: %s (must be 'json' or 'bson')", f)
	}
	return nil
}

// runGenerate builds the structure and writes it to the requested output.
func runGenerate(ctx context.Context, cfg Config, cctx space.CulturalContext, opts *generateOpts) error {
	logger := loggerFromContext(ctx)
	mgr := newManager(cfg, opts.noCache, logger)

	prog := newProgress(logger)
	res, err := mgr.Generate(ctx, cctx)
	if err != nil {
		return err
	}
	s := res.Structure
	prog.done(fmt.Sprintf("Generated %d zones and %d elements for %s", res.Stats.ZoneCount, res.Stats.ElementCount, cctx.Region))

	var data []byte
	switch opts.format {
	case "bson":
		data, err = sio.EncodeStructureBSON(s)
	default:
		data, err = sio.MarshalStructure(s)
	}
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
		printSuccess("Wrote structure %s", s.ID)
		printFile(opts.output)
		printStats(res.Stats.ZoneCount, res.Stats.ElementCount, res.Stats.RelationCount, res.CacheInfo.StructureHit)
		printDetail("coherence %.2f · complexity %.2f", s.Meta.Coherence, s.Meta.Complexity)
		printNextStep("Validate it", fmt.Sprintf("signspace validate %s", opts.output))
	}
	return nil
}

// newManager builds an engine manager from the CLI configuration.
func newManager(cfg Config, noCache bool, logger *log.Logger) *engine.Manager {
	if noCache {
		return engine.NewManager(cache.NewNullCache(), nil, logger)
	}
	return engine.NewManager(cache.NewFromConfig(cfg.Cache), nil, logger)
}

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
