package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	serrors "github.com/signkit/signspace/pkg/errors"
	"github.com/signkit/signspace/pkg/sio"
	"github.com/signkit/signspace/pkg/structure"
	"github.com/signkit/signspace/pkg/validate"
)

// validateOpts holds the command-line flags for the validate command.
type validateOpts struct {
	threshold float64 // override the acceptance threshold
	strict    bool    // exit non-zero on integrity issues too
}

// newValidateCmd creates the validate command.
// It loads a structure file, runs the integrity sweep, and scores the
// structure against the coherence threshold. A failing score exits non-zero
// with per-metric details.
func newValidateCmd() *cobra.Command {
	opts := validateOpts{threshold: -1}

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a spatial structure against the quality threshold",
		Long: `Validate a spatial structure file.

Two checks run: a non-fatal integrity sweep (missing IDs, dangling relation
endpoints, crowded zones) and the weighted coherence score gated by the
acceptance threshold.

Examples:
  signspace validate structure.json
  signspace validate structure.json --threshold 0.9 --strict`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().Float64Var(&opts.threshold, "threshold", opts.threshold, "acceptance threshold (default 0.85)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail on integrity issues")

	return cmd
}

func runValidate(ctx context.Context, path string, opts *validateOpts) error {
	logger := loggerFromContext(ctx)
	mgr := newManager(defaultConfig(), true, logger)

	s, err := sio.ReadStructureFile(path)
	if err != nil {
		return err
	}
	logger.Infof("Loaded structure %s: %d zones, %d relations", s.ID, len(s.Zones), len(s.Relations))

	report := mgr.SelfValidate(s)
	if report.Valid {
		printSuccess("Integrity: %d items checked, no issues", countItems(s))
	} else {
		printWarning("Integrity: %d issues (score %.2f)", len(report.Issues), report.Score)
		for _, issue := range report.Issues {
			printDetail("%s", issue)
		}
	}

	threshold := validate.DefaultThreshold
	if opts.threshold >= 0 {
		threshold = opts.threshold
	}
	err = mgr.ValidateStructureAt(ctx, s, threshold)
	if err == nil {
		printSuccess("Coherence check passed")
		if opts.strict && !report.Valid {
			return fmt.Errorf("integrity sweep found %d issues", len(report.Issues))
		}
		return nil
	}

	var verr *serrors.ValidationError
	if errors.As(err, &verr) {
		printError("Coherence check failed (threshold %.2f)", verr.Threshold)
		printScores(verr.Scores)
		printDetail("failing: %s", strings.Join(verr.FailedMetrics(), ", "))
	}
	return err
}

func printScores(scores map[string]float64) {
	keys := make([]string, 0, len(scores))
	for k := range scores {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		printKeyValue(k, fmt.Sprintf("%.2f", scores[k]))
	}
}

// countItems is how many items the integrity sweep examined.
func countItems(s *structure.Structure) int {
	return len(s.Zones) + len(s.Proformes) + len(s.Components) + len(s.Relations)
}
