package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/signkit/signspace/pkg/cache"
)

// newCacheCmd creates the cache management command.
// In-memory tiers live and die with a process; these subcommands matter
// mostly when a shared Redis tier is configured.
func newCacheCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage engine cache keys",
	}

	cmd.AddCommand(newCacheInfoCmd(configPath))
	cmd.AddCommand(newCacheKeyCmd())
	cmd.AddCommand(newCacheClearCmd(configPath))

	return cmd
}

// newCacheInfoCmd creates the "cache info" subcommand.
func newCacheInfoCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print the configured cache tiers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			printTier("fast", cfg.Cache.Fast)
			printTier("mid", cfg.Cache.Mid)
			if cfg.Cache.RedisAddr != "" {
				printKeyValue("slow", fmt.Sprintf("redis %s", cfg.Cache.RedisAddr))
			} else {
				printTier("slow", cfg.Cache.Slow)
			}
			return nil
		},
	}
}

func printTier(name string, tc cache.TierConfig) {
	detail := fmt.Sprintf("%s · %d entries", tc.Policy, tc.MaxEntries)
	if tc.Preload {
		detail += " · preload"
	}
	printKeyValue(name, detail)
}

// newCacheKeyCmd creates the "cache key" subcommand. It prints the
// deterministic cache key a context generates under, which is handy when
// inspecting a shared Redis tier directly.
func newCacheKeyCmd() *cobra.Command {
	var (
		region    string
		formality float64
		tag       string
	)

	cmd := &cobra.Command{
		Use:   "key",
		Short: "Print the cache key for a cultural context",
		RunE: func(cmd *cobra.Command, args []string) error {
			keyer := cache.NewDefaultKeyer()
			fmt.Println(keyer.StructureKey(region, formality, tag))
			return nil
		},
	}

	cmd.Flags().StringVarP(&region, "region", "r", "france", "cultural region")
	cmd.Flags().Float64Var(&formality, "formality", 0.5, "formality level in [0,1]")
	cmd.Flags().StringVarP(&tag, "tag", "t", "conversational", "context tag")

	return cmd
}

// newCacheClearCmd creates the "cache clear" subcommand. It removes the
// cached structure for one context from all configured tiers.
func newCacheClearCmd(configPath *string) *cobra.Command {
	var (
		region    string
		formality float64
		tag       string
	)

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Evict the cached structure for a cultural context",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if cfg.Cache.RedisAddr == "" {
				printInfo("No shared cache configured; in-memory tiers are per-process")
				return nil
			}

			c := cache.NewFromConfig(cfg.Cache)
			defer c.Close()

			key := cache.NewDefaultKeyer().StructureKey(region, formality, tag)
			if err := c.Delete(cmd.Context(), key); err != nil {
				return fmt.Errorf("evict %s: %w", key, err)
			}
			printSuccess("Evicted %s", key)
			return nil
		},
	}

	cmd.Flags().StringVarP(&region, "region", "r", "france", "cultural region")
	cmd.Flags().Float64Var(&formality, "formality", 0.5, "formality level in [0,1]")
	cmd.Flags().StringVarP(&tag, "tag", "t", "conversational", "context tag")

	return cmd
}
