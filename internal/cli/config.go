package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/signkit/signspace/pkg/cache"
	"github.com/signkit/signspace/pkg/space"
)

// configFileName is the per-project configuration file looked up in the
// working directory before falling back to the user config directory.
const configFileName = "signspace.toml"

// Config holds the CLI configuration loaded from signspace.toml.
type Config struct {
	// Context supplies defaults for the generation flags.
	Context space.CulturalContext `toml:"context"`

	// Cache configures the engine cache tiers.
	Cache cache.Config `toml:"cache"`

	// Serve configures the HTTP server.
	Serve ServeConfig `toml:"serve"`
}

// ServeConfig configures the serve command.
type ServeConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `toml:"addr"`
}

// defaultConfig returns the configuration used when no file is found.
func defaultConfig() Config {
	return Config{
		Context: space.CulturalContext{
			Region:         "france",
			FormalityLevel: 0.5,
			ContextTag:     space.TagConversational,
		},
		Cache: cache.DefaultConfig(),
		Serve: ServeConfig{Addr: ":8080"},
	}
}

// loadConfig reads configuration from path, or from the default lookup
// chain when path is empty: ./signspace.toml, then the user config
// directory. A missing file yields the defaults; a malformed file is an
// error.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	if path == "" {
		p, ok := findConfig()
		if !ok {
			return cfg, nil
		}
		path = p
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// findConfig returns the first existing config file in the lookup chain.
func findConfig() (string, bool) {
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, true
	}
	if dir, err := os.UserConfigDir(); err == nil {
		p := filepath.Join(dir, "signspace", "config.toml")
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}
