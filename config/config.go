package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/evalloc/core/factory"
)

// Config describes a full simulation: where tables come from, how vehicles
// and posts are matched, which allocator runs, and where results go.
type Config struct {
	// Fleet and ChargingPosts name the table sources, either "random" or
	// "from_file".
	Fleet         factory.ModuleConfig `json:"fleet"`
	ChargingPosts factory.ModuleConfig `json:"charging_posts"`
	// Matchers are AND-composed into a single compatibility predicate.
	Matchers  []factory.ModuleConfig `json:"matchers"`
	Allocator factory.ModuleConfig   `json:"allocator"`
	// Objective names the distance metric: "haversine" or "great_circle".
	Objective string                 `json:"objective"`
	Outputs   []factory.ModuleConfig `json:"outputs"`
	// Seed initialises the random sources of table generation and of the
	// random allocator.
	Seed int64 `json:"seed"`
}

// SetDefaults applies the documented defaults for absent sections.
func (c *Config) SetDefaults() {
	if c.Fleet.Type == "" {
		c.Fleet = factory.ModuleConfig{Type: "from_file", Conf: map[string]any{"path": "fleet.csv"}}
	}
	if c.ChargingPosts.Type == "" {
		c.ChargingPosts = factory.ModuleConfig{Type: "from_file", Conf: map[string]any{"path": "charging_posts.csv"}}
	}
	if len(c.Matchers) == 0 {
		c.Matchers = []factory.ModuleConfig{{Type: "socket_compatibility"}}
	}
	if c.Allocator.Type == "" {
		c.Allocator = factory.ModuleConfig{Type: "greedy"}
	}
	if c.Objective == "" {
		c.Objective = "haversine"
	}
}

// Validate checks mandatory fields.
func (c *Config) Validate() error {
	for name, m := range map[string]factory.ModuleConfig{
		"fleet":          c.Fleet,
		"charging_posts": c.ChargingPosts,
		"allocator":      c.Allocator,
	} {
		if m.Type == "" {
			return fmt.Errorf("%s: type is required", name)
		}
	}
	for i, m := range c.Matchers {
		if m.Type == "" {
			return fmt.Errorf("matchers[%d]: type is required", i)
		}
	}
	for i, m := range c.Outputs {
		if m.Type == "" {
			return fmt.Errorf("outputs[%d]: type is required", i)
		}
	}
	return nil
}

// Load reads the configuration from a yaml or json file, applies EVALLOC_
// environment overrides, then fills in defaults and validates.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("EVALLOC_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "evalloc_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
