// Package config loads sigil's configuration from TOML, YAML or JSON files.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/cairnsec/sigil/pkg/solidity"
)

// Config holds all configuration options for sigil.
type Config struct {
	// Scanner keyword sets
	Rules RulesConfig `koanf:"rules"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude"`

	// Cache settings
	Cache CacheConfig `koanf:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output"`

	// Source scanning settings
	Sources SourcesConfig `koanf:"sources"`
}

// RulesConfig overrides the keyword sets the structural scanner consults.
// Empty lists keep the built-in defaults.
type RulesConfig struct {
	TypeKeywords      []string `koanf:"type_keywords"`
	ModifierKeywords  []string `koanf:"modifier_keywords"`
	SignatureKeywords []string `koanf:"signature_keywords"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns   []string `koanf:"patterns"`
	Extensions []string `koanf:"extensions"`
	Dirs       []string `koanf:"dirs"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled"`
	Dir     string `koanf:"dir"`
	TTL     int    `koanf:"ttl"` // TTL in hours
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format  string `koanf:"format"` // text, json, markdown, toon
	Color   bool   `koanf:"color"`
	Verbose bool   `koanf:"verbose"`
}

// SourcesConfig controls which files directory scans pick up.
type SourcesConfig struct {
	Extensions []string `koanf:"extensions"`
	Dedup      bool     `koanf:"dedup"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Rules: RulesConfig{},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*.t.sol",
				"*.s.sol",
				"*.min.js",
			},
			Extensions: []string{
				".lock",
				".sum",
			},
			Dirs: []string{
				"node_modules",
				".git",
				".sigil",
				"out",
				"cache",
				"artifacts",
			},
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".sigil/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Format:  "text",
			Color:   true,
			Verbose: false,
		},
		Sources: SourcesConfig{
			Extensions: []string{".sol", ".vy", ".json"},
			Dedup:      true,
		},
	}
}

// SolidityRules materializes the configured keyword sets as an immutable
// rule value for the scanner.
func (c *Config) SolidityRules() *solidity.Rules {
	return solidity.NewRules(
		c.Rules.TypeKeywords,
		c.Rules.ModifierKeywords,
		c.Rules.SignatureKeywords,
	)
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	// Determine parser based on extension
	var parser koanf.Parser
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	// Load the config file
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}

	// Unmarshal into config struct
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	// Standard config file names to search for
	configNames := []string{
		"sigil.toml",
		"sigil.yaml",
		"sigil.yml",
		"sigil.json",
		".sigil.toml",
		".sigil.yaml",
		".sigil.yml",
		".sigil.json",
	}

	// Search in current directory and .sigil directory
	searchDirs := []string{".", ".sigil"}

	for _, dir := range searchDirs {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				cfg, err := Load(path)
				if err == nil {
					return cfg
				}
			}
		}
	}

	return DefaultConfig()
}

// ShouldExclude checks if a path should be excluded from scanning.
func (c *Config) ShouldExclude(path string) bool {
	// Check directory exclusions
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, string(filepath.Separator)+dir+string(filepath.Separator)) ||
			strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}

	// Check extension exclusions
	ext := filepath.Ext(path)
	for _, excludeExt := range c.Exclude.Extensions {
		if ext == excludeExt {
			return true
		}
	}

	// Check pattern exclusions
	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}

	return false
}
