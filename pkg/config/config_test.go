package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig() returned nil")
	}

	// Check cache defaults
	if !cfg.Cache.Enabled {
		t.Error("Cache.Enabled should be true by default")
	}
	if cfg.Cache.TTL != 24 {
		t.Errorf("Cache.TTL = %d, want 24", cfg.Cache.TTL)
	}

	// Check output defaults
	if cfg.Output.Format != "text" {
		t.Errorf("Output.Format = %s, want text", cfg.Output.Format)
	}
	if !cfg.Output.Color {
		t.Error("Output.Color should be true by default")
	}

	// Check source defaults
	if len(cfg.Sources.Extensions) != 3 {
		t.Errorf("Sources.Extensions = %v", cfg.Sources.Extensions)
	}
	if !cfg.Sources.Dedup {
		t.Error("Sources.Dedup should be true by default")
	}
	if len(cfg.Exclude.Dirs) == 0 {
		t.Error("Exclude.Dirs should have default values")
	}
}

func TestSolidityRules_Defaults(t *testing.T) {
	rules := DefaultConfig().SolidityRules()

	if len(rules.TypeKeywords) == 0 {
		t.Fatal("empty type keywords")
	}
	if _, ok := rules.ModifierKeywords["calldata"]; !ok {
		t.Error("default modifiers should include calldata")
	}
}

func TestSolidityRules_Overrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rules.TypeKeywords = []string{"felt"}
	cfg.Rules.ModifierKeywords = []string{"ref"}

	rules := cfg.SolidityRules()
	if len(rules.TypeKeywords) != 1 || rules.TypeKeywords[0] != "felt" {
		t.Errorf("TypeKeywords = %v", rules.TypeKeywords)
	}
	if _, ok := rules.ModifierKeywords["ref"]; !ok {
		t.Error("override modifiers should include ref")
	}
	if _, ok := rules.ModifierKeywords["calldata"]; ok {
		t.Error("override modifiers should replace defaults")
	}
	// Signature keywords untouched, keep defaults
	if len(rules.SignatureKeywords) == 0 {
		t.Error("SignatureKeywords should fall back to defaults")
	}
}

func TestLoadTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "sigil.toml")

	content := `
[rules]
type_keywords = ["address", "uint", "felt"]

[exclude]
dirs = ["node_modules", "custom_exclude"]
patterns = ["*.t.sol"]

[cache]
enabled = false

[output]
format = "json"
`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if len(cfg.Rules.TypeKeywords) != 3 {
		t.Errorf("Rules.TypeKeywords = %v", cfg.Rules.TypeKeywords)
	}
	if cfg.Cache.Enabled {
		t.Error("Cache.Enabled should be false")
	}
	if cfg.Output.Format != "json" {
		t.Errorf("Output.Format = %s, want json", cfg.Output.Format)
	}
	if !cfg.ShouldExclude(filepath.Join("custom_exclude", "A.sol")) {
		t.Error("custom exclude dir not applied")
	}
}

func TestLoadYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "sigil.yaml")

	content := `
cache:
  ttl: 48

output:
  format: markdown

sources:
  extensions: [".sol"]
`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Cache.TTL != 48 {
		t.Errorf("Cache.TTL = %d, want 48", cfg.Cache.TTL)
	}
	if cfg.Output.Format != "markdown" {
		t.Errorf("Output.Format = %s, want markdown", cfg.Output.Format)
	}
	if len(cfg.Sources.Extensions) != 1 {
		t.Errorf("Sources.Extensions = %v", cfg.Sources.Extensions)
	}
}

func TestLoadJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "sigil.json")

	content := `{
  "cache": {"ttl": 72},
  "output": {"format": "toon"}
}`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Cache.TTL != 72 {
		t.Errorf("Cache.TTL = %d, want 72", cfg.Cache.TTL)
	}
	if cfg.Output.Format != "toon" {
		t.Errorf("Output.Format = %s, want toon", cfg.Output.Format)
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	_, err := Load("/nonexistent/path/sigil.toml")
	if err == nil {
		t.Error("Load() should return error for non-existent file")
	}
}

func TestLoadInvalidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "sigil.toml")

	// Invalid TOML
	content := `[rules
invalid toml`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() should return error for invalid config")
	}
}

func TestLoadOrDefault(t *testing.T) {
	// In a directory without config files, should return defaults
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	defer os.Chdir(oldWd)

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to change directory: %v", err)
	}

	cfg := LoadOrDefault()
	if cfg == nil {
		t.Fatal("LoadOrDefault() returned nil")
	}
	if cfg.Cache.TTL != 24 {
		t.Errorf("LoadOrDefault() returned non-default TTL: %d", cfg.Cache.TTL)
	}
}

func TestLoadOrDefaultWithConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	defer os.Chdir(oldWd)

	// Create config file
	content := `
[cache]
ttl = 999
`
	if err := os.WriteFile(filepath.Join(tmpDir, "sigil.toml"), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to change directory: %v", err)
	}

	cfg := LoadOrDefault()
	if cfg.Cache.TTL != 999 {
		t.Errorf("LoadOrDefault() should load from file, got TTL=%d", cfg.Cache.TTL)
	}
}

func TestShouldExclude(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		path string
		want bool
	}{
		// Excluded directories
		{filepath.Join("node_modules", "pkg", "A.sol"), true},
		{filepath.Join(".git", "objects", "file"), true},
		{filepath.Join("src", "out", "Token.json"), true},

		// Excluded patterns
		{"Token.t.sol", true},
		{"Deploy.s.sol", true},

		// Excluded extensions
		{"yarn.lock", true},

		// Not excluded
		{"Token.sol", false},
		{filepath.Join("src", "Vault.sol"), false},
		{filepath.Join("pkg", "out_utils.sol"), false}, // "out" in name, not directory
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := cfg.ShouldExclude(tt.path)
			if got != tt.want {
				t.Errorf("ShouldExclude(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}
