package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/pelletier/go-toml"
	"github.com/urfave/cli/v2"

	"github.com/cairnsec/sigil/pkg/config"
)

func initCmd() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Create a sigil.toml configuration file with defaults",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   "sigil.toml",
				Usage:   "Output file path",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite an existing config file",
			},
		},
		Action: runInitCmd,
	}
}

func runInitCmd(c *cli.Context) error {
	outputPath := c.String("output")

	if _, err := os.Stat(outputPath); err == nil && !c.Bool("force") {
		return fmt.Errorf("config file %q already exists (use --force to overwrite)", outputPath)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
	}

	content, err := generateDefaultConfig()
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	color.Green("Created %s", outputPath)
	fmt.Println("Edit this file to customize scanning and output settings.")
	return nil
}

// generateDefaultConfig renders DefaultConfig as TOML under the same keys
// the loader reads back.
func generateDefaultConfig() (string, error) {
	cfg := config.DefaultConfig()

	doc := map[string]any{
		"rules": map[string]any{
			"type_keywords":      cfg.Rules.TypeKeywords,
			"modifier_keywords":  cfg.Rules.ModifierKeywords,
			"signature_keywords": cfg.Rules.SignatureKeywords,
		},
		"exclude": map[string]any{
			"patterns":   cfg.Exclude.Patterns,
			"extensions": cfg.Exclude.Extensions,
			"dirs":       cfg.Exclude.Dirs,
		},
		"cache": map[string]any{
			"enabled": cfg.Cache.Enabled,
			"dir":     cfg.Cache.Dir,
			"ttl":     cfg.Cache.TTL,
		},
		"output": map[string]any{
			"format":  cfg.Output.Format,
			"color":   cfg.Output.Color,
			"verbose": cfg.Output.Verbose,
		},
		"sources": map[string]any{
			"extensions": cfg.Sources.Extensions,
			"dedup":      cfg.Sources.Dedup,
		},
	}

	content, err := toml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config to TOML: %w", err)
	}

	var buf strings.Builder
	buf.WriteString("# Sigil configuration\n")
	buf.WriteString("# Documentation: https://github.com/cairnsec/sigil\n\n")
	buf.Write(content)

	return buf.String(), nil
}
