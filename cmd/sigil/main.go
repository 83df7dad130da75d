package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/cairnsec/sigil/internal/output"
	"github.com/cairnsec/sigil/pkg/config"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

func main() {
	app := &cli.App{
		Name:    "sigil",
		Usage:   "Solidity function location and selector resolution CLI",
		Version: version,
		Description: `Sigil locates function declarations in verified Solidity source,
normalizes signatures, derives 4-byte selectors, and resolves selectors
against contract ABIs.

Accepts plain .sol/.vy files and verified-source payloads
(Etherscan standard JSON, Sourcify sources maps).`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"SIGIL_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, markdown, toon",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Disable caching",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose output",
			},
		},
		Commands: []*cli.Command{
			locateCmd(),
			functionsCmd(),
			selectorCmd(),
			abiCmd(),
			descriptorCmd(),
			cacheCmd(),
			initCmd(),
			mcpCmd(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

// getPaths returns paths from positional args, defaulting to ["."]
func getPaths(c *cli.Context) []string {
	if c.Args().Len() > 0 {
		return c.Args().Slice()
	}
	return []string{"."}
}

// loadConfig resolves the effective config from the --config flag or the
// standard search locations, then applies global flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	var cfg *config.Config
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
		cfg = loaded
	} else {
		cfg = config.LoadOrDefault()
	}

	if c.Bool("no-cache") {
		cfg.Cache.Enabled = false
	}
	if c.Bool("verbose") {
		cfg.Output.Verbose = true
	}
	return cfg, nil
}

// newFormatter builds the output formatter, letting --format override the
// configured default.
func newFormatter(c *cli.Context, cfg *config.Config) (*output.Formatter, error) {
	format := cfg.Output.Format
	if f := c.String("format"); f != "" {
		format = f
	}
	return output.NewFormatter(output.ParseFormat(format), c.String("output"), cfg.Output.Color)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// parseTypeFlags turns repeated "Name=type" flag values into a resolution map.
func parseTypeFlags(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	types := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, typ, ok := cutPair(pair)
		if !ok {
			return nil, fmt.Errorf("invalid type mapping %q (want Name=type)", pair)
		}
		types[name] = typ
	}
	return types, nil
}

func cutPair(s string) (string, string, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == '=' {
			return s[:i], s[i+1:], i > 0 && i < len(s)-1
		}
	}
	return "", "", false
}
