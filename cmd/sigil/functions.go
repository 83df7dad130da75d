package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/cairnsec/sigil/internal/bundleproc"
	"github.com/cairnsec/sigil/internal/cache"
	"github.com/cairnsec/sigil/internal/output"
	"github.com/cairnsec/sigil/internal/progress"
	"github.com/cairnsec/sigil/pkg/scanner"
	"github.com/cairnsec/sigil/pkg/solidity"
)

func functionsCmd() *cli.Command {
	return &cli.Command{
		Name:      "functions",
		Aliases:   []string{"fns"},
		Usage:     "List every function definition in source files or payloads",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "visibility",
				Usage: "Only show functions with this visibility (external, public, internal, private)",
			},
		},
		Action: runFunctionsCmd,
	}
}

// fileFunctions is the per-input listing result.
type fileFunctions struct {
	Path      string                  `json:"path"`
	Functions []solidity.FunctionDecl `json:"functions"`
}

func runFunctionsCmd(c *cli.Context) error {
	paths := getPaths(c)
	visibility := c.String("visibility")

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	scan := scanner.NewScanner(cfg)

	var inputs []string
	for _, path := range paths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("invalid path %s: %w", path, err)
		}
		info, err := os.Stat(absPath)
		if err != nil {
			return fmt.Errorf("cannot stat %s: %w", path, err)
		}
		if info.IsDir() {
			found, err := scan.ScanDir(absPath)
			if err != nil {
				return fmt.Errorf("failed to scan directory %s: %w", path, err)
			}
			inputs = append(inputs, found...)
		} else {
			inputs = append(inputs, absPath)
		}
	}

	if len(inputs) == 0 {
		color.Yellow("No source files found")
		return nil
	}

	store, err := cache.New(cfg.Cache.Dir, cfg.Cache.TTL, cfg.Cache.Enabled)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	rules := cfg.SolidityRules()

	bar := progress.New("Listing functions...", len(inputs))
	results := bundleproc.MapWithProgress(inputs, func(path string) (fileFunctions, error) {
		b, err := scan.LoadBundle(path)
		if err != nil {
			return fileFunctions{}, err
		}

		fp := b.Fingerprint()
		if decls, ok := store.Index(fp); ok {
			return fileFunctions{Path: path, Functions: decls}, nil
		}

		var decls []solidity.FunctionDecl
		for _, f := range b {
			if solidity.IsVyper(f.Content) {
				decls = append(decls, solidity.VyperFunctions(f.Content)...)
			} else {
				decls = append(decls, solidity.ListFunctions(f.Content, rules)...)
			}
		}
		store.PutIndex(fp, decls)
		return fileFunctions{Path: path, Functions: decls}, nil
	}, bar.Tick)
	bar.Done()

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	var rows [][]string
	total := 0
	for _, r := range results {
		for _, fn := range r.Functions {
			if visibility != "" && fn.Visibility != visibility {
				continue
			}
			total++

			vis := fn.Visibility
			if formatter.Colored() {
				vis = output.VisibilityColor(fn.Visibility, fn.Visibility)
			}

			rows = append(rows, []string{
				r.Path,
				fn.Name,
				truncate(fn.Params, 50),
				vis,
				fmt.Sprintf("%d-%d", fn.StartLine, fn.EndLine),
			})
		}
	}

	table := output.NewTable(
		"Function Definitions",
		[]string{"File", "Function", "Params", "Visibility", "Lines"},
		rows,
		[]string{
			fmt.Sprintf("Files: %d", len(results)),
			fmt.Sprintf("Functions: %d", total),
			"", "", "",
		},
		results,
	)

	return formatter.Output(table)
}
