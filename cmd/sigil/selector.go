package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/cairnsec/sigil/internal/output"
	"github.com/cairnsec/sigil/pkg/scanner"
	"github.com/cairnsec/sigil/pkg/sig"
	"github.com/cairnsec/sigil/pkg/solidity"
)

func selectorCmd() *cli.Command {
	return &cli.Command{
		Name:      "selector",
		Aliases:   []string{"sel"},
		Usage:     "Normalize signatures and derive 4-byte selectors",
		ArgsUsage: "<signature-or-selector...>",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "type",
				Aliases: []string{"t"},
				Usage:   "Custom type mapping Name=type, e.g. IERC20=address (repeatable)",
			},
			&cli.StringFlag{
				Name:  "source",
				Usage: "Contract source to derive interface, custom type, and struct mappings from",
			},
		},
		Action: runSelectorCmd,
	}
}

// selectorResult is one resolved key.
type selectorResult struct {
	Key       string `json:"key"`
	Signature string `json:"signature,omitempty"`
	Selector  string `json:"selector,omitempty"`
	Error     string `json:"error,omitempty"`
}

func runSelectorCmd(c *cli.Context) error {
	if c.Args().Len() == 0 {
		return fmt.Errorf("expected at least one signature or selector")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	types, err := parseTypeFlags(c.StringSlice("type"))
	if err != nil {
		return err
	}

	// Source-derived mappings fill in below explicit --type flags: interfaces
	// resolve to address, user-defined value types to their underlying type,
	// structs to their tuple form.
	if src := c.String("source"); src != "" {
		scan := scanner.NewScanner(cfg)
		b, err := scan.LoadBundle(src)
		if err != nil {
			return fmt.Errorf("failed to load source: %w", err)
		}
		code := solidity.StripComments(b.Stringify())
		typeMap, structTuples := solidity.TypeMappings(code)
		if types == nil {
			types = map[string]string{}
		}
		for name, typ := range typeMap {
			if _, ok := types[name]; !ok {
				types[name] = typ
			}
		}
		for name, tuple := range structTuples {
			if _, ok := types[name]; !ok {
				types[name] = tuple
			}
		}
	}

	var results []selectorResult
	for _, key := range c.Args().Slice() {
		r := selectorResult{Key: key}
		selector, err := sig.ResolveKeyTypes(key, types)
		if err != nil {
			r.Error = err.Error()
		} else {
			r.Selector = selector
			if !sig.IsSelector(key) {
				r.Signature = sig.NormalizeTypes(key, types)
			}
		}
		results = append(results, r)
	}

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	var rows [][]string
	for _, r := range results {
		status := r.Selector
		if r.Error != "" {
			status = r.Error
		}
		rows = append(rows, []string{
			truncate(r.Key, 50),
			truncate(r.Signature, 50),
			status,
		})
	}

	table := output.NewTable(
		"Selector Resolution",
		[]string{"Key", "Canonical Signature", "Selector"},
		rows,
		nil,
		results,
	)

	return formatter.Output(table)
}
