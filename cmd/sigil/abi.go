package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/cairnsec/sigil/internal/output"
	"github.com/cairnsec/sigil/pkg/abi"
)

func abiCmd() *cli.Command {
	return &cli.Command{
		Name:  "abi",
		Usage: "Inspect, query, and merge contract ABIs",
		Subcommands: []*cli.Command{
			abiListCmd(),
			abiLookupCmd(),
			abiMergeCmd(),
		},
	}
}

func abiListCmd() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Usage:     "List function signatures and selectors in an ABI",
		ArgsUsage: "<abi.json...>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "Validate the ABI against the JSON schema before listing",
			},
		},
		Action: runABIListCmd,
	}
}

func runABIListCmd(c *cli.Context) error {
	if c.Args().Len() == 0 {
		return fmt.Errorf("expected at least one ABI file")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	parsed, err := loadABIs(c.Args().Slice(), c.Bool("strict"))
	if err != nil {
		return err
	}

	matches := parsed.Functions()

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	var rows [][]string
	for _, m := range matches {
		rows = append(rows, []string{
			m.Name,
			truncate(m.Signature, 60),
			m.Selector,
			strings.Join(m.ParamNames, ", "),
		})
	}

	table := output.NewTable(
		"ABI Functions",
		[]string{"Function", "Signature", "Selector", "Param Names"},
		rows,
		[]string{fmt.Sprintf("Functions: %d", len(matches)), "", "", ""},
		matches,
	)

	return formatter.Output(table)
}

func abiLookupCmd() *cli.Command {
	return &cli.Command{
		Name:      "lookup",
		Usage:     "Find the function entry behind a 4-byte selector",
		ArgsUsage: "<abi.json...>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "selector",
				Aliases:  []string{"s"},
				Usage:    "0x-prefixed 4-byte selector",
				Required: true,
			},
		},
		Action: runABILookupCmd,
	}
}

func runABILookupCmd(c *cli.Context) error {
	if c.Args().Len() == 0 {
		return fmt.Errorf("expected at least one ABI file")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	parsed, err := loadABIs(c.Args().Slice(), false)
	if err != nil {
		return err
	}

	match, err := parsed.FindBySelector(c.String("selector"))
	if err != nil {
		return err
	}

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if !match.Found() {
		if formatter.Format() == output.FormatText {
			formatter.Warning("No function matches selector %s", c.String("selector"))
			return nil
		}
		return formatter.Output(match)
	}

	table := output.NewTable(
		fmt.Sprintf("Selector %s", match.Selector),
		[]string{"Function", "Signature", "Param Names", "Internal Types"},
		[][]string{{
			match.Name,
			match.Signature,
			strings.Join(match.ParamNames, ", "),
			strings.Join(match.ParamInternalTypes, ", "),
		}},
		nil,
		match,
	)

	return formatter.Output(table)
}

func abiMergeCmd() *cli.Command {
	return &cli.Command{
		Name:      "merge",
		Usage:     "Merge ABI fragments into one deduplicated ABI",
		ArgsUsage: "<abi.json...>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "out",
				Usage: "Write the merged ABI JSON to this file instead of stdout",
			},
		},
		Action: runABIMergeCmd,
	}
}

func runABIMergeCmd(c *cli.Context) error {
	if c.Args().Len() == 0 {
		return fmt.Errorf("expected at least one ABI file")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	merger := abi.NewMerger()
	var total abi.MergeStats
	for _, path := range c.Args().Slice() {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("cannot read %s: %w", path, err)
		}
		parsed, err := abi.Parse(data)
		if err != nil {
			return fmt.Errorf("invalid ABI %s: %w", path, err)
		}
		stats := merger.Add(parsed)
		total.NewFunctions += stats.NewFunctions
		total.NewEvents += stats.NewEvents
		total.DuplicateFunctions += stats.DuplicateFunctions
	}

	merged := merger.Merged()

	out, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return err
	}

	if dest := c.String("out"); dest != "" {
		if err := os.WriteFile(dest, append(out, '\n'), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", dest, err)
		}
	} else {
		fmt.Println(string(out))
	}

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Format() == output.FormatText {
		functions, events, other := 0, 0, 0
		for _, e := range merged {
			switch e.Type {
			case "function":
				functions++
			case "event":
				events++
			default:
				other++
			}
		}
		formatter.Success("Merged %d entries (%d functions, %d events, %d other); %d duplicates dropped",
			len(merged), functions, events, other, total.DuplicateFunctions)
	}

	return nil
}

// loadABIs parses and concatenates ABI files in argument order, so
// first-entry-wins lookup semantics follow the file order on the command
// line.
func loadABIs(paths []string, strict bool) (abi.ABI, error) {
	var combined abi.ABI
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", path, err)
		}
		var parsed abi.ABI
		if strict {
			parsed, err = abi.ParseStrict(data)
		} else {
			parsed, err = abi.Parse(data)
		}
		if err != nil {
			return nil, fmt.Errorf("invalid ABI %s: %w", path, err)
		}
		combined = append(combined, parsed...)
	}
	return combined, nil
}
