package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/cairnsec/sigil/internal/output"
	"github.com/cairnsec/sigil/pkg/descriptor"
)

func descriptorCmd() *cli.Command {
	return &cli.Command{
		Name:    "descriptor",
		Aliases: []string{"desc"},
		Usage:   "Work with ERC-7730 clear-signing descriptors",
		Subcommands: []*cli.Command{
			descriptorSelectorsCmd(),
			descriptorValidateCmd(),
		},
	}
}

func descriptorSelectorsCmd() *cli.Command {
	return &cli.Command{
		Name:      "selectors",
		Usage:     "Resolve display-format keys to 4-byte selectors",
		ArgsUsage: "<descriptor.json>",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "type",
				Aliases: []string{"t"},
				Usage:   "Custom type mapping Name=type (repeatable)",
			},
			&cli.StringFlag{
				Name:  "include",
				Usage: "Included descriptor file to merge before resolving (main document wins)",
			},
		},
		Action: runDescriptorSelectorsCmd,
	}
}

func runDescriptorSelectorsCmd(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one descriptor file, got %d", c.Args().Len())
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	types, err := parseTypeFlags(c.StringSlice("type"))
	if err != nil {
		return err
	}

	data, err := os.ReadFile(c.Args().First())
	if err != nil {
		return fmt.Errorf("cannot read descriptor: %w", err)
	}

	if includePath := c.String("include"); includePath != "" {
		include, err := os.ReadFile(includePath)
		if err != nil {
			return fmt.Errorf("cannot read include: %w", err)
		}
		data, err = descriptor.MergeInclude(data, include)
		if err != nil {
			return fmt.Errorf("failed to merge include: %w", err)
		}
	}

	d, err := descriptor.Parse(data)
	if err != nil {
		return fmt.Errorf("invalid descriptor: %w", err)
	}

	selectors, keyBySelector := d.Selectors(types)

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	var rows [][]string
	for _, sel := range selectors {
		rows = append(rows, []string{sel, truncate(keyBySelector[sel], 60)})
	}

	deployments := d.Deployments()
	footer := []string{
		fmt.Sprintf("Selectors: %d", len(selectors)),
		fmt.Sprintf("Deployments: %d", len(deployments)),
	}

	type result struct {
		Selectors   []string                `json:"selectors"`
		Keys        map[string]string       `json:"keys"`
		Deployments []descriptor.Deployment `json:"deployments"`
	}

	table := output.NewTable(
		"Descriptor Selectors",
		[]string{"Selector", "Display Key"},
		rows,
		footer,
		result{Selectors: selectors, Keys: keyBySelector, Deployments: deployments},
	)

	return formatter.Output(table)
}

func descriptorValidateCmd() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Validate a descriptor against the ERC-7730 schema",
		ArgsUsage: "<descriptor.json...>",
		Action:    runDescriptorValidateCmd,
	}
}

func runDescriptorValidateCmd(c *cli.Context) error {
	if c.Args().Len() == 0 {
		return fmt.Errorf("expected at least one descriptor file")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	failed := 0
	for _, path := range c.Args().Slice() {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("cannot read %s: %w", path, err)
		}
		if _, err := descriptor.ParseStrict(data); err != nil {
			failed++
			formatter.Error("%s: %v", path, err)
			continue
		}
		formatter.Success("%s: valid", path)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d descriptors failed validation", failed, c.Args().Len())
	}
	return nil
}
