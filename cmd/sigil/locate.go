package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/cairnsec/sigil/internal/output"
	"github.com/cairnsec/sigil/pkg/scanner"
	"github.com/cairnsec/sigil/pkg/solidity"
)

func locateCmd() *cli.Command {
	return &cli.Command{
		Name:      "locate",
		Aliases:   []string{"loc"},
		Usage:     "Locate a function declaration and its NatSpec docstring",
		ArgsUsage: "<source-or-payload>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "name",
				Aliases: []string{"n"},
				Usage:   "Function name to locate",
			},
			&cli.StringSliceFlag{
				Name:    "param",
				Aliases: []string{"p"},
				Usage:   "Parameter name to disambiguate overloads (repeatable)",
			},
			&cli.StringFlag{
				Name:    "signature",
				Aliases: []string{"s"},
				Usage:   "Canonical signature, e.g. transfer(address,uint256)",
			},
		},
		Action: runLocateCmd,
	}
}

func runLocateCmd(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one source path, got %d", c.Args().Len())
	}
	name := c.String("name")
	signature := c.String("signature")
	if name == "" && signature == "" {
		return fmt.Errorf("either --name or --signature is required")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	scan := scanner.NewScanner(cfg)
	bundle, err := scan.LoadBundle(c.Args().First())
	if err != nil {
		return fmt.Errorf("failed to load source: %w", err)
	}

	loc := solidity.NewLocator(bundle.Stringify(), cfg.SolidityRules())
	var fn solidity.Function
	var query string
	if signature != "" {
		fn = loc.ExtractBySignature(signature)
		query = signature
	} else {
		fn = loc.ExtractFunction(name, c.StringSlice("param"))
		query = name
	}

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if !fn.Found() {
		if formatter.Format() == output.FormatText {
			formatter.Warning("No declaration found for %q", query)
			return nil
		}
		return formatter.Output(fn)
	}

	report := &output.Report{
		Title: fmt.Sprintf("Function %s", query),
		Data:  fn,
	}
	if fn.Docstring != "" {
		report.Sections = append(report.Sections, &output.Section{
			Title:   "Docstring",
			Content: fn.Docstring,
		})
	}
	report.Sections = append(report.Sections, &output.Section{
		Title:   "Body",
		Content: fn.Body,
	})

	return formatter.Output(report)
}
