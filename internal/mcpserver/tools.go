package mcpserver

import (
	"context"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	toon "github.com/toon-format/toon-go"

	"github.com/cairnsec/sigil/internal/output"
	"github.com/cairnsec/sigil/pkg/abi"
	"github.com/cairnsec/sigil/pkg/config"
	"github.com/cairnsec/sigil/pkg/scanner"
	"github.com/cairnsec/sigil/pkg/sig"
	"github.com/cairnsec/sigil/pkg/solidity"
)

// Common input structures for tools

// BundleInput is the base input for tools operating on a source bundle.
type BundleInput struct {
	Path   string `json:"path" jsonschema:"Path to a source file or verified-source payload (Etherscan standard JSON, Sourcify sources map, or a bare file)."`
	Format string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// LocateInput selects one function declaration inside a bundle.
type LocateInput struct {
	BundleInput
	Name       string   `json:"name,omitempty" jsonschema:"Function name to locate. Ignored when signature is set."`
	ParamNames []string `json:"param_names,omitempty" jsonschema:"Parameter names to disambiguate overloads. Empty matches any overload."`
	Signature  string   `json:"signature,omitempty" jsonschema:"Canonical signature like transfer(address,uint256). Takes precedence over name."`
}

// ListFunctionsInput lists every function definition in a bundle.
type ListFunctionsInput struct {
	BundleInput
}

// DeriveSelectorInput resolves signatures or selectors to 4-byte selectors.
type DeriveSelectorInput struct {
	Keys   []string          `json:"keys" jsonschema:"Function signatures or 0x-prefixed 4-byte selectors. Signatures are normalized before hashing."`
	Types  map[string]string `json:"types,omitempty" jsonschema:"Custom type substitutions applied during normalization, e.g. IERC20 to address."`
	Format string            `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// LookupSelectorInput finds the ABI entry behind a selector.
type LookupSelectorInput struct {
	Path     string `json:"path" jsonschema:"Path to an ABI JSON file."`
	Selector string `json:"selector" jsonschema:"0x-prefixed 4-byte selector, case insensitive."`
	Format   string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// MergeABIsInput merges ABI fragments from multiple files.
type MergeABIsInput struct {
	Paths  []string `json:"paths" jsonschema:"Paths to ABI JSON files to merge. Duplicate signatures keep the first occurrence."`
	Format string   `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// Helper functions

func getFormat(format string) output.Format {
	switch format {
	case "json":
		return output.FormatJSON
	case "markdown", "md":
		return output.FormatMarkdown
	default:
		return output.FormatTOON
	}
}

func loadBundleSource(path string) (string, *config.Config, error) {
	cfg := config.LoadOrDefault()
	sc := scanner.NewScanner(cfg)
	b, err := sc.LoadBundle(path)
	if err != nil {
		return "", nil, err
	}
	return b.Stringify(), cfg, nil
}

func formatOutput(data any, format output.Format) (string, error) {
	out, err := toon.Marshal(data, toon.WithIndent(2))
	if err != nil {
		return "", err
	}
	if format == output.FormatMarkdown {
		return "```\n" + string(out) + "\n```", nil
	}
	return string(out), nil
}

func toolResult(data any, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

// Tool handlers

func handleLocateFunction(ctx context.Context, req *mcp.CallToolRequest, input LocateInput) (*mcp.CallToolResult, any, error) {
	format := getFormat(input.Format)

	if input.Path == "" {
		return toolError("path is required")
	}
	if input.Signature == "" && input.Name == "" {
		return toolError("either name or signature is required")
	}

	code, cfg, err := loadBundleSource(input.Path)
	if err != nil {
		return toolError(err.Error())
	}

	loc := solidity.NewLocator(code, cfg.SolidityRules())
	var fn solidity.Function
	if input.Signature != "" {
		fn = loc.ExtractBySignature(input.Signature)
	} else {
		fn = loc.ExtractFunction(input.Name, input.ParamNames)
	}

	result := struct {
		Found     bool   `json:"found" toon:"found"`
		Body      string `json:"body,omitempty" toon:"body,omitempty"`
		Docstring string `json:"docstring,omitempty" toon:"docstring,omitempty"`
	}{fn.Found(), fn.Body, fn.Docstring}

	return toolResult(result, format)
}

func handleListFunctions(ctx context.Context, req *mcp.CallToolRequest, input ListFunctionsInput) (*mcp.CallToolResult, any, error) {
	format := getFormat(input.Format)

	if input.Path == "" {
		return toolError("path is required")
	}

	cfg := config.LoadOrDefault()
	sc := scanner.NewScanner(cfg)
	b, err := sc.LoadBundle(input.Path)
	if err != nil {
		return toolError(err.Error())
	}

	type fileListing struct {
		File      string                  `json:"file" toon:"file"`
		Functions []solidity.FunctionDecl `json:"functions" toon:"functions"`
	}

	rules := cfg.SolidityRules()
	var files []fileListing
	total := 0
	for _, f := range b {
		var decls []solidity.FunctionDecl
		if solidity.IsVyper(f.Content) {
			decls = solidity.VyperFunctions(f.Content)
		} else {
			decls = solidity.ListFunctions(f.Content, rules)
		}
		if len(decls) == 0 {
			continue
		}
		total += len(decls)
		files = append(files, fileListing{File: f.Label, Functions: decls})
	}

	result := struct {
		Files []fileListing `json:"files" toon:"files"`
		Total int           `json:"total" toon:"total"`
	}{files, total}

	return toolResult(result, format)
}

func handleDeriveSelector(ctx context.Context, req *mcp.CallToolRequest, input DeriveSelectorInput) (*mcp.CallToolResult, any, error) {
	format := getFormat(input.Format)

	if len(input.Keys) == 0 {
		return toolError("at least one key is required")
	}

	type resolution struct {
		Key       string `json:"key" toon:"key"`
		Signature string `json:"signature,omitempty" toon:"signature,omitempty"`
		Selector  string `json:"selector,omitempty" toon:"selector,omitempty"`
		Error     string `json:"error,omitempty" toon:"error,omitempty"`
	}

	results := make([]resolution, 0, len(input.Keys))
	for _, key := range input.Keys {
		r := resolution{Key: key}
		selector, err := sig.ResolveKeyTypes(key, input.Types)
		if err != nil {
			r.Error = err.Error()
		} else {
			r.Selector = selector
			if !sig.IsSelector(key) {
				r.Signature = sig.NormalizeTypes(key, input.Types)
			}
		}
		results = append(results, r)
	}

	return toolResult(results, format)
}

func handleLookupSelector(ctx context.Context, req *mcp.CallToolRequest, input LookupSelectorInput) (*mcp.CallToolResult, any, error) {
	format := getFormat(input.Format)

	if input.Path == "" {
		return toolError("path is required")
	}

	data, err := os.ReadFile(input.Path)
	if err != nil {
		return toolError(err.Error())
	}
	parsed, err := abi.Parse(data)
	if err != nil {
		return toolError(err.Error())
	}

	match, err := parsed.FindBySelector(input.Selector)
	if err != nil {
		return toolError(err.Error())
	}

	result := struct {
		Found bool      `json:"found" toon:"found"`
		Match abi.Match `json:"match,omitempty" toon:"match,omitempty"`
	}{match.Found(), match}

	return toolResult(result, format)
}

func handleMergeABIs(ctx context.Context, req *mcp.CallToolRequest, input MergeABIsInput) (*mcp.CallToolResult, any, error) {
	format := getFormat(input.Format)

	if len(input.Paths) == 0 {
		return toolError("at least one path is required")
	}

	merger := abi.NewMerger()
	var total abi.MergeStats
	for _, path := range input.Paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return toolError(err.Error())
		}
		parsed, err := abi.Parse(data)
		if err != nil {
			return toolError(path + ": " + err.Error())
		}
		stats := merger.Add(parsed)
		total.NewFunctions += stats.NewFunctions
		total.NewEvents += stats.NewEvents
		total.DuplicateFunctions += stats.DuplicateFunctions
	}

	result := struct {
		ABI   abi.ABI        `json:"abi" toon:"abi"`
		Stats abi.MergeStats `json:"stats" toon:"stats"`
	}{merger.Merged(), total}

	return toolResult(result, format)
}
