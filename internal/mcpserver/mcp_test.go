package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/cairnsec/sigil/internal/output"
)

const tokenSource = `// SPDX-License-Identifier: MIT
pragma solidity ^0.8.0;

contract Token {
    mapping(address => uint256) balances;

    /// @notice Moves tokens to a recipient.
    /// @param to The recipient address.
    function transfer(address to, uint256 amount) external returns (bool) {
        balances[to] += amount;
        return true;
    }

    function _burn(address from, uint256 amount) internal {
        balances[from] -= amount;
    }
}
`

const tokenABI = `[
  {"type":"function","name":"transfer","stateMutability":"nonpayable",
   "inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],
   "outputs":[{"type":"bool"}]},
  {"type":"event","name":"Transfer","inputs":[]}
]`

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("nil result")
	}
	if len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("content is not TextContent: %T", result.Content[0])
	}
	return tc.Text
}

// TestServerCreation verifies the MCP server can be created without panicking.
func TestServerCreation(t *testing.T) {
	server := NewServer("1.0.0-test")
	if server == nil {
		t.Fatal("NewServer() returned nil")
	}
	if server.server == nil {
		t.Fatal("NewServer().server is nil")
	}
}

// TestServerCreationEmptyVersion verifies empty version defaults to "dev".
func TestServerCreationEmptyVersion(t *testing.T) {
	if server := NewServer(""); server == nil {
		t.Fatal("NewServer(\"\") returned nil")
	}
}

// TestToolDescriptions verifies all description functions return non-empty strings.
func TestToolDescriptions(t *testing.T) {
	descriptions := map[string]func() string{
		"locate":         describeLocate,
		"listFunctions":  describeListFunctions,
		"deriveSelector": describeDeriveSelector,
		"lookupSelector": describeLookupSelector,
		"mergeABIs":      describeMergeABIs,
	}

	for name, fn := range descriptions {
		t.Run(name, func(t *testing.T) {
			desc := fn()
			if desc == "" {
				t.Errorf("%s description is empty", name)
			}
			if !strings.Contains(desc, "USE WHEN:") {
				t.Errorf("%s description missing USE WHEN section", name)
			}
			if !strings.Contains(desc, "INTERPRETING RESULTS:") {
				t.Errorf("%s description missing INTERPRETING RESULTS section", name)
			}
			if !strings.Contains(desc, "RETURNED:") {
				t.Errorf("%s description missing RETURNED section", name)
			}
		})
	}
}

// TestGetFormat verifies format parsing logic.
func TestGetFormat(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		expected output.Format
	}{
		{"empty defaults to toon", "", output.FormatTOON},
		{"json format", "json", output.FormatJSON},
		{"markdown format", "markdown", output.FormatMarkdown},
		{"md alias", "md", output.FormatMarkdown},
		{"toon explicit", "toon", output.FormatTOON},
		{"unknown defaults to toon", "xml", output.FormatTOON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getFormat(tt.format); got != tt.expected {
				t.Errorf("getFormat(%q) = %v, want %v", tt.format, got, tt.expected)
			}
		})
	}
}

// TestToolError verifies error result formatting.
func TestToolError(t *testing.T) {
	result, _, err := toolError("test error message")
	if err != nil {
		t.Fatalf("toolError returned unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("toolError result.IsError should be true")
	}
	if got := resultText(t, result); got != "Error: test error message" {
		t.Errorf("toolError text = %q", got)
	}
}

// TestToolResult verifies successful result formatting.
func TestToolResult(t *testing.T) {
	data := map[string]any{"selector": "0xa9059cbb"}
	result, _, err := toolResult(data, getFormat(""))
	if err != nil {
		t.Fatalf("toolResult returned error: %v", err)
	}
	if result.IsError {
		t.Error("toolResult.IsError should be false")
	}
	if !strings.Contains(resultText(t, result), "0xa9059cbb") {
		t.Error("toolResult text missing data")
	}
}

func TestHandleLocateFunction(t *testing.T) {
	path := writeFixture(t, "Token.sol", tokenSource)

	input := LocateInput{
		BundleInput: BundleInput{Path: path, Format: "json"},
		Name:        "transfer",
	}

	result, _, err := handleLocateFunction(context.Background(), nil, input)
	if err != nil {
		t.Fatalf("handleLocateFunction returned error: %v", err)
	}
	text := resultText(t, result)
	if result.IsError {
		t.Fatalf("handleLocateFunction returned tool error: %s", text)
	}
	if !strings.Contains(text, "function transfer") {
		t.Errorf("body missing from output: %s", text)
	}
	if !strings.Contains(text, "Moves tokens to a recipient") {
		t.Errorf("docstring missing from output: %s", text)
	}
}

func TestHandleLocateFunction_BySignature(t *testing.T) {
	path := writeFixture(t, "Token.sol", tokenSource)

	input := LocateInput{
		BundleInput: BundleInput{Path: path},
		Signature:   "transfer(address,uint256)",
	}

	result, _, err := handleLocateFunction(context.Background(), nil, input)
	if err != nil {
		t.Fatalf("handleLocateFunction returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("handleLocateFunction returned tool error: %s", resultText(t, result))
	}
	if !strings.Contains(resultText(t, result), "function transfer") {
		t.Error("signature lookup should find the declaration")
	}
}

func TestHandleLocateFunction_NotFoundIsNotError(t *testing.T) {
	path := writeFixture(t, "Token.sol", tokenSource)

	input := LocateInput{
		BundleInput: BundleInput{Path: path},
		Name:        "mint",
	}

	result, _, err := handleLocateFunction(context.Background(), nil, input)
	if err != nil {
		t.Fatalf("handleLocateFunction returned error: %v", err)
	}
	if result.IsError {
		t.Error("absent declaration should not be a tool error")
	}
}

func TestHandleLocateFunction_MissingArgs(t *testing.T) {
	result, _, err := handleLocateFunction(context.Background(), nil, LocateInput{
		BundleInput: BundleInput{Path: "x.sol"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("missing name and signature should be a tool error")
	}

	result, _, _ = handleLocateFunction(context.Background(), nil, LocateInput{Name: "transfer"})
	if !result.IsError {
		t.Error("missing path should be a tool error")
	}
}

func TestHandleListFunctions(t *testing.T) {
	path := writeFixture(t, "Token.sol", tokenSource)

	result, _, err := handleListFunctions(context.Background(), nil, ListFunctionsInput{
		BundleInput: BundleInput{Path: path, Format: "json"},
	})
	if err != nil {
		t.Fatalf("handleListFunctions returned error: %v", err)
	}
	text := resultText(t, result)
	if result.IsError {
		t.Fatalf("handleListFunctions returned tool error: %s", text)
	}
	if !strings.Contains(text, "transfer") || !strings.Contains(text, "_burn") {
		t.Errorf("listing missing functions: %s", text)
	}
}

func TestHandleDeriveSelector(t *testing.T) {
	input := DeriveSelectorInput{
		Keys: []string{
			"transfer(address to, uint256 amount)",
			"0xA9059CBB",
			"not a signature",
		},
	}

	result, _, err := handleDeriveSelector(context.Background(), nil, input)
	if err != nil {
		t.Fatalf("handleDeriveSelector returned error: %v", err)
	}
	text := resultText(t, result)
	if result.IsError {
		t.Fatalf("handleDeriveSelector returned tool error: %s", text)
	}
	if !strings.Contains(text, "0xa9059cbb") {
		t.Errorf("selector missing from output: %s", text)
	}
	if !strings.Contains(text, "transfer(address,uint256)") {
		t.Errorf("normalized signature missing from output: %s", text)
	}
	if !strings.Contains(text, "neither a selector nor a signature") {
		t.Errorf("unresolvable key should carry an error: %s", text)
	}
}

func TestHandleDeriveSelector_TypeResolution(t *testing.T) {
	input := DeriveSelectorInput{
		Keys:  []string{"transfer(IERC20 token, uint256 amount)"},
		Types: map[string]string{"IERC20": "address"},
	}

	result, _, err := handleDeriveSelector(context.Background(), nil, input)
	if err != nil {
		t.Fatalf("handleDeriveSelector returned error: %v", err)
	}
	if !strings.Contains(resultText(t, result), "0xa9059cbb") {
		t.Error("interface type should resolve to address before hashing")
	}
}

func TestHandleDeriveSelector_Empty(t *testing.T) {
	result, _, _ := handleDeriveSelector(context.Background(), nil, DeriveSelectorInput{})
	if !result.IsError {
		t.Error("empty key list should be a tool error")
	}
}

func TestHandleLookupSelector(t *testing.T) {
	path := writeFixture(t, "token.abi.json", tokenABI)

	result, _, err := handleLookupSelector(context.Background(), nil, LookupSelectorInput{
		Path:     path,
		Selector: "0xA9059CBB",
	})
	if err != nil {
		t.Fatalf("handleLookupSelector returned error: %v", err)
	}
	text := resultText(t, result)
	if result.IsError {
		t.Fatalf("handleLookupSelector returned tool error: %s", text)
	}
	if !strings.Contains(text, "transfer") {
		t.Errorf("match missing from output: %s", text)
	}
}

func TestHandleLookupSelector_InvalidSelector(t *testing.T) {
	path := writeFixture(t, "token.abi.json", tokenABI)

	result, _, err := handleLookupSelector(context.Background(), nil, LookupSelectorInput{
		Path:     path,
		Selector: "0xzz",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("malformed selector should be a tool error")
	}
}

func TestHandleMergeABIs(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.json")
	b := filepath.Join(dir, "b.json")
	os.WriteFile(a, []byte(tokenABI), 0644)
	os.WriteFile(b, []byte(`[
  {"type":"function","name":"transfer","stateMutability":"nonpayable",
   "inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"approve","stateMutability":"nonpayable",
   "inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]}
]`), 0644)

	result, _, err := handleMergeABIs(context.Background(), nil, MergeABIsInput{
		Paths: []string{a, b},
	})
	if err != nil {
		t.Fatalf("handleMergeABIs returned error: %v", err)
	}
	text := resultText(t, result)
	if result.IsError {
		t.Fatalf("handleMergeABIs returned tool error: %s", text)
	}
	if !strings.Contains(text, "approve") {
		t.Errorf("merged ABI missing entry: %s", text)
	}
}

func TestHandleMergeABIs_MissingFile(t *testing.T) {
	result, _, _ := handleMergeABIs(context.Background(), nil, MergeABIsInput{
		Paths: []string{"/nonexistent/abi.json"},
	})
	if !result.IsError {
		t.Error("unreadable input should be a tool error")
	}
}

// TestGenerateManifest verifies the server manifest is well-formed.
func TestGenerateManifest(t *testing.T) {
	data, err := GenerateManifest("1.2.3")
	if err != nil {
		t.Fatalf("GenerateManifest returned error: %v", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("manifest is not valid JSON: %v", err)
	}
	if m.Name != "io.github.cairnsec/sigil" {
		t.Errorf("manifest name = %q", m.Name)
	}
	if m.Version != "1.2.3" {
		t.Errorf("manifest version = %q", m.Version)
	}

	if len(m.Packages) != 1 {
		t.Fatalf("packages = %d, want 1", len(m.Packages))
	}
	pkg := m.Packages[0]
	if pkg.Identifier != "ghcr.io/cairnsec/sigil:1.2.3" {
		t.Errorf("package identifier = %q", pkg.Identifier)
	}
	if len(pkg.PackageArguments) != 1 || pkg.PackageArguments[0].Value != "mcp" {
		t.Errorf("package arguments = %+v", pkg.PackageArguments)
	}
	if len(pkg.EnvironmentVariables) != 1 || pkg.EnvironmentVariables[0].Name != "SIGIL_CONFIG" {
		t.Errorf("environment variables = %+v", pkg.EnvironmentVariables)
	}

	data, _ = GenerateManifest("")
	json.Unmarshal(data, &m)
	if m.Version != "0.0.0" {
		t.Errorf("empty version should default to 0.0.0, got %q", m.Version)
	}
}

// TestParseFrontmatter verifies YAML frontmatter extraction from prompt files.
func TestParseFrontmatter(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantDesc string
		wantArgs int
		wantBody string
	}{
		{
			name:     "with frontmatter",
			content:  "---\ndescription: A prompt\n---\n\nBody text",
			wantDesc: "A prompt",
			wantBody: "Body text",
		},
		{
			name: "with arguments",
			content: "---\ndescription: A prompt\narguments:\n" +
				"  - name: source\n    required: true\n" +
				"  - name: abi\n---\n\nScan {{source}}",
			wantDesc: "A prompt",
			wantArgs: 2,
			wantBody: "Scan {{source}}",
		},
		{
			name:     "no frontmatter",
			content:  "Just body",
			wantDesc: "",
			wantBody: "Just body",
		},
		{
			name:     "unterminated frontmatter",
			content:  "---\ndescription: broken",
			wantDesc: "",
			wantBody: "---\ndescription: broken",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, body := parseFrontmatter([]byte(tt.content))
			if meta.Description != tt.wantDesc {
				t.Errorf("description = %q, want %q", meta.Description, tt.wantDesc)
			}
			if len(meta.Arguments) != tt.wantArgs {
				t.Errorf("arguments = %d, want %d", len(meta.Arguments), tt.wantArgs)
			}
			if body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}

// TestPromptFiles verifies embedded prompt files are present, described, and
// declare every placeholder their body uses.
func TestPromptFiles(t *testing.T) {
	entries, err := promptFiles.ReadDir("prompts")
	if err != nil {
		t.Fatalf("reading embedded prompts: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("no embedded prompt files")
	}

	placeholderRe := regexp.MustCompile(`\{\{(\w+)\}\}`)

	for _, entry := range entries {
		t.Run(entry.Name(), func(t *testing.T) {
			content, err := promptFiles.ReadFile(filepath.Join("prompts", entry.Name()))
			if err != nil {
				t.Fatalf("reading %s: %v", entry.Name(), err)
			}
			meta, body := parseFrontmatter(content)
			if meta.Description == "" {
				t.Error("prompt has no description")
			}
			if strings.TrimSpace(body) == "" {
				t.Error("prompt has no body")
			}

			declared := make(map[string]bool, len(meta.Arguments))
			for _, arg := range meta.Arguments {
				declared[arg.Name] = true
			}
			for _, m := range placeholderRe.FindAllStringSubmatch(body, -1) {
				if !declared[m[1]] {
					t.Errorf("body references undeclared argument %q", m[1])
				}
			}
		})
	}
}

// TestPromptHandler verifies prompt handlers return the embedded body.
func TestPromptHandler(t *testing.T) {
	meta := promptMeta{Description: "check selectors"}
	handler := makePromptHandler(meta, "Run derive_selector on each key.")

	result, err := handler(context.Background(), &mcp.GetPromptRequest{})
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if result.Description != "check selectors" {
		t.Errorf("description = %q", result.Description)
	}
	if len(result.Messages) == 0 {
		t.Fatal("result has no messages")
	}
	tc, ok := result.Messages[0].Content.(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Messages[0].Content)
	}
	if tc.Text != "Run derive_selector on each key." {
		t.Errorf("message text = %q", tc.Text)
	}
}

// TestPromptHandler_ArgumentSubstitution verifies {{name}} placeholders are
// filled from request arguments.
func TestPromptHandler_ArgumentSubstitution(t *testing.T) {
	meta := promptMeta{
		Description: "audit",
		Arguments: []promptArg{
			{Name: "source", Required: true},
			{Name: "abi"},
		},
	}
	handler := makePromptHandler(meta, "Scan {{source}} against {{abi}}.")

	result, err := handler(context.Background(), &mcp.GetPromptRequest{
		Params: &mcp.GetPromptParams{
			Arguments: map[string]string{"source": "Token.sol", "abi": "token.json"},
		},
	})
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	tc := result.Messages[0].Content.(*mcp.TextContent)
	if tc.Text != "Scan Token.sol against token.json." {
		t.Errorf("message text = %q", tc.Text)
	}
}

// TestPromptHandler_MissingRequiredArgument verifies required arguments are
// enforced and optional ones are not.
func TestPromptHandler_MissingRequiredArgument(t *testing.T) {
	meta := promptMeta{
		Arguments: []promptArg{
			{Name: "source", Required: true},
			{Name: "abi"},
		},
	}
	handler := makePromptHandler(meta, "Scan {{source}} against {{abi}}.")

	if _, err := handler(context.Background(), &mcp.GetPromptRequest{
		Params: &mcp.GetPromptParams{Arguments: map[string]string{}},
	}); err == nil {
		t.Error("expected error for missing required argument")
	}

	result, err := handler(context.Background(), &mcp.GetPromptRequest{
		Params: &mcp.GetPromptParams{
			Arguments: map[string]string{"source": "Token.sol"},
		},
	})
	if err != nil {
		t.Fatalf("optional argument should not be required: %v", err)
	}
	tc := result.Messages[0].Content.(*mcp.TextContent)
	if !strings.Contains(tc.Text, "{{abi}}") {
		t.Errorf("unfilled optional placeholder should survive, got %q", tc.Text)
	}
}
