package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server and registers all sigil tools.
type Server struct {
	server *mcp.Server
}

// NewServer creates a new MCP server with all sigil tools registered.
func NewServer(version string) *Server {
	if version == "" {
		version = "dev"
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    serverName,
			Version: version,
		},
		nil,
	)

	s := &Server{server: server}
	s.registerTools()
	s.registerPrompts()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// registerTools adds all sigil tools to the server.
func (s *Server) registerTools() {
	// Function body + docstring extraction
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "locate_function",
		Description: describeLocate(),
	}, handleLocateFunction)

	// Function inventory across a bundle
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_functions",
		Description: describeListFunctions(),
	}, handleListFunctions)

	// Signature normalization and selector derivation
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "derive_selector",
		Description: describeDeriveSelector(),
	}, handleDeriveSelector)

	// Reverse lookup: selector to ABI entry
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "lookup_selector",
		Description: describeLookupSelector(),
	}, handleLookupSelector)

	// ABI fragment merging
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "merge_abis",
		Description: describeMergeABIs(),
	}, handleMergeABIs)
}
