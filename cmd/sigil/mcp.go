package main

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/cairnsec/sigil/internal/mcpserver"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that exposes sigil's source
location and selector tooling to LLMs. This lets AI assistants inspect
verified contract sources, resolve display-format keys to selectors, and
cross-check descriptors against ABIs.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "sigil": {
        "command": "sigil",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - locate_function    Extract a function body and NatSpec docstring
  - list_functions     Enumerate function definitions across a payload
  - derive_selector    Resolve signatures or display keys to selectors
  - lookup_selector    Find the ABI entry behind a 4-byte selector
  - merge_abis         Merge ABI fragments into one deduplicated ABI`,
		Action: runMCPCmd,
	}
}

func runMCPCmd(c *cli.Context) error {
	server := mcpserver.NewServer(version)
	return server.Run(context.Background())
}
