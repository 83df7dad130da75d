package mcpserver

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"gopkg.in/yaml.v3"
)

//go:embed prompts/*.md
var promptFiles embed.FS

// promptMeta is the YAML frontmatter of an embedded prompt file: the
// description shown to clients plus the arguments the prompt body
// references as {{name}} placeholders.
type promptMeta struct {
	Description string      `yaml:"description"`
	Arguments   []promptArg `yaml:"arguments"`
}

// promptArg declares one {{placeholder}} in a prompt body. Required
// arguments without a value fail the request; optional ones leave the
// placeholder for the client to fill in conversation.
type promptArg struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Required    bool   `yaml:"required"`
}

// registerPrompts registers every embedded prompt file, named after its
// filename without the .md suffix.
func (s *Server) registerPrompts() {
	entries, err := promptFiles.ReadDir("prompts")
	if err != nil {
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}

		content, err := promptFiles.ReadFile(filepath.Join("prompts", entry.Name()))
		if err != nil {
			continue
		}

		meta, body := parseFrontmatter(content)

		prompt := &mcp.Prompt{
			Name:        strings.TrimSuffix(entry.Name(), ".md"),
			Description: meta.Description,
		}
		for _, arg := range meta.Arguments {
			prompt.Arguments = append(prompt.Arguments, &mcp.PromptArgument{
				Name:        arg.Name,
				Description: arg.Description,
				Required:    arg.Required,
			})
		}
		s.server.AddPrompt(prompt, makePromptHandler(meta, body))
	}
}

// parseFrontmatter splits a prompt file into its frontmatter metadata and
// markdown body. A file without valid frontmatter is all body.
func parseFrontmatter(content []byte) (promptMeta, string) {
	if !bytes.HasPrefix(content, []byte("---\n")) {
		return promptMeta{}, string(content)
	}

	rest := content[4:]
	end := bytes.Index(rest, []byte("\n---\n"))
	if end == -1 {
		return promptMeta{}, string(content)
	}

	var meta promptMeta
	if err := yaml.Unmarshal(rest[:end], &meta); err != nil {
		return promptMeta{}, string(content)
	}

	body := strings.TrimPrefix(string(rest[end+5:]), "\n")
	return meta, body
}

// makePromptHandler substitutes declared arguments into the body's
// {{name}} placeholders.
func makePromptHandler(meta promptMeta, body string) mcp.PromptHandler {
	return func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		text := body
		for _, arg := range meta.Arguments {
			var value string
			if req.Params != nil {
				value = req.Params.Arguments[arg.Name]
			}
			if value == "" {
				if arg.Required {
					return nil, fmt.Errorf("missing required argument %q", arg.Name)
				}
				continue
			}
			text = strings.ReplaceAll(text, "{{"+arg.Name+"}}", value)
		}

		return &mcp.GetPromptResult{
			Description: meta.Description,
			Messages: []*mcp.PromptMessage{
				{
					Role:    "user",
					Content: &mcp.TextContent{Text: text},
				},
			},
		}, nil
	}
}
