package mcpserver

import (
	"encoding/json"
)

// Server identity shared between the stdio server and the published
// registry manifest.
const (
	serverName        = "sigil"
	registryName      = "io.github.cairnsec/sigil"
	serverDescription = "Solidity source location, signature normalization, and 4-byte selector resolution for verified contracts"
	repositoryURL     = "https://github.com/cairnsec/sigil"
	ociImage          = "ghcr.io/cairnsec/sigil"
)

// Manifest is the server.json document (schema version 2025-10-17) the MCP
// registry consumes.
type Manifest struct {
	Schema      string      `json:"$schema"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Version     string      `json:"version"`
	Repository  *Repository `json:"repository,omitempty"`
	Packages    []Package   `json:"packages,omitempty"`
}

// Repository contains source repository information.
type Repository struct {
	URL    string `json:"url"`
	Source string `json:"source"`
	ID     string `json:"id,omitempty"`
}

// Package describes one way to install and run the server.
type Package struct {
	RegistryType         string                `json:"registryType"`
	Identifier           string                `json:"identifier"`
	PackageArguments     []Argument            `json:"packageArguments,omitempty"`
	EnvironmentVariables []EnvironmentVariable `json:"environmentVariables,omitempty"`
	Transport            Transport             `json:"transport"`
}

// Argument represents a command-line argument.
type Argument struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

// EnvironmentVariable documents a configuration knob the packaged server
// honors.
type EnvironmentVariable struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsRequired  bool   `json:"isRequired,omitempty"`
}

// Transport describes the communication method.
type Transport struct {
	Type string `json:"type"`
}

// GenerateManifest renders the registry manifest for a release version.
func GenerateManifest(version string) ([]byte, error) {
	if version == "" {
		version = "0.0.0"
	}

	manifest := Manifest{
		Schema:      "https://static.modelcontextprotocol.io/schemas/2025-10-17/server.schema.json",
		Name:        registryName,
		Description: serverDescription,
		Version:     version,
		Repository: &Repository{
			URL:    repositoryURL,
			Source: "github",
		},
		Packages: []Package{ociPackage(version)},
	}

	return json.MarshalIndent(manifest, "", "  ")
}

// ociPackage describes the container launch: the image runs the CLI, so the
// mcp subcommand is passed, and SIGIL_CONFIG may point at a mounted config
// file.
func ociPackage(version string) Package {
	return Package{
		RegistryType: "oci",
		Identifier:   ociImage + ":" + version,
		PackageArguments: []Argument{
			{Type: "positional", Value: "mcp"},
		},
		EnvironmentVariables: []EnvironmentVariable{
			{
				Name:        "SIGIL_CONFIG",
				Description: "Path to a sigil config file (TOML, YAML, or JSON) inside the container",
			},
		},
		Transport: Transport{Type: "stdio"},
	}
}
