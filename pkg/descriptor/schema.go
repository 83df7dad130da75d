package descriptor

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// descriptorSchema checks the shape this tool depends on, not the full
// ERC-7730 standard: a context with deployments and a display.formats
// object keyed by strings.
const descriptorSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["display"],
  "properties": {
    "context": {
      "type": "object",
      "properties": {
        "contract": {
          "type": "object",
          "properties": {
            "deployments": {
              "type": "array",
              "items": {
                "type": "object",
                "properties": {
                  "address": {"type": "string", "pattern": "^0x[0-9a-fA-F]{40}$"},
                  "chainId": {"type": "integer", "minimum": 1}
                }
              }
            }
          }
        }
      }
    },
    "display": {
      "type": "object",
      "required": ["formats"],
      "properties": {
        "formats": {
          "type": "object",
          "additionalProperties": {"type": "object"}
        }
      }
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(descriptorSchema))
		if err != nil {
			schemaErr = err
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("erc7730.schema.json", doc); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = c.Compile("erc7730.schema.json")
	})
	return schema, schemaErr
}

// Validate checks raw JSON against the descriptor schema.
func Validate(data []byte) error {
	sch, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile descriptor schema: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("validate descriptor: %w", err)
	}
	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("validate descriptor: %w", err)
	}
	return nil
}

// ParseStrict validates raw JSON before decoding it.
func ParseStrict(data []byte) (*Descriptor, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	return Parse(data)
}
