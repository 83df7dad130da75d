package abi

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// abiSchema is the structural schema a JSON ABI must satisfy before it is
// parsed. Validation catches files that json.Unmarshal would silently
// zero-fill, such as entries with a numeric "type".
const abiSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["type"],
    "properties": {
      "type": {
        "enum": ["function", "constructor", "event", "error", "fallback", "receive"]
      },
      "name": {"type": "string"},
      "inputs": {"$ref": "#/$defs/params"},
      "outputs": {"$ref": "#/$defs/params"},
      "stateMutability": {
        "enum": ["pure", "view", "nonpayable", "payable"]
      },
      "anonymous": {"type": "boolean"}
    }
  },
  "$defs": {
    "params": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["type"],
        "properties": {
          "type": {"type": "string"},
          "name": {"type": "string"},
          "internalType": {"type": "string"},
          "indexed": {"type": "boolean"},
          "components": {"$ref": "#/$defs/params"}
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
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(abiSchema))
		if err != nil {
			schemaErr = err
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("abi.schema.json", doc); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = c.Compile("abi.schema.json")
	})
	return schema, schemaErr
}

// Validate checks raw JSON against the ABI schema.
func Validate(data []byte) error {
	sch, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile ABI schema: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("validate ABI: %w", err)
	}
	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("validate ABI: %w", err)
	}
	return nil
}

// ParseStrict validates raw JSON against the ABI schema before decoding it.
func ParseStrict(data []byte) (ABI, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	return Parse(data)
}
