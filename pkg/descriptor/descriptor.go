// Package descriptor reads ERC-7730 clear-signing descriptors and resolves
// their display-format keys into function selectors.
package descriptor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cairnsec/sigil/pkg/sig"
)

// Deployment is one on-chain deployment the descriptor covers.
type Deployment struct {
	Address string `json:"address"`
	ChainID int64  `json:"chainId"`
}

// Descriptor is the subset of an ERC-7730 document this tool reads: the
// deployments the descriptor binds to and the display-format entries keyed
// by selector or signature.
type Descriptor struct {
	Context struct {
		Contract struct {
			Deployments []Deployment `json:"deployments"`
		} `json:"contract"`
	} `json:"context"`
	Display struct {
		Formats map[string]json.RawMessage `json:"formats"`
	} `json:"display"`

	// Display.Formats loses document order through the map; formatOrder
	// preserves it so selector lists are stable across runs.
	formatOrder []string
}

// Parse decodes an ERC-7730 descriptor.
func Parse(data []byte) (*Descriptor, error) {
	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse descriptor: %w", err)
	}
	order, err := formatKeyOrder(data)
	if err != nil {
		return nil, fmt.Errorf("parse descriptor: %w", err)
	}
	d.formatOrder = order
	return &d, nil
}

// FormatKeys returns the display-format keys in document order.
func (d *Descriptor) FormatKeys() []string {
	return d.formatOrder
}

// Deployments returns the deployments that carry both an address and a
// chain id.
func (d *Descriptor) Deployments() []Deployment {
	var out []Deployment
	for _, dep := range d.Context.Contract.Deployments {
		if dep.Address != "" && dep.ChainID != 0 {
			out = append(out, dep)
		}
	}
	return out
}

// Selectors resolves every display-format key to a lowercase selector,
// in document order, together with a selector-to-original-key map. A key
// that is neither a selector nor a recognizable signature is skipped, not
// fatal: one free-form key should not sink the rest of the descriptor. The
// types map resolves non-ABI type names in signature keys, as in
// sig.NormalizeTypes.
func (d *Descriptor) Selectors(types map[string]string) ([]string, map[string]string) {
	var selectors []string
	toKey := make(map[string]string)

	for _, key := range d.formatOrder {
		selector, err := sig.ResolveKeyTypes(key, types)
		if err != nil {
			continue
		}
		selectors = append(selectors, selector)
		toKey[selector] = key
	}
	return selectors, toKey
}

// formatKeyOrder walks the raw JSON to recover the order of the keys under
// display.formats.
func formatKeyOrder(data []byte) ([]string, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, err
	}
	display, ok := top["display"]
	if !ok {
		return nil, nil
	}
	var displayObj map[string]json.RawMessage
	if err := json.Unmarshal(display, &displayObj); err != nil {
		return nil, err
	}
	formats, ok := displayObj["formats"]
	if !ok {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(formats))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("display.formats is not an object")
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("display.formats has a non-string key")
		}
		keys = append(keys, key)
		// The key's value is irrelevant here; skip it wholesale.
		var discard json.RawMessage
		if err := dec.Decode(&discard); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

// MergeInclude folds an include document into main: definitions, formats
// and metadata from the include are added first so main's own entries win
// on conflict. Both inputs and the result are raw JSON documents.
func MergeInclude(main, include []byte) ([]byte, error) {
	var mainDoc, includeDoc map[string]any
	if err := json.Unmarshal(main, &mainDoc); err != nil {
		return nil, fmt.Errorf("merge include: %w", err)
	}
	if err := json.Unmarshal(include, &includeDoc); err != nil {
		return nil, fmt.Errorf("merge include: %w", err)
	}

	mergeSection(mainDoc, includeDoc, "metadata")
	mainDisplay := subObject(mainDoc, "display")
	includeDisplay := subObject(includeDoc, "display")
	if includeDisplay != nil {
		if mainDisplay == nil {
			mainDisplay = map[string]any{}
			mainDoc["display"] = mainDisplay
		}
		mergeSection(mainDisplay, includeDisplay, "definitions")
		mergeSection(mainDisplay, includeDisplay, "formats")
	}
	delete(mainDoc, "includes")

	return json.Marshal(mainDoc)
}

func subObject(doc map[string]any, key string) map[string]any {
	obj, _ := doc[key].(map[string]any)
	return obj
}

// mergeSection overlays dst[key] on top of src[key], keeping dst's values
// on conflict.
func mergeSection(dst, src map[string]any, key string) {
	srcSec := subObject(src, key)
	if srcSec == nil {
		return
	}
	dstSec := subObject(dst, key)
	if dstSec == nil {
		dst[key] = srcSec
		return
	}
	merged := make(map[string]any, len(srcSec)+len(dstSec))
	for k, v := range srcSec {
		merged[k] = v
	}
	for k, v := range dstSec {
		merged[k] = v
	}
	dst[key] = merged
}

// NormalizeAddress lowercases a deployment address for map keying.
func NormalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}
