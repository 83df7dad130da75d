// Package abi models contract ABI arrays and resolves 4-byte selectors
// against them.
package abi

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cairnsec/sigil/pkg/sig"
)

// Param is one input or output of an ABI entry. Components is set for
// tuple-typed parameters.
type Param struct {
	Type         string  `json:"type"`
	Name         string  `json:"name,omitempty"`
	InternalType string  `json:"internalType,omitempty"`
	Components   []Param `json:"components,omitempty"`
}

// Entry is one element of a contract ABI array.
type Entry struct {
	Type            string  `json:"type"`
	Name            string  `json:"name,omitempty"`
	Inputs          []Param `json:"inputs,omitempty"`
	Outputs         []Param `json:"outputs,omitempty"`
	StateMutability string  `json:"stateMutability,omitempty"`
	Anonymous       bool    `json:"anonymous,omitempty"`
}

// ABI is a contract ABI in declaration order. Order matters: selector
// lookups return the first matching entry.
type ABI []Entry

// Parse decodes a JSON ABI array.
func Parse(data []byte) (ABI, error) {
	var a ABI
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parse ABI: %w", err)
	}
	return a, nil
}

// CanonicalType renders the parameter's type for signature hashing: tuples
// flatten to "(componentType1,componentType2,...)" with the declared array
// suffix carried over, everything else passes through as declared.
func (p Param) CanonicalType() string {
	if !strings.HasPrefix(p.Type, "tuple") {
		return p.Type
	}
	inner := make([]string, len(p.Components))
	for i, c := range p.Components {
		inner[i] = c.CanonicalType()
	}
	// Whatever follows "tuple" is the array suffix ("", "[]", "[3]", ...).
	return "(" + strings.Join(inner, ",") + ")" + p.Type[len("tuple"):]
}

// Signature returns the canonical signature "name(type1,type2,...)".
func (e Entry) Signature() string {
	types := make([]string, len(e.Inputs))
	for i, p := range e.Inputs {
		types[i] = p.CanonicalType()
	}
	return e.Name + "(" + strings.Join(types, ",") + ")"
}

// Selector returns the 4-byte selector of the entry's signature.
func (e Entry) Selector() string {
	return sig.Selector(e.Signature())
}

// Match is the resolution result for one function entry.
type Match struct {
	Name               string   `json:"name"`
	ParamNames         []string `json:"param_names"`
	ParamInternalTypes []string `json:"param_internal_types"`
	Signature          string   `json:"signature"`
	Selector           string   `json:"selector"`
}

// Found reports whether the match is non-empty.
func (m Match) Found() bool {
	return m.Name != ""
}

func match(e Entry) Match {
	names := make([]string, len(e.Inputs))
	internal := make([]string, len(e.Inputs))
	for i, p := range e.Inputs {
		names[i] = p.Name
		internal[i] = p.InternalType
	}
	return Match{
		Name:               e.Name,
		ParamNames:         names,
		ParamInternalTypes: internal,
		Signature:          e.Signature(),
		Selector:           e.Selector(),
	}
}

// FindBySelector returns the function entry whose computed selector equals
// selector, comparing case-insensitively. On-chain data often carries only
// selectors, so this is the bridge from calldata back to the ABI. The first
// entry in array order wins; ABIs are assumed selector-unique, and when
// they are not, position rather than name breaks the tie. No match returns
// an empty Match, not an error. A malformed selector is the one input that
// is rejected.
func (a ABI) FindBySelector(selector string) (Match, error) {
	if err := sig.ValidateSelector(selector); err != nil {
		return Match{}, err
	}
	want := strings.ToLower(selector)
	for _, e := range a {
		if e.Type != "function" {
			continue
		}
		if e.Selector() == want {
			return match(e), nil
		}
	}
	return Match{}, nil
}

// Functions returns the signature/selector table for every function entry,
// in ABI order.
func (a ABI) Functions() []Match {
	var out []Match
	for _, e := range a {
		if e.Type != "function" {
			continue
		}
		out = append(out, match(e))
	}
	return out
}
