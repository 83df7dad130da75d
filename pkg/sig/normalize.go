// Package sig converts human-written function signatures into canonical
// type-only form and derives 4-byte selectors from them.
package sig

import (
	"strings"

	"github.com/cairnsec/sigil/pkg/solidity"
)

// Normalize rewrites a signature that may carry parameter names, storage
// modifiers and nested tuple groups into its canonical form:
//
//	"transfer(address to, uint256 amount)" -> "transfer(address,uint256)"
//	"swap((address src, address dst) desc, bytes data)" -> "swap((address,address),bytes)"
//
// Input without a parenthesized parameter list is returned unchanged; it is
// not a signature.
func Normalize(signature string) string {
	return NormalizeTypes(signature, nil)
}

// NormalizeTypes is Normalize with a resolution map for non-ABI type names:
// interfaces and contracts to "address", user-defined value types to their
// underlying type, structs to their tuple form (see solidity.TypeMappings).
// Array suffixes survive resolution: "TakerTraits[]" becomes "uint256[]"
// when the map sends TakerTraits to uint256.
func NormalizeTypes(signature string, types map[string]string) string {
	open := strings.Index(signature, "(")
	close_ := strings.LastIndex(signature, ")")
	if open < 0 || close_ < 0 || close_ <= open {
		return signature
	}

	name := strings.TrimSpace(signature[:open])
	if name == "" {
		// A bare parameter list is not a signature.
		return signature
	}
	// Between the first '(' and the last ')': trailing modifiers such as
	// "view" after the parameter list fall outside and are discarded.
	paramsBody := signature[open+1 : close_]

	if strings.TrimSpace(paramsBody) == "" {
		return name + "()"
	}

	var types_ []string
	for _, param := range solidity.SplitParams(paramsBody) {
		if t := normalizeParam(param, types); t != "" {
			types_ = append(types_, t)
		}
	}
	return name + "(" + strings.Join(types_, ",") + ")"
}

// normalizeParam reduces a single parameter entry to its canonical type.
func normalizeParam(param string, types map[string]string) string {
	param = strings.TrimSpace(param)
	if param == "" {
		return ""
	}

	if param[0] == '(' {
		return normalizeTuple(param, types)
	}

	tokens := strings.Fields(param)
	typ := tokens[0]
	// Tolerate a detached array suffix: "uint256 []".
	if len(tokens) > 1 && strings.HasPrefix(tokens[1], "[") {
		typ += tokens[1]
	}

	base, suffix := typ, ""
	if i := strings.Index(typ, "["); i >= 0 {
		base, suffix = typ[:i], typ[i:]
	}
	if resolved, ok := types[base]; ok {
		return resolved + suffix
	}
	return typ
}

// normalizeTuple handles a parameter that opens a tuple group: the inner
// comma list is normalized recursively and any array-suffix characters
// directly after the closing paren are carried verbatim.
func normalizeTuple(param string, types map[string]string) string {
	depth := 0
	end := len(param)
	for i := 0; i < len(param); i++ {
		switch param[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				end = i + 1
				i = len(param)
			}
		}
	}

	inner := param[1 : end-1]
	var innerTypes []string
	for _, p := range solidity.SplitParams(inner) {
		if t := normalizeParam(p, types); t != "" {
			innerTypes = append(innerTypes, t)
		}
	}

	var suffix strings.Builder
	for i := end; i < len(param); i++ {
		c := param[i]
		if c == '[' || c == ']' || (c >= '0' && c <= '9') {
			suffix.WriteByte(c)
			continue
		}
		if c == ' ' && suffix.Len() == 0 {
			// Space between tuple and its suffix or name; a name ends the scan
			// below when a non-suffix character shows up.
			continue
		}
		break
	}
	return "(" + strings.Join(innerTypes, ",") + ")" + suffix.String()
}
