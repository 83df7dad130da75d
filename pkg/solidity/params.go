package solidity

import "strings"

// SplitParams splits a parameter block at commas where nested-parenthesis
// depth is zero, so tuple groups stay intact. Entries are trimmed and empty
// entries dropped.
func SplitParams(block string) []string {
	var params []string
	var current strings.Builder
	depth := 0

	flush := func() {
		p := strings.TrimSpace(current.String())
		if p != "" {
			params = append(params, p)
		}
		current.Reset()
	}

	for _, ch := range block {
		switch {
		case ch == ',' && depth == 0:
			flush()
			continue
		case ch == '(':
			depth++
		case ch == ')':
			if depth > 0 {
				depth--
			}
		}
		current.WriteRune(ch)
	}
	flush()
	return params
}

// ParamNames derives the declared name of each parameter in block, which may
// be a typed Solidity list ("address to, uint256 amount") or an untyped
// assembly-style list ("emptyPtr, swapAmount"). Classification per entry:
// a single token containing no type keyword is an assembly identifier and is
// its own name; a typed entry whose last token is a storage or visibility
// keyword is unnamed; otherwise the last token is the name. No type grammar
// is involved, only these keyword heuristics.
func ParamNames(block string, rules *Rules) []string {
	if rules == nil {
		rules = DefaultRules()
	}
	block = StripComments(block)
	if strings.TrimSpace(block) == "" {
		return nil
	}

	var names []string
	for _, part := range SplitParams(block) {
		tokens := strings.Fields(part)
		switch {
		case len(tokens) == 1 && !containsAny(tokens[0], rules.TypeKeywords):
			names = append(names, tokens[0])
		case len(tokens) == 0:
			names = append(names, "")
		default:
			last := tokens[len(tokens)-1]
			if _, isModifier := rules.ModifierKeywords[last]; isModifier {
				names = append(names, "")
			} else {
				names = append(names, last)
			}
		}
	}
	return names
}

// assemblyStyle reports whether every entry in the raw block is a single
// bare identifier with none of the given keywords as a substring. Used by
// the signature entry point, where parameter names are unknown and untyped
// lists are the only tell for assembly pseudo-functions.
func assemblyStyle(block string, keywords []string) bool {
	if strings.TrimSpace(block) == "" {
		return false
	}
	for _, part := range strings.Split(block, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if len(strings.Fields(part)) != 1 || containsAny(part, keywords) {
			return false
		}
	}
	return true
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
