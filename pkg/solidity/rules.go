// Package solidity locates function declarations in raw, possibly
// concatenated Solidity source text. It works on untrusted text with a
// hand-written scanner (depth counters over balanced delimiters) rather than
// a grammar frontend: verified-source bundles are frequently incomplete or
// mangled, and the only structure we need is brace spans and comma lists.
package solidity

// Rules carries the static keyword sets the scanner consults. A Rules value
// is immutable after construction and safe to share across goroutines.
type Rules struct {
	// TypeKeywords are substrings whose presence marks a token as a typed
	// parameter rather than a bare assembly-style identifier.
	TypeKeywords []string

	// ModifierKeywords are tokens that, in trailing position, mark a
	// parameter as typed but unnamed ("uint256 calldata" has no name).
	ModifierKeywords map[string]struct{}

	// SignatureKeywords extend TypeKeywords for the signature-based entry
	// point, where exact name matching is unavailable and the whole
	// parameter list must be classified.
	SignatureKeywords []string
}

// DefaultRules returns the rule set for current Solidity.
func DefaultRules() *Rules {
	mods := map[string]struct{}{}
	for _, m := range []string{"calldata", "memory", "storage", "payable", "external", "internal", "view", "pure"} {
		mods[m] = struct{}{}
	}
	return &Rules{
		TypeKeywords:      []string{"address", "uint", "int", "bool", "bytes", "string"},
		ModifierKeywords:  mods,
		SignatureKeywords: []string{"address", "uint", "int", "bool", "bytes", "string", "calldata", "memory", "storage", "contract", "struct"},
	}
}

// NewRules builds a Rules value from explicit keyword lists, falling back to
// the defaults for any empty list. Configuration loading uses this so the
// rule data stays an explicit value handed to call sites.
func NewRules(typeKeywords, modifierKeywords, signatureKeywords []string) *Rules {
	r := DefaultRules()
	if len(typeKeywords) > 0 {
		r.TypeKeywords = append([]string(nil), typeKeywords...)
	}
	if len(modifierKeywords) > 0 {
		mods := make(map[string]struct{}, len(modifierKeywords))
		for _, m := range modifierKeywords {
			mods[m] = struct{}{}
		}
		r.ModifierKeywords = mods
	}
	if len(signatureKeywords) > 0 {
		r.SignatureKeywords = append([]string(nil), signatureKeywords...)
	}
	return r
}
