package solidity

import "regexp"

var assemblyOpenRe = regexp.MustCompile(`assembly\s*\{`)

// AssemblyBlocks returns the spans of every assembly { ... } block in text.
// Each span starts at the "assembly" keyword and ends just past the matching
// closing brace. Occurrences whose brace never closes are dropped without a
// recorded span; the surrounding locator then cannot exclude matches inside
// them, a documented limitation of scanning unverified text.
func AssemblyBlocks(text string) []Span {
	var spans []Span
	for _, loc := range assemblyOpenRe.FindAllStringIndex(text, -1) {
		// loc[1]-1 is the opening brace matched by the pattern.
		body, ok := MatchBrace(text, loc[1]-1)
		if !ok {
			continue
		}
		spans = append(spans, Span{Start: loc[0], End: body.End})
	}
	return spans
}
