package solidity

import (
	"regexp"
	"strings"
)

// Function is the result of locating a declaration: the declaration header
// plus balanced-brace body, and the NatSpec docstring immediately above it.
// Both fields are empty when no valid declaration exists; absence is an
// expected steady state for unverifiable or unused functions, not an error.
type Function struct {
	Body      string `json:"body,omitempty"`
	Docstring string `json:"docstring,omitempty"`
}

// Found reports whether a declaration was located.
func (f Function) Found() bool {
	return f.Body != ""
}

// candidate is one "function <name>(...)" occurrence under consideration.
type candidate struct {
	start  int    // offset of the "function" keyword
	end    int    // offset just past the closing ')' of the header match
	params string // raw parameter block between the parens
}

// Locator finds canonical function declarations in a fixed source text.
// Construction scans assembly blocks once; the locator itself is immutable
// and safe for concurrent use.
type Locator struct {
	code   string
	rules  *Rules
	asmIdx *SpanIndex
}

// NewLocator builds a locator over code. A nil rules uses DefaultRules.
func NewLocator(code string, rules *Rules) *Locator {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Locator{
		code:   code,
		rules:  rules,
		asmIdx: NewSpanIndex(AssemblyBlocks(code)),
	}
}

// headerMatches returns every "function <name> ( ... )" occurrence. The
// parameter capture is non-greedy up to the first ')', which mis-splits on
// parenthesized default-value expressions; tolerated, see package docs.
func (l *Locator) headerMatches(name string) []candidate {
	re := regexp.MustCompile(`(?s)function\s+` + regexp.QuoteMeta(name) + `\s*\((.*?)\)`)
	var out []candidate
	for _, m := range re.FindAllStringSubmatchIndex(l.code, -1) {
		out = append(out, candidate{start: m[0], end: m[1], params: l.code[m[2]:m[3]]})
	}
	return out
}

// hasBody reports whether the declaration at c is a real definition rather
// than an interface or abstract prototype: a '{' must open before the next
// ';', or exist with no ';' at all.
func (l *Locator) hasBody(c candidate) bool {
	after := l.code[c.end:]
	brace := strings.Index(after, "{")
	semi := strings.Index(after, ";")
	if brace < 0 {
		return false
	}
	return semi < 0 || brace < semi
}

// ExtractFunction locates the canonical declaration of name whose declared
// parameter names equal paramNames, and returns its body and docstring.
// Matches inside assembly blocks and bodiless prototypes are rejected; among
// the survivors the one with the largest start offset wins, since a later
// concatenated file or overriding contract is assumed canonical. Overloads
// that share both name and parameter names cannot be told apart here.
func (l *Locator) ExtractFunction(name string, paramNames []string) Function {
	var accepted []candidate
	for _, c := range l.headerMatches(name) {
		if l.asmIdx.Contains(c.start) {
			continue
		}
		if !namesEqual(ParamNames(c.params, l.rules), paramNames) {
			continue
		}
		if !l.hasBody(c) {
			continue
		}
		accepted = append(accepted, c)
	}
	return l.extract(accepted)
}

// ExtractBySignature locates the canonical declaration matching a canonical
// signature "name(type1,type2,...)", for callers that only have ABI-derived
// types and no parameter names. The filters match ExtractFunction except
// that, with no names to compare, a declaration whose parameters are all
// bare identifiers free of type keywords is rejected as assembly-style.
func (l *Locator) ExtractBySignature(signature string) Function {
	open := strings.Index(signature, "(")
	if open < 0 {
		return Function{}
	}
	name := signature[:open]

	var accepted []candidate
	for _, c := range l.headerMatches(name) {
		if assemblyStyle(c.params, l.rules.SignatureKeywords) {
			continue
		}
		if l.asmIdx.Contains(c.start) {
			continue
		}
		if !l.hasBody(c) {
			continue
		}
		accepted = append(accepted, c)
	}
	return l.extract(accepted)
}

// extract selects the last accepted candidate and pulls its body and
// docstring out of the source.
func (l *Locator) extract(accepted []candidate) Function {
	if len(accepted) == 0 {
		return Function{}
	}
	c := accepted[len(accepted)-1]

	body := l.code[c.start:]
	if rel := strings.Index(l.code[c.start:], "{"); rel >= 0 {
		if span, ok := MatchBrace(l.code, c.start+rel); ok {
			body = l.code[c.start:span.End]
		}
		// Unterminated body keeps the rest-of-source fallback.
	}

	return Function{
		Body:      strings.TrimSpace(body),
		Docstring: l.docstringBefore(c.start),
	}
}

// docstringBefore scans the lines above offset in reverse, accumulating a
// /** ... */ comment that sits directly against the declaration. A blank or
// code line before any comment content means there is no docstring.
func (l *Locator) docstringBefore(offset int) string {
	lines := strings.Split(l.code[:offset], "\n")
	if len(lines) > 0 {
		// Drop the partial line the declaration itself starts on.
		lines = lines[:len(lines)-1]
	}

	var doc []string
	inside := false
	for i := len(lines) - 1; i >= 0; i-- {
		stripped := strings.TrimSpace(lines[i])
		switch {
		case !inside && strings.HasSuffix(stripped, "*/"):
			inside = true
			doc = append([]string{lines[i]}, doc...)
			if strings.HasPrefix(stripped, "/**") {
				return strings.TrimSpace(strings.Join(doc, "\n"))
			}
		case inside:
			doc = append([]string{lines[i]}, doc...)
			if strings.HasPrefix(stripped, "/**") {
				return strings.TrimSpace(strings.Join(doc, "\n"))
			}
		default:
			// Blank or code line before any comment content: no docstring.
			return ""
		}
	}
	// Source began mid-comment; keep what accumulated.
	return strings.TrimSpace(strings.Join(doc, "\n"))
}

func namesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
