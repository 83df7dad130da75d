package solidity

import (
	"regexp"
	"strings"
)

// Vyper support is limited to what audit extraction needs: telling Vyper
// source apart from Solidity and pulling function definitions out of it.

var vyperMarkers = []*regexp.Regexp{
	regexp.MustCompile(`@external`),
	regexp.MustCompile(`@internal`),
	regexp.MustCompile(`@view`),
	regexp.MustCompile(`@pure`),
	regexp.MustCompile(`@payable`),
	regexp.MustCompile(`def\s+__init__\(`),
	regexp.MustCompile(`:\s*constant\(`),
}

var (
	vyperDecoratedRe = regexp.MustCompile(`(?m)((?:^@[^\n]*\n)+)^def\s+(\w+)\s*\(`)
	vyperSpecialRe   = regexp.MustCompile(`(?m)^def\s+(__\w+__)\s*\(`)
	vyperNextDeclRe  = regexp.MustCompile(`\n(?:@(?:external|internal)|interface\s+\w+:|event\s+\w+:|struct\s+\w+:)`)
)

// IsVyper reports whether source looks like Vyper rather than Solidity.
func IsVyper(source string) bool {
	for _, re := range vyperMarkers {
		if re.MatchString(source) {
			return true
		}
	}
	return false
}

// VyperFunctions extracts function definitions from Vyper source. Only
// decorated @external/@internal functions and dunder specials (__init__,
// __default__) are returned; indented interface stubs carry no column-zero
// decorator and are skipped by construction. Bodies run until the next
// top-level declaration.
func VyperFunctions(source string) []FunctionDecl {
	var out []FunctionDecl
	seen := map[string]bool{}

	for _, m := range vyperDecoratedRe.FindAllStringSubmatchIndex(source, -1) {
		decorators := source[m[2]:m[3]]
		name := source[m[4]:m[5]]

		var visibility string
		switch {
		case strings.Contains(decorators, "@external"):
			visibility = "external"
		case strings.Contains(decorators, "@internal"):
			visibility = "internal"
		default:
			continue
		}

		out = append(out, vyperDecl(source, m[0], m[1], name, visibility))
		seen[name] = true
	}

	for _, m := range vyperSpecialRe.FindAllStringSubmatchIndex(source, -1) {
		name := source[m[2]:m[3]]
		if seen[name] {
			continue
		}
		// Specials are callable from outside regardless of decorators.
		out = append(out, vyperDecl(source, m[0], m[1], name, "external"))
	}
	return out
}

func vyperDecl(source string, start, matchEnd int, name, visibility string) FunctionDecl {
	end := len(source)
	if loc := vyperNextDeclRe.FindStringIndex(source[matchEnd:]); loc != nil {
		end = matchEnd + loc[0]
	}
	body := strings.TrimSpace(source[start:end])
	startLine := strings.Count(source[:start], "\n") + 1
	return FunctionDecl{
		Name:       name,
		Visibility: visibility,
		Body:       body,
		StartLine:  startLine,
		EndLine:    startLine + strings.Count(body, "\n"),
	}
}
